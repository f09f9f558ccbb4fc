package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/internal/config"
	"github.com/BackendStack21/provable-rsa-go/keygen"
	"github.com/BackendStack21/provable-rsa-go/keyio"
)

type keygenFlags struct {
	bits     int
	exponent string
	primes   int
	hash     string
	aux      string
	seed     string
	format   string
	out      string
	count    int
}

func (a *app) keygenCmd() *cobra.Command {
	f := &keygenFlags{}
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA key pair from provable primes",
		Long: `Generates an RSA key pair. Without --seed a fresh random seed is drawn; with --seed
the key is derived deterministically from the given hex seed.

With --out PREFIX the private key is written to PREFIX.key and the public key to
PREFIX.pub; otherwise both are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeygen(cmd, f)
		},
	}
	cmd.Flags().IntVarP(&f.bits, "bits", "b", 0, "modulus length: 2048, 3072, 7680 or 15360")
	cmd.Flags().StringVarP(&f.exponent, "exponent", "e", "", "public exponent, decimal or 0x-prefixed hex")
	cmd.Flags().IntVarP(&f.primes, "primes", "p", 0, "number of prime factors")
	cmd.Flags().StringVar(&f.hash, "hash", "", "seed hash: SHA-512, SHA3-512 or BLAKE2b-512")
	cmd.Flags().StringVar(&f.aux, "aux", "", "auxiliary prime lengths N1,N2 (1 disables)")
	cmd.Flags().StringVar(&f.seed, "seed", "", "hex seed for deterministic generation")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: pem, json or binary")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file prefix")
	cmd.Flags().IntVarP(&f.count, "count", "n", 1, "number of key pairs to generate in parallel")
	return cmd
}

// overrides applies the flags that were set on top of the loaded settings.
func (f *keygenFlags) overrides(cmd *cobra.Command, s config.Settings) (config.Settings, error) {
	var err error
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "bits":
			s.Modulus = f.bits
		case "exponent":
			s.Exponent = f.exponent
		case "primes":
			s.Primes = f.primes
		case "hash":
			s.Hash = f.hash
		case "format":
			s.Format = f.format
		case "aux":
			lengths, perr := config.ParseInts(f.aux)
			if perr != nil {
				err = fmt.Errorf("--aux: %w", perr)
				return
			}
			s.AuxLengths = lengths
		}
	})
	if err != nil {
		return s, err
	}
	return s, s.Validate()
}

func (a *app) runKeygen(cmd *cobra.Command, f *keygenFlags) error {
	s, err := f.overrides(cmd, a.settings)
	if err != nil {
		return err
	}
	params, err := s.Params()
	if err != nil {
		return err
	}
	cfg, err := s.Config(a.log)
	if err != nil {
		return err
	}
	e, err := s.PublicExponent()
	if err != nil {
		return err
	}
	if f.count < 1 {
		return fmt.Errorf("--count must be positive")
	}
	if f.seed != "" && f.count > 1 {
		return fmt.Errorf("--seed cannot be combined with --count")
	}

	a.log.Debugf("params: %d-bit modulus, %d primes, aux %v, hash %s", params.ModulusBits, cfg.Primes, cfg.AuxLengths, cfg.Hash)
	stop := a.startSpinner(fmt.Sprintf("Generating %d-bit key", params.ModulusBits))
	start := time.Now()

	var keys []*provrsa.KeyPair
	switch {
	case f.seed != "":
		var seed []byte
		seed, err = hex.DecodeString(trimHexPrefix(f.seed))
		if err != nil {
			stop()
			return fmt.Errorf("--seed: %w", err)
		}
		var kp *provrsa.KeyPair
		kp, err = keygen.GenerateKeyPairFromSeed(params, cfg, e, seed)
		keys = []*provrsa.KeyPair{kp}
	case f.count > 1:
		keys, err = keygen.GenerateBatch(params, cfg, e, f.count)
	default:
		var kp *provrsa.KeyPair
		kp, err = keygen.GenerateKeyPair(params, cfg, e)
		keys = []*provrsa.KeyPair{kp}
	}
	stop()
	if err != nil {
		return err
	}
	a.log.Infof("generated %d key pair(s) in %v", len(keys), time.Since(start).Round(time.Millisecond))

	for i, kp := range keys {
		prefix := f.out
		if prefix != "" && len(keys) > 1 {
			prefix = fmt.Sprintf("%s-%d", f.out, i+1)
		}
		if err := writeKeyPair(cmd, kp, s.Format, prefix); err != nil {
			return err
		}
		a.log.Infof("key %s: %d bits, fingerprint %s", prefixOr(prefix, fmt.Sprint(i+1)), kp.PublicKey.N.BitLen(), keyio.Fingerprint(&kp.PublicKey))
	}
	return nil
}

func prefixOr(prefix, fallback string) string {
	if prefix == "" {
		return fallback
	}
	return prefix
}

// encodeKeyPair returns the private and public encodings of kp in format.
func encodeKeyPair(kp *provrsa.KeyPair, format string) (priv, pub []byte, err error) {
	switch format {
	case config.FormatPEM:
		der, err := keyio.MarshalPKCS1PrivateKey(kp)
		if err != nil {
			return nil, nil, err
		}
		pubDER, err := keyio.MarshalPKCS1PublicKey(&kp.PublicKey)
		if err != nil {
			return nil, nil, err
		}
		return keyio.EncodePEM(keyio.PEMPrivateKey, der), keyio.EncodePEM(keyio.PEMPublicKey, pubDER), nil
	case config.FormatJSON:
		priv, err := keyio.MarshalJSON(kp, true)
		if err != nil {
			return nil, nil, err
		}
		pub, err := keyio.MarshalJSON(kp, false)
		if err != nil {
			return nil, nil, err
		}
		return priv, pub, nil
	case config.FormatBinary:
		raw, err := keyio.SerializePrivateKey(kp.CRT)
		if err != nil {
			return nil, nil, err
		}
		return []byte(hex.EncodeToString(raw)), []byte(hex.EncodeToString(keyio.SerializePublicKey(&kp.PublicKey))), nil
	default:
		return nil, nil, fmt.Errorf("unknown output format %q", format)
	}
}

func writeKeyPair(cmd *cobra.Command, kp *provrsa.KeyPair, format, prefix string) error {
	priv, pub, err := encodeKeyPair(kp, format)
	if err != nil {
		return err
	}
	if prefix == "" {
		if err := writeOutput(cmd.OutOrStdout(), priv, "", 0); err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), pub, "", 0)
	}
	if err := writeOutput(nil, priv, prefix+".key", 0600); err != nil {
		return err
	}
	return writeOutput(nil, pub, prefix+".pub", 0644)
}
