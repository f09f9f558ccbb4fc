package main

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/primitives"
)

var errNoPrivateKey = errors.New("key file holds no private key")

func (a *app) encryptCmd() *cobra.Command {
	var keyPath, message, text string
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Apply the RSA encryption primitive to a message representative",
		Long: `Computes c = m^e mod n for a message representative m given in hex with --message,
or taken from the bytes of --text. The ciphertext is printed in hex.

This is the raw primitive without padding.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyPath == "" {
				return errors.New("--key is required")
			}
			if (message == "") == (text == "") {
				return errors.New("exactly one of --message or --text is required")
			}
			kp, err := loadKey(keyPath)
			if err != nil {
				return err
			}
			if kp.PublicKey.E == nil {
				return errors.New("key file holds no public exponent")
			}

			m := new(big.Int).SetBytes([]byte(text))
			if message != "" {
				if m, err = parseHexInt("message", message); err != nil {
					return err
				}
			}
			a.log.Debugf("encrypting %d-bit representative under %d-bit modulus", m.BitLen(), kp.PublicKey.N.BitLen())
			c, err := primitives.Encrypt(&kp.PublicKey, m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%x\n", c)
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "public or private key file")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message representative in hex")
	cmd.Flags().StringVarP(&text, "text", "t", "", "message text, interpreted as a big-endian integer")
	return cmd
}

func (a *app) decryptCmd() *cobra.Command {
	var (
		keyPath, ciphertext string
		simple, asText      bool
	)
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Apply the RSA decryption primitive to a ciphertext representative",
		Long: `Computes m = c^d mod n for a hex ciphertext. The CRT form of the private key is
used when available; --simple forces the (n, d) form.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyPath == "" || ciphertext == "" {
				return errors.New("--key and --ciphertext are required")
			}
			kp, err := loadKey(keyPath)
			if err != nil {
				return err
			}
			priv, err := privateKey(kp, simple)
			if err != nil {
				return err
			}
			c, err := parseHexInt("ciphertext", ciphertext)
			if err != nil {
				return err
			}
			m, err := primitives.Decrypt(priv, c)
			if err != nil {
				return err
			}
			if asText {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", m.Bytes())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%x\n", m)
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "private key file")
	cmd.Flags().StringVarP(&ciphertext, "ciphertext", "C", "", "ciphertext representative in hex")
	cmd.Flags().BoolVar(&simple, "simple", false, "use the (n, d) form instead of CRT")
	cmd.Flags().BoolVar(&asText, "text", false, "print the plaintext as text")
	return cmd
}

// privateKey picks the private key form to decrypt with.
func privateKey(kp *provrsa.KeyPair, simple bool) (provrsa.PrivateKey, error) {
	switch {
	case simple && kp.Simple != nil:
		return kp.Simple, nil
	case simple:
		return nil, fmt.Errorf("%w in (n, d) form", errNoPrivateKey)
	case kp.CRT != nil:
		return kp.CRT, nil
	case kp.Simple != nil:
		return kp.Simple, nil
	default:
		return nil, errNoPrivateKey
	}
}
