package keyio

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/utils"
)

// PublicKeyExport is the JSON form of a public key. Integers are lowercase hex.
type PublicKeyExport struct {
	N string `json:"n"`
	E string `json:"e"`
}

// PrimeExport is the JSON form of one prime factor and its CRT values.
// Coefficient is q^-1 mod p for the first factor, empty for the second, and
// (r_1 * ... * r_(i-1))^-1 mod r_i for the rest.
type PrimeExport struct {
	Prime       string `json:"prime"`
	Exponent    string `json:"exponent"`
	Coefficient string `json:"coefficient,omitempty"`
}

// KeyPairExport is the JSON document written for a key pair.
type KeyPairExport struct {
	ID          string          `json:"id"`
	Version     string          `json:"version"`
	ModulusBits int             `json:"modulus_bits"`
	Fingerprint string          `json:"fingerprint"`
	CreatedAt   time.Time       `json:"created_at"`
	PublicKey   PublicKeyExport `json:"public_key"`
	D           string          `json:"d,omitempty"`
	Primes      []PrimeExport   `json:"primes,omitempty"`
}

// Export converts kp into its JSON document form with a fresh identifier.
// When includePrivate is false only the public key is exported.
func Export(kp *provrsa.KeyPair, includePrivate bool) (*KeyPairExport, error) {
	if kp == nil || kp.PublicKey.N == nil || kp.PublicKey.E == nil {
		return nil, fmt.Errorf("%w: missing public key", provrsa.ErrInvalidKey)
	}
	out := &KeyPairExport{
		ID:          uuid.New().String(),
		Version:     provrsa.Version,
		ModulusBits: kp.PublicKey.N.BitLen(),
		Fingerprint: Fingerprint(&kp.PublicKey),
		CreatedAt:   time.Now().UTC(),
		PublicKey: PublicKeyExport{
			N: utils.Hex(kp.PublicKey.N),
			E: utils.Hex(kp.PublicKey.E),
		},
	}
	if !includePrivate {
		return out, nil
	}

	if kp.Simple != nil {
		out.D = utils.Hex(kp.Simple.D)
	}
	if crt := kp.CRT; crt != nil {
		out.Primes = append(out.Primes,
			PrimeExport{Prime: utils.Hex(crt.P), Exponent: utils.Hex(crt.Dp), Coefficient: utils.Hex(crt.Qinv)},
			PrimeExport{Prime: utils.Hex(crt.Q), Exponent: utils.Hex(crt.Dq)},
		)
		for _, a := range crt.Additional {
			out.Primes = append(out.Primes, PrimeExport{
				Prime:       utils.Hex(a.R),
				Exponent:    utils.Hex(a.D),
				Coefficient: utils.Hex(a.T),
			})
		}
	}
	return out, nil
}

// KeyPair rebuilds the key pair described by the document.
func (x *KeyPairExport) KeyPair() (*provrsa.KeyPair, error) {
	if _, err := uuid.Parse(x.ID); err != nil {
		return nil, fmt.Errorf("invalid key id: %w", err)
	}
	n, err := utils.ParseHex(x.PublicKey.N)
	if err != nil {
		return nil, fmt.Errorf("public key n: %w", err)
	}
	e, err := utils.ParseHex(x.PublicKey.E)
	if err != nil {
		return nil, fmt.Errorf("public key e: %w", err)
	}
	if n.Sign() <= 0 || e.Sign() <= 0 {
		return nil, fmt.Errorf("%w: zero or negative public value", provrsa.ErrInvalidKey)
	}
	kp := &provrsa.KeyPair{PublicKey: provrsa.PublicKey{N: n, E: e}}

	if x.D != "" {
		d, err := utils.ParseHex(x.D)
		if err != nil {
			return nil, fmt.Errorf("private exponent: %w", err)
		}
		if d.Sign() <= 0 {
			return nil, fmt.Errorf("%w: zero or negative private exponent", provrsa.ErrInvalidKey)
		}
		kp.Simple = &provrsa.SimplePrivateKey{N: new(big.Int).Set(n), D: d}
	}
	if len(x.Primes) == 0 {
		return kp, nil
	}
	if len(x.Primes) < 2 || len(x.Primes) > 2+utils.MaxAdditionalPrimes {
		return nil, fmt.Errorf("%w: %d prime records", provrsa.ErrInvalidKey, len(x.Primes))
	}

	vals := make([][3]*big.Int, len(x.Primes))
	for i, p := range x.Primes {
		fields := [3]string{p.Prime, p.Exponent, p.Coefficient}
		for j, f := range fields {
			if f == "" {
				continue
			}
			v, err := utils.ParseHex(f)
			if err != nil {
				return nil, fmt.Errorf("prime %d: %w", i+1, err)
			}
			if v.Sign() < 0 || (j == 0 && v.Sign() == 0) {
				return nil, fmt.Errorf("%w: prime %d has a negative or zero field", provrsa.ErrInvalidKey, i+1)
			}
			vals[i][j] = v
		}
		if vals[i][0] == nil || vals[i][1] == nil || (i != 1 && vals[i][2] == nil) {
			return nil, fmt.Errorf("%w: prime %d is incomplete", provrsa.ErrInvalidKey, i+1)
		}
	}
	kp.CRT = &provrsa.CRTPrivateKey{
		P:    vals[0][0],
		Dp:   vals[0][1],
		Qinv: vals[0][2],
		Q:    vals[1][0],
		Dq:   vals[1][1],
	}
	for _, v := range vals[2:] {
		kp.CRT.Additional = append(kp.CRT.Additional, provrsa.AdditionalPrimeData{R: v[0], D: v[1], T: v[2]})
	}
	return kp, nil
}

// MarshalJSON encodes kp as an indented JSON document.
func MarshalJSON(kp *provrsa.KeyPair, includePrivate bool) ([]byte, error) {
	x, err := Export(kp, includePrivate)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(x, "", "  ")
}

// UnmarshalJSON decodes a document written by MarshalJSON.
func UnmarshalJSON(data []byte) (*provrsa.KeyPair, error) {
	if len(data) > utils.MaxPayloadLength {
		return nil, utils.ErrExceedsLimit
	}
	var x KeyPairExport
	if err := json.Unmarshal(data, &x); err != nil {
		return nil, err
	}
	return x.KeyPair()
}

// Fingerprint returns a short identifier of a public key: the first eight bytes of
// SHA-512 over its binary serialization, in hex.
func Fingerprint(pub *provrsa.PublicKey) string {
	h, err := utils.NewHasher(utils.SHA512)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", h.Sum(SerializePublicKey(pub))[:8])
}
