// Package keyio encodes and decodes RSA keys.
//
// Three formats are supported: a compact length-prefixed binary form, PKCS#1 DER/PEM
// (including multi-prime keys with exponents of any size), and a JSON export with
// hexadecimal fields. Decoders treat their input as untrusted and enforce the limits
// in package utils.
package keyio

import (
	"errors"
	"fmt"
	"math/big"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/utils"
)

// Private key tags in the binary form.
const (
	tagSimple byte = 0x01
	tagCRT    byte = 0x02
)

// SerializePublicKey encodes pub as two length-prefixed integers, N then E.
func SerializePublicKey(pub *provrsa.PublicKey) []byte {
	buf := make([]byte, 0, 8+pub.Size()+(pub.E.BitLen()+7)/8)
	buf = utils.AppendInt(buf, pub.N)
	return utils.AppendInt(buf, pub.E)
}

// DeserializePublicKey decodes a public key written by SerializePublicKey.
func DeserializePublicKey(data []byte) (*provrsa.PublicKey, error) {
	if len(data) > utils.MaxPayloadLength {
		return nil, utils.ErrExceedsLimit
	}
	n, off, err := utils.ReadInt(data, 0)
	if err != nil {
		return nil, fmt.Errorf("reading modulus: %w", err)
	}
	e, off, err := utils.ReadInt(data, off)
	if err != nil {
		return nil, fmt.Errorf("reading exponent: %w", err)
	}
	if off != len(data) {
		return nil, errors.New("trailing data after public key")
	}
	if n.Sign() <= 0 || e.Sign() <= 0 {
		return nil, fmt.Errorf("%w: zero modulus or exponent", provrsa.ErrInvalidKey)
	}
	return &provrsa.PublicKey{N: n, E: e}, nil
}

// SerializePrivateKey encodes either private key form behind a one-byte tag.
// A CRT key is written as P, Q, Dp, Dq, Qinv, a uint32 record count and one
// (R, D, T) triple per additional prime.
func SerializePrivateKey(priv provrsa.PrivateKey) ([]byte, error) {
	switch k := priv.(type) {
	case *provrsa.SimplePrivateKey:
		buf := []byte{tagSimple}
		buf = utils.AppendInt(buf, k.N)
		return utils.AppendInt(buf, k.D), nil
	case *provrsa.CRTPrivateKey:
		buf := []byte{tagCRT}
		for _, v := range []*big.Int{k.P, k.Q, k.Dp, k.Dq, k.Qinv} {
			buf = utils.AppendInt(buf, v)
		}
		buf = appendUint32(buf, uint32(len(k.Additional)))
		for _, a := range k.Additional {
			buf = utils.AppendInt(buf, a.R)
			buf = utils.AppendInt(buf, a.D)
			buf = utils.AppendInt(buf, a.T)
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("%w: unsupported private key type %T", provrsa.ErrInvalidKey, priv)
	}
}

// DeserializePrivateKey decodes a key written by SerializePrivateKey.
func DeserializePrivateKey(data []byte) (provrsa.PrivateKey, error) {
	if len(data) > utils.MaxPayloadLength {
		return nil, utils.ErrExceedsLimit
	}
	if len(data) < 1 {
		return nil, errors.New("empty private key")
	}

	r := reader{data: data, off: 1}
	switch data[0] {
	case tagSimple:
		k := &provrsa.SimplePrivateKey{N: r.int(), D: r.int()}
		if err := r.finish(); err != nil {
			return nil, err
		}
		if k.N.Sign() <= 0 || k.D.Sign() <= 0 {
			return nil, fmt.Errorf("%w: zero modulus or exponent", provrsa.ErrInvalidKey)
		}
		return k, nil
	case tagCRT:
		k := &provrsa.CRTPrivateKey{P: r.int(), Q: r.int(), Dp: r.int(), Dq: r.int(), Qinv: r.int()}
		count := r.count(utils.MaxAdditionalPrimes)
		for i := 0; i < count && r.err == nil; i++ {
			k.Additional = append(k.Additional, provrsa.AdditionalPrimeData{R: r.int(), D: r.int(), T: r.int()})
		}
		if err := r.finish(); err != nil {
			return nil, err
		}
		for _, p := range k.Primes() {
			if p.Sign() <= 0 {
				return nil, fmt.Errorf("%w: zero prime factor", provrsa.ErrInvalidKey)
			}
		}
		return k, nil
	default:
		return nil, fmt.Errorf("unknown private key tag 0x%02x", data[0])
	}
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// reader decodes a sequence of fields and keeps the first error.
type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) int() *big.Int {
	if r.err != nil {
		return new(big.Int)
	}
	v, off, err := utils.ReadInt(r.data, r.off)
	if err != nil {
		r.err = err
		return new(big.Int)
	}
	r.off = off
	return v
}

func (r *reader) count(limit int) int {
	if r.err != nil {
		return 0
	}
	n, off, err := utils.SafeReadLength(r.data, r.off, limit)
	if err != nil {
		r.err = err
		return 0
	}
	r.off = off
	return n
}

func (r *reader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.data) {
		return errors.New("trailing data after private key")
	}
	return nil
}
