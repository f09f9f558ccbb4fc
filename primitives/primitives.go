// Package primitives implements the RSAEP and RSADP primitives of RFC 8017 over the
// key types of package provrsa, including multi-prime CRT decryption.
//
// The functions are pure: arguments are never modified and results are fresh values.
// Arithmetic is not constant time.
package primitives

import (
	"fmt"
	"math/big"

	provrsa "github.com/BackendStack21/provable-rsa-go"
)

var bigOne = big.NewInt(1)

// ModPow returns base^exp mod m by right-to-left binary exponentiation, squaring the
// base once per exponent bit. exp must be non-negative and m positive.
func ModPow(base, exp, m *big.Int) *big.Int {
	if exp.Sign() < 0 {
		panic("primitives: negative exponent")
	}
	if m.Cmp(bigOne) == 0 {
		return new(big.Int)
	}
	result := big.NewInt(1)
	b := new(big.Int).Mod(base, m)
	for i := 0; i < exp.BitLen(); i++ {
		if exp.Bit(i) == 1 {
			result.Mul(result, b)
			result.Mod(result, m)
		}
		b.Mul(b, b)
		b.Mod(b, m)
	}
	return result
}

// Encrypt computes c = m^e mod n. m must lie in [0, n).
func Encrypt(pub *provrsa.PublicKey, m *big.Int) (*big.Int, error) {
	if pub == nil || pub.N == nil || pub.E == nil || pub.N.Sign() <= 0 {
		return nil, fmt.Errorf("%w: missing public key", provrsa.ErrInvalidKey)
	}
	if m == nil || m.Sign() < 0 || m.Cmp(pub.N) >= 0 {
		return nil, provrsa.ErrMessageOutOfRange
	}
	return ModPow(m, pub.E, pub.N), nil
}

// Decrypt recovers m from c with either private key form. c must lie in [0, n).
// A CRT key is evaluated with Garner's recombination over all of its factors.
func Decrypt(priv provrsa.PrivateKey, c *big.Int) (*big.Int, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: missing private key", provrsa.ErrInvalidKey)
	}
	switch k := priv.(type) {
	case *provrsa.SimplePrivateKey:
		if k.N == nil || k.D == nil {
			return nil, fmt.Errorf("%w: incomplete private key", provrsa.ErrInvalidKey)
		}
		if k.N.Sign() <= 0 || k.D.Sign() < 0 {
			return nil, fmt.Errorf("%w: negative private key value", provrsa.ErrInvalidKey)
		}
		if err := checkCiphertext(c, k.N); err != nil {
			return nil, err
		}
		return ModPow(c, k.D, k.N), nil
	case *provrsa.CRTPrivateKey:
		if err := checkCRTKey(k); err != nil {
			return nil, err
		}
		if err := checkCiphertext(c, k.Modulus()); err != nil {
			return nil, err
		}
		return decryptCRT(k, c), nil
	default:
		return nil, fmt.Errorf("%w: unsupported private key type %T", provrsa.ErrInvalidKey, priv)
	}
}

// checkCRTKey rejects missing fields, non-positive primes and negative exponents or
// coefficients, which would otherwise reach ModPow.
func checkCRTKey(k *provrsa.CRTPrivateKey) error {
	if k.P == nil || k.Q == nil || k.Dp == nil || k.Dq == nil || k.Qinv == nil {
		return fmt.Errorf("%w: incomplete CRT key", provrsa.ErrInvalidKey)
	}
	primes := []*big.Int{k.P, k.Q}
	values := []*big.Int{k.Dp, k.Dq, k.Qinv}
	for i, a := range k.Additional {
		if a.R == nil || a.D == nil || a.T == nil {
			return fmt.Errorf("%w: incomplete record for factor %d", provrsa.ErrInvalidKey, i+3)
		}
		primes = append(primes, a.R)
		values = append(values, a.D, a.T)
	}
	for _, r := range primes {
		if r.Sign() <= 0 {
			return fmt.Errorf("%w: non-positive prime factor", provrsa.ErrInvalidKey)
		}
	}
	for _, v := range values {
		if v.Sign() < 0 {
			return fmt.Errorf("%w: negative CRT value", provrsa.ErrInvalidKey)
		}
	}
	return nil
}

func checkCiphertext(c, n *big.Int) error {
	if c == nil || c.Sign() < 0 || c.Cmp(n) >= 0 {
		return provrsa.ErrCiphertextOutOfRange
	}
	return nil
}

// decryptCRT follows RFC 8017 section 5.1.2 step 2b.
func decryptCRT(k *provrsa.CRTPrivateKey, c *big.Int) *big.Int {
	m1 := ModPow(c, k.Dp, k.P)
	m2 := ModPow(c, k.Dq, k.Q)

	// h = (m1 - m2) * qInv mod p, m = m2 + q*h
	h := new(big.Int).Sub(m1, m2)
	h.Mul(h, k.Qinv)
	h.Mod(h, k.P)
	m := h.Mul(h, k.Q)
	m.Add(m, m2)

	r := new(big.Int).Mul(k.P, k.Q)
	hi := new(big.Int)
	for _, a := range k.Additional {
		mi := ModPow(c, a.D, a.R)
		// h = (m_i - m) * t_i mod r_i, m = m + R*h
		hi.Sub(mi, m)
		hi.Mul(hi, a.T)
		hi.Mod(hi, a.R)
		m.Add(m, hi.Mul(hi, r))
		r.Mul(r, a.R)
	}
	return m
}
