package provrsa

import "math/big"

// ModulusLength is the bit length of an RSA modulus n.
type ModulusLength int

const (
	// RSA2048 provides 112-bit classical security.
	RSA2048 ModulusLength = 2048
	// RSA3072 provides 128-bit classical security.
	RSA3072 ModulusLength = 3072
	// RSA7680 provides 192-bit classical security.
	RSA7680 ModulusLength = 7680
	// RSA15360 provides 256-bit classical security.
	RSA15360 ModulusLength = 15360
)

// SecurityStrength is a NIST security strength in bits.
type SecurityStrength int

// =============================================================================
// Public Key
// =============================================================================

// PublicKey is an RSA public key (n, e).
type PublicKey struct {
	N *big.Int // Modulus
	E *big.Int // Public exponent
}

// Size returns the modulus size in bytes.
func (pub *PublicKey) Size() int {
	return (pub.N.BitLen() + 7) / 8
}

// Equal reports whether pub and other hold the same modulus and exponent.
func (pub *PublicKey) Equal(other *PublicKey) bool {
	if pub == nil || other == nil {
		return pub == other
	}
	return pub.N.Cmp(other.N) == 0 && pub.E.Cmp(other.E) == 0
}

// =============================================================================
// Private Keys
// =============================================================================

// PrivateKey is either a *SimplePrivateKey or a *CRTPrivateKey.
type PrivateKey interface {
	// Modulus returns n.
	Modulus() *big.Int
	isPrivateKey()
}

// SimplePrivateKey is the (n, d) representation of RFC 8017 section 3.2.
type SimplePrivateKey struct {
	N *big.Int
	D *big.Int
}

// Modulus returns n.
func (k *SimplePrivateKey) Modulus() *big.Int { return k.N }

func (*SimplePrivateKey) isPrivateKey() {}

// AdditionalPrimeData holds the CRT values for the third and later prime factors.
type AdditionalPrimeData struct {
	R *big.Int // Prime factor r_i
	D *big.Int // d mod (r_i - 1)
	T *big.Int // (r_1 * ... * r_(i-1))^-1 mod r_i
}

// CRTPrivateKey is the quintuple representation of RFC 8017 section 3.2, extended with
// additional prime records for multi-prime keys.
type CRTPrivateKey struct {
	P, Q       *big.Int
	Dp, Dq     *big.Int // d mod (p-1), d mod (q-1)
	Qinv       *big.Int // q^-1 mod p
	Additional []AdditionalPrimeData
}

// Modulus returns the product of all prime factors.
func (k *CRTPrivateKey) Modulus() *big.Int {
	n := new(big.Int).Mul(k.P, k.Q)
	for _, a := range k.Additional {
		n.Mul(n, a.R)
	}
	return n
}

// Primes returns every prime factor, p and q first.
func (k *CRTPrivateKey) Primes() []*big.Int {
	primes := make([]*big.Int, 0, 2+len(k.Additional))
	primes = append(primes, k.P, k.Q)
	for _, a := range k.Additional {
		primes = append(primes, a.R)
	}
	return primes
}

// PrimeCount returns u, the number of prime factors.
func (k *CRTPrivateKey) PrimeCount() int {
	return 2 + len(k.Additional)
}

func (*CRTPrivateKey) isPrivateKey() {}

// KeyPair contains the public key and both private key forms.
type KeyPair struct {
	PublicKey PublicKey
	Simple    *SimplePrivateKey
	CRT       *CRTPrivateKey
}

// D returns the private exponent.
func (kp *KeyPair) D() *big.Int {
	if kp.Simple == nil {
		return nil
	}
	return kp.Simple.D
}
