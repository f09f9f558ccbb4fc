package keygen

import (
	"fmt"
	"math/big"

	provrsa "github.com/BackendStack21/provable-rsa-go"
)

var (
	bigOne   = big.NewInt(1)
	bigThree = big.NewInt(3)
)

// Totient selects the modulus used to invert e.
type Totient int

const (
	// Carmichael uses lambda(n) = lcm(r_i - 1), the smallest valid d.
	Carmichael Totient = iota
	// Euler uses phi(n) = prod(r_i - 1). Some textbook vectors are computed this way.
	Euler
)

// String returns the totient name.
func (t Totient) String() string {
	switch t {
	case Carmichael:
		return "carmichael"
	case Euler:
		return "euler"
	default:
		return fmt.Sprintf("Totient(%d)", int(t))
	}
}

// Options controls key assembly.
type Options struct {
	Totient Totient
}

// Assemble derives the private exponent and CRT values for the given public exponent
// and prime factors. The factors are taken in order: the first two become p and q,
// the rest become additional primes.
func Assemble(e *big.Int, primes []*big.Int, opts Options) (*provrsa.KeyPair, error) {
	if e == nil || e.Cmp(bigOne) <= 0 || e.Bit(0) == 0 {
		return nil, provrsa.ErrInvalidExponent
	}
	if len(primes) < 2 {
		return nil, fmt.Errorf("%w: need at least two prime factors, got %d", provrsa.ErrInvalidKey, len(primes))
	}

	rs := make([]*big.Int, len(primes))
	for i, r := range primes {
		if r == nil || r.Cmp(bigThree) < 0 {
			return nil, fmt.Errorf("%w: factor %d is below 3", provrsa.ErrInvalidKey, i+1)
		}
		for j := 0; j < i; j++ {
			if rs[j].Cmp(r) == 0 {
				return nil, fmt.Errorf("%w: factors %d and %d are equal", provrsa.ErrInvalidKey, j+1, i+1)
			}
		}
		rs[i] = new(big.Int).Set(r)
	}

	n := big.NewInt(1)
	totient := big.NewInt(1)
	rMinus1 := new(big.Int)
	gcd := new(big.Int)
	for i, r := range rs {
		n.Mul(n, r)
		rMinus1.Sub(r, bigOne)
		if gcd.GCD(nil, nil, e, rMinus1).Cmp(bigOne) != 0 {
			return nil, fmt.Errorf("%w: gcd(e, r_%d - 1) != 1", provrsa.ErrInvalidExponent, i+1)
		}
		switch opts.Totient {
		case Euler:
			totient.Mul(totient, rMinus1)
		default:
			totient = lcm(totient, rMinus1)
		}
	}

	d := new(big.Int).ModInverse(e, totient)
	if d == nil {
		return nil, fmt.Errorf("%w: e is not invertible modulo the totient", provrsa.ErrInvalidExponent)
	}

	p, q := rs[0], rs[1]
	qInv := new(big.Int).ModInverse(q, p)
	if qInv == nil {
		return nil, fmt.Errorf("%w: q is not invertible modulo p", provrsa.ErrInvalidKey)
	}
	crt := &provrsa.CRTPrivateKey{
		P:    p,
		Q:    q,
		Dp:   crtExponent(d, p),
		Dq:   crtExponent(d, q),
		Qinv: qInv,
	}

	prefix := new(big.Int).Mul(p, q)
	for i, r := range rs[2:] {
		t := new(big.Int).ModInverse(prefix, r)
		if t == nil {
			return nil, fmt.Errorf("%w: factor %d shares a divisor with earlier factors", provrsa.ErrInvalidKey, i+3)
		}
		crt.Additional = append(crt.Additional, provrsa.AdditionalPrimeData{
			R: r,
			D: crtExponent(d, r),
			T: t,
		})
		prefix.Mul(prefix, r)
	}

	return &provrsa.KeyPair{
		PublicKey: provrsa.PublicKey{N: n, E: new(big.Int).Set(e)},
		Simple:    &provrsa.SimplePrivateKey{N: new(big.Int).Set(n), D: d},
		CRT:       crt,
	}, nil
}

// crtExponent returns d mod (r - 1).
func crtExponent(d, r *big.Int) *big.Int {
	return new(big.Int).Mod(d, new(big.Int).Sub(r, bigOne))
}

func lcm(a, b *big.Int) *big.Int {
	g := new(big.Int).GCD(nil, nil, a, b)
	out := new(big.Int).Quo(a, g)
	return out.Mul(out, b)
}
