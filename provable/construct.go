package provable

import (
	"errors"
	"fmt"
	"math/big"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/core"
	"github.com/BackendStack21/provable-rsa-go/primality"
	"github.com/BackendStack21/provable-rsa-go/utils"
)

// attemptFactor bounds the candidate count of ConstructPrime at attemptFactor * length.
const attemptFactor = 5

// Request describes one prime factor to construct.
type Request struct {
	// Length is the bit length L of the prime.
	Length int
	// AuxLengths are N1 and N2. A length of 1 selects the trivial auxiliary prime 1.
	AuxLengths [2]int
	// Exponent is the public exponent e; the prime satisfies gcd(p-1, e) = 1.
	Exponent *big.Int
	// Factors is the number of primes u in the modulus. It fixes the lower bound
	// floor(2^(u*L-1))^(1/u) so that u such primes multiply to a full-length modulus.
	// Zero means two.
	Factors int
}

// Construction is a prime produced by ConstructPrime together with its certificate.
type Construction struct {
	Prime *big.Int
	// P0 is the large prime dividing Prime-1 that certifies it.
	P0 *big.Int
	// P1 divides Prime-1 and P2 divides Prime+1. Both are 1 when not requested.
	P1, P2 *big.Int
	// Seed is the input seed advanced past every value consumed.
	Seed []byte
	// Attempts is the number of candidates examined.
	Attempts int
}

// ConstructPrime builds a provable prime of req.Length bits from seed.
func ConstructPrime(req Request, seed []byte, cfg core.Config) (*Construction, error) {
	if len(seed) == 0 {
		return nil, provrsa.ErrSeedTooShort
	}
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	g, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}
	s := g.newSeed(seed)
	out, err := g.construct(req, lowerBound(req.Length, factorsOf(req)), s)
	if err != nil {
		return nil, err
	}
	out.Seed = g.encode(s)
	return out, nil
}

func factorsOf(req Request) int {
	if req.Factors == 0 {
		return 2
	}
	return req.Factors
}

// checkRequest rejects lengths for which p0*p1*p2 leaves no room for the search.
func checkRequest(req Request) error {
	if req.Exponent == nil || req.Exponent.Sign() <= 0 || req.Exponent.Bit(0) == 0 {
		return provrsa.ErrInvalidExponent
	}
	if req.Factors < 0 || req.Factors == 1 {
		return fmt.Errorf("%w: %d prime factors", provrsa.ErrInvalidParams, req.Factors)
	}
	if req.Length < 33 {
		return fmt.Errorf("%w: prime length %d below 33 bits", provrsa.ErrInvalidParams, req.Length)
	}
	certBits := (req.Length+1)/2 + 1
	for _, n := range req.AuxLengths {
		switch {
		case n < 1:
			return fmt.Errorf("%w: auxiliary prime length %d", provrsa.ErrInvalidParams, n)
		case n > 1:
			certBits += n
		}
	}
	if certBits > req.Length-2 {
		return fmt.Errorf("%w: auxiliary primes too long for a %d-bit prime", provrsa.ErrInvalidParams, req.Length)
	}
	return nil
}

// lowerBound returns floor(2^(u*length-1))^(1/u). For u = 2 this is
// floor(sqrt(2) * 2^(length-1)).
func lowerBound(length, u int) *big.Int {
	return primality.IntegerRoot(new(big.Int).Lsh(bigOne, uint(u*length-1)), u)
}

// construct advances s in place.
func (g *generator) construct(req Request, lower *big.Int, s *seedState) (*Construction, error) {
	length := req.Length

	p1, err := g.auxiliary(req.AuxLengths[0], s)
	if err != nil {
		return nil, err
	}
	p2, err := g.auxiliary(req.AuxLengths[1], s)
	if err != nil {
		return nil, err
	}
	p0, _, err := g.randomPrime((length+1)/2+1, s)
	if err != nil {
		return nil, err
	}

	p0p1 := new(big.Int).Mul(p0, p1)
	if new(big.Int).GCD(nil, nil, p0p1, p2).Cmp(bigOne) != 0 {
		return nil, &provrsa.GenerationError{
			Stage:  "auxiliary coprimality",
			Length: length,
			Err:    errors.Join(provrsa.ErrPrimeConstructionExhausted, errors.New("gcd(p0*p1, p2) != 1")),
		}
	}

	iterations := iterationsFor(length)
	limit := new(big.Int).Lsh(bigOne, uint(length))

	x := g.gather(s, iterations)
	x.Mod(x, new(big.Int).Sub(limit, lower))
	x.Add(x, lower)

	// y in [1, p2] with y*p0*p1 = 1 mod p2.
	y := big.NewInt(1)
	if p2.Cmp(bigOne) != 0 {
		y.ModInverse(p0p1, p2)
	}

	twoP0P1 := new(big.Int).Lsh(p0p1, 1)
	step := new(big.Int).Mul(twoP0P1, p2)
	twoYP0P1 := new(big.Int).Mul(twoP0P1, y)
	t := utils.CeilDiv(new(big.Int).Add(twoYP0P1, x), step)

	p := new(big.Int)
	k := new(big.Int)
	pMinus1 := new(big.Int)
	pMinus3 := new(big.Int)
	exp := new(big.Int)
	z := new(big.Int)
	gcd := new(big.Int)
	limitAttempts := attemptFactor * length
	for attempts := 1; ; attempts++ {
		candidate(p, k, t, p2, y, p0p1)
		if p.Cmp(limit) > 0 {
			t = utils.CeilDiv(new(big.Int).Add(twoYP0P1, lower), step)
			candidate(p, k, t, p2, y, p0p1)
		}

		pMinus1.Sub(p, bigOne)
		if gcd.GCD(nil, nil, pMinus1, req.Exponent).Cmp(bigOne) == 0 {
			a := g.gather(s, iterations)
			pMinus3.Sub(p, bigThree)
			a.Mod(a, pMinus3)
			a.Add(a, big.NewInt(2))

			// z = a^(2(t*p2 - y)*p1) mod p
			exp.Lsh(k, 1)
			exp.Mul(exp, p1)
			z.Exp(a, exp, p)
			if gcd.GCD(nil, nil, new(big.Int).Sub(z, bigOne), p).Cmp(bigOne) == 0 &&
				new(big.Int).Exp(z, p0, p).Cmp(bigOne) == 0 {
				return &Construction{
					Prime:    new(big.Int).Set(p),
					P0:       p0,
					P1:       p1,
					P2:       p2,
					Attempts: attempts,
				}, nil
			}
		}

		if attempts >= limitAttempts {
			return nil, &provrsa.GenerationError{
				Stage:    "provable prime",
				Length:   length,
				Attempts: attempts,
				Err:      provrsa.ErrPrimeConstructionExhausted,
			}
		}
		t.Add(t, bigOne)
	}
}

// candidate sets k = t*p2 - y and p = 2*k*p0*p1 + 1.
func candidate(p, k, t, p2, y, p0p1 *big.Int) {
	k.Mul(t, p2)
	k.Sub(k, y)
	p.Mul(k, p0p1)
	p.Lsh(p, 1)
	p.Add(p, bigOne)
}

// auxiliary returns a Shawe-Taylor prime of n bits, or 1 when n is 1.
func (g *generator) auxiliary(n int, s *seedState) (*big.Int, error) {
	if n == 1 {
		return big.NewInt(1), nil
	}
	p, _, err := g.randomPrime(n, s)
	return p, err
}
