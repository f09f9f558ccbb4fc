package provable

import (
	"errors"
	"math/big"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/core"
	"github.com/BackendStack21/provable-rsa-go/primality"
	"github.com/BackendStack21/provable-rsa-go/utils"
)

var (
	bigOne   = big.NewInt(1)
	bigThree = big.NewInt(3)
)

// Result is a prime produced by RandomPrime.
type Result struct {
	Prime *big.Int
	// Seed is the input seed advanced past every value consumed.
	Seed []byte
	// Counter is the cumulative candidate count across all recursion levels.
	Counter int
}

// RandomPrime returns a provable prime of exactly length bits derived from seed.
func RandomPrime(length int, seed []byte, cfg core.Config) (*Result, error) {
	if len(seed) == 0 {
		return nil, provrsa.ErrSeedTooShort
	}
	g, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}
	s := g.newSeed(seed)
	c, counter, err := g.randomPrime(length, s)
	if err != nil {
		return nil, err
	}
	return &Result{Prime: c, Seed: g.encode(s), Counter: counter}, nil
}

// randomPrime advances s in place and returns the prime and the candidate counter.
func (g *generator) randomPrime(length int, s *seedState) (*big.Int, int, error) {
	if length < 2 {
		return nil, 0, &provrsa.GenerationError{
			Stage:  "shawe-taylor",
			Length: length,
			Err:    errors.Join(provrsa.ErrPrimeConstructionExhausted, errors.New("length below 2 bits")),
		}
	}
	if length < 33 {
		return g.smallPrime(length, s)
	}

	c0, counter, err := g.randomPrime((length+1)/2+1, s)
	if err != nil {
		return nil, counter, err
	}

	iterations := iterationsFor(length)
	oldCounter := counter

	half := new(big.Int).Lsh(bigOne, uint(length-1))
	limit := new(big.Int).Lsh(bigOne, uint(length))
	twoC0 := new(big.Int).Lsh(c0, 1)

	x := g.gather(s, iterations)
	x.Mod(x, half)
	x.Add(x, half)
	t := utils.CeilDiv(x, twoC0)

	c := new(big.Int)
	cMinus3 := new(big.Int)
	z := new(big.Int)
	zMinus1 := new(big.Int)
	twoT := new(big.Int)
	gcd := new(big.Int)
	for {
		c.Mul(twoC0, t)
		c.Add(c, bigOne)
		if c.Cmp(limit) > 0 {
			t = utils.CeilDiv(half, twoC0)
			c.Mul(twoC0, t)
			c.Add(c, bigOne)
		}
		counter++

		a := g.gather(s, iterations)
		cMinus3.Sub(c, bigThree)
		a.Mod(a, cMinus3)
		a.Add(a, big.NewInt(2))

		twoT.Lsh(t, 1)
		z.Exp(a, twoT, c)
		zMinus1.Sub(z, bigOne)
		if gcd.GCD(nil, nil, zMinus1, c).Cmp(bigOne) == 0 && new(big.Int).Exp(z, c0, c).Cmp(bigOne) == 0 {
			return new(big.Int).Set(c), counter, nil
		}

		if counter >= 4*length+oldCounter {
			return nil, counter, &provrsa.GenerationError{
				Stage:    "shawe-taylor",
				Length:   length,
				Attempts: counter - oldCounter,
				Err:      provrsa.ErrPrimeConstructionExhausted,
			}
		}
		t.Add(t, bigOne)
	}
}

// smallPrime handles lengths below 33 bits, where trial division is exact.
func (g *generator) smallPrime(length int, s *seedState) (*big.Int, int, error) {
	half := new(big.Int).Lsh(bigOne, uint(length-1))
	counter := 0
	for {
		c := utils.XOR(g.hashAt(s, 0), g.hashAt(s, 1))
		c.Mod(c, half)
		c.Add(c, half)
		c.SetBit(c, 0, 1)
		counter++
		s.advance(2)

		if primality.TrialDivision(c.Uint64()) {
			return c, counter, nil
		}
		if counter > 4*length {
			return nil, counter, &provrsa.GenerationError{
				Stage:    "shawe-taylor",
				Length:   length,
				Attempts: counter,
				Err:      provrsa.ErrPrimeConstructionExhausted,
			}
		}
	}
}
