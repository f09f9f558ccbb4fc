package provable

import (
	"errors"
	"fmt"
	"math/big"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/core"
)

// separationMargin is subtracted from the shortest factor length to obtain the
// minimum distance between any two factors.
const separationMargin = 100

// PrimeSet is the output of GeneratePrimes.
type PrimeSet struct {
	// Factors holds cfg.Primes provable primes in generation order.
	Factors []*big.Int
	// Seed is the seed advanced past the last factor.
	Seed []byte
	// Rejected counts factors discarded for being too close to an earlier one.
	Rejected int
}

// GeneratePrimes constructs cfg.Primes factors for a params.ModulusBits modulus. The
// seed is threaded through the constructions: each factor starts from the seed the
// previous one returned. A factor within 2^(L_min-100) of an earlier one is discarded
// and rebuilt from the advanced seed, at most cfg.MaxDistanceRetries times.
func GeneratePrimes(params core.Params, cfg core.Config, e *big.Int, seed []byte) (*PrimeSet, error) {
	if err := core.ValidateConfig(params, cfg); err != nil {
		return nil, err
	}
	if len(seed)*8 < params.SeedBits() {
		return nil, fmt.Errorf("%w: got %d bits, need %d", provrsa.ErrSeedTooShort, len(seed)*8, params.SeedBits())
	}
	g, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}

	lengths := params.PrimeLengths(cfg.Primes)
	minLength := lengths[len(lengths)-1]
	bound := new(big.Int).Lsh(bigOne, uint(minLength-separationMargin))

	s := g.newSeed(seed)
	set := &PrimeSet{Factors: make([]*big.Int, 0, cfg.Primes)}
	for i, length := range lengths {
		req := Request{
			Length:     length,
			AuxLengths: cfg.AuxLengths,
			Exponent:   e,
			Factors:    cfg.Primes,
		}
		if err := checkRequest(req); err != nil {
			return nil, err
		}
		lower := lowerBound(length, cfg.Primes)

		for retries := 0; ; retries++ {
			c, err := g.construct(req, lower, s)
			if err != nil {
				return nil, err
			}
			g.log.Debugf("factor %d: %d-bit prime after %d candidates", i+1, length, c.Attempts)

			j := tooClose(c.Prime, set.Factors, bound)
			if j < 0 {
				set.Factors = append(set.Factors, c.Prime)
				break
			}
			set.Rejected++
			g.log.Debugf("factor %d: within 2^%d of factor %d, regenerating", i+1, minLength-separationMargin, j+1)
			if retries+1 >= cfg.MaxDistanceRetries {
				return nil, &provrsa.GenerationError{
					Stage:    "prime separation",
					Length:   length,
					Attempts: retries + 1,
					Err:      errors.Join(provrsa.ErrPrimeConstructionExhausted, provrsa.ErrPrimesTooClose),
				}
			}
		}
	}
	set.Seed = g.encode(s)
	return set, nil
}

// tooClose returns the index of the first factor within bound of p, or -1.
func tooClose(p *big.Int, factors []*big.Int, bound *big.Int) int {
	diff := new(big.Int)
	for j, f := range factors {
		if diff.Sub(p, f).CmpAbs(bound) <= 0 {
			return j
		}
	}
	return -1
}
