// Package primality implements the primality verifiers: Miller-Rabin, Lucas, the
// Jacobi symbol, a perfect-square check and small-prime trial division.
//
// The verifiers are used to validate externally supplied factors. Factors produced
// by the provable construction carry their own proof and are not re-tested here.
// Every verifier returns a plain verdict; false covers both "proven composite" and
// "inconclusive".
package primality

import (
	"math"
	"sync"
)

// DefaultSieveBound covers every prime needed to trial-divide values below 2^32.
const DefaultSieveBound = 1 << 16

var (
	defaultPrimesOnce sync.Once
	defaultPrimes     []uint32
)

// SmallPrimes returns all primes not larger than bound, in increasing order.
// The table for DefaultSieveBound is computed once and shared; callers must not modify it.
func SmallPrimes(bound int) []uint32 {
	if bound == DefaultSieveBound {
		defaultPrimesOnce.Do(func() {
			defaultPrimes = sieve(DefaultSieveBound)
		})
		return defaultPrimes
	}
	return sieve(bound)
}

// sieve runs the Sieve of Eratosthenes up to bound inclusive.
func sieve(bound int) []uint32 {
	if bound < 2 {
		return nil
	}
	composite := make([]bool, bound+1)
	primes := make([]uint32, 0, bound/int(math.Max(1, math.Log(float64(bound))-1)))
	for i := 2; i <= bound; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, uint32(i))
		for j := i * i; j <= bound; j += i {
			composite[j] = true
		}
	}
	return primes
}

// TrialDivision reports whether c is prime by dividing it by every prime up to sqrt(c).
// Values below 2^32 are covered by the shared sieve; larger values continue with odd divisors.
func TrialDivision(c uint64) bool {
	if c < 2 {
		return false
	}
	for _, p := range SmallPrimes(DefaultSieveBound) {
		pp := uint64(p)
		if pp*pp > c {
			return true
		}
		if c%pp == 0 {
			return c == pp
		}
	}
	for d := uint64(DefaultSieveBound + 1); d <= c/d; d += 2 {
		if c%d == 0 {
			return false
		}
	}
	return true
}
