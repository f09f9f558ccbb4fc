package primality

import "math/big"

// IsProbablePrime combines Miller-Rabin and Lucas, the pairing FIPS 186 recommends for
// checking primes that were not produced by a provable construction. Values below
// 2^32 are decided exactly by trial division.
func IsProbablePrime(n *big.Int, rounds int) bool {
	if n.Sign() <= 0 {
		return false
	}
	if n.BitLen() <= 32 {
		return TrialDivision(n.Uint64())
	}
	return MillerRabin(n, rounds) && Lucas(n)
}
