package primality

import (
	"math/big"

	"github.com/BackendStack21/provable-rsa-go/utils"
)

// MillerRabin runs rounds iterations of the Miller-Rabin test on w with witnesses drawn
// uniformly from [2, w-2] via utils.RandReader. A failure to draw randomness yields false.
func MillerRabin(w *big.Int, rounds int) bool {
	if w.Sign() < 0 {
		return false
	}
	if w.IsInt64() && w.Int64() < 10 {
		switch w.Int64() {
		case 2, 3, 5, 7:
			return true
		default:
			return false
		}
	}
	if w.Bit(0) == 0 {
		return false
	}
	if rounds < 1 {
		rounds = 1
	}

	wMinus1 := new(big.Int).Sub(w, bigOne)
	a := wMinus1.TrailingZeroBits()
	m := new(big.Int).Rsh(wMinus1, a)
	hi := new(big.Int).Sub(w, bigTwo)

	z := new(big.Int)
	for r := 0; r < rounds; r++ {
		b, err := utils.RandomIntRange(bigTwo, hi)
		if err != nil {
			return false
		}
		if !millerRabinRound(w, wMinus1, m, a, b, z) {
			return false
		}
	}
	return true
}

// millerRabinRound reports whether b fails to witness the compositeness of w.
func millerRabinRound(w, wMinus1, m *big.Int, a uint, b, z *big.Int) bool {
	z.Exp(b, m, w)
	if z.Cmp(bigOne) == 0 || z.Cmp(wMinus1) == 0 {
		return true
	}
	for j := uint(1); j < a; j++ {
		z.Mul(z, z)
		z.Mod(z, w)
		if z.Cmp(wMinus1) == 0 {
			return true
		}
		if z.Cmp(bigOne) == 0 {
			return false
		}
	}
	return false
}
