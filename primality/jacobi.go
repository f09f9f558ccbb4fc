package primality

import "math/big"

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
)

// Jacobi computes the Jacobi symbol (a/n) for odd positive n.
// It returns 0 when n is even or not positive.
func Jacobi(a, n *big.Int) int {
	if n.Sign() <= 0 || n.Bit(0) == 0 {
		return 0
	}
	return jacobi(new(big.Int).Mod(a, n), new(big.Int).Set(n))
}

// jacobi expects 0 <= a < n with n odd.
func jacobi(a, n *big.Int) int {
	if n.Cmp(bigOne) == 0 || a.Cmp(bigOne) == 0 {
		return 1
	}
	if a.Sign() == 0 {
		return 0
	}

	e := a.TrailingZeroBits()
	a1 := new(big.Int).Rsh(a, e)

	s := 1
	if e%2 == 1 {
		if r := n.Bits()[0] & 7; r == 3 || r == 5 {
			s = -1
		}
	}
	if n.Bits()[0]&3 == 3 && a1.Bits()[0]&3 == 3 {
		s = -s
	}
	if a1.Cmp(bigOne) == 0 {
		return s
	}
	return s * jacobi(new(big.Int).Mod(n, a1), a1)
}
