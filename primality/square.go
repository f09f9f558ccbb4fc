package primality

import "math/big"

// ISqrt returns floor(sqrt(n)) for n >= 0 using integer Newton iteration.
// The iteration starts above the root and is bounded by ceil(log2(n)/2)+2 steps.
func ISqrt(n *big.Int) *big.Int {
	if n.Sign() < 0 {
		panic("primality: square root of negative number")
	}
	if n.Cmp(bigTwo) < 0 {
		return new(big.Int).Set(n)
	}

	m := n.BitLen()
	x := new(big.Int).Lsh(bigOne, uint((m+1)/2))
	y := new(big.Int)
	steps := (m+1)/2 + 2
	for i := 0; i < steps; i++ {
		y.Quo(n, x)
		y.Add(y, x)
		y.Rsh(y, 1)
		if y.Cmp(x) >= 0 {
			break
		}
		x.Set(y)
	}
	return x
}

// IsPerfectSquare reports whether n is the square of an integer.
func IsPerfectSquare(n *big.Int) bool {
	if n.Sign() < 0 {
		return false
	}
	r := ISqrt(n)
	return r.Mul(r, r).Cmp(n) == 0
}

// IntegerRoot returns floor(n^(1/k)) for n >= 0 and k >= 1.
func IntegerRoot(n *big.Int, k int) *big.Int {
	if k < 1 {
		panic("primality: root degree must be positive")
	}
	if k == 1 || n.Cmp(bigTwo) < 0 {
		return new(big.Int).Set(n)
	}
	if k == 2 {
		return ISqrt(n)
	}

	bk := big.NewInt(int64(k))
	bk1 := big.NewInt(int64(k - 1))
	x := new(big.Int).Lsh(bigOne, uint((n.BitLen()+k-1)/k))
	y := new(big.Int)
	pow := new(big.Int)
	for {
		// y = ((k-1)x + n / x^(k-1)) / k
		pow.Exp(x, bk1, nil)
		y.Quo(n, pow)
		y.Add(y, new(big.Int).Mul(bk1, x))
		y.Quo(y, bk)
		if y.Cmp(x) >= 0 {
			return x
		}
		x.Set(y)
	}
}
