package primality

import "math/big"

// maxDiscriminantTrials bounds the search for D. A non-square n always has a suitable
// D long before this.
const maxDiscriminantTrials = 1 << 16

// Lucas runs the Lucas probable prime test with P = 1, Q = (1-D)/4, where D is the
// first of 5, -7, 9, -11, ... with Jacobi(D, n) = -1.
func Lucas(n *big.Int) bool {
	if n.Cmp(bigTwo) < 0 {
		return false
	}
	if n.BitLen() <= 32 {
		return TrialDivision(n.Uint64())
	}
	if n.Bit(0) == 0 || IsPerfectSquare(n) {
		return false
	}

	d, ok := selectDiscriminant(n)
	if !ok {
		return false
	}

	// Q = (1-D)/4 must be coprime to n.
	q := new(big.Int).Sub(bigOne, d)
	q.Quo(q, big.NewInt(4))
	if new(big.Int).GCD(nil, nil, new(big.Int).Abs(q), n).Cmp(bigOne) != 0 {
		return false
	}

	inv2 := new(big.Int).ModInverse(bigTwo, n)
	dm := new(big.Int).Mod(d, n)
	k := new(big.Int).Add(n, bigOne)

	u := big.NewInt(1)
	v := big.NewInt(1)
	ut := new(big.Int)
	vt := new(big.Int)
	tmp := new(big.Int)
	for i := k.BitLen() - 2; i >= 0; i-- {
		// U_2k = U_k V_k, V_2k = (V_k^2 + D U_k^2) / 2
		ut.Mul(u, v)
		ut.Mod(ut, n)

		vt.Mul(v, v)
		tmp.Mul(u, u)
		tmp.Mul(tmp, dm)
		vt.Add(vt, tmp)
		vt.Mul(vt, inv2)
		vt.Mod(vt, n)

		if k.Bit(i) == 1 {
			// U_2k+1 = (U_2k + V_2k) / 2, V_2k+1 = (V_2k + D U_2k) / 2
			u.Add(ut, vt)
			u.Mul(u, inv2)
			u.Mod(u, n)

			tmp.Mul(dm, ut)
			v.Add(vt, tmp)
			v.Mul(v, inv2)
			v.Mod(v, n)
		} else {
			u.Set(ut)
			v.Set(vt)
		}
	}
	return u.Sign() == 0
}

// selectDiscriminant walks 5, -7, 9, -11, ... and returns the first D with
// Jacobi(D, n) = -1. It reports false when some D shares a factor with n.
func selectDiscriminant(n *big.Int) (*big.Int, bool) {
	d := big.NewInt(5)
	for i := 0; i < maxDiscriminantTrials; i++ {
		switch Jacobi(d, n) {
		case -1:
			return d, true
		case 0:
			if new(big.Int).Abs(d).Cmp(n) != 0 {
				return nil, false
			}
		}
		if d.Sign() > 0 {
			d.Add(d, bigTwo)
		} else {
			d.Sub(d, bigTwo)
		}
		d.Neg(d)
	}
	return nil, false
}
