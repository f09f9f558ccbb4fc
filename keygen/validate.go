package keygen

import (
	"fmt"
	"math/big"

	provrsa "github.com/BackendStack21/provable-rsa-go"
)

// separationMargin matches the distance bound applied during generation.
const separationMargin = 100

// Validate re-checks the structural invariants of a key pair: n equals the product of
// the factors, e is coprime to every r_i - 1, d inverts e modulo lambda(n), and every
// CRT value is consistent. For factors longer than 100 bits the pairwise separation
// bound 2^(L_min-100) is enforced too.
func Validate(kp *provrsa.KeyPair) error {
	if kp == nil || kp.PublicKey.N == nil || kp.PublicKey.E == nil {
		return fmt.Errorf("%w: missing public key", provrsa.ErrInvalidKey)
	}
	n, e := kp.PublicKey.N, kp.PublicKey.E
	if n.Sign() <= 0 || e.Cmp(bigOne) <= 0 || e.Bit(0) == 0 {
		return fmt.Errorf("%w: public key out of range", provrsa.ErrInvalidKey)
	}

	if kp.Simple != nil {
		if kp.Simple.N == nil || kp.Simple.D == nil || kp.Simple.N.Cmp(n) != 0 {
			return fmt.Errorf("%w: private modulus differs from public modulus", provrsa.ErrInvalidKey)
		}
	}
	if kp.CRT == nil {
		return nil
	}
	crt := kp.CRT
	if crt.P == nil || crt.Q == nil || crt.Dp == nil || crt.Dq == nil || crt.Qinv == nil {
		return fmt.Errorf("%w: incomplete CRT key", provrsa.ErrInvalidKey)
	}
	for i, a := range crt.Additional {
		if a.R == nil || a.D == nil || a.T == nil {
			return fmt.Errorf("%w: incomplete record for factor %d", provrsa.ErrInvalidKey, i+3)
		}
	}

	primes := crt.Primes()
	if crt.Modulus().Cmp(n) != 0 {
		return fmt.Errorf("%w: n is not the product of the factors", provrsa.ErrInvalidKey)
	}

	lambda := big.NewInt(1)
	rMinus1 := new(big.Int)
	tmp := new(big.Int)
	exps := []*big.Int{crt.Dp, crt.Dq}
	for _, a := range crt.Additional {
		exps = append(exps, a.D)
	}
	for i, r := range primes {
		if r.Cmp(bigThree) < 0 {
			return fmt.Errorf("%w: factor %d is below 3", provrsa.ErrInvalidKey, i+1)
		}
		rMinus1.Sub(r, bigOne)
		if tmp.GCD(nil, nil, e, rMinus1).Cmp(bigOne) != 0 {
			return fmt.Errorf("%w: gcd(e, r_%d - 1) != 1", provrsa.ErrInvalidExponent, i+1)
		}
		if tmp.Mul(e, exps[i]).Mod(tmp, rMinus1).Cmp(bigOne) != 0 {
			return fmt.Errorf("%w: CRT exponent %d does not invert e", provrsa.ErrInvalidKey, i+1)
		}
		lambda = lcm(lambda, rMinus1)
	}

	if kp.Simple != nil {
		if tmp.Mul(e, kp.Simple.D).Mod(tmp, lambda).Cmp(bigOne) != 0 {
			return fmt.Errorf("%w: e*d != 1 mod lambda(n)", provrsa.ErrInvalidKey)
		}
	}

	if tmp.Mul(crt.Q, crt.Qinv).Mod(tmp, crt.P).Cmp(bigOne) != 0 {
		return fmt.Errorf("%w: qInv is not the inverse of q mod p", provrsa.ErrInvalidKey)
	}
	prefix := new(big.Int).Mul(crt.P, crt.Q)
	for i, a := range crt.Additional {
		if tmp.Mul(prefix, a.T).Mod(tmp, a.R).Cmp(bigOne) != 0 {
			return fmt.Errorf("%w: CRT coefficient of factor %d is wrong", provrsa.ErrInvalidKey, i+3)
		}
		prefix.Mul(prefix, a.R)
	}

	return checkSeparation(primes)
}

// checkSeparation enforces |r_i - r_j| > 2^(L_min-100) when L_min exceeds 100 bits.
func checkSeparation(primes []*big.Int) error {
	minLen := primes[0].BitLen()
	for _, r := range primes[1:] {
		minLen = min(minLen, r.BitLen())
	}
	if minLen <= separationMargin {
		return nil
	}
	bound := new(big.Int).Lsh(bigOne, uint(minLen-separationMargin))
	diff := new(big.Int)
	for i := range primes {
		for j := i + 1; j < len(primes); j++ {
			if diff.Sub(primes[i], primes[j]).CmpAbs(bound) <= 0 {
				return fmt.Errorf("%w: factors %d and %d", provrsa.ErrPrimesTooClose, i+1, j+1)
			}
		}
	}
	return nil
}
