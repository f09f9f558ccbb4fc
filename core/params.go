// Package core provides parameter sets and validation for provable RSA key generation.
package core

import (
	"fmt"
	"math/big"

	provrsa "github.com/BackendStack21/provable-rsa-go"
)

// Params is the parameter set for one modulus length.
type Params struct {
	ModulusBits provrsa.ModulusLength    `json:"modulus_bits"`
	Strength    provrsa.SecurityStrength `json:"security_strength"`
	// MillerRabinRounds is the round count used when verifying externally supplied factors.
	MillerRabinRounds int `json:"miller_rabin_rounds"`
	// MaxPrimes bounds the number of prime factors in a multi-prime key.
	MaxPrimes int `json:"max_primes"`
	// MinAuxBits and MaxAuxTotalBits bound the auxiliary prime lengths N1 and N2.
	MinAuxBits      int `json:"min_aux_bits"`
	MaxAuxTotalBits int `json:"max_aux_total_bits"`
}

// RSA2048Params is the parameter set for 112-bit security.
var RSA2048Params = Params{
	ModulusBits:       provrsa.RSA2048,
	Strength:          112,
	MillerRabinRounds: 38,
	MaxPrimes:         3,
	MinAuxBits:        140,
	MaxAuxTotalBits:   494,
}

// RSA3072Params is the parameter set for 128-bit security.
var RSA3072Params = Params{
	ModulusBits:       provrsa.RSA3072,
	Strength:          128,
	MillerRabinRounds: 44,
	MaxPrimes:         3,
	MinAuxBits:        170,
	MaxAuxTotalBits:   750,
}

// RSA7680Params is the parameter set for 192-bit security.
var RSA7680Params = Params{
	ModulusBits:       provrsa.RSA7680,
	Strength:          192,
	MillerRabinRounds: 56,
	MaxPrimes:         4,
	MinAuxBits:        250,
	MaxAuxTotalBits:   1900,
}

// RSA15360Params is the parameter set for 256-bit security.
var RSA15360Params = Params{
	ModulusBits:       provrsa.RSA15360,
	Strength:          256,
	MillerRabinRounds: 64,
	MaxPrimes:         5,
	MinAuxBits:        300,
	MaxAuxTotalBits:   3800,
}

// GetParams returns the parameter set for the given modulus length.
func GetParams(nlen provrsa.ModulusLength) (Params, error) {
	switch nlen {
	case provrsa.RSA2048:
		return RSA2048Params, nil
	case provrsa.RSA3072:
		return RSA3072Params, nil
	case provrsa.RSA7680:
		return RSA7680Params, nil
	case provrsa.RSA15360:
		return RSA15360Params, nil
	default:
		return Params{}, fmt.Errorf("%w: %d", provrsa.ErrUnsupportedKeyLength, nlen)
	}
}

// SeedBits returns the required seed length, twice the security strength.
func (p Params) SeedBits() int {
	return 2 * int(p.Strength)
}

// SeedBytes returns the seed length in bytes.
func (p Params) SeedBytes() int {
	return (p.SeedBits() + 7) / 8
}

// PrimeLengths splits the modulus length across u prime factors.
// Earlier factors absorb the remainder so the lengths sum to nlen.
func (p Params) PrimeLengths(u int) []int {
	nlen := int(p.ModulusBits)
	lengths := make([]int, u)
	for i := range lengths {
		lengths[i] = nlen / u
		if i < nlen%u {
			lengths[i]++
		}
	}
	return lengths
}

// ValidateParams validates the parameter set for consistency.
func ValidateParams(params Params) error {
	expected, err := GetParams(params.ModulusBits)
	if err != nil {
		return err
	}
	if params.Strength != expected.Strength {
		return fmt.Errorf("%w: security strength %d does not match modulus length %d",
			provrsa.ErrInvalidParams, params.Strength, params.ModulusBits)
	}
	if params.MillerRabinRounds < 1 {
		return fmt.Errorf("%w: Miller-Rabin rounds must be positive", provrsa.ErrInvalidParams)
	}
	if params.MaxPrimes < 2 {
		return fmt.Errorf("%w: at least two prime factors are required", provrsa.ErrInvalidParams)
	}
	if params.MinAuxBits < 2 || params.MaxAuxTotalBits < 2*params.MinAuxBits {
		return fmt.Errorf("%w: auxiliary prime bounds are inconsistent", provrsa.ErrInvalidParams)
	}
	return nil
}

var (
	exponentLow  = new(big.Int).Lsh(big.NewInt(1), 16)
	exponentHigh = new(big.Int).Lsh(big.NewInt(1), 256)
)

// DefaultExponent is F4 = 2^16 + 1.
var DefaultExponent = big.NewInt(65537)

// ValidateExponent checks that e is odd and 2^16 < e < 2^256.
func ValidateExponent(e *big.Int) error {
	if e == nil || e.Bit(0) == 0 || e.Cmp(exponentLow) <= 0 || e.Cmp(exponentHigh) >= 0 {
		return provrsa.ErrInvalidExponent
	}
	return nil
}
