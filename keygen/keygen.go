// Package keygen assembles RSA key pairs from provable primes.
//
// GenerateKeyPair draws a seed, constructs the factors with package provable and
// derives the private key. Assemble and ImportFactors expose the assembly step for
// factors obtained elsewhere.
package keygen

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/core"
	"github.com/BackendStack21/provable-rsa-go/primality"
	"github.com/BackendStack21/provable-rsa-go/provable"
	"github.com/BackendStack21/provable-rsa-go/utils"
)

// errSmallPrivateExponent marks a key whose d does not exceed 2^(nlen/2).
var errSmallPrivateExponent = errors.New("private exponent not above 2^(nlen/2)")

// GenerateKeyPair generates a key pair for params with a fresh random seed. A nil e
// selects core.DefaultExponent. When a construction runs out of attempts a new seed
// is drawn, up to cfg.MaxSeedRetries seeds in total.
func GenerateKeyPair(params core.Params, cfg core.Config, e *big.Int) (*provrsa.KeyPair, error) {
	e, err := checkInputs(params, cfg, e)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxSeedRetries; attempt++ {
		seed, err := utils.GenerateSeed(params.SeedBits())
		if err != nil {
			return nil, err
		}
		kp, err := generate(params, cfg, e, seed)
		utils.Zeroize(seed)
		if err == nil {
			return kp, nil
		}
		if !errors.Is(err, provrsa.ErrPrimeConstructionExhausted) {
			return nil, err
		}
		cfg.Log().Debugf("seed %d/%d rejected: %v", attempt, cfg.MaxSeedRetries, err)
		lastErr = err
	}
	return nil, &provrsa.GenerationError{
		Stage:    "key generation",
		Length:   int(params.ModulusBits),
		Attempts: cfg.MaxSeedRetries,
		Err:      lastErr,
	}
}

// GenerateKeyPairFromSeed generates a deterministic key pair from seed, which must hold
// at least twice the security strength in bits. A nil e selects core.DefaultExponent.
func GenerateKeyPairFromSeed(params core.Params, cfg core.Config, e *big.Int, seed []byte) (*provrsa.KeyPair, error) {
	e, err := checkInputs(params, cfg, e)
	if err != nil {
		return nil, err
	}
	if len(seed)*8 < params.SeedBits() {
		return nil, fmt.Errorf("%w: got %d bits, need %d", provrsa.ErrSeedTooShort, len(seed)*8, params.SeedBits())
	}
	if err := utils.ValidateSeedEntropy(seed); err != nil {
		return nil, fmt.Errorf("%w: %v", provrsa.ErrInvalidParams, err)
	}
	return generate(params, cfg, e, seed)
}

// GenerateBatch generates count independent key pairs in parallel, each from its own seed.
func GenerateBatch(params core.Params, cfg core.Config, e *big.Int, count int) ([]*provrsa.KeyPair, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: batch size must be positive", provrsa.ErrInvalidParams)
	}
	if _, err := checkInputs(params, cfg, e); err != nil {
		return nil, err
	}

	keys := make([]*provrsa.KeyPair, count)
	errs := make([]error, count)
	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func(i int) {
			defer wg.Done()
			keys[i], errs[i] = GenerateKeyPair(params, cfg, e)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i+1, err)
		}
	}
	return keys, nil
}

// ImportFactors verifies externally supplied factors with Miller-Rabin and Lucas and
// assembles a key pair from them. rounds of zero or less selects 64.
func ImportFactors(e *big.Int, primes []*big.Int, rounds int) (*provrsa.KeyPair, error) {
	if rounds <= 0 {
		rounds = core.RSA15360Params.MillerRabinRounds
	}
	for i, r := range primes {
		if r == nil || !primality.IsProbablePrime(r, rounds) {
			return nil, fmt.Errorf("%w: factor %d", provrsa.ErrInvalidPrime, i+1)
		}
	}
	kp, err := Assemble(e, primes, Options{})
	if err != nil {
		return nil, err
	}
	if err := Validate(kp); err != nil {
		return nil, err
	}
	return kp, nil
}

func checkInputs(params core.Params, cfg core.Config, e *big.Int) (*big.Int, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	if err := core.ValidateConfig(params, cfg); err != nil {
		return nil, err
	}
	if e == nil {
		e = core.DefaultExponent
	}
	if err := core.ValidateExponent(e); err != nil {
		return nil, err
	}
	return e, nil
}

func generate(params core.Params, cfg core.Config, e *big.Int, seed []byte) (*provrsa.KeyPair, error) {
	set, err := provable.GeneratePrimes(params, cfg, e, seed)
	if err != nil {
		return nil, err
	}
	if set.Rejected > 0 {
		cfg.Log().Debugf("%d factors regenerated for separation", set.Rejected)
	}

	kp, err := Assemble(e, set.Factors, Options{})
	if err != nil {
		return nil, err
	}

	nlen := int(params.ModulusBits)
	if kp.PublicKey.N.BitLen() != nlen {
		return nil, fmt.Errorf("%w: modulus has %d bits, want %d", provrsa.ErrInvalidKey, kp.PublicKey.N.BitLen(), nlen)
	}
	if kp.D().Cmp(new(big.Int).Lsh(bigOne, uint(nlen/2))) <= 0 {
		return nil, &provrsa.GenerationError{
			Stage:  "private exponent",
			Length: nlen,
			Err:    errors.Join(provrsa.ErrPrimeConstructionExhausted, errSmallPrivateExponent),
		}
	}
	return kp, nil
}
