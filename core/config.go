package core

import (
	"fmt"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/utils"
)

// Logger receives debug traces from key generation.
type Logger interface {
	Debugf(msg string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

// Debugf does nothing.
func (NopLogger) Debugf(string, ...any) {}

// Config holds the tunables that are not fixed by the modulus length.
type Config struct {
	// Hash selects the 512-bit hash used for pseudorandom derivation.
	Hash utils.HashAlgorithm
	// Endianness is the byte order used to encode seed integers before hashing.
	Endianness utils.Endianness
	// Primes is the number of prime factors u.
	Primes int
	// AuxLengths holds N1 and N2. A length of 1 means no auxiliary prime.
	AuxLengths [2]int
	// MaxDistanceRetries bounds the regeneration of a factor that is too close to another.
	MaxDistanceRetries int
	// MaxSeedRetries bounds how many fresh seeds GenerateKeyPair draws after a construction failure.
	MaxSeedRetries int
	Logger         Logger
}

// DefaultConfig returns a two-prime configuration without auxiliary primes.
func DefaultConfig() Config {
	return Config{
		Hash:               utils.SHA512,
		Endianness:         utils.BigEndian,
		Primes:             2,
		AuxLengths:         [2]int{1, 1},
		MaxDistanceRetries: 64,
		MaxSeedRetries:     8,
		Logger:             NopLogger{},
	}
}

// Log returns the configured logger or a NopLogger.
func (c Config) Log() Logger {
	if c.Logger == nil {
		return NopLogger{}
	}
	return c.Logger
}

// ValidateConfig checks cfg against the parameter set.
func ValidateConfig(params Params, cfg Config) error {
	if _, err := utils.NewHasher(cfg.Hash); err != nil {
		return fmt.Errorf("%w: %v", provrsa.ErrInvalidParams, err)
	}
	if cfg.Endianness != utils.BigEndian && cfg.Endianness != utils.LittleEndian {
		return fmt.Errorf("%w: unknown endianness %q", provrsa.ErrInvalidParams, cfg.Endianness)
	}
	if cfg.Primes < 2 || cfg.Primes > params.MaxPrimes {
		return fmt.Errorf("%w: %d prime factors not in [2, %d]", provrsa.ErrInvalidParams, cfg.Primes, params.MaxPrimes)
	}
	total := 0
	for _, n := range cfg.AuxLengths {
		if n < 1 {
			return fmt.Errorf("%w: auxiliary prime length must be at least 1", provrsa.ErrInvalidParams)
		}
		if n > 1 && n < params.MinAuxBits {
			return fmt.Errorf("%w: auxiliary prime length %d below minimum %d", provrsa.ErrInvalidParams, n, params.MinAuxBits)
		}
		if n > 1 {
			total += n
		}
	}
	if total > params.MaxAuxTotalBits {
		return fmt.Errorf("%w: auxiliary prime lengths total %d exceeds %d", provrsa.ErrInvalidParams, total, params.MaxAuxTotalBits)
	}
	if cfg.MaxDistanceRetries < 1 || cfg.MaxSeedRetries < 1 {
		return fmt.Errorf("%w: retry bounds must be positive", provrsa.ErrInvalidParams)
	}
	return nil
}
