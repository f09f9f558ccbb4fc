// Package config loads provrsa-cli settings from a TOML file, an optional .env file
// and PROVRSA_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/core"
	"github.com/BackendStack21/provable-rsa-go/utils"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PROVRSA_"

// Output formats for generated keys.
const (
	FormatPEM    = "pem"
	FormatJSON   = "json"
	FormatBinary = "binary"
)

// Settings is the on-disk configuration.
type Settings struct {
	Modulus            int    `toml:"modulus"`
	Exponent           string `toml:"exponent"`
	Primes             int    `toml:"primes"`
	Hash               string `toml:"hash"`
	Endianness         string `toml:"endianness"`
	AuxLengths         []int  `toml:"aux_lengths"`
	MaxDistanceRetries int    `toml:"max_distance_retries"`
	MaxSeedRetries     int    `toml:"max_seed_retries"`
	Format             string `toml:"format"`
}

// Default returns settings for a two-prime 2048-bit key with e = 65537.
func Default() Settings {
	cfg := core.DefaultConfig()
	return Settings{
		Modulus:            int(provrsa.RSA2048),
		Exponent:           core.DefaultExponent.String(),
		Primes:             cfg.Primes,
		Hash:               string(cfg.Hash),
		Endianness:         string(cfg.Endianness),
		AuxLengths:         []int{cfg.AuxLengths[0], cfg.AuxLengths[1]},
		MaxDistanceRetries: cfg.MaxDistanceRetries,
		MaxSeedRetries:     cfg.MaxSeedRetries,
		Format:             FormatPEM,
	}
}

// Load returns the defaults overlaid with the TOML file at path (skipped when path is
// empty), the variables in envFile (skipped when empty or missing) and the process
// environment.
func Load(path, envFile string) (Settings, error) {
	s := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &s); err != nil {
			return s, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	if envFile != "" {
		// godotenv.Load never overrides variables already present in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return s, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}
	if err := s.ApplyEnv(os.LookupEnv); err != nil {
		return s, err
	}
	return s, s.Validate()
}

// Save writes s to path as TOML with owner-only permissions.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(s)
}

// ApplyEnv overrides fields from PROVRSA_* variables found through lookup.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"MODULUS":              &s.Modulus,
		"PRIMES":               &s.Primes,
		"MAX_DISTANCE_RETRIES": &s.MaxDistanceRetries,
		"MAX_SEED_RETRIES":     &s.MaxSeedRetries,
	}
	for name, dst := range ints {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}

	strs := map[string]*string{
		"EXPONENT":   &s.Exponent,
		"HASH":       &s.Hash,
		"ENDIANNESS": &s.Endianness,
		"FORMAT":     &s.Format,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup(EnvPrefix + "AUX_LENGTHS"); ok {
		lengths, err := ParseInts(v)
		if err != nil {
			return fmt.Errorf("%sAUX_LENGTHS: %w", EnvPrefix, err)
		}
		s.AuxLengths = lengths
	}
	return nil
}

// ParseInts parses a comma separated list of integers.
func ParseInts(v string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Validate checks the settings against the parameter set they select.
func (s Settings) Validate() error {
	params, err := s.Params()
	if err != nil {
		return err
	}
	cfg, err := s.Config(nil)
	if err != nil {
		return err
	}
	if err := core.ValidateConfig(params, cfg); err != nil {
		return err
	}
	if _, err := s.PublicExponent(); err != nil {
		return err
	}
	switch s.Format {
	case FormatPEM, FormatJSON, FormatBinary:
		return nil
	default:
		return fmt.Errorf("%w: unknown output format %q", provrsa.ErrInvalidParams, s.Format)
	}
}

// Params returns the parameter set for the configured modulus length.
func (s Settings) Params() (core.Params, error) {
	return core.GetParams(provrsa.ModulusLength(s.Modulus))
}

// Config converts the settings into a generation config using log for debug output.
func (s Settings) Config(log core.Logger) (core.Config, error) {
	cfg := core.DefaultConfig()
	cfg.Hash = utils.HashAlgorithm(s.Hash)
	cfg.Endianness = utils.Endianness(s.Endianness)
	cfg.Primes = s.Primes
	cfg.MaxDistanceRetries = s.MaxDistanceRetries
	cfg.MaxSeedRetries = s.MaxSeedRetries
	if log != nil {
		cfg.Logger = log
	}
	switch len(s.AuxLengths) {
	case 0:
	case 2:
		cfg.AuxLengths = [2]int{s.AuxLengths[0], s.AuxLengths[1]}
	default:
		return cfg, fmt.Errorf("%w: aux_lengths needs exactly two values", provrsa.ErrInvalidParams)
	}
	return cfg, nil
}

// PublicExponent parses the exponent as decimal, or as hex with a 0x prefix, and checks
// its range.
func (s Settings) PublicExponent() (*big.Int, error) {
	e, err := ParseInteger(s.Exponent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provrsa.ErrInvalidExponent, err)
	}
	if err := core.ValidateExponent(e); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseInteger parses a decimal integer, or a hex integer with a 0x prefix.
func ParseInteger(v string) (*big.Int, error) {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
		return utils.ParseHex(v)
	}
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}
