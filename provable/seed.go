// Package provable builds primes together with a Pocklington certificate, following the
// Shawe-Taylor construction of FIPS 186 Appendix C.6 and the provable prime construction
// of Appendix C.10.
//
// Every function consumes a seed and derives all pseudorandom material by hashing
// successive seed values. The seed is treated as an unsigned integer of fixed byte
// length; it is advanced after each use and never hashed twice within one generation.
// Equal seeds and configurations therefore yield equal primes.
package provable

import (
	"math/big"

	"github.com/BackendStack21/provable-rsa-go/core"
	"github.com/BackendStack21/provable-rsa-go/utils"
)

// seedState is the running seed integer together with its encoded width.
type seedState struct {
	value *big.Int
	size  int
}

func (s *seedState) advance(n int) {
	s.value.Add(s.value, big.NewInt(int64(n)))
}

// generator carries the hash and byte order shared by a single generation.
type generator struct {
	hasher *utils.Hasher
	order  utils.Endianness
	log    core.Logger
}

func newGenerator(cfg core.Config) (*generator, error) {
	hasher, err := utils.NewHasher(cfg.Hash)
	if err != nil {
		return nil, err
	}
	order := cfg.Endianness
	if order == "" {
		order = utils.BigEndian
	}
	return &generator{hasher: hasher, order: order, log: cfg.Log()}, nil
}

func (g *generator) newSeed(seed []byte) *seedState {
	return &seedState{value: utils.FromBytes(seed, g.order), size: len(seed)}
}

func (g *generator) encode(s *seedState) []byte {
	return utils.ToBytes(s.value, s.size, g.order)
}

// hashAt returns H(seed + offset) as an integer.
func (g *generator) hashAt(s *seedState, offset int) *big.Int {
	v := new(big.Int).Add(s.value, big.NewInt(int64(offset)))
	return g.hasher.SumInt(utils.ToBytes(v, s.size, g.order))
}

// gather returns sum(H(seed+i) * 2^(i*outlen)) for i = 0..iterations and advances
// the seed past every consumed value.
func (g *generator) gather(s *seedState, iterations int) *big.Int {
	x := new(big.Int)
	for i := 0; i <= iterations; i++ {
		h := g.hashAt(s, i)
		x.Add(x, h.Lsh(h, uint(i*utils.OutLen)))
	}
	s.advance(iterations + 1)
	return x
}

// iterationsFor returns ceil(length/outlen) - 1.
func iterationsFor(length int) int {
	return (length+utils.OutLen-1)/utils.OutLen - 1
}
