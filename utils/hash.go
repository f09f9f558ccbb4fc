package utils

import (
	"crypto/sha512"
	"fmt"
	"hash"
	"math/big"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashAlgorithm names a hash function with a 512-bit output.
type HashAlgorithm string

const (
	SHA512     HashAlgorithm = "SHA-512"
	SHA3512    HashAlgorithm = "SHA3-512"
	BLAKE2b512 HashAlgorithm = "BLAKE2b-512"
)

// OutLen is the output length of every supported hash, in bits.
const OutLen = 512

var hasherPools = map[HashAlgorithm]*sync.Pool{
	SHA512: {New: func() interface{} {
		return sha512.New()
	}},
	SHA3512: {New: func() interface{} {
		return sha3.New512()
	}},
	BLAKE2b512: {New: func() interface{} {
		h, _ := blake2b.New512(nil)
		return h
	}},
}

// Hasher derives pseudorandom integers from seed values.
type Hasher struct {
	alg  HashAlgorithm
	pool *sync.Pool
}

// NewHasher returns a Hasher for alg.
func NewHasher(alg HashAlgorithm) (*Hasher, error) {
	pool, ok := hasherPools[alg]
	if !ok {
		return nil, fmt.Errorf("unsupported hash algorithm: %q", alg)
	}
	return &Hasher{alg: alg, pool: pool}, nil
}

// Algorithm returns the hash algorithm name.
func (h *Hasher) Algorithm() HashAlgorithm {
	return h.alg
}

// Sum hashes input and returns the 64-byte digest.
func (h *Hasher) Sum(input []byte) []byte {
	d := h.pool.Get().(hash.Hash)
	defer func() {
		d.Reset()
		h.pool.Put(d)
	}()

	d.Write(input)
	return d.Sum(nil)
}

// SumInt hashes input and interprets the digest as a big-endian integer.
func (h *Hasher) SumInt(input []byte) *big.Int {
	return new(big.Int).SetBytes(h.Sum(input))
}
