// Package provrsa implements RSA key construction from NIST provable primes and the
// RFC 8017 encryption and decryption primitives.
//
// Prime factors are built with the Shawe-Taylor random prime procedure and the
// Pocklington-based provable prime construction of FIPS 186 (Appendices C.6 and C.10),
// so every generated factor comes with a constructive primality proof rather than a
// probabilistic pass. Private keys are available in the simple (n, d) form and in the
// Chinese Remainder form, including multi-prime keys decrypted with Garner's algorithm.
package provrsa

// Version of the provable-rsa Go implementation.
const Version = "1.0.0"

// API summary:
//
// Key Generation:
//   - keygen.GenerateKeyPair(params, cfg, e) - Generate a key pair for a modulus length
//   - keygen.GenerateKeyPairFromSeed(params, cfg, e, seed) - Deterministic generation
//   - keygen.GenerateBatch(params, cfg, e, count) - Independent key pairs in parallel
//   - keygen.Assemble(e, primes, opts) - Build keys from proven prime factors
//   - keygen.ImportFactors(e, primes, rounds) - Verify and assemble external factors
//
// Primitives:
//   - primitives.Encrypt(pub, m) - RSAEP, m^e mod n
//   - primitives.Decrypt(priv, c) - RSADP, simple or CRT (Garner) form
//
// Primality:
//   - primality.MillerRabin(w, rounds), primality.Lucas(n), primality.Jacobi(a, n)
//
// Parameters:
//   - core.GetParams(nlen) - Parameters for 2048, 3072, 7680 or 15360-bit moduli
