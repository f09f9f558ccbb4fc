package primitives

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/core"
	"github.com/BackendStack21/provable-rsa-go/keygen"
	"github.com/BackendStack21/provable-rsa-go/utils"
)

func mersenne(k uint) *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), k), big.NewInt(1))
}

// textbookKey is the classic p = 61, q = 53, e = 17 example with d = 2753.
func textbookKey() (*provrsa.PublicKey, *provrsa.SimplePrivateKey, *provrsa.CRTPrivateKey) {
	n := big.NewInt(3233)
	pub := &provrsa.PublicKey{N: n, E: big.NewInt(17)}
	simple := &provrsa.SimplePrivateKey{N: n, D: big.NewInt(2753)}
	crt := &provrsa.CRTPrivateKey{
		P:    big.NewInt(61),
		Q:    big.NewInt(53),
		Dp:   big.NewInt(53),
		Dq:   big.NewInt(49),
		Qinv: big.NewInt(38),
	}
	return pub, simple, crt
}

func hexInt(t testing.TB, s string) *big.Int {
	t.Helper()
	v, err := utils.ParseHex(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func randomBelow(t testing.TB, n *big.Int) *big.Int {
	t.Helper()
	m, err := rand.Int(rand.Reader, n)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestModPow(t *testing.T) {
	cases := []struct{ base, exp, mod int64 }{
		{4, 13, 497},
		{2, 0, 7},
		{0, 5, 7},
		{7, 1, 7},
		{-3, 3, 11},
		{12345, 67890, 1},
		{65, 17, 3233},
	}
	for _, c := range cases {
		b, e, m := big.NewInt(c.base), big.NewInt(c.exp), big.NewInt(c.mod)
		want := new(big.Int).Exp(new(big.Int).Mod(b, m), e, m)
		if got := ModPow(b, e, m); got.Cmp(want) != 0 {
			t.Errorf("ModPow(%d, %d, %d) = %v, want %v", c.base, c.exp, c.mod, got, want)
		}
	}

	m := mersenne(521)
	for i := 0; i < 10; i++ {
		b := randomBelow(t, m)
		e := randomBelow(t, m)
		if got, want := ModPow(b, e, m), new(big.Int).Exp(b, e, m); got.Cmp(want) != 0 {
			t.Fatalf("ModPow mismatch for random inputs")
		}
	}
}

func TestModPow_DoesNotMutate(t *testing.T) {
	b, e, m := big.NewInt(65), big.NewInt(17), big.NewInt(3233)
	ModPow(b, e, m)
	if b.Int64() != 65 || e.Int64() != 17 || m.Int64() != 3233 {
		t.Error("ModPow modified its arguments")
	}
}

func TestTextbookExample(t *testing.T) {
	pub, simple, crt := textbookKey()

	c, err := Encrypt(pub, big.NewInt(65))
	if err != nil {
		t.Fatal(err)
	}
	if c.Int64() != 2790 {
		t.Errorf("Encrypt(65) = %v, want 2790", c)
	}

	for name, priv := range map[string]provrsa.PrivateKey{"simple": simple, "crt": crt} {
		m, err := Decrypt(priv, big.NewInt(2790))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if m.Int64() != 65 {
			t.Errorf("%s: Decrypt(2790) = %v, want 65", name, m)
		}
	}
}

func TestTextbookExample_AllMessages(t *testing.T) {
	pub, simple, crt := textbookKey()
	for i := int64(0); i < 3233; i++ {
		m := big.NewInt(i)
		c, err := Encrypt(pub, m)
		if err != nil {
			t.Fatal(err)
		}
		m1, _ := Decrypt(simple, c)
		m2, _ := Decrypt(crt, c)
		if m1.Cmp(m) != 0 || m2.Cmp(m) != 0 {
			t.Fatalf("round trip failed for %d: simple %v, crt %v", i, m1, m2)
		}
	}
}

func TestFixedFactorVector(t *testing.T) {
	kp, err := keygen.Assemble(big.NewInt(65537), []*big.Int{mersenne(89), mersenne(127)}, keygen.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := utils.Hex(kp.PublicKey.N); got != "ffffffffffffffffffffff7ffffffffe0000000000000000000001" {
		t.Fatalf("n = %s", got)
	}
	if got := utils.Hex(kp.D()); got != "2a7fd5802a7fd5802a7fd555aaaa555500aaff5500aaff5500ab" {
		t.Errorf("d = %s", got)
	}

	c, err := Encrypt(&kp.PublicKey, big.NewInt(42))
	if err != nil {
		t.Fatal(err)
	}
	want := hexInt(t, "b814a17145301191edaeb4b75679059f34916640aecf214450eeb2")
	if c.Cmp(want) != 0 {
		t.Errorf("Encrypt(42) = %s, want %s", utils.Hex(c), utils.Hex(want))
	}
	for _, priv := range []provrsa.PrivateKey{kp.Simple, kp.CRT} {
		m, err := Decrypt(priv, want)
		if err != nil {
			t.Fatal(err)
		}
		if m.Int64() != 42 {
			t.Errorf("Decrypt = %v, want 42", m)
		}
	}
}

func TestThreePrimeCRT(t *testing.T) {
	kp, err := keygen.Assemble(big.NewInt(65537), []*big.Int{mersenne(61), mersenne(89), mersenne(127)}, keygen.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if kp.CRT.PrimeCount() != 3 {
		t.Fatalf("expected 3 primes, got %d", kp.CRT.PrimeCount())
	}
	for i := 0; i < 50; i++ {
		m := randomBelow(t, kp.PublicKey.N)
		c, err := Encrypt(&kp.PublicKey, m)
		if err != nil {
			t.Fatal(err)
		}
		m1, err := Decrypt(kp.Simple, c)
		if err != nil {
			t.Fatal(err)
		}
		m2, err := Decrypt(kp.CRT, c)
		if err != nil {
			t.Fatal(err)
		}
		if m1.Cmp(m) != 0 || m2.Cmp(m) != 0 {
			t.Fatalf("three-prime round trip failed: m=%v simple=%v crt=%v", m, m1, m2)
		}
	}
}

func TestGeneratedKeyRoundTrip(t *testing.T) {
	seed, _ := hex.DecodeString("1952d8947f8aa1b81bb028fc1bc186689857c567b32198cfdf2e1734")
	kp, err := keygen.GenerateKeyPairFromSeed(core.RSA2048Params, core.DefaultConfig(), nil, seed)
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		m := randomBelow(t, kp.PublicKey.N)
		c, err := Encrypt(&kp.PublicKey, m)
		if err != nil {
			t.Fatal(err)
		}
		m1, err := Decrypt(kp.Simple, c)
		if err != nil {
			t.Fatal(err)
		}
		m2, err := Decrypt(kp.CRT, c)
		if err != nil {
			t.Fatal(err)
		}
		if m1.Cmp(m) != 0 || m2.Cmp(m) != 0 {
			t.Fatal("2048-bit round trip failed")
		}
	}
}

func TestRangeErrors(t *testing.T) {
	pub, simple, crt := textbookKey()

	for _, m := range []*big.Int{big.NewInt(-1), big.NewInt(3233), big.NewInt(5000), nil} {
		if _, err := Encrypt(pub, m); !errors.Is(err, provrsa.ErrMessageOutOfRange) {
			t.Errorf("Encrypt(%v): expected ErrMessageOutOfRange, got %v", m, err)
		}
	}
	for _, priv := range []provrsa.PrivateKey{simple, crt} {
		for _, c := range []*big.Int{big.NewInt(-1), big.NewInt(3233)} {
			if _, err := Decrypt(priv, c); !errors.Is(err, provrsa.ErrCiphertextOutOfRange) {
				t.Errorf("Decrypt(%v): expected ErrCiphertextOutOfRange, got %v", c, err)
			}
		}
	}

	// Zero and n-1 are valid representatives.
	for _, m := range []*big.Int{big.NewInt(0), big.NewInt(3232)} {
		c, err := Encrypt(pub, m)
		if err != nil {
			t.Fatalf("Encrypt(%v) failed: %v", m, err)
		}
		if got, _ := Decrypt(crt, c); got.Cmp(m) != 0 {
			t.Errorf("round trip of %v gave %v", m, got)
		}
	}
}

func TestInvalidKeys(t *testing.T) {
	if _, err := Encrypt(nil, big.NewInt(1)); !errors.Is(err, provrsa.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := Encrypt(&provrsa.PublicKey{N: big.NewInt(3233)}, big.NewInt(1)); !errors.Is(err, provrsa.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := Decrypt(nil, big.NewInt(1)); !errors.Is(err, provrsa.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := Decrypt(&provrsa.SimplePrivateKey{N: big.NewInt(3233)}, big.NewInt(1)); !errors.Is(err, provrsa.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := Decrypt(&provrsa.CRTPrivateKey{P: big.NewInt(61)}, big.NewInt(1)); !errors.Is(err, provrsa.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestDecrypt_NegativeKeyValues(t *testing.T) {
	c := big.NewInt(2790)
	_, simple, _ := textbookKey()
	simple.D = big.NewInt(-2753)
	if _, err := Decrypt(simple, c); !errors.Is(err, provrsa.ErrInvalidKey) {
		t.Errorf("negative d: expected ErrInvalidKey, got %v", err)
	}

	mutations := map[string]func(k *provrsa.CRTPrivateKey){
		"dp":   func(k *provrsa.CRTPrivateKey) { k.Dp = big.NewInt(-1) },
		"dq":   func(k *provrsa.CRTPrivateKey) { k.Dq = big.NewInt(-49) },
		"qinv": func(k *provrsa.CRTPrivateKey) { k.Qinv = big.NewInt(-38) },
		"p":    func(k *provrsa.CRTPrivateKey) { k.P = big.NewInt(-61) },
		"d_i": func(k *provrsa.CRTPrivateKey) {
			k.Additional = []provrsa.AdditionalPrimeData{{R: big.NewInt(7), D: big.NewInt(-1), T: big.NewInt(1)}}
		},
		"t_i": func(k *provrsa.CRTPrivateKey) {
			k.Additional = []provrsa.AdditionalPrimeData{{R: big.NewInt(7), D: big.NewInt(1), T: big.NewInt(-1)}}
		},
		"missing t_i": func(k *provrsa.CRTPrivateKey) {
			k.Additional = []provrsa.AdditionalPrimeData{{R: big.NewInt(7), D: big.NewInt(1)}}
		},
	}
	for name, mutate := range mutations {
		_, _, crt := textbookKey()
		mutate(crt)
		if _, err := Decrypt(crt, c); !errors.Is(err, provrsa.ErrInvalidKey) {
			t.Errorf("%s: expected ErrInvalidKey, got %v", name, err)
		}
	}
}

// The 1024-bit key of RSASSA-PSS Example 1 from the PKCS#1 v2.1 test vectors
// (pss-vect.txt). em is s^e mod n for the published signature s of Example 1.1.
const (
	pssN    = "a56e4a0e701017589a5187dc7ea841d156f2ec0e36ad52a44dfeb1e61f7ad991d8c51056ffedb162b4c0f283a12a88a394dff526ab7291cbb307ceabfce0b1dfd5cd9508096d5b2b8b6df5d671ef6377c0921cb23c270a70e2598e6ff89d19f105acc2d3f0cb35f29280e1386b6f64c4ef22e1e1f20d0ce8cffb2249bd9a2137"
	pssD    = "33a5042a90b27d4f5451ca9bbbd0b44771a101af884340aef9885f2a4bbe92e894a724ac3c568c8f97853ad07c0266c8c6a3ca0929f1e8f11231884429fc4d9ae55fee896a10ce707c3ed7e734e44727a39574501a532683109c2abacaba283c31b4bd2f53c3ee37e352cee34f9e503bd80c0622ad79c6dcee883547c6a3b325"
	pssP    = "e7e8942720a877517273a356053ea2a1bc0c94aa72d55c6e86296b2dfc967948c0a72cbccca7eacb35706e09a1df55a1535bd9b3cc34160b3b6dcd3eda8e6443"
	pssQ    = "b69dca1cf7d4d7ec81e75b90fcca874abcde123fd2700180aa90479b6e48de8d67ed24f9f19d85ba275874f542cd20dc723e6963364a1f9425452b269a6799fd"
	pssDp   = "28fa13938655be1f8a159cbaca5a72ea190c30089e19cd274a556f36c4f6e19f554b34c077790427bbdd8dd3ede2448328f385d81b30e8e43b2fffa027861979"
	pssDq   = "1a8b38f398fa712049898d7fb79ee0a77668791299cdfa09efc0e507acb21ed74301ef5bfd48be455eaeb6e1678255827580a8e4e8e14151d1510a82a3f2e729"
	pssQinv = "27156aba4126d24a81f3a528cbfb27f56886f840a9f6e86e17a44b94fe9319584b8e22fdde1e5a2e3bd8aa5ba8d8584194eb2190acf832b847f13a3d24a79f4d"
	pssSig  = "9074308fb598e9701b2294388e52f971faac2b60a5145af185df5287b5ed2887e57ce7fd44dc8634e407c8e0e4360bc226f3ec227f9d9e54638e8d31f5051215df6ebb9c2f9579aa77598a38f914b5b9c1bd83c4e2f9f382a0d0aa3542ffee65984a601bc69eb28deb27dca12c82c2d4c3f66cd500f1ff2b994d8a4e30cbb33c"
	pssEM   = "2009bca4cb0ee7fdf35a762c488a3fee0e4058130dde835ae61eb830dec8d50d3120ee732a1ae8a0c9e5e86a256b5c71d75bbc66735110cbde3ca5bfa81203607a0b8b8ab1f857452900d36002fa7a87003c79ee6069bb46cdeb8f281140f1d3e9f296e05bd56b26bcf707a6a14b02f4344ff91bd17f29b79b4606e70afd99bc"
)

func TestPublishedVector(t *testing.T) {
	e := big.NewInt(65537)
	n, d := hexInt(t, pssN), hexInt(t, pssD)
	sig, em := hexInt(t, pssSig), hexInt(t, pssEM)
	pub := &provrsa.PublicKey{N: n, E: e}
	simple := &provrsa.SimplePrivateKey{N: n, D: d}
	crt := &provrsa.CRTPrivateKey{
		P:    hexInt(t, pssP),
		Q:    hexInt(t, pssQ),
		Dp:   hexInt(t, pssDp),
		Dq:   hexInt(t, pssDq),
		Qinv: hexInt(t, pssQinv),
	}

	got, err := Encrypt(pub, sig)
	if err != nil {
		t.Fatal(err)
	}
	if got.Cmp(em) != 0 {
		t.Fatalf("Encrypt(s) = %s, want %s", utils.Hex(got), pssEM)
	}
	for name, priv := range map[string]provrsa.PrivateKey{"simple": simple, "crt": crt} {
		m, err := Decrypt(priv, em)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if m.Cmp(sig) != 0 {
			t.Errorf("%s: Decrypt(em) = %s, want %s", name, utils.Hex(m), pssSig)
		}
	}

	kp, err := keygen.Assemble(e, []*big.Int{crt.P, crt.Q}, keygen.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if kp.PublicKey.N.Cmp(n) != 0 {
		t.Errorf("n = %s", utils.Hex(kp.PublicKey.N))
	}
	checks := []struct {
		name      string
		got, want *big.Int
	}{
		{"d", kp.D(), d},
		{"dP", kp.CRT.Dp, crt.Dp},
		{"dQ", kp.CRT.Dq, crt.Dq},
		{"qInv", kp.CRT.Qinv, crt.Qinv},
	}
	for _, c := range checks {
		if c.got.Cmp(c.want) != 0 {
			t.Errorf("%s = %s, want %s", c.name, utils.Hex(c.got), utils.Hex(c.want))
		}
	}
}

func TestDecrypt_DoesNotMutate(t *testing.T) {
	_, _, crt := textbookKey()
	c := big.NewInt(2790)
	if _, err := Decrypt(crt, c); err != nil {
		t.Fatal(err)
	}
	if c.Int64() != 2790 || crt.P.Int64() != 61 || crt.Q.Int64() != 53 || crt.Qinv.Int64() != 38 {
		t.Error("Decrypt modified its inputs")
	}
}

func BenchmarkDecrypt2048(b *testing.B) {
	seed, _ := hex.DecodeString("1952d8947f8aa1b81bb028fc1bc186689857c567b32198cfdf2e1734")
	kp, err := keygen.GenerateKeyPairFromSeed(core.RSA2048Params, core.DefaultConfig(), nil, seed)
	if err != nil {
		b.Fatal(err)
	}
	c, _ := Encrypt(&kp.PublicKey, big.NewInt(42))

	b.Run("simple", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = Decrypt(kp.Simple, c)
		}
	})
	b.Run("crt", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = Decrypt(kp.CRT, c)
		}
	})
}
