// Package elgamal implements exponential ElGamal over the embedded curve
// (C2): a message m is encoded as m*G so that ciphertext addition is
// homomorphic in the plaintext, at the cost of needing a bounded discrete-
// log search (pkg/curve.BabyStepGiantStep) to recover m on decryption.
// Grounded on vocdoni-davinci-node's crypto/elgamal.go (Encrypt/
// EncryptWithK/Decrypt), re-expressed against pkg/curve.Point.
package elgamal

import (
	"errors"
	"math/big"

	"github.com/privmatch/zkmatch/config"
	"github.com/privmatch/zkmatch/pkg/curve"
)

// ErrInvalidPlaintext is returned when a message falls outside the
// declared plaintext bound [0, 2^BitsDL).
var ErrInvalidPlaintext = errors.New("elgamal: plaintext out of range")

// Ciphertext is a two-point exponential ElGamal ciphertext (c1, c2).
type Ciphertext struct {
	C1, C2 curve.Point
}

// KeyPair is an ElGamal key pair on the embedded curve.
type KeyPair struct {
	SecretKey *big.Int
	PublicKey curve.Point
}

// GenerateKeyPair draws a random secret key and derives the matching public
// key sk*G.
func GenerateKeyPair() (KeyPair, error) {
	sk, err := curve.RandomScalar()
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{SecretKey: sk, PublicKey: curve.FixedBaseMul(sk)}, nil
}

func checkPlaintext(msg uint32) error {
	if uint64(msg) >= uint64(1)<<config.BitsDL {
		return ErrInvalidPlaintext
	}
	return nil
}

// Encrypt draws a fresh ephemeral scalar r and returns Enc_pk(msg; r).
func Encrypt(pk curve.Point, msg uint32) (Ciphertext, *big.Int, error) {
	if err := checkPlaintext(msg); err != nil {
		return Ciphertext{}, nil, err
	}
	r, err := curve.RandomScalar()
	if err != nil {
		return Ciphertext{}, nil, err
	}
	return EncryptWithRandomness(pk, msg, r), r, nil
}

// EncryptWithRandomness computes Enc_pk(msg; r) = (r*G, msg*G + r*pk) for a
// caller-supplied r. The in-circuit witness and the circuit itself both
// recompute this same formula from a derived (not freshly sampled) r so the
// proof can assert ciphertext correctness without re-sampling randomness.
func EncryptWithRandomness(pk curve.Point, msg uint32, r *big.Int) Ciphertext {
	c1 := curve.FixedBaseMul(r)
	s := curve.VarBaseMul(pk, r)
	m := curve.FixedBaseMul(big.NewInt(int64(msg)))
	c2 := curve.Add(m, s)
	return Ciphertext{C1: c1, C2: c2}
}

// DecryptToPoint recovers msg*G = c2 - sk*c1.
func DecryptToPoint(sk *big.Int, ct Ciphertext) curve.Point {
	s := curve.VarBaseMul(ct.C1, sk)
	return curve.Add(ct.C2, curve.Neg(s))
}

// Decrypt recovers the plaintext integer via baby-step/giant-step discrete
// log search, bounded by config.BitsDL.
func Decrypt(sk *big.Int, ct Ciphertext) (uint32, error) {
	mG := DecryptToPoint(sk, ct)
	m, err := curve.BabyStepGiantStep(mG, config.BitsDL)
	if err != nil {
		return 0, err
	}
	return uint32(m.Uint64()), nil
}

// Add homomorphically adds two ciphertexts encrypted under the same key:
// Enc(a) + Enc(b) = Enc(a+b).
func Add(a, b Ciphertext) Ciphertext {
	return Ciphertext{
		C1: curve.Add(a.C1, b.C1),
		C2: curve.Add(a.C2, b.C2),
	}
}

// PaddingCiphertext returns the canonical ciphertext for an unused match
// slot: both components are the point at infinity.
func PaddingCiphertext() Ciphertext {
	id := curve.Identity()
	return Ciphertext{C1: id, C2: id}
}
