// Package pqc wraps the SPHINCS+ post-quantum signature scheme behind
// opaque byte-slice key and signature types. Everything above this
// package treats keys and signatures as bytes; encoding to and from the
// underlying library types happens only here.
package pqc

import (
	"encoding/json"
	"fmt"

	"github.com/kasperdi/SPHINCSPLUS-golang/parameters"
	"github.com/kasperdi/SPHINCSPLUS-golang/sphincs"
)

const (
	// KeyType identifies the parameter set used for all wallet keys.
	KeyType = "sphincs+-sha256-128f-robust"
)

// PublicKey is the serialized form of a SPHINCS+ public key.
type PublicKey []byte

// PrivateKey is the serialized form of a SPHINCS+ private key.
type PrivateKey []byte

// Signature is the serialized form of a SPHINCS+ signature.
type Signature []byte

// Scheme binds the SPHINCS+ parameter set shared by every key and
// signature in a wallet. Randomized signing is disabled, so signing the
// same message twice with the same key yields identical bytes.
type Scheme struct {
	params *parameters.Parameters
}

func NewScheme() *Scheme {
	return &Scheme{
		params: parameters.MakeSphincsPlusSHA256128fRobust(false),
	}
}

// GenerateKey creates a new key pair.
func (s *Scheme) GenerateKey() (PublicKey, PrivateKey, error) {
	sk, pk := sphincs.Spx_keygen(s.params)

	skBytes, err := json.Marshal(sk)
	if err != nil {
		return nil, nil, fmt.Errorf("serializing private key: %w", err)
	}
	pkBytes, err := json.Marshal(pk)
	if err != nil {
		return nil, nil, fmt.Errorf("serializing public key: %w", err)
	}

	return PublicKey(pkBytes), PrivateKey(skBytes), nil
}

// Sign produces a signature over message with the given private key.
// Malformed key material is the only failure.
func (s *Scheme) Sign(message []byte, priv PrivateKey) (sig Signature, err error) {
	defer func() {
		if r := recover(); r != nil {
			sig = nil
			err = fmt.Errorf("malformed private key: %v", r)
		}
	}()

	sk := new(sphincs.SPHINCS_SK)
	if err := json.Unmarshal(priv, sk); err != nil {
		return nil, fmt.Errorf("decoding private key: %w", err)
	}

	spxSig := sphincs.Spx_sign(s.params, message, sk)

	sigBytes, err := json.Marshal(spxSig)
	if err != nil {
		return nil, fmt.Errorf("serializing signature: %w", err)
	}

	return Signature(sigBytes), nil
}

// Verify reports whether sig is a valid signature over message for the
// given public key. Malformed signature or key bytes verify as false.
func (s *Scheme) Verify(message []byte, sig Signature, pub PublicKey) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	pk := new(sphincs.SPHINCS_PK)
	if err := json.Unmarshal(pub, pk); err != nil {
		return false
	}

	spxSig := new(sphincs.SPHINCS_SIG)
	if err := json.Unmarshal(sig, spxSig); err != nil {
		return false
	}

	return sphincs.Spx_verify(s.params, message, spxSig, pk)
}
