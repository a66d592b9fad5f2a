package signer

import (
	"context"

	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

// SignatureBackend produces an owner's signature over a transaction
// message. Implementations decide where the private key lives and what
// the credential means; the coordinator treats any returned error as a
// backend failure and does not retry.
type SignatureBackend interface {
	Sign(ctx context.Context, ownerID string, message []byte, credential string) (pqc.Signature, error)
}

var _ SignatureBackend = (*LocalSigner)(nil)

// LocalSigner signs with a private key held in process memory. There
// is no session to authenticate, so the credential is ignored. Signing
// fails only on malformed key material.
type LocalSigner struct {
	scheme *pqc.Scheme
	priv   pqc.PrivateKey
}

func NewLocalSigner(scheme *pqc.Scheme, priv pqc.PrivateKey) *LocalSigner {
	return &LocalSigner{
		scheme: scheme,
		priv:   priv,
	}
}

func (ls *LocalSigner) Sign(_ context.Context, _ string, message []byte, _ string) (pqc.Signature, error) {
	return ls.scheme.Sign(message, ls.priv)
}
