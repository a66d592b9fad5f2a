package signer

import (
	"context"
	"fmt"
	"time"

	"github.com/cometbft/cometbft/libs/log"

	"github.com/0rlych1kk4/quantum-safe-multisig/hsm"
	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

// sessionCleanupTimeout bounds the deauthenticate and close calls that
// run during session teardown. Teardown uses a fresh context so
// cancellation of the signing context cannot leave a session open.
const sessionCleanupTimeout = 5 * time.Second

var _ SignatureBackend = (*HardwareSigner)(nil)

// HardwareSigner produces signatures through a session-oriented
// hardware signing service. Every call runs one scoped session: open,
// authenticate the owner with the credential, sign, then deauthenticate
// and close. Close is attempted on every exit path. Sessions carry an
// authenticated identity, so they are never cached, shared, or pooled
// across owners or calls.
type HardwareSigner struct {
	logger   log.Logger
	sessions hsm.SessionService
}

func NewHardwareSigner(logger log.Logger, sessions hsm.SessionService) *HardwareSigner {
	return &HardwareSigner{
		logger:   logger,
		sessions: sessions,
	}
}

func (hs *HardwareSigner) Sign(
	ctx context.Context,
	ownerID string,
	message []byte,
	credential string,
) (pqc.Signature, error) {
	handle, err := hs.sessions.OpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		cleanupCtx, cancel := cleanupContext()
		defer cancel()
		if err := hs.sessions.CloseSession(cleanupCtx, handle); err != nil {
			hs.logger.Error("Failed to close signing session", "owner", ownerID, "error", err)
		}
	}()

	if err := hs.sessions.Authenticate(ctx, handle, ownerID, credential); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	defer func() {
		cleanupCtx, cancel := cleanupContext()
		defer cancel()
		if err := hs.sessions.Deauthenticate(cleanupCtx, handle); err != nil {
			hs.logger.Error("Failed to release session authentication", "owner", ownerID, "error", err)
		}
	}()

	sig, err := hs.sessions.Sign(ctx, handle, message)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	return pqc.Signature(sig), nil
}

func cleanupContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), sessionCleanupTimeout)
}
