package signer

import (
	"context"
	"time"

	"github.com/cometbft/cometbft/libs/log"

	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

// WalletStatus summarizes authorization progress. It is derived from
// the ledger on every call, never stored: there is no terminal
// rejected state, because a later valid contribution can always move
// the wallet forward.
type WalletStatus string

const (
	StatusEmpty      WalletStatus = "empty"
	StatusCollecting WalletStatus = "collecting"
	StatusAuthorized WalletStatus = "authorized"
)

// ThresholdCoordinator accepts owner contributions for a wallet's
// transaction message and answers the authorization query. Every
// contribution is verified against the owner's registered public key
// before it reaches the ledger, so a ledger entry always passed
// verification at insertion time. The authorization decision still
// recounts from scratch on every query.
type ThresholdCoordinator struct {
	logger log.Logger
	wallet *Wallet
	scheme *pqc.Scheme
}

func NewThresholdCoordinator(logger log.Logger, wallet *Wallet, scheme *pqc.Scheme) *ThresholdCoordinator {
	return &ThresholdCoordinator{
		logger: logger,
		wallet: wallet,
		scheme: scheme,
	}
}

// Wallet returns the wallet under coordination.
func (tc *ThresholdCoordinator) Wallet() *Wallet { return tc.wallet }

// Contribute obtains ownerID's signature over the wallet's transaction
// message from the backend, verifies it against the registered public
// key, and records it in the ledger. The backend is never invoked for
// an unknown owner. Backend errors surface without retry: signing
// sessions have side effects (failed-login counters) that make a blind
// retry unsafe, so retry policy belongs to the caller.
func (tc *ThresholdCoordinator) Contribute(
	ctx context.Context,
	ownerID string,
	backend SignatureBackend,
	credential string,
) error {
	logger := tc.logger.With("owner", ownerID)

	pub, ok := tc.wallet.Registry().Lookup(ownerID)
	if !ok {
		totalUnknownOwnerContributions.Inc()
		return newUnknownOwnerError(ownerID)
	}

	signStart := time.Now()
	sig, err := backend.Sign(ctx, ownerID, tc.wallet.Message(), credential)
	if err != nil {
		totalBackendFailures.Inc()
		logger.Error("Signing backend failed", "error", err)
		return newBackendFailureError(ownerID, err)
	}
	timedContributionSignLag.Observe(time.Since(signStart).Seconds())

	if !tc.scheme.Verify(tc.wallet.Message(), sig, pub) {
		totalRejectedSignatures.Inc()
		logger.Error("Produced signature does not verify against registered key")
		return newSignatureRejectedError(ownerID)
	}

	tc.wallet.Ledger().Record(ownerID, sig)
	totalContributionsRecorded.Inc()

	valid := tc.ValidCount()
	threshold := tc.wallet.Registry().Threshold()
	authorized := valid >= threshold

	walletValidSignatures.Set(float64(valid))
	if authorized {
		walletAuthorized.Set(1)
	} else {
		walletAuthorized.Set(0)
	}

	logger.Info(
		"Recorded signature contribution",
		"valid", valid,
		"threshold", threshold,
		"authorized", authorized,
	)

	return nil
}

// IsAuthorized reports whether the wallet currently holds at least
// threshold valid signatures over its transaction message. Too few
// signatures is a false result, not an error.
func (tc *ThresholdCoordinator) IsAuthorized() bool {
	return tc.ValidCount() >= tc.wallet.Registry().Threshold()
}

// ValidCount recounts the ledger entries whose signature verifies
// against the matching registered key right now.
func (tc *ThresholdCoordinator) ValidCount() int {
	return tc.wallet.Ledger().CountValid(tc.wallet.Message(), tc.wallet.Registry(), tc.scheme)
}

// Status derives the authorization progress from the current ledger.
func (tc *ThresholdCoordinator) Status() WalletStatus {
	valid := tc.ValidCount()
	switch {
	case valid >= tc.wallet.Registry().Threshold():
		return StatusAuthorized
	case valid > 0:
		return StatusCollecting
	default:
		return StatusEmpty
	}
}
