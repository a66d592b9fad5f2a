package signer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/0rlych1kk4/quantum-safe-multisig/hsm"
	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

// scriptedSessionService records the order of session calls and fails
// whichever step it is scripted to fail. Sign honors context
// cancellation; the other steps do not need to for these tests.
type scriptedSessionService struct {
	calls []string

	openErr   error
	authErr   error
	signErr   error
	deauthErr error
	closeErr  error

	signature      []byte
	lastIdentity   string
	lastCredential string

	// context state observed by CloseSession, to prove teardown does
	// not run on the caller's (possibly cancelled) context
	closeCtxErr error
}

func (s *scriptedSessionService) OpenSession(context.Context) (hsm.SessionHandle, error) {
	s.calls = append(s.calls, "open")
	if s.openErr != nil {
		return "", s.openErr
	}
	return "session-1", nil
}

func (s *scriptedSessionService) Authenticate(_ context.Context, _ hsm.SessionHandle, identity string, credential string) error {
	s.calls = append(s.calls, "authenticate")
	s.lastIdentity = identity
	s.lastCredential = credential
	return s.authErr
}

func (s *scriptedSessionService) Sign(ctx context.Context, _ hsm.SessionHandle, _ []byte) ([]byte, error) {
	s.calls = append(s.calls, "sign")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.signErr != nil {
		return nil, s.signErr
	}
	return s.signature, nil
}

func (s *scriptedSessionService) Deauthenticate(context.Context, hsm.SessionHandle) error {
	s.calls = append(s.calls, "deauthenticate")
	return s.deauthErr
}

func (s *scriptedSessionService) CloseSession(ctx context.Context, _ hsm.SessionHandle) error {
	s.calls = append(s.calls, "close")
	s.closeCtxErr = ctx.Err()
	return s.closeErr
}

func TestHardwareSignerSessionLifecycle(t *testing.T) {
	svc := &scriptedSessionService{signature: []byte("hardware-sig")}
	hs := NewHardwareSigner(testLogger(), svc)

	sig, err := hs.Sign(context.Background(), "Alice", []byte("Transfer 10 coins"), "7777")
	require.NoError(t, err)
	require.Equal(t, pqc.Signature("hardware-sig"), sig)

	require.Equal(t, []string{"open", "authenticate", "sign", "deauthenticate", "close"}, svc.calls)
	require.Equal(t, "Alice", svc.lastIdentity)
	require.Equal(t, "7777", svc.lastCredential)
}

func TestHardwareSignerClosesOnFailure(t *testing.T) {
	stepErr := errors.New("device says no")

	testCases := []struct {
		name          string
		svc           *scriptedSessionService
		expectedStep  string
		expectedCalls []string
	}{
		{
			name:          "open fails",
			svc:           &scriptedSessionService{openErr: stepErr},
			expectedStep:  "open session",
			expectedCalls: []string{"open"},
		},
		{
			// no deauthenticate after a failed login
			name:          "authenticate fails",
			svc:           &scriptedSessionService{authErr: stepErr},
			expectedStep:  "authenticate",
			expectedCalls: []string{"open", "authenticate", "close"},
		},
		{
			name:          "sign fails",
			svc:           &scriptedSessionService{signErr: stepErr},
			expectedStep:  "sign",
			expectedCalls: []string{"open", "authenticate", "sign", "deauthenticate", "close"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			hs := NewHardwareSigner(testLogger(), tc.svc)

			sig, err := hs.Sign(context.Background(), "Alice", []byte("Transfer 10 coins"), "7777")
			require.Error(t, err)
			require.ErrorIs(t, err, stepErr)
			require.Contains(t, err.Error(), tc.expectedStep)
			require.Nil(t, sig)
			require.Equal(t, tc.expectedCalls, tc.svc.calls)
		})
	}
}

func TestHardwareSignerCleanupSurvivesCancellation(t *testing.T) {
	svc := &scriptedSessionService{signature: []byte("hardware-sig")}
	hs := NewHardwareSigner(testLogger(), svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := hs.Sign(ctx, "Alice", []byte("Transfer 10 coins"), "7777")
	require.ErrorIs(t, err, context.Canceled)

	// teardown still ran, on a context of its own
	require.Equal(t, []string{"open", "authenticate", "sign", "deauthenticate", "close"}, svc.calls)
	require.NoError(t, svc.closeCtxErr)
}

func TestHardwareSignerCleanupErrorsDoNotClobberResult(t *testing.T) {
	svc := &scriptedSessionService{
		signature: []byte("hardware-sig"),
		deauthErr: errors.New("deauthenticate failed"),
		closeErr:  errors.New("close failed"),
	}
	hs := NewHardwareSigner(testLogger(), svc)

	sig, err := hs.Sign(context.Background(), "Alice", []byte("Transfer 10 coins"), "7777")
	require.NoError(t, err)
	require.Equal(t, pqc.Signature("hardware-sig"), sig)
	require.Equal(t, []string{"open", "authenticate", "sign", "deauthenticate", "close"}, svc.calls)
}
