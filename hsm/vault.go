package hsm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cometbft/cometbft/libs/log"
	"github.com/google/uuid"

	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

// maxPINAttempts is the number of consecutive failed authentications
// allowed before a token locks out.
const maxPINAttempts = 3

var (
	ErrUnknownSession       = errors.New("unknown session handle")
	ErrAlreadyAuthenticated = errors.New("session already authenticated")
	ErrNotAuthenticated     = errors.New("session not authenticated")
	ErrUnknownIdentity      = errors.New("unknown token identity")
	ErrInvalidPIN           = errors.New("invalid PIN")
	ErrTokenLockedOut       = errors.New("token locked out after too many failed PIN attempts")
)

// Token is one owner identity held by the vault: the PIN that unlocks
// it and the private key it signs with.
type Token struct {
	Owner      string
	PIN        string
	PrivateKey pqc.PrivateKey
}

var _ SessionService = (*Vault)(nil)

// Vault is an in-process software token store. It enforces the session
// protocol the way a hardware token would: signing requires an
// authenticated session, failed authentications count against the
// token across sessions, and a token locks out after maxPINAttempts
// consecutive failures until the vault is rebuilt.
type Vault struct {
	logger log.Logger
	scheme *pqc.Scheme

	mu             sync.Mutex
	tokens         map[string]Token
	sessions       map[SessionHandle]*vaultSession
	failedAttempts map[string]int
}

type vaultSession struct {
	// owner currently authenticated on this session, empty if none
	authenticated string
}

func NewVault(logger log.Logger, scheme *pqc.Scheme, tokens []Token) *Vault {
	tokenMap := make(map[string]Token, len(tokens))
	for _, t := range tokens {
		tokenMap[t.Owner] = t
	}
	return &Vault{
		logger:         logger,
		scheme:         scheme,
		tokens:         tokenMap,
		sessions:       make(map[SessionHandle]*vaultSession),
		failedAttempts: make(map[string]int),
	}
}

func (v *Vault) OpenSession(_ context.Context) (SessionHandle, error) {
	handle := SessionHandle(uuid.New().String())

	v.mu.Lock()
	defer v.mu.Unlock()

	v.sessions[handle] = &vaultSession{}
	totalSessionsOpened.Inc()
	vaultOpenSessions.Set(float64(len(v.sessions)))
	return handle, nil
}

func (v *Vault) Authenticate(_ context.Context, handle SessionHandle, identity string, credential string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	session, ok := v.sessions[handle]
	if !ok {
		return ErrUnknownSession
	}
	if session.authenticated != "" {
		return ErrAlreadyAuthenticated
	}

	token, ok := v.tokens[identity]
	if !ok {
		return ErrUnknownIdentity
	}

	if v.failedAttempts[identity] >= maxPINAttempts {
		return ErrTokenLockedOut
	}

	if credential != token.PIN {
		v.failedAttempts[identity]++
		totalAuthFailures.Inc()
		v.logger.Error(
			"Token authentication failed",
			"identity", identity,
			"failed_attempts", v.failedAttempts[identity],
		)
		if v.failedAttempts[identity] >= maxPINAttempts {
			return ErrTokenLockedOut
		}
		return ErrInvalidPIN
	}

	v.failedAttempts[identity] = 0
	session.authenticated = identity
	return nil
}

func (v *Vault) Sign(_ context.Context, handle SessionHandle, message []byte) ([]byte, error) {
	v.mu.Lock()
	session, ok := v.sessions[handle]
	if !ok {
		v.mu.Unlock()
		return nil, ErrUnknownSession
	}
	identity := session.authenticated
	if identity == "" {
		v.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	token := v.tokens[identity]
	v.mu.Unlock()

	// sign outside the lock, other sessions stay responsive
	sig, err := v.scheme.Sign(message, token.PrivateKey)
	if err != nil {
		return nil, err
	}
	totalVaultSignatures.Inc()
	metricsTimeKeeper.SetPreviousVaultSignature(time.Now())
	return sig, nil
}

func (v *Vault) Deauthenticate(_ context.Context, handle SessionHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	session, ok := v.sessions[handle]
	if !ok {
		return ErrUnknownSession
	}
	if session.authenticated == "" {
		return ErrNotAuthenticated
	}
	session.authenticated = ""
	return nil
}

// CloseSession removes the session whatever state it is in. Closing an
// unknown handle is the only failure.
func (v *Vault) CloseSession(_ context.Context, handle SessionHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.sessions[handle]; !ok {
		return ErrUnknownSession
	}
	delete(v.sessions, handle)
	totalSessionsClosed.Inc()
	vaultOpenSessions.Set(float64(len(v.sessions)))
	return nil
}

// OpenSessions returns the number of sessions not yet closed.
func (v *Vault) OpenSessions() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.sessions)
}

// FailedAttempts returns the consecutive failed authentication count
// for an owner's token.
func (v *Vault) FailedAttempts(owner string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.failedAttempts[owner]
}
