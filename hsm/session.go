// Package hsm provides the hardware signing boundary: a session-based
// signing service modeled on a PKCS#11 token, an in-process vault
// implementation, and a JSON-RPC gateway that exposes a vault to
// remote wallet clients.
package hsm

import (
	"context"
)

// SessionHandle identifies one open signing session.
type SessionHandle string

// SessionService is the capability surface of a hardware signing
// device. One signing operation opens a session, authenticates a
// single owner identity with a credential, signs under that identity,
// then deauthenticates and closes. Session state carries the
// authenticated identity, so sessions must never be shared or pooled
// across owners. CloseSession must be attempted on every exit path.
type SessionService interface {
	OpenSession(ctx context.Context) (SessionHandle, error)
	Authenticate(ctx context.Context, handle SessionHandle, identity string, credential string) error
	Sign(ctx context.Context, handle SessionHandle, message []byte) ([]byte, error)
	Deauthenticate(ctx context.Context, handle SessionHandle) error
	CloseSession(ctx context.Context, handle SessionHandle) error
}
