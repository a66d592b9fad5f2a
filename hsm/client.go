package hsm

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	client "github.com/cometbft/cometbft/rpc/jsonrpc/client"
)

const (
	rpcTimeout = 4 * time.Second

	gatewayProbeAttempts = 10
	gatewayProbeDelay    = 500 * time.Millisecond
)

var _ SessionService = (*GatewayClient)(nil)

// GatewayClient implements SessionService against a remote gateway
// server. Each call dials the gateway address fresh; session affinity
// lives in the handle, not the connection.
type GatewayClient struct {
	address string
}

func NewGatewayClient(address string) *GatewayClient {
	return &GatewayClient{address: address}
}

// Address returns the gateway address this client dials.
func (gc *GatewayClient) Address() string {
	return gc.address
}

func (gc *GatewayClient) callRPC(ctx context.Context, method string, req interface{}, res interface{}) error {
	remoteClient, err := client.New(gc.address)
	if err != nil {
		return err
	}
	params := map[string]interface{}{
		"arg": req,
	}
	if _, ok := ctx.Deadline(); !ok {
		var ctxCancel context.CancelFunc
		ctx, ctxCancel = context.WithTimeout(ctx, rpcTimeout)
		defer ctxCancel()
	}
	_, err = remoteClient.Call(ctx, method, params, res)
	if err != nil {
		return err
	}
	return nil
}

func (gc *GatewayClient) OpenSession(ctx context.Context) (SessionHandle, error) {
	res := &OpenSessionResponse{}
	if err := gc.callRPC(ctx, "OpenSession", OpenSessionRequest{}, res); err != nil {
		return "", err
	}
	return SessionHandle(res.Handle), nil
}

func (gc *GatewayClient) Authenticate(
	ctx context.Context, handle SessionHandle, identity string, credential string) error {
	return gc.callRPC(ctx, "Authenticate", AuthenticateRequest{
		Handle:     string(handle),
		Identity:   identity,
		Credential: credential,
	}, &EmptyRPCResponse{})
}

func (gc *GatewayClient) Sign(ctx context.Context, handle SessionHandle, message []byte) ([]byte, error) {
	res := &SignSessionResponse{}
	if err := gc.callRPC(ctx, "Sign", SignSessionRequest{
		Handle:  string(handle),
		Message: message,
	}, res); err != nil {
		return nil, err
	}
	return res.Signature, nil
}

func (gc *GatewayClient) Deauthenticate(ctx context.Context, handle SessionHandle) error {
	return gc.callRPC(ctx, "Deauthenticate", DeauthenticateRequest{
		Handle: string(handle),
	}, &EmptyRPCResponse{})
}

func (gc *GatewayClient) CloseSession(ctx context.Context, handle SessionHandle) error {
	return gc.callRPC(ctx, "CloseSession", CloseSessionRequest{
		Handle: string(handle),
	}, &EmptyRPCResponse{})
}

// WaitForGateway probes the gateway until it responds to Ping, so a
// signing run doesn't race a gateway that is still starting.
func (gc *GatewayClient) WaitForGateway(ctx context.Context) error {
	return retry.Do(
		func() error {
			return gc.callRPC(ctx, "Ping", PingRequest{}, &EmptyRPCResponse{})
		},
		retry.Context(ctx),
		retry.Attempts(gatewayProbeAttempts),
		retry.Delay(gatewayProbeDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
