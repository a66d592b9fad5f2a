package hsm

import (
	"net"
	"net/http"

	"github.com/cometbft/cometbft/libs/log"
	tmnet "github.com/cometbft/cometbft/libs/net"
	"github.com/cometbft/cometbft/libs/service"
	server "github.com/cometbft/cometbft/rpc/jsonrpc/server"
	rpctypes "github.com/cometbft/cometbft/rpc/jsonrpc/types"
)

type EmptyRPCResponse struct{}

type OpenSessionRequest struct{}

type OpenSessionResponse struct {
	Handle string
}

type AuthenticateRequest struct {
	Handle     string
	Identity   string
	Credential string
}

type SignSessionRequest struct {
	Handle  string
	Message []byte
}

type SignSessionResponse struct {
	Signature []byte
}

type DeauthenticateRequest struct {
	Handle string
}

type CloseSessionRequest struct {
	Handle string
}

type PingRequest struct{}

type GatewayServerConfig struct {
	Logger        log.Logger
	ListenAddress string
	Sessions      SessionService
}

// GatewayServer exposes a SessionService to wallet clients over
// JSON-RPC. The wire protocol mirrors the session protocol one to one;
// protocol enforcement stays in the backing service.
type GatewayServer struct {
	service.BaseService

	logger        log.Logger
	listenAddress string
	listener      net.Listener
	sessions      SessionService
}

func NewGatewayServer(config *GatewayServerConfig) *GatewayServer {
	rpcServer := &GatewayServer{
		logger:        config.Logger,
		listenAddress: config.ListenAddress,
		sessions:      config.Sessions,
	}

	rpcServer.BaseService = *service.NewBaseService(config.Logger, "GatewayServer", rpcServer)
	return rpcServer
}

// OnStart starts the rpc server to respond to remote session requests
func (rpcServer *GatewayServer) OnStart() error {
	proto, address := tmnet.ProtocolAndAddress(rpcServer.listenAddress)

	lis, err := net.Listen(proto, address)
	if err != nil {
		return err
	}
	rpcServer.listener = lis

	routes := map[string]*server.RPCFunc{
		"OpenSession":    server.NewRPCFunc(rpcServer.rpcOpenSessionRequest, "arg"),
		"Authenticate":   server.NewRPCFunc(rpcServer.rpcAuthenticateRequest, "arg"),
		"Sign":           server.NewRPCFunc(rpcServer.rpcSignRequest, "arg"),
		"Deauthenticate": server.NewRPCFunc(rpcServer.rpcDeauthenticateRequest, "arg"),
		"CloseSession":   server.NewRPCFunc(rpcServer.rpcCloseSessionRequest, "arg"),
		"Ping":           server.NewRPCFunc(rpcServer.rpcPingRequest, "arg"),
	}

	mux := http.NewServeMux()
	server.RegisterRPCFuncs(mux, routes, log.NewFilter(rpcServer.Logger, log.AllowError()))

	tcpLogger := rpcServer.Logger.With("socket", "tcp")
	tcpLogger = log.NewFilter(tcpLogger, log.AllowError())
	config := server.DefaultConfig()

	go func() {
		defer lis.Close()
		err := server.Serve(lis, mux, tcpLogger, config)
		if err != nil {
			rpcServer.logger.Error("Error serving gateway requests", "error", err.Error())
		}
	}()

	return nil
}

// OnStop closes the listener; in-flight requests are abandoned.
func (rpcServer *GatewayServer) OnStop() {
	if rpcServer.listener == nil {
		return
	}
	if err := rpcServer.listener.Close(); err != nil {
		rpcServer.logger.Error("Error closing gateway listener", "error", err.Error())
	}
}

func (rpcServer *GatewayServer) Addr() net.Addr {
	if rpcServer.listener == nil {
		return nil
	}
	return rpcServer.listener.Addr()
}

func (rpcServer *GatewayServer) rpcOpenSessionRequest(
	ctx *rpctypes.Context, req OpenSessionRequest) (*OpenSessionResponse, error) {
	handle, err := rpcServer.sessions.OpenSession(ctx.Context())
	if err != nil {
		return nil, err
	}
	return &OpenSessionResponse{
		Handle: string(handle),
	}, nil
}

func (rpcServer *GatewayServer) rpcAuthenticateRequest(
	ctx *rpctypes.Context, req AuthenticateRequest) (*EmptyRPCResponse, error) {
	err := rpcServer.sessions.Authenticate(ctx.Context(), SessionHandle(req.Handle), req.Identity, req.Credential)
	if err != nil {
		return nil, err
	}
	return &EmptyRPCResponse{}, nil
}

func (rpcServer *GatewayServer) rpcSignRequest(
	ctx *rpctypes.Context, req SignSessionRequest) (*SignSessionResponse, error) {
	sig, err := rpcServer.sessions.Sign(ctx.Context(), SessionHandle(req.Handle), req.Message)
	if err != nil {
		return nil, err
	}
	return &SignSessionResponse{
		Signature: sig,
	}, nil
}

func (rpcServer *GatewayServer) rpcDeauthenticateRequest(
	ctx *rpctypes.Context, req DeauthenticateRequest) (*EmptyRPCResponse, error) {
	err := rpcServer.sessions.Deauthenticate(ctx.Context(), SessionHandle(req.Handle))
	if err != nil {
		return nil, err
	}
	return &EmptyRPCResponse{}, nil
}

func (rpcServer *GatewayServer) rpcCloseSessionRequest(
	ctx *rpctypes.Context, req CloseSessionRequest) (*EmptyRPCResponse, error) {
	err := rpcServer.sessions.CloseSession(ctx.Context(), SessionHandle(req.Handle))
	if err != nil {
		return nil, err
	}
	return &EmptyRPCResponse{}, nil
}

func (rpcServer *GatewayServer) rpcPingRequest(
	ctx *rpctypes.Context, req PingRequest) (*EmptyRPCResponse, error) {
	return &EmptyRPCResponse{}, nil
}
