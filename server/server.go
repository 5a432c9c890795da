package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/soheilhy/cmux"
	"go.tablekeeper.dev/seating/task"
	"golang.org/x/net/netutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health-checking name of the seating service.
const ServiceName = "tablekeeper.Seating"

// Server bundles gRPC & HTTP servers, multiplexed over a single bound TCP
// socket (using CMux). The gRPC server presents standard health checking,
// while the HTTP server presents HTTPMux.
type Server struct {
	// RawListener is the bound TCP listener of the Server.
	RawListener *net.TCPListener
	// CMux wraps RawListener to provide connection protocol multiplexing over
	// a single bound socket. gRPC and HTTP Listeners are provided by default.
	CMux cmux.CMux
	// GRPCListener is a CMux Listener for gRPC connections.
	GRPCListener net.Listener
	// HTTPListener is a CMux Listener for HTTP connections.
	HTTPListener net.Listener
	// HTTPMux is the http.ServeMux which is served by QueueTasks.
	HTTPMux *http.ServeMux
	// GRPCServer is the gRPC server which is served by QueueTasks.
	GRPCServer *grpc.Server
	// Health of the Server, which is SERVING until the Server is stopped.
	Health *health.Server
	// Ctx is cancelled when the Server begins to stop.
	Ctx context.Context

	cancel context.CancelFunc
}

// New builds and returns a Server of the given TCP network interface |iface|
// and |port|. |port| may be zero, in which case a random free port is assigned.
// If |maxConns| is positive, at most |maxConns| connections are concurrently
// accepted.
func New(iface string, port uint16, maxConns int) (*Server, error) {
	var addr = fmt.Sprintf("%s:%d", iface, port)

	var raw, err = net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to bind service address (%s)", addr)
	}
	var ctx, cancel = context.WithCancel(context.Background())

	var srv = &Server{
		HTTPMux: http.NewServeMux(),
		GRPCServer: grpc.NewServer(
			grpc.StreamInterceptor(grpc_prometheus.StreamServerInterceptor),
			grpc.UnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
		),
		Health:      health.NewServer(),
		RawListener: raw.(*net.TCPListener),
		Ctx:         ctx,
		cancel:      cancel,
	}
	healthpb.RegisterHealthServer(srv.GRPCServer, srv.Health)
	grpc_prometheus.Register(srv.GRPCServer)

	srv.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	srv.Health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	var ln net.Listener = keepAliveListener{TCPListener: srv.RawListener}
	if maxConns > 0 {
		ln = netutil.LimitListener(ln, maxConns)
	}
	srv.CMux = cmux.New(ln)

	srv.CMux.HandleError(func(err error) bool {
		if _, ok := err.(net.Error); !ok {
			log.WithField("err", err).Warn("failed to CMux client connection to a listener")
		}
		return true // Continue serving RawListener.
	})

	// GRPCListener sniffs for HTTP/2 in-the-clear connections which have
	// "Content-Type: application/grpc". Note this matcher will send an initial
	// empty SETTINGS frame to the client, as gRPC clients delay the first
	// request until the HTTP/2 handshake has completed.
	srv.GRPCListener = srv.CMux.MatchWithWriters(
		cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))

	// Connections sending HTTP/1 verbs (GET, PUT, POST etc) are assumed to be HTTP.
	srv.HTTPListener = srv.CMux.Match(cmux.HTTP1Fast())

	log.WithFields(log.Fields{
		"addr":     srv.RawListener.Addr().String(),
		"maxConns": maxConns,
	}).Info("bound service address")

	return srv, nil
}

// Endpoint of the Server, as an HTTP URL.
func (s *Server) Endpoint() string {
	return "http://" + s.RawListener.Addr().String()
}

// QueueTasks serving the CMux, HTTP, and gRPC component servers onto the task.Group.
// Upon cancellation of the task.Group, health checks report NOT_SERVING and
// the Server gracefully stops.
func (s *Server) QueueTasks(tg *task.Group) {
	tg.Queue("CMux.Serve", func() error {
		if err := s.CMux.Serve(); err != nil && s.Ctx.Err() == nil {
			return err
		}
		return nil // Swallow error after GracefulStop.
	})
	tg.Queue("http.Serve", func() error {
		if err := http.Serve(s.HTTPListener, s.HTTPMux); err != nil && s.Ctx.Err() == nil {
			return err
		}
		return nil // Swallow error after GracefulStop.
	})
	tg.Queue("GRPCServer.Serve", func() error {
		if err := s.GRPCServer.Serve(s.GRPCListener); err != grpc.ErrServerStopped {
			return err
		}
		return nil // GracefulStop was called before Serve.
	})
	tg.Queue("GRPCServer.GracefulStop", func() error {
		<-tg.Context().Done() // Block until task.Group is cancelled.

		// Cancel |s.Ctx| so Serve loops recognize the closure as graceful.
		s.cancel()
		s.Health.Shutdown()

		// GRPCServer.GracefulStop will close GRPCListener, which closes RawListener.
		s.GRPCServer.GracefulStop()
		log.Info("server stopped")
		return nil
	})
}

// GRPCLoopback returns a connection to the local gRPC server.
func (s *Server) GRPCLoopback() (*grpc.ClientConn, error) {
	return grpc.NewClient(s.RawListener.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// keepAliveListener sets TCP keep-alive timeouts on accepted connections,
// so that dead TCP connections eventually go away.
type keepAliveListener struct {
	*net.TCPListener
}

func (ln keepAliveListener) Accept() (net.Conn, error) {
	var tc, err = ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	_ = tc.SetKeepAlive(true)
	_ = tc.SetKeepAlivePeriod(keepAlivePeriod)
	return tc, nil
}

const keepAlivePeriod = 3 * time.Minute
