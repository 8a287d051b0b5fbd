package netio

import (
	"net"
	"sync"

	"github.com/r3e-network/llrt-go/internal/events"
)

// Server accepts connections on a bound TCP or Unix listener, handing
// each one to a freshly created Socket (spec.md §4.7 "The server
// accepts on a bound address or path"). A broadcast close channel lets
// Close interrupt a blocked Accept.
type Server struct {
	Emitter *events.Emitter

	mu            sync.Mutex
	listener      net.Listener
	allowHalfOpen bool
	closing       chan struct{}
	closeOnce     sync.Once
}

// Listen binds listener and returns a Server ready to Accept connections
// from it. The caller supplies the net.Listener so tests can use
// net.Listen("tcp", "127.0.0.1:0") and callers can reuse an existing
// one for Unix sockets.
func Listen(listener net.Listener, allowHalfOpen bool) *Server {
	return &Server{
		Emitter:       events.New(),
		listener:      listener,
		allowHalfOpen: allowHalfOpen,
		closing:       make(chan struct{}),
	}
}

// Serve runs the accept loop until Close is called or the listener
// errors. Each accepted connection is wrapped in a Socket, attached,
// and emitted via "connection".
func (srv *Server) Serve() error {
	for {
		conn, err := srv.listener.Accept()
		if err != nil {
			select {
			case <-srv.closing:
				return nil
			default:
			}
			srv.Emitter.Emit("error", true, err)
			return err
		}

		sock := NewSocket(remoteAddrOf(conn), srv.allowHalfOpen)
		sock.attach(conn)
		srv.Emitter.Emit("connection", true, sock)
	}
}

// Close stops the accept loop and closes the listener. Emits "close"
// exactly once.
func (srv *Server) Close() error {
	var err error
	srv.closeOnce.Do(func() {
		close(srv.closing)
		err = srv.listener.Close()
		srv.Emitter.Emit("close", true)
	})
	return err
}

// Addr returns the listener's bound address.
func (srv *Server) Addr() net.Addr {
	return srv.listener.Addr()
}

func remoteAddrOf(conn net.Conn) Address {
	addr := conn.RemoteAddr()
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return Address{Family: "tcp", Host: tcp.IP.String(), Port: tcp.Port}
	}
	if unix, ok := addr.(*net.UnixAddr); ok {
		return Address{Family: "unix", Path: unix.Name}
	}
	return Address{Family: addr.Network(), Host: addr.String()}
}
