package netio

import (
	"net"
	"strconv"
	"sync"

	"github.com/r3e-network/llrt-go/internal/events"
	"github.com/r3e-network/llrt-go/internal/framework"
	"github.com/r3e-network/llrt-go/internal/streams"
)

// State is a Socket's lifecycle position, per spec.md §4.7 connect flow.
type State int

const (
	StateOpening State = iota
	StateOpen
	StateReadOnly
	StateWriteOnly
	StateClosed
)

// Address describes one end of a Socket: host/port for TCP, Path for a
// Unix domain endpoint.
type Address struct {
	Family string // "tcp" or "unix"
	Host   string
	Port   int
	Path   string
}

// Socket wraps a stream pair plus address metadata and a connect state
// machine (spec.md §4.7). AllowHalfOpen, when false (the default),
// ends the write side as soon as the read side observes EOF.
//
// Every event is emitted with defer=true: pump() and Server.Serve()
// run on their own goroutines, so a listener that calls back into a
// single-threaded JS runtime must be handed off through Emitter.Scheduler
// rather than invoked inline. With no Scheduler configured this is a
// no-op and listeners still run synchronously on the emitting goroutine.
type Socket struct {
	Emitter *events.Emitter

	mu            sync.Mutex
	state         State
	local, remote Address
	allowHalfOpen bool

	Readable *streams.Readable
	Writable *streams.Writable

	conn net.Conn
}

// NewSocket creates a Socket in the Opening state, not yet attached to
// a transport.
func NewSocket(remote Address, allowHalfOpen bool) *Socket {
	return &Socket{
		Emitter:       events.New(),
		state:         StateOpening,
		remote:        remote,
		allowHalfOpen: allowHalfOpen,
		Readable:      streams.NewReadable(0),
	}
}

// State returns the socket's current lifecycle state.
func (s *Socket) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect validates remote against guard and, if allowed, dials it,
// wiring the resulting net.Conn into the socket's stream pair. This
// implements spec.md §4.7 steps 1-3 synchronously; callers that want
// the "spawn a task" behaviour should invoke Connect from their own
// goroutine.
func (s *Socket) Connect(guard Guard, dial func(network, address string) (net.Conn, error)) error {
	if !guard.Check(s.remote.Host, s.remote.Port) {
		err := framework.Newf(framework.KindNetworkAccessDenied, "Socket.connect", "connection to %s:%d denied by network policy", s.remote.Host, s.remote.Port)
		if s.Emitter.ListenerCount("error") > 0 {
			s.Emitter.Emit("error", true, err)
			return nil
		}
		return err
	}

	network := s.remote.Family
	if network == "" {
		network = "tcp"
	}
	address := s.remote.Path
	if network != "unix" {
		address = net.JoinHostPort(s.remote.Host, strconv.Itoa(s.remote.Port))
	}

	conn, err := dial(network, address)
	if err != nil {
		wrapped := framework.New(framework.KindNetworkAccessDenied, "Socket.connect", err)
		if s.Emitter.ListenerCount("error") > 0 {
			s.Emitter.Emit("error", true, wrapped)
			return nil
		}
		return wrapped
	}

	s.attach(conn)
	return nil
}

func (s *Socket) attach(conn net.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.state = StateOpen
	s.Writable = streams.NewWritable(func(chunk []byte) error {
		_, err := conn.Write(chunk)
		return err
	}, 0)
	s.mu.Unlock()

	s.Emitter.Emit("connect", true)

	go s.pump()
}

func (s *Socket) pump() {
	buf := make([]byte, 32*1024)
	var readErr error
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.Readable.Push(buf[:n])
		}
		if err != nil {
			readErr = err
			break
		}
	}
	s.Readable.End()

	s.mu.Lock()
	half := s.allowHalfOpen
	s.mu.Unlock()
	if !half {
		s.Writable.End(nil)
	}

	hadError := readErr != nil && readErr.Error() != "EOF"
	s.closeConn(hadError)
}

func (s *Socket) closeConn(hadError bool) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	conn := s.conn
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	s.Emitter.Emit("close", true, hadError)
}

// Close ends the write side and closes the underlying connection.
func (s *Socket) Close() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		s.closeConn(false)
		return
	}
	if s.Writable != nil {
		s.Writable.End(nil)
	}
}
