package netio

import (
	"net"
	"testing"
	"time"

	"github.com/r3e-network/llrt-go/internal/framework"
)

func TestSocketConnectDeniedByGuard(t *testing.T) {
	s := NewSocket(Address{Family: "tcp", Host: "blocked.example", Port: 443}, false)
	guard := Guard{Deny: ParseHostList([]string{"blocked.example"})}

	err := s.Connect(guard, net.Dial)
	if !framework.Is(err, framework.KindNetworkAccessDenied) {
		t.Fatalf("got %v", err)
	}
	if s.State() != StateOpening {
		t.Fatalf("expected socket to stay Opening, got %v", s.State())
	}
}

func TestSocketConnectAndEcho(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 1024)
		n, _ := conn.Read(buf)
		conn.Write(buf[:n])
		conn.Close()
	}()

	tcpAddr := ln.Addr().(*net.TCPAddr)
	s := NewSocket(Address{Family: "tcp", Host: "127.0.0.1", Port: tcpAddr.Port}, false)

	connected := make(chan struct{}, 1)
	s.Emitter.On("connect", func(args ...any) { connected <- struct{}{} })

	if err := s.Connect(Guard{}, net.Dial); err != nil {
		t.Fatalf("connect: %v", err)
	}

	select {
	case <-connected:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for connect event")
	}

	s.Writable.Write([]byte("ping"), nil)

	var got []byte
	data := make(chan []byte, 1)
	s.Readable.Emitter.On("data", func(args ...any) { data <- args[0].([]byte) })

	select {
	case got = <-data:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for echoed data")
	}
	if string(got) != "ping" {
		t.Fatalf("got %q", got)
	}
}
