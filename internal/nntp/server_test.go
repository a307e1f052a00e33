package nntp

import (
	"io"
	"net"
	"testing"

	"github.com/ewxrjk/inntest/internal/probe"
)

// fakeBackend is a minimal Backend for exercising Server in isolation.
type fakeBackend struct {
	checkCode int
	ihaveCode int
}

func (b *fakeBackend) IhaveCheck(id string) (int, string) {
	return b.checkCode, ""
}

func (b *fakeBackend) Ihave(id string, article *probe.Article) (int, string) {
	return b.ihaveCode, ""
}

func pipePair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	return client, server
}

func TestServerCapabilitiesAndQuit(t *testing.T) {
	client, server := pipePair(t)
	defer client.Close()

	srv := NewServer(server, &fakeBackend{}, Features{Ihave: true, Streaming: true}, nil, "test server")
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	buf := make([]byte, 4096)
	n, err := client.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	greeting := string(buf[:n])
	if greeting[:3] != "200" {
		t.Fatalf("expected 200 greeting, got %q", greeting)
	}

	client.Write([]byte("CAPABILITIES\r\n"))
	n, err = client.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	resp := string(buf[:n])
	if resp[:3] != "101" {
		t.Fatalf("expected 101, got %q", resp)
	}

	client.Write([]byte("QUIT\r\n"))
	n, err = client.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatal(err)
	}
	if n > 0 && string(buf[:3]) != "205" {
		t.Fatalf("expected 205, got %q", string(buf[:n]))
	}

	if err := <-done; err != nil {
		t.Fatalf("Serve returned error: %v", err)
	}
}

func TestServerUnknownCommand(t *testing.T) {
	client, server := pipePair(t)
	defer client.Close()

	srv := NewServer(server, &fakeBackend{}, Features{}, nil, "test server")
	go srv.Serve()

	buf := make([]byte, 4096)
	client.Read(buf) // greeting

	client.Write([]byte("NOTINNNTP\r\n"))
	n, err := client.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:3]) != "500" {
		t.Fatalf("expected 500, got %q", string(buf[:n]))
	}
}

func TestServerModeStreamDisabled(t *testing.T) {
	client, server := pipePair(t)
	defer client.Close()

	srv := NewServer(server, &fakeBackend{}, Features{}, nil, "test server")
	go srv.Serve()

	buf := make([]byte, 4096)
	client.Read(buf) // greeting

	client.Write([]byte("MODE STREAM\r\n"))
	n, err := client.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:3]) != "501" {
		t.Fatalf("expected 501, got %q", string(buf[:n]))
	}
}

func TestServerIhaveDisabledByDefault(t *testing.T) {
	client, server := pipePair(t)
	defer client.Close()

	srv := NewServer(server, &fakeBackend{}, Features{}, nil, "test server")
	go srv.Serve()

	buf := make([]byte, 4096)
	client.Read(buf)

	client.Write([]byte("IHAVE <a@b>\r\n"))
	n, err := client.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:3]) != "500" {
		t.Fatalf("expected 500, got %q", string(buf[:n]))
	}
}
