package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"
)

func TestNewWritesJSONWithServiceAttr(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "info", Output: &buf}, "bartending-api")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("user registered", "user_id", "42")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if entry["msg"] != "user registered" || entry["service"] != "bartending-api" || entry["user_id"] != "42" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Format: "TEXT", Output: &buf}, "")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	logger.Info("hello")
	if !bytes.Contains(buf.Bytes(), []byte("msg=hello")) {
		t.Fatalf("expected text output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogstashWriterDeliversLines(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan string, 2)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			received <- scanner.Text()
		}
	}()

	w, err := NewLogstashWriter(ln.Addr().String())
	if err != nil {
		t.Fatalf("NewLogstashWriter error: %v", err)
	}
	defer w.Close()

	for _, line := range []string{`{"msg":"a"}`, "{\"msg\":\"b\"}\n"} {
		if n, err := w.Write([]byte(line)); err != nil || n != len(line) {
			t.Fatalf("Write(%q) = %d, %v", line, n, err)
		}
	}

	for _, want := range []string{`{"msg":"a"}`, `{"msg":"b"}`} {
		select {
		case got := <-received:
			if got != want {
				t.Fatalf("expected %q, got %q", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
	if w.Delivered() != 2 || w.Dropped() != 0 {
		t.Fatalf("unexpected counters delivered=%d dropped=%d", w.Delivered(), w.Dropped())
	}
}

func TestLogstashWriterDropsWhileUnreachable(t *testing.T) {
	w, err := NewLogstashWriter("logstash:5000", WithCooldown(time.Minute))
	if err != nil {
		t.Fatalf("NewLogstashWriter error: %v", err)
	}
	now := time.Now()
	w.now = func() time.Time { return now }
	dials := 0
	w.dial = func(network, addr string, timeout time.Duration) (net.Conn, error) {
		dials++
		return nil, errors.New("connection refused")
	}

	for i := 0; i < 3; i++ {
		if n, err := w.Write([]byte("line")); err != nil || n != 4 {
			t.Fatalf("Write = %d, %v", n, err)
		}
	}
	if dials != 1 {
		t.Fatalf("expected a single dial during cool-down, got %d", dials)
	}
	if w.Dropped() != 3 {
		t.Fatalf("expected 3 dropped lines, got %d", w.Dropped())
	}

	now = now.Add(time.Minute)
	_, _ = w.Write([]byte("line"))
	if dials != 2 {
		t.Fatalf("expected redial after cool-down, got %d dials", dials)
	}
}

func TestLogstashWriterClosed(t *testing.T) {
	w, err := NewLogstashWriter("logstash:5000")
	if err != nil {
		t.Fatalf("NewLogstashWriter error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if _, err := w.Write([]byte("x")); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("expected io.ErrClosedPipe, got %v", err)
	}
	if _, err := NewLogstashWriter("  "); err == nil {
		t.Fatalf("expected error for empty address")
	}
}
