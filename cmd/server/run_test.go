package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/vshulcz/Twintick/internal/config"
	"github.com/vshulcz/Twintick/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobserver "go.uber.org/zap/zaptest/observer"
)

var pageRe = regexp.MustCompile(`^Value A: (\d+)\nValue B: (\d+)$`)

func testConfig(t *testing.T) config.ServerConfig {
	t.Helper()
	cfg, err := config.LoadServerConfig([]string{"-u", "1ms", "-s", "1s", "-t", "1s"}, nil)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(b)
}

func Test_run_ServesAdvancingCounters(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	core, logs := zapobserver.New(zapcore.DebugLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, testConfig(t), zap.New(core), ln) }()

	url := "http://" + ln.Addr().String() + "/"
	var prevA, prevB uint64
	deadline := time.Now().Add(3 * time.Second)
	for {
		code, body := get(t, url)
		if code != http.StatusOK {
			t.Fatalf("status=%d body=%q", code, body)
		}
		m := pageRe.FindStringSubmatch(body)
		if m == nil {
			t.Fatalf("unexpected body %q", body)
		}
		a, _ := strconv.ParseUint(m[1], 10, 64)
		b, _ := strconv.ParseUint(m[2], 10, 64)
		if a < prevA || b < prevB {
			t.Fatalf("values went backwards: (%d,%d) -> (%d,%d)", prevA, prevB, a, b)
		}
		prevA, prevB = a, b
		if a > 0 && b > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("counters did not advance, last body %q", body)
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not stop after cancel")
	}

	if logs.FilterMessage("counter updated").Len() == 0 {
		t.Fatal("expected debug logs for counter updates")
	}
	if logs.FilterMessage("http_request").Len() == 0 {
		t.Fatal("expected request logs")
	}
}

func Test_run_ReportsServeError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ln.Close()

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), testConfig(t), zap.NewNop(), ln) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected serve error on closed listener")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not stop after serve failure")
	}
}

func Test_run_NamesFailingProducer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := testConfig(t)
	cfg.MinStep = 0

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), cfg, zap.NewNop(), ln) }()

	select {
	case err := <-done:
		if !errors.Is(err, domain.ErrInvalidConfig) {
			t.Fatalf("err=%v, want ErrInvalidConfig", err)
		}
		if !strings.HasPrefix(err.Error(), "producer A: ") && !strings.HasPrefix(err.Error(), "producer B: ") {
			t.Fatalf("err=%q does not name the producer", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not stop after producer failure")
	}
}

func Test_newLogger(t *testing.T) {
	tests := []struct {
		level   string
		enabled zapcore.Level
		wantErr bool
	}{
		{level: "debug", enabled: zapcore.DebugLevel},
		{level: "warn", enabled: zapcore.WarnLevel},
		{level: "nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := newLogger(tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("newLogger: %v", err)
			}
			if !l.Core().Enabled(tt.enabled) {
				t.Fatalf("level %v not enabled", tt.enabled)
			}
			if l.Core().Enabled(tt.enabled - 1) {
				t.Fatalf("level %v should be disabled", tt.enabled-1)
			}
		})
	}
}
