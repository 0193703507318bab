package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-placeholder/internal/config"
)

func TestServeEndToEnd(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	s := NewServer(&config.WebConfig{ListenHost: "127.0.0.1", ListenPort: port})

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(listener)
	}()

	base := "http://" + listener.Addr().String()
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(base + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET / status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if string(body) != HomeMessage {
		t.Errorf("GET / body = %q, want %q", body, HomeMessage)
	}

	resp, err = client.Get(base + "/missing")
	if err != nil {
		t.Fatalf("GET /missing: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /missing status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	if s.Uptime() <= 0 {
		t.Errorf("Uptime() = %v, want > 0 while serving", s.Uptime())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Fatalf("Serve returned %v, want http.ErrServerClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestStartFailsWhenPortInUse(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer occupied.Close()
	port := occupied.Addr().(*net.TCPAddr).Port

	s := NewServer(&config.WebConfig{ListenHost: "127.0.0.1", ListenPort: port})
	if err := s.Start(); err == nil {
		t.Fatalf("Start on occupied port %d succeeded, want error", port)
	}
	if s.Uptime() != 0 {
		t.Errorf("Uptime() = %v after failed start, want 0", s.Uptime())
	}
}

func TestStartBindsFreePort(t *testing.T) {
	// grab a free port, release it, then let Start bind it
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := probe.Addr().(*net.TCPAddr).Port
	probe.Close()

	s := NewServer(&config.WebConfig{ListenHost: "127.0.0.1", ListenPort: port})
	if got, want := s.Addr(), "127.0.0.1:"+strconv.Itoa(port); got != want {
		t.Fatalf("Addr() = %q, want %q", got, want)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start()
	}()

	client := &http.Client{Timeout: time.Second}
	var resp *http.Response
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err = client.Get("http://" + s.Addr() + "/")
		if err == nil {
			break
		}
		select {
		case serr := <-errChan:
			t.Fatalf("Start returned early: %v", serr)
		case <-time.After(20 * time.Millisecond):
		}
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET / status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("Start returned %v, want http.ErrServerClosed", err)
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	s := newTestServer(t)
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown on idle server: %v", err)
	}
}

func TestServeTwice(t *testing.T) {
	s := newTestServer(t)
	first, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(first)
	}()
	defer func() {
		s.Shutdown(context.Background())
		<-errChan
	}()

	// wait until the first Serve registered itself
	deadline := time.Now().Add(5 * time.Second)
	for s.Uptime() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	second, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if err := s.Serve(second); err == nil {
		t.Fatal("second Serve succeeded, want error")
	}
}

func TestDebugAccessLog(t *testing.T) {
	var buf bytes.Buffer
	oldWriter := gin.DefaultWriter
	gin.DefaultWriter = &buf
	defer func() {
		gin.DefaultWriter = oldWriter
		gin.SetMode(gin.ReleaseMode)
	}()

	s := NewServer(&config.WebConfig{ListenHost: "127.0.0.1", ListenPort: config.DefaultListenPort, Debug: true})
	buf.Reset() // drop gin's debug route listing

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:4242"
	req.Header.Set("User-Agent", "unit-test/1.0")
	req.Header.Set("Referer", "http://example.com/")
	s.Router.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected exactly one log line, got %q", line)
	}
	for _, want := range []string{
		"192.0.2.7 - - [",
		`"GET / HTTP/1.1" 200 ` + strconv.Itoa(len(HomeMessage)),
		`"http://example.com/"`,
		`"unit-test/1.0"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q does not contain %q", line, want)
		}
	}
}

func TestNoAccessLogWithoutDebug(t *testing.T) {
	var buf bytes.Buffer
	oldWriter := gin.DefaultWriter
	gin.DefaultWriter = &buf
	defer func() { gin.DefaultWriter = oldWriter }()

	s := newTestServer(t)
	s.Router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if buf.Len() != 0 {
		t.Errorf("unexpected access log output: %q", buf.String())
	}
}
