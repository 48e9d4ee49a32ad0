package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestRunInvalidConfig(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "not-a-port")

	assert.Equal(t, 1, run(context.Background()))
}

func TestRunPortInUse(t *testing.T) {
	chdirTemp(t)

	ln, err := net.Listen("tcp", "0.0.0.0:0")
	require.NoError(t, err)
	defer ln.Close()

	t.Setenv("PORT", strconv.Itoa(ln.Addr().(*net.TCPAddr).Port))
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("STATUS_INTERVAL", "0")
	t.Setenv("SHUTDOWN_TIMEOUT", "1s")

	assert.Equal(t, 1, run(context.Background()))
}

func TestRunGracefulStopWithoutToken(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.MkdirAll(filepath.Join("client", "dist"), 0o755))

	ln, err := net.Listen("tcp", "0.0.0.0:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	t.Setenv("PORT", strconv.Itoa(port))
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("STATUS_INTERVAL", "0")
	t.Setenv("SHUTDOWN_TIMEOUT", "1s")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() { done <- run(ctx) }()

	// The server keeps serving although the Discord gateway failed.
	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}
