package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/observable/internal/config"
	"github.com/vango-dev/observable/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServeConfig_flagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `{"server": {"port": 9000}, "log": {"level": "warn"}}`)

	cfg, err := loadServeConfig(serveOptions{
		configPath: path,
		port:       9100,
		host:       "0.0.0.0",
		logFormat:  "json",
		noMetrics:  true,
		trace:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9100", cfg.Address())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadServeConfig_unsetPortKeepsFile(t *testing.T) {
	path := writeConfig(t, `{"server": {"port": 9000}}`)

	cfg, err := loadServeConfig(serveOptions{configPath: path, port: -1})
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadServeConfig_invalid(t *testing.T) {
	path := writeConfig(t, `{}`)

	_, err := loadServeConfig(serveOptions{configPath: path, port: -1, logLevel: "loud"})

	var coded *errors.Error
	require.True(t, stderrors.As(err, &coded), "got %v", err)
	assert.Equal(t, "E104", coded.Code)
}

func TestRunServe_stopsOnCancel(t *testing.T) {
	path := writeConfig(t, `{"name": "test", "server": {"port": 0, "shutdownTimeout": "1s"}}`)

	ctx, cancel := context.WithCancel(context.Background())
	var out, logs bytes.Buffer
	errCh := make(chan error, 1)
	go func() {
		errCh <- runServe(ctx, &out, &logs, serveOptions{configPath: path, port: -1, trace: true})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("runServe did not return after cancel")
	}
	assert.Contains(t, out.String(), `Serving "test" with 2 entries`)
}

func TestRunServe_portInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	path := writeConfig(t, `{"server": {"host": "127.0.0.1", "port": `+strconv.Itoa(port)+`}}`)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runServe(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, serveOptions{configPath: path, port: -1})
	}()

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("runServe did not fail on a busy port")
	}
}

func TestEntryAttributes(t *testing.T) {
	assert.Nil(t, entryAttributes("not an entry"))
}
