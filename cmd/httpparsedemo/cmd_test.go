package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	require.NoError(t, w.Close())
	os.Stdout = old
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParseCommandMinimalGet(t *testing.T) {
	file := writeTempFile(t, "req.txt", "GET / HTTP/1.0\r\n\r\n")
	parseConfig = parseCmdConfig{File: file}

	out := captureStdout(t, func() {
		runParse(parseCmd, nil)
	})

	require.Contains(t, out, "method:        GET")
	require.Contains(t, out, "version:       1.0")
	require.Contains(t, out, "keep-alive:    false")
}

func TestParseCommandSlowMode(t *testing.T) {
	file := writeTempFile(t, "req.txt", "POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello")
	parseConfig = parseCmdConfig{File: file, Slow: true}

	out := captureStdout(t, func() {
		runParse(parseCmd, nil)
	})

	require.Contains(t, out, "method:        POST")
	require.Contains(t, out, "keep-alive:    true")
}

func TestConfigCommandPrintsDecodedSections(t *testing.T) {
	doc := `{
		"server": {"host":"h","ports":[1],"username":"u","password":"p","datadir":"d","pidfile":"f"},
		"db": {"dbname":"d","lru_cache_size":1,"create_if_missing":1,"error_if_exist":0,
			"write_buffer_size":1,"paranoid_checks":0,"max_open_files":1,"block_size":1,
			"block_restart_interval":1,"compression":0,"verify_checksums":0,"fill_cache":0,"sync":0},
		"log": {"level":"info","stream":"stdout"}
	}`
	file := writeTempFile(t, "config.json", doc)
	configFile = file

	out := captureStdout(t, func() {
		configCmd.Run(configCmd, nil)
	})

	require.Contains(t, out, "Config{")
	require.Contains(t, out, "Host:h")
}
