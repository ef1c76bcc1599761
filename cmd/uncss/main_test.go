package main

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"uncss/internal/config"
	"uncss/internal/server"
	"uncss/internal/submission"
)

// setupTest resets the command globals to defaults.
func setupTest(t *testing.T) {
	t.Helper()
	cfg = config.DefaultConfig()
	logger = zap.NewNop()
	reduceHTML, reduceCSS, reduceOut = "", "", ""
	reduceLocal = false
	t.Cleanup(func() {
		cfg = nil
		logger = nil
	})
}

// writeInputs writes html and css into a temp dir and points the reduce
// flags at them.
func writeInputs(t *testing.T, html, css string) {
	t.Helper()
	dir := t.TempDir()
	reduceHTML = filepath.Join(dir, "index.html")
	reduceCSS = filepath.Join(dir, "site.css")
	require.NoError(t, os.WriteFile(reduceHTML, []byte(html), 0644))
	require.NoError(t, os.WriteFile(reduceCSS, []byte(css), 0644))
}

func runReduceCapture(t *testing.T) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := runReduce(cmd, nil)
	return buf.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var ee *exitError
	require.True(t, errors.As(err, &ee), "expected *exitError, got %v", err)
	return ee.code
}

func TestRunReduce_Local(t *testing.T) {
	setupTest(t)
	writeInputs(t, `<p class="a">x</p>`, `.a { color: red } .b { color: blue }`)
	reduceLocal = true

	out, err := runReduceCapture(t)
	require.NoError(t, err)
	assert.Equal(t, ".a { color: red }\n", out)
}

func TestRunReduce_LocalIgnore(t *testing.T) {
	setupTest(t)
	writeInputs(t, `<p></p>`, `.js-menu { a: b } .gone { c: d }`)
	reduceLocal = true
	cfg.Server.Ignore = []string{".js-menu"}

	out, err := runReduceCapture(t)
	require.NoError(t, err)
	assert.Equal(t, ".js-menu { a: b }\n", out)
}

func TestRunReduce_Service(t *testing.T) {
	setupTest(t)
	srv, err := server.New(server.Config{}, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	cfg.Service.Endpoint = ts.URL + server.ReducePath
	writeInputs(t, `<ul><li>x</li></ul>`, `li { margin: 0 } table { border: 0 }`)

	out, err := runReduceCapture(t)
	require.NoError(t, err)
	assert.Equal(t, "li { margin: 0 }\n", out)
}

func TestRunReduce_EmbeddedService(t *testing.T) {
	setupTest(t)
	require.True(t, cfg.Embedded())
	writeInputs(t, `<div id="main"></div>`, `#main { x: y } #side { z: w }`)

	out, err := runReduceCapture(t)
	require.NoError(t, err)
	assert.Equal(t, "#main { x: y }\n", out)
}

func TestRunReduce_OutFile(t *testing.T) {
	setupTest(t)
	writeInputs(t, `<b></b>`, `b { a: b } i { c: d }`)
	reduceLocal = true
	reduceOut = filepath.Join(t.TempDir(), "out.css")

	stdout, err := runReduceCapture(t)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(reduceOut)
	require.NoError(t, err)
	assert.Equal(t, "b { a: b }\n", string(data))
}

func TestRunReduce_ExitCodes(t *testing.T) {
	closed := httptest.NewServer(nil)
	deadURL := closed.URL + server.ReducePath
	closed.Close()

	tests := []struct {
		name     string
		html     string
		css      string
		local    bool
		endpoint string
		code     int
		message  string
	}{
		{"empty html", " ", "p {}", true, "", exitValidation, submission.MsgEmptyHTML},
		{"empty css", "<p></p>", "", true, "", exitValidation, submission.MsgEmptyCSS},
		{"syntax error", "<p></p>", "p { color: red", true, "", exitService, "ServiceError"},
		{"service syntax error", "<p></p>", "p { color: red", false, "", exitService, "ServiceError"},
		{"unreachable", "<p></p>", "p {}", false, deadURL, exitTransport, "TransportError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTest(t)
			writeInputs(t, tt.html, tt.css)
			reduceLocal = tt.local
			cfg.Service.Endpoint = tt.endpoint

			out, err := runReduceCapture(t)
			require.Error(t, err)
			assert.Empty(t, out)
			assert.Equal(t, tt.code, exitCode(t, err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestRunReduce_MissingFile(t *testing.T) {
	setupTest(t)
	reduceHTML = filepath.Join(t.TempDir(), "missing.html")
	reduceCSS = reduceHTML

	_, err := runReduceCapture(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read HTML")

	var ee *exitError
	assert.False(t, errors.As(err, &ee))
}

func TestExitError_Message(t *testing.T) {
	err := newExitError(submission.Input{}.Validate())
	assert.Equal(t, exitValidation, err.code)
	assert.Equal(t, "ValidationError: "+submission.MsgEmptyHTML, err.Error())
}

func TestLoadConfig(t *testing.T) {
	t.Run("file and validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "uncss.yaml")
		require.NoError(t, os.WriteFile(path, []byte("ui:\n  theme: dark\n"), 0644))

		configPath = path
		defer func() { configPath = "" }()

		require.NoError(t, loadConfig(&cobra.Command{}))
		assert.Equal(t, "dark", cfg.UI.Theme)
	})

	t.Run("invalid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "uncss.yaml")
		require.NoError(t, os.WriteFile(path, []byte("ui:\n  theme: neon\n"), 0644))

		configPath = path
		defer func() { configPath = "" }()

		err := loadConfig(&cobra.Command{})
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "invalid configuration"))
	})
}

func TestPersistentPreRun_LoggerPerCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uncss.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644))
	configPath = path
	t.Cleanup(func() {
		configPath = ""
		cfg, logger = nil, nil
	})

	// Subcommands log to stderr at the configured level.
	require.NoError(t, rootCmd.PersistentPreRunE(serveCmd, nil))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))

	// The interactive root stays silent with debug mode off.
	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	assert.False(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestFlushLogs_ClosesOnce(t *testing.T) {
	logger = zap.NewNop()
	calls := 0
	closeLog = func() { calls++ }
	t.Cleanup(func() { logger = nil })

	flushLogs()
	flushLogs()
	assert.Equal(t, 1, calls)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "uncss dev\n", buf.String())
}
