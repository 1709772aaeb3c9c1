package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/demark"
	"github.com/aretw0/demark/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command in a scratch directory and resets every
// flag afterwards, since the command tree is package state.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("DEMARK_CACHE_BACKEND", "none")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() { resetFlags(rootCmd) })

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "demark version "+strings.TrimSpace(demark.Version)+"\n", out)
}

func TestNormalize_Args(t *testing.T) {
	out, err := run(t, "", "normalize", "**bold**", "and", "`code`")
	require.NoError(t, err)
	assert.Equal(t, "bold and code\n", out)
}

func TestNormalize_Stdin(t *testing.T) {
	out, err := run(t, "# Title\n\n- one\n- two\n", "normalize")
	require.NoError(t, err)
	assert.Equal(t, "Title\n\none\ntwo\n", out)
}

func TestNormalize_RejectsOversizedInput(t *testing.T) {
	t.Setenv("DEMARK_INPUT_MAX_SIZE", "4")
	_, err := run(t, "", "normalize", "too long")
	assert.ErrorContains(t, err, "input rejected")
}

func TestRender_FileAsJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "envelope.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"status":"ok","summary":"**Done**","tools_used":["calculator"]}`), 0644))

	out, err := run(t, "", "render", "--file", path, "--output", "json")
	require.NoError(t, err)

	var view domain.View
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "Done", view.Summary)
	assert.Equal(t, domain.DefaultChain, view.Chain)
}

func TestRender_InvalidEnvelope(t *testing.T) {
	_, err := run(t, "not json", "render")
	assert.ErrorContains(t, err, "invalid response envelope")
}

func TestRules(t *testing.T) {
	out, err := run(t, "", "rules")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, " 1. line-endings\n"))
	assert.Contains(t, out, "whitespace")
}

func TestConfigShow_RedactsPassword(t *testing.T) {
	t.Setenv("DEMARK_CACHE_REDIS_PASSWORD", "s3cret")
	out, err := run(t, "", "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "s3cret")
	assert.Contains(t, out, "********")
}

func TestAsk_ArchiveRoundTrip(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","summary":"## Answer\n\n**42**","query":"meaning","chain_used":"math"}`))
	}))
	defer backend.Close()

	archiveDir := filepath.Join(t.TempDir(), "transcripts")
	require.NoError(t, os.MkdirAll(archiveDir, 0755))
	t.Setenv("DEMARK_ASSISTANT_URL", backend.URL)
	t.Setenv("DEMARK_ARCHIVE_DIR", archiveDir)

	out, err := run(t, "", "ask", "meaning", "--archive")
	require.NoError(t, err)
	assert.Contains(t, out, "Answer\n\n42")

	out, err = run(t, "", "archive", "list")
	require.NoError(t, err)
	ids := strings.Fields(out)
	require.Len(t, ids, 1)

	out, err = run(t, "", "archive", "show", ids[0], "-o", "json")
	require.NoError(t, err)
	var view domain.View
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "math", view.Chain)
}

func TestAsk_BackendDown(t *testing.T) {
	t.Setenv("DEMARK_ASSISTANT_URL", "http://127.0.0.1:1")

	out, err := run(t, "", "ask", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "Unable to connect to the AI service")
	assert.Contains(t, out, "Error:")
}
