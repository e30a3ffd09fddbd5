package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/loom/internal/config"
	"github.com/vango-dev/loom/pkg/snapshot"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersionShort(t *testing.T) {
	out, _, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestCheckReportsEveryFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.html", `<p class="${}">${}</p>`)
	bad := writeFile(t, dir, "bad.html", "<div>\n  <p>oops</div>\n")

	out, errOut, err := run(t, "check", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 templates failed")
	assert.Contains(t, out, "good.html (2 holes)")
	assert.Contains(t, errOut, "E203")
	assert.Contains(t, errOut, "bad.html:2:")
}

func TestCheckMissingFile(t *testing.T) {
	_, errOut, err := run(t, "check", filepath.Join(t.TempDir(), "nope.html"))
	require.Error(t, err)
	assert.Contains(t, errOut, "nope.html")
}

func TestRenderFillsHoles(t *testing.T) {
	path := writeFile(t, t.TempDir(), "greet.html", `<p title="${}">Hello, ${}!</p>`)

	out, _, err := run(t, "render", path, "--hole", "greeting", "--hole", "Ada")
	require.NoError(t, err)
	assert.Equal(t, `<p title="greeting">Hello, Ada!</p>`, strings.TrimSpace(out))
}

func TestRenderFragment(t *testing.T) {
	path := writeFile(t, t.TempDir(), "list.html", `<dt>${}</dt><dd>${}</dd>`)

	out, _, err := run(t, "render", path, "--hole", "k", "--hole", "v")
	require.NoError(t, err)
	assert.Equal(t, `<dt>k</dt><dd>v</dd>`, strings.TrimSpace(out))
}

func TestRenderHoleCountMismatch(t *testing.T) {
	path := writeFile(t, t.TempDir(), "one.html", `<p>${}</p>`)

	_, _, err := run(t, "render", path)
	require.Error(t, err)
	assert.Contains(t, describe(err), "E204")
}

func TestInvalidConfigFails(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "loom.yaml", "log:\n  format: xml\n")

	_, _, err := run(t, "--config", cfg, "version")
	require.Error(t, err)
	assert.Contains(t, describe(err), "E501")
}

func TestSnapshotStoreSelection(t *testing.T) {
	cfg := config.New()
	cfg.Snapshots.Dir = t.TempDir()

	store, err := snapshotStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &snapshot.FileStore{}, store)

	// Keep the default chain away from the developer's own AWS setup.
	home := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(home, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(home, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	cfg.Snapshots.S3.Bucket = "loom-snapshots"
	cfg.Snapshots.S3.Region = "eu-west-1"
	store, err = snapshotStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &snapshot.S3Store{}, store)
}
