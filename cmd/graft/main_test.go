package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/graft/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "components", "card.html"),
		`<article><header><slot name="title"></slot></header><slot></slot></article>`)
	writeFile(t, filepath.Join(dir, "graft.json"), `{
  "components": {"my-card": {"template": "components/card.html"}},
  "store": {"dir": "out"}
}`)
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

const page = `<html><body><my-card><h1 slot="title">Title</h1><p>Body</p></my-card></body></html>`

func TestHydrateStdin(t *testing.T) {
	dir := newProject(t)
	out, _, err := execute(t, page, "--config", filepath.Join(dir, "graft.json"), "hydrate", "-")
	require.NoError(t, err)

	assert.Contains(t, out, `<html dir="ltr" data-ssr="">`)
	assert.Contains(t, out, `data-ssrv="0"`)
	assert.Contains(t, out, `class="hydrated"`)
	assert.Contains(t, out, `<header data-ssrc="0.0."><h1 slot="title">Title</h1></header>`)
}

func TestHydrateFileAndPublish(t *testing.T) {
	dir := newProject(t)
	in := filepath.Join(dir, "index.html")
	outFile := filepath.Join(dir, "dist", "index.html")
	writeFile(t, in, page)
	require.NoError(t, os.MkdirAll(filepath.Dir(outFile), 0755))

	stdout, stderr, err := execute(t, "", "-c", filepath.Join(dir, "graft.json"),
		"hydrate", in, "-o", outFile, "--publish", "/docs")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Published /docs")

	written, err := os.ReadFile(outFile)
	require.NoError(t, err)
	published, err := os.ReadFile(filepath.Join(dir, "out", "docs", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, string(written), string(published))
}

func TestHydrateDiagnostics(t *testing.T) {
	dir := newProject(t)
	out, stderr, err := execute(t, "<p>plain</p>", "-c", filepath.Join(dir, "graft.json"), "hydrate", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "<p>plain</p>")
	assert.Contains(t, stderr, "E040")
}

func TestHydrateMissingInput(t *testing.T) {
	dir := newProject(t)
	_, _, err := execute(t, "", "-c", filepath.Join(dir, "graft.json"), "hydrate", filepath.Join(dir, "nope.html"))
	require.Error(t, err)
	assert.Equal(t, "E160", errors.CodeOf(err))
}

func TestMissingConfig(t *testing.T) {
	_, _, err := execute(t, "", "-c", filepath.Join(t.TempDir(), "graft.json"), "components")
	require.Error(t, err)
	assert.Equal(t, "E141", errors.CodeOf(err))
}

func TestBadLogLevel(t *testing.T) {
	dir := newProject(t)
	_, _, err := execute(t, "", "-c", filepath.Join(dir, "graft.json"), "--log-level", "loud", "components")
	require.Error(t, err)
	assert.Equal(t, "E160", errors.CodeOf(err))
}

func TestComponents(t *testing.T) {
	dir := newProject(t)
	out, _, err := execute(t, "", "-c", filepath.Join(dir, "graft.json"), "components")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "TAG"))
	assert.Contains(t, lines[1], "my-card")
	assert.Contains(t, lines[1], "slots|named-slots")
	assert.Contains(t, lines[1], "components/card.html")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, _, err = execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "graft dev")
	assert.Contains(t, out, "OS/Arch:")
}
