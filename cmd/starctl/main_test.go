package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNormalizeCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"normalize", "3"}, want: "3\n"},
		{args: []string{"normalize", "999"}, want: "5\n"},
		{args: []string{"normalize", "2.9"}, want: "2\n"},
		{args: []string{"normalize", "--", "-0.5"}, want: "0\n"},
		{args: []string{"normalize", ""}, want: "absent\n"},
		{args: []string{"normalize", "abc"}, want: "absent\n"},
		{args: []string{"normalize", "7", "--max", "10"}, want: "7\n"},
	}

	for _, tc := range tests {
		out, err := runCLI(t, tc.args...)
		require.NoError(t, err, tc.args)
		assert.Equal(t, tc.want, out, tc.args)
	}
}

func TestRenderCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"render", "3"}, want: "⭐⭐⭐☆☆\n"},
		{args: []string{"render", "3", "--hide-empty"}, want: "⭐⭐⭐\n"},
		{args: []string{"render", "-"}, want: "-\n"},
		{args: []string{"render", "7", "--max", "10"}, want: "⭐ (7/10)\n"},
		{args: []string{"render", "0", "--max", "1"}, want: "☆\n"},
		{args: []string{"render", "0", "--max", "1", "--hide-empty"}, want: "-\n"},
	}

	for _, tc := range tests {
		out, err := runCLI(t, tc.args...)
		require.NoError(t, err, tc.args)
		assert.Equal(t, tc.want, out, tc.args)
	}
}

func TestRenderCommandHasNoZeroStarsFlag(t *testing.T) {
	_, err := runCLI(t, "render", "0", "--allow-zero")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestBoundsCommand(t *testing.T) {
	out, err := runCLI(t, "bounds", "--max", "10")
	require.NoError(t, err)
	assert.Equal(t, "min=0 max=10 integer=true\nThe star rating value (0-10)\n", out)

	out, err = runCLI(t, "bounds", "--check", "4")
	require.NoError(t, err)
	assert.Contains(t, out, `value "4" ok`)

	_, err = runCLI(t, "bounds", "--check", "6")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be no greater than 5")

	_, err = runCLI(t, "bounds", "--check", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an integer")
}

func TestFieldsImportAndList(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "cli.sqlite")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "quality.yaml"), []byte(
		"handle: quality\nname: Quality\nmax_stars: 10\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(
		"handle: broken\nmax_stars: 4\n"), 0o644))

	out, err := runCLI(t, "fields", "import", dir, "--db", dbPath)
	require.Error(t, err, "the invalid definition is reported")
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, "imported 1 field definitions\n", out)

	out, err = runCLI(t, "fields", "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "quality")
	assert.Contains(t, out, "Quality")
	assert.Contains(t, out, "10")
	assert.NotContains(t, out, "broken")
}
