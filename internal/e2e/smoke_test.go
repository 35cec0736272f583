package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	samples := writeSamples(t, home)

	stdout, stderr, err := runStride(t, binaryPath, home, "", "count", "--input", samples)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "steps: 2")

	stdout, stderr, err = runStride(t, binaryPath, home, "", "history")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "2 steps")
}

func TestSmokeCountFromStdin(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	stdout, stderr, err := runStride(t, binaryPath, home, "0,0\n300,2\n", "count", "--input", "-")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "steps: 1")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "stride-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/stride")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build stride binary: %s", string(output))
	return binaryPath
}

func runStride(t *testing.T, binaryPath, home, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home)
	cmd.Stdin = strings.NewReader(stdin)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func writeSamples(t *testing.T, home string) string {
	t.Helper()

	path := filepath.Join(home, "walk.jsonl")
	samples := `{"t":0,"z":0}
{"t":300,"z":2}
{"t":400,"z":0}
{"t":700,"z":2}
`
	require.NoError(t, os.WriteFile(path, []byte(samples), 0o600))
	return path
}
