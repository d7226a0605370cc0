package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestRunDefaultProblem(t *testing.T) {
	out, err := execute(t, "run", "--seed", "7")
	require.NoError(t, err)

	assert.Contains(t, out, "formula:    (a) & (b)")
	assert.Contains(t, out, "4 assignments, 1 satisfying")
	assert.Contains(t, out, "iterations: 1")
	assert.Contains(t, out, "$freq")
	assert.Contains(t, out, "1024 shots")
	assert.Contains(t, out, "P(1):       a=")
	assert.Contains(t, out, "sat=0.81")
	assert.Contains(t, out, "most frequent: a=1 b=1")
	assert.Contains(t, out, "satisfies: true")
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	first, err := execute(t, "run", "--seed", "11", "--shots", "200")
	require.NoError(t, err)
	second, err := execute(t, "run", "--seed", "11", "--shots", "200")
	require.NoError(t, err)

	// job ids and timings differ; the table does not
	tableOf := func(s string) string {
		start := bytes.Index([]byte(s), []byte("╭"))
		end := bytes.LastIndex([]byte(s), []byte("╯"))
		require.True(t, start >= 0 && end > start)
		return s[start:end]
	}
	assert.Equal(t, tableOf(first), tableOf(second))
}

func TestRunWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
shots: 512
seed: 5
problem:
  variables: [x, y]
  clauses:
    - [x, y]
    - ["!x", "!y"]
`), 0o644))

	out, err := execute(t, "run", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(x | y) & (!x | !y)")
	assert.Contains(t, out, "2 satisfying")
	assert.Contains(t, out, "iterations: 1")
	assert.Contains(t, out, "512 shots")
	assert.Contains(t, out, "satisfies: true")
}

func TestFlagsOverrideConfig(t *testing.T) {
	out, err := execute(t, "run", "--iterations", "0", "--shots", "64", "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "iterations: 0")
	assert.Contains(t, out, "64 shots")
}

func TestInvalidFlags(t *testing.T) {
	_, err := execute(t, "run", "--shots", "0")
	assert.Error(t, err)

	_, err = execute(t, "run", "--iterations", "-3")
	assert.Error(t, err)

	_, err = execute(t, "run", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigPrintsEffectiveSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("problem:\n  variables: [x, y]\n  clauses: [[x, y]]\n"), 0o644))

	out, err := execute(t, "config", "-c", path, "--shots", "64")
	require.NoError(t, err)
	assert.Contains(t, out, "shots: 64")
	assert.Contains(t, out, "log_level: error")
	assert.Contains(t, out, "- x")
	assert.NotContains(t, out, "- a")
}

func TestQASMRejectsNonIdentifierVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("problem:\n  variables: [x-1]\n  clauses: [[x-1]]\n"), 0o644))

	_, err := execute(t, "qasm", "-c", path)
	assert.Error(t, err)
}

func TestQASMToStdout(t *testing.T) {
	out, err := execute(t, "qasm")
	require.NoError(t, err)

	assert.Contains(t, out, "OPENQASM 2.0;")
	assert.Contains(t, out, "qreg phase_ancilla[1];")
	assert.Contains(t, out, "qreg q_sat[1];")
	assert.Contains(t, out, "creg c_sat[1];")
	assert.Contains(t, out, "measure q_sat[0] -> c_sat[0];")
}

func TestQASMToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.qasm")
	out, err := execute(t, "qasm", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "OPENQASM 2.0;")
}
