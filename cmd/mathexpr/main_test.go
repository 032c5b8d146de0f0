package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errs)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEvalArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		in   string
		want string
	}{
		{"arg", []string{"1 + 2"}, "", "3\n"},
		{"args-share-scope", []string{"x = 4", "x^2"}, "", "4\n16\n"},
		{"stdin", nil, "2 * 3", "6\n"},
		{"stdin-block", nil, "a = 2; b = 3\na * b", "3\n6\n"},
		{"lines", []string{"-n"}, "1 + 1\n\n2 + 2\n", "2\n4\n"},
		{"given", []string{"--given", "x=5", "--given", "y = x + 1", "x * y"}, "", "30\n"},
		{"digits", []string{"--fmt", "5", "pi"}, "", "3.1416\n"},
		{"prec", []string{"-p", "200", "--fmt", "40", "1/3"}, "", "0." + strings.Repeat("3", 40) + "\n"},
		{"echo", []string{"--echo", "2 + 2x", "--given", "x=1"}, "", "2 + (2 * x) : 4\n"},
		{"matrix", []string{"[1, 2; 3, 4]'"}, "", "[[1, 3], [2, 4]]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.in, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	out, err := execute(t, "", "sqrt(-1)", "2")
	assert.Error(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "sqrt")
	assert.Equal(t, "2", lines[1])

	_, err = execute(t, "", "1 +")
	assert.Error(t, err)

	_, err = execute(t, "", "--given", "novalue", "1")
	assert.Error(t, err)

	_, err = execute(t, "", "-p", "0", "1")
	assert.Error(t, err)
}

func TestLongLine(t *testing.T) {
	long := strings.Repeat("1 + ", bufio.MaxScanTokenSize/4) + "1"
	out, err := execute(t, long+"\n2\n", "-n")
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.Empty(t, out)

	// Without -n, the whole input is one expression.
	out, err = execute(t, long)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(bufio.MaxScanTokenSize/4+1)+"\n", out)
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("precision: 128\nformat: 3\nvars:\n  r: \"2\"\n"), 0o644))

	out, err := execute(t, "", "--config", path, "pi * r")
	require.NoError(t, err)
	assert.Equal(t, "6.28\n", out)

	// Flags override the file.
	out, err = execute(t, "", "--config", path, "--fmt", "5", "pi * r")
	require.NoError(t, err)
	assert.Equal(t, "6.2832\n", out)

	_, err = execute(t, "", "--config", filepath.Join(dir, "missing.toml"), "1")
	assert.Error(t, err)
}

func TestInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.txt")
	require.NoError(t, os.WriteFile(path, []byte("f(x) = x + 1;\nf(2)"), 0o644))
	out, err := execute(t, "", "--in", path)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestParseCommand(t *testing.T) {
	out, err := execute(t, "", "parse", "2x + 1", "a ? b : c")
	require.NoError(t, err)
	assert.Equal(t, "(2 * x) + 1\na ? b : c\n", out)

	out, err = execute(t, "", "parse", "--tree", "f(x) = -x")
	require.NoError(t, err)
	want := "FunctionAssignmentNode f(x)\n" +
		"  expr: OperatorNode - (unaryMinus)\n" +
		"    args[0]: SymbolNode x\n"
	assert.Equal(t, want, out)

	_, err = execute(t, "", "parse", "(")
	assert.Error(t, err)
}
