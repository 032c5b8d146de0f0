package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/mathexpr/bignum"
	"github.com/zephyrtronium/mathexpr/internal/config"
)

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// replace atomically replaces the contents of path.
func replace(t *testing.T, path, text string) {
	t.Helper()
	tmp := filepath.Join(t.TempDir(), filepath.Base(path))
	require.NoError(t, os.WriteFile(tmp, []byte(text), 0o644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.txt")
	require.NoError(t, os.WriteFile(path, []byte("x = 1; x + 1"), 0o644))

	var out, logs syncBuffer
	a := &app{
		log: zerolog.New(&logs).Level(zerolog.DebugLevel),
		cfg: config.Default(),
		ns:  bignum.New(64),
	}
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.watch(ctx, cmd, path) }()

	contains := func(b *syncBuffer, s string) func() bool {
		return func() bool { return strings.Contains(b.String(), s) }
	}
	require.Eventually(t, contains(&out, "2\n"), 5*time.Second, 10*time.Millisecond, "initial evaluation")

	steps := []struct {
		name string
		text string
		// out or log is the text expected to appear after the change.
		out string
		log string
	}{
		{"rewrite", "3 * 3", "9\n", ""},
		{"fresh-scope", "x", "undefined symbol", ""},
		{"parse-error", "1 +", "", "parse error"},
		{"recover", "2^10", "1024\n", ""},
	}
	for _, s := range steps {
		// Changes closer together than the debounce delay are dropped.
		time.Sleep(debounceDelay + 50*time.Millisecond)
		replace(t, path, s.text)
		if s.out != "" {
			require.Eventually(t, contains(&out, s.out), 5*time.Second, 10*time.Millisecond, s.name)
		} else {
			require.Eventually(t, contains(&logs, s.log), 5*time.Second, 10*time.Millisecond, s.name)
		}
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestWatchMissingDir(t *testing.T) {
	a := &app{log: zerolog.Nop(), cfg: config.Default(), ns: bignum.New(64)}
	path := filepath.Join(t.TempDir(), "nope", "script.txt")
	err := a.watch(context.Background(), &cobra.Command{}, path)
	require.Error(t, err)
}
