package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// failingSlots returns err for every operation.
type failingSlots struct{ err error }

func (f failingSlots) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f failingSlots) Set(context.Context, string, []byte) error {
	return f.err
}

func (f failingSlots) Remove(context.Context, string) error {
	return f.err
}

// flakySlots wraps Slots and fails the next getFailures reads of failKey.
type flakySlots struct {
	Slots
	failKey     string
	getFailures int
}

func (f *flakySlots) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == f.failKey && f.getFailures > 0 {
		f.getFailures--
		return nil, false, errBroken
	}
	return f.Slots.Get(ctx, key)
}

var errBroken = errors.New("storage unavailable")
