package mongo

import (
	"context"
	"errors"
	"testing"
)

type indexerFunc func(ctx context.Context) error

func (f indexerFunc) EnsureIndexes(ctx context.Context) error { return f(ctx) }

func TestEnsureIndexes_RunsEveryRepository(t *testing.T) {
	calls := 0
	ok := indexerFunc(func(context.Context) error { calls++; return nil })
	bad := indexerFunc(func(context.Context) error { calls++; return errors.New("index build failed") })

	err := EnsureIndexes(context.Background(), bad, ok, ok)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if calls != 3 {
		t.Fatalf("expected every repository to be indexed, got %d calls", calls)
	}
	if err := EnsureIndexes(context.Background(), ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
