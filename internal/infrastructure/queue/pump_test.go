package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

type recordingHandler struct {
	mu     sync.Mutex
	seen   []string
	active int
	maxPar int
	delay  time.Duration
}

func (h *recordingHandler) Handle(_ context.Context, s domain.Session) domain.Decision {
	h.mu.Lock()
	h.active++
	if h.active > h.maxPar {
		h.maxPar = h.active
	}
	h.mu.Unlock()

	time.Sleep(h.delay)

	h.mu.Lock()
	h.active--
	h.seen = append(h.seen, s.UserID)
	h.mu.Unlock()
	return domain.Decision{State: domain.Classify(s)}
}

func (h *recordingHandler) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

type fakeSource struct {
	mu  sync.Mutex
	fns []ports.IdentityListener
}

func (f *fakeSource) Subscribe(fn ports.IdentityListener) func() {
	f.mu.Lock()
	f.fns = append(f.fns, fn)
	idx := len(f.fns) - 1
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.fns[idx] = nil
		f.mu.Unlock()
	}
}

func (f *fakeSource) emit(s domain.Session) {
	f.mu.Lock()
	fns := append([]ports.IdentityListener(nil), f.fns...)
	f.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(s)
		}
	}
}

func (f *fakeSource) SignIn(context.Context, string, string) (domain.Session, error) {
	return domain.Session{}, nil
}
func (f *fakeSource) SignOut(context.Context) error { return nil }
func (f *fakeSource) Reload(context.Context) (domain.Session, error) {
	return domain.Session{}, nil
}
func (f *fakeSource) Restore(context.Context, string) (domain.Session, error) {
	return domain.Session{}, nil
}
func (f *fakeSource) SendVerification(context.Context) (string, error) { return "", nil }
func (f *fakeSource) ConfirmVerification(context.Context, string) error { return nil }

func waitLen(t *testing.T, h *recordingHandler, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(h.snapshot()) >= n {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("expected %d handled snapshots, got %v", n, h.snapshot())
}

func TestPump_SerialInOrder(t *testing.T) {
	h := &recordingHandler{delay: 2 * time.Millisecond}
	p := NewPump(h, zerolog.Nop())
	p.Start(context.Background())
	defer p.Stop()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		p.Enqueue(domain.Session{UserID: id})
	}
	waitLen(t, h, 5)

	got := h.snapshot()
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		if got[i] != want {
			t.Fatalf("out of order delivery: %v", got)
		}
	}
	if h.maxPar != 1 {
		t.Fatalf("expected one snapshot at a time, saw %d concurrent", h.maxPar)
	}
}

func TestPump_EnqueueAfterStopIsNoop(t *testing.T) {
	h := &recordingHandler{}
	p := NewPump(h, zerolog.Nop())
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	p.Enqueue(domain.Session{UserID: "late"})
	time.Sleep(10 * time.Millisecond)
	if len(h.snapshot()) != 0 {
		t.Fatalf("snapshot handled after stop: %v", h.snapshot())
	}
}

func TestPump_StopsOnContextCancel(t *testing.T) {
	h := &recordingHandler{}
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPump(h, zerolog.Nop())
	p.Start(ctx)
	cancel()

	select {
	case <-p.done:
	case <-time.After(time.Second):
		t.Fatalf("worker did not exit on cancel")
	}
}

func TestMount_DisposerStopsDelivery(t *testing.T) {
	h := &recordingHandler{}
	src := &fakeSource{}
	unmount := Mount(context.Background(), src, h, zerolog.Nop())

	src.emit(domain.Session{UserID: "one"})
	waitLen(t, h, 1)

	unmount()
	src.emit(domain.Session{UserID: "two"})
	time.Sleep(10 * time.Millisecond)

	if got := h.snapshot(); len(got) != 1 || got[0] != "one" {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}
