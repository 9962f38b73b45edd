package navigation

import (
	"sync"
	"testing"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

func TestRouter_ReplaceCreatesNewEntry(t *testing.T) {
	r := NewRouter("")
	first := r.Entry()
	if first.Path != domain.RouteHome || first.ID == "" {
		t.Fatalf("unexpected initial entry %+v", first)
	}

	second := r.Replace(domain.RouteHome)
	if second.ID == first.ID {
		t.Fatalf("re-entering the same path must produce a new entry id")
	}
	if r.Location() != domain.RouteHome {
		t.Fatalf("unexpected location %q", r.Location())
	}
}

func TestRouter_OnEnter(t *testing.T) {
	r := NewRouter(domain.RouteLogin)

	var calls []string
	removeA := r.OnEnter(func(e domain.RouteEntry) { calls = append(calls, "a:"+e.Path) })
	r.OnEnter(func(e domain.RouteEntry) { calls = append(calls, "b:"+e.Path) })

	r.Replace("/wallet")
	removeA()
	removeA()
	r.Replace("/profile")

	want := []string{"a:/wallet", "b:/wallet", "b:/profile"}
	if len(calls) != len(want) {
		t.Fatalf("expected %v, got %v", want, calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, calls)
		}
	}
}

func TestRouter_ConcurrentReplaceDeliversInOrder(t *testing.T) {
	r := NewRouter(domain.RouteLogin)

	var seen []domain.RouteEntry
	r.OnEnter(func(e domain.RouteEntry) {
		if cur := r.Entry(); cur.ID != e.ID {
			t.Errorf("listener saw %s while %s is current", e.ID, cur.ID)
		}
		seen = append(seen, e)
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				r.Replace(domain.RouteHome)
			} else {
				r.Replace("/wallet")
			}
		}(i)
	}
	wg.Wait()

	if len(seen) != 20 {
		t.Fatalf("expected 20 deliveries, got %d", len(seen))
	}
	if last := seen[len(seen)-1]; last.ID != r.Entry().ID {
		t.Fatalf("last delivery %s is not the current entry %s", last.ID, r.Entry().ID)
	}
}
