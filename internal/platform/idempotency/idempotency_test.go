package idempotency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestReserve_NewKey(t *testing.T) {
	g := NewGuard[string]()

	res := g.Reserve("k1")
	if !res.IsNew {
		t.Fatal("expected first reservation to be new")
	}
}

func TestReserve_CommittedKeyReturnsRecord(t *testing.T) {
	g := NewGuard[string]()

	g.Reserve("k1")
	g.Commit("k1", "record-1")

	res := g.Reserve("k1")
	if res.IsNew {
		t.Fatal("expected replayed reservation to not be new")
	}
	if res.Existing != "record-1" {
		t.Errorf("expected record-1, got %q", res.Existing)
	}
}

func TestReserve_BlocksUntilCommit(t *testing.T) {
	g := NewGuard[string]()

	res := g.Reserve("k1")
	if !res.IsNew {
		t.Fatal("expected new reservation")
	}

	got := make(chan Reservation[string], 1)
	go func() {
		got <- g.Reserve("k1")
	}()

	select {
	case <-got:
		t.Fatal("racing reserve returned before commit")
	case <-time.After(50 * time.Millisecond):
	}

	g.Commit("k1", "winner")

	select {
	case res := <-got:
		if res.IsNew {
			t.Error("racing reservation must not be new")
		}
		if res.Existing != "winner" {
			t.Errorf("expected winner, got %q", res.Existing)
		}
	case <-time.After(time.Second):
		t.Fatal("racing reserve did not unblock after commit")
	}
}

func TestReserve_ConcurrentSameKeyOneWinner(t *testing.T) {
	g := NewGuard[int]()

	const n = 50
	var newCount int64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			res := g.Reserve("shared")
			if res.IsNew {
				atomic.AddInt64(&newCount, 1)
				g.Commit("shared", 42)
				return
			}
			if res.Existing != 42 {
				t.Errorf("expected committed record 42, got %d", res.Existing)
			}
		}()
	}
	wg.Wait()

	if newCount != 1 {
		t.Errorf("expected exactly one new reservation, got %d", newCount)
	}
	if g.Len() != 1 {
		t.Errorf("expected one tracked key, got %d", g.Len())
	}
}

func TestCommit_UnreservedKeyPanics(t *testing.T) {
	g := NewGuard[string]()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on commit of unreserved key")
		}
	}()
	g.Commit("never-reserved", "oops")
}

func TestRelease_AllowsRetry(t *testing.T) {
	g := NewGuard[string]()

	res := g.Reserve("k1")
	if !res.IsNew {
		t.Fatal("expected new reservation")
	}
	g.Release("k1")

	res = g.Reserve("k1")
	if !res.IsNew {
		t.Fatal("expected reservation to be claimable again after release")
	}
}

func TestRelease_UnblocksWaiter(t *testing.T) {
	g := NewGuard[string]()
	g.Reserve("k1")

	got := make(chan Reservation[string], 1)
	go func() {
		got <- g.Reserve("k1")
	}()

	time.Sleep(20 * time.Millisecond)
	g.Release("k1")

	select {
	case res := <-got:
		if !res.IsNew {
			t.Error("waiter should win the key after release")
		}
	case <-time.After(time.Second):
		t.Fatal("waiter did not unblock after release")
	}
}
