package emergency

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/carebus/carebus/internal/platform/eventbus"
	"github.com/carebus/carebus/internal/platform/memstore"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []eventbus.Tag
}

func (p *capturePublisher) Publish(tag eventbus.Tag, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, tag)
}

func (p *capturePublisher) count(tag eventbus.Tag) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.events {
		if t == tag {
			n++
		}
	}
	return n
}

func newTestService() (*Service, *capturePublisher) {
	pub := &capturePublisher{}
	return NewService(NewCaseRepoMem(), pub), pub
}

func TestCreate(t *testing.T) {
	svc, pub := newTestService()

	c, err := svc.Create(context.Background(), CreateInput{PatientID: "p1", Description: "chest pain"}, "op-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusRaised {
		t.Errorf("expected raised, got %s", c.Status)
	}
	if c.ID == "" {
		t.Error("expected generated id")
	}
	if pub.count(eventbus.TagEmergencyCaseUpdated) != 1 {
		t.Errorf("expected 1 case event, got %d", pub.count(eventbus.TagEmergencyCaseUpdated))
	}
}

func TestCreate_PatientRequired(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), CreateInput{}, "op-1"); err == nil {
		t.Error("expected error for missing patient id")
	}
}

func TestAdvance_FullLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, _ := svc.Create(ctx, CreateInput{PatientID: "p1"}, "op-1")

	steps := []struct {
		edge Edge
		want Status
	}{
		{EdgeTriage, StatusTriaged},
		{EdgeDispatch, StatusDispatched},
		{EdgeClose, StatusClosed},
	}
	for _, step := range steps {
		updated, err := svc.Advance(ctx, c.ID, step.edge)
		if err != nil {
			t.Fatalf("%s: %v", step.edge, err)
		}
		if updated.Status != step.want {
			t.Fatalf("%s: expected %s, got %s", step.edge, step.want, updated.Status)
		}
		if updated.UpdatedAt.Before(c.UpdatedAt) {
			t.Errorf("%s: updated timestamp must advance", step.edge)
		}
	}
}

func TestAdvance_IllegalTransition(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()

	c, _ := svc.Create(ctx, CreateInput{PatientID: "p1"}, "op-1")
	before := pub.count(eventbus.TagEmergencyCaseUpdated)

	_, err := svc.Advance(ctx, c.ID, EdgeClose)
	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if illegal.Edge != EdgeClose || illegal.Current != StatusRaised {
		t.Errorf("error must identify edge and current state, got %+v", illegal)
	}

	unchanged, _ := svc.Get(ctx, c.ID)
	if unchanged.Status != StatusRaised {
		t.Errorf("failed transition must not mutate the record, got %s", unchanged.Status)
	}
	if pub.count(eventbus.TagEmergencyCaseUpdated) != before {
		t.Error("failed transition must not publish")
	}
}

func TestAdvance_NoReverseOrRepeat(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, _ := svc.Create(ctx, CreateInput{PatientID: "p1"}, "op-1")
	svc.Advance(ctx, c.ID, EdgeTriage)

	var illegal *IllegalTransitionError
	if _, err := svc.Advance(ctx, c.ID, EdgeTriage); !errors.As(err, &illegal) {
		t.Errorf("repeating an edge must fail, got %v", err)
	}
}

func TestAdvance_UnknownEdge(t *testing.T) {
	svc, _ := newTestService()
	c, _ := svc.Create(context.Background(), CreateInput{PatientID: "p1"}, "op-1")

	if _, err := svc.Advance(context.Background(), c.ID, "escalate"); err == nil {
		t.Error("expected error for unknown edge")
	}
}

func TestAdvance_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Advance(context.Background(), "missing", EdgeTriage)
	if !errors.Is(err, memstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestLifecycleFanOut drives a case through raise, triage, and dispatch with
// two subscribers on a real bus and checks that each observes all three
// snapshots in order.
func TestLifecycleFanOut(t *testing.T) {
	bus := eventbus.New()
	svc := NewService(NewCaseRepoMem(), bus)
	ctx := context.Background()

	subA := bus.Subscribe()
	subB := bus.Subscribe()
	defer bus.Unsubscribe(subA)
	defer bus.Unsubscribe(subB)

	c, err := svc.Create(ctx, CreateInput{PatientID: "p1"}, "op-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Advance(ctx, c.ID, EdgeTriage); err != nil {
		t.Fatalf("triage: %v", err)
	}
	if _, err := svc.Advance(ctx, c.ID, EdgeDispatch); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	want := []Status{StatusRaised, StatusTriaged, StatusDispatched}
	for name, sub := range map[string]*eventbus.Subscription{"A": subA, "B": subB} {
		for i, status := range want {
			select {
			case env := <-sub.C():
				if env.Event != eventbus.TagEmergencyCaseUpdated {
					t.Fatalf("subscriber %s event %d: unexpected tag %s", name, i, env.Event)
				}
				var snapshot Case
				if err := json.Unmarshal(env.Payload, &snapshot); err != nil {
					t.Fatalf("subscriber %s event %d: decode payload: %v", name, i, err)
				}
				if snapshot.Status != status {
					t.Errorf("subscriber %s event %d: expected %s, got %s", name, i, status, snapshot.Status)
				}
			case <-time.After(time.Second):
				t.Fatalf("subscriber %s: timed out waiting for event %d", name, i)
			}
		}
	}
}
