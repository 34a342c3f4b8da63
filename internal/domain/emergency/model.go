package emergency

import (
	"fmt"
	"time"
)

// Status is the emergency case lifecycle state. Transitions are strictly
// forward along raised -> triaged -> dispatched -> closed; no edge skips
// or reverses.
type Status string

const (
	StatusRaised     Status = "raised"
	StatusTriaged    Status = "triaged"
	StatusDispatched Status = "dispatched"
	StatusClosed     Status = "closed"
)

// Edge names one forward transition of the case state machine.
type Edge string

const (
	EdgeTriage   Edge = "triage"
	EdgeDispatch Edge = "dispatch"
	EdgeClose    Edge = "close"
)

// transitions maps each edge to its required source state and the state it
// advances to.
var transitions = map[Edge]struct {
	from Status
	to   Status
}{
	EdgeTriage:   {from: StatusRaised, to: StatusTriaged},
	EdgeDispatch: {from: StatusTriaged, to: StatusDispatched},
	EdgeClose:    {from: StatusDispatched, to: StatusClosed},
}

// ValidEdge reports whether e names a known transition.
func ValidEdge(e Edge) bool {
	_, ok := transitions[e]
	return ok
}

// IllegalTransitionError reports an edge whose source state did not match
// the case's current state. The record is left unchanged.
type IllegalTransitionError struct {
	Edge    Edge
	Current Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: edge %q not applicable from state %q", e.Edge, e.Current)
}

// Case is a raised emergency awaiting triage, dispatch, and closure.
type Case struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId"`
	HospitalID  string    `json:"hospitalId,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c Case) Key() string { return c.ID }

// CreateInput carries the caller-supplied case fields.
type CreateInput struct {
	PatientID   string `json:"patientId"`
	HospitalID  string `json:"hospitalId"`
	Description string `json:"description"`
}
