// Package workflow holds the order lifecycle rules: every status or station
// change of an order is an Event reduced by Apply.
package workflow

import (
	"fmt"

	"github.com/autoservice-manager/workshop-api/models"
)

// EventKind names an event for logs and error details
type EventKind string

const (
	EventAssign              EventKind = "assign"
	EventUnassign            EventKind = "unassign"
	EventMarkWaitingForParts EventKind = "mark_waiting_for_parts"
	EventMarkCompleted       EventKind = "mark_completed"
	EventFinalize            EventKind = "finalize"
)

// Event is one of Assign, Unassign, MarkWaitingForParts, MarkCompleted, Finalize
type Event interface {
	Kind() EventKind
	event()
}

// Assign puts an order on a station
type Assign struct {
	Station int
}

// Unassign drags an order back to the waiting lane
type Unassign struct{}

// MarkWaitingForParts parks an order until parts arrive
type MarkWaitingForParts struct{}

// MarkCompleted finishes the repair
type MarkCompleted struct{}

// Finalize invoices a completed order
type Finalize struct{}

func (Assign) Kind() EventKind              { return EventAssign }
func (Unassign) Kind() EventKind            { return EventUnassign }
func (MarkWaitingForParts) Kind() EventKind { return EventMarkWaitingForParts }
func (MarkCompleted) Kind() EventKind       { return EventMarkCompleted }
func (Finalize) Kind() EventKind            { return EventFinalize }

func (Assign) event()              {}
func (Unassign) event()            {}
func (MarkWaitingForParts) event() {}
func (MarkCompleted) event()       {}
func (Finalize) event()            {}

// State is the part of an order the lifecycle rules look at
type State struct {
	Status  models.OrderStatus
	Station *int
}

// StateOf extracts the lifecycle state of an order
func StateOf(order *models.Order) State {
	return State{Status: order.Status, Station: order.WorkStationID}
}

// TransitionError reports an event that is not allowed from the current status
type TransitionError struct {
	From  models.OrderStatus
	Event EventKind
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot apply %s to an order in status %s", e.Event, e.From)
}

// Apply returns the state reached by applying ev to s. Any pair missing from
// the transition table yields a *TransitionError and s is returned unchanged.
func Apply(s State, ev Event) (State, error) {
	reject := func() (State, error) {
		return s, &TransitionError{From: s.Status, Event: ev.Kind()}
	}

	switch e := ev.(type) {
	case Assign:
		if !ValidStation(e.Station) {
			return reject()
		}
		if s.Status != models.StatusNew && s.Status != models.StatusWaitingForParts {
			return reject()
		}
		station := e.Station
		return State{Status: models.StatusInProgress, Station: &station}, nil

	case Unassign:
		if s.Status != models.StatusInProgress {
			return reject()
		}
		return State{Status: models.StatusNew}, nil

	case MarkWaitingForParts:
		if s.Status != models.StatusInProgress && s.Status != models.StatusNew {
			return reject()
		}
		return State{Status: models.StatusWaitingForParts}, nil

	case MarkCompleted:
		switch s.Status {
		case models.StatusInProgress, models.StatusNew, models.StatusWaitingForParts:
			return State{Status: models.StatusCompleted}, nil
		}
		return reject()

	case Finalize:
		if s.Status != models.StatusCompleted {
			return reject()
		}
		return State{Status: models.StatusInvoiced, Station: s.Station}, nil
	}

	return reject()
}
