/* gate.go
 * Contains the point eligibility gate. A gate lives for one application session: it starts IDLE, moves to
 * CALCULATING on an explicit calculate request and ends in SUCCESS or FAILURE. Closing the session resets it
 * Authors: Gamers Bot contributors
 */

package logic

import (
	"context"
	"errors"
	"sync"

	"gamers-bot/api/shared"
)

// GateState is the state of a point eligibility gate
type GateState string

const (
	GateIdle        GateState = "idle"
	GateCalculating GateState = "calculating"
	GateSuccess     GateState = "success"
	GateFailure     GateState = "failure"
)

// GateEvent drives a gate transition
type GateEvent int

const (
	EventCalculate GateEvent = iota
	EventSucceeded
	EventFailed
	EventClose
)

const (
	LabelCalculate     = "Calculate My Points"
	LabelNotConfigured = "Point Table Not Configured"

	// FailureFallback is shown when a calculation fails without a server message
	FailureFallback = "Please make sure your Valorant account is linked."
	// RemediationPath is the account settings page a failed calculation links to
	RemediationPath = "/my"
)

var (
	ErrNoScoreTable     = errors.New("point table not configured for this contest")
	ErrGateBusy         = errors.New("points were already requested for this application")
	ErrStaleCalculation = errors.New("application was closed before the calculation finished")
)

// Transition returns the state after event, and false if event is not allowed in state.
// Only IDLE can start a calculation, and a finished calculation can only be left by closing
func Transition(state GateState, event GateEvent) (GateState, bool) {
	if event == EventClose {
		return GateIdle, true
	}
	switch state {
	case GateIdle:
		if event == EventCalculate {
			return GateCalculating, true
		}
	case GateCalculating:
		switch event {
		case EventSucceeded:
			return GateSuccess, true
		case EventFailed:
			return GateFailure, true
		}
	}
	return state, false
}

// GateSnapshot is a copy of a gate's visible state
type GateSnapshot struct {
	State        GateState
	Result       *shared.PointCalculation
	Failure      string
	Remediation  string
	CanCalculate bool
	CanConfirm   bool
	Label        string
}

// PointGate is safe for concurrent use. A calculation that completes after Close is dropped
type PointGate struct {
	mu           sync.Mutex
	scoreTableID *int64
	state        GateState
	result       *shared.PointCalculation
	failure      string
	generation   uint64
}

// NewPointGate creates a gate in IDLE for a contest with the given score table, nil if it has none
func NewPointGate(scoreTableID *int64) *PointGate {
	var id *int64
	if scoreTableID != nil {
		v := *scoreTableID
		id = &v
	}
	return &PointGate{scoreTableID: id, state: GateIdle}
}

// HasScoreTable reports whether the contest defines a score table
func (g *PointGate) HasScoreTable() bool {
	return g.scoreTableID != nil
}

func (g *PointGate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Begin moves IDLE to CALCULATING and returns a ticket for Finish along with the score table to calculate against
func (g *PointGate) Begin() (uint64, int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.scoreTableID == nil {
		return 0, 0, ErrNoScoreTable
	}
	next, ok := Transition(g.state, EventCalculate)
	if !ok {
		return 0, 0, ErrGateBusy
	}
	g.state = next
	return g.generation, *g.scoreTableID, nil
}

// Finish records the outcome of the calculation started with ticket. Outcomes of a closed session are dropped and
// ErrStaleCalculation is returned
func (g *PointGate) Finish(ticket uint64, result shared.PointCalculation, failure error, message string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ticket != g.generation {
		return ErrStaleCalculation
	}
	event := EventSucceeded
	if failure != nil {
		event = EventFailed
	}
	next, ok := Transition(g.state, event)
	if !ok {
		return ErrStaleCalculation
	}

	g.state = next
	if failure != nil {
		g.result = nil
		g.failure = message
		if g.failure == "" {
			g.failure = FailureFallback
		}
		return nil
	}
	r := result
	g.result = &r
	g.failure = ""
	return nil
}

// Calculate runs one calculation through the gate. fn is called at most once and only when the gate allows it
func (g *PointGate) Calculate(ctx context.Context, fn func(ctx context.Context, scoreTableID int64) (shared.PointCalculation, error), message func(error) string) (GateSnapshot, error) {
	ticket, tableID, err := g.Begin()
	if err != nil {
		return g.Snapshot(), err
	}

	result, callErr := fn(ctx, tableID)
	text := ""
	if callErr != nil && message != nil {
		text = message(callErr)
	}
	if err := g.Finish(ticket, result, callErr, text); err != nil {
		return g.Snapshot(), err
	}
	return g.Snapshot(), callErr
}

// Close resets the gate to IDLE and forgets any result
func (g *PointGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state, _ = Transition(g.state, EventClose)
	g.result = nil
	g.failure = ""
	g.generation++
}

// CanConfirm reports whether the apply confirmation is enabled. A contest without a score table needs no
// calculation, one with a table needs SUCCESS
func (g *PointGate) CanConfirm() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canConfirmLocked()
}

func (g *PointGate) canConfirmLocked() bool {
	if g.scoreTableID == nil {
		return true
	}
	return g.state == GateSuccess
}

func (g *PointGate) Snapshot() GateSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := GateSnapshot{
		State:        g.state,
		Failure:      g.failure,
		CanCalculate: g.scoreTableID != nil && g.state == GateIdle,
		CanConfirm:   g.canConfirmLocked(),
		Label:        LabelCalculate,
	}
	if g.scoreTableID == nil {
		snap.Label = LabelNotConfigured
	}
	if g.result != nil {
		r := *g.result
		snap.Result = &r
	}
	if g.state == GateFailure {
		snap.Remediation = RemediationPath
	}
	return snap
}
