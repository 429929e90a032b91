package domain

import (
	"time"

	"github.com/aretw0/equaio/pkg/expr"
)

// StepEvent is emitted after an operation appended a history entry.
type StepEvent struct {
	Timestamp  time.Time       `json:"timestamp"`
	Op         string          `json:"op"`
	Label      string          `json:"label,omitempty"`
	Expression expr.Expression `json:"expression"`
	HistoryLen int             `json:"history_len"`
}

// FailureEvent is emitted when an operation was rejected.
type FailureEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Op        string    `json:"op"`
	Err       error     `json:"-"`
	Message   string    `json:"message"`
}

// LifecycleHooks defines callbacks for derivation observability. Nil hooks
// are skipped.
//
// Task operations never block, so the hooks take no context.
type LifecycleHooks struct {
	OnStep    func(*StepEvent)
	OnFailure func(*FailureEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStep: func(e *StepEvent) {
			if h.OnStep != nil {
				h.OnStep(e)
			}
			if other.OnStep != nil {
				other.OnStep(e)
			}
		},
		OnFailure: func(e *FailureEvent) {
			if h.OnFailure != nil {
				h.OnFailure(e)
			}
			if other.OnFailure != nil {
				other.OnFailure(e)
			}
		},
	}
}
