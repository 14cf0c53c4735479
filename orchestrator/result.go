package orchestrator

import (
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/resource"
)

type Status string

const (
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
)

type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionDeleted   Action = "deleted"
	ActionAllocated Action = "allocated"
	ActionListed    Action = "listed"
)

// Result is the terminal outcome of one reconciliation. Every operation
// returns one; failures are carried in Failure rather than returned as
// errors.
type Result struct {
	Status  Status         `json:"status" yaml:"status"`
	Changed bool           `json:"changed" yaml:"changed"`
	Action  Action         `json:"action,omitempty" yaml:"action,omitempty"`
	Payload resource.Value `json:"payload,omitempty" yaml:"payload,omitempty"`
	Failure *Failure       `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Failure is the structured diagnostic of a failed reconciliation.
type Failure struct {
	Category   faults.ErrorCategory `json:"category" yaml:"category"`
	StatusCode int                  `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	Message    string               `json:"message" yaml:"message"`
	Response   resource.Value       `json:"response,omitempty" yaml:"response,omitempty"`
	Input      resource.Params      `json:"input,omitempty" yaml:"input,omitempty"`

	err error
}

func Applied(changed bool, action Action, payload resource.Value) Result {
	return Result{Status: StatusApplied, Changed: changed, Action: action, Payload: payload}
}

// Failed converts err into a failed result echoing input.
func Failed(err error, input resource.Params) Result {
	if err == nil {
		err = faults.NewTypedError(faults.InternalError, "reconciliation failed without an error", nil)
	}
	return Result{
		Status: StatusFailed,
		Failure: &Failure{
			Category:   faults.CategoryOf(err),
			StatusCode: faults.StatusCode(err),
			Message:    err.Error(),
			Response:   faults.Body(err),
			Input:      input.Clone(),
			err:        err,
		},
	}
}

func (r Result) OK() bool {
	return r.Status == StatusApplied
}

// Err returns the error behind a failed result, nil otherwise.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure.err
}

// outcome is the metric label of a result.
func (r Result) outcome() string {
	switch {
	case !r.OK():
		return "failed"
	case r.Changed:
		return "applied"
	default:
		return "unchanged"
	}
}
