package models

// InvocationResult status constants
const (
	StatusSubmitted = "submitted"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusTimedOut  = "timedout"
)

// ActivationResponse carries the outcome computed by the action.
type ActivationResponse struct {
	Success bool                   `json:"success"`
	Status  string                 `json:"status,omitempty"`
	Result  map[string]interface{} `json:"result,omitempty"`
}

// Activation is the ephemeral record of one invocation. Its lifetime on the
// platform is bounded by the retention window; the client never persists it.
type Activation struct {
	ActivationID string             `json:"activationId"`
	Namespace    string             `json:"namespace"`
	Name         string             `json:"name"`
	Start        int64              `json:"start,omitempty"`
	End          int64              `json:"end,omitempty"`
	Duration     int64              `json:"duration,omitempty"`
	Logs         []string           `json:"logs,omitempty"`
	Response     ActivationResponse `json:"response"`
}

// InvocationResult is the outcome of one Invoke call. ActivationID is set
// as soon as the platform assigned one; Activation is only present on
// completed and failed outcomes.
type InvocationResult struct {
	Status       string      `json:"status"`
	ActivationID string      `json:"activationId"`
	Activation   *Activation `json:"activation,omitempty"`
}
