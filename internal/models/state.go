package models

// Status is the lifecycle position of an orchestrator
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// LookupState is the snapshot an orchestrator publishes to the presentation
// layer. Data is nil unless Status is StatusSuccess; Error is empty unless
// Status is StatusError.
type LookupState[T any] struct {
	Status  Status `json:"status"`
	Loading bool   `json:"loading"`
	Data    *T     `json:"data"`
	Error   string `json:"error,omitempty"`
}
