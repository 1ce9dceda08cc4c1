package jobs

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// EnqueueRequest describes one subtitle translation to run. DedupeKey
// is normally the planned output path so the same file is never
// translated twice concurrently.
type EnqueueRequest struct {
	Source    string
	DedupeKey string
	Payload   JobPayload
}

type JobPayload struct {
	InputPath   string `json:"input_path"`
	OutputPath  string `json:"output_path"`
	TargetCode  string `json:"target_code"`
	Title       string `json:"title,omitempty"`
	Year        int    `json:"year,omitempty"`
	IsSeries    bool   `json:"is_series,omitempty"`
	Description string `json:"description,omitempty"`
}

type TranslationJob struct {
	ID        string     `json:"id"`
	Source    string     `json:"source"`
	DedupeKey string     `json:"dedupe_key"`
	Payload   JobPayload `json:"payload"`
	Status    Status     `json:"status"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
