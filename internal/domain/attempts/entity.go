package attempts

import "time"

// AttemptID identifier type
type AttemptID string

// Status of a finished attempt
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Attempt is one submission outcome. It records what happened, not the
// assessment itself: results are always re-fetched from the service.
type Attempt struct {
	ID         AttemptID `json:"id"`
	Owner      string    `json:"-"`
	Mode       string    `json:"mode"`
	Filename   string    `json:"filename,omitempty"`
	Status     Status    `json:"status"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Message    string    `json:"message,omitempty"`
	TrustScore *int      `json:"trust_score,omitempty"`
	RiskLevel  string    `json:"risk_level,omitempty"`
	AnalysisID string    `json:"analysis_id,omitempty"`
	ArchiveURL string    `json:"archive_url,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
