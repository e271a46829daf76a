package reports

import "time"

// ReportID identifier type
type ReportID string

// Report is an archived analysis kept for auditing and admin review.
type Report struct {
	ID         ReportID  `json:"id"`
	UserID     string    `json:"user_id"`
	InputText  string    `json:"input_text"`
	Result     string    `json:"result"` // result JSON as returned to the caller
	Model      string    `json:"model"`
	ArchiveURL string    `json:"archive_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
