package profiles

import "time"

// Role gates access to administrative operations.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the per-principal quota record.
type Profile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	UsageCount int       `json:"usage_count"`
	UsageLimit int       `json:"usage_limit"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// CanAnalyze reports whether the profile has quota left for one more analysis.
func (p *Profile) CanAnalyze() bool {
	return p.UsageCount < p.UsageLimit
}

// IsAdmin reports whether the profile may use administrative operations.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
