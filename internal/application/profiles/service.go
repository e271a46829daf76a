package profiles

import (
	"context"
	"fmt"

	domain "github.com/msetiadi/leadintel/internal/domain/profiles"
	"github.com/msetiadi/leadintel/internal/domain/reports"
)

// Service implements the admin console use-cases over the profile store.
type Service struct {
	Repo    domain.Repository
	Reports reports.Repository
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Profile, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, page, pageSize int) ([]*domain.Profile, error) {
	return s.Repo.List(ctx, page, pageSize)
}

// ResetUsage sets a user's usage counter back to zero.
func (s *Service) ResetUsage(ctx context.Context, id string) error {
	if _, err := s.Repo.Get(ctx, id); err != nil {
		return err
	}
	return s.Repo.ResetUsage(ctx, id)
}

// SetLimit replaces a user's usage limit. Limits must stay positive.
func (s *Service) SetLimit(ctx context.Context, id string, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("usage limit must be positive, got %d", limit)
	}
	if _, err := s.Repo.Get(ctx, id); err != nil {
		return err
	}
	return s.Repo.SetLimit(ctx, id, limit)
}

// IsAdmin reports whether the principal's profile carries the admin role.
func (s *Service) IsAdmin(ctx context.Context, id string) (bool, error) {
	p, err := s.Repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return p.IsAdmin(), nil
}

// ListReports returns a page of archived analysis reports.
func (s *Service) ListReports(ctx context.Context, page, pageSize int) ([]*reports.Report, error) {
	if s.Reports == nil {
		return nil, nil
	}
	return s.Reports.Paginate(ctx, page, pageSize)
}
