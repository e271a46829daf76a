package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/msetiadi/leadintel/internal/application"
	domain "github.com/msetiadi/leadintel/internal/domain/analysis"
	"github.com/msetiadi/leadintel/internal/domain/profiles"
	"github.com/msetiadi/leadintel/internal/domain/reports"
)

const (
	quotaTimeout = 5 * time.Second
	modelTimeout = 90 * time.Second
)

// Service implements the analysis use-case: verify the principal, admit
// against quota, call the generative backend, validate the completion,
// then spend the quota unit and archive the report.
//
// Reports and Archive are optional; when nil the post-success archiving
// steps are skipped.
type Service struct {
	Client   domain.Client
	Profiles profiles.Repository
	Reports  reports.Repository
	Archive  reports.ArchiveStore
	Clock    application.Clock
}

// Model reports the active model identifier for the health probe.
func (s *Service) Model() string {
	return s.Client.Model()
}

// Analyze runs one analysis for the given principal.
//
// Quota is checked before the model is invoked, so an exhausted account
// never costs a model call, and spent only after the completion has been
// validated, so a failed or malformed completion is never charged.
func (s *Service) Analyze(ctx context.Context, principalID, text string) (*domain.Result, error) {
	if strings.TrimSpace(principalID) == "" {
		return nil, domain.ErrUnauthenticated
	}

	qctx, cancel := context.WithTimeout(ctx, quotaTimeout)
	defer cancel()
	prof, err := s.Profiles.Get(qctx, principalID)
	if err != nil {
		return nil, err
	}
	if !prof.CanAnalyze() {
		return nil, domain.ErrQuotaExceeded
	}

	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidInput
	}

	mctx, cancelModel := context.WithTimeout(ctx, modelTimeout)
	defer cancelModel()
	completion, err := s.Client.Generate(mctx, text)
	if err != nil {
		return nil, fmt.Errorf("model invocation failed: %w", err)
	}

	result, err := domain.ParseResult(completion)
	if err != nil {
		return nil, err
	}

	// Bookkeeping runs even if the caller has gone away: the model work is
	// done and must be accounted for.
	bctx, cancelBook := context.WithTimeout(context.WithoutCancel(ctx), quotaTimeout)
	defer cancelBook()

	consumed, err := s.Profiles.ConsumeUsage(bctx, principalID)
	if err != nil {
		// Under-charging is acceptable; failing a delivered answer is not.
		log.Printf("warning: usage increment failed for user=%s: %v", principalID, err)
	} else if !consumed {
		// A concurrent request spent the last unit between admission and here.
		return nil, domain.ErrQuotaExceeded
	}

	s.archive(bctx, prof.ID, text, result)

	return result, nil
}

// archive persists the report to the DB and object store, best-effort.
func (s *Service) archive(ctx context.Context, userID, text string, result *domain.Result) {
	if s.Reports == nil {
		return
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		log.Printf("warning: report marshal failed for user=%s: %v", userID, err)
		return
	}

	rep := &reports.Report{
		ID:        reports.ReportID(uuid.NewString()),
		UserID:    userID,
		InputText: excerpt(text, 2000),
		Result:    string(resultJSON),
		Model:     s.Client.Model(),
		CreatedAt: s.now(),
	}

	if s.Archive != nil {
		key := fmt.Sprintf("reports/%s/%s.json", userID, rep.ID)
		url, err := s.Archive.PutReport(ctx, key, resultJSON)
		if err != nil {
			log.Printf("warning: report archive upload failed for user=%s: %v", userID, err)
		} else {
			rep.ArchiveURL = url
		}
	}

	if err := s.Reports.Save(ctx, rep); err != nil {
		log.Printf("warning: report save failed for user=%s: %v", userID, err)
	}
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}

// excerpt caps stored input text so oversized submissions do not bloat rows.
func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
