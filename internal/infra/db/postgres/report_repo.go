package postgres

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    domain "github.com/msetiadi/leadintel/internal/domain/reports"
)

type ReportRepository struct {
    db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
    return &ReportRepository{db: db}
}

// Save inserts or updates an archived report record
func (r *ReportRepository) Save(ctx context.Context, rep *domain.Report) error {
    const q = `
INSERT INTO analysis_reports
  (id, user_id, input_text, result_json, model, archive_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  user_id=EXCLUDED.user_id,
  input_text=EXCLUDED.input_text,
  result_json=EXCLUDED.result_json,
  model=EXCLUDED.model,
  archive_url=EXCLUDED.archive_url;
`
    user := rep.UserID
    if strings.TrimSpace(user) == "" {
        user = "-"
    }
    result := rep.Result
    if strings.TrimSpace(result) == "" {
        result = "{}"
    }
    createdAt := rep.CreatedAt
    if createdAt.IsZero() {
        createdAt = time.Now()
    }
    _, err := r.db.ExecContext(ctx, q, rep.ID, user, rep.InputText, result, rep.Model, rep.ArchiveURL, createdAt)
    return err
}

// Paginate returns a page of report records ordered by created_at desc
func (r *ReportRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Report, error) {
    if page <= 0 {
        page = 1
    }
    if pageSize <= 0 {
        pageSize = 20
    }
    offset := (page - 1) * pageSize

    const q = `
SELECT id, user_id, input_text, result_json, model, archive_url, created_at
FROM analysis_reports
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2;
`
    rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*domain.Report
    for rows.Next() {
        var rep domain.Report
        if err := rows.Scan(&rep.ID, &rep.UserID, &rep.InputText, &rep.Result, &rep.Model, &rep.ArchiveURL, &rep.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, &rep)
    }
    return out, rows.Err()
}

// LatestByUser returns the most recent report for one principal
func (r *ReportRepository) LatestByUser(ctx context.Context, userID string) (*domain.Report, error) {
    const q = `
SELECT id, user_id, input_text, result_json, model, archive_url, created_at
FROM analysis_reports
WHERE user_id=$1
ORDER BY created_at DESC, id DESC
LIMIT 1;
`
    var rep domain.Report
    err := r.db.QueryRowContext(ctx, q, userID).Scan(&rep.ID, &rep.UserID, &rep.InputText, &rep.Result, &rep.Model, &rep.ArchiveURL, &rep.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &rep, nil
}
