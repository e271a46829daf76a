package mysql

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

// Save inserts an archived report record
func (r *ReportRepository) Save(ctx context.Context, rep *domain.Report) error {
    const q = `
INSERT INTO analysis_reports
  (id, user_id, input_text, result_json, model, archive_url, created_at)
VALUES (?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  user_id=VALUES(user_id), input_text=VALUES(input_text), result_json=VALUES(result_json),
  model=VALUES(model), archive_url=VALUES(archive_url);
`
    // Ensure non-nullable fields have safe defaults
    user := stringOrDash(rep.UserID)
    result := rep.Result
    if strings.TrimSpace(result) == "" {
        // result_json column requires valid JSON; use empty object
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
LIMIT ? OFFSET ?;
`
    rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*domain.Report
    for rows.Next() {
        rep, err := scanReport(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, rep)
    }
    return out, rows.Err()
}

// LatestByUser returns the most recent report for one principal
func (r *ReportRepository) LatestByUser(ctx context.Context, userID string) (*domain.Report, error) {
    const q = `
SELECT id, user_id, input_text, result_json, model, archive_url, created_at
FROM analysis_reports
WHERE user_id=?
ORDER BY created_at DESC, id DESC
LIMIT 1;
`
    rep, err := scanReport(r.db.QueryRowContext(ctx, q, userID))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return rep, nil
}

type rowScanner interface {
    Scan(dest ...any) error
}

func scanReport(rs rowScanner) (*domain.Report, error) {
    var rep domain.Report
    var created time.Time
    if err := rs.Scan(&rep.ID, &rep.UserID, &rep.InputText, &rep.Result, &rep.Model, &rep.ArchiveURL, &created); err != nil {
        return nil, err
    }
    rep.CreatedAt = created
    return &rep, nil
}
