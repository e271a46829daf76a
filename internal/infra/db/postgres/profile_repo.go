package postgres

import (
    "context"
    "database/sql"
    "errors"

    domain "github.com/msetiadi/leadintel/internal/domain/profiles"
)

type ProfileRepository struct {
    db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
    return &ProfileRepository{db: db}
}

// Get loads the quota record for one principal
func (r *ProfileRepository) Get(ctx context.Context, id string) (*domain.Profile, error) {
    const q = `
SELECT id, email, usage_count, usage_limit, role, created_at
FROM profiles
WHERE id=$1;
`
    var p domain.Profile
    var role string
    err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Email, &p.UsageCount, &p.UsageLimit, &role, &p.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, domain.ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    p.Role = domain.Role(role)
    return &p, nil
}

// ConsumeUsage spends one quota unit as a single conditional write
func (r *ProfileRepository) ConsumeUsage(ctx context.Context, id string) (bool, error) {
    const q = `
UPDATE profiles
SET usage_count = usage_count + 1
WHERE id=$1 AND usage_count < usage_limit;
`
    res, err := r.db.ExecContext(ctx, q, id)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// ResetUsage sets the usage counter back to zero (admin only)
func (r *ProfileRepository) ResetUsage(ctx context.Context, id string) error {
    const q = `UPDATE profiles SET usage_count = 0 WHERE id=$1;`
    _, err := r.db.ExecContext(ctx, q, id)
    return err
}

// SetLimit replaces the usage limit (admin only)
func (r *ProfileRepository) SetLimit(ctx context.Context, id string, limit int) error {
    const q = `UPDATE profiles SET usage_limit = $1 WHERE id=$2;`
    _, err := r.db.ExecContext(ctx, q, limit, id)
    return err
}

// List returns a page of profiles ordered by created_at desc
func (r *ProfileRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Profile, error) {
    if page <= 0 {
        page = 1
    }
    if pageSize <= 0 {
        pageSize = 20
    }
    offset := (page - 1) * pageSize

    const q = `
SELECT id, email, usage_count, usage_limit, role, created_at
FROM profiles
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2;
`
    rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*domain.Profile
    for rows.Next() {
        var p domain.Profile
        var role string
        if err := rows.Scan(&p.ID, &p.Email, &p.UsageCount, &p.UsageLimit, &role, &p.CreatedAt); err != nil {
            return nil, err
        }
        p.Role = domain.Role(role)
        out = append(out, &p)
    }
    return out, rows.Err()
}
