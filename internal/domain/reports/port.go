package reports

import "context"

// Repository port for persisting and querying archived reports.
type Repository interface {
	Save(ctx context.Context, rep *Report) error
	Paginate(ctx context.Context, page, pageSize int) ([]*Report, error)
	LatestByUser(ctx context.Context, userID string) (*Report, error)
}

// ArchiveStore port for object storage of full report documents.
type ArchiveStore interface {
	PutReport(ctx context.Context, key string, body []byte) (string, error)
}
