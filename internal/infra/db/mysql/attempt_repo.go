package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/offerguard/internal/domain/attempts"
	"github.com/bryanwahyu/offerguard/internal/infra/db/dbutil"
)

type AttemptRepository struct {
	db *sql.DB
}

func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Save insert/update Attempt record. The owner of an existing row never changes.
func (r *AttemptRepository) Save(ctx context.Context, a *attempts.Attempt) error {
	const q = `
INSERT INTO submission_attempts
(id, owner, mode, filename, status, error_kind, message,
 trust_score, risk_level, analysis_id, archive_url, duration_ms, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status), error_kind=VALUES(error_kind), message=VALUES(message),
 trust_score=VALUES(trust_score), risk_level=VALUES(risk_level),
 analysis_id=VALUES(analysis_id), archive_url=VALUES(archive_url),
 duration_ms=VALUES(duration_ms);
`
	_, err := r.db.ExecContext(ctx, q,
		string(a.ID), a.Owner, dbutil.StringOrDash(a.Mode), a.Filename, dbutil.StringOrDash(string(a.Status)), a.ErrorKind, a.Message,
		dbutil.NullInt(a.TrustScore), a.RiskLevel, a.AnalysisID, a.ArchiveURL, a.DurationMS, dbutil.CreatedAt(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save attempt %s: %w", a.ID, err)
	}
	return nil
}

// Latest attempts of one owner, newest first
func (r *AttemptRepository) Latest(ctx context.Context, owner string, n int) ([]*attempts.Attempt, error) {
	const q = `
SELECT id, owner, mode, filename, status, error_kind, message,
       trust_score, risk_level, analysis_id, archive_url, duration_ms, created_at
FROM submission_attempts
WHERE owner = ?
ORDER BY created_at DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, owner, attempts.Limit(n))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*attempts.Attempt{}
	for rows.Next() {
		var (
			a     attempts.Attempt
			score sql.NullInt64
		)
		if err := rows.Scan(
			&a.ID, &a.Owner, &a.Mode, &a.Filename, &a.Status, &a.ErrorKind, &a.Message,
			&score, &a.RiskLevel, &a.AnalysisID, &a.ArchiveURL, &a.DurationMS, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.TrustScore = dbutil.IntPtr(score)
		out = append(out, &a)
	}
	return out, rows.Err()
}
