package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/offerguard/internal/domain/attempts"
	"github.com/bryanwahyu/offerguard/internal/infra/db/dbutil"
)

type AttemptRepository struct{ db *sql.DB }

func NewAttemptRepository(db *sql.DB) *AttemptRepository { return &AttemptRepository{db: db} }

// Save insert/update Attempt record. The owner of an existing row never changes.
func (r *AttemptRepository) Save(ctx context.Context, a *attempts.Attempt) error {
	const q = `
INSERT INTO submission_attempts
(id, owner, mode, filename, status, error_kind, message,
 trust_score, risk_level, analysis_id, archive_url, duration_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,
        $8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 error_kind = EXCLUDED.error_kind,
 message = EXCLUDED.message,
 trust_score = EXCLUDED.trust_score,
 risk_level = EXCLUDED.risk_level,
 analysis_id = EXCLUDED.analysis_id,
 archive_url = EXCLUDED.archive_url,
 duration_ms = EXCLUDED.duration_ms;`

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
func (r *AttemptRepository) Latest(ctx context.Context, owner string, limit int) ([]*attempts.Attempt, error) {
	const q = `
SELECT id, owner, mode, filename, status, error_kind, message,
       trust_score, risk_level, analysis_id, archive_url, duration_ms, created_at
FROM submission_attempts
WHERE owner = $1
ORDER BY created_at DESC
LIMIT $2;`

	rows, err := r.db.QueryContext(ctx, q, owner, attempts.Limit(limit))
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
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, &a)
	}
	return out, rows.Err()
}
