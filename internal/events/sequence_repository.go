package events

import (
	"context"
	"database/sql"
	"fmt"
)

// SequenceRepository tracks, per partition, the highest sequence published so far.
type SequenceRepository interface {
	// Advance records seq for partitionKey if it is above the recorded one.
	// It reports false when seq is not newer, i.e. the event is superseded.
	Advance(ctx context.Context, partitionKey string, seq int64) (bool, error)
}

type sequenceRepository struct {
	db *sql.DB
}

func NewSequenceRepository(db *sql.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Advance(ctx context.Context, partitionKey string, seq int64) (bool, error) {
	if partitionKey == "" {
		return false, fmt.Errorf("partition key is required")
	}

	const query = `
INSERT INTO event_sequences (partition_key, last_sequence, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (partition_key) DO UPDATE
SET last_sequence = EXCLUDED.last_sequence,
    updated_at = NOW()
WHERE event_sequences.last_sequence < EXCLUDED.last_sequence
`

	res, err := r.db.ExecContext(ctx, query, partitionKey, seq)
	if err != nil {
		return false, fmt.Errorf("advance sequence: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("advance sequence: %w", err)
	}
	return n > 0, nil
}
