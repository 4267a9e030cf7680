package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/playersel/pkg/selector"
)

// RecordDispatch appends r to the dispatch log.
func (s *Store) RecordDispatch(ctx context.Context, r *DispatchRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if r.At.IsZero() {
		r.At = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO dispatch_log (expansion_id, invoker, command, dispatched_at) VALUES (?, ?, ?, ?)`,
		r.ExpansionID, r.Invoker, r.Command, r.At,
	)
	if err != nil {
		return fmt.Errorf("failed to record dispatch: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		r.ID = id
	}
	return nil
}

// History returns the most recent dispatches, newest first.
// A limit of zero or less returns everything.
func (s *Store) History(ctx context.Context, limit int) ([]DispatchRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expansion_id, invoker, command, dispatched_at
		FROM dispatch_log
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dispatch log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []DispatchRecord
	for rows.Next() {
		var r DispatchRecord
		if err := rows.Scan(&r.ID, &r.ExpansionID, &r.Invoker, &r.Command, &r.At); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// AuditSink returns a sink that records every dispatched command.
func (s *Store) AuditSink() selector.Sink {
	return selector.SinkFunc(func(ctx context.Context, inv selector.Invoker, command string) error {
		name := ""
		if inv != nil {
			name = inv.Name()
		}
		return s.RecordDispatch(ctx, &DispatchRecord{
			ExpansionID: selector.ExpansionID(ctx),
			Invoker:     name,
			Command:     command,
		})
	})
}
