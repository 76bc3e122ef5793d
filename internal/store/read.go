package store

import (
	"context"
	"fmt"

	"github.com/quiltsoft/stitch/internal/value"
)

// StoredEntity is one entity row read back from a snapshot.
type StoredEntity struct {
	Kind        string
	ID          string
	Locale      string
	ContentType string
	Fields      value.Object
	Seq         int
}

// ListRuns returns all snapshot runs, newest first.
// UUIDv7 tokens sort by creation time, so token order is ingestion order.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, source, created_at, total, entry_count, asset_count, unresolved
		FROM runs
		ORDER BY token COLLATE BINARY DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Token, &r.Source, &r.CreatedAt, &r.Total, &r.EntryCount, &r.AssetCount, &r.Unresolved); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	if runs == nil {
		runs = []Run{}
	}
	return runs, nil
}

// ReadRun returns a single run by token.
func (s *Store) ReadRun(ctx context.Context, token string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT token, source, created_at, total, entry_count, asset_count, unresolved
		FROM runs
		WHERE token = ?
	`, token).Scan(&r.Token, &r.Source, &r.CreatedAt, &r.Total, &r.EntryCount, &r.AssetCount, &r.Unresolved)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", token, err)
	}
	return r, nil
}

// ReadEntities returns a run's entities in decode order.
// Ordering is deterministic: ORDER BY seq, then the composite identity
// with binary collation as tiebreaker.
func (s *Store) ReadEntities(ctx context.Context, token string) ([]StoredEntity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, id, locale, content_type, fields, seq
		FROM entities
		WHERE run_token = ?
		ORDER BY seq ASC, kind COLLATE BINARY ASC, id COLLATE BINARY ASC, locale COLLATE BINARY ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var entities []StoredEntity
	for rows.Next() {
		var e StoredEntity
		var fields string
		if err := rows.Scan(&e.Kind, &e.ID, &e.Locale, &e.ContentType, &fields, &e.Seq); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		e.Fields, err = unmarshalFields(fields)
		if err != nil {
			return nil, fmt.Errorf("entity %s_%s: %w", e.Kind, e.ID, err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	if entities == nil {
		entities = []StoredEntity{}
	}
	return entities, nil
}
