package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/modulesync/internal/model"
)

// idDelimiter joins module ids in the persisted value. It never occurs in
// a numeric id.
const idDelimiter = "|"

var _ CollapseStore = (*SQLiteStore)(nil)

// GetCollapsedIDs returns the collapsed module ids for the course.
func (s *SQLiteStore) GetCollapsedIDs(ctx context.Context, course model.Course) (model.IDSet, error) {
	return getCollapsedIDs(ctx, s.db, CollapseKey(course))
}

// SetCollapsedIDs replaces the collapsed module ids for the course.
// An empty set removes the entry.
func (s *SQLiteStore) SetCollapsedIDs(ctx context.Context, course model.Course, ids model.IDSet) error {
	return setCollapsedIDs(ctx, s.db, CollapseKey(course), ids)
}

// MarkCollapsed adds moduleID to, or removes it from, the course's
// collapsed set in a single transaction.
func (s *SQLiteStore) MarkCollapsed(
	ctx context.Context,
	course model.Course,
	moduleID int64,
	collapsed bool,
) error {
	key := CollapseKey(course)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ids, err := getCollapsedIDs(ctx, tx, key)
	if err != nil {
		return err
	}

	if collapsed {
		ids = ids.With(moduleID)
	} else {
		ids = ids.Without(moduleID)
	}

	if err := setCollapsedIDs(ctx, tx, key, ids); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing collapse state for %s: %w", key, err)
	}

	s.log.Debugw("marked module", "key", key, "module_id", moduleID, "collapsed", collapsed)
	return nil
}

func getCollapsedIDs(ctx context.Context, q sqlx.QueryerContext, key string) (model.IDSet, error) {
	var raw string
	err := sqlx.GetContext(ctx, q, &raw,
		"SELECT module_ids FROM collapsed_modules WHERE context_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return model.IDSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading collapse state for %s: %w", key, err)
	}
	return decodeIDs(raw), nil
}

func setCollapsedIDs(ctx context.Context, e sqlx.ExecerContext, key string, ids model.IDSet) error {
	if len(ids) == 0 {
		if _, err := e.ExecContext(ctx,
			"DELETE FROM collapsed_modules WHERE context_key = ?", key); err != nil {
			return fmt.Errorf("clearing collapse state for %s: %w", key, err)
		}
		return nil
	}

	const query = `
		INSERT INTO collapsed_modules (context_key, module_ids, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(context_key) DO UPDATE SET
			module_ids = excluded.module_ids,
			updated_at = excluded.updated_at`

	if _, err := e.ExecContext(ctx, query, key, encodeIDs(ids)); err != nil {
		return fmt.Errorf("writing collapse state for %s: %w", key, err)
	}
	return nil
}

// encodeIDs joins the ids in ascending order so equal sets persist equally.
func encodeIDs(ids model.IDSet) string {
	sorted := ids.Sorted()
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, idDelimiter)
}

// decodeIDs parses a persisted value, skipping fragments that are not ids.
func decodeIDs(raw string) model.IDSet {
	ids := model.IDSet{}
	for _, part := range strings.Split(raw, idDelimiter) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids[id] = struct{}{}
	}
	return ids
}
