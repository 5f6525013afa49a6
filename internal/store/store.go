package store

import (
	"context"
	"fmt"

	"github.com/nhle/modulesync/internal/model"
)

// CollapseStore persists which modules of a course the user has collapsed.
// It holds no business logic.
type CollapseStore interface {
	// GetCollapsedIDs returns the collapsed module ids for the course.
	// An absent entry yields an empty set.
	GetCollapsedIDs(ctx context.Context, course model.Course) (model.IDSet, error)

	// SetCollapsedIDs replaces the collapsed module ids for the course.
	SetCollapsedIDs(ctx context.Context, course model.Course, ids model.IDSet) error

	// MarkCollapsed adds or removes a single module id.
	MarkCollapsed(ctx context.Context, course model.Course, moduleID int64, collapsed bool) error
}

// CollapseKey returns the persisted key for a course's collapse state.
func CollapseKey(course model.Course) string {
	return fmt.Sprintf("collapsed_modules_%s", course.ContextID())
}
