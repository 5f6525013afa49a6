package store_test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/store"
	"github.com/nhle/modulesync/tests/testutil"
)

func TestCollapseKey(t *testing.T) {
	got := store.CollapseKey(model.Course{ID: 42})
	if got != "collapsed_modules_course_42" {
		t.Fatalf("CollapseKey = %q", got)
	}
}

func TestGetCollapsedIDs_AbsentEntryIsEmpty(t *testing.T) {
	s := testutil.NewTestStore(t)

	ids, err := s.GetCollapsedIDs(context.Background(), model.Course{ID: 1})
	if err != nil {
		t.Fatalf("GetCollapsedIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty set, got %v", ids.Sorted())
	}
}

func TestSetCollapsedIDs_RoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	course := model.Course{ID: 7}

	if err := s.SetCollapsedIDs(ctx, course, model.NewIDSet(30, 10, 20)); err != nil {
		t.Fatalf("SetCollapsedIDs: %v", err)
	}

	ids, err := s.GetCollapsedIDs(ctx, course)
	if err != nil {
		t.Fatalf("GetCollapsedIDs: %v", err)
	}
	if want := []int64{10, 20, 30}; !reflect.DeepEqual(ids.Sorted(), want) {
		t.Fatalf("ids = %v, want %v", ids.Sorted(), want)
	}

	// Overwrite replaces rather than merges.
	if err := s.SetCollapsedIDs(ctx, course, model.NewIDSet(5)); err != nil {
		t.Fatalf("SetCollapsedIDs: %v", err)
	}
	ids, err = s.GetCollapsedIDs(ctx, course)
	if err != nil {
		t.Fatalf("GetCollapsedIDs: %v", err)
	}
	if want := []int64{5}; !reflect.DeepEqual(ids.Sorted(), want) {
		t.Fatalf("ids = %v, want %v", ids.Sorted(), want)
	}
}

func TestSetCollapsedIDs_EmptySetClearsEntry(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	course := model.Course{ID: 7}

	if err := s.SetCollapsedIDs(ctx, course, model.NewIDSet(1, 2)); err != nil {
		t.Fatalf("SetCollapsedIDs: %v", err)
	}
	if err := s.SetCollapsedIDs(ctx, course, model.IDSet{}); err != nil {
		t.Fatalf("SetCollapsedIDs(empty): %v", err)
	}

	ids, err := s.GetCollapsedIDs(ctx, course)
	if err != nil {
		t.Fatalf("GetCollapsedIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty set, got %v", ids.Sorted())
	}
}

func TestMarkCollapsed(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	course := model.Course{ID: 3}

	steps := []struct {
		moduleID  int64
		collapsed bool
		want      []int64
	}{
		{moduleID: 2, collapsed: true, want: []int64{2}},
		{moduleID: 1, collapsed: true, want: []int64{1, 2}},
		{moduleID: 1, collapsed: true, want: []int64{1, 2}},
		{moduleID: 2, collapsed: false, want: []int64{1}},
		{moduleID: 9, collapsed: false, want: []int64{1}},
		{moduleID: 1, collapsed: false, want: []int64{}},
	}

	for i, step := range steps {
		if err := s.MarkCollapsed(ctx, course, step.moduleID, step.collapsed); err != nil {
			t.Fatalf("step %d: MarkCollapsed: %v", i, err)
		}
		ids, err := s.GetCollapsedIDs(ctx, course)
		if err != nil {
			t.Fatalf("step %d: GetCollapsedIDs: %v", i, err)
		}
		if !reflect.DeepEqual(ids.Sorted(), step.want) {
			t.Fatalf("step %d: ids = %v, want %v", i, ids.Sorted(), step.want)
		}
	}
}

func TestCollapseState_IsPerCourse(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if err := s.MarkCollapsed(ctx, model.Course{ID: 1}, 100, true); err != nil {
		t.Fatalf("MarkCollapsed: %v", err)
	}

	ids, err := s.GetCollapsedIDs(ctx, model.Course{ID: 2})
	if err != nil {
		t.Fatalf("GetCollapsedIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("course 2 should have nothing collapsed, got %v", ids.Sorted())
	}
}

func TestMarkCollapsed_ConcurrentWritersOnFile(t *testing.T) {
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	course := model.Course{ID: 1}

	const writers = 20
	var g errgroup.Group
	for i := int64(1); i <= writers; i++ {
		id := i
		g.Go(func() error {
			return s.MarkCollapsed(ctx, course, id, true)
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("MarkCollapsed: %v", err)
	}

	ids, err := s.GetCollapsedIDs(ctx, course)
	if err != nil {
		t.Fatalf("GetCollapsedIDs: %v", err)
	}
	if len(ids) != writers {
		t.Fatalf("persisted %d of %d ids: %v", len(ids), writers, ids.Sorted())
	}
}
