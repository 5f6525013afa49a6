package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/modulelist"
)

var course = model.Course{ID: 1, Name: "Biology"}

func TestWaitLoaded_RequestsRemainingPages(t *testing.T) {
	states := make(chan modulelist.Model, 4)

	loading := modulelist.New(course, 0)
	loading.IsLoading = true

	partial := modulelist.New(course, 0)
	partial.Modules = []model.Module{{ID: 1}}
	partial.Cursor = model.NextPageCursor("p2")

	done := partial
	done.Modules = []model.Module{{ID: 1}, {ID: 2}}
	done.Cursor = model.NextPageCursor("")

	states <- loading
	states <- partial
	states <- done

	var dispatched []modulelist.Event
	dispatch := func(ev modulelist.Event) bool {
		dispatched = append(dispatched, ev)
		return true
	}

	got, err := waitLoaded(context.Background(), states, true, dispatch)
	if err != nil {
		t.Fatalf("waitLoaded: %v", err)
	}
	if len(got.Modules) != 2 {
		t.Fatalf("modules = %d", len(got.Modules))
	}
	if len(dispatched) != 1 {
		t.Fatalf("dispatched = %#v", dispatched)
	}
}

func TestWaitLoaded_StopsAtFirstPageWithoutAll(t *testing.T) {
	states := make(chan modulelist.Model, 1)
	partial := modulelist.New(course, 0)
	partial.Cursor = model.NextPageCursor("p2")
	states <- partial

	got, err := waitLoaded(context.Background(), states, false, func(modulelist.Event) bool {
		t.Fatal("no page should be requested")
		return false
	})
	if err != nil || got.Cursor.NextURL != "p2" {
		t.Fatalf("got %+v, %v", got.Cursor, err)
	}
}

func TestWaitLoaded_ReportsLoadError(t *testing.T) {
	states := make(chan modulelist.Model, 1)
	failed := modulelist.New(course, 0)
	failed.LoadErr = &modulelist.LoadError{Message: "offline"}
	states <- failed

	if _, err := waitLoaded(context.Background(), states, true, nil); err == nil || !strings.Contains(err.Error(), "offline") {
		t.Fatalf("err = %v", err)
	}
}

func TestWaitLoaded_ClosedChannel(t *testing.T) {
	states := make(chan modulelist.Model)
	close(states)

	if _, err := waitLoaded(context.Background(), states, false, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestPrintRows(t *testing.T) {
	rows := []modulelist.Row{
		{Kind: modulelist.RowModule, ModuleID: 1, Module: model.Module{ID: 1, Name: "Week 1", ItemCount: 1, Published: true}},
		{Kind: modulelist.RowItem, ModuleID: 1, Item: model.ModuleItem{ID: 10, Title: "Quiz 1", Type: model.ItemTypeQuiz}},
		{Kind: modulelist.RowModule, ModuleID: 2, Module: model.Module{ID: 2, Name: "Week 2"}, Collapsed: true},
		{Kind: modulelist.RowLoading},
	}

	var buf bytes.Buffer
	printRows(&buf, rows)

	out := buf.String()
	for _, want := range []string{"Week 1", "Quiz 1", "Quiz", "Week 2 (collapsed)", "--all"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCourseOptions(t *testing.T) {
	if _, err := (&CourseOptions{}).Course(); err == nil {
		t.Fatal("expected error for missing course id")
	}
	c, err := (&CourseOptions{CourseID: 42}).Course()
	if err != nil || c.Name != "course_42" {
		t.Fatalf("course = %+v, %v", c, err)
	}
}
