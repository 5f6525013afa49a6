package sync

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/modulesync/internal/editsource"
	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/modulelist"
	"github.com/nhle/modulesync/internal/source"
	"github.com/nhle/modulesync/tests/testutil"
)

const waitTimeout = 2 * time.Second

func startController(t *testing.T, gw *fakeGateway, bus *editsource.Bus, scrollTarget int64) *Controller {
	t.Helper()
	c := NewController(modulelist.New(testCourse, scrollTarget), NewRunner(gw, testutil.NewTestStore(t), nil), bus, nil)
	c.Start(context.Background())
	t.Cleanup(c.Stop)
	return c
}

// waitForState reads snapshots until one satisfies cond.
func waitForState(t *testing.T, c *Controller, cond func(modulelist.Model) bool) modulelist.Model {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case m, ok := <-c.States():
			if !ok {
				t.Fatal("state channel closed")
			}
			if cond(m) {
				return m
			}
		case <-deadline:
			t.Fatal("timed out waiting for state")
		}
	}
}

func waitForCalls(t *testing.T, gw *fakeGateway, n int) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for len(gw.Calls()) < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d gateway calls", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func loadedWith(n int) func(modulelist.Model) bool {
	return func(m modulelist.Model) bool {
		return !m.IsLoading && len(m.Modules) == n
	}
}

func quizWithContent(id, moduleID, contentID int64) model.ModuleItem {
	it := quiz(id, moduleID)
	it.ContentID = contentID
	return it
}

func TestController_FirstLoadReachesState(t *testing.T) {
	gw := newFakeGateway()
	gw.pages[""] = source.Page{
		Modules: []model.Module{{ID: 1, ItemCount: 1, Items: []model.ModuleItem{quiz(10, 1)}}},
		Next:    model.NextPageCursor(""),
	}

	c := startController(t, gw, nil, 0)
	m := waitForState(t, c, loadedWith(1))

	if m.LoadErr != nil || !m.Cursor.Exhausted() {
		t.Fatalf("unexpected model: %+v", m)
	}
}

func TestController_EditBusDeleteRemovesItem(t *testing.T) {
	gw := newFakeGateway()
	gw.pages[""] = source.Page{
		Modules: []model.Module{{
			ID:        1,
			ItemCount: 2,
			Items:     []model.ModuleItem{quizWithContent(10, 1, 500), quizWithContent(11, 1, 501)},
		}},
		Next: model.NextPageCursor(""),
	}

	bus := editsource.NewBus(0, nil)
	c := startController(t, gw, bus, 0)
	waitForState(t, c, loadedWith(1))

	bus.PublishDeleted(model.ContentQuiz, 500)

	m := waitForState(t, c, func(m modulelist.Model) bool {
		return len(m.Modules) == 1 && len(m.Modules[0].Items) == 1
	})
	if m.Modules[0].Items[0].ID != 11 {
		t.Fatalf("wrong item removed: %+v", m.Modules[0].Items)
	}
}

func TestController_EditBusUpdateRefetchesItem(t *testing.T) {
	gw := newFakeGateway()
	gw.pages[""] = source.Page{
		Modules: []model.Module{{ID: 1, ItemCount: 1, Items: []model.ModuleItem{quizWithContent(10, 1, 500)}}},
		Next:    model.NextPageCursor(""),
	}
	renamed := quizWithContent(10, 1, 500)
	renamed.Title = "Midterm"
	gw.singleItems[10] = renamed

	bus := editsource.NewBus(0, nil)
	c := startController(t, gw, bus, 0)
	waitForState(t, c, loadedWith(1))

	bus.PublishUpdated(model.ContentQuiz, 500)

	m := waitForState(t, c, func(m modulelist.Model) bool {
		return len(m.Modules) == 1 && m.Modules[0].Items[0].Title == "Midterm" && !m.LoadingItemIDs.Has(10)
	})
	if m.Modules[0].ItemCount != 1 {
		t.Fatalf("item count changed: %d", m.Modules[0].ItemCount)
	}
}

func TestController_RefreshSupersedesInFlightLoad(t *testing.T) {
	gate := make(chan struct{})
	gw := newFakeGateway()
	gw.firstPages = []gatedPage{
		{page: source.Page{Modules: []model.Module{{ID: 1}}, Next: model.NextPageCursor("")}, gate: gate},
		{page: source.Page{Modules: []model.Module{{ID: 2}, {ID: 3}}, Next: model.NextPageCursor("")}},
	}

	store := testutil.NewTestStore(t)
	c := NewController(modulelist.New(testCourse, 0), NewRunner(gw, store, nil), nil, nil)
	c.Start(context.Background())
	waitForCalls(t, gw, 1)

	c.Dispatch(modulelist.PullToRefresh{})
	waitForState(t, c, loadedWith(2))

	// Release the stale load and let it finish before stopping.
	close(gate)
	c.Stop()

	var last modulelist.Model
	for m := range c.States() {
		last = m
	}
	if len(last.Modules) != 0 && len(last.Modules) != 2 {
		t.Fatalf("stale page leaked into the model: %+v", last.Modules)
	}

	gw.mu.Lock()
	defer gw.mu.Unlock()
	if len(gw.force) != 2 || gw.force[0] || !gw.force[1] {
		t.Fatalf("force flags = %v", gw.force)
	}
}

func TestController_ScrollTargetSignal(t *testing.T) {
	gw := newFakeGateway()
	gw.pages[""] = source.Page{
		Modules: []model.Module{{ID: 1}},
		Next:    model.NextPageCursor("p2"),
	}
	gw.pages["p2"] = source.Page{
		Modules: []model.Module{{ID: 2, ItemCount: 1, Items: []model.ModuleItem{quiz(42, 2)}}},
		Next:    model.NextPageCursor(""),
	}

	c := startController(t, gw, nil, 42)

	select {
	case eff := <-c.Signals():
		scroll, ok := eff.(modulelist.ScrollToItem)
		if !ok || scroll.ItemID != 42 {
			t.Fatalf("unexpected signal: %#v", eff)
		}
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for scroll signal")
	}

	m := waitForState(t, c, loadedWith(2))
	if m.ScrollTarget != 0 {
		t.Fatalf("scroll target not cleared: %d", m.ScrollTarget)
	}
}

func TestController_StopClosesChannels(t *testing.T) {
	gw := newFakeGateway()
	gw.pages[""] = source.Page{Next: model.NextPageCursor("")}

	c := NewController(modulelist.New(testCourse, 0), NewRunner(gw, testutil.NewTestStore(t), nil), nil, nil)
	c.Start(context.Background())
	c.Stop()

	for range c.States() {
	}
	if _, ok := <-c.Signals(); ok {
		t.Fatal("signals should be closed")
	}
	if c.Dispatch(modulelist.NextPageRequested{}) {
		t.Fatal("dispatch after stop should fail")
	}
	if msg := c.WaitForState()(); msg != nil {
		t.Fatalf("expected nil msg, got %#v", msg)
	}
}
