package sync

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/modulelist"
	"github.com/nhle/modulesync/internal/source"
)

// fakeGateway serves canned pages keyed by next link ("" is the first page).
type fakeGateway struct {
	mu gosync.Mutex

	pages    map[string]source.Page
	pageErrs map[string]error

	// firstPages, when set, is consumed in order by FirstPage calls. A
	// non-nil gate blocks that call until it is closed.
	firstPages []gatedPage

	moduleItems    map[int64][]model.ModuleItem
	moduleItemErrs map[int64]error
	singleItems    map[int64]model.ModuleItem
	itemErrs    map[int64]error
	moduleErrs  map[int64]error

	calls []string
	force []bool
}

type gatedPage struct {
	page source.Page
	gate chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		pages:          map[string]source.Page{},
		pageErrs:       map[string]error{},
		moduleItems:    map[int64][]model.ModuleItem{},
		moduleItemErrs: map[int64]error{},
		singleItems:    map[int64]model.ModuleItem{},
		itemErrs:       map[int64]error{},
		moduleErrs:     map[int64]error{},
	}
}

func (f *fakeGateway) record(call string, force bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.force = append(f.force, force)
}

func (f *fakeGateway) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGateway) page(key string) (source.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.pageErrs[key]; ok {
		return source.Page{}, err
	}
	page, ok := f.pages[key]
	if !ok {
		return source.Page{}, source.Errorf(source.KindNotFound, "page", "no page %q", key)
	}
	return page, nil
}

func (f *fakeGateway) FirstPage(ctx context.Context, course model.Course, forceNetwork bool) (source.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "first_page")
	f.force = append(f.force, forceNetwork)
	if len(f.firstPages) > 0 {
		next := f.firstPages[0]
		f.firstPages = f.firstPages[1:]
		f.mu.Unlock()
		if next.gate != nil {
			<-next.gate
		}
		return next.page, nil
	}
	f.mu.Unlock()

	return f.page("")
}

func (f *fakeGateway) NextPage(ctx context.Context, cursor model.PageCursor, forceNetwork bool) (source.Page, error) {
	f.record("next_page:"+cursor.NextURL, forceNetwork)
	return f.page(cursor.NextURL)
}

func (f *fakeGateway) AllItemsOfModule(
	ctx context.Context,
	course model.Course,
	moduleID int64,
	forceNetwork bool,
) ([]model.ModuleItem, error) {
	f.record(fmt.Sprintf("module_items:%d", moduleID), forceNetwork)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.moduleItemErrs[moduleID]; ok {
		return nil, err
	}
	return append([]model.ModuleItem(nil), f.moduleItems[moduleID]...), nil
}

func (f *fakeGateway) SingleItem(
	ctx context.Context,
	course model.Course,
	moduleID, itemID int64,
	forceNetwork bool,
) (model.ModuleItem, error) {
	f.record(fmt.Sprintf("single_item:%d", itemID), forceNetwork)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.itemErrs[itemID]; ok {
		return model.ModuleItem{}, err
	}
	return f.singleItems[itemID], nil
}

func (f *fakeGateway) SetModulePublished(
	ctx context.Context,
	course model.Course,
	moduleID int64,
	published, skipContentTags bool,
) (model.Module, error) {
	f.record(fmt.Sprintf("set_module:%d", moduleID), false)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.moduleErrs[moduleID]; ok {
		return model.Module{}, err
	}
	return model.Module{ID: moduleID, Published: published}, nil
}

func (f *fakeGateway) SetItemPublished(
	ctx context.Context,
	course model.Course,
	moduleID, itemID int64,
	published bool,
) (model.ModuleItem, error) {
	f.record(fmt.Sprintf("set_item:%d", itemID), false)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.itemErrs[itemID]; ok {
		return model.ModuleItem{}, err
	}
	item := f.singleItems[itemID]
	item.Published = published
	return item, nil
}

// recorder collects emitted events.
type recorder struct {
	mu     gosync.Mutex
	events []modulelist.Event
}

func (r *recorder) emit(ev modulelist.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) Events() []modulelist.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]modulelist.Event(nil), r.events...)
}
