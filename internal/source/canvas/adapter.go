package canvas

import (
	"context"
	"fmt"

	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/source"
)

// Adapter implements source.Gateway for Canvas.
type Adapter struct {
	client *Client
}

var _ source.Gateway = (*Adapter)(nil)

// NewAdapter creates a new Canvas gateway.
func NewAdapter(opts Options) *Adapter {
	return &Adapter{client: NewClient(opts)}
}

func modulesPath(course model.Course, perPage int) string {
	return fmt.Sprintf(
		"/api/v1/courses/%d/modules?include[]=items&include[]=content_details&per_page=%d",
		course.ID, perPage,
	)
}

func moduleItemsPath(course model.Course, moduleID int64, perPage int) string {
	return fmt.Sprintf(
		"/api/v1/courses/%d/modules/%d/items?include[]=content_details&per_page=%d",
		course.ID, moduleID, perPage,
	)
}

func moduleItemPath(course model.Course, moduleID, itemID int64) string {
	return fmt.Sprintf(
		"/api/v1/courses/%d/modules/%d/items/%d?include[]=content_details",
		course.ID, moduleID, itemID,
	)
}

// FirstPage fetches the first page of the course's modules with items.
func (a *Adapter) FirstPage(
	ctx context.Context,
	course model.Course,
	forceNetwork bool,
) (source.Page, error) {
	return a.fetchPage(ctx, "first_page", modulesPath(course, a.client.perPage), forceNetwork)
}

// NextPage fetches the page the cursor points at. An exhausted cursor
// yields an empty page instead of an error.
func (a *Adapter) NextPage(
	ctx context.Context,
	cursor model.PageCursor,
	forceNetwork bool,
) (source.Page, error) {
	if cursor.Exhausted() {
		return source.Page{Next: cursor}, nil
	}
	if cursor.IsFirstPage() {
		return source.Page{}, source.Errorf(
			source.KindProtocol, "next_page", "cursor has no next link",
		)
	}
	return a.fetchPage(ctx, "next_page", cursor.NextURL, forceNetwork)
}

func (a *Adapter) fetchPage(
	ctx context.Context,
	op string,
	ref string,
	forceNetwork bool,
) (source.Page, error) {
	var modules []Module
	next, err := a.client.Get(ctx, op, ref, forceNetwork, &modules)
	if err != nil {
		return source.Page{}, fmt.Errorf("fetching modules: %w", err)
	}

	page := source.Page{
		Modules: make([]model.Module, 0, len(modules)),
		Next:    model.NextPageCursor(next),
	}
	for _, m := range modules {
		page.Modules = append(page.Modules, toModel(m))
	}
	return page, nil
}

// AllItemsOfModule fetches every item of a module, following each next
// link until the last page.
func (a *Adapter) AllItemsOfModule(
	ctx context.Context,
	course model.Course,
	moduleID int64,
	forceNetwork bool,
) ([]model.ModuleItem, error) {
	all := []model.ModuleItem{}
	ref := moduleItemsPath(course, moduleID, a.client.perPage)

	for ref != "" {
		var items []ModuleItem
		next, err := a.client.Get(ctx, "module_items", ref, forceNetwork, &items)
		if err != nil {
			return nil, fmt.Errorf("fetching items of module %d: %w", moduleID, err)
		}
		for _, item := range items {
			all = append(all, toModelItem(item, moduleID))
		}
		ref = next
	}

	return all, nil
}

// SingleItem fetches one module item.
func (a *Adapter) SingleItem(
	ctx context.Context,
	course model.Course,
	moduleID, itemID int64,
	forceNetwork bool,
) (model.ModuleItem, error) {
	var item ModuleItem
	_, err := a.client.Get(ctx, "module_item", moduleItemPath(course, moduleID, itemID), forceNetwork, &item)
	if err != nil {
		return model.ModuleItem{}, fmt.Errorf("fetching module item %d: %w", itemID, err)
	}
	return toModelItem(item, moduleID), nil
}

// SetModulePublished publishes or unpublishes a module, and its items
// unless skipContentTags is set.
func (a *Adapter) SetModulePublished(
	ctx context.Context,
	course model.Course,
	moduleID int64,
	published, skipContentTags bool,
) (model.Module, error) {
	var req modulePublishRequest
	req.Module.Published = published
	req.SkipContentTags = skipContentTags

	var resp Module
	path := fmt.Sprintf("/api/v1/courses/%d/modules/%d", course.ID, moduleID)
	err := a.client.Put(ctx, "set_module_published", path, req, &resp)
	if err != nil {
		return model.Module{}, fmt.Errorf("updating module %d: %w", moduleID, err)
	}
	return toModel(resp), nil
}

// SetItemPublished publishes or unpublishes one module item.
func (a *Adapter) SetItemPublished(
	ctx context.Context,
	course model.Course,
	moduleID, itemID int64,
	published bool,
) (model.ModuleItem, error) {
	var req itemPublishRequest
	req.ModuleItem.Published = published

	var resp ModuleItem
	path := fmt.Sprintf("/api/v1/courses/%d/modules/%d/items/%d", course.ID, moduleID, itemID)
	err := a.client.Put(ctx, "set_item_published", path, req, &resp)
	if err != nil {
		return model.ModuleItem{}, fmt.Errorf("updating module item %d: %w", itemID, err)
	}
	return toModelItem(resp, moduleID), nil
}
