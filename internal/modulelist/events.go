package modulelist

import "github.com/nhle/modulesync/internal/model"

// Event is an input to Update. The set of events is closed.
type Event interface {
	isEvent()
}

// PullToRefresh discards loaded data and refetches page one from the network.
type PullToRefresh struct{}

// NextPageRequested fetches the next page if one exists and none is in flight.
type NextPageRequested struct{}

// ModuleItemClicked opens an item.
type ModuleItemClicked struct {
	ItemID int64
}

// ModuleExpanded records that the user expanded or collapsed a module.
type ModuleExpanded struct {
	ModuleID int64
	Expanded bool
}

// PageLoaded is the result of a page fetch. On success Modules holds every
// module fetched by the effect, already backfilled.
type PageLoaded struct {
	Generation uint64
	Modules    []model.Module
	Cursor     model.PageCursor
	Err        *LoadError
}

// ItemLoadStatusChanged marks items as loading or idle.
type ItemLoadStatusChanged struct {
	ItemIDs []int64
	Loading bool
}

// ItemRefreshRequested asks for matching items to be refetched.
type ItemRefreshRequested struct {
	Matcher model.ItemMatcher
}

// ReplaceModuleItems swaps in refetched items by id. Unknown ids are ignored.
type ReplaceModuleItems struct {
	Items []model.ModuleItem
}

// RemoveModuleItems removes matching items in place.
type RemoveModuleItems struct {
	Matcher model.ItemMatcher
}

// BulkUpdateModule publishes or unpublishes one module.
type BulkUpdateModule struct {
	ModuleID        int64
	Action          BulkAction
	SkipContentTags bool
}

// BulkUpdateAllModules publishes or unpublishes every loaded module.
type BulkUpdateAllModules struct {
	Action          BulkAction
	SkipContentTags bool
}

// ModuleBulkUpdateResult is the outcome of one module's bulk mutation.
type ModuleBulkUpdateResult struct {
	ModuleID int64
	Module   *model.Module
	Err      *LoadError
}

// BulkUpdateCancelled abandons the running bulk operation. Mutations the
// server already applied stay applied.
type BulkUpdateCancelled struct{}

// UpdateModuleItem toggles one item's publish flag.
type UpdateModuleItem struct {
	ItemID    int64
	Published bool
}

// ModuleItemUpdateSuccess carries the item returned by a publish toggle.
type ModuleItemUpdateSuccess struct {
	Item model.ModuleItem
}

// ModuleItemUpdateFailed reports a rejected publish toggle.
type ModuleItemUpdateFailed struct {
	ItemID int64
	Err    *LoadError
}

func (PullToRefresh) isEvent() {}
func (NextPageRequested) isEvent() {}
func (ModuleItemClicked) isEvent() {}
func (ModuleExpanded) isEvent() {}
func (PageLoaded) isEvent() {}
func (ItemLoadStatusChanged) isEvent() {}
func (ItemRefreshRequested) isEvent() {}
func (ReplaceModuleItems) isEvent() {}
func (RemoveModuleItems) isEvent() {}
func (BulkUpdateModule) isEvent() {}
func (BulkUpdateAllModules) isEvent() {}
func (ModuleBulkUpdateResult) isEvent() {}
func (BulkUpdateCancelled) isEvent() {}
func (UpdateModuleItem) isEvent() {}
func (ModuleItemUpdateSuccess) isEvent() {}
func (ModuleItemUpdateFailed) isEvent() {}
