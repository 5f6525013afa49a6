package modulelist

import "github.com/nhle/modulesync/internal/model"

// Effect is work requested by Update. The set of effects is closed.
type Effect interface {
	isEffect()
}

// LoadNextPage fetches the page at Cursor. With a ScrollTarget it keeps
// fetching until a module holding that item appears or pages run out.
type LoadNextPage struct {
	Course       model.Course
	Cursor       model.PageCursor
	ForceNetwork bool
	ScrollTarget int64
	Generation   uint64
}

// ScrollToItem asks the view to bring an item into view.
type ScrollToItem struct {
	ItemID int64
}

// MarkModuleExpanded persists a module's collapse state.
type MarkModuleExpanded struct {
	Course   model.Course
	ModuleID int64
	Expanded bool
}

// ShowModuleItemDetail asks the view to open an item.
type ShowModuleItemDetail struct {
	Course model.Course
	Item   model.ModuleItem
}

// UpdateModuleItems refetches individual items from the network.
type UpdateModuleItems struct {
	Course model.Course
	Items  []model.ModuleItem
}

// BulkUpdateModules publishes or unpublishes modules, one request each.
type BulkUpdateModules struct {
	Course          model.Course
	ModuleIDs       []int64
	Action          BulkAction
	SkipContentTags bool
}

// UpdateModuleItemPublished toggles one item's publish flag remotely.
type UpdateModuleItemPublished struct {
	Course    model.Course
	ModuleID  int64
	ItemID    int64
	Published bool
}

// ShowMessage asks the view to show a transient message.
type ShowMessage struct {
	Message Message
}

func (LoadNextPage) isEffect() {}
func (ScrollToItem) isEffect() {}
func (MarkModuleExpanded) isEffect() {}
func (ShowModuleItemDetail) isEffect() {}
func (UpdateModuleItems) isEffect() {}
func (BulkUpdateModules) isEffect() {}
func (UpdateModuleItemPublished) isEffect() {}
func (ShowMessage) isEffect() {}

// IsPresentation reports whether the effect only concerns the view and
// needs no I/O.
func IsPresentation(e Effect) bool {
	switch e.(type) {
	case ScrollToItem, ShowModuleItemDetail, ShowMessage:
		return true
	}
	return false
}

// EffectName returns a short stable name for logs and metrics.
func EffectName(e Effect) string {
	switch e.(type) {
	case LoadNextPage:
		return "load_next_page"
	case ScrollToItem:
		return "scroll_to_item"
	case MarkModuleExpanded:
		return "mark_module_expanded"
	case ShowModuleItemDetail:
		return "show_module_item_detail"
	case UpdateModuleItems:
		return "update_module_items"
	case BulkUpdateModules:
		return "bulk_update_modules"
	case UpdateModuleItemPublished:
		return "update_module_item"
	case ShowMessage:
		return "show_message"
	default:
		panic(unknownType("effect", e))
	}
}
