package modulelist

import (
	"fmt"

	"github.com/nhle/modulesync/internal/model"
)

// Init starts loading the first page of a fresh model.
func Init(m Model) (Model, []Effect) {
	m.IsLoading = true
	m.LoadErr = nil
	return m, []Effect{loadEffect(m)}
}

// Update applies one event and returns the next model plus the effects to
// run. It is deterministic and never modifies m. An event type it does not
// know is a programming error and panics.
func Update(m Model, ev Event) (Model, []Effect) {
	switch e := ev.(type) {
	case PullToRefresh:
		return onPullToRefresh(m)
	case NextPageRequested:
		return onNextPageRequested(m)
	case ModuleItemClicked:
		return onModuleItemClicked(m, e)
	case ModuleExpanded:
		return m, []Effect{MarkModuleExpanded{Course: m.Course, ModuleID: e.ModuleID, Expanded: e.Expanded}}
	case PageLoaded:
		return onPageLoaded(m, e)
	case ItemLoadStatusChanged:
		return onItemLoadStatusChanged(m, e)
	case ItemRefreshRequested:
		return onItemRefreshRequested(m, e)
	case ReplaceModuleItems:
		return onReplaceModuleItems(m, e)
	case RemoveModuleItems:
		return onRemoveModuleItems(m, e)
	case BulkUpdateModule:
		if _, ok := m.FindModule(e.ModuleID); !ok {
			return m, nil
		}
		return startBulk(m, []int64{e.ModuleID}, ScopeModule, e.Action, e.SkipContentTags)
	case BulkUpdateAllModules:
		if len(m.Modules) == 0 {
			return m, nil
		}
		return startBulk(m, m.ModuleIDs(), ScopeAll, e.Action, e.SkipContentTags)
	case ModuleBulkUpdateResult:
		return onModuleBulkUpdateResult(m, e)
	case BulkUpdateCancelled:
		return onBulkUpdateCancelled(m)
	case UpdateModuleItem:
		return onUpdateModuleItem(m, e)
	case ModuleItemUpdateSuccess:
		return onModuleItemUpdateSuccess(m, e)
	case ModuleItemUpdateFailed:
		return onModuleItemUpdateFailed(m, e)
	default:
		panic(unknownType("event", ev))
	}
}

func unknownType(kind string, v any) string {
	return fmt.Sprintf("modulelist: unhandled %s type %T", kind, v)
}

func loadEffect(m Model) LoadNextPage {
	return LoadNextPage{
		Course:       m.Course,
		Cursor:       m.Cursor,
		ForceNetwork: m.ForceNetwork,
		ScrollTarget: m.ScrollTarget,
		Generation:   m.Generation,
	}
}

func onPullToRefresh(m Model) (Model, []Effect) {
	m.Modules = nil
	m.Cursor = model.FirstPageCursor()
	m.ForceNetwork = true
	m.IsLoading = true
	m.LoadErr = nil
	m.Generation++
	return m, []Effect{loadEffect(m)}
}

func onNextPageRequested(m Model) (Model, []Effect) {
	if m.IsLoading || m.Cursor.Exhausted() {
		return m, nil
	}
	m.IsLoading = true
	m.LoadErr = nil
	return m, []Effect{loadEffect(m)}
}

func onModuleItemClicked(m Model, e ModuleItemClicked) (Model, []Effect) {
	item, ok := m.FindItem(e.ItemID)
	if !ok || item.IsSubHeader() {
		return m, nil
	}
	return m, []Effect{ShowModuleItemDetail{Course: m.Course, Item: item}}
}

func onPageLoaded(m Model, e PageLoaded) (Model, []Effect) {
	if e.Generation != m.Generation {
		return m, nil
	}

	m.IsLoading = false

	if e.Err != nil {
		m.LoadErr = e.Err
		return m, nil
	}

	m.LoadErr = nil
	modules := make([]model.Module, 0, len(m.Modules)+len(e.Modules))
	modules = append(modules, m.Modules...)
	modules = append(modules, model.CloneModules(e.Modules)...)
	m.Modules = modules
	m.Cursor = e.Cursor

	var effects []Effect
	if target := m.ScrollTarget; target != 0 {
		m.ScrollTarget = 0
		if _, found := m.FindItem(target); found {
			effects = append(effects, ScrollToItem{ItemID: target})
		}
	}
	return m, effects
}

func onItemLoadStatusChanged(m Model, e ItemLoadStatusChanged) (Model, []Effect) {
	if e.Loading {
		m.LoadingItemIDs = m.LoadingItemIDs.With(e.ItemIDs...)
	} else {
		m.LoadingItemIDs = m.LoadingItemIDs.Without(e.ItemIDs...)
	}
	return m, nil
}

func onItemRefreshRequested(m Model, e ItemRefreshRequested) (Model, []Effect) {
	var matched []model.ModuleItem
	for _, mod := range m.Modules {
		for _, item := range mod.Items {
			if e.Matcher.Matches(item) {
				matched = append(matched, item)
			}
		}
	}
	if len(matched) == 0 {
		return m, nil
	}
	return m, []Effect{UpdateModuleItems{Course: m.Course, Items: matched}}
}

func onReplaceModuleItems(m Model, e ReplaceModuleItems) (Model, []Effect) {
	if len(e.Items) == 0 {
		return m, nil
	}
	byID := make(map[int64]model.ModuleItem, len(e.Items))
	for _, item := range e.Items {
		byID[item.ID] = item
	}

	m.Modules = mapItems(m.Modules, func(item model.ModuleItem) (model.ModuleItem, bool) {
		replacement, ok := byID[item.ID]
		return replacement, ok
	})
	return m, nil
}

func onRemoveModuleItems(m Model, e RemoveModuleItems) (Model, []Effect) {
	modules := make([]model.Module, len(m.Modules))
	for i, mod := range m.Modules {
		kept := make([]model.ModuleItem, 0, len(mod.Items))
		for _, item := range mod.Items {
			if !e.Matcher.Matches(item) {
				kept = append(kept, item)
			}
		}
		mod.Items = kept
		modules[i] = mod
	}
	if len(modules) == 0 {
		modules = m.Modules
	}
	m.Modules = modules
	return m, nil
}

// mapItems returns modules with every item for which fn reports true
// replaced by fn's result. Untouched modules share their item storage.
func mapItems(
	modules []model.Module,
	fn func(model.ModuleItem) (model.ModuleItem, bool),
) []model.Module {
	out := make([]model.Module, len(modules))
	for i, mod := range modules {
		var items []model.ModuleItem
		for j, item := range mod.Items {
			replacement, ok := fn(item)
			if !ok {
				continue
			}
			if items == nil {
				items = make([]model.ModuleItem, len(mod.Items))
				copy(items, mod.Items)
			}
			items[j] = replacement
		}
		if items != nil {
			mod.Items = items
		}
		out[i] = mod
	}
	if len(out) == 0 {
		return modules
	}
	return out
}

func startBulk(
	m Model,
	moduleIDs []int64,
	scope BulkScope,
	action BulkAction,
	skipContentTags bool,
) (Model, []Effect) {
	if m.BulkInProgress {
		return m, []Effect{ShowMessage{Message: Message{
			Kind:   MessageBulkAlreadyRunning,
			Action: action,
			Scope:  scope,
		}}}
	}

	m.BulkInProgress = true
	m.Bulk = &BulkOperation{
		Action:          action,
		Scope:           scope,
		SkipContentTags: skipContentTags,
		Pending:         model.NewIDSet(moduleIDs...),
		Failed:          model.IDSet{},
	}
	m.LoadingModuleIDs = m.LoadingModuleIDs.With(moduleIDs...)
	m.FailedModuleIDs = m.FailedModuleIDs.Without(moduleIDs...)

	if !skipContentTags {
		var itemIDs []int64
		for _, id := range moduleIDs {
			mod, _ := m.FindModule(id)
			for _, item := range mod.Items {
				itemIDs = append(itemIDs, item.ID)
			}
		}
		m.LoadingItemIDs = m.LoadingItemIDs.With(itemIDs...)
	}

	ids := make([]int64, len(moduleIDs))
	copy(ids, moduleIDs)
	return m, []Effect{BulkUpdateModules{
		Course:          m.Course,
		ModuleIDs:       ids,
		Action:          action,
		SkipContentTags: skipContentTags,
	}}
}

func onModuleBulkUpdateResult(m Model, e ModuleBulkUpdateResult) (Model, []Effect) {
	if m.Bulk == nil || !m.Bulk.Pending.Has(e.ModuleID) {
		return m, nil
	}

	bulk := m.Bulk.clone()
	bulk.Pending = bulk.Pending.Without(e.ModuleID)
	m = clearBulkLoading(m, bulk, e.ModuleID)

	if e.Err != nil || e.Module == nil {
		bulk.Failed = bulk.Failed.With(e.ModuleID)
		m.FailedModuleIDs = m.FailedModuleIDs.With(e.ModuleID)
	} else {
		m.Modules = setModulePublished(m.Modules, e.Module.ID, e.Module.Published)
	}

	if len(bulk.Pending) > 0 {
		m.Bulk = bulk
		return m, nil
	}

	msg := Message{
		Kind:            MessageBulkCompleted,
		Action:          bulk.Action,
		Scope:           bulk.Scope,
		SkipContentTags: bulk.SkipContentTags,
	}
	if len(bulk.Failed) > 0 {
		msg.Kind = MessageBulkFailed
		msg.Failed = len(bulk.Failed)
	}
	return reloadAfterBulk(m, msg)
}

func onBulkUpdateCancelled(m Model) (Model, []Effect) {
	if m.Bulk == nil {
		return m, nil
	}
	bulk := m.Bulk
	m = clearBulkLoading(m, bulk, bulk.Pending.Sorted()...)
	return reloadAfterBulk(m, Message{Kind: MessageBulkCancelled, Action: bulk.Action, Scope: bulk.Scope})
}

// reloadAfterBulk ends the bulk operation and reloads from the network,
// since the server may have applied more or less than was asked for.
func reloadAfterBulk(m Model, msg Message) (Model, []Effect) {
	m.Bulk = nil
	m.BulkInProgress = false

	m, effects := onPullToRefresh(m)
	return m, append(effects, ShowMessage{Message: msg})
}

// clearBulkLoading unmarks the given modules, and their items when the
// bulk operation included them.
func clearBulkLoading(m Model, bulk *BulkOperation, moduleIDs ...int64) Model {
	m.LoadingModuleIDs = m.LoadingModuleIDs.Without(moduleIDs...)
	if bulk.SkipContentTags {
		return m
	}
	var itemIDs []int64
	for _, id := range moduleIDs {
		if mod, ok := m.FindModule(id); ok {
			for _, item := range mod.Items {
				itemIDs = append(itemIDs, item.ID)
			}
		}
	}
	m.LoadingItemIDs = m.LoadingItemIDs.Without(itemIDs...)
	return m
}

// setModulePublished sets one module's flag from a server response. Item
// flags are left to the reload that follows the bulk operation.
func setModulePublished(modules []model.Module, moduleID int64, published bool) []model.Module {
	out := make([]model.Module, len(modules))
	copy(out, modules)
	for i := range out {
		if out[i].ID == moduleID {
			out[i].Published = published
		}
	}
	return out
}

func onUpdateModuleItem(m Model, e UpdateModuleItem) (Model, []Effect) {
	item, ok := m.FindItem(e.ItemID)
	if !ok || m.LoadingItemIDs.Has(e.ItemID) {
		return m, nil
	}

	if !e.Published && !item.Unpublishable {
		return m, []Effect{ShowMessage{Message: Message{
			Kind:      MessageItemNotUnpublishable,
			Action:    ActionUnpublish,
			ItemTitle: item.Title,
		}}}
	}

	m.LoadingItemIDs = m.LoadingItemIDs.With(e.ItemID)
	m.FailedItemIDs = m.FailedItemIDs.Without(e.ItemID)
	return m, []Effect{UpdateModuleItemPublished{
		Course:    m.Course,
		ModuleID:  item.ModuleID,
		ItemID:    item.ID,
		Published: e.Published,
	}}
}

func onModuleItemUpdateSuccess(m Model, e ModuleItemUpdateSuccess) (Model, []Effect) {
	m.LoadingItemIDs = m.LoadingItemIDs.Without(e.Item.ID)
	m.Modules = mapItems(m.Modules, func(item model.ModuleItem) (model.ModuleItem, bool) {
		return e.Item, item.ID == e.Item.ID
	})
	return m, nil
}

func onModuleItemUpdateFailed(m Model, e ModuleItemUpdateFailed) (Model, []Effect) {
	m.LoadingItemIDs = m.LoadingItemIDs.Without(e.ItemID)
	m.FailedItemIDs = m.FailedItemIDs.With(e.ItemID)
	return m, []Effect{ShowMessage{Message: Message{Kind: MessageItemUpdateFailed}}}
}
