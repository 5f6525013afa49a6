package modulelist

import (
	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/source"
)

// LoadError is a failure carried as data through events into the model.
type LoadError struct {
	Kind    source.Kind
	Message string
}

// NewLoadError classifies err. A nil err yields nil.
func NewLoadError(err error) *LoadError {
	if err == nil {
		return nil
	}
	return &LoadError{Kind: source.KindOf(err), Message: err.Error()}
}

func (e *LoadError) Error() string {
	return e.Message
}

// BulkAction is the publish direction of a bulk request.
type BulkAction string

const (
	ActionPublish   BulkAction = "publish"
	ActionUnpublish BulkAction = "unpublish"
)

// Published reports the publish flag the action sets.
func (a BulkAction) Published() bool {
	return a == ActionPublish
}

// BulkScope says whether a bulk request targeted one module or all of them.
type BulkScope string

const (
	ScopeModule BulkScope = "module"
	ScopeAll    BulkScope = "all"
)

// BulkOperation tracks an in-flight bulk publish request.
type BulkOperation struct {
	Action          BulkAction
	Scope           BulkScope
	SkipContentTags bool

	// Pending holds module ids still awaiting a result.
	Pending model.IDSet

	// Failed holds module ids whose mutation failed.
	Failed model.IDSet
}

func (b *BulkOperation) clone() *BulkOperation {
	if b == nil {
		return nil
	}
	out := *b
	out.Pending = b.Pending.Clone()
	out.Failed = b.Failed.Clone()
	return &out
}

// Model is the state of one course's module list. Values are treated as
// immutable: Update returns a new Model and never writes through the one
// it was given.
type Model struct {
	Course model.Course

	// Modules are in server order, concatenated across pages.
	Modules []model.Module

	Cursor model.PageCursor

	// ForceNetwork is set by a pull-to-refresh and applies to every page
	// of that refresh cycle.
	ForceNetwork bool

	IsLoading bool

	// LoadErr is the failure of the most recent page fetch.
	LoadErr *LoadError

	BulkInProgress bool
	Bulk           *BulkOperation

	LoadingModuleIDs model.IDSet
	LoadingItemIDs   model.IDSet

	// FailedModuleIDs holds modules whose last bulk mutation failed.
	FailedModuleIDs model.IDSet

	// FailedItemIDs holds items whose last publish toggle failed.
	FailedItemIDs model.IDSet

	// ScrollTarget is the module item id to scroll to once loaded; 0 means none.
	ScrollTarget int64

	// Generation tags page fetches. A refresh bumps it so late results of
	// earlier fetches are discarded.
	Generation uint64
}

// New returns the empty model for a course. scrollTarget may be 0.
func New(course model.Course, scrollTarget int64) Model {
	return Model{
		Course:       course,
		Cursor:       model.FirstPageCursor(),
		ScrollTarget: scrollTarget,
	}
}

// FindItem locates a loaded module item by id.
func (m Model) FindItem(itemID int64) (model.ModuleItem, bool) {
	for _, mod := range m.Modules {
		if item, ok := mod.FindItem(itemID); ok {
			return item, true
		}
	}
	return model.ModuleItem{}, false
}

// FindModule locates a loaded module by id.
func (m Model) FindModule(moduleID int64) (model.Module, bool) {
	for _, mod := range m.Modules {
		if mod.ID == moduleID {
			return mod, true
		}
	}
	return model.Module{}, false
}

// ModuleIDs returns the loaded module ids in order.
func (m Model) ModuleIDs() []int64 {
	ids := make([]int64, len(m.Modules))
	for i, mod := range m.Modules {
		ids[i] = mod.ID
	}
	return ids
}

// Clone returns a deep copy of the model.
func (m Model) Clone() Model {
	m.Modules = model.CloneModules(m.Modules)
	if m.LoadErr != nil {
		e := *m.LoadErr
		m.LoadErr = &e
	}
	m.Bulk = m.Bulk.clone()
	m.LoadingModuleIDs = m.LoadingModuleIDs.Clone()
	m.LoadingItemIDs = m.LoadingItemIDs.Clone()
	m.FailedModuleIDs = m.FailedModuleIDs.Clone()
	m.FailedItemIDs = m.FailedItemIDs.Clone()
	return m
}
