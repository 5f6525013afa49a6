package model

import "fmt"

// ItemType identifies the kind of content a module item points at.
type ItemType string

const (
	ItemTypeAssignment            ItemType = "Assignment"
	ItemTypeDiscussion            ItemType = "Discussion"
	ItemTypeFile                  ItemType = "File"
	ItemTypePage                  ItemType = "Page"
	ItemTypeQuiz                  ItemType = "Quiz"
	ItemTypeExternalURL           ItemType = "ExternalUrl"
	ItemTypeExternalTool          ItemType = "ExternalTool"
	ItemTypeSubHeader             ItemType = "SubHeader"
	ItemTypeLocked                ItemType = "Locked"
	ItemTypeChooseAssignmentGroup ItemType = "ChooseAssignmentGroup"
)

// Course is the container whose modules are listed.
type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ContextID returns the stable identifier used to key per-course state,
// e.g. "course_42".
func (c Course) ContextID() string {
	return fmt.Sprintf("course_%d", c.ID)
}

// ModuleItem is a single entry within a module.
type ModuleItem struct {
	// ID is the module item's own identifier.
	ID int64 `json:"id"`

	// ModuleID is the identifier of the owning module.
	ModuleID int64 `json:"module_id"`

	Title string   `json:"title"`
	Type  ItemType `json:"type"`

	// Indent is the declared indent depth (0 = flush).
	Indent int `json:"indent"`

	Published bool `json:"published"`

	// Unpublishable reports whether the item may be unpublished. It is
	// false when, for example, students have already submitted.
	Unpublishable bool `json:"unpublishable"`

	// ContentID is the id of the underlying assignment, discussion, file,
	// quiz, etc. It correlates external edits with this item.
	ContentID int64 `json:"content_id"`

	// PageURL identifies Page items, which are keyed by url rather than id.
	// A renamed page gets a new url and can no longer be correlated.
	PageURL string `json:"page_url,omitempty"`
}

// IsSubHeader reports whether the item is a text-only sub header.
func (i ModuleItem) IsSubHeader() bool {
	return i.Type == ItemTypeSubHeader
}

// Module is an ordered folder of module items.
type Module struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Published bool   `json:"published"`

	// ItemCount is the item count declared by the summary endpoint. It may
	// exceed len(Items) when the summary omitted items.
	ItemCount int `json:"items_count"`

	Items []ModuleItem `json:"items"`
}

// NeedsBackfill reports whether the declared item count disagrees with
// the items actually present.
func (m Module) NeedsBackfill() bool {
	return m.ItemCount != len(m.Items)
}

// Clone returns a copy of the module that shares no item storage.
func (m Module) Clone() Module {
	if m.Items != nil {
		items := make([]ModuleItem, len(m.Items))
		copy(items, m.Items)
		m.Items = items
	}
	return m
}

// FindItem returns the item with the given id and whether it was found.
func (m Module) FindItem(itemID int64) (ModuleItem, bool) {
	for _, item := range m.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return ModuleItem{}, false
}

// CloneModules deep-copies a module slice.
func CloneModules(modules []Module) []Module {
	if modules == nil {
		return nil
	}
	out := make([]Module, len(modules))
	for i, m := range modules {
		out[i] = m.Clone()
	}
	return out
}
