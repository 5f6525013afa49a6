package modulelist

import "github.com/nhle/modulesync/internal/model"

// RowKind identifies a display row.
type RowKind int

const (
	RowModule RowKind = iota
	RowItem
	RowSubHeader
	RowEmptyModule
	RowFullError
	RowInlineError
	RowEmpty
	RowLoading
)

func (k RowKind) String() string {
	switch k {
	case RowModule:
		return "module"
	case RowItem:
		return "item"
	case RowSubHeader:
		return "subheader"
	case RowEmptyModule:
		return "empty_module"
	case RowFullError:
		return "full_error"
	case RowInlineError:
		return "inline_error"
	case RowEmpty:
		return "empty"
	case RowLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Row is one flattened display row.
type Row struct {
	Kind RowKind

	// ModuleID is set on module, item, sub header and empty-module rows.
	ModuleID int64

	// Module is set on module header rows.
	Module model.Module

	// Item is set on item and sub header rows.
	Item model.ModuleItem

	// Indent is the item's indentation in columns.
	Indent int

	Collapsed bool
	Loading   bool
	Failed    bool

	// Disabled rows cannot be opened.
	Disabled bool

	// Err is set on error rows.
	Err *LoadError
}

// Selectable reports whether the row refers to a module or module item.
func (r Row) Selectable() bool {
	switch r.Kind {
	case RowModule, RowItem, RowSubHeader:
		return true
	}
	return false
}

// Project flattens m into display rows. Modules in collapsed show only
// their header. indentWidth is the number of columns per indent level.
func Project(m Model, collapsed model.IDSet, indentWidth int) []Row {
	rows := make([]Row, 0, len(m.Modules)*4+1)

	for _, mod := range m.Modules {
		isCollapsed := collapsed.Has(mod.ID)
		rows = append(rows, Row{
			Kind:      RowModule,
			ModuleID:  mod.ID,
			Module:    mod,
			Collapsed: isCollapsed,
			Loading:   m.LoadingModuleIDs.Has(mod.ID),
			Failed:    m.FailedModuleIDs.Has(mod.ID),
		})
		if isCollapsed {
			continue
		}

		if len(mod.Items) == 0 {
			rows = append(rows, Row{Kind: RowEmptyModule, ModuleID: mod.ID, Disabled: true})
			continue
		}

		for _, item := range mod.Items {
			row := Row{
				Kind:     RowItem,
				ModuleID: mod.ID,
				Item:     item,
				Indent:   indentWidth * item.Indent,
				Loading:  m.LoadingItemIDs.Has(item.ID),
				Failed:   m.FailedItemIDs.Has(item.ID),
			}
			if item.IsSubHeader() {
				row.Kind = RowSubHeader
				row.Disabled = true
			}
			rows = append(rows, row)
		}
	}

	switch {
	case m.LoadErr != nil && len(m.Modules) == 0:
		rows = append(rows, Row{Kind: RowFullError, Err: m.LoadErr, Disabled: true})
	case m.LoadErr != nil:
		rows = append(rows, Row{Kind: RowInlineError, Err: m.LoadErr, Disabled: true})
	case !m.IsLoading && m.Cursor.Exhausted() && len(m.Modules) == 0:
		rows = append(rows, Row{Kind: RowEmpty, Disabled: true})
	case len(m.Modules) > 0 && m.Cursor.HasMore():
		rows = append(rows, Row{Kind: RowLoading, Disabled: true})
	}

	return rows
}
