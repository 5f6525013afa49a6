package canvas

import "github.com/nhle/modulesync/internal/model"

// Module is a module as returned by /courses/:id/modules.
type Module struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Position   int          `json:"position"`
	Published  bool         `json:"published"`
	ItemsCount int          `json:"items_count"`
	Items      []ModuleItem `json:"items"`
}

// ModuleItem is a module item as returned by the items endpoints.
type ModuleItem struct {
	ID            int64  `json:"id"`
	ModuleID      int64  `json:"module_id"`
	Title         string `json:"title"`
	Type          string `json:"type"`
	Indent        int    `json:"indent"`
	Published     bool   `json:"published"`
	Unpublishable bool   `json:"unpublishable"`
	ContentID     int64  `json:"content_id"`
	PageURL       string `json:"page_url,omitempty"`
}

// ErrorResponse is the error envelope Canvas returns on failures.
type ErrorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Message string `json:"message"`
}

// modulePublishRequest is the body of PUT /courses/:id/modules/:mid.
type modulePublishRequest struct {
	Module struct {
		Published bool `json:"published"`
	} `json:"module"`
	SkipContentTags bool `json:"skip_content_tags"`
}

// itemPublishRequest is the body of PUT /courses/:id/modules/:mid/items/:iid.
type itemPublishRequest struct {
	ModuleItem struct {
		Published bool `json:"published"`
	} `json:"module_item"`
}

func toModel(m Module) model.Module {
	out := model.Module{
		ID:        m.ID,
		Name:      m.Name,
		Published: m.Published,
		ItemCount: m.ItemsCount,
		Items:     make([]model.ModuleItem, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		out.Items = append(out.Items, toModelItem(item, m.ID))
	}
	return out
}

func toModelItem(item ModuleItem, moduleID int64) model.ModuleItem {
	if item.ModuleID == 0 {
		item.ModuleID = moduleID
	}
	return model.ModuleItem{
		ID:            item.ID,
		ModuleID:      item.ModuleID,
		Title:         item.Title,
		Type:          model.ItemType(item.Type),
		Indent:        item.Indent,
		Published:     item.Published,
		Unpublishable: item.Unpublishable,
		ContentID:     item.ContentID,
		PageURL:       item.PageURL,
	}
}
