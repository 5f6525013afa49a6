package model

// ContentType is the kind of content an external edit can refer to.
type ContentType string

const (
	ContentAssignment ContentType = "Assignment"
	ContentDiscussion ContentType = "Discussion"
	ContentFile       ContentType = "File"
	ContentPage       ContentType = "Page"
	ContentQuiz       ContentType = "Quiz"
)

// ItemMatcher selects the module items an external edit refers to. Items
// are matched on type plus content id, except pages which match on url.
type ItemMatcher struct {
	Type      ContentType `json:"type"`
	ContentID int64       `json:"content_id,omitempty"`
	PageURL   string      `json:"page_url,omitempty"`
}

// Matches reports whether the item is the content described by the matcher.
func (m ItemMatcher) Matches(item ModuleItem) bool {
	if string(item.Type) != string(m.Type) {
		return false
	}
	if m.Type == ContentPage {
		return m.PageURL != "" && item.PageURL == m.PageURL
	}
	return m.ContentID != 0 && item.ContentID == m.ContentID
}

// ContentTypeOf returns the content type an item of type t refers to.
// Items without underlying content, such as sub headers and links, have none.
func ContentTypeOf(t ItemType) (ContentType, bool) {
	switch t {
	case ItemTypeAssignment:
		return ContentAssignment, true
	case ItemTypeDiscussion:
		return ContentDiscussion, true
	case ItemTypeFile:
		return ContentFile, true
	case ItemTypePage:
		return ContentPage, true
	case ItemTypeQuiz:
		return ContentQuiz, true
	}
	return "", false
}
