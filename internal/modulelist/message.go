package modulelist

import "fmt"

// MessageKind identifies a user-facing message.
type MessageKind string

const (
	MessageBulkCompleted        MessageKind = "bulk_completed"
	MessageBulkFailed           MessageKind = "bulk_failed"
	MessageBulkAlreadyRunning   MessageKind = "bulk_already_running"
	MessageBulkCancelled        MessageKind = "bulk_cancelled"
	MessageItemNotUnpublishable MessageKind = "item_not_unpublishable"
	MessageItemUpdateFailed     MessageKind = "item_update_failed"
)

// Message is a transient notice for the user.
type Message struct {
	Kind            MessageKind
	Action          BulkAction
	Scope           BulkScope
	SkipContentTags bool
	Failed          int
	ItemTitle       string
}

// Text renders the message.
func (m Message) Text() string {
	verb := "published"
	if m.Action == ActionUnpublish {
		verb = "unpublished"
	}

	switch m.Kind {
	case MessageBulkCompleted:
		switch {
		case m.Scope == ScopeAll && m.SkipContentTags:
			return "Only modules " + verb
		case m.Scope == ScopeAll:
			return "All modules and all items " + verb
		case m.SkipContentTags:
			return "Only module " + verb
		default:
			return "Module and all items " + verb
		}
	case MessageBulkFailed:
		return fmt.Sprintf("Failed to update %d module(s)", m.Failed)
	case MessageBulkAlreadyRunning:
		return "A bulk update is already in progress"
	case MessageBulkCancelled:
		return "Update cancelled"
	case MessageItemNotUnpublishable:
		if m.ItemTitle != "" {
			return fmt.Sprintf("%q can't be unpublished because students have submitted", m.ItemTitle)
		}
		return "This item can't be unpublished because students have submitted"
	case MessageItemUpdateFailed:
		return "Failed to update module item"
	default:
		return string(m.Kind)
	}
}
