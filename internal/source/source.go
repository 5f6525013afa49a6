package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/modulesync/internal/model"
)

// SourceType identifies the kind of remote service behind a gateway.
type SourceType string

const (
	SourceTypeCanvas SourceType = "canvas"
)

// AuthError indicates that authentication has failed or expired for a source.
// It is returned by source clients when a 401 response is received.
type AuthError struct {
	SourceType SourceType
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.SourceType, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Kind classifies gateway failures.
type Kind string

const (
	// KindNetwork is a transient failure. It is only retried by a
	// user-initiated refresh.
	KindNetwork Kind = "network"

	// KindNotFound means the module or item no longer exists.
	KindNotFound Kind = "not_found"

	// KindMutationRejected means the server refused a publish change.
	KindMutationRejected Kind = "mutation_rejected"

	// KindProtocol means the response could not be understood, e.g. a
	// malformed Link header or body.
	KindProtocol Kind = "protocol"
)

// Error is a classified gateway failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a classified error for op.
func Errorf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind the module list should react to. Authentication,
// protocol and unclassified failures all surface as KindNetwork because
// the list has no finer recovery for them.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindNotFound, KindMutationRejected:
			return e.Kind
		}
	}
	return KindNetwork
}

// IsNotFound reports whether err says the target no longer exists.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotFound
}

// IsMutationRejected reports whether err is a refused publish change.
func IsMutationRejected(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindMutationRejected
}

// IsProtocol reports whether err is an unparseable response.
func IsProtocol(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindProtocol
}

// Page is one page of modules plus the cursor that follows it.
type Page struct {
	Modules []model.Module
	Next    model.PageCursor
}

// Gateway is the contract over the remote module service. forceNetwork
// bypasses any local response cache.
type Gateway interface {
	// FirstPage fetches the first page of the course's modules with items.
	FirstPage(ctx context.Context, course model.Course, forceNetwork bool) (Page, error)

	// NextPage fetches the page the cursor points at. A cursor with no
	// next link is terminal and yields an empty exhausted page.
	NextPage(ctx context.Context, cursor model.PageCursor, forceNetwork bool) (Page, error)

	// AllItemsOfModule fetches every item of a module across all pages.
	AllItemsOfModule(
		ctx context.Context,
		course model.Course,
		moduleID int64,
		forceNetwork bool,
	) ([]model.ModuleItem, error)

	// SingleItem fetches one module item.
	SingleItem(
		ctx context.Context,
		course model.Course,
		moduleID, itemID int64,
		forceNetwork bool,
	) (model.ModuleItem, error)

	// SetModulePublished publishes or unpublishes a module. When
	// skipContentTags is false the change also applies to its items.
	SetModulePublished(
		ctx context.Context,
		course model.Course,
		moduleID int64,
		published, skipContentTags bool,
	) (model.Module, error)

	// SetItemPublished publishes or unpublishes one module item.
	SetItemPublished(
		ctx context.Context,
		course model.Course,
		moduleID, itemID int64,
		published bool,
	) (model.ModuleItem, error)
}
