package model

// PageCursor tracks pagination through the module list.
//
// The zero value means no page has been fetched yet (first page). After a
// fetch, NextURL holds the continuation link; an empty NextURL on a fetched
// cursor means the list is exhausted.
type PageCursor struct {
	NextURL string `json:"next_url,omitempty"`
	Fetched bool   `json:"fetched"`
}

// FirstPageCursor returns the cursor for a list that has not been fetched.
func FirstPageCursor() PageCursor {
	return PageCursor{}
}

// NextPageCursor returns the cursor that follows a fetched page. An empty
// next link yields an exhausted cursor.
func NextPageCursor(nextURL string) PageCursor {
	return PageCursor{NextURL: nextURL, Fetched: true}
}

// IsFirstPage reports whether no page has been fetched yet.
func (c PageCursor) IsFirstPage() bool {
	return !c.Fetched
}

// HasMore reports whether another page can be requested.
func (c PageCursor) HasMore() bool {
	return !c.Fetched || c.NextURL != ""
}

// Exhausted reports whether every page has been fetched.
func (c PageCursor) Exhausted() bool {
	return !c.HasMore()
}
