package dto

// CursorMeta describes keyset pagination state: NextCursor is the id or
// timestamp to pass as the next request's cursor, empty when exhausted.
type CursorMeta struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}
