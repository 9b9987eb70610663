package storeapi

import "github.com/orderdesk/orderdesk/internal/draft"

// Compile-time checks: the client serves both sides of the draft engine.
var (
	_ draft.Fetcher = (*Client)(nil)
	_ draft.Store   = (*Client)(nil)
)
