package calendar

import (
	"context"

	"github.com/teemow/calendart/internal/google"
)

// Requester sends a request to the Google APIs. *google.Adapter implements it.
type Requester interface {
	SendRequest(ctx context.Context, method, path string, req google.Request, out any) error
}
