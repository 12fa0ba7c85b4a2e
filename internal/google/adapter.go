package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"

	"github.com/teemow/calendart/internal/criterion"
	"github.com/teemow/calendart/internal/instrumentation"
	"github.com/teemow/calendart/internal/logging"
)

// DefaultBaseURL is the root of every Google REST endpoint used by calendart.
const DefaultBaseURL = "https://www.googleapis.com"

const userAgent = "calendart"

// Request carries the optional parts of a call to SendRequest.
type Request struct {
	// Query is encoded into the URL.
	Query criterion.Query
	// Body is JSON encoded when non-nil.
	Body any
	// Operation labels metrics and spans. Derived from the method when empty.
	Operation string
}

// Adapter sends authenticated requests to the Google REST APIs and turns
// failed responses into *Error values. It does not retry.
type Adapter struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	user    *User
}

type Option func(*Adapter)

// WithBaseURL overrides DefaultBaseURL, e.g. for a test server.
func WithBaseURL(baseURL string) Option {
	return func(a *Adapter) {
		a.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(a *Adapter) {
		a.metrics = metrics
	}
}

// WithUser sets the user the adapter acts for.
func WithUser(user *User) Option {
	return func(a *Adapter) {
		a.user = user
	}
}

// NewAdapter returns an Adapter sending requests through client, which is
// expected to add credentials. A nil client uses http.DefaultClient.
func NewAdapter(client *http.Client, opts ...Option) *Adapter {
	if client == nil {
		client = http.DefaultClient
	}

	a := &Adapter{
		client:  client,
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
		user:    &User{},
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// User returns the user the adapter acts for.
func (a *Adapter) User() *User {
	return a.user
}

// SendRequest issues method on path and decodes the JSON response into out,
// unless out is nil. A non-2xx response is returned as an *Error.
func (a *Adapter) SendRequest(ctx context.Context, method, path string, req Request, out any) (err error) {
	service := instrumentation.ServiceFromPath(path)
	operation := req.Operation
	if operation == "" {
		operation = operationFor(method)
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, service, operation,
		attribute.String(instrumentation.SpanAttrMethod, method),
		attribute.String(instrumentation.SpanAttrPath, instrumentation.PathTemplate(path)),
	)
	start := time.Now()
	defer func() {
		status := instrumentation.EndSpan(span, err)
		a.metrics.RecordGoogleAPIOperation(ctx, service, operation, status, time.Since(start))
	}()

	httpReq, err := a.newRequest(ctx, method, path, req)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int(instrumentation.SpanAttrStatusCode, resp.StatusCode))

	if cause := googleapi.CheckResponse(resp); cause != nil {
		gerr := newError(resp, cause)
		span.SetAttributes(attribute.String(instrumentation.SpanAttrErrorKind, gerr.Kind.String()))
		a.metrics.RecordGoogleAPIError(ctx, service, gerr.Kind.String())
		a.logger.Debug("google api request failed",
			logging.Operation(service+"."+operation),
			slog.Int("status_code", resp.StatusCode),
			slog.String("kind", gerr.Kind.String()),
			logging.Err(gerr))
		return gerr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}

	return nil
}

func (a *Adapter) newRequest(ctx context.Context, method, path string, req Request) (*http.Request, error) {
	target := a.baseURL + path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s %s request: %w", method, path, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}

func operationFor(method string) string {
	switch method {
	case http.MethodPost:
		return instrumentation.OperationCreate
	case http.MethodPatch, http.MethodPut:
		return instrumentation.OperationPatch
	default:
		return instrumentation.OperationGet
	}
}
