package calendar

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/teemow/calendart/internal/google"
)

type call struct {
	method string
	path   string
	req    google.Request
}

// fakeRequester answers with canned JSON responses, in order.
type fakeRequester struct {
	responses []string
	err       error
	calls     []call
}

func (f *fakeRequester) SendRequest(_ context.Context, method, path string, req google.Request, out any) error {
	f.calls = append(f.calls, call{method: method, path: path, req: req})
	if f.err != nil {
		return f.err
	}
	if len(f.responses) == 0 {
		return fmt.Errorf("unexpected request %s %s", method, path)
	}

	body := f.responses[0]
	f.responses = f.responses[1:]
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(body), out)
}
