package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNotConfigured marks a source that cannot be used without an API key.
// It is a soft failure and is not counted against provider health.
var ErrNotConfigured = errors.New("provider not configured")

// ErrNoData marks a well-formed upstream response that carried nothing usable.
var ErrNoData = errors.New("no data in upstream response")

const maxBodyBytes = 16 << 20

// StatusError is returned for non-200 upstream responses.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.Code, e.Body)
}

// NewHTTPClient returns a client whose outbound requests are traced.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func fetchBody(ctx context.Context, client *http.Client, provider, endpoint string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		// The URL may carry credentials; keep only the operation and cause.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, fmt.Errorf("%s request failed: %w", provider, urlErr.Err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Provider: provider, Code: resp.StatusCode, Body: string(body)}
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
