package ptv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public timetable API host
const DefaultBaseURL = "http://timetableapi.ptv.vic.gov.au"

// maxErrorBody caps how much of a failed response ends up in a ServiceError
const maxErrorBody = 512

// ErrMalformedResponse is returned when a 200 response cannot be decoded
var ErrMalformedResponse = errors.New("malformed response body")

// TransientError wraps a connection-level failure that may succeed on retry
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient network error: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// ServiceError is returned when the service answers with a non-200 status
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service returned %d: %s", e.StatusCode, e.Body)
}

// IsTransient reports whether err is worth retrying
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// Client talks to the timetable API with signed requests
type Client struct {
	baseURL string
	devID   string
	key     string
	client  *http.Client
}

// NewClient creates a new timetable API client. A zero timeout disables the
// per-request deadline.
func NewClient(baseURL, devID, key string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		devID:   devID,
		key:     key,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Departures fetches upcoming departures for a stop, in service order
func (c *Client) Departures(ctx context.Context, q DeparturesQuery) ([]Departure, error) {
	path := fmt.Sprintf("/v3/departures/route_type/%d/stop/%d?max_results=%d", q.RouteType, q.StopID, q.MaxResults)

	var data departuresResponse
	if err := c.get(ctx, path, &data); err != nil {
		return nil, err
	}
	return data.Departures, nil
}

// Routes lists every route known to the service
func (c *Client) Routes(ctx context.Context) ([]Route, error) {
	var data routesResponse
	if err := c.get(ctx, "/v3/routes", &data); err != nil {
		return nil, err
	}
	return data.Routes, nil
}

// StopsOnRoute lists the stops served by a route
func (c *Client) StopsOnRoute(ctx context.Context, routeID int, routeType RouteType) ([]Stop, error) {
	path := fmt.Sprintf("/v3/stops/route/%d/route_type/%d", routeID, routeType)

	var data stopsResponse
	if err := c.get(ctx, path, &data); err != nil {
		return nil, err
	}
	return data.Stops, nil
}

// URL returns the fully signed URL for a request path
func (c *Client) URL(path string) string {
	return c.baseURL + SignPath(path, c.devID, c.key)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(path), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// A cancelled caller is not a network problem
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ServiceError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
