/* client.go
 * Contains the HTTP client used to talk to the contest platform's REST api. All resource functions in this package
 * go through Client.do, which applies auth headers, throttling and envelope decoding
 * Authors: Gamers Bot contributors
 */

package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gamers-bot/api/shared"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const userAgent = "GamersBot/1.0"

// Client issues authenticated requests against the platform api
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Limiter *rate.Limiter
	Logger  zerolog.Logger
}

// envelope is the wrapper every platform response is sent in
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
}

// NewClient creates a Client for the api at baseURL.
// Preconditions: Receives the api base url (e.g. https://api.gamers.gg/api), request timeout, allowed requests per
// second and a logger. A non positive rps disables throttling
// Postconditions: Returns pointer to Client, or error if the base url is invalid
func NewClient(baseURL string, timeout time.Duration, rps float64, logger zerolog.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Limiter: limiter,
		Logger:  logger,
	}, nil
}

// do sends a single request and decodes the envelope's data into out. out may be nil for void responses.
// Preconditions: Receives context, credentials (may be empty), method, path relative to BaseURL, optional query and body
// Postconditions: Returns nil on a 2xx response, *APIError for any other status, or the transport error
func (c *Client) do(ctx context.Context, creds shared.Credentials, method string, path string, query url.Values, body any, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("X-Request-ID", requestID)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if creds.AccessToken != "" {
		request.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}

	start := time.Now()
	response, err := c.HTTP.Do(request)
	if err != nil {
		c.Logger.Warn().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("api request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	c.Logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", response.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	// Anything outside 2xx is an api error, the message is taken from the envelope when the body has one
	if response.StatusCode < 200 || response.StatusCode > 299 {
		apiErr := &APIError{Status: response.StatusCode, RequestID: requestID}
		var env envelope
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Message = env.Message
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decoding response envelope: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

// IsTransient reports whether a failed request is worth retrying: transport failures, 429 and 5xx responses.
// Context cancellation and every other api error are permanent
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}
	return true
}
