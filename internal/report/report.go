// Package report sends detection results to a collection endpoint.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/example/webview-detector/internal/detector"
)

const maxResponseBytes = 1 << 20

// Screen is the device screen size in CSS pixels.
type Screen struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Payload is the JSON document posted to the endpoint.
type Payload struct {
	ID         string          `json:"id"`
	Result     detector.Result `json:"result"`
	URL        string          `json:"url"`
	Referrer   string          `json:"referrer"`
	Screen     Screen          `json:"screen"`
	PixelRatio float64         `json:"pixelRatio"`
	Timestamp  time.Time       `json:"timestamp"`
}

// BuildPayload combines a result with the page metadata from its environment.
func BuildPayload(env detector.Environment, result detector.Result, now time.Time) Payload {
	return Payload{
		ID:         uuid.NewString(),
		Result:     result,
		URL:        env.Navigation.URL,
		Referrer:   env.Navigation.Referrer,
		Screen:     Screen{Width: env.Geometry.ScreenWidth, Height: env.Geometry.ScreenHeight},
		PixelRatio: env.Geometry.DevicePixelRatio,
		Timestamp:  now.UTC(),
	}
}

// Outcome is what a send produced. Delivery failures land in Error, never in a returned error.
type Outcome struct {
	ReportID   string                 `json:"reportId"`
	StatusCode int                    `json:"statusCode,omitempty"`
	Response   map[string]interface{} `json:"response,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Attempts   int                    `json:"attempts"`
}

// OK reports whether the endpoint accepted the payload.
func (o Outcome) OK() bool {
	return o.Error == ""
}

// Client posts payloads to one endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	backoff    func() retry.Backoff
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithRetries sets how many times a transient failure is retried and the base delay.
func WithRetries(max uint64, base time.Duration) Option {
	return func(cl *Client) {
		cl.backoff = func() retry.Backoff {
			return retry.WithMaxRetries(max, retry.NewExponential(base))
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// NewClient returns a client for endpoint with three retries starting at 200ms.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     zap.NewNop(),
	}
	WithRetries(3, 200*time.Millisecond)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var errRetryableStatus = errors.New("retryable status")

// Send posts the payload and parses the JSON response.
func (c *Client) Send(ctx context.Context, payload Payload) Outcome {
	out := Outcome{ReportID: payload.ID}

	body, err := json.Marshal(payload)
	if err != nil {
		out.Error = fmt.Sprintf("encode payload: %v", err)
		return out
	}

	err = retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		out.Attempts++
		status, parsed, err := c.post(ctx, body)
		out.StatusCode = status
		out.Response = parsed
		if err != nil {
			c.logger.Debug("report attempt failed", zap.Int("attempt", out.Attempts), zap.Error(err))
			return retry.RetryableError(err)
		}
		if status == http.StatusTooManyRequests || status >= 500 {
			return retry.RetryableError(fmt.Errorf("%w: %d", errRetryableStatus, status))
		}
		if status >= 400 {
			return fmt.Errorf("endpoint rejected report: status %d", status)
		}
		return nil
	})
	if err != nil {
		out.Error = err.Error()
		c.logger.Warn("report not delivered",
			zap.String("reportId", payload.ID),
			zap.Int("attempts", out.Attempts),
			zap.Error(err),
		)
	}

	return out
}

func (c *Client) post(ctx context.Context, body []byte) (int, map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, err
	}

	parsed := map[string]interface{}{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			parsed = map[string]interface{}{"raw": string(data)}
		}
	}
	return resp.StatusCode, parsed, nil
}

// SendAsync sends in the background and delivers the outcome on the returned channel.
func (c *Client) SendAsync(ctx context.Context, payload Payload) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		ch <- c.Send(ctx, payload)
		close(ch)
	}()
	return ch
}

// DetectAndSend classifies env synchronously and then posts the result.
func (c *Client) DetectAndSend(ctx context.Context, engine *detector.Engine, env detector.Environment) (detector.Result, Outcome) {
	result := engine.Detect(env)
	return result, c.Send(ctx, BuildPayload(env, result, time.Now()))
}
