package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bryanwahyu/offerguard/internal/domain/analysis"
	"github.com/bryanwahyu/offerguard/internal/domain/submission"
)

const (
	resultPath      = "/analysis/result/"
	maxResponseSize = 4 << 20
)

// Client talks to the remote scoring service
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// New creates a scoring client. timeout bounds a whole call; zero means no
// limit beyond the transport's own.
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Transport: newTransport(),
			Timeout:   timeout,
		},
	}
}

// WithHTTPClient swaps the underlying client (tests use httptest's)
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Analyze submits the input and unwraps {"result": ...}
func (c *Client) Analyze(ctx context.Context, in submission.Input, token string) (*analysis.Result, error) {
	req, err := NewAnalyzeRequest(ctx, c.baseURL, in, token)
	if err != nil {
		return nil, err
	}
	return c.do(req, "result")
}

// Fetch loads a stored analysis and unwraps {"analysis": ...}
func (c *Client) Fetch(ctx context.Context, analysisID, token string) (*analysis.Result, error) {
	u := c.baseURL + resultPath + url.PathEscape(analysisID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", AuthHeader(token))
	return c.do(req, "analysis")
}

func (c *Client) do(req *http.Request, envelopeKey string) (*analysis.Result, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &submission.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, envelopeKey)
}

// decodeEnvelope checks the content type, then the status, then unwraps the
// payload under key. A non-JSON answer (an HTML error page from a proxy,
// say) is never parsed.
func decodeEnvelope(resp *http.Response, key string) (*analysis.Result, error) {
	ct := resp.Header.Get("Content-Type")
	if !isJSON(ct) {
		return nil, &submission.MalformedResponseError{ContentType: ct}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &submission.NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &submission.MalformedResponseError{ContentType: ct, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &submission.ServiceError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(env),
		}
	}

	raw, ok := env[key]
	if !ok || string(raw) == "null" {
		return nil, &submission.MalformedResponseError{ContentType: ct, Err: fmt.Errorf("missing %q in response", key)}
	}
	var result analysis.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &submission.MalformedResponseError{ContentType: ct, Err: err}
	}
	return &result, nil
}

func errorMessage(env map[string]json.RawMessage) string {
	raw, ok := env["error"]
	if !ok {
		return submission.DefaultServiceMessage
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil || strings.TrimSpace(msg) == "" {
		return submission.DefaultServiceMessage
	}
	return msg
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// IsTimeout reports whether a NetworkError came from a deadline
func IsTimeout(err error) bool {
	var netErr *submission.NetworkError
	if !errors.As(err, &netErr) {
		return false
	}
	if errors.Is(netErr.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(netErr.Err, &te) && te.Timeout()
}
