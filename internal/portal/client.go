package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const DefaultTimeout = 10 * time.Second

type BodyKind int

const (
	BodyJSON BodyKind = iota
	BodyText
)

// Body is either a decoded JSON value or the raw text of a response that
// was not valid JSON.
type Body struct {
	Kind BodyKind
	JSON any
	Text string
}

func JSONBody(v any) Body {
	return Body{Kind: BodyJSON, JSON: v}
}

func TextBody(s string) Body {
	return Body{Kind: BodyText, Text: s}
}

func (b Body) Object() (map[string]any, bool) {
	if b.Kind != BodyJSON {
		return nil, false
	}
	obj, ok := b.JSON.(map[string]any)
	return obj, ok
}

// Summary is a short printable form of the body for log lines.
func (b Body) Summary() string {
	var s string
	if b.Kind == BodyText {
		s = b.Text
	} else {
		raw, err := json.Marshal(b.JSON)
		if err != nil {
			return fmt.Sprintf("%v", b.JSON)
		}
		s = string(raw)
	}
	return truncateText(s, 80)
}

type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header
}

// LoadingIndicator is told when a request starts and when it finishes,
// whatever the outcome.
type LoadingIndicator interface {
	SetLoading(loading bool)
}

type nopIndicator struct{}

func (nopIndicator) SetLoading(bool) {}

type Client struct {
	HTTP          *http.Client
	Timeout       time.Duration
	RetryAttempts int
	Loading       LoadingIndicator
}

func NewClient(timeout time.Duration, retryAttempts int) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTP:          &http.Client{},
		Timeout:       timeout,
		RetryAttempts: retryAttempts,
		Loading:       nopIndicator{},
	}
}

// Call performs a single request. RetryAttempts is carried for
// configuration parity but never acted on: a failed call fails.
func (c *Client) Call(ctx context.Context, r Request) (Body, error) {
	loading := c.Loading
	if loading == nil {
		loading = nopIndicator{}
	}
	loading.SetLoading(true)
	defer loading.SetLoading(false)

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target, err := buildURL(r.URL, r.Query)
	if err != nil {
		return Body{}, &Error{Code: ErrValidation, Message: "invalid request url", Err: err}
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return Body{}, &Error{Code: ErrNetwork, Message: "failed to create request", Err: err}
	}
	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	glog.V(1).Infof("%s %s (timeout %s, retries configured %d)", method, target, timeout, c.RetryAttempts)

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Body{}, &Error{Code: ErrTimeout, Message: "请求超时", Err: err}
		}
		return Body{}, &Error{Code: ErrNetwork, Err: errors.Wrapf(err, "%s %s", method, r.URL)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return Body{}, &Error{Code: ErrHTTPStatus, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Body{}, &Error{Code: ErrTimeout, Message: "请求超时", Err: err}
		}
		return Body{}, &Error{Code: ErrNetwork, Err: errors.Wrap(err, "failed to read response body")}
	}

	glog.V(2).Infof("%s %s -> %d (%d bytes)", method, target, resp.StatusCode, len(raw))

	return parseBody(raw), nil
}

// parseBody tries JSON first and falls back to the raw text.
func parseBody(raw []byte) Body {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err == nil && !dec.More() {
		return JSONBody(v)
	}
	return TextBody(string(raw))
}

func buildURL(base string, query url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if len(query) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for key, values := range query {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
