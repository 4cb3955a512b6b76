package mstdn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"tidepool/internal/metrics"
)

// Doer is the subset of http.Client used by the request layer.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues typed requests against an Instance. It rate-limits outbound
// calls but never retries; retry policy belongs to callers.
type Client struct {
	httpClient Doer
	limiter    *rate.Limiter
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    newDefaultLimiter(),
	}
}

// Endpoint names one remote API call target.
type Endpoint struct {
	Method string
	Path   string
}

var (
	VerifyCredentials = Endpoint{http.MethodGet, "/api/v1/accounts/verify_credentials"}
	CreateApp         = Endpoint{http.MethodPost, "/api/v1/apps"}
	LookupAccount     = Endpoint{http.MethodGet, "/api/v1/accounts/lookup"}
	HomeTimeline      = Endpoint{http.MethodGet, "/api/v1/timelines/home"}
	ObtainToken       = Endpoint{http.MethodPost, "/oauth/token"}
)

// AccountStatuses targets the status listing of one account.
func AccountStatuses(accountID string) Endpoint {
	return Endpoint{http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/statuses", url.PathEscape(accountID))}
}

// GetStatus targets a single status by id.
func GetStatus(statusID string) Endpoint {
	return Endpoint{http.MethodGet, fmt.Sprintf("/api/v1/statuses/%s", url.PathEscape(statusID))}
}

// AppRegistration is the response of CreateApp.
type AppRegistration struct {
	ID           string `json:"id"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Token is the response of ObtainToken.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	CreatedAt   int64  `json:"created_at"`
}

// Send issues one call and decodes a 2xx response into T. Non-2xx responses
// come back as *APIError with the body captured; network and decode failures
// as *TransportError.
func Send[T any](ctx context.Context, c *Client, ep Endpoint, body RequestBody, inst Instance) (T, error) {
	var out T
	u := inst.BaseURL + ep.Path
	if q := body.query(); len(q) > 0 {
		u += "?" + q.Encode()
	}
	rd, ctype := body.reader()
	req, err := http.NewRequestWithContext(ctx, ep.Method, u, rd)
	if err != nil {
		return out, &TransportError{Op: "build", Err: err}
	}
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	if inst.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+inst.AuthToken)
	}
	req.Header.Set("Accept", "application/json")
	if err := c.limiter.Wait(ctx); err != nil {
		return out, &TransportError{Op: "throttle", Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, &TransportError{Op: "send", Err: err}
	}
	defer resp.Body.Close()
	metrics.IncAPIRequest(ep.Path, strconv.Itoa(resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		kind := kindForStatus(resp.StatusCode)
		metrics.IncAPIError(kind.String())
		return out, &APIError{Kind: kind, StatusCode: resp.StatusCode, body: b}
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, &TransportError{Op: "decode", Err: err}
	}
	return out, nil
}

// BuildAuthorizeURL renders the user-facing OAuth authorize URL for inst.
func BuildAuthorizeURL(inst Instance, params map[string]string) string {
	v := url.Values{}
	for k, val := range params {
		v.Set(k, val)
	}
	return inst.BaseURL + "/oauth/authorize?" + v.Encode()
}
