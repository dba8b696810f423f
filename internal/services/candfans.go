package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/cfx/internal/models"
	"github.com/desertthunder/cfx/internal/shared"
)

const (
	defaultAPIURL  string = "https://candfans.jp"
	defaultReferer string = "https://candfans.jp/"

	getUserPath     = "/api/user/get-users"
	getTimelinePath = "/api/contents/get-timeline"
)

// CandfansService implements [FeedService] against the candfans.jp API.
type CandfansService struct {
	baseURL    string
	referer    string
	cookie     string
	xsrfToken  string
	httpClient *http.Client
}

// CandfansOpts configures a [CandfansService]. Empty fields fall back to defaults.
type CandfansOpts struct {
	BaseURL    string
	Referer    string
	Cookie     string
	XSRFToken  string
	HTTPClient *http.Client
}

// NewCandfansService creates a feed client with the given session credentials.
func NewCandfansService(opts CandfansOpts) *CandfansService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultAPIURL
	}
	if opts.Referer == "" {
		opts.Referer = defaultReferer
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &CandfansService{
		baseURL:    opts.BaseURL,
		referer:    opts.Referer,
		cookie:     opts.Cookie,
		xsrfToken:  opts.XSRFToken,
		httpClient: opts.HTTPClient,
	}
}

type getUserData struct {
	User  models.Account    `json:"user"`
	Plans []json.RawMessage `json:"plans"`
}

// GetUser resolves userCode via GET /api/user/get-users.
func (c *CandfansService) GetUser(ctx context.Context, userCode string) (*models.Account, error) {
	query := url.Values{"user_code": {userCode}}

	data, err := getJSON[getUserData](ctx, c, getUserPath, query)
	if err != nil {
		return nil, err
	}

	account := data.User
	return &account, nil
}

// GetTimeline fetches one page via GET /api/contents/get-timeline.
func (c *CandfansService) GetTimeline(ctx context.Context, userID, page int) ([]models.Post, error) {
	query := url.Values{
		"user_id": {strconv.Itoa(userID)},
		"page":    {strconv.Itoa(page)},
	}

	posts, err := getJSON[[]models.Post](ctx, c, getTimelinePath, query)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

func (c *CandfansService) newRequest(ctx context.Context, endpoint string, query url.Values) (*http.Request, error) {
	apiURL := c.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &shared.TransportError{Op: "request", URL: apiURL, Err: err}
	}

	req.Header.Set("Cookie", c.cookie)
	req.Header.Set("X-Xsrf-Token", c.xsrfToken)
	req.Header.Set("Referer", c.referer)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// getJSON performs a GET and decodes the response envelope into T.
func getJSON[T any](ctx context.Context, c *CandfansService, endpoint string, query url.Values) (T, error) {
	var zero T

	req, err := c.newRequest(ctx, endpoint, query)
	if err != nil {
		return zero, err
	}
	target := req.URL.String()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, &shared.TransportError{Op: "request", URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &shared.TransportError{Op: "read", URL: target, StatusCode: resp.StatusCode, Err: err}
	}

	return decodeEnvelope[T](body, target, resp.StatusCode)
}

type successEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

var errNoEnvelope = errors.New("response has neither a data member nor an error envelope")

// decodeEnvelope tries the success shape first, then the error shape.
//
// A bare JSON array is accepted as the data member itself.
func decodeEnvelope[T any](body []byte, target string, status int) (T, error) {
	var zero T

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var data T
		if err := json.Unmarshal(trimmed, &data); err != nil {
			return zero, &shared.TransportError{Op: "decode", URL: target, StatusCode: status, Err: err}
		}
		return data, nil
	}

	var ok successEnvelope
	if err := json.Unmarshal(trimmed, &ok); err != nil {
		return zero, &shared.TransportError{Op: "decode", URL: target, StatusCode: status, Err: err}
	}

	if ok.Data != nil {
		var data T
		if err := json.Unmarshal(ok.Data, &data); err != nil {
			return zero, &shared.TransportError{
				Op: "decode", URL: target, StatusCode: status,
				Err: fmt.Errorf("data member: %w", err),
			}
		}
		return data, nil
	}

	var env errorEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return zero, &shared.TransportError{Op: "decode", URL: target, StatusCode: status, Err: err}
	}

	remote := env.toRemoteError()
	if remote.Code == "" && remote.Message == "" {
		return zero, &shared.TransportError{Op: "decode", URL: target, StatusCode: status, Err: errNoEnvelope}
	}

	return zero, remote
}

// errorEnvelope accepts "code" as either a string or a number.
type errorEnvelope struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Trace   []string        `json:"trace"`
}

func (e errorEnvelope) toRemoteError() *shared.RemoteError {
	code := string(e.Code)
	if s, err := strconv.Unquote(code); err == nil {
		code = s
	}
	if code == "null" {
		code = ""
	}

	return &shared.RemoteError{
		Code:    code,
		Message: e.Message,
		Errors:  e.Errors,
		Trace:   e.Trace,
	}
}
