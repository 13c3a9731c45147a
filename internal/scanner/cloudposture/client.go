// Package cloudposture talks to the Trend Vision One Cloud Posture template
// scanner API.
package cloudposture

import (
	"bytes"
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

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/scanner"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

const (
	scanPath      = "v3.0/cloudPosture/scanTemplate"
	contentType   = "application/json;charset=utf-8"
	statusFailure = "FAILURE"

	// maxErrorBody caps how much of an unexpected response body ends up in errors.
	maxErrorBody = 4 << 10
)

// DefaultRegion is used when neither a region nor an endpoint is configured.
const DefaultRegion = "us"

// Regions maps a region name to the regional API base URL.
var Regions = map[string]string{
	"us":  "https://api.xdr.trendmicro.com",
	"eu":  "https://api.eu.xdr.trendmicro.com",
	"jp":  "https://api.xdr.trendmicro.co.jp",
	"sg":  "https://api.sg.xdr.trendmicro.com",
	"au":  "https://api.au.xdr.trendmicro.com",
	"in":  "https://api.in.xdr.trendmicro.com",
	"mea": "https://api.mea.xdr.trendmicro.com",
}

// ErrMissingAPIKey is returned when the client is created without credentials.
var ErrMissingAPIKey = errors.New("missing API key: set v1_apikey")

// Options configure a Client.
type Options struct {
	APIKey    string
	AccountID string
	// Endpoint overrides Region when set. It must carry a scheme and host and
	// no path, e.g. https://api.eu.xdr.trendmicro.com.
	Endpoint string
	Region   string
	// Timeout applies per request; 0 means no client-side timeout.
	Timeout   time.Duration
	UserAgent string
	// HTTPClient replaces the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client implements scanner.Scanner over HTTP.
type Client struct {
	requestURL *url.URL
	apiKey     string
	accountID  string
	userAgent  string
	client     *http.Client
}

var _ scanner.Scanner = (*Client)(nil)

// New validates opts and returns a ready client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	base, err := ResolveEndpoint(opts.Region, opts.Endpoint)
	if err != nil {
		return nil, err
	}
	reqURL, err := parseBaseURL(base)
	if err != nil {
		return nil, err
	}
	reqURL.Path = "/" + scanPath

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "templatescan"
	}
	return &Client{
		requestURL: reqURL,
		apiKey:     opts.APIKey,
		accountID:  opts.AccountID,
		userAgent:  ua,
		client:     hc,
	}, nil
}

// ResolveEndpoint picks the API base URL: an explicit endpoint wins, then the
// region table, then DefaultRegion.
func ResolveEndpoint(region, endpoint string) (string, error) {
	if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
		return endpoint, nil
	}
	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	base, ok := Regions[region]
	if !ok {
		return "", fmt.Errorf("unknown region %q", region)
	}
	return base, nil
}

func parseBaseURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	if u.Scheme == "" || u.Host == "" || u.Path != "" {
		return nil, errors.New("please define the endpoint with a scheme and without path, e.g. `https://api.xdr.trendmicro.com`")
	}
	return u, nil
}

// Name implements scanner.Scanner.
func (c *Client) Name() string { return "vision-one-cloud-posture" }

// URL returns the full scan URL, for logging.
func (c *Client) URL() string { return c.requestURL.String() }

type scanRequest struct {
	Type      scanner.TemplateType `json:"type"`
	Content   string               `json:"content"`
	AccountID string               `json:"accountId,omitempty"`
}

type scanResponse struct {
	ScanResults []types.Finding `json:"scanResults"`
}

// Scan implements scanner.Scanner. Checks with status FAILURE are returned in
// Failure, every other check in Success.
func (c *Client) Scan(ctx context.Context, tmpl scanner.Template) (types.ScanResult, error) {
	typ := tmpl.Type
	if typ == "" {
		typ = scanner.TypeCloudFormation
	}
	body, err := json.Marshal(scanRequest{Type: typ, Content: tmpl.Contents, AccountID: c.accountID})
	if err != nil {
		return types.ScanResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL.String(), bytes.NewReader(body))
	if err != nil {
		return types.ScanResult{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return types.ScanResult{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	sr, err := decodeScanResponse(resp)
	if err != nil {
		return types.ScanResult{}, err
	}
	return split(sr.ScanResults), nil
}

func split(checks []types.Finding) types.ScanResult {
	res := types.ScanResult{
		Success: []types.Finding{},
		Failure: []types.Finding{},
	}
	for _, c := range checks {
		if strings.EqualFold(c.Status, statusFailure) {
			res.Failure = append(res.Failure, c)
			continue
		}
		res.Success = append(res.Success, c)
	}
	return res
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" || e.Message != "":
		return fmt.Sprintf("status code: %d, code: %s, message: %s", e.StatusCode, e.Code, e.Message)
	case e.Body != "":
		return fmt.Sprintf("status code: %d, body: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("status code: %d", e.StatusCode)
}

func decodeScanResponse(resp *http.Response) (scanResponse, error) {
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	isJSON := mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if !isJSON {
			return scanResponse{}, fmt.Errorf("expected `application/json` content type, got: %q", mediaType)
		}
		var sr scanResponse
		if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
			return scanResponse{}, fmt.Errorf("decoding json response failed: %w", err)
		}
		return sr, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return scanResponse{}, err
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if isJSON {
		var problem struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(raw, &problem) == nil {
			apiErr.Code = problem.Error.Code
			apiErr.Message = problem.Error.Message
		}
	}
	if apiErr.Code == "" && apiErr.Message == "" {
		apiErr.Body = strings.TrimSpace(string(raw))
	}
	return scanResponse{}, apiErr
}
