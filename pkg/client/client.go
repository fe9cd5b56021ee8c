// Package client provides an authenticated HTTP client for the provider's REST API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sigaihealth/vercelsourcerecover/pkg/models"
	"github.com/sigaihealth/vercelsourcerecover/pkg/protocol"
)

// DefaultBaseURL is the provider's API host.
const DefaultBaseURL = "https://vercel.com"

// maxErrorBody bounds how much of an error response is read for diagnostics.
const maxErrorBody = 4 << 10

var uidPattern = regexp.MustCompile(`^[a-f0-9]{40}$`)

// IsUID reports whether id is a 40 character lowercase hex content identifier.
func IsUID(id string) bool {
	return uidPattern.MatchString(id)
}

// Client provides authenticated reads against the provider API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	// Timeout bounds each request. Zero leaves the transport defaults in place.
	Timeout   time.Duration
	AuthToken string
}

// New creates a new client. AuthToken is normalized with NormalizeToken.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		authToken: NormalizeToken(cfg.AuthToken),
	}
}

// AuthToken returns the normalized Authorization header value.
func (c *Client) AuthToken() string {
	return c.authToken
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned %d", e.URL, e.StatusCode)
}

// AsStatus checks if an error is a StatusError and returns it.
func AsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Content is the body of a successful read.
type Content struct {
	Body        []byte
	ContentType string
	// Encoding is an explicit transfer encoding announced by the server, if any.
	Encoding string
}

// IsJSON reports whether the server labelled the body as JSON.
func (ct *Content) IsJSON() bool {
	return strings.Contains(ct.ContentType, "json")
}

// Get issues an authenticated GET. authorization overrides the client's token
// when non-empty.
func (c *Client) Get(ctx context.Context, rawURL, authorization string) (*Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if authorization == "" {
		authorization = c.authToken
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	req.Header.Set("Accept", "application/json, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        rawURL,
			Message:    readErrorMessage(resp.Body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}

	encoding := resp.Header.Get("X-Content-Encoding")
	if encoding == "" {
		encoding = resp.Header.Get("Content-Transfer-Encoding")
	}

	return &Content{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Encoding:    strings.ToLower(strings.TrimSpace(encoding)),
	}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v interface{}) error {
	content, err := c.Get(ctx, rawURL, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content.Body, v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// readErrorMessage extracts a short diagnostic from an error body.
func readErrorMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if len(data) == 0 {
		return ""
	}
	var errResp protocol.ErrorResponse
	if json.Unmarshal(data, &errResp) == nil {
		if msg := errResp.Text(); msg != "" {
			return msg
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

// Teams lists the teams visible to the token.
func (c *Client) Teams(ctx context.Context) ([]models.Team, error) {
	var resp protocol.TeamsResponse
	if err := c.getJSON(ctx, c.baseURL+"/api/v2/teams", &resp); err != nil {
		return nil, err
	}
	return resp.Teams, nil
}

// Deployments lists deployments, scoped to teamID when set.
func (c *Client) Deployments(ctx context.Context, teamID string) ([]models.Deployment, error) {
	var resp protocol.DeploymentsResponse
	u := AppendTeamID(c.baseURL+"/api/v6/deployments", teamID, "?")
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	return resp.Deployments, nil
}

// DeploymentFilesURL is the structural listing endpoint of a deployment.
func (c *Client) DeploymentFilesURL(deploymentID, teamID string) string {
	return AppendTeamID(c.baseURL+"/api/v2/deployments/"+url.PathEscape(deploymentID)+"/files", teamID, "?")
}

// DeploymentFiles returns the raw listing body of a deployment. The body is
// either a flat list or a tree; see the tree package.
func (c *Client) DeploymentFiles(ctx context.Context, deploymentID, teamID string) ([]byte, error) {
	content, err := c.Get(ctx, c.DeploymentFilesURL(deploymentID, teamID), "")
	if err != nil {
		return nil, err
	}
	return content.Body, nil
}

// FileURL builds the content endpoint for a file. A UID addresses the file
// directly; anything else is sent as the path relative to the deployment root.
func (c *Client) FileURL(deploymentID, identifier, relPath, teamID string) string {
	base := c.baseURL + "/api/v8/deployments/" + url.PathEscape(deploymentID) + "/files"
	if IsUID(identifier) {
		return AppendTeamID(base+"/"+identifier, teamID, "?")
	}
	return AppendTeamID(base+"?path="+escapeComponent(relPath), teamID, "&")
}

// escapeComponent escapes a query value with %20 for spaces.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
