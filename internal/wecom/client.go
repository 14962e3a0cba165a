package wecom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	apperrors "github.com/kurosawa0120/wecom-dump/internal/errors"
)

// DefaultBaseURL is the production endpoint of the directory API
const DefaultBaseURL = "https://qyapi.weixin.qq.com"

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 12_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.6 Safari/605.1.15"

// Options configures a Client
type Options struct {
	// BaseURL overrides DefaultBaseURL, mainly for tests
	BaseURL string
	// Proxy is an optional proxy URL (http, https, socks5)
	Proxy string
	// ProxyUser and ProxyPassword must be supplied together, and only
	// alongside Proxy
	ProxyUser     string
	ProxyPassword string
	// UserAgent overrides the default browser user agent
	UserAgent string
}

// Client wraps outbound calls to the directory API with token injection
// and response decoding. It is safe for concurrent use once the token is
// installed.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client

	// The token is written once before any job starts and read by every
	// in-flight request afterwards.
	mu    sync.RWMutex
	token string
}

// NewClient builds a Client from the given options. Proxy credentials
// without a proxy URL, or one credential without the other, are rejected.
func NewClient(opts Options) (*Client, error) {
	if (opts.ProxyUser == "") != (opts.ProxyPassword == "") {
		return nil, apperrors.NewConfigError("proxy username and password must be supplied together")
	}
	if opts.ProxyUser != "" && opts.Proxy == "" {
		return nil, apperrors.NewConfigError("proxy credentials require a proxy URL")
	}

	// Requests are sparse and bursty, keeping idle connections around buys
	// nothing.
	transport := &http.Transport{
		DisableKeepAlives: true,
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("invalid proxy URL %q: %v", opts.Proxy, err))
		}
		if opts.ProxyUser != "" {
			proxyURL.User = url.UserPassword(opts.ProxyUser, opts.ProxyPassword)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Transport: transport},
	}, nil
}

// SetToken installs the access token for all subsequent calls, overwriting
// any existing one
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) currentToken() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return "", apperrors.NewNotAuthenticatedError()
	}
	return c.token, nil
}

// Authenticate exchanges the corp id and secret for an access token and
// installs it on success. A response without an access_token field is an
// authentication failure.
func (c *Client) Authenticate(ctx context.Context, corpID, corpSecret string) (*TokenResponse, error) {
	params := url.Values{}
	params.Set("corpid", corpID)
	params.Set("corpsecret", corpSecret)

	var resp TokenResponse
	if err := c.get(ctx, "/cgi-bin/gettoken", params, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken == nil {
		msg := "token endpoint returned no access token"
		if resp.ErrCode != nil {
			errmsg := ""
			if resp.ErrMsg != nil {
				errmsg = *resp.ErrMsg
			}
			msg = fmt.Sprintf("token endpoint returned errcode %d: %s", *resp.ErrCode, errmsg)
		}
		return nil, apperrors.NewAuthError(msg, nil)
	}

	c.SetToken(*resp.AccessToken)
	return &resp, nil
}

// ListAgents retrieves the basic info of all apps visible to the credential
func (c *Client) ListAgents(ctx context.Context) (*AgentList, error) {
	var resp AgentList
	if err := c.authedGet(ctx, "/cgi-bin/agent/list", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAgentDetail retrieves the full record of one agent
func (c *Client) GetAgentDetail(ctx context.Context, agentID uint32) (*AgentDetail, error) {
	params := url.Values{}
	params.Set("agentid", strconv.FormatUint(uint64(agentID), 10))

	var resp AgentDetail
	if err := c.authedGet(ctx, "/cgi-bin/agent/get", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListDepartments retrieves all departments the credential can see
func (c *Client) ListDepartments(ctx context.Context) (*DepartmentList, error) {
	var resp DepartmentList
	if err := c.authedGet(ctx, "/cgi-bin/department/list", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetDepartmentMembers retrieves the members of one department, optionally
// including members of sub-departments
func (c *Client) GetDepartmentMembers(ctx context.Context, departmentID uint32, fetchChild bool) (*DepartmentMemberList, error) {
	params := url.Values{}
	params.Set("department_id", strconv.FormatUint(uint64(departmentID), 10))
	if fetchChild {
		params.Set("fetch_child", "1")
	} else {
		params.Set("fetch_child", "0")
	}

	var resp DepartmentMemberList
	if err := c.authedGet(ctx, "/cgi-bin/user/list", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTags retrieves all contact tags
func (c *Client) ListTags(ctx context.Context) (*TagList, error) {
	var resp TagList
	if err := c.authedGet(ctx, "/cgi-bin/tag/list", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTagMembers retrieves the members attached to one tag
func (c *Client) GetTagMembers(ctx context.Context, tagID uint32) (*TagMemberList, error) {
	params := url.Values{}
	params.Set("tagid", strconv.FormatUint(uint64(tagID), 10))

	var resp TagMemberList
	if err := c.authedGet(ctx, "/cgi-bin/tag/get", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// authedGet issues a GET with the access token attached as a query
// parameter, failing fast if no token is installed
func (c *Client) authedGet(ctx context.Context, path string, params url.Values, result any) error {
	token, err := c.currentToken()
	if err != nil {
		return err
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", token)
	return c.get(ctx, path, params, result)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return apperrors.NewTransportError(fmt.Sprintf("invalid request URL for %s", path), err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return apperrors.NewTransportError(fmt.Sprintf("failed to build request for %s", path), err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewTransportError(fmt.Sprintf("request to %s failed", path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewTransportError(fmt.Sprintf("request to %s returned status %s", path, resp.Status), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return apperrors.NewDecodeError(fmt.Sprintf("failed to decode response from %s", path), err)
	}
	return nil
}
