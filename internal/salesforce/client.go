package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"sfmcp/pkg/logging"
)

const (
	defaultAPIVersion = "59.0"
	defaultDomain     = "login"
	defaultTimeout    = 60 * time.Second
)

// Options configures a Client.
type Options struct {
	Username      string
	Password      string
	SecurityToken string

	// Domain is "login", "test", a My Domain prefix, or a full host name.
	Domain string
	// LoginURL overrides the login base URL derived from Domain.
	LoginURL string
	// InstanceURL overrides the instance URL returned by login.
	InstanceURL string
	APIVersion  string

	ClientID     string
	ClientSecret string

	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to one Salesforce org. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	apiVersion  string
	instanceURL string
	auth        authenticator

	mu      sync.Mutex
	session *Session
}

// NewClient creates a client. No network call is made until the first request.
func NewClient(opts Options) *Client {
	if opts.APIVersion == "" {
		opts.APIVersion = defaultAPIVersion
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	loginURL := strings.TrimRight(opts.LoginURL, "/")
	if loginURL == "" {
		loginURL = LoginURLForDomain(opts.Domain)
	}

	var auth authenticator
	if opts.ClientID != "" {
		auth = newOAuthLogin(httpClient, loginURL, opts.ClientID, opts.ClientSecret,
			opts.Username, opts.Password, opts.SecurityToken)
	} else {
		auth = &soapLogin{
			httpClient: httpClient,
			loginURL:   loginURL,
			apiVersion: opts.APIVersion,
			username:   opts.Username,
			password:   opts.Password,
			token:      opts.SecurityToken,
		}
	}

	return &Client{
		httpClient:  httpClient,
		apiVersion:  strings.TrimPrefix(opts.APIVersion, "v"),
		instanceURL: strings.TrimRight(opts.InstanceURL, "/"),
		auth:        auth,
	}
}

// salesforceHostSuffixes mark a domain setting that is already a full host.
var salesforceHostSuffixes = []string{".salesforce.com", ".force.com"}

// LoginURLForDomain maps a domain setting to a login base URL. Short forms
// such as "test" or the My Domain prefix "acme.my" get ".salesforce.com".
func LoginURLForDomain(domain string) string {
	if domain == "" {
		domain = defaultDomain
	}
	if strings.HasPrefix(domain, "https://") || strings.HasPrefix(domain, "http://") {
		return strings.TrimRight(domain, "/")
	}
	host := strings.TrimRight(domain, "/")
	for _, suffix := range salesforceHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return "https://" + host
		}
	}
	return fmt.Sprintf("https://%s.salesforce.com", host)
}

// Login establishes a new session, replacing any cached one.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) (*Session, error) {
	start := time.Now()
	sess, err := c.auth.login(ctx)
	if err != nil {
		logging.Error("Salesforce", err, "Login failed")
		return nil, err
	}
	if c.instanceURL != "" {
		sess.InstanceURL = c.instanceURL
	}
	c.session = sess
	logging.Info("Salesforce", "Logged in to %s in %s", sess.InstanceURL, time.Since(start).Round(time.Millisecond))
	return sess, nil
}

// currentSession returns the cached session, logging in if there is none.
func (c *Client) currentSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session, nil
	}
	return c.loginLocked(ctx)
}

// invalidate drops sess if it is still the cached session.
func (c *Client) invalidate(sess *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == sess {
		c.session = nil
	}
}

// DescribeGlobal lists all object types visible to the user.
func (c *Client) DescribeGlobal(ctx context.Context) (*DescribeGlobalResult, error) {
	var out DescribeGlobalResult
	if err := c.get(ctx, "/sobjects/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DescribeSObject describes the fields of one object type.
func (c *Client) DescribeSObject(ctx context.Context, name string) (*SObjectDescribe, error) {
	var out SObjectDescribe
	if err := c.get(ctx, "/sobjects/"+url.PathEscape(name)+"/describe/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query runs a SOQL query and returns the first batch of records.
func (c *Client) Query(ctx context.Context, soql string) (*QueryResult, error) {
	var out QueryResult
	if err := c.get(ctx, "/query/", url.Values{"q": {soql}}, &out); err != nil {
		return nil, err
	}
	if !out.Done {
		logging.Debug("Salesforce", "Query returned %d of %d records; remaining batches are not fetched", len(out.Records), out.TotalSize)
	}
	return &out, nil
}

// Close releases idle HTTP connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	sess, err := c.currentSession(ctx)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/services/data/v%s%s", sess.InstanceURL, c.apiVersion, path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("salesforce new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("salesforce request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("salesforce read response %s: %w", path, err)
	}
	logging.Debug("Salesforce", "GET %s -> %d (%s)", path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp.StatusCode, body)
		if apiErr.IsUnauthorized() {
			c.invalidate(sess)
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("salesforce decode response %s: %w", path, err)
	}
	return nil
}
