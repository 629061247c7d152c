package skybase

import (
	"fmt"
	"time"

	"github.com/imroc/req/v3"
	"github.com/skybasehq/skybase-go/internal/version"
)

const HeaderAPIKey = "X-API-Key"

// Client is the entry point to the document-store and blob-store APIs.
type Client struct {
	http      *req.Client
	config    *Config
	projectID string
}

// New creates a new Client from the given config.
func New(config *Config) (*Client, error) {
	if config == nil {
		return nil, ErrNoProjectKey
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	id, err := projectID(config.ProjectKey)
	if err != nil {
		return nil, err
	}

	client := req.C().
		SetUserAgent(version.UserAgent()).
		SetCommonHeader(HeaderAPIKey, config.ProjectKey).
		SetCommonErrorResult(&apiError{}).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	if config.RetryCount > 0 {
		client.SetCommonRetryCount(config.RetryCount).
			SetCommonRetryFixedInterval(1 * time.Second)
	}
	if config.Debug {
		client.EnableDumpAll().EnableDebugLog()
	}

	return &Client{
		http:      client,
		config:    config,
		projectID: id,
	}, nil
}

// Base returns a handle on the named document store.
func (c *Client) Base(name string) *Base {
	return &Base{
		Name:   name,
		client: c.http,
		prefix: fmt.Sprintf("%s/%s/%s", c.config.baseEndpoint(), c.projectID, name),
	}
}

// Drive returns a handle on the named blob store.
func (c *Client) Drive(name string) *Drive {
	return &Drive{
		Name:   name,
		client: c.http,
		prefix: fmt.Sprintf("%s/%s/%s", c.config.driveEndpoint(), c.projectID, name),
	}
}

// Close terminates idle connections held by the client.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}
