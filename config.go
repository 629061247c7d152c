package skybase

import "strings"

const (
	DefaultBaseEndpoint  = "https://database.skybase.io/v1"
	DefaultDriveEndpoint = "https://drive.skybase.io/v1"
)

// Config is the configuration for a Client. The SDK never reads ambient
// process state; credentials and endpoints come from here.
type Config struct {
	// ProjectKey is the API key, formatted "{projectID}_{secret}". Required.
	ProjectKey string

	// BaseEndpoint overrides the document-store endpoint. Optional.
	BaseEndpoint string

	// DriveEndpoint overrides the blob-store endpoint. Optional.
	DriveEndpoint string

	// RetryCount is handed to the underlying transport. Zero disables retries.
	RetryCount int

	// Debug enables request/response dumps on the underlying transport.
	Debug bool
}

func (c *Config) Validate() error {
	if c.ProjectKey == "" {
		return ErrNoProjectKey
	}
	if _, err := projectID(c.ProjectKey); err != nil {
		return err
	}
	return nil
}

func (c *Config) baseEndpoint() string {
	if c.BaseEndpoint != "" {
		return strings.TrimRight(c.BaseEndpoint, "/")
	}
	return DefaultBaseEndpoint
}

func (c *Config) driveEndpoint() string {
	if c.DriveEndpoint != "" {
		return strings.TrimRight(c.DriveEndpoint, "/")
	}
	return DefaultDriveEndpoint
}

// projectID extracts the project identifier prefix from a project key.
func projectID(key string) (string, error) {
	id, rest, ok := strings.Cut(key, "_")
	if !ok || id == "" || rest == "" {
		return "", ErrInvalidProjectKey
	}
	return id, nil
}
