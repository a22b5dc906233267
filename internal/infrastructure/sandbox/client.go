package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/forgeapp/forge/internal/config"
	"github.com/forgeapp/forge/pkg/logger"
)

const (
	// MaxContextFiles bounds the file list sent to the model.
	MaxContextFiles = 10
)

var (
	ErrNotConfigured = errors.New("sandbox files endpoint not configured")

	sourceExtensions = map[string]bool{
		".jsx": true,
		".tsx": true,
		".js":  true,
		".ts":  true,
	}
)

type FilesResponse struct {
	Success bool              `json:"success"`
	Files   map[string]string `json:"files"`
	Error   string            `json:"error,omitempty"`
}

// Client reads the current project files from the sandbox provider.
type Client struct {
	client  *http.Client
	baseURL string
}

func NewClient() *Client {
	return NewClientWithURL(config.GetSandboxFilesURL(), config.GetSandboxFilesTimeout())
}

func NewClientWithURL(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		logger.Warn(logger.SERVICE, "Sandbox files endpoint not configured - follow-ups run without file context")
	} else {
		logger.Info(logger.SERVICE, "Initialising sandbox files client at %s", baseURL)
	}

	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Files returns every path -> content pair of the sandbox.
func (c *Client) Files(ctx context.Context, sandboxID string) (map[string]string, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid sandbox files url: %w", err)
	}
	if sandboxID != "" {
		q := endpoint.Query()
		q.Set("sandboxId", sandboxID)
		endpoint.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sandbox files: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sandbox files endpoint returned status %d", resp.StatusCode)
	}

	var body FilesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode sandbox files: %w", err)
	}
	if !body.Success {
		return nil, fmt.Errorf("sandbox files endpoint reported failure: %s", body.Error)
	}

	return body.Files, nil
}

// SourceFiles returns up to MaxContextFiles source file paths in lexical order.
func (c *Client) SourceFiles(ctx context.Context, sandboxID string) ([]string, error) {
	files, err := c.Files(ctx, sandboxID)
	if err != nil {
		return nil, err
	}
	return FilterSourcePaths(files), nil
}

func FilterSourcePaths(files map[string]string) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		if sourceExtensions[strings.ToLower(path.Ext(p))] {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	if len(paths) > MaxContextFiles {
		paths = paths[:MaxContextFiles]
	}
	return paths
}
