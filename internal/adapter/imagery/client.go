// Package imagery talks to the satellite imagery export service that
// renders monthly median composites over an area of interest. Exports run
// server-side; this client only submits tasks and polls their state.
package imagery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Task states reported by the export service.
const (
	TaskPending   = "PENDING"
	TaskRunning   = "RUNNING"
	TaskCompleted = "COMPLETED"
	TaskFailed    = "FAILED"
)

// Composite is the metadata of one monthly median composite.
type Composite struct {
	Name       string  `json:"name"`
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	Scenes     int     `json:"scenes"`
	CloudCover float64 `json:"cloud_cover"`
}

// ExportRequest asks the service to render one composite clipped to a
// bounding box. DryRun validates the request without queuing a task.
type ExportRequest struct {
	Year        int        `json:"year"`
	Month       int        `json:"month"`
	Bounds      [4]float64 `json:"bounds"` // minX, minY, maxX, maxY
	CRS         string     `json:"crs"`
	ScaleMeters float64    `json:"scale_meters"`
	DryRun      bool       `json:"dry_run"`
}

// Task is a queued or finished export.
type Task struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// Done reports whether the task reached a terminal state.
func (t Task) Done() bool {
	return t.State == TaskCompleted || t.State == TaskFailed
}

// Catalog answers composite metadata lookups.
type Catalog interface {
	Composite(ctx context.Context, year, month int) (Composite, error)
}

// Client implements Catalog and export submission over the service's
// HTTP API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an imagery service client.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// CompositeName is the service's naming scheme for Landsat 8 monthly
// composites.
func CompositeName(year, month int) string {
	return fmt.Sprintf("L8_%d_%02d", year, month)
}

// Composite fetches the metadata of one monthly composite.
func (c *Client) Composite(ctx context.Context, year, month int) (Composite, error) {
	u := fmt.Sprintf("%s/composites/%s", c.baseURL, CompositeName(year, month))

	var comp Composite
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &comp); err != nil {
		return Composite{}, err
	}
	return comp, nil
}

// SubmitExport queues an export task. With DryRun set the service
// validates and returns a task in COMPLETED state without rendering.
func (c *Client) SubmitExport(ctx context.Context, req ExportRequest) (Task, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Task{}, fmt.Errorf("encode export request: %w", err)
	}

	var task Task
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/exports", body, &task); err != nil {
		return Task{}, err
	}
	c.logger.Info("export submitted",
		"task_id", task.ID,
		"composite", CompositeName(req.Year, req.Month),
		"dry_run", req.DryRun,
	)
	return task, nil
}

// TaskStatus fetches the current state of an export task.
func (c *Client) TaskStatus(ctx context.Context, id string) (Task, error) {
	var task Task
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/exports/"+id, nil, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// WaitForTask polls an export until it finishes or ctx ends.
func (c *Client) WaitForTask(ctx context.Context, id string, interval time.Duration) (Task, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		task, err := c.TaskStatus(ctx, id)
		if err != nil {
			return Task{}, err
		}
		if task.Done() {
			return task, nil
		}
		c.logger.Debug("export still running", "task_id", id, "state", task.State)

		select {
		case <-ctx.Done():
			return task, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) doJSON(ctx context.Context, method, fullURL string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("imagery request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("imagery API error: status %d: %s", resp.StatusCode, raw)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
