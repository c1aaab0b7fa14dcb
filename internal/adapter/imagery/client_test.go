package imagery

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestCompositeName(t *testing.T) {
	assert.Equal(t, "L8_2019_01", CompositeName(2019, 1))
	assert.Equal(t, "L8_2020_12", CompositeName(2020, 12))
}

func TestClient_Composite_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/composites/L8_2019_01", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(Composite{
			Name:       "L8_2019_01",
			Year:       2019,
			Month:      1,
			Scenes:     14,
			CloudCover: 0.22,
		}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	comp, err := c.Composite(context.Background(), 2019, 1)
	require.NoError(t, err)

	assert.Equal(t, "L8_2019_01", comp.Name)
	assert.Equal(t, 14, comp.Scenes)
	assert.Equal(t, 0.22, comp.CloudCover)
}

func TestClient_SubmitExport_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/exports", r.URL.Path)
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))

		var req ExportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2019, req.Year)
		assert.Equal(t, 30.0, req.ScaleMeters)

		w.WriteHeader(http.StatusAccepted)
		require.NoError(t, json.NewEncoder(w).Encode(Task{ID: "task-1", State: TaskPending}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	task, err := c.SubmitExport(context.Background(), ExportRequest{
		Year:        2019,
		Month:       1,
		Bounds:      [4]float64{-77, 4, -74, 7},
		CRS:         "EPSG:4326",
		ScaleMeters: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, TaskPending, task.State)
	assert.False(t, task.Done())
}

func TestClient_SubmitExport_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.SubmitExport(context.Background(), ExportRequest{Year: 2019, Month: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClient_WaitForTask_PollsUntilDone(t *testing.T) {
	states := []string{TaskPending, TaskRunning, TaskCompleted}
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exports/task-1", r.URL.Path)
		state := states[calls]
		if calls < len(states)-1 {
			calls++
		}
		require.NoError(t, json.NewEncoder(w).Encode(Task{ID: "task-1", State: state}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	task, err := c.WaitForTask(context.Background(), "task-1", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, TaskCompleted, task.State)
	assert.True(t, task.Done())
}

func TestClient_WaitForTask_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(Task{ID: "task-1", State: TaskRunning}))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := testClient(srv.URL)
	_, err := c.WaitForTask(ctx, "task-1", 5*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
