package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/namngocngo2210/veo3/internal/config"
	"github.com/namngocngo2210/veo3/internal/generator"
	"github.com/namngocngo2210/veo3/internal/license"
	"github.com/namngocngo2210/veo3/internal/media"
	"github.com/namngocngo2210/veo3/internal/models"
	"github.com/namngocngo2210/veo3/internal/storage"
	"github.com/namngocngo2210/veo3/internal/veo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newMockProvider serves the generation protocol with operations that
// complete on the first poll with a single sample.
func newMockProvider(t *testing.T) *httptest.Server {
	var opCounter int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, ":predictLongRunning"):
			n := atomic.AddInt32(&opCounter, 1)
			json.NewEncoder(w).Encode(map[string]string{"name": fmt.Sprintf("operations/op-%d", n)})
		case strings.HasPrefix(r.URL.Path, "/operations/"):
			json.NewEncoder(w).Encode(map[string]interface{}{
				"name": strings.TrimPrefix(r.URL.Path, "/"),
				"done": true,
				"response": map[string]interface{}{
					"generateVideoResponse": map[string]interface{}{
						"generatedSamples": []map[string]interface{}{
							{"video": map[string]string{"uri": srv.URL + "/files/sample"}},
						},
					},
				},
			})
		case strings.HasPrefix(r.URL.Path, "/files/"):
			w.Write([]byte("media"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandler(t *testing.T, checker *license.Checker) (*GenerationHandler, *storage.Service) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	cfg.Storage.OutputDir = t.TempDir()
	cfg.Storage.JobTTL = time.Hour
	cfg.Provider.APIKey = "test-key"
	cfg.Provider.Model = "veo-test"

	store, err := storage.NewService(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	provider := newMockProvider(t)
	client := veo.NewClient(provider.URL, 5*time.Second, zap.NewNop())
	gen := generator.New(client, store, config.GenerationConfig{
		PollInterval:     5 * time.Millisecond,
		VideoConcurrency: 2,
	}, zap.NewNop())

	handler := NewGenerationHandler(
		gen,
		store,
		nil, // no queue; batches run in-process
		generator.NewCancelRegistry(),
		checker,
		media.NewPreparer(config.MediaConfig{}),
		client,
		zap.NewNop(),
		cfg,
	)
	return handler, store
}

func newTestRouter(handler *GenerationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/generations", handler.SubmitBatch)
	router.GET("/generations/:id", handler.GetJob)
	router.POST("/generations/:id/cancel", handler.CancelJob)
	router.GET("/settings/:key", handler.GetSetting)
	router.PUT("/settings/:key", handler.PutSetting)
	router.GET("/history/:tab", handler.GetHistory)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitBatch_RunsToCompletion(t *testing.T) {
	handler, store := newTestHandler(t, nil)
	router := newTestRouter(handler)

	w := doJSON(router, http.MethodPost, "/generations", `{"requests":[{"prompt":"a cat"},{"prompt":"a dog"}]}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Data    models.BatchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Data.JobID)
	assert.Equal(t, 2, resp.Data.Count)

	assert.Eventually(t, func() bool {
		job, err := store.GetJob(context.Background(), resp.Data.JobID)
		if err != nil || job == nil {
			return false
		}
		return job.Status == models.JobStatusCompleted
	}, 5*time.Second, 20*time.Millisecond, "job must complete")

	job, err := store.GetJob(context.Background(), resp.Data.JobID)
	require.NoError(t, err)
	for _, item := range job.Items {
		assert.Equal(t, models.StatusSuccess, item.Result.Status)
		assert.Len(t, item.Result.LocalPaths, 1)
	}

	// Prompts land in the video history tab.
	entries, err := store.GetHistory(context.Background(), "video")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSubmitBatch_RejectsEmptyBatch(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	router := newTestRouter(handler)

	w := doJSON(router, http.MethodPost, "/generations", `{"requests":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitBatch_RejectsBadImage(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	router := newTestRouter(handler)

	w := doJSON(router, http.MethodPost, "/generations",
		`{"requests":[{"prompt":"x","image":{"data":"!!!not-base64!!!","mime_type":"image/png"}}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJob_NotFound(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	router := newTestRouter(handler)

	w := doJSON(router, http.MethodGet, "/generations/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelJob_NotRunning(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	router := newTestRouter(handler)

	w := doJSON(router, http.MethodPost, "/generations/ghost/cancel", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	router := newTestRouter(handler)

	w := doJSON(router, http.MethodPut, "/settings/api_key", `{"value":"secret-key-1234"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/settings/api_key", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "****1234")
	assert.NotContains(t, w.Body.String(), "secret-key-1234")

	w = doJSON(router, http.MethodGet, "/settings/bogus", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
