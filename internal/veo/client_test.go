package veo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/namngocngo2210/veo3/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(url string) *Client {
	return NewClient(url, 5*time.Second, zap.NewNop())
}

func TestStartGeneration_OmitsEmptyParameters(t *testing.T) {
	var captured map[string]json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{"name": "operations/op-1"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	op, err := client.StartGeneration(context.Background(), &models.GenerationRequest{
		Prompt: "a cat",
		Model:  "veo-3.0-generate-preview",
		APIKey: "k",
	})
	require.NoError(t, err)
	assert.Equal(t, "operations/op-1", op.Name)

	_, hasParams := captured["parameters"]
	assert.False(t, hasParams, "parameters must be omitted when nothing applies")

	var instances []map[string]interface{}
	require.NoError(t, json.Unmarshal(captured["instances"], &instances))
	require.Len(t, instances, 1)
	assert.Equal(t, "a cat", instances[0]["prompt"])
}

func TestStartGeneration_BuildsParameters(t *testing.T) {
	var captured struct {
		Instances []struct {
			Prompt string `json:"prompt"`
			Image  *struct {
				BytesBase64Encoded string `json:"bytesBase64Encoded"`
				MimeType           string `json:"mimeType"`
			} `json:"image"`
		} `json:"instances"`
		Parameters *struct {
			AspectRatio     string `json:"aspectRatio"`
			LastFrame       *struct{} `json:"lastFrame"`
			ReferenceImages []struct {
				ReferenceType string `json:"referenceType"`
			} `json:"referenceImages"`
		} `json:"parameters"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{"name": "operations/op-2"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.StartGeneration(context.Background(), &models.GenerationRequest{
		Prompt:      "a dog",
		Model:       "veo-3.0-generate-preview",
		APIKey:      "k",
		AspectRatio: models.AspectRatioLandscape,
		Image:       &models.InputImage{Data: "aW1n", MimeType: "image/jpeg"},
		LastFrame:   &models.InputImage{Data: "bGFzdA==", MimeType: "image/png"},
		ReferenceImages: []models.InputImage{
			{Data: "cmVm", MimeType: "image/jpeg"},
		},
	})
	require.NoError(t, err)

	require.Len(t, captured.Instances, 1)
	require.NotNil(t, captured.Instances[0].Image)
	assert.Equal(t, "aW1n", captured.Instances[0].Image.BytesBase64Encoded)

	require.NotNil(t, captured.Parameters)
	assert.Equal(t, "16:9", captured.Parameters.AspectRatio)
	assert.NotNil(t, captured.Parameters.LastFrame)
	require.Len(t, captured.Parameters.ReferenceImages, 1)
	assert.Equal(t, "asset", captured.Parameters.ReferenceImages[0].ReferenceType)
}

func TestStartGeneration_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"prompt blocked"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.StartGeneration(context.Background(), &models.GenerationRequest{
		Prompt: "x", Model: "m", APIKey: "k",
	})

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, http.StatusBadRequest, subErr.StatusCode)
	assert.Contains(t, subErr.Message, "prompt blocked")
}

func TestStartGeneration_MissingOperationName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.StartGeneration(context.Background(), &models.GenerationRequest{
		Prompt: "x", Model: "m", APIKey: "k",
	})

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Contains(t, subErr.Message, "no operation name")
}

func TestGetOperation(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		status      int
		wantDone    bool
		wantSamples int
		wantErr     bool
	}{
		{"pending", `{"name":"operations/op","done":false}`, 200, false, 0, false},
		{"done with samples", `{"name":"operations/op","done":true,"response":{"generateVideoResponse":{"generatedSamples":[{"video":{"uri":"https://dl/a"}},{"video":{"uri":"https://dl/b"}}]}}}`, 200, true, 2, false},
		{"done empty", `{"name":"operations/op","done":true,"response":{"generateVideoResponse":{"generatedSamples":[]}}}`, 200, true, 0, false},
		{"operation error", `{"name":"operations/op","done":true,"error":{"code":8,"message":"quota"}}`, 200, true, 0, true},
		{"http error", `{"error":{"message":"bad key"}}`, 403, false, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			done, samples, err := client.GetOperation(context.Background(), Operation{Name: "operations/op"}, "k")

			if tt.wantErr {
				var pollErr *PollingError
				require.ErrorAs(t, err, &pollErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDone, done)
			assert.Len(t, samples, tt.wantSamples)
		})
	}
}

func TestDownload_KeySeparator(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte("media-bytes"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	data, err := client.Download(context.Background(), srv.URL+"/file", "secret")
	require.NoError(t, err)
	assert.Equal(t, []byte("media-bytes"), data)
	assert.Equal(t, "key=secret", gotQuery)

	_, err = client.Download(context.Background(), srv.URL+"/file?alt=media", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alt=media&key=secret", gotQuery)
}

func TestDownload_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Download(context.Background(), srv.URL+"/gone", "k")

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, http.StatusNotFound, dlErr.StatusCode)
}
