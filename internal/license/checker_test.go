package license

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "device-1", r.URL.Query().Get("device_id"))
		w.Write([]byte(`{"valid":true,"license":"pro"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	status, err := client.Check(context.Background(), "device-1")
	require.NoError(t, err)
	assert.True(t, status.Valid)
	assert.Equal(t, "pro", status.License)
}

func TestClient_CheckNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Check(context.Background(), "device-1")
	assert.Error(t, err)
}

func TestChecker_KeepsCachedStatusOnFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Write([]byte(`{"valid":true,"license":"pro"}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	checker := NewChecker(NewClient(srv.URL, time.Second), "device-1", time.Hour, zap.NewNop())

	ctx := context.Background()
	checker.refresh(ctx)
	require.True(t, checker.Status().Valid)

	// The next refresh fails; the cached status must survive.
	checker.refresh(ctx)
	assert.True(t, checker.Status().Valid)
	assert.Equal(t, "pro", checker.Status().License)
}

func TestChecker_Activate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/licenses/activate":
			w.Write([]byte(`{"valid":true}`))
		case "/licenses/check":
			w.Write([]byte(`{"valid":true,"license":"pro"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	checker := NewChecker(NewClient(srv.URL, time.Second), "device-1", time.Hour, zap.NewNop())

	result, err := checker.Activate(context.Background(), "KEY-123")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, checker.Status().Valid, "activation must refresh the cached status")
}

func TestChecker_ActivateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"valid":false,"error":"key already used"}`))
	}))
	defer srv.Close()

	checker := NewChecker(NewClient(srv.URL, time.Second), "device-1", time.Hour, zap.NewNop())

	result, err := checker.Activate(context.Background(), "KEY-999")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "key already used", result.Error)
	assert.False(t, checker.Status().Valid)
}
