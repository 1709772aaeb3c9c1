package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/demark/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_AppliesDefaults(t *testing.T) {
	var got queryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"summary": "**Found it**", "timeline": [{"tool": "search"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	resp, err := c.Query(context.Background(), "latest news", map[string]any{"show_chain": true})
	require.NoError(t, err)

	assert.Equal(t, "latest news", got.Query)
	assert.Equal(t, true, got.Options["show_chain"])

	assert.Equal(t, domain.StatusOK, resp.Status)
	assert.Equal(t, "**Found it**", resp.Summary, "the client does not normalize")
	assert.Equal(t, "latest news", resp.Query)
	assert.Equal(t, domain.DefaultChain, resp.ChainUsed)
	assert.Equal(t, []string{}, resp.ToolsUsed)
	assert.Len(t, resp.Timeline, 1)
	assert.Nil(t, resp.Error)
}

func TestQuery_NilOptionsSentAsObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.JSONEq(t, `{}`, string(raw["options"]))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Query(context.Background(), "q", nil)
	require.NoError(t, err)
}

func TestQuery_EmptyQuery(t *testing.T) {
	_, err := New("http://127.0.0.1:1").Query(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestQuery_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad query", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetries(3, time.Millisecond))
	_, err := c.Query(context.Background(), "q", nil)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnprocessableEntity, se.Code)
	assert.Equal(t, "bad query", se.Body)
	assert.Contains(t, se.Error(), "status: 422")
	assert.Equal(t, int32(1), calls.Load())
}

func TestQuery_ServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"status": "ok", "summary": "third time"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetries(2, time.Millisecond))
	resp, err := c.Query(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "third time", resp.Summary)
	assert.Equal(t, int32(3), calls.Load())
}

func TestQuery_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithRetries(1, time.Millisecond)).Query(context.Background(), "q", nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQuery_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New(srv.URL, WithRetries(5, time.Hour)).Query(ctx, "q", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestQuery_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Query(context.Background(), "q", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestAsk_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	resp := New(url, WithTimeout(time.Second)).Ask(context.Background(), "hello", nil)

	assert.Equal(t, domain.StatusError, resp.Status)
	assert.Equal(t, "Unable to connect to the AI service. Please ensure the backend server is running on "+url+".", resp.Summary)
	assert.Equal(t, domain.ErrorChain, resp.ChainUsed)
	assert.Equal(t, "hello", resp.Query)
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, *resp.Error)
}

func TestAsk_StatusErrorBecomesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	resp := New(srv.URL).Ask(context.Background(), "q", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "HTTP error! status: 404", *resp.Error)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"message": "AI Research Assistant API"}`))
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL).Health(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	err := New(down.URL).Health(context.Background())
	var se *StatusError
	assert.True(t, errors.As(err, &se))
}

func TestNew_Defaults(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.True(t, strings.HasPrefix(c.BaseURL(), "http://"))
}
