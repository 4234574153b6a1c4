package digikey

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsignal/sourcing-cli/internal/resilience"
)

func tokenHandler(t *testing.T, tokenCalls *atomic.Int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "test-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "test-secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"expires_in":   600,
		})
	}
}

func TestSearchKeyword_Success(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int64
	tokenSrv := httptest.NewServer(tokenHandler(t, &tokenCalls))
	defer tokenSrv.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products/v4/search/keyword", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "test-id", r.Header.Get("X-DIGIKEY-Client-Id"))
		assert.Equal(t, "US", r.Header.Get("X-DIGIKEY-Locale-Site"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "640456-5", body["keywords"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"ProductsCount": 1,
			"Products": []map[string]any{
				{"QuantityAvailable": 500},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-id", "test-secret",
		WithBaseURL(srv.URL),
		WithTokenURL(tokenSrv.URL),
	)

	got, err := client.SearchKeyword(context.Background(), "640456-5")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ProductsCount)
	require.Len(t, got.Products, 1)
	assert.Equal(t, float64(500), got.Products[0]["QuantityAvailable"])
}

func TestSearchKeyword_TokenCached(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int64
	tokenSrv := httptest.NewServer(tokenHandler(t, &tokenCalls))
	defer tokenSrv.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ProductsCount": 0})
	}))
	defer srv.Close()

	client := NewClient("test-id", "test-secret",
		WithBaseURL(srv.URL),
		WithTokenURL(tokenSrv.URL),
	)

	ctx := context.Background()
	_, err := client.SearchKeyword(ctx, "a")
	require.NoError(t, err)
	_, err = client.SearchKeyword(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, int64(1), tokenCalls.Load())
}

func TestSearchKeyword_AuthFailure(t *testing.T) {
	t.Parallel()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer tokenSrv.Close()

	client := NewClient("bad-id", "bad-secret",
		WithBaseURL("http://unused.invalid"),
		WithTokenURL(tokenSrv.URL),
	)

	_, err := client.SearchKeyword(context.Background(), "640456-5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuth))
}

func TestSearchKeyword_ServerError_Transient(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int64
	tokenSrv := httptest.NewServer(tokenHandler(t, &tokenCalls))
	defer tokenSrv.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`upstream down`))
	}))
	defer srv.Close()

	client := NewClient("test-id", "test-secret",
		WithBaseURL(srv.URL),
		WithTokenURL(tokenSrv.URL),
	)

	_, err := client.SearchKeyword(context.Background(), "640456-5")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
	assert.Contains(t, err.Error(), "503")
}

func TestSearchKeyword_BadRequest_NotTransient(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int64
	tokenSrv := httptest.NewServer(tokenHandler(t, &tokenCalls))
	defer tokenSrv.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad keywords"}`))
	}))
	defer srv.Close()

	client := NewClient("test-id", "test-secret",
		WithBaseURL(srv.URL),
		WithTokenURL(tokenSrv.URL),
	)

	_, err := client.SearchKeyword(context.Background(), "640456-5")
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}

func TestSearchKeyword_MalformedJSON(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int64
	tokenSrv := httptest.NewServer(tokenHandler(t, &tokenCalls))
	defer tokenSrv.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient("test-id", "test-secret",
		WithBaseURL(srv.URL),
		WithTokenURL(tokenSrv.URL),
	)

	_, err := client.SearchKeyword(context.Background(), "640456-5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
