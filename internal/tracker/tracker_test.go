package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hunterjsb/octanecore/internal/accounts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileBody = `{
  "data": {
    "platformInfo": {"platformSlug": "epic", "platformUserHandle": "Arsenal", "avatarUrl": "https://example.com/a.png"},
    "segments": [
      {"type": "overview", "stats": {
        "rating": {"value": 1523, "displayValue": "Grand Champion II"},
        "wins": {"value": 2841, "displayValue": "2,841"},
        "goals": {"value": 9120, "displayValue": "9,120"}
      }}
    ]
  }
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_Success(t *testing.T) {
	var gotPath, gotKey string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotKey = r.Header.Get(API_KEY_HEADER)
		_, _ = w.Write([]byte(profileBody))
	})

	client := NewClient("secret", WithBaseURL(srv.URL+"/"))
	snap, err := client.Fetch(context.Background(), accounts.Epic, "Ars enal")
	require.NoError(t, err)

	assert.Equal(t, "/rocket-league/standard/profile/epic/Ars%20enal", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, &Snapshot{
		Platform:  accounts.Epic,
		Username:  "Arsenal",
		Rank:      "Grand Champion II",
		MMR:       1523,
		Wins:      2841,
		Goals:     9120,
		AvatarURL: "https://example.com/a.png",
	}, snap)
}

func TestFetch_NonOKStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusInternalServerError} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			})

			_, err := NewClient("k", WithBaseURL(srv.URL)).Fetch(context.Background(), accounts.Steam, "x")
			assert.ErrorIs(t, err, ErrProviderUnavailable)
			assert.NotErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestFetch_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"no data", `{}`},
		{"no segments", `{"data": {"segments": []}}`},
		{"no rating display", `{"data": {"segments": [{"stats": {"rating": {"value": 1}, "wins": {"value": 1}, "goals": {"value": 1}}}]}}`},
		{"no rating value", `{"data": {"segments": [{"stats": {"rating": {"displayValue": "GC"}, "wins": {"value": 1}, "goals": {"value": 1}}}]}}`},
		{"no wins", `{"data": {"segments": [{"stats": {"rating": {"value": 1, "displayValue": "GC"}, "goals": {"value": 1}}}]}}`},
		{"no goals", `{"data": {"segments": [{"stats": {"rating": {"value": 1, "displayValue": "GC"}, "wins": {"value": 1}}}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := NewClient("k", WithBaseURL(srv.URL)).Fetch(context.Background(), accounts.PSN, "x")
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	client := NewClient("k", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	_, err := client.Fetch(context.Background(), accounts.XBL, "slow")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestWithTimeout_LeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	client := NewClient("k", WithHTTPClient(shared), WithTimeout(3*time.Second))
	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 3*time.Second, client.httpClient.Timeout)
	assert.NotSame(t, shared, client.httpClient)
}

func TestDelay(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		n    int
		want time.Duration
	}{
		{"unthrottled", nil, 100, 0},
		{"within burst", []Option{WithRateLimit(2, 3)}, 3, 0},
		{"past burst", []Option{WithRateLimit(2, 3)}, 30, 13500 * time.Millisecond},
		{"fast limiter", []Option{WithRateLimit(50, 1)}, 30, 580 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient("k", tt.opts...)
			assert.InDelta(t, float64(tt.want), float64(client.Delay(tt.n)), float64(time.Millisecond))
		})
	}
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(profileBody))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("k", WithBaseURL(srv.URL), WithRateLimit(1, 1)).Fetch(ctx, accounts.Epic, "x")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestFetch_NoCacheByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(profileBody))
	})

	client := NewClient("k", WithBaseURL(srv.URL))
	for i := 0; i < 3; i++ {
		_, err := client.Fetch(context.Background(), accounts.Epic, "Arsenal")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetch_CacheAndMetrics(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(profileBody))
	})

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	client := NewClient("k", WithBaseURL(srv.URL), WithCache(NewCache(time.Minute)), WithMetrics(metrics))

	first, err := client.Fetch(context.Background(), accounts.Epic, "Arsenal")
	require.NoError(t, err)
	second, err := client.Fetch(context.Background(), accounts.Epic, "arsenal")
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.lookups.WithLabelValues(outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.lookups.WithLabelValues(outcomeCached)))
}
