package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/retry"
)

func TestClientGetJSONRetry(t *testing.T) {
	tests := []struct {
		name             string
		statuses         []int
		maxAttempts      int
		expectedAttempts int
		expectErr        bool
	}{
		{
			name:             "retries on 503 then succeeds",
			statuses:         []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK},
			maxAttempts:      3,
			expectedAttempts: 3,
		},
		{
			name:             "exhausts retries on 429",
			statuses:         []int{http.StatusTooManyRequests},
			maxAttempts:      2,
			expectedAttempts: 2,
			expectErr:        true,
		},
		{
			name:             "does not retry 400",
			statuses:         []int{http.StatusBadRequest},
			maxAttempts:      3,
			expectedAttempts: 1,
			expectErr:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				status := tt.statuses[len(tt.statuses)-1]
				if attempts < len(tt.statuses) {
					status = tt.statuses[attempts]
				}
				attempts++
				w.WriteHeader(status)
				if status == http.StatusOK {
					_, _ = w.Write([]byte(`{"ok": true}`))
				}
			}))
			defer ts.Close()

			client := NewClient(ts.Client(), ts.URL,
				WithRetry(retry.Policy{MaxAttempts: tt.maxAttempts, BaseDelay: time.Millisecond}))

			var out struct {
				OK bool `json:"ok"`
			}
			err := client.getJSON(context.Background(), ts.URL+"/x", &out)
			if tt.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.True(t, out.OK)
			}
			assert.Equal(t, tt.expectedAttempts, attempts)
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Zero(t, parseRetryAfter(resp))

	resp.Header.Set("Retry-After", "2")
	assert.Equal(t, 2*time.Second, parseRetryAfter(resp))

	resp.Header.Set("Retry-After", "soon")
	assert.Zero(t, parseRetryAfter(resp))

	resp.Header.Set("Retry-After", time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat))
	assert.Zero(t, parseRetryAfter(resp))
}

func TestSleepWithContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, sleepWithContext(ctx, time.Hour))
	assert.NoError(t, sleepWithContext(context.Background(), 0))
}
