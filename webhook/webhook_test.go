package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSender_DeliverSigned(t *testing.T) {
	var gotSig string
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotSig = r.Header.Get(SignatureHeader)
		assert.Equal(t, Sign("s3cret", body), gotSig)
		require.NoError(t, json.Unmarshal(body, &got))
	}))
	defer srv.Close()

	err := NewSender().Deliver(t.Context(), srv.URL, "s3cret", &Event{Type: EventBatchCompleted, BatchID: "b1", Timestamp: 1})
	require.NoError(t, err)
	assert.Contains(t, gotSig, "sha256=")
	assert.Equal(t, "b1", got.BatchID)
}

func TestSender_DeliverUnsigned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(SignatureHeader))
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewSender().Deliver(t.Context(), srv.URL, "", &Event{Type: EventBatchCompleted})
	assert.ErrorContains(t, err, "status 502")
}

func TestSender_DeliverAsyncRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	s := NewSender()
	s.delays = []time.Duration{0, time.Millisecond, time.Millisecond, time.Millisecond}

	select {
	case <-s.DeliverAsync(srv.URL, "", &Event{Type: EventBatchCompleted}):
	case <-time.After(5 * time.Second):
		t.Fatal("delivery did not finish")
	}
	assert.Equal(t, int32(3), calls.Load())
}
