package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justapithecus/filebridge/adapter"
	"github.com/justapithecus/filebridge/iox"
)

func testEvent() *adapter.ArtifactWrittenEvent {
	return &adapter.ArtifactWrittenEvent{
		EventID:    "6f1c2a9e-0000-4000-8000-000000000002",
		EventType:  adapter.EventTypeArtifactWritten,
		Endpoint:   "txttest",
		Day:        "080725",
		Trigger:    "retrieve",
		Format:     "txt",
		SourceFile: "text_input_080725.txt",
		TargetFile: "text_processed_080725.json",
		Encoding:   "json",
		Records:    5,
		SizeBytes:  388,
		Timestamp:  "2025-07-08T10:30:00Z",
	}
}

func TestPublish_Success(t *testing.T) {
	var received adapter.ArtifactWrittenEvent
	var auth, delivery, endpoint string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		auth = r.Header.Get("Authorization")
		delivery = r.Header.Get(HeaderDelivery)
		endpoint = r.Header.Get(HeaderEndpoint)
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("unmarshal: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	a, err := New(Config{URL: ts.URL, Headers: map[string]string{"Authorization": "Bearer t"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer iox.DiscardClose(a)

	if err := a.Publish(t.Context(), testEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if received.Endpoint != "txttest" || received.EventType != adapter.EventTypeArtifactWritten {
		t.Errorf("unexpected event %+v", received)
	}
	if auth != "Bearer t" {
		t.Errorf("Authorization = %q", auth)
	}
	if delivery != testEvent().EventID || endpoint != "txttest" {
		t.Errorf("delivery headers = %q, %q", delivery, endpoint)
	}
}

func TestPublish_RetriesOn5xx(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	a, err := New(Config{URL: ts.URL, Retries: 3, Backoff: time.Millisecond})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer iox.DiscardClose(a)

	if err := a.Publish(t.Context(), testEvent()); err != nil {
		t.Fatalf("publish should succeed after retries: %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestPublish_4xxIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("unknown endpoint field\n"))
	}))
	defer ts.Close()

	a, err := New(Config{URL: ts.URL, Retries: 3, Backoff: time.Millisecond})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer iox.DiscardClose(a)

	err = a.Publish(t.Context(), testEvent())
	var re *RejectedError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RejectedError, got %v", err)
	}
	if re.StatusCode != http.StatusUnprocessableEntity || re.Body != "unknown endpoint field" {
		t.Errorf("unexpected rejection %+v", re)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestPublish_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	a, err := New(Config{URL: ts.URL})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer iox.DiscardClose(a)

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()
	if err := a.Publish(ctx, testEvent()); err == nil {
		t.Fatal("expected error on canceled context")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := New(Config{URL: "http://example.com", Retries: -1}); err == nil {
		t.Error("expected error for negative retries")
	}
	if _, err := New(Config{URL: "ftp://example.com/hook"}); err == nil {
		t.Error("expected error for non-http scheme")
	}
	a, err := New(Config{URL: "http://example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if a.config.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, a.config.Timeout)
	}
}
