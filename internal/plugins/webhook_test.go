package plugins_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/arkohut/pensieve/internal/plugins"
	"github.com/arkohut/pensieve/internal/types"
)

func TestNotifyPostsEntityPayload(t *testing.T) {
	var received int32
	var gotEntityID int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&received, 1)
		var body struct {
			Entity types.Entity `json:"entity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding webhook body: %v", err)
		}
		gotEntityID = body.Entity.ID
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dispatcher := plugins.NewDispatcher().WithHTTPClient(srv.Client())
	plugin := &types.Plugin{Name: "ocr", WebhookURL: srv.URL}
	entity := &types.Entity{ID: 42, Filepath: "/shot.png"}

	if err := dispatcher.Notify(context.Background(), plugin, entity); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if atomic.LoadInt32(&received) != 1 {
		t.Fatalf("expected webhook to be called once, got %d", received)
	}
	if gotEntityID != 42 {
		t.Fatalf("expected entity id 42 in payload, got %d", gotEntityID)
	}
}

func TestNotifySkipsEmptyWebhookURL(t *testing.T) {
	dispatcher := plugins.NewDispatcher()
	plugin := &types.Plugin{Name: "quiet"}
	if err := dispatcher.Notify(context.Background(), plugin, &types.Entity{ID: 1}); err != nil {
		t.Fatalf("expected no error for empty webhook_url, got %v", err)
	}
}

func TestNotifyNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dispatcher := plugins.NewDispatcher().WithHTTPClient(srv.Client())
	plugin := &types.Plugin{Name: "broken", WebhookURL: srv.URL}
	if err := dispatcher.Notify(context.Background(), plugin, &types.Entity{ID: 1}); err == nil {
		t.Fatal("expected error for non-2xx webhook response")
	}
}

func TestNotifyAllContinuesPastFailure(t *testing.T) {
	var goodCalled int32
	goodSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&goodCalled, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer goodSrv.Close()
	badSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer badSrv.Close()

	dispatcher := plugins.NewDispatcher().WithHTTPClient(goodSrv.Client())
	pending := []*types.Plugin{
		{Name: "bad", WebhookURL: badSrv.URL},
		{Name: "good", WebhookURL: goodSrv.URL},
	}
	err := dispatcher.NotifyAll(context.Background(), pending, &types.Entity{ID: 7})
	if err == nil {
		t.Fatal("expected NotifyAll to surface the bad plugin's error")
	}
	if atomic.LoadInt32(&goodCalled) != 1 {
		t.Fatalf("expected the good plugin to still be notified, got %d calls", goodCalled)
	}
}
