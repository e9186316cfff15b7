package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"curator/internal/config"
	"curator/internal/journal"
	"curator/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunStarted(context.Background(), "/tmp/downloads"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	var captured struct {
		title    string
		tags     string
		priority string
		body     string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured.body = string(body)
		_ = r.Body.Close()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RequestTimeout = 5
	svc := notifications.NewService(&cfg)

	totals := journal.Totals{FilesMoved: 4, FoldersMoved: 1, ImagesRenamed: 2, PDFsSorted: 3}
	if err := svc.NotifyRunCompleted(context.Background(), totals, 90*time.Second); err != nil {
		t.Fatalf("notification returned error: %v", err)
	}
	if captured.title != "Curator - Run Complete" {
		t.Fatalf("unexpected title %q", captured.title)
	}
	if captured.body != "Moved 4 files and 1 folders, renamed 2 images, sorted 3 PDFs in 1m30s" {
		t.Fatalf("unexpected message %q", captured.body)
	}
	if captured.tags != "curator,run,completed" {
		t.Fatalf("unexpected tags %q", captured.tags)
	}

	if err := svc.NotifyError(context.Background(), errors.New("api quota exhausted"), "triage"); err != nil {
		t.Fatalf("error notification returned error: %v", err)
	}
	if captured.title != "Curator - Error" {
		t.Fatalf("unexpected title %q", captured.title)
	}
	if captured.body != "Error with triage: api quota exhausted" {
		t.Fatalf("unexpected message %q", captured.body)
	}
	if captured.priority != "high" {
		t.Fatalf("expected high priority, got %q", captured.priority)
	}
}

func TestNtfyServiceSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
