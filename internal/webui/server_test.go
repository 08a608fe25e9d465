package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gows "github.com/gorilla/websocket"

	"github.com/draftdeck/draftdeck/internal/agent"
	"github.com/draftdeck/draftdeck/internal/assets"
)

type fakeProcessor struct {
	lastSession string
}

func (f *fakeProcessor) HandleMessage(_ context.Context, sessionID, text string) (string, error) {
	f.lastSession = sessionID
	return "echo: " + text, nil
}

type fakeUploads struct {
	files   []string
	deleted []string
	saved   []assets.Upload
}

func (f *fakeUploads) SaveAll(_ context.Context, uploads []assets.Upload) ([]string, error) {
	f.saved = append(f.saved, uploads...)
	names := make([]string, len(uploads))
	for i := range uploads {
		names[i] = "stored-" + uploads[i].Name
	}
	f.files = append(f.files, names...)
	return names, nil
}

func (f *fakeUploads) ListFiles() ([]string, error) { return f.files, nil }

func (f *fakeUploads) Delete(name string) error {
	for i, existing := range f.files {
		if existing == name {
			f.files = append(f.files[:i], f.files[i+1:]...)
			f.deleted = append(f.deleted, name)
			return nil
		}
	}
	return assets.ErrNotFound
}

func (f *fakeUploads) UploadsDir() string { return "." }

func TestStatusEndpoint(t *testing.T) {
	server := NewServer(&fakeProcessor{}, &fakeUploads{})
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "\"ok\":true") {
		t.Fatalf("unexpected status payload: %s", rr.Body.String())
	}
}

func TestChatEndpoint(t *testing.T) {
	processor := &fakeProcessor{}
	server := NewServer(processor, &fakeUploads{})
	handler := server.Handler()

	payload := map[string]string{"session_id": "s1", "text": "hello"}
	data, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "echo: hello") {
		t.Fatalf("unexpected chat response: %s", rr.Body.String())
	}
	if processor.lastSession != "s1" {
		t.Fatalf("session = %q", processor.lastSession)
	}
}

func TestChatEndpointRejectsEmptyText(t *testing.T) {
	server := NewServer(&fakeProcessor{}, &fakeUploads{})
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"text":"  "}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUploadAndList(t *testing.T) {
	uploads := &fakeUploads{}
	server := NewServer(&fakeProcessor{}, uploads)
	handler := server.Handler()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("files", "shoe.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte("not-really-a-png"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if len(uploads.saved) != 1 || uploads.saved[0].Name != "shoe.png" {
		t.Fatalf("saved = %+v", uploads.saved)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/uploads", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if !strings.Contains(rr.Body.String(), "stored-shoe.png") {
		t.Fatalf("list response: %s", rr.Body.String())
	}
}

func TestUploadWithNoFiles(t *testing.T) {
	server := NewServer(&fakeProcessor{}, &fakeUploads{})
	handler := server.Handler()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestDeleteUpload(t *testing.T) {
	uploads := &fakeUploads{files: []string{"abc.png"}}
	server := NewServer(&fakeProcessor{}, uploads)
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodDelete, "/api/uploads/abc.png", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if len(uploads.deleted) != 1 {
		t.Fatalf("deleted = %v", uploads.deleted)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/uploads/missing.png", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("delete missing: expected 404, got %d", rr.Code)
	}
}

func TestEventBroadcast(t *testing.T) {
	server := NewServer(&fakeProcessor{}, &fakeUploads{})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/chat/ws"
	conn, _, err := gows.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Registration happens just after the handshake response; rebroadcast
	// until the client sees the event.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			server.BroadcastEvent(agent.ToolRunEvent{
				RunID:  "run-1",
				Tool:   agent.ToolDraftEmail,
				Status: agent.StatusStarting,
			})
			time.Sleep(10 * time.Millisecond)
		}
	}()

	var ev agent.ToolRunEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.RunID != "run-1" || ev.Status != agent.StatusStarting {
		t.Fatalf("event = %+v", ev)
	}
}
