package webui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/draftdeck/draftdeck/internal/agent"
	"github.com/draftdeck/draftdeck/internal/assets"
	"github.com/draftdeck/draftdeck/internal/logger"
)

// maxUploadBytes bounds one multipart upload request.
const maxUploadBytes = 32 << 20

type MessageProcessor interface {
	HandleMessage(ctx context.Context, sessionID, text string) (string, error)
}

// Uploads is the asset-store surface the server needs.
type Uploads interface {
	SaveAll(ctx context.Context, uploads []assets.Upload) ([]string, error)
	ListFiles() ([]string, error)
	Delete(name string) error
	UploadsDir() string
}

type Server struct {
	processor MessageProcessor
	uploads   Uploads
	startedAt time.Time

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewServer(processor MessageProcessor, uploads Uploads) *Server {
	return &Server{
		processor: processor,
		uploads:   uploads,
		startedAt: time.Now().UTC(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The UI is served from this process; cross-origin pages have
			// no business on the event socket.
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || strings.Contains(origin, r.Host)
			},
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/api/status", s.handleStatus)
	r.Post("/api/chat", s.handleChat)
	r.Get("/api/chat/ws", s.handleEvents)
	r.Get("/api/uploads", s.handleListUploads)
	r.Post("/api/uploads", s.handleUpload)
	r.Delete("/api/uploads/{name}", s.handleDeleteUpload)
	if s.uploads != nil {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploads.UploadsDir())))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}
	return r
}

// BroadcastEvent pushes a tool-run event to every connected websocket
// client. It satisfies agent.EventListener.
func (s *Server) BroadcastEvent(ev agent.ToolRunEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Warn("[WebUI] Marshaling event: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(defaultIndexHTML))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"started_at": s.startedAt.Format(time.RFC3339),
		"uptime_sec": int(time.Since(s.startedAt).Seconds()),
	})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type chatResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.processor == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "processor is not initialized"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = "web-default"
	}

	text, err := s.processor.HandleMessage(r.Context(), req.SessionID, req.Text)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Text: text})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("[WebUI] Websocket upgrade: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Drain the read side so close frames are processed; the socket is
	// server-push only.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleListUploads(w http.ResponseWriter, _ *http.Request) {
	if s.uploads == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "uploads are not configured"})
		return
	}
	files, err := s.uploads.ListFiles()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploads == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "uploads are not configured"})
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}

	var incoming []assets.Upload
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			incoming = append(incoming, assets.Upload{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	if len(incoming) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no files in request"})
		return
	}

	saved, err := s.uploads.SaveAll(r.Context(), incoming)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": saved})
}

func (s *Server) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploads == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "uploads are not configured"})
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.uploads.Delete(name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, assets.ErrNotFound) {
			status = http.StatusNotFound
		} else if strings.Contains(err.Error(), "invalid") {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
