// Package apitest provides an in-memory drawing store served over httptest.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"NoteBoard/internal/surface"
)

const uploadsPrefix = "/uploads/"

// Server mimics the drawing endpoints of the NoteBoard backend.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	order   []string
	files   map[string][]byte
	next    int
	calls   map[string]int
	failing map[string]int
	hold    chan struct{}
	entered chan string
}

// NewServer starts an empty store. Close it when done.
func NewServer() *Server {
	s := &Server{
		files:   make(map[string][]byte),
		calls:   make(map[string]int),
		failing: make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /drawings", s.guard("list", s.list))
	mux.HandleFunc("POST /save-drawing", s.guard("create", s.create))
	mux.HandleFunc("PUT /edit-drawing/{filename}", s.guard("update", s.update))
	mux.HandleFunc("DELETE /drawings/{filename}", s.guard("delete", s.remove))
	mux.HandleFunc("GET "+uploadsPrefix+"{filename}", s.guard("fetch", s.fetch))
	s.Server = httptest.NewServer(mux)
	return s
}

// Put seeds a stored file and returns its path.
func (s *Server) Put(filename string, png []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[filename]; !ok {
		s.order = append(s.order, filename)
	}
	s.files[filename] = png
	return uploadsPrefix + filename
}

// File returns the stored bytes for filename.
func (s *Server) File(filename string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[filename]
	return b, ok
}

// Calls returns how many requests reached the named endpoint
// ("list", "create", "update", "delete", "fetch").
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// FailNext makes the next n requests to endpoint answer 500.
func (s *Server) FailNext(endpoint string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[endpoint] = n
}

// Hold blocks every handler until Release is called. Each held request
// reports its endpoint on the returned channel.
func (s *Server) Hold() <-chan string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hold = make(chan struct{})
	s.entered = make(chan string, 16)
	return s.entered
}

// Release unblocks held requests.
func (s *Server) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hold != nil {
		close(s.hold)
		s.hold = nil
	}
}

func (s *Server) guard(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[endpoint]++
		hold, entered := s.hold, s.entered
		fail := s.failing[endpoint] > 0
		if fail {
			s.failing[endpoint]--
		}
		s.mu.Unlock()

		if hold != nil {
			entered <- endpoint
			<-hold
		}
		if fail {
			http.Error(w, "injected failure", http.StatusInternalServerError)
			return
		}
		h(w, r)
	}
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	paths := make([]string, 0, len(s.order))
	for _, name := range s.order {
		paths = append(paths, uploadsPrefix+name)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paths)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	png, ok := readDrawing(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	s.next++
	name := fmt.Sprintf("drawing-%d.png", s.next)
	s.mu.Unlock()

	path := s.Put(name, png)
	writeJSON(w, http.StatusCreated, map[string]string{"path": path, "filename": name})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if _, ok := s.File(name); !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	png, ok := readDrawing(w, r)
	if !ok {
		return
	}
	path := s.Put(name, png)
	writeJSON(w, http.StatusOK, map[string]string{"path": path, "filename": name})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[name]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	delete(s.files, name)
	kept := s.order[:0]
	for _, n := range s.order {
		if n != name {
			kept = append(kept, n)
		}
	}
	s.order = kept
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fetch(w http.ResponseWriter, r *http.Request) {
	png, ok := s.File(r.PathValue("filename"))
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func readDrawing(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "expected json", http.StatusUnsupportedMediaType)
		return nil, false
	}
	var body struct {
		DataURL string `json:"dataURL"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	png, err := surface.DecodeDataURL(body.DataURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return png, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
