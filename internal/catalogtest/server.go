// Package catalogtest runs an in-memory book collection behind a real HTTP
// server for tests.
package catalogtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/five82/bookshelf/internal/catalog"
)

// ResourcePath is where the collection is mounted.
const ResourcePath = "/books"

type failure struct {
	code    int
	message string
}

// Server is a fake remote collection with sequential string ids.
type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	books    map[string]catalog.Book
	order    []string
	nextID   int
	failures map[string][]failure
	requests []string
}

// NewServer starts a Server seeded with books and stops it when the test ends.
func NewServer(t testing.TB, seed ...catalog.Book) *Server {
	t.Helper()

	s := &Server{
		books:    make(map[string]catalog.Book, len(seed)),
		nextID:   1,
		failures: make(map[string][]failure),
	}
	for _, b := range seed {
		s.books[b.ID] = b.Clone()
		s.order = append(s.order, b.ID)
		if id, err := strconv.Atoi(b.ID); err == nil && id >= s.nextID {
			s.nextID = id + 1
		}
	}

	r := mux.NewRouter()
	r.Use(s.record, s.inject)
	r.Methods(http.MethodGet).Path(ResourcePath).HandlerFunc(s.list)
	r.Methods(http.MethodPost).Path(ResourcePath).HandlerFunc(s.create)
	r.Methods(http.MethodGet).Path(ResourcePath + "/{id}").HandlerFunc(s.get)
	r.Methods(http.MethodPut).Path(ResourcePath + "/{id}").HandlerFunc(s.update)
	r.Methods(http.MethodDelete).Path(ResourcePath + "/{id}").HandlerFunc(s.remove)

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the collection URL to hand to catalog.NewClient.
func (s *Server) URL() string {
	return s.srv.URL + ResourcePath
}

// Close stops the server; later requests fail with connection errors.
func (s *Server) Close() {
	s.srv.Close()
}

// FailNext makes the next request with method answer code with a JSON
// {"message": message} body. Calls queue up.
func (s *Server) FailNext(method string, code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], failure{code: code, message: message})
}

// Books returns the stored collection in insertion order.
func (s *Server) Books() []catalog.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Book, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.books[id].Clone())
	}
	return out
}

// Requests returns "METHOD path" for every request received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		queue := s.failures[r.Method]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[r.Method] = queue[1:]
		}
		s.mu.Unlock()
		if f != nil {
			writeJSON(w, f.code, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Books())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	b, ok := s.books[id]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Book not found"})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var b catalog.Book
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid JSON payload"})
		return
	}
	s.mu.Lock()
	b = b.WithoutID()
	b.ID = strconv.Itoa(s.nextID)
	s.nextID++
	s.books[b.ID] = b
	s.order = append(s.order, b.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var b catalog.Book
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid JSON payload"})
		return
	}
	s.mu.Lock()
	if _, ok := s.books[id]; !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Book not found"})
		return
	}
	b.ID = id
	s.books[id] = b
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Book not found"})
		return
	}
	delete(s.books, id)
	kept := s.order[:0]
	for _, existing := range s.order {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	s.order = kept
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
