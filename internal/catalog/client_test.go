package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestParseBaseURL_Normalizes(t *testing.T) {
	u, err := parseBaseURL("  127.0.0.1:3000/books/?x=1#frag ")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if got := u.String(); got != "http://127.0.0.1:3000/books" {
		t.Fatalf("url = %q, want http://127.0.0.1:3000/books", got)
	}
}

func TestParseBaseURL_RejectsEmpty(t *testing.T) {
	if _, err := parseBaseURL("   "); err == nil {
		t.Fatalf("parseBaseURL returned nil error, want error")
	}
}

func TestClient_ResourceURLEscapesID(t *testing.T) {
	c, err := NewClient("http://example.com/api/books/")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if got := c.resourceURL(""); got != "http://example.com/api/books" {
		t.Fatalf("collection url = %q", got)
	}
	if got := c.resourceURL("a b/c"); got != "http://example.com/api/books/a%20b%2Fc" {
		t.Fatalf("item url = %q", got)
	}
}

func TestClient_CollectionOperations(t *testing.T) {
	t.Parallel()

	type request struct {
		method      string
		path        string
		body        string
		contentType string
		userAgent   string
		requestID   string
	}
	var (
		mu  sync.Mutex
		got []request
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, request{
			method:      r.Method,
			path:        r.URL.EscapedPath(),
			body:        string(body),
			contentType: r.Header.Get("Content-Type"),
			userAgent:   r.Header.Get("User-Agent"),
			requestID:   r.Header.Get("X-Request-ID"),
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/books":
			_, _ = w.Write([]byte(`[{"id":1,"title":"Dune","author":"Herbert","year":1965},{"id":"b2","title":"Emma","author":"Austen"}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/books":
			_, _ = w.Write([]byte(`{"id":"3","title":"Ulysses","author":"Joyce"}`))
		case r.Method == http.MethodPut && r.URL.Path == "/books/1":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete && r.URL.Path == "/books/b2":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/books")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	books, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(books) != 2 || books[0].ID != "1" || books[1].ID != "b2" || books[1].Title != "Emma" {
		t.Fatalf("List = %#v, want ids 1 and b2", books)
	}
	if string(books[0].Extra["year"]) != "1965" {
		t.Fatalf("List extra = %v, want year preserved", books[0].Extra)
	}

	created, err := c.Create(ctx, NewBook{Book: Book{ID: "ignored", Title: "Ulysses", Author: "Joyce"}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != "3" {
		t.Fatalf("Create id = %q, want 3", created.ID)
	}

	edited := books[0]
	edited.Title = "Dune Messiah"
	updated, err := c.Update(ctx, ExistingBook{Book: edited})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.ID != "1" || updated.Title != "Dune Messiah" {
		t.Fatalf("Update = %#v, want submitted book back", updated)
	}

	if err := c.Delete(ctx, "b2"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 4 {
		t.Fatalf("requests = %d, want 4", len(got))
	}
	if strings.Contains(got[1].body, `"id"`) {
		t.Fatalf("create body = %s, want no id", got[1].body)
	}
	if got[1].contentType != "application/json" {
		t.Fatalf("create Content-Type = %q", got[1].contentType)
	}
	var put map[string]any
	if err := json.Unmarshal([]byte(got[2].body), &put); err != nil {
		t.Fatalf("update body not json: %v", err)
	}
	if put["id"] != float64(1) || put["year"] != float64(1965) || put["title"] != "Dune Messiah" {
		t.Fatalf("update body = %v, want numeric id and extra fields", put)
	}
	seen := map[string]bool{}
	for _, r := range got {
		if !strings.HasPrefix(r.userAgent, "bookshelf/") {
			t.Fatalf("User-Agent = %q, want bookshelf/*", r.userAgent)
		}
		if r.requestID == "" || seen[r.requestID] {
			t.Fatalf("X-Request-ID = %q, want unique per request", r.requestID)
		}
		seen[r.requestID] = true
	}
}

func TestClient_UpdatePrefersServerRepresentation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"7","title":"Server Title","author":"A","updatedAt":"now"}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	got, err := c.Update(context.Background(), ExistingBook{Book: Book{ID: "7", Title: "Mine"}})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got.Title != "Server Title" || got.Extra["updatedAt"] == nil {
		t.Fatalf("Update = %#v, want server body", got)
	}
}

func TestClient_ListAcceptsMixedFieldTypes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"Dune","author":"Herbert"},{"id":2,"title":1984,"author":null,"tags":["dystopia"]}]`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	books, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("List returned %d books, want 2", len(books))
	}
	if books[1].ID != "2" || books[1].Title != "1984" || books[1].Author != "" {
		t.Fatalf("mixed record = %#v", books[1])
	}
	if string(books[1].Extra["tags"]) != `["dystopia"]` {
		t.Fatalf("Extra = %v, want tags kept", books[1].Extra)
	}
}

func TestClient_StatusErrorCarriesServerMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Book not found"}`))
		case http.MethodPut:
			http.Error(w, "read only", http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("<html>oops</html>"))
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	err = c.Delete(context.Background(), "9")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Delete error = %v, want *StatusError", err)
	}
	if statusErr.Code != 404 || statusErr.Message != "Book not found" {
		t.Fatalf("StatusError = %#v, want 404 Book not found", statusErr)
	}
	if got := Message(err); got != "Error: 404 - Book not found" {
		t.Fatalf("Message = %q", got)
	}

	_, err = c.Update(context.Background(), ExistingBook{Book: Book{ID: "9"}})
	if got := Message(err); got != "Error: 403 - read only" {
		t.Fatalf("Message = %q, want plain text body", got)
	}

	_, err = c.List(context.Background())
	if got := Message(err); got != "Error: 500 - Internal Server Error" {
		t.Fatalf("Message = %q, want status text fallback", got)
	}
}

func TestClient_ConnectivityError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := NewClient(url, WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.List(context.Background())
	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("List error = %v, want *ConnectivityError", err)
	}
	if got := Message(err); got != NetworkErrorMessage {
		t.Fatalf("Message = %q, want %q", got, NetworkErrorMessage)
	}
}

func TestClient_TimeoutIsConnectivityError(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	c, err := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.List(context.Background())
	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("List error = %v, want *ConnectivityError", err)
	}
}

func TestClient_RequestErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			_, _ = w.Write([]byte(`{"title":"no id"}`))
		default:
			_, _ = w.Write([]byte("{not-json"))
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.List(context.Background())
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Op != "decode response" {
		t.Fatalf("List error = %v, want decode response RequestError", err)
	}
	if got := Message(err); !strings.HasPrefix(got, "Error: decode response") {
		t.Fatalf("Message = %q", got)
	}

	_, err = c.Create(context.Background(), NewBook{Book: Book{Title: "x"}})
	if !errors.As(err, &reqErr) {
		t.Fatalf("Create error = %v, want RequestError for missing id", err)
	}

	if err := c.Delete(context.Background(), " "); !errors.As(err, &reqErr) {
		t.Fatalf("Delete error = %v, want RequestError for empty id", err)
	}

	var nilClient *Client
	if _, err := nilClient.List(context.Background()); !errors.As(err, &reqErr) {
		t.Fatalf("nil client error = %v, want RequestError", err)
	}
}

func TestClient_RecordsSpans(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"nope"}`, http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	c, err := NewClient(server.URL, WithTracerProvider(tp))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_ = c.Delete(context.Background(), "1")

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Name() != "catalog.delete" {
		t.Fatalf("span name = %q, want catalog.delete", spans[0].Name())
	}
	var code int64
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "http.response.status_code" {
			code = kv.Value.AsInt64()
		}
	}
	if code != http.StatusBadRequest {
		t.Fatalf("status attribute = %d, want 400", code)
	}
}
