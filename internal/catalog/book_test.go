package catalog

import (
	"encoding/json"
	"testing"
)

func TestBook_UnmarshalKeepsUnknownFields(t *testing.T) {
	var b Book
	if err := json.Unmarshal([]byte(`{"id":42,"title":"Dune","author":null,"tags":["sf"],"pages":412}`), &b); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if b.ID != "42" || !b.numericID {
		t.Fatalf("ID = %q numeric=%v, want 42 numeric", b.ID, b.numericID)
	}
	if b.Title != "Dune" || b.Author != "" {
		t.Fatalf("Title/Author = %q/%q", b.Title, b.Author)
	}
	if len(b.Extra) != 2 || string(b.Extra["pages"]) != "412" {
		t.Fatalf("Extra = %v, want tags and pages", b.Extra)
	}
}

func TestBook_MarshalWritesIDInOriginalForm(t *testing.T) {
	var numeric, text Book
	if err := json.Unmarshal([]byte(`{"id":5,"title":"A"}`), &numeric); err != nil {
		t.Fatalf("Unmarshal numeric: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"id":"5","title":"A"}`), &text); err != nil {
		t.Fatalf("Unmarshal text: %v", err)
	}

	out, err := json.Marshal(numeric)
	if err != nil {
		t.Fatalf("Marshal numeric: %v", err)
	}
	if string(out) != `{"author":"","id":5,"title":"A"}` {
		t.Fatalf("numeric = %s", out)
	}
	out, err = json.Marshal(text)
	if err != nil {
		t.Fatalf("Marshal text: %v", err)
	}
	if string(out) != `{"author":"","id":"5","title":"A"}` {
		t.Fatalf("text = %s", out)
	}
}

func TestBook_UnmarshalRejectsBadShapes(t *testing.T) {
	for _, input := range []string{`[]`, `null`, `{"id":true}`, `{"id":{}}`} {
		var b Book
		if err := json.Unmarshal([]byte(input), &b); err == nil {
			t.Fatalf("Unmarshal(%s) returned nil error", input)
		}
	}
}

func TestBook_CloneIsIndependent(t *testing.T) {
	orig := Book{ID: "1", Extra: map[string]json.RawMessage{"k": json.RawMessage(`"v"`)}}
	dup := orig.Clone()
	dup.Extra["k"][1] = 'x'
	dup.Extra["other"] = json.RawMessage(`1`)
	if string(orig.Extra["k"]) != `"v"` || len(orig.Extra) != 1 {
		t.Fatalf("Clone shares state: %v", orig.Extra)
	}
}

func TestDraftFor_PicksVariantByIdentifier(t *testing.T) {
	if _, ok := DraftFor(Book{Title: "x"}).(NewBook); !ok {
		t.Fatalf("DraftFor without id should be NewBook")
	}
	if _, ok := DraftFor(Book{ID: "  ", Title: "x"}).(NewBook); !ok {
		t.Fatalf("DraftFor with blank id should be NewBook")
	}
	d, ok := DraftFor(Book{ID: "9", Title: "x"}).(ExistingBook)
	if !ok || d.ID() != "9" {
		t.Fatalf("DraftFor with id should be ExistingBook 9, got %#v", d)
	}
	if got := (NewBook{Book: Book{ID: "9"}}).Payload(); got.HasID() {
		t.Fatalf("NewBook payload kept id %q", got.ID)
	}
}

func TestBook_NonStringTitleIsShownAndKept(t *testing.T) {
	var b Book
	if err := json.Unmarshal([]byte(`{"id":2,"title":1984,"author":true}`), &b); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if b.Title != "1984" || b.Author != "true" {
		t.Fatalf("Title/Author = %q/%q, want 1984/true", b.Title, b.Author)
	}

	out, err := json.Marshal(b.Clone())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"author":true,"id":2,"title":1984}` {
		t.Fatalf("untouched = %s", out)
	}

	b.Title = "Nineteen Eighty-Four"
	out, err = json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal edited: %v", err)
	}
	if string(out) != `{"author":true,"id":2,"title":"Nineteen Eighty-Four"}` {
		t.Fatalf("edited = %s", out)
	}
}
