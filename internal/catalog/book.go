package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Book is a catalog record as served by the remote collection API.
//
// Only the identifier, title and author are interpreted locally. Every other
// field the server sends is kept verbatim in Extra so a record can be written
// back without losing data the client does not know about.
type Book struct {
	ID     string
	Title  string
	Author string
	Extra  map[string]json.RawMessage

	// numericID records that the server encoded the id as a JSON number.
	numericID bool
	// literals holds title or author values the server sent as something
	// other than a string, keyed by field name.
	literals map[string]json.RawMessage
}

// HasID reports whether the server has assigned an identifier.
func (b Book) HasID() bool {
	return strings.TrimSpace(b.ID) != ""
}

// Clone returns a copy that shares no mutable state with b.
func (b Book) Clone() Book {
	dup := b
	if b.Extra != nil {
		dup.Extra = make(map[string]json.RawMessage, len(b.Extra))
		for k, v := range b.Extra {
			dup.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	if b.literals != nil {
		dup.literals = make(map[string]json.RawMessage, len(b.literals))
		for k, v := range b.literals {
			dup.literals[k] = append(json.RawMessage(nil), v...)
		}
	}
	return dup
}

// WithoutID returns a copy with the identifier removed.
func (b Book) WithoutID() Book {
	dup := b.Clone()
	dup.ID = ""
	dup.numericID = false
	return dup
}

// MarshalJSON writes known fields alongside the preserved extra fields.
func (b Book) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(b.Extra)+3)
	for k, v := range b.Extra {
		fields[k] = v
	}
	if b.HasID() {
		if b.numericID && json.Valid([]byte(b.ID)) {
			fields["id"] = json.RawMessage(b.ID)
		} else {
			raw, err := json.Marshal(b.ID)
			if err != nil {
				return nil, err
			}
			fields["id"] = raw
		}
	} else {
		delete(fields, "id")
	}
	for key, value := range map[string]string{"title": b.Title, "author": b.Author} {
		if lit, ok := b.literals[key]; ok && string(lit) == value {
			fields[key] = lit
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		fields[key] = raw
	}
	return json.Marshal(fields)
}

// UnmarshalJSON accepts any JSON object. The id may be a string or a number;
// title and author may be any JSON value.
func (b *Book) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("book is null")
	}

	out := Book{}
	if raw, ok := fields["id"]; ok {
		id, numeric, err := decodeID(raw)
		if err != nil {
			return err
		}
		out.ID, out.numericID = id, numeric
		delete(fields, "id")
	}
	for key, dest := range map[string]*string{"title": &out.Title, "author": &out.Author} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if isNull(raw) {
			delete(fields, key)
			continue
		}
		if err := json.Unmarshal(raw, dest); err != nil {
			// Numbers, booleans and structures are shown as their JSON text
			// and written back unchanged unless edited.
			var compact bytes.Buffer
			if err := json.Compact(&compact, raw); err != nil {
				return fmt.Errorf("field %s: %w", key, err)
			}
			*dest = compact.String()
			if out.literals == nil {
				out.literals = make(map[string]json.RawMessage, 2)
			}
			out.literals[key] = json.RawMessage(compact.Bytes())
		}
		delete(fields, key)
	}
	if len(fields) > 0 {
		out.Extra = fields
	}
	*b = out
	return nil
}

func decodeID(raw json.RawMessage) (string, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return "", false, nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false, fmt.Errorf("field id: %w", err)
		}
		return s, false, nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", false, fmt.Errorf("field id: want string or number, got %s", trimmed)
	}
	return n.String(), true, nil
}

func isNull(raw []byte) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// Draft is a record submitted from the form view. It is either a NewBook or
// an ExistingBook; the variant decides between create and update.
type Draft interface {
	// Payload returns the record to send to the server.
	Payload() Book
	isDraft()
}

// NewBook is a record the server has not stored yet.
type NewBook struct {
	Book Book
}

// Payload returns the record with any identifier stripped.
func (n NewBook) Payload() Book { return n.Book.WithoutID() }

func (NewBook) isDraft() {}

// ExistingBook is a record that already carries a server identifier.
type ExistingBook struct {
	Book Book
}

// Payload returns the full record including its identifier.
func (e ExistingBook) Payload() Book { return e.Book.Clone() }

// ID returns the identifier of the record being updated.
func (e ExistingBook) ID() string { return e.Book.ID }

func (ExistingBook) isDraft() {}

// DraftFor wraps b in the variant matching its identifier.
func DraftFor(b Book) Draft {
	if b.HasID() {
		return ExistingBook{Book: b}
	}
	return NewBook{Book: b}
}
