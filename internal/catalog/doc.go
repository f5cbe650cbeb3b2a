// Package catalog provides an HTTP client for the remote book collection API.
//
// # Overview
//
// The collection lives behind a single REST resource path owned by an external
// service. This package maps the four collection operations onto HTTP:
//
//	List    GET    <base>
//	Create  POST   <base>        body: book without id
//	Update  PUT    <base>/<id>   body: full book
//	Delete  DELETE <base>/<id>
//
// Any status outside 2xx is a failure. When the error response carries a JSON
// body with a "message" field, that text is what the user sees.
//
// # Records
//
// Book interprets only id, title and author. Unknown fields are preserved in
// Book.Extra and written back on update, so the server keeps owning the schema.
// Identifiers are opaque strings; ids the server encodes as JSON numbers are
// sent back as numbers.
//
// Form submissions are expressed as a Draft: NewBook for records without an
// identifier, ExistingBook for records that have one. DraftFor picks the
// variant.
//
// # Errors
//
// Every failure is one of three types:
//
//   - *StatusError: the server answered with a non-success status
//   - *ConnectivityError: the request went out but no response came back
//   - *RequestError: the request could not be built, or its answer not decoded
//
// Message renders any of them as the line shown in the UI.
//
// # Tracing
//
// Each request runs inside a client span named "catalog.<op>" taken from the
// global OpenTelemetry provider unless WithTracerProvider is given.
package catalog
