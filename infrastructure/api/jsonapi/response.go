// Package jsonapi builds JSON:API response documents for the HTTP layer.
// See https://jsonapi.org/format/ for the envelope structure.
package jsonapi

// Document is the top-level response envelope. Data carries either a single
// Resource or a slice of them; error responses carry Errors instead.
type Document struct {
	Data   any     `json:"data"`
	Meta   *Meta   `json:"meta,omitempty"`
	Links  *Links  `json:"links,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Resource is one resource object: a stable type name, the entity ID, and
// the serialized attributes.
type Resource struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes any    `json:"attributes"`
}

// Meta holds non-standard information such as pagination totals.
type Meta map[string]any

// Links holds pagination links for list documents.
type Links struct {
	Self  string `json:"self,omitempty"`
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
}

// Error is one error object. ID carries the request correlation ID so a
// client can quote it back when reporting a failure.
type Error struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// NewResource builds a resource object.
func NewResource(resourceType, id string, attrs any) *Resource {
	return &Resource{Type: resourceType, ID: id, Attributes: attrs}
}

// NewSingleResponse wraps one resource in a document.
func NewSingleResponse(resource *Resource) *Document {
	return &Document{Data: resource}
}

// NewListResponse wraps a resource list in a document. An empty slice
// serializes as an empty data array, never null.
func NewListResponse(resources []*Resource) *Document {
	if resources == nil {
		resources = []*Resource{}
	}
	return &Document{Data: resources}
}

// NewErrorResponse wraps error objects in a document.
func NewErrorResponse(errors ...Error) *Document {
	return &Document{Errors: errors}
}

// NewError builds an error object from a status code string, a short title,
// and a human-readable detail.
func NewError(status, title, detail string) Error {
	return Error{Status: status, Title: title, Detail: detail}
}
