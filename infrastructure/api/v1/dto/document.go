// Package dto defines the JSON:API request bodies accepted by the v1 API.
package dto

// DocumentCreateAttributes represents the attributes for creating a document.
type DocumentCreateAttributes struct {
	DocumentTypeID int64  `json:"document_type_id"`
	Label          string `json:"label"`
	Description    string `json:"description,omitempty"`
	Language       string `json:"language,omitempty"`
}

// DocumentCreateData represents the data for creating a document.
type DocumentCreateData struct {
	Type       string                   `json:"type"`
	Attributes DocumentCreateAttributes `json:"attributes"`
}

// DocumentCreateRequest represents a JSON:API request to create a document.
type DocumentCreateRequest struct {
	Data DocumentCreateData `json:"data"`
}

// DocumentUpdateAttributes represents the attributes that can be updated
// on a document.
type DocumentUpdateAttributes struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
}

// DocumentUpdateData represents the data for updating a document.
type DocumentUpdateData struct {
	Type       string                   `json:"type"`
	Attributes DocumentUpdateAttributes `json:"attributes"`
}

// DocumentUpdateRequest represents a JSON:API request to update a document.
type DocumentUpdateRequest struct {
	Data DocumentUpdateData `json:"data"`
}

// DocumentTypeChangeAttributes represents the attributes for moving a
// document to another type.
type DocumentTypeChangeAttributes struct {
	DocumentTypeID int64 `json:"document_type_id"`
}

// DocumentTypeChangeData represents the data for a document type change.
type DocumentTypeChangeData struct {
	Type       string                       `json:"type"`
	Attributes DocumentTypeChangeAttributes `json:"attributes"`
}

// DocumentTypeChangeRequest represents a JSON:API request to change a
// document's type.
type DocumentTypeChangeRequest struct {
	Data DocumentTypeChangeData `json:"data"`
}

// DocumentTypeAttributes represents the attributes for creating or
// renaming a document type.
type DocumentTypeAttributes struct {
	Label string `json:"label"`
}

// DocumentTypeData represents document type data in JSON:API format.
type DocumentTypeData struct {
	Type       string                 `json:"type"`
	Attributes DocumentTypeAttributes `json:"attributes"`
}

// DocumentTypeRequest represents a JSON:API request to create or rename a
// document type.
type DocumentTypeRequest struct {
	Data DocumentTypeData `json:"data"`
}

// VersionCreateAttributes represents the attributes for creating a
// document version. Content carries an optional inline payload.
type VersionCreateAttributes struct {
	Comment string `json:"comment,omitempty"`
	Content []byte `json:"content,omitempty"`
}

// VersionCreateData represents the data for creating a version.
type VersionCreateData struct {
	Type       string                  `json:"type"`
	Attributes VersionCreateAttributes `json:"attributes"`
}

// VersionCreateRequest represents a JSON:API request to create a version.
type VersionCreateRequest struct {
	Data VersionCreateData `json:"data"`
}

// MetadataTypeCreateAttributes represents the attributes for creating a
// metadata type.
type MetadataTypeCreateAttributes struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// MetadataTypeCreateData represents the data for creating a metadata type.
type MetadataTypeCreateData struct {
	Type       string                       `json:"type"`
	Attributes MetadataTypeCreateAttributes `json:"attributes"`
}

// MetadataTypeCreateRequest represents a JSON:API request to create a
// metadata type.
type MetadataTypeCreateRequest struct {
	Data MetadataTypeCreateData `json:"data"`
}

// MetadataTypeUpdateAttributes represents the attributes that can be
// updated on a metadata type. The internal name is immutable.
type MetadataTypeUpdateAttributes struct {
	Label string `json:"label"`
}

// MetadataTypeUpdateData represents the data for renaming a metadata type.
type MetadataTypeUpdateData struct {
	Type       string                       `json:"type"`
	Attributes MetadataTypeUpdateAttributes `json:"attributes"`
}

// MetadataTypeUpdateRequest represents a JSON:API request to rename a
// metadata type.
type MetadataTypeUpdateRequest struct {
	Data MetadataTypeUpdateData `json:"data"`
}

// MetadataValueAttributes represents the attributes for setting a metadata
// value on a document.
type MetadataValueAttributes struct {
	MetadataTypeID int64  `json:"metadata_type_id"`
	Value          string `json:"value"`
}

// MetadataValueData represents the data for setting a metadata value.
type MetadataValueData struct {
	Type       string                  `json:"type"`
	Attributes MetadataValueAttributes `json:"attributes"`
}

// MetadataValueRequest represents a JSON:API request to set a metadata
// value on a document.
type MetadataValueRequest struct {
	Data MetadataValueData `json:"data"`
}
