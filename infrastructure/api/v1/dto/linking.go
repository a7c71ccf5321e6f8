package dto

// SmartLinkCreateAttributes represents the attributes for creating a
// smart link.
type SmartLinkCreateAttributes struct {
	Label        string `json:"label"`
	DynamicLabel string `json:"dynamic_label,omitempty"`
}

// SmartLinkCreateData represents the data for creating a smart link.
type SmartLinkCreateData struct {
	Type       string                    `json:"type"`
	Attributes SmartLinkCreateAttributes `json:"attributes"`
}

// SmartLinkCreateRequest represents a JSON:API request to create a smart link.
type SmartLinkCreateRequest struct {
	Data SmartLinkCreateData `json:"data"`
}

// SmartLinkUpdateAttributes represents the attributes that can be updated
// on a smart link.
type SmartLinkUpdateAttributes struct {
	Label        string `json:"label"`
	DynamicLabel string `json:"dynamic_label,omitempty"`
	Enabled      bool   `json:"enabled"`
}

// SmartLinkUpdateData represents the data for updating a smart link.
type SmartLinkUpdateData struct {
	Type       string                    `json:"type"`
	Attributes SmartLinkUpdateAttributes `json:"attributes"`
}

// SmartLinkUpdateRequest represents a JSON:API request to update a smart link.
type SmartLinkUpdateRequest struct {
	Data SmartLinkUpdateData `json:"data"`
}

// ConditionAttributes represents the attributes for creating or updating a
// smart link condition. OperandKind selects how OperandValue is read:
// "literal" compares against the raw string, "field" dereferences a field
// of the source document at resolution time.
type ConditionAttributes struct {
	Inclusion    string `json:"inclusion,omitempty"`
	TargetField  string `json:"target_field"`
	Operator     string `json:"operator"`
	OperandKind  string `json:"operand_kind,omitempty"`
	OperandValue string `json:"operand_value"`
	Negated      bool   `json:"negated,omitempty"`
	Enabled      *bool  `json:"enabled,omitempty"`
}

// ConditionData represents condition data in JSON:API format.
type ConditionData struct {
	Type       string              `json:"type"`
	Attributes ConditionAttributes `json:"attributes"`
}

// ConditionRequest represents a JSON:API request to create or update a
// smart link condition.
type ConditionRequest struct {
	Data ConditionData `json:"data"`
}

// TypeAssignmentAttributes represents the attributes for assigning a
// document type to a smart link or workflow.
type TypeAssignmentAttributes struct {
	DocumentTypeID int64 `json:"document_type_id"`
}

// TypeAssignmentData represents type assignment data in JSON:API format.
type TypeAssignmentData struct {
	Type       string                   `json:"type"`
	Attributes TypeAssignmentAttributes `json:"attributes"`
}

// TypeAssignmentRequest represents a JSON:API request to assign a document
// type to a smart link or workflow.
type TypeAssignmentRequest struct {
	Data TypeAssignmentData `json:"data"`
}
