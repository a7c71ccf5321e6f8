package dto

// UserCreateAttributes represents the attributes for creating a user.
type UserCreateAttributes struct {
	Username string `json:"username"`
}

// UserCreateData represents the data for creating a user.
type UserCreateData struct {
	Type       string               `json:"type"`
	Attributes UserCreateAttributes `json:"attributes"`
}

// UserCreateRequest represents a JSON:API request to create a user.
type UserCreateRequest struct {
	Data UserCreateData `json:"data"`
}

// UserUpdateAttributes represents the flags that can be updated on a user.
// Nil fields are left unchanged.
type UserUpdateAttributes struct {
	IsActive    *bool `json:"is_active,omitempty"`
	IsSuperuser *bool `json:"is_superuser,omitempty"`
}

// UserUpdateData represents the data for updating a user.
type UserUpdateData struct {
	Type       string               `json:"type"`
	Attributes UserUpdateAttributes `json:"attributes"`
}

// UserUpdateRequest represents a JSON:API request to update a user's flags.
type UserUpdateRequest struct {
	Data UserUpdateData `json:"data"`
}

// AccessEntryCreateAttributes represents the attributes for granting a
// permission. Empty ObjectKind and zero ObjectID grant globally.
type AccessEntryCreateAttributes struct {
	UserID     int64  `json:"user_id"`
	Permission string `json:"permission"`
	ObjectKind string `json:"object_kind,omitempty"`
	ObjectID   int64  `json:"object_id,omitempty"`
}

// AccessEntryCreateData represents the data for granting a permission.
type AccessEntryCreateData struct {
	Type       string                      `json:"type"`
	Attributes AccessEntryCreateAttributes `json:"attributes"`
}

// AccessEntryCreateRequest represents a JSON:API request to grant a
// permission.
type AccessEntryCreateRequest struct {
	Data AccessEntryCreateData `json:"data"`
}
