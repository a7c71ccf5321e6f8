package persistence

import "time"

// DocumentModel represents a document in the database.
type DocumentModel struct {
	ID              int64      `gorm:"primaryKey;autoIncrement"`
	UUID            string     `gorm:"column:uuid;uniqueIndex;size:36"`
	DocumentTypeID  int64      `gorm:"column:document_type_id;index"`
	Label           string     `gorm:"column:label;index;size:255"`
	Description     string     `gorm:"column:description;type:text"`
	Language        string     `gorm:"column:language;size:8;default:eng"`
	InTrash         bool       `gorm:"column:in_trash;index;default:false"`
	DeletedDateTime *time.Time `gorm:"column:deleted_date_time"`
	DateAdded       time.Time  `gorm:"column:date_added;index"`
}

// TableName returns the table name.
func (DocumentModel) TableName() string {
	return "documents"
}

// DocumentTypeModel represents a document type in the database.
type DocumentTypeModel struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Label string `gorm:"column:label;uniqueIndex;size:32"`
}

// TableName returns the table name.
func (DocumentTypeModel) TableName() string {
	return "document_types"
}

// DocumentVersionModel represents a document version in the database.
type DocumentVersionModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	DocumentID int64     `gorm:"column:document_id;index"`
	Timestamp  time.Time `gorm:"column:timestamp;index"`
	Comment    string    `gorm:"column:comment;type:text"`
	Checksum   *string   `gorm:"column:checksum;index;size:64"`
	Encoding   *string   `gorm:"column:encoding;size:64"`
	Mimetype   *string   `gorm:"column:mimetype;size:255"`
	Size       int64     `gorm:"column:size;default:0"`
}

// TableName returns the table name.
func (DocumentVersionModel) TableName() string {
	return "document_versions"
}

// MetadataTypeModel represents a metadata type in the database.
type MetadataTypeModel struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"column:name;uniqueIndex;size:64"`
	Label string `gorm:"column:label;size:255"`
}

// TableName returns the table name.
func (MetadataTypeModel) TableName() string {
	return "metadata_types"
}

// DocumentMetadataModel represents one metadata value on a document.
// A document carries at most one value per metadata type.
type DocumentMetadataModel struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	DocumentID     int64  `gorm:"column:document_id;uniqueIndex:idx_document_metadata_doc_type"`
	MetadataTypeID int64  `gorm:"column:metadata_type_id;uniqueIndex:idx_document_metadata_doc_type"`
	Value          string `gorm:"column:value;type:text"`
}

// TableName returns the table name.
func (DocumentMetadataModel) TableName() string {
	return "document_metadata"
}

// SmartLinkModel represents a smart link in the database.
type SmartLinkModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Label        string `gorm:"column:label;size:96"`
	DynamicLabel string `gorm:"column:dynamic_label;size:96"`
	Enabled      bool   `gorm:"column:enabled"`
}

// TableName returns the table name.
func (SmartLinkModel) TableName() string {
	return "smart_links"
}

// SmartLinkConditionModel represents one condition of a smart link.
type SmartLinkConditionModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	SmartLinkID  int64  `gorm:"column:smart_link_id;index"`
	Inclusion    string `gorm:"column:inclusion;size:8;default:and"`
	TargetField  string `gorm:"column:target_field;size:128"`
	Operator     string `gorm:"column:operator;size:16"`
	OperandKind  string `gorm:"column:operand_kind;size:8"`
	OperandValue string `gorm:"column:operand_value;size:255"`
	Negated      bool   `gorm:"column:negated;default:false"`
	Enabled      bool   `gorm:"column:enabled"`
}

// TableName returns the table name.
func (SmartLinkConditionModel) TableName() string {
	return "smart_link_conditions"
}

// SmartLinkTypeModel joins smart links to the document types they are
// enabled for.
type SmartLinkTypeModel struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	SmartLinkID    int64 `gorm:"column:smart_link_id;uniqueIndex:idx_smart_link_type"`
	DocumentTypeID int64 `gorm:"column:document_type_id;uniqueIndex:idx_smart_link_type;index"`
}

// TableName returns the table name.
func (SmartLinkTypeModel) TableName() string {
	return "smart_link_document_types"
}

// UserModel represents a user in the database.
type UserModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Username    string    `gorm:"column:username;uniqueIndex;size:150"`
	IsSuperuser bool      `gorm:"column:is_superuser;default:false"`
	IsActive    bool      `gorm:"column:is_active"`
	DateJoined  time.Time `gorm:"column:date_joined"`
}

// TableName returns the table name.
func (UserModel) TableName() string {
	return "users"
}

// AccessEntryModel represents one permission grant. Null object columns
// mean the grant applies everywhere.
type AccessEntryModel struct {
	ID         int64   `gorm:"primaryKey;autoIncrement"`
	UserID     int64   `gorm:"column:user_id;index:idx_access_user_permission"`
	Permission string  `gorm:"column:permission;index:idx_access_user_permission;size:64"`
	ObjectType *string `gorm:"column:object_type;size:32"`
	ObjectID   *int64  `gorm:"column:object_id"`
}

// TableName returns the table name.
func (AccessEntryModel) TableName() string {
	return "access_entries"
}

// WorkflowModel represents a workflow in the database.
type WorkflowModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Label        string `gorm:"column:label;uniqueIndex;size:255"`
	InternalName string `gorm:"column:internal_name;uniqueIndex;size:255"`
}

// TableName returns the table name.
func (WorkflowModel) TableName() string {
	return "workflows"
}

// WorkflowStateModel represents a workflow state in the database.
type WorkflowStateModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	WorkflowID int64  `gorm:"column:workflow_id;index"`
	Label      string `gorm:"column:label;size:255"`
	Initial    bool   `gorm:"column:initial;default:false"`
	Completion int    `gorm:"column:completion;default:0"`
}

// TableName returns the table name.
func (WorkflowStateModel) TableName() string {
	return "workflow_states"
}

// WorkflowTransitionModel represents a workflow transition in the database.
// Null trigger columns mean no time trigger is configured.
type WorkflowTransitionModel struct {
	ID                 int64   `gorm:"primaryKey;autoIncrement"`
	WorkflowID         int64   `gorm:"column:workflow_id;index"`
	Label              string  `gorm:"column:label;size:255"`
	OriginStateID      int64   `gorm:"column:origin_state_id;index"`
	DestinationStateID int64   `gorm:"column:destination_state_id"`
	TriggerTimePeriod  *int    `gorm:"column:trigger_time_period"`
	TriggerTimeUnit    *string `gorm:"column:trigger_time_unit;size:8"`
}

// TableName returns the table name.
func (WorkflowTransitionModel) TableName() string {
	return "workflow_transitions"
}

// WorkflowTypeModel joins workflows to the document types they launch for.
type WorkflowTypeModel struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	WorkflowID     int64 `gorm:"column:workflow_id;uniqueIndex:idx_workflow_type"`
	DocumentTypeID int64 `gorm:"column:document_type_id;uniqueIndex:idx_workflow_type;index"`
}

// TableName returns the table name.
func (WorkflowTypeModel) TableName() string {
	return "workflow_document_types"
}

// WorkflowInstanceModel represents one document moving through one
// workflow. A document has at most one instance per workflow.
type WorkflowInstanceModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	WorkflowID int64     `gorm:"column:workflow_id;uniqueIndex:idx_workflow_instance_doc"`
	DocumentID int64     `gorm:"column:document_id;uniqueIndex:idx_workflow_instance_doc;index"`
	LaunchedAt time.Time `gorm:"column:launched_at"`
}

// TableName returns the table name.
func (WorkflowInstanceModel) TableName() string {
	return "workflow_instances"
}

// WorkflowLogEntryModel records one executed transition. A null user
// means the system executed it.
type WorkflowLogEntryModel struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement"`
	WorkflowInstanceID int64     `gorm:"column:workflow_instance_id;index"`
	TransitionID       int64     `gorm:"column:transition_id"`
	UserID             *int64    `gorm:"column:user_id"`
	Comment            string    `gorm:"column:comment;type:text"`
	Datetime           time.Time `gorm:"column:datetime;index"`
}

// TableName returns the table name.
func (WorkflowLogEntryModel) TableName() string {
	return "workflow_instance_log_entries"
}

// TriggerEventModel associates a stored event type with a transition.
type TriggerEventModel struct {
	ID           int64 `gorm:"primaryKey;autoIncrement"`
	TransitionID int64 `gorm:"column:transition_id;index"`
	EventTypeID  int64 `gorm:"column:event_type_id;index"`
}

// TableName returns the table name.
func (TriggerEventModel) TableName() string {
	return "workflow_transition_trigger_events"
}

// StoredEventTypeModel is the lazily created row for an event type.
type StoredEventTypeModel struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"column:name;uniqueIndex;size:64"`
}

// TableName returns the table name.
func (StoredEventTypeModel) TableName() string {
	return "event_types"
}

// EventRecordModel represents one committed event. A null actor means the
// system acted.
type EventRecordModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	StoredTypeID int64     `gorm:"column:stored_type_id;index"`
	ActorID      *int64    `gorm:"column:actor_id;index"`
	TargetType   string    `gorm:"column:target_type;index:idx_events_target;size:32"`
	TargetID     int64     `gorm:"column:target_id;index:idx_events_target"`
	Datetime     time.Time `gorm:"column:datetime;index"`
}

// TableName returns the table name.
func (EventRecordModel) TableName() string {
	return "events"
}

// SchemaRevisionModel records an applied schema revision.
type SchemaRevisionModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;uniqueIndex;size:128"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

// TableName returns the table name.
func (SchemaRevisionModel) TableName() string {
	return "schema_revisions"
}
