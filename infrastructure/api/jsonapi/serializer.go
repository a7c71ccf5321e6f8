package jsonapi

import (
	"fmt"
	"time"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/event"
	"github.com/pagekeep/doclink/domain/linking"
	"github.com/pagekeep/doclink/domain/workflow"
)

// DocumentAttributes represents document attributes in JSON:API format.
type DocumentAttributes struct {
	UUID           string     `json:"uuid"`
	Label          string     `json:"label"`
	Description    string     `json:"description"`
	Language       string     `json:"language"`
	DocumentTypeID int64      `json:"document_type_id"`
	InTrash        bool       `json:"in_trash"`
	DateAdded      time.Time  `json:"date_added"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// DocumentTypeAttributes represents document type attributes in JSON:API format.
type DocumentTypeAttributes struct {
	Label string `json:"label"`
}

// VersionAttributes represents document version attributes in JSON:API format.
type VersionAttributes struct {
	DocumentID int64     `json:"document_id"`
	Timestamp  time.Time `json:"timestamp"`
	Comment    string    `json:"comment"`
	Checksum   string    `json:"checksum,omitempty"`
	Encoding   string    `json:"encoding,omitempty"`
	Mimetype   string    `json:"mimetype,omitempty"`
	Size       int64     `json:"size"`
	HasContent bool      `json:"has_content"`
}

// MetadataTypeAttributes represents metadata type attributes in JSON:API format.
type MetadataTypeAttributes struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// MetadataValueAttributes represents a stored metadata value in JSON:API format.
type MetadataValueAttributes struct {
	DocumentID     int64  `json:"document_id"`
	MetadataTypeID int64  `json:"metadata_type_id"`
	TypeName       string `json:"type_name"`
	TypeLabel      string `json:"type_label"`
	Value          string `json:"value"`
}

// SmartLinkAttributes represents smart link attributes in JSON:API format.
type SmartLinkAttributes struct {
	Label        string `json:"label"`
	DynamicLabel string `json:"dynamic_label,omitempty"`
	Enabled      bool   `json:"enabled"`
}

// ConditionAttributes represents smart link condition attributes in JSON:API format.
type ConditionAttributes struct {
	SmartLinkID  int64  `json:"smart_link_id"`
	Inclusion    string `json:"inclusion"`
	TargetField  string `json:"target_field"`
	Operator     string `json:"operator"`
	OperandKind  string `json:"operand_kind"`
	OperandValue string `json:"operand_value"`
	Negated      bool   `json:"negated"`
	Enabled      bool   `json:"enabled"`
}

// ResolvedLinkAttributes represents a resolved smart link in JSON:API format.
// Error carries evaluation failure detail and is only populated for viewers
// holding edit permission on the link.
type ResolvedLinkAttributes struct {
	Label string `json:"label"`
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}

// WorkflowAttributes represents workflow attributes in JSON:API format.
type WorkflowAttributes struct {
	Label        string `json:"label"`
	InternalName string `json:"internal_name"`
}

// StateAttributes represents workflow state attributes in JSON:API format.
type StateAttributes struct {
	WorkflowID int64  `json:"workflow_id"`
	Label      string `json:"label"`
	Initial    bool   `json:"initial"`
	Completion int    `json:"completion"`
}

// TransitionAttributes represents workflow transition attributes in JSON:API format.
type TransitionAttributes struct {
	WorkflowID         int64   `json:"workflow_id"`
	Label              string  `json:"label"`
	OriginStateID      int64   `json:"origin_state_id"`
	DestinationStateID int64   `json:"destination_state_id"`
	TriggerPeriod      *int    `json:"trigger_period,omitempty"`
	TriggerUnit        *string `json:"trigger_unit,omitempty"`
}

// TriggerEventAttributes represents a transition trigger event in JSON:API format.
type TriggerEventAttributes struct {
	TransitionID int64  `json:"transition_id"`
	EventType    string `json:"event_type"`
}

// InstanceAttributes represents workflow instance attributes in JSON:API
// format. The current-state fields are populated on status reads only.
type InstanceAttributes struct {
	WorkflowID        int64      `json:"workflow_id"`
	DocumentID        int64      `json:"document_id"`
	LaunchedAt        time.Time  `json:"launched_at"`
	CurrentStateID    *int64     `json:"current_state_id,omitempty"`
	CurrentStateLabel *string    `json:"current_state_label,omitempty"`
	Completion        *int       `json:"completion,omitempty"`
	EnteredAt         *time.Time `json:"entered_at,omitempty"`
}

// LogEntryAttributes represents a workflow log entry in JSON:API format.
// UserID is null for system-executed transitions.
type LogEntryAttributes struct {
	InstanceID   int64     `json:"instance_id"`
	TransitionID int64     `json:"transition_id"`
	UserID       *int64    `json:"user_id"`
	BySystem     bool      `json:"by_system"`
	Comment      string    `json:"comment,omitempty"`
	Datetime     time.Time `json:"datetime"`
}

// UserAttributes represents user attributes in JSON:API format.
type UserAttributes struct {
	Username    string    `json:"username"`
	IsSuperuser bool      `json:"is_superuser"`
	IsActive    bool      `json:"is_active"`
	DateJoined  time.Time `json:"date_joined"`
}

// AccessEntryAttributes represents access entry attributes in JSON:API
// format. ObjectKind and ObjectID are null for global grants.
type AccessEntryAttributes struct {
	UserID     int64   `json:"user_id"`
	Permission string  `json:"permission"`
	ObjectKind *string `json:"object_kind"`
	ObjectID   *int64  `json:"object_id"`
}

// PermissionAttributes represents a grantable permission in JSON:API format.
type PermissionAttributes struct {
	Name string `json:"name"`
}

// EventTypeAttributes represents a registered event type in JSON:API format.
type EventTypeAttributes struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Namespace string `json:"namespace"`
}

// EventRecordAttributes represents an event record in JSON:API format.
// ActorID is null for system-committed events.
type EventRecordAttributes struct {
	EventType  string    `json:"event_type"`
	ActorID    *int64    `json:"actor_id"`
	BySystem   bool      `json:"by_system"`
	TargetKind string    `json:"target_kind"`
	TargetID   int64     `json:"target_id"`
	Datetime   time.Time `json:"datetime"`
}

// Serializer converts domain objects to JSON:API resources.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// DocumentResource converts a document to a JSON:API resource.
func (s *Serializer) DocumentResource(doc document.Document) *Resource {
	attrs := &DocumentAttributes{
		UUID:           doc.UUID().String(),
		Label:          doc.Label(),
		Description:    doc.Description(),
		Language:       doc.Language(),
		DocumentTypeID: doc.TypeID(),
		InTrash:        doc.InTrash(),
		DateAdded:      doc.DateAdded(),
		DeletedAt:      doc.DeletedAt(),
	}
	return NewResource("document", fmt.Sprintf("%d", doc.ID()), attrs)
}

// DocumentResources converts multiple documents to JSON:API resources.
func (s *Serializer) DocumentResources(docs []document.Document) []*Resource {
	resources := make([]*Resource, len(docs))
	for i, doc := range docs {
		resources[i] = s.DocumentResource(doc)
	}
	return resources
}

// DocumentTypeResource converts a document type to a JSON:API resource.
func (s *Serializer) DocumentTypeResource(t document.Type) *Resource {
	attrs := &DocumentTypeAttributes{Label: t.Label()}
	return NewResource("document-type", fmt.Sprintf("%d", t.ID()), attrs)
}

// DocumentTypeResources converts multiple document types to JSON:API resources.
func (s *Serializer) DocumentTypeResources(types []document.Type) []*Resource {
	resources := make([]*Resource, len(types))
	for i, t := range types {
		resources[i] = s.DocumentTypeResource(t)
	}
	return resources
}

// VersionResource converts a document version to a JSON:API resource.
func (s *Serializer) VersionResource(v document.Version) *Resource {
	attrs := &VersionAttributes{
		DocumentID: v.DocumentID(),
		Timestamp:  v.Timestamp(),
		Comment:    v.Comment(),
		Checksum:   v.Checksum(),
		Encoding:   v.Encoding(),
		Mimetype:   v.Mimetype(),
		Size:       v.Size(),
		HasContent: v.HasContent(),
	}
	return NewResource("document-version", fmt.Sprintf("%d", v.ID()), attrs)
}

// VersionResources converts multiple versions to JSON:API resources.
func (s *Serializer) VersionResources(versions []document.Version) []*Resource {
	resources := make([]*Resource, len(versions))
	for i, v := range versions {
		resources[i] = s.VersionResource(v)
	}
	return resources
}

// MetadataTypeResource converts a metadata type to a JSON:API resource.
func (s *Serializer) MetadataTypeResource(t document.MetadataType) *Resource {
	attrs := &MetadataTypeAttributes{
		Name:  t.Name(),
		Label: t.Label(),
	}
	return NewResource("metadata-type", fmt.Sprintf("%d", t.ID()), attrs)
}

// MetadataTypeResources converts multiple metadata types to JSON:API resources.
func (s *Serializer) MetadataTypeResources(types []document.MetadataType) []*Resource {
	resources := make([]*Resource, len(types))
	for i, t := range types {
		resources[i] = s.MetadataTypeResource(t)
	}
	return resources
}

// MetadataValueResource converts a stored metadata value together with its
// type to a JSON:API resource.
func (s *Serializer) MetadataValueResource(value document.Metadata, t document.MetadataType) *Resource {
	attrs := &MetadataValueAttributes{
		DocumentID:     value.DocumentID(),
		MetadataTypeID: value.TypeID(),
		TypeName:       t.Name(),
		TypeLabel:      t.Label(),
		Value:          value.Value(),
	}
	return NewResource("metadata-value", fmt.Sprintf("%d", value.ID()), attrs)
}

// SmartLinkResource converts a smart link to a JSON:API resource.
func (s *Serializer) SmartLinkResource(link linking.SmartLink) *Resource {
	attrs := &SmartLinkAttributes{
		Label:        link.Label(),
		DynamicLabel: link.DynamicLabel(),
		Enabled:      link.Enabled(),
	}
	return NewResource("smart-link", fmt.Sprintf("%d", link.ID()), attrs)
}

// SmartLinkResources converts multiple smart links to JSON:API resources.
func (s *Serializer) SmartLinkResources(links []linking.SmartLink) []*Resource {
	resources := make([]*Resource, len(links))
	for i, link := range links {
		resources[i] = s.SmartLinkResource(link)
	}
	return resources
}

// ConditionResource converts a smart link condition to a JSON:API resource.
func (s *Serializer) ConditionResource(c linking.Condition) *Resource {
	attrs := &ConditionAttributes{
		SmartLinkID:  c.SmartLinkID(),
		Inclusion:    string(c.Inclusion()),
		TargetField:  c.TargetField().String(),
		Operator:     string(c.Operator()),
		OperandKind:  string(c.Operand().Kind()),
		OperandValue: c.Operand().Value(),
		Negated:      c.Negated(),
		Enabled:      c.Enabled(),
	}
	return NewResource("smart-link-condition", fmt.Sprintf("%d", c.ID()), attrs)
}

// ConditionResources converts multiple conditions to JSON:API resources.
func (s *Serializer) ConditionResources(conditions []linking.Condition) []*Resource {
	resources := make([]*Resource, len(conditions))
	for i, c := range conditions {
		resources[i] = s.ConditionResource(c)
	}
	return resources
}

// ResolvedLinkResource converts a resolution outcome to a JSON:API resource.
// The resource id is the smart link's id; the resolved documents travel as
// separate document resources.
func (s *Serializer) ResolvedLinkResource(link linking.SmartLink, label string, total int, errText string) *Resource {
	attrs := &ResolvedLinkAttributes{
		Label: label,
		Total: total,
		Error: errText,
	}
	return NewResource("resolved-smart-link", fmt.Sprintf("%d", link.ID()), attrs)
}

// WorkflowResource converts a workflow to a JSON:API resource.
func (s *Serializer) WorkflowResource(w workflow.Workflow) *Resource {
	attrs := &WorkflowAttributes{
		Label:        w.Label(),
		InternalName: w.InternalName(),
	}
	return NewResource("workflow", fmt.Sprintf("%d", w.ID()), attrs)
}

// WorkflowResources converts multiple workflows to JSON:API resources.
func (s *Serializer) WorkflowResources(workflows []workflow.Workflow) []*Resource {
	resources := make([]*Resource, len(workflows))
	for i, w := range workflows {
		resources[i] = s.WorkflowResource(w)
	}
	return resources
}

// StateResource converts a workflow state to a JSON:API resource.
func (s *Serializer) StateResource(st workflow.State) *Resource {
	attrs := &StateAttributes{
		WorkflowID: st.WorkflowID(),
		Label:      st.Label(),
		Initial:    st.Initial(),
		Completion: st.Completion(),
	}
	return NewResource("workflow-state", fmt.Sprintf("%d", st.ID()), attrs)
}

// StateResources converts multiple states to JSON:API resources.
func (s *Serializer) StateResources(states []workflow.State) []*Resource {
	resources := make([]*Resource, len(states))
	for i, st := range states {
		resources[i] = s.StateResource(st)
	}
	return resources
}

// TransitionResource converts a workflow transition to a JSON:API resource.
func (s *Serializer) TransitionResource(t workflow.Transition) *Resource {
	attrs := &TransitionAttributes{
		WorkflowID:         t.WorkflowID(),
		Label:              t.Label(),
		OriginStateID:      t.OriginStateID(),
		DestinationStateID: t.DestinationStateID(),
	}
	if t.HasTimeTrigger() {
		period := t.TriggerPeriod()
		unit := string(t.TriggerUnit())
		attrs.TriggerPeriod = &period
		attrs.TriggerUnit = &unit
	}
	return NewResource("workflow-transition", fmt.Sprintf("%d", t.ID()), attrs)
}

// TransitionResources converts multiple transitions to JSON:API resources.
func (s *Serializer) TransitionResources(transitions []workflow.Transition) []*Resource {
	resources := make([]*Resource, len(transitions))
	for i, t := range transitions {
		resources[i] = s.TransitionResource(t)
	}
	return resources
}

// TriggerEventResource converts a transition trigger event together with
// its resolved type name to a JSON:API resource.
func (s *Serializer) TriggerEventResource(trigger workflow.TriggerEvent, name event.Type) *Resource {
	attrs := &TriggerEventAttributes{
		TransitionID: trigger.TransitionID(),
		EventType:    string(name),
	}
	return NewResource("trigger-event", fmt.Sprintf("%d", trigger.ID()), attrs)
}

// InstanceResource converts a workflow instance to a JSON:API resource.
func (s *Serializer) InstanceResource(instance workflow.Instance) *Resource {
	attrs := &InstanceAttributes{
		WorkflowID: instance.WorkflowID(),
		DocumentID: instance.DocumentID(),
		LaunchedAt: instance.LaunchedAt(),
	}
	return NewResource("workflow-instance", fmt.Sprintf("%d", instance.ID()), attrs)
}

// InstanceResources converts multiple workflow instances to JSON:API resources.
func (s *Serializer) InstanceResources(instances []workflow.Instance) []*Resource {
	resources := make([]*Resource, len(instances))
	for i, instance := range instances {
		resources[i] = s.InstanceResource(instance)
	}
	return resources
}

// InstanceStatusResource converts a workflow instance with its computed
// current state to a JSON:API resource.
func (s *Serializer) InstanceStatusResource(instance workflow.Instance, state workflow.State, enteredAt time.Time) *Resource {
	stateID := state.ID()
	stateLabel := state.Label()
	completion := state.Completion()
	attrs := &InstanceAttributes{
		WorkflowID:        instance.WorkflowID(),
		DocumentID:        instance.DocumentID(),
		LaunchedAt:        instance.LaunchedAt(),
		CurrentStateID:    &stateID,
		CurrentStateLabel: &stateLabel,
		Completion:        &completion,
		EnteredAt:         &enteredAt,
	}
	return NewResource("workflow-instance", fmt.Sprintf("%d", instance.ID()), attrs)
}

// LogEntryResource converts a workflow log entry to a JSON:API resource.
func (s *Serializer) LogEntryResource(entry workflow.LogEntry) *Resource {
	attrs := &LogEntryAttributes{
		InstanceID:   entry.InstanceID(),
		TransitionID: entry.TransitionID(),
		BySystem:     entry.BySystem(),
		Comment:      entry.Comment(),
		Datetime:     entry.Datetime(),
	}
	if !entry.BySystem() {
		userID := entry.UserID()
		attrs.UserID = &userID
	}
	return NewResource("workflow-log-entry", fmt.Sprintf("%d", entry.ID()), attrs)
}

// LogEntryResources converts multiple log entries to JSON:API resources.
func (s *Serializer) LogEntryResources(entries []workflow.LogEntry) []*Resource {
	resources := make([]*Resource, len(entries))
	for i, entry := range entries {
		resources[i] = s.LogEntryResource(entry)
	}
	return resources
}

// UserResource converts a user to a JSON:API resource.
func (s *Serializer) UserResource(u access.User) *Resource {
	attrs := &UserAttributes{
		Username:    u.Username(),
		IsSuperuser: u.IsSuperuser(),
		IsActive:    u.IsActive(),
		DateJoined:  u.DateJoined(),
	}
	return NewResource("user", fmt.Sprintf("%d", u.ID()), attrs)
}

// UserResources converts multiple users to JSON:API resources.
func (s *Serializer) UserResources(users []access.User) []*Resource {
	resources := make([]*Resource, len(users))
	for i, u := range users {
		resources[i] = s.UserResource(u)
	}
	return resources
}

// AccessEntryResource converts an access entry to a JSON:API resource.
func (s *Serializer) AccessEntryResource(e access.Entry) *Resource {
	attrs := &AccessEntryAttributes{
		UserID:     e.UserID(),
		Permission: string(e.Permission()),
	}
	if !e.IsGlobal() {
		kind := string(e.ObjectKind())
		objectID := e.ObjectID()
		attrs.ObjectKind = &kind
		attrs.ObjectID = &objectID
	}
	return NewResource("access-entry", fmt.Sprintf("%d", e.ID()), attrs)
}

// AccessEntryResources converts multiple access entries to JSON:API resources.
func (s *Serializer) AccessEntryResources(entries []access.Entry) []*Resource {
	resources := make([]*Resource, len(entries))
	for i, e := range entries {
		resources[i] = s.AccessEntryResource(e)
	}
	return resources
}

// PermissionResource converts a grantable permission to a JSON:API
// resource. The permission name doubles as the resource ID.
func (s *Serializer) PermissionResource(p access.Permission) *Resource {
	return NewResource("permission", p.String(), &PermissionAttributes{Name: p.String()})
}

// PermissionResources converts the permission catalog to JSON:API resources.
func (s *Serializer) PermissionResources(permissions []access.Permission) []*Resource {
	resources := make([]*Resource, len(permissions))
	for i, p := range permissions {
		resources[i] = s.PermissionResource(p)
	}
	return resources
}

// EventTypeResource converts a registered event type to a JSON:API
// resource. The type name doubles as the resource ID; registered types
// have no numeric identity until an event of that type is committed.
func (s *Serializer) EventTypeResource(t event.Type) *Resource {
	attrs := &EventTypeAttributes{
		Name:      string(t),
		Label:     t.Label(),
		Namespace: t.Namespace(),
	}
	return NewResource("event-type", string(t), attrs)
}

// EventTypeResources converts multiple registered event types to JSON:API resources.
func (s *Serializer) EventTypeResources(types []event.Type) []*Resource {
	resources := make([]*Resource, len(types))
	for i, t := range types {
		resources[i] = s.EventTypeResource(t)
	}
	return resources
}

// EventRecordResource converts an event record together with its resolved
// type name to a JSON:API resource.
func (s *Serializer) EventRecordResource(r event.Record, name event.Type) *Resource {
	attrs := &EventRecordAttributes{
		EventType:  string(name),
		BySystem:   r.BySystem(),
		TargetKind: string(r.TargetKind()),
		TargetID:   r.TargetID(),
		Datetime:   r.Datetime(),
	}
	if !r.BySystem() {
		actorID := r.ActorID()
		attrs.ActorID = &actorID
	}
	return NewResource("event", fmt.Sprintf("%d", r.ID()), attrs)
}
