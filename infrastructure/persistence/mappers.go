package persistence

import (
	"github.com/google/uuid"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/event"
	"github.com/pagekeep/doclink/domain/linking"
	"github.com/pagekeep/doclink/domain/workflow"
)

// DocumentMapper maps between domain Document and persistence DocumentModel.
type DocumentMapper struct{}

// ToDomain converts a DocumentModel to a domain Document.
func (m DocumentMapper) ToDomain(e DocumentModel) document.Document {
	id, _ := uuid.Parse(e.UUID)
	return document.ReconstructDocument(
		e.ID,
		id,
		e.DocumentTypeID,
		e.Label,
		e.Description,
		e.Language,
		e.InTrash,
		e.DeletedDateTime,
		e.DateAdded,
	)
}

// ToModel converts a domain Document to a DocumentModel.
func (m DocumentMapper) ToModel(d document.Document) DocumentModel {
	return DocumentModel{
		ID:              d.ID(),
		UUID:            d.UUID().String(),
		DocumentTypeID:  d.TypeID(),
		Label:           d.Label(),
		Description:     d.Description(),
		Language:        d.Language(),
		InTrash:         d.InTrash(),
		DeletedDateTime: d.DeletedAt(),
		DateAdded:       d.DateAdded(),
	}
}

// DocumentTypeMapper maps between domain Type and persistence DocumentTypeModel.
type DocumentTypeMapper struct{}

// ToDomain converts a DocumentTypeModel to a domain Type.
func (m DocumentTypeMapper) ToDomain(e DocumentTypeModel) document.Type {
	return document.ReconstructType(e.ID, e.Label)
}

// ToModel converts a domain Type to a DocumentTypeModel.
func (m DocumentTypeMapper) ToModel(t document.Type) DocumentTypeModel {
	return DocumentTypeModel{
		ID:    t.ID(),
		Label: t.Label(),
	}
}

// DocumentVersionMapper maps between domain Version and persistence
// DocumentVersionModel.
type DocumentVersionMapper struct{}

// ToDomain converts a DocumentVersionModel to a domain Version.
func (m DocumentVersionMapper) ToDomain(e DocumentVersionModel) document.Version {
	var checksum, encoding, mimetype string
	if e.Checksum != nil {
		checksum = *e.Checksum
	}
	if e.Encoding != nil {
		encoding = *e.Encoding
	}
	if e.Mimetype != nil {
		mimetype = *e.Mimetype
	}
	return document.ReconstructVersion(
		e.ID,
		e.DocumentID,
		e.Timestamp,
		e.Comment,
		checksum,
		encoding,
		mimetype,
		e.Size,
	)
}

// ToModel converts a domain Version to a DocumentVersionModel.
func (m DocumentVersionMapper) ToModel(v document.Version) DocumentVersionModel {
	model := DocumentVersionModel{
		ID:         v.ID(),
		DocumentID: v.DocumentID(),
		Timestamp:  v.Timestamp(),
		Comment:    v.Comment(),
		Size:       v.Size(),
	}
	if v.HasContent() {
		checksum := v.Checksum()
		model.Checksum = &checksum
	}
	if v.Encoding() != "" {
		encoding := v.Encoding()
		model.Encoding = &encoding
	}
	if v.Mimetype() != "" {
		mimetype := v.Mimetype()
		model.Mimetype = &mimetype
	}
	return model
}

// MetadataTypeMapper maps between domain MetadataType and persistence
// MetadataTypeModel.
type MetadataTypeMapper struct{}

// ToDomain converts a MetadataTypeModel to a domain MetadataType.
func (m MetadataTypeMapper) ToDomain(e MetadataTypeModel) document.MetadataType {
	return document.ReconstructMetadataType(e.ID, e.Name, e.Label)
}

// ToModel converts a domain MetadataType to a MetadataTypeModel.
func (m MetadataTypeMapper) ToModel(t document.MetadataType) MetadataTypeModel {
	return MetadataTypeModel{
		ID:    t.ID(),
		Name:  t.Name(),
		Label: t.Label(),
	}
}

// DocumentMetadataMapper maps between domain Metadata and persistence
// DocumentMetadataModel.
type DocumentMetadataMapper struct{}

// ToDomain converts a DocumentMetadataModel to a domain Metadata.
func (m DocumentMetadataMapper) ToDomain(e DocumentMetadataModel) document.Metadata {
	return document.ReconstructMetadata(e.ID, e.DocumentID, e.MetadataTypeID, e.Value)
}

// ToModel converts a domain Metadata to a DocumentMetadataModel.
func (m DocumentMetadataMapper) ToModel(md document.Metadata) DocumentMetadataModel {
	return DocumentMetadataModel{
		ID:             md.ID(),
		DocumentID:     md.DocumentID(),
		MetadataTypeID: md.TypeID(),
		Value:          md.Value(),
	}
}

// SmartLinkMapper maps between domain SmartLink and persistence SmartLinkModel.
type SmartLinkMapper struct{}

// ToDomain converts a SmartLinkModel to a domain SmartLink.
func (m SmartLinkMapper) ToDomain(e SmartLinkModel) linking.SmartLink {
	return linking.ReconstructSmartLink(e.ID, e.Label, e.DynamicLabel, e.Enabled)
}

// ToModel converts a domain SmartLink to a SmartLinkModel.
func (m SmartLinkMapper) ToModel(l linking.SmartLink) SmartLinkModel {
	return SmartLinkModel{
		ID:           l.ID(),
		Label:        l.Label(),
		DynamicLabel: l.DynamicLabel(),
		Enabled:      l.Enabled(),
	}
}

// SmartLinkConditionMapper maps between domain Condition and persistence
// SmartLinkConditionModel.
type SmartLinkConditionMapper struct{}

// ToDomain converts a SmartLinkConditionModel to a domain Condition.
func (m SmartLinkConditionMapper) ToDomain(e SmartLinkConditionModel) linking.Condition {
	operand := linking.LiteralOperand(e.OperandValue)
	if linking.OperandKind(e.OperandKind) == linking.OperandField {
		operand = linking.FieldOperand(linking.FieldRef(e.OperandValue))
	}
	return linking.ReconstructCondition(
		e.ID,
		e.SmartLinkID,
		linking.Inclusion(e.Inclusion),
		linking.FieldRef(e.TargetField),
		linking.Operator(e.Operator),
		operand,
		e.Negated,
		e.Enabled,
	)
}

// ToModel converts a domain Condition to a SmartLinkConditionModel.
func (m SmartLinkConditionMapper) ToModel(c linking.Condition) SmartLinkConditionModel {
	return SmartLinkConditionModel{
		ID:           c.ID(),
		SmartLinkID:  c.SmartLinkID(),
		Inclusion:    string(c.Inclusion()),
		TargetField:  string(c.TargetField()),
		Operator:     string(c.Operator()),
		OperandKind:  string(c.Operand().Kind()),
		OperandValue: c.Operand().Value(),
		Negated:      c.Negated(),
		Enabled:      c.Enabled(),
	}
}

// UserMapper maps between domain User and persistence UserModel.
type UserMapper struct{}

// ToDomain converts a UserModel to a domain User.
func (m UserMapper) ToDomain(e UserModel) access.User {
	return access.ReconstructUser(e.ID, e.Username, e.IsSuperuser, e.IsActive, e.DateJoined)
}

// ToModel converts a domain User to a UserModel.
func (m UserMapper) ToModel(u access.User) UserModel {
	return UserModel{
		ID:          u.ID(),
		Username:    u.Username(),
		IsSuperuser: u.IsSuperuser(),
		IsActive:    u.IsActive(),
		DateJoined:  u.DateJoined(),
	}
}

// AccessEntryMapper maps between domain Entry and persistence AccessEntryModel.
type AccessEntryMapper struct{}

// ToDomain converts an AccessEntryModel to a domain Entry.
func (m AccessEntryMapper) ToDomain(e AccessEntryModel) access.Entry {
	var kind access.TargetKind
	var objectID int64
	if e.ObjectType != nil {
		kind = access.TargetKind(*e.ObjectType)
	}
	if e.ObjectID != nil {
		objectID = *e.ObjectID
	}
	return access.ReconstructEntry(e.ID, e.UserID, access.Permission(e.Permission), kind, objectID)
}

// ToModel converts a domain Entry to an AccessEntryModel.
func (m AccessEntryMapper) ToModel(entry access.Entry) AccessEntryModel {
	model := AccessEntryModel{
		ID:         entry.ID(),
		UserID:     entry.UserID(),
		Permission: string(entry.Permission()),
	}
	if !entry.IsGlobal() {
		kind := string(entry.ObjectKind())
		objectID := entry.ObjectID()
		model.ObjectType = &kind
		model.ObjectID = &objectID
	}
	return model
}

// WorkflowMapper maps between domain Workflow and persistence WorkflowModel.
type WorkflowMapper struct{}

// ToDomain converts a WorkflowModel to a domain Workflow.
func (m WorkflowMapper) ToDomain(e WorkflowModel) workflow.Workflow {
	return workflow.ReconstructWorkflow(e.ID, e.Label, e.InternalName)
}

// ToModel converts a domain Workflow to a WorkflowModel.
func (m WorkflowMapper) ToModel(w workflow.Workflow) WorkflowModel {
	return WorkflowModel{
		ID:           w.ID(),
		Label:        w.Label(),
		InternalName: w.InternalName(),
	}
}

// WorkflowStateMapper maps between domain State and persistence
// WorkflowStateModel.
type WorkflowStateMapper struct{}

// ToDomain converts a WorkflowStateModel to a domain State.
func (m WorkflowStateMapper) ToDomain(e WorkflowStateModel) workflow.State {
	return workflow.ReconstructState(e.ID, e.WorkflowID, e.Label, e.Initial, e.Completion)
}

// ToModel converts a domain State to a WorkflowStateModel.
func (m WorkflowStateMapper) ToModel(s workflow.State) WorkflowStateModel {
	return WorkflowStateModel{
		ID:         s.ID(),
		WorkflowID: s.WorkflowID(),
		Label:      s.Label(),
		Initial:    s.Initial(),
		Completion: s.Completion(),
	}
}

// WorkflowTransitionMapper maps between domain Transition and persistence
// WorkflowTransitionModel.
type WorkflowTransitionMapper struct{}

// ToDomain converts a WorkflowTransitionModel to a domain Transition.
func (m WorkflowTransitionMapper) ToDomain(e WorkflowTransitionModel) workflow.Transition {
	var period int
	var unit workflow.TimeUnit
	if e.TriggerTimePeriod != nil {
		period = *e.TriggerTimePeriod
	}
	if e.TriggerTimeUnit != nil {
		unit = workflow.TimeUnit(*e.TriggerTimeUnit)
	}
	return workflow.ReconstructTransition(
		e.ID,
		e.WorkflowID,
		e.Label,
		e.OriginStateID,
		e.DestinationStateID,
		period,
		unit,
	)
}

// ToModel converts a domain Transition to a WorkflowTransitionModel.
func (m WorkflowTransitionMapper) ToModel(t workflow.Transition) WorkflowTransitionModel {
	model := WorkflowTransitionModel{
		ID:                 t.ID(),
		WorkflowID:         t.WorkflowID(),
		Label:              t.Label(),
		OriginStateID:      t.OriginStateID(),
		DestinationStateID: t.DestinationStateID(),
	}
	if t.HasTimeTrigger() {
		period := t.TriggerPeriod()
		unit := string(t.TriggerUnit())
		model.TriggerTimePeriod = &period
		model.TriggerTimeUnit = &unit
	}
	return model
}

// WorkflowInstanceMapper maps between domain Instance and persistence
// WorkflowInstanceModel.
type WorkflowInstanceMapper struct{}

// ToDomain converts a WorkflowInstanceModel to a domain Instance.
func (m WorkflowInstanceMapper) ToDomain(e WorkflowInstanceModel) workflow.Instance {
	return workflow.ReconstructInstance(e.ID, e.WorkflowID, e.DocumentID, e.LaunchedAt)
}

// ToModel converts a domain Instance to a WorkflowInstanceModel.
func (m WorkflowInstanceMapper) ToModel(i workflow.Instance) WorkflowInstanceModel {
	return WorkflowInstanceModel{
		ID:         i.ID(),
		WorkflowID: i.WorkflowID(),
		DocumentID: i.DocumentID(),
		LaunchedAt: i.LaunchedAt(),
	}
}

// WorkflowLogEntryMapper maps between domain LogEntry and persistence
// WorkflowLogEntryModel.
type WorkflowLogEntryMapper struct{}

// ToDomain converts a WorkflowLogEntryModel to a domain LogEntry.
func (m WorkflowLogEntryMapper) ToDomain(e WorkflowLogEntryModel) workflow.LogEntry {
	var userID int64
	if e.UserID != nil {
		userID = *e.UserID
	}
	return workflow.ReconstructLogEntry(
		e.ID,
		e.WorkflowInstanceID,
		e.TransitionID,
		userID,
		e.Comment,
		e.Datetime,
	)
}

// ToModel converts a domain LogEntry to a WorkflowLogEntryModel.
func (m WorkflowLogEntryMapper) ToModel(entry workflow.LogEntry) WorkflowLogEntryModel {
	model := WorkflowLogEntryModel{
		ID:                 entry.ID(),
		WorkflowInstanceID: entry.InstanceID(),
		TransitionID:       entry.TransitionID(),
		Comment:            entry.Comment(),
		Datetime:           entry.Datetime(),
	}
	if !entry.BySystem() {
		userID := entry.UserID()
		model.UserID = &userID
	}
	return model
}

// TriggerEventMapper maps between domain TriggerEvent and persistence
// TriggerEventModel.
type TriggerEventMapper struct{}

// ToDomain converts a TriggerEventModel to a domain TriggerEvent.
func (m TriggerEventMapper) ToDomain(e TriggerEventModel) workflow.TriggerEvent {
	return workflow.ReconstructTriggerEvent(e.ID, e.TransitionID, e.EventTypeID)
}

// ToModel converts a domain TriggerEvent to a TriggerEventModel.
func (m TriggerEventMapper) ToModel(t workflow.TriggerEvent) TriggerEventModel {
	return TriggerEventModel{
		ID:           t.ID(),
		TransitionID: t.TransitionID(),
		EventTypeID:  t.EventTypeID(),
	}
}

// StoredEventTypeMapper maps between domain StoredType and persistence
// StoredEventTypeModel.
type StoredEventTypeMapper struct{}

// ToDomain converts a StoredEventTypeModel to a domain StoredType.
func (m StoredEventTypeMapper) ToDomain(e StoredEventTypeModel) event.StoredType {
	return event.ReconstructStoredType(e.ID, e.Name)
}

// ToModel converts a domain StoredType to a StoredEventTypeModel.
func (m StoredEventTypeMapper) ToModel(t event.StoredType) StoredEventTypeModel {
	return StoredEventTypeModel{
		ID:   t.ID(),
		Name: string(t.Name()),
	}
}

// EventRecordMapper maps between domain Record and persistence EventRecordModel.
type EventRecordMapper struct{}

// ToDomain converts an EventRecordModel to a domain Record.
func (m EventRecordMapper) ToDomain(e EventRecordModel) event.Record {
	var actorID int64
	if e.ActorID != nil {
		actorID = *e.ActorID
	}
	return event.ReconstructRecord(
		e.ID,
		e.StoredTypeID,
		actorID,
		access.TargetKind(e.TargetType),
		e.TargetID,
		e.Datetime,
	)
}

// ToModel converts a domain Record to an EventRecordModel.
func (m EventRecordMapper) ToModel(r event.Record) EventRecordModel {
	model := EventRecordModel{
		ID:           r.ID(),
		StoredTypeID: r.StoredTypeID(),
		TargetType:   string(r.TargetKind()),
		TargetID:     r.TargetID(),
		Datetime:     r.Datetime(),
	}
	if !r.BySystem() {
		actorID := r.ActorID()
		model.ActorID = &actorID
	}
	return model
}
