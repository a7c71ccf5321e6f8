package workflow

import "github.com/pagekeep/doclink/domain/storage"

// Typed query options for workflow stores.

// WithWorkflowID filters states, transitions, or instances by workflow.
func WithWorkflowID(workflowID int64) storage.Option {
	return storage.WithCondition("workflow_id", workflowID)
}

// WithDocumentID filters instances by document.
func WithDocumentID(documentID int64) storage.Option {
	return storage.WithCondition("document_id", documentID)
}

// WithInstanceID filters log entries by instance.
func WithInstanceID(instanceID int64) storage.Option {
	return storage.WithCondition("workflow_instance_id", instanceID)
}

// WithTransitionID filters triggers or log entries by transition.
func WithTransitionID(transitionID int64) storage.Option {
	return storage.WithCondition("transition_id", transitionID)
}

// WithEventTypeID filters triggers by stored event type.
func WithEventTypeID(eventTypeID int64) storage.Option {
	return storage.WithCondition("event_type_id", eventTypeID)
}

// WithOriginStateID filters transitions leaving a state.
func WithOriginStateID(stateID int64) storage.Option {
	return storage.WithCondition("origin_state_id", stateID)
}

// WithDestinationStateID filters transitions entering a state.
func WithDestinationStateID(stateID int64) storage.Option {
	return storage.WithCondition("destination_state_id", stateID)
}

// WithInitial filters states by the initial flag.
func WithInitial(initial bool) storage.Option {
	return storage.WithCondition("initial", initial)
}

// WithInternalName filters workflows by machine name.
func WithInternalName(name string) storage.Option {
	return storage.WithCondition("internal_name", name)
}

// ByDatetimeAsc orders log entries oldest first.
func ByDatetimeAsc() storage.Option {
	return storage.WithOrderAsc("datetime")
}

// ByDatetimeDesc orders log entries newest first.
func ByDatetimeDesc() storage.Option {
	return storage.WithOrderDesc("datetime")
}
