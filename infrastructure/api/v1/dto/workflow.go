package dto

// WorkflowCreateAttributes represents the attributes for creating a workflow.
type WorkflowCreateAttributes struct {
	Label        string `json:"label"`
	InternalName string `json:"internal_name,omitempty"`
}

// WorkflowCreateData represents the data for creating a workflow.
type WorkflowCreateData struct {
	Type       string                   `json:"type"`
	Attributes WorkflowCreateAttributes `json:"attributes"`
}

// WorkflowCreateRequest represents a JSON:API request to create a workflow.
type WorkflowCreateRequest struct {
	Data WorkflowCreateData `json:"data"`
}

// WorkflowUpdateAttributes represents the attributes that can be updated
// on a workflow. The internal name is immutable.
type WorkflowUpdateAttributes struct {
	Label string `json:"label"`
}

// WorkflowUpdateData represents the data for renaming a workflow.
type WorkflowUpdateData struct {
	Type       string                   `json:"type"`
	Attributes WorkflowUpdateAttributes `json:"attributes"`
}

// WorkflowUpdateRequest represents a JSON:API request to rename a workflow.
type WorkflowUpdateRequest struct {
	Data WorkflowUpdateData `json:"data"`
}

// StateAttributes represents the attributes for creating or updating a
// workflow state.
type StateAttributes struct {
	Label      string `json:"label"`
	Initial    bool   `json:"initial,omitempty"`
	Completion int    `json:"completion,omitempty"`
}

// StateData represents state data in JSON:API format.
type StateData struct {
	Type       string          `json:"type"`
	Attributes StateAttributes `json:"attributes"`
}

// StateRequest represents a JSON:API request to create or update a
// workflow state.
type StateRequest struct {
	Data StateData `json:"data"`
}

// TransitionAttributes represents the attributes for creating or updating
// a workflow transition. A zero TriggerPeriod means no time trigger.
type TransitionAttributes struct {
	Label              string `json:"label"`
	OriginStateID      int64  `json:"origin_state_id"`
	DestinationStateID int64  `json:"destination_state_id"`
	TriggerPeriod      int    `json:"trigger_period,omitempty"`
	TriggerUnit        string `json:"trigger_unit,omitempty"`
}

// TransitionData represents transition data in JSON:API format.
type TransitionData struct {
	Type       string               `json:"type"`
	Attributes TransitionAttributes `json:"attributes"`
}

// TransitionRequest represents a JSON:API request to create or update a
// workflow transition.
type TransitionRequest struct {
	Data TransitionData `json:"data"`
}

// TriggerEventsAttributes represents the full set of event types that
// fire a transition.
type TriggerEventsAttributes struct {
	EventTypes []string `json:"event_types"`
}

// TriggerEventsData represents trigger event data in JSON:API format.
type TriggerEventsData struct {
	Type       string                  `json:"type"`
	Attributes TriggerEventsAttributes `json:"attributes"`
}

// TriggerEventsRequest represents a JSON:API request to replace a
// transition's trigger events.
type TriggerEventsRequest struct {
	Data TriggerEventsData `json:"data"`
}

// InstanceLaunchAttributes represents the attributes for launching a
// workflow instance on a document.
type InstanceLaunchAttributes struct {
	WorkflowID int64 `json:"workflow_id"`
}

// InstanceLaunchData represents instance launch data in JSON:API format.
type InstanceLaunchData struct {
	Type       string                   `json:"type"`
	Attributes InstanceLaunchAttributes `json:"attributes"`
}

// InstanceLaunchRequest represents a JSON:API request to launch a workflow
// instance on a document.
type InstanceLaunchRequest struct {
	Data InstanceLaunchData `json:"data"`
}

// TransitionExecuteAttributes represents the attributes for executing a
// transition on a workflow instance.
type TransitionExecuteAttributes struct {
	TransitionID int64  `json:"transition_id"`
	Comment      string `json:"comment,omitempty"`
}

// TransitionExecuteData represents transition execution data in JSON:API
// format.
type TransitionExecuteData struct {
	Type       string                      `json:"type"`
	Attributes TransitionExecuteAttributes `json:"attributes"`
}

// TransitionExecuteRequest represents a JSON:API request to execute a
// transition on a workflow instance.
type TransitionExecuteRequest struct {
	Data TransitionExecuteData `json:"data"`
}
