package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/event"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/domain/workflow"
	"github.com/pagekeep/doclink/internal/database"
	"github.com/pagekeep/doclink/internal/domain"
	"github.com/pagekeep/doclink/internal/metrics"
)

// WorkflowCreateParams configures creating a workflow.
type WorkflowCreateParams struct {
	Label        string
	InternalName string
}

// StateParams configures creating or updating a workflow state.
type StateParams struct {
	Label      string
	Initial    bool
	Completion int
}

// TransitionParams configures creating or updating a workflow transition.
// TriggerPeriod zero means no time trigger.
type TransitionParams struct {
	Label              string
	OriginStateID      int64
	DestinationStateID int64
	TriggerPeriod      int
	TriggerUnit        workflow.TimeUnit
}

// InstanceStatus pairs a workflow instance with its computed current state
// and the moment that state was entered.
type InstanceStatus struct {
	instance  workflow.Instance
	state     workflow.State
	enteredAt time.Time
}

// Instance returns the underlying instance.
func (s InstanceStatus) Instance() workflow.Instance { return s.instance }

// State returns the instance's current state.
func (s InstanceStatus) State() workflow.State { return s.state }

// EnteredAt returns when the current state was entered: the latest log
// entry's time, or the launch time for instances still in the initial state.
func (s InstanceStatus) EnteredAt() time.Time { return s.enteredAt }

// Workflow manages workflows, their graphs, and running instances. The
// current state of an instance is never stored; it is derived from the log,
// falling back to the workflow's initial state.
// Embeds Collection for Find/Get over workflows.
type Workflow struct {
	storage.Collection[workflow.Workflow]
	workflows   workflow.Store
	states      workflow.StateStore
	transitions workflow.TransitionStore
	instances   workflow.InstanceStore
	log         workflow.LogStore
	triggers    workflow.TriggerStore
	events      *Event
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewWorkflow creates a new Workflow service.
func NewWorkflow(
	workflows workflow.Store,
	states workflow.StateStore,
	transitions workflow.TransitionStore,
	instances workflow.InstanceStore,
	log workflow.LogStore,
	triggers workflow.TriggerStore,
	events *Event,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Workflow {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		Collection:  storage.NewCollection[workflow.Workflow](workflows),
		workflows:   workflows,
		states:      states,
		transitions: transitions,
		instances:   instances,
		log:         log,
		triggers:    triggers,
		events:      events,
		metrics:     m,
		logger:      logger,
	}
}

// Create adds a workflow. Labels and internal names are unique; an empty
// internal name is derived from the label.
func (s *Workflow) Create(ctx context.Context, params WorkflowCreateParams) (workflow.Workflow, error) {
	w, err := workflow.NewWorkflow(params.Label, params.InternalName)
	if err != nil {
		return workflow.Workflow{}, err
	}

	count, err := s.workflows.Count(ctx, workflow.WithInternalName(w.InternalName()))
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("check existing workflow: %w", err)
	}
	if count > 0 {
		return workflow.Workflow{}, fmt.Errorf(
			"%w: workflow %q already exists", domain.ErrConflict, w.InternalName(),
		)
	}

	saved, err := s.workflows.Save(ctx, w)
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("save workflow: %w", err)
	}

	s.logger.Info("workflow created",
		slog.Int64("workflow_id", saved.ID()),
		slog.String("label", saved.Label()),
	)

	return saved, nil
}

// Rename changes a workflow's label. The internal name never changes.
func (s *Workflow) Rename(ctx context.Context, id int64, label string) (workflow.Workflow, error) {
	w, err := s.workflows.Get(ctx, id)
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("get workflow: %w", err)
	}

	renamed, err := w.Rename(label)
	if err != nil {
		return workflow.Workflow{}, err
	}

	saved, err := s.workflows.Save(ctx, renamed)
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("save workflow: %w", err)
	}
	return saved, nil
}

// Delete removes a workflow with its states, transitions, triggers,
// instances, and type assignments.
func (s *Workflow) Delete(ctx context.Context, id int64) error {
	if _, err := s.workflows.Get(ctx, id); err != nil {
		return fmt.Errorf("get workflow: %w", err)
	}
	if err := s.workflows.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}

	s.logger.Info("workflow deleted", slog.Int64("workflow_id", id))
	return nil
}

// AssignType enables the workflow for a document type. Existing documents
// of the type are not retroactively launched.
func (s *Workflow) AssignType(ctx context.Context, workflowID, typeID int64) error {
	if _, err := s.workflows.Get(ctx, workflowID); err != nil {
		return fmt.Errorf("get workflow: %w", err)
	}
	if err := s.workflows.AssignType(ctx, workflowID, typeID); err != nil {
		return fmt.Errorf("assign document type: %w", err)
	}
	return nil
}

// RemoveType disables the workflow for a document type. Instances already
// launched keep running.
func (s *Workflow) RemoveType(ctx context.Context, workflowID, typeID int64) error {
	if _, err := s.workflows.Get(ctx, workflowID); err != nil {
		return fmt.Errorf("get workflow: %w", err)
	}
	if err := s.workflows.RemoveType(ctx, workflowID, typeID); err != nil {
		return fmt.Errorf("remove document type: %w", err)
	}
	return nil
}

// AssignedTypeIDs returns the document types the workflow is enabled for.
func (s *Workflow) AssignedTypeIDs(ctx context.Context, workflowID int64) ([]int64, error) {
	ids, err := s.workflows.TypeIDs(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("find assigned types: %w", err)
	}
	return ids, nil
}

// --- states ---

// AddState adds a state to a workflow. Marking a state initial clears the
// flag on every other state of the workflow.
func (s *Workflow) AddState(ctx context.Context, workflowID int64, params StateParams) (workflow.State, error) {
	if _, err := s.workflows.Get(ctx, workflowID); err != nil {
		return workflow.State{}, fmt.Errorf("get workflow: %w", err)
	}

	state, err := workflow.NewState(workflowID, params.Label, params.Initial, params.Completion)
	if err != nil {
		return workflow.State{}, err
	}

	if state.Initial() {
		if err := s.clearInitial(ctx, workflowID, 0); err != nil {
			return workflow.State{}, err
		}
	}

	saved, err := s.states.Save(ctx, state)
	if err != nil {
		return workflow.State{}, fmt.Errorf("save state: %w", err)
	}

	s.logger.Info("workflow state added",
		slog.Int64("workflow_id", workflowID),
		slog.Int64("state_id", saved.ID()),
		slog.String("label", saved.Label()),
	)

	return saved, nil
}

// UpdateState replaces a state's fields, keeping the single-initial
// invariant.
func (s *Workflow) UpdateState(ctx context.Context, stateID int64, params StateParams) (workflow.State, error) {
	state, err := s.states.Get(ctx, stateID)
	if err != nil {
		return workflow.State{}, fmt.Errorf("get state: %w", err)
	}

	updated, err := state.Update(params.Label, params.Initial, params.Completion)
	if err != nil {
		return workflow.State{}, err
	}

	if updated.Initial() && !state.Initial() {
		if err := s.clearInitial(ctx, state.WorkflowID(), stateID); err != nil {
			return workflow.State{}, err
		}
	}

	saved, err := s.states.Save(ctx, updated)
	if err != nil {
		return workflow.State{}, fmt.Errorf("save state: %w", err)
	}
	return saved, nil
}

// DeleteState removes a state. States referenced by transitions cannot be
// deleted.
func (s *Workflow) DeleteState(ctx context.Context, stateID int64) error {
	if _, err := s.states.Get(ctx, stateID); err != nil {
		return fmt.Errorf("get state: %w", err)
	}

	leaving, err := s.transitions.Count(ctx, workflow.WithOriginStateID(stateID))
	if err != nil {
		return fmt.Errorf("count leaving transitions: %w", err)
	}
	entering, err := s.transitions.Count(ctx, workflow.WithDestinationStateID(stateID))
	if err != nil {
		return fmt.Errorf("count entering transitions: %w", err)
	}
	if leaving+entering > 0 {
		return fmt.Errorf(
			"%w: state is referenced by %d transitions", domain.ErrConflict, leaving+entering,
		)
	}

	if err := s.states.Delete(ctx, stateID); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}

// States returns a workflow's states.
func (s *Workflow) States(ctx context.Context, workflowID int64) ([]workflow.State, error) {
	states, err := s.states.Find(ctx, workflow.WithWorkflowID(workflowID))
	if err != nil {
		return nil, fmt.Errorf("find states: %w", err)
	}
	return states, nil
}

// --- transitions ---

// AddTransition adds a transition between two states of a workflow.
func (s *Workflow) AddTransition(ctx context.Context, workflowID int64, params TransitionParams) (workflow.Transition, error) {
	if _, err := s.workflows.Get(ctx, workflowID); err != nil {
		return workflow.Transition{}, fmt.Errorf("get workflow: %w", err)
	}

	t, err := workflow.NewTransition(workflowID, params.Label, params.OriginStateID, params.DestinationStateID)
	if err != nil {
		return workflow.Transition{}, err
	}
	if params.TriggerPeriod > 0 {
		t, err = t.WithTimeTrigger(params.TriggerPeriod, params.TriggerUnit)
		if err != nil {
			return workflow.Transition{}, err
		}
	}

	if err := s.checkStatesBelong(ctx, workflowID, t.OriginStateID(), t.DestinationStateID()); err != nil {
		return workflow.Transition{}, err
	}

	saved, err := s.transitions.Save(ctx, t)
	if err != nil {
		return workflow.Transition{}, fmt.Errorf("save transition: %w", err)
	}

	s.logger.Info("workflow transition added",
		slog.Int64("workflow_id", workflowID),
		slog.Int64("transition_id", saved.ID()),
		slog.String("label", saved.Label()),
	)

	return saved, nil
}

// UpdateTransition replaces a transition's fields.
func (s *Workflow) UpdateTransition(ctx context.Context, transitionID int64, params TransitionParams) (workflow.Transition, error) {
	t, err := s.transitions.Get(ctx, transitionID)
	if err != nil {
		return workflow.Transition{}, fmt.Errorf("get transition: %w", err)
	}

	updated, err := t.Update(params.Label, params.OriginStateID, params.DestinationStateID)
	if err != nil {
		return workflow.Transition{}, err
	}
	if params.TriggerPeriod > 0 {
		updated, err = updated.WithTimeTrigger(params.TriggerPeriod, params.TriggerUnit)
		if err != nil {
			return workflow.Transition{}, err
		}
	} else {
		updated = updated.ClearTimeTrigger()
	}

	if err := s.checkStatesBelong(ctx, t.WorkflowID(), updated.OriginStateID(), updated.DestinationStateID()); err != nil {
		return workflow.Transition{}, err
	}

	saved, err := s.transitions.Save(ctx, updated)
	if err != nil {
		return workflow.Transition{}, fmt.Errorf("save transition: %w", err)
	}
	return saved, nil
}

// DeleteTransition removes a transition together with its event triggers.
func (s *Workflow) DeleteTransition(ctx context.Context, transitionID int64) error {
	if _, err := s.transitions.Get(ctx, transitionID); err != nil {
		return fmt.Errorf("get transition: %w", err)
	}
	if err := s.transitions.Delete(ctx, transitionID); err != nil {
		return fmt.Errorf("delete transition: %w", err)
	}
	return nil
}

// Transitions returns a workflow's transitions.
func (s *Workflow) Transitions(ctx context.Context, workflowID int64) ([]workflow.Transition, error) {
	transitions, err := s.transitions.Find(ctx, workflow.WithWorkflowID(workflowID))
	if err != nil {
		return nil, fmt.Errorf("find transitions: %w", err)
	}
	return transitions, nil
}

// --- event triggers ---

// SetTriggerEvents replaces the set of event types that fire a transition.
func (s *Workflow) SetTriggerEvents(ctx context.Context, transitionID int64, types []event.Type) error {
	if _, err := s.transitions.Get(ctx, transitionID); err != nil {
		return fmt.Errorf("get transition: %w", err)
	}

	desired := mapset.NewSet[int64]()
	for _, t := range types {
		stored, err := s.events.ResolveType(ctx, t)
		if err != nil {
			return err
		}
		desired.Add(stored.ID())
	}

	existing, err := s.triggers.Find(ctx, workflow.WithTransitionID(transitionID))
	if err != nil {
		return fmt.Errorf("find triggers: %w", err)
	}
	current := mapset.NewSet[int64]()
	byTypeID := make(map[int64]workflow.TriggerEvent, len(existing))
	for _, trigger := range existing {
		current.Add(trigger.EventTypeID())
		byTypeID[trigger.EventTypeID()] = trigger
	}

	for typeID := range desired.Difference(current).Iter() {
		trigger, err := workflow.NewTriggerEvent(transitionID, typeID)
		if err != nil {
			return err
		}
		if _, err := s.triggers.Save(ctx, trigger); err != nil {
			return fmt.Errorf("save trigger: %w", err)
		}
	}
	for typeID := range current.Difference(desired).Iter() {
		if err := s.triggers.Delete(ctx, byTypeID[typeID].ID()); err != nil {
			return fmt.Errorf("delete trigger: %w", err)
		}
	}

	s.logger.Info("transition triggers set",
		slog.Int64("transition_id", transitionID),
		slog.Int("count", desired.Cardinality()),
	)

	return nil
}

// TriggerEvents returns the triggers configured for a transition.
func (s *Workflow) TriggerEvents(ctx context.Context, transitionID int64) ([]workflow.TriggerEvent, error) {
	triggers, err := s.triggers.Find(ctx, workflow.WithTransitionID(transitionID))
	if err != nil {
		return nil, fmt.Errorf("find triggers: %w", err)
	}
	return triggers, nil
}

// --- instances ---

// LaunchFor creates instances of every workflow assigned to the document's
// type. Launching is idempotent per (workflow, document) pair.
func (s *Workflow) LaunchFor(ctx context.Context, actor access.User, doc document.Document) error {
	workflows, err := s.workflows.ForType(ctx, doc.TypeID())
	if err != nil {
		return fmt.Errorf("find workflows for type: %w", err)
	}

	for _, w := range workflows {
		if _, err := s.launch(ctx, actor, w.ID(), doc.ID()); err != nil {
			return err
		}
	}
	return nil
}

// Launch creates an instance of one workflow for a document. If the
// document already has an instance of the workflow, it is returned as-is.
func (s *Workflow) Launch(ctx context.Context, actor access.User, workflowID, documentID int64) (workflow.Instance, error) {
	if _, err := s.workflows.Get(ctx, workflowID); err != nil {
		return workflow.Instance{}, fmt.Errorf("get workflow: %w", err)
	}
	return s.launch(ctx, actor, workflowID, documentID)
}

// InstancesFor returns a document's workflow instances.
func (s *Workflow) InstancesFor(ctx context.Context, documentID int64) ([]workflow.Instance, error) {
	instances, err := s.instances.Find(ctx, workflow.WithDocumentID(documentID))
	if err != nil {
		return nil, fmt.Errorf("find instances: %w", err)
	}
	return instances, nil
}

// Instance returns one instance by ID.
func (s *Workflow) Instance(ctx context.Context, instanceID int64) (workflow.Instance, error) {
	instance, err := s.instances.Get(ctx, instanceID)
	if err != nil {
		return workflow.Instance{}, fmt.Errorf("get instance: %w", err)
	}
	return instance, nil
}

// Status computes an instance's current state: the destination of the
// latest log entry, or the workflow's initial state for fresh instances.
func (s *Workflow) Status(ctx context.Context, instance workflow.Instance) (InstanceStatus, error) {
	entries, err := s.log.Find(ctx,
		workflow.WithInstanceID(instance.ID()),
		workflow.ByDatetimeDesc(),
		storage.WithLimit(1),
	)
	if err != nil {
		return InstanceStatus{}, fmt.Errorf("find log entries: %w", err)
	}

	if len(entries) > 0 {
		latest := entries[0]
		transition, err := s.transitions.Get(ctx, latest.TransitionID())
		if err != nil {
			return InstanceStatus{}, fmt.Errorf("get transition: %w", err)
		}
		state, err := s.states.Get(ctx, transition.DestinationStateID())
		if err != nil {
			return InstanceStatus{}, fmt.Errorf("get state: %w", err)
		}
		return InstanceStatus{instance: instance, state: state, enteredAt: latest.Datetime()}, nil
	}

	initial, err := s.states.FindOne(ctx,
		workflow.WithWorkflowID(instance.WorkflowID()),
		workflow.WithInitial(true),
	)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return InstanceStatus{}, fmt.Errorf(
				"%w: workflow %d has no initial state", domain.ErrNotFound, instance.WorkflowID(),
			)
		}
		return InstanceStatus{}, fmt.Errorf("find initial state: %w", err)
	}
	return InstanceStatus{instance: instance, state: initial, enteredAt: instance.LaunchedAt()}, nil
}

// LogEntries returns an instance's transition history, oldest first.
func (s *Workflow) LogEntries(ctx context.Context, instanceID int64) ([]workflow.LogEntry, error) {
	entries, err := s.log.Find(ctx, workflow.WithInstanceID(instanceID), workflow.ByDatetimeAsc())
	if err != nil {
		return nil, fmt.Errorf("find log entries: %w", err)
	}
	return entries, nil
}

// ExecuteTransition moves an instance along a transition. The transition
// must leave the instance's current state.
func (s *Workflow) ExecuteTransition(
	ctx context.Context,
	actor access.User,
	instanceID, transitionID int64,
	comment string,
) (workflow.LogEntry, error) {
	return s.execute(ctx, actor, instanceID, transitionID, comment, true)
}

// HandleEvent fires event triggers for a committed event. Only document
// targets can fire triggers; instances whose current state does not match a
// trigger's origin are skipped silently.
func (s *Workflow) HandleEvent(ctx context.Context, stored event.StoredType, record event.Record) {
	if record.TargetKind() != access.TargetDocument {
		return
	}

	triggers, err := s.triggers.Find(ctx, workflow.WithEventTypeID(stored.ID()))
	if err != nil {
		s.logger.Error("failed to find event triggers",
			slog.String("event_type", stored.Name().String()),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, trigger := range triggers {
		s.fireEventTrigger(ctx, trigger, record.TargetID())
	}
}

// FireTimeTriggers scans every transition carrying a time trigger and
// executes it on instances that have sat in the transition's origin state
// for at least the trigger delay. Returns the number of transitions fired.
// The scheduler calls this periodically; firings act as the system
// principal and do not notify event triggers.
func (s *Workflow) FireTimeTriggers(ctx context.Context) (int, error) {
	transitions, err := s.transitions.Find(ctx)
	if err != nil {
		return 0, fmt.Errorf("find transitions: %w", err)
	}

	now := time.Now().UTC()
	fired := 0
	for _, transition := range transitions {
		if !transition.HasTimeTrigger() {
			continue
		}
		n, err := s.fireTimeTrigger(ctx, transition, now)
		if err != nil {
			s.logger.Error("time trigger scan failed",
				slog.Int64("transition_id", transition.ID()),
				slog.String("error", err.Error()),
			)
			continue
		}
		fired += n
	}
	return fired, nil
}

// --- internal write operations ---

func (s *Workflow) launch(ctx context.Context, actor access.User, workflowID, documentID int64) (workflow.Instance, error) {
	existing, err := s.instances.Find(ctx,
		workflow.WithWorkflowID(workflowID),
		workflow.WithDocumentID(documentID),
	)
	if err != nil {
		return workflow.Instance{}, fmt.Errorf("find existing instance: %w", err)
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	instance, err := workflow.NewInstance(workflowID, documentID)
	if err != nil {
		return workflow.Instance{}, err
	}
	saved, err := s.instances.Save(ctx, instance)
	if err != nil {
		return workflow.Instance{}, fmt.Errorf("save instance: %w", err)
	}

	if _, err := s.events.commit(ctx,
		event.TypeWorkflowInstanceLaunched,
		actor,
		access.NewResource(access.TargetDocument, documentID),
		false,
	); err != nil {
		s.logger.Warn("failed to commit launch event",
			slog.Int64("instance_id", saved.ID()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("workflow instance launched",
		slog.Int64("workflow_id", workflowID),
		slog.Int64("document_id", documentID),
		slog.Int64("instance_id", saved.ID()),
	)

	return saved, nil
}

func (s *Workflow) execute(
	ctx context.Context,
	actor access.User,
	instanceID, transitionID int64,
	comment string,
	notify bool,
) (workflow.LogEntry, error) {
	instance, err := s.instances.Get(ctx, instanceID)
	if err != nil {
		return workflow.LogEntry{}, fmt.Errorf("get instance: %w", err)
	}
	transition, err := s.transitions.Get(ctx, transitionID)
	if err != nil {
		return workflow.LogEntry{}, fmt.Errorf("get transition: %w", err)
	}
	if transition.WorkflowID() != instance.WorkflowID() {
		return workflow.LogEntry{}, fmt.Errorf(
			"%w: transition belongs to a different workflow", domain.ErrValidation,
		)
	}

	status, err := s.Status(ctx, instance)
	if err != nil {
		return workflow.LogEntry{}, err
	}
	if transition.OriginStateID() != status.State().ID() {
		return workflow.LogEntry{}, fmt.Errorf(
			"%w: transition %q does not leave state %q",
			domain.ErrValidation, transition.Label(), status.State().Label(),
		)
	}

	entry, err := workflow.NewLogEntry(instanceID, transitionID, actor.ID(), comment)
	if err != nil {
		return workflow.LogEntry{}, err
	}
	saved, err := s.log.Save(ctx, entry)
	if err != nil {
		return workflow.LogEntry{}, fmt.Errorf("save log entry: %w", err)
	}

	if _, err := s.events.commit(ctx,
		event.TypeWorkflowTransitionExecuted,
		actor,
		access.NewResource(access.TargetDocument, instance.DocumentID()),
		notify,
	); err != nil {
		s.logger.Warn("failed to commit transition event",
			slog.Int64("instance_id", instanceID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("workflow transition executed",
		slog.Int64("instance_id", instanceID),
		slog.Int64("transition_id", transitionID),
		slog.Int64("user_id", actor.ID()),
		slog.Int64("to_state_id", transition.DestinationStateID()),
	)

	return saved, nil
}

// fireEventTrigger executes a trigger's transition on the document's
// matching instance, if any. Trigger firings act as the system principal
// and do not notify further triggers.
func (s *Workflow) fireEventTrigger(ctx context.Context, trigger workflow.TriggerEvent, documentID int64) {
	transition, err := s.transitions.Get(ctx, trigger.TransitionID())
	if err != nil {
		s.logger.Error("failed to load triggered transition",
			slog.Int64("transition_id", trigger.TransitionID()),
			slog.String("error", err.Error()),
		)
		return
	}

	instances, err := s.instances.Find(ctx,
		workflow.WithWorkflowID(transition.WorkflowID()),
		workflow.WithDocumentID(documentID),
	)
	if err != nil {
		s.logger.Error("failed to find instances for trigger",
			slog.Int64("document_id", documentID),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, instance := range instances {
		status, err := s.Status(ctx, instance)
		if err != nil {
			s.logger.Error("failed to compute instance status",
				slog.Int64("instance_id", instance.ID()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if status.State().ID() != transition.OriginStateID() {
			continue
		}

		if _, err := s.execute(ctx, access.System(), instance.ID(), transition.ID(),
			"fired by event trigger", false,
		); err != nil {
			s.logger.Error("event trigger execution failed",
				slog.Int64("instance_id", instance.ID()),
				slog.Int64("transition_id", transition.ID()),
				slog.String("error", err.Error()),
			)
			continue
		}
		s.metrics.RecordTriggerFiring("event")
	}
}

// fireTimeTrigger executes one timed transition on every instance of its
// workflow whose current state is the transition's origin and whose dwell
// time meets the configured delay.
func (s *Workflow) fireTimeTrigger(
	ctx context.Context,
	transition workflow.Transition,
	now time.Time,
) (int, error) {
	instances, err := s.instances.Find(ctx, workflow.WithWorkflowID(transition.WorkflowID()))
	if err != nil {
		return 0, fmt.Errorf("find instances: %w", err)
	}

	fired := 0
	for _, instance := range instances {
		status, err := s.Status(ctx, instance)
		if err != nil {
			s.logger.Error("failed to compute instance status",
				slog.Int64("instance_id", instance.ID()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if status.State().ID() != transition.OriginStateID() {
			continue
		}
		if now.Sub(status.EnteredAt()) < transition.TriggerDelay() {
			continue
		}

		if _, err := s.execute(ctx, access.System(), instance.ID(), transition.ID(),
			"fired by time trigger", false,
		); err != nil {
			s.logger.Error("time trigger execution failed",
				slog.Int64("instance_id", instance.ID()),
				slog.Int64("transition_id", transition.ID()),
				slog.String("error", err.Error()),
			)
			continue
		}
		s.metrics.RecordTriggerFiring("time")
		fired++
	}
	return fired, nil
}

func (s *Workflow) clearInitial(ctx context.Context, workflowID, keepStateID int64) error {
	states, err := s.states.Find(ctx,
		workflow.WithWorkflowID(workflowID),
		workflow.WithInitial(true),
	)
	if err != nil {
		return fmt.Errorf("find initial states: %w", err)
	}
	for _, state := range states {
		if state.ID() == keepStateID {
			continue
		}
		if _, err := s.states.Save(ctx, state.WithInitial(false)); err != nil {
			return fmt.Errorf("clear initial state: %w", err)
		}
	}
	return nil
}

func (s *Workflow) checkStatesBelong(ctx context.Context, workflowID int64, stateIDs ...int64) error {
	for _, stateID := range stateIDs {
		state, err := s.states.Get(ctx, stateID)
		if err != nil {
			return fmt.Errorf("get state %d: %w", stateID, err)
		}
		if state.WorkflowID() != workflowID {
			return fmt.Errorf(
				"%w: state %q belongs to a different workflow", domain.ErrValidation, state.Label(),
			)
		}
	}
	return nil
}
