package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeep/doclink/domain/event"
	"github.com/pagekeep/doclink/domain/workflow"
	"github.com/pagekeep/doclink/internal/database"
)

func mustSaveWorkflow(t *testing.T, db database.Database, label string) workflow.Workflow {
	t.Helper()
	wf, err := workflow.NewWorkflow(label, "")
	require.NoError(t, err)
	saved, err := NewWorkflowStore(db).Save(context.Background(), wf)
	require.NoError(t, err)
	return saved
}

func TestWorkflowStore_SaveAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewWorkflowStore(db)

	wf := mustSaveWorkflow(t, db, "Invoice Review")

	loaded, err := store.Get(ctx, wf.ID())
	require.NoError(t, err)
	assert.Equal(t, "Invoice Review", loaded.Label())
	assert.Equal(t, "invoice_review", loaded.InternalName())
}

func TestWorkflowStore_AssignType_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewWorkflowStore(db)

	wf := mustSaveWorkflow(t, db, "Review")
	dt := mustSaveType(t, db, "invoice")

	require.NoError(t, store.AssignType(ctx, wf.ID(), dt.ID()))
	require.NoError(t, store.AssignType(ctx, wf.ID(), dt.ID()))

	ids, err := store.TypeIDs(ctx, wf.ID())
	require.NoError(t, err)
	assert.Equal(t, []int64{dt.ID()}, ids)

	workflows, err := store.ForType(ctx, dt.ID())
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, wf.ID(), workflows[0].ID())

	require.NoError(t, store.RemoveType(ctx, wf.ID(), dt.ID()))
	ids, err = store.TypeIDs(ctx, wf.ID())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestWorkflowStore_Delete_Cascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewWorkflowStore(db)
	stateStore := NewWorkflowStateStore(db)
	transitionStore := NewWorkflowTransitionStore(db)
	triggerStore := NewWorkflowTriggerStore(db)
	instanceStore := NewWorkflowInstanceStore(db)
	logStore := NewWorkflowLogStore(db)

	wf := mustSaveWorkflow(t, db, "Review")
	dt := mustSaveType(t, db, "invoice")
	doc := mustSaveDocument(t, db, dt.ID(), "Invoice")
	require.NoError(t, store.AssignType(ctx, wf.ID(), dt.ID()))

	draft, err := workflow.NewState(wf.ID(), "Draft", true, 0)
	require.NoError(t, err)
	draft, err = stateStore.Save(ctx, draft)
	require.NoError(t, err)
	done, err := workflow.NewState(wf.ID(), "Done", false, 100)
	require.NoError(t, err)
	done, err = stateStore.Save(ctx, done)
	require.NoError(t, err)

	transition, err := workflow.NewTransition(wf.ID(), "Approve", draft.ID(), done.ID())
	require.NoError(t, err)
	transition, err = transitionStore.Save(ctx, transition)
	require.NoError(t, err)

	stored, err := NewEventTypeStore(db).GetOrCreate(ctx, event.TypeDocumentEdited)
	require.NoError(t, err)
	trigger, err := workflow.NewTriggerEvent(transition.ID(), stored.ID())
	require.NoError(t, err)
	trigger, err = triggerStore.Save(ctx, trigger)
	require.NoError(t, err)

	instance, err := workflow.NewInstance(wf.ID(), doc.ID())
	require.NoError(t, err)
	instance, err = instanceStore.Save(ctx, instance)
	require.NoError(t, err)
	entry, err := workflow.NewLogEntry(instance.ID(), transition.ID(), 0, "auto")
	require.NoError(t, err)
	_, err = logStore.Save(ctx, entry)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, wf.ID()))

	_, err = store.Get(ctx, wf.ID())
	assert.True(t, errors.Is(err, database.ErrNotFound))

	states, err := stateStore.Find(ctx, workflow.WithWorkflowID(wf.ID()))
	require.NoError(t, err)
	assert.Empty(t, states)

	transitions, err := transitionStore.Find(ctx, workflow.WithWorkflowID(wf.ID()))
	require.NoError(t, err)
	assert.Empty(t, transitions)

	triggers, err := triggerStore.Find(ctx, workflow.WithTransitionID(transition.ID()))
	require.NoError(t, err)
	assert.Empty(t, triggers)

	instances, err := instanceStore.Find(ctx, workflow.WithWorkflowID(wf.ID()))
	require.NoError(t, err)
	assert.Empty(t, instances)

	entries, err := logStore.Find(ctx, workflow.WithInstanceID(instance.ID()))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWorkflowTransitionStore_TimeTriggerRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewWorkflowTransitionStore(db)
	stateStore := NewWorkflowStateStore(db)

	wf := mustSaveWorkflow(t, db, "Review")
	draft, err := workflow.NewState(wf.ID(), "Draft", true, 0)
	require.NoError(t, err)
	draft, err = stateStore.Save(ctx, draft)
	require.NoError(t, err)
	done, err := workflow.NewState(wf.ID(), "Done", false, 100)
	require.NoError(t, err)
	done, err = stateStore.Save(ctx, done)
	require.NoError(t, err)

	transition, err := workflow.NewTransition(wf.ID(), "Escalate", draft.ID(), done.ID())
	require.NoError(t, err)
	transition, err = store.Save(ctx, transition)
	require.NoError(t, err)

	loaded, err := store.Get(ctx, transition.ID())
	require.NoError(t, err)
	assert.False(t, loaded.HasTimeTrigger())

	timed, err := loaded.WithTimeTrigger(3, workflow.TimeUnitDays)
	require.NoError(t, err)
	_, err = store.Save(ctx, timed)
	require.NoError(t, err)

	loaded, err = store.Get(ctx, transition.ID())
	require.NoError(t, err)
	assert.True(t, loaded.HasTimeTrigger())
	assert.Equal(t, 3, loaded.TriggerPeriod())
	assert.Equal(t, workflow.TimeUnitDays, loaded.TriggerUnit())

	_, err = store.Save(ctx, loaded.ClearTimeTrigger())
	require.NoError(t, err)
	loaded, err = store.Get(ctx, transition.ID())
	require.NoError(t, err)
	assert.False(t, loaded.HasTimeTrigger())
}

func TestWorkflowTransitionStore_Delete_RemovesTriggers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewWorkflowTransitionStore(db)
	triggerStore := NewWorkflowTriggerStore(db)
	stateStore := NewWorkflowStateStore(db)

	wf := mustSaveWorkflow(t, db, "Review")
	draft, err := workflow.NewState(wf.ID(), "Draft", true, 0)
	require.NoError(t, err)
	draft, err = stateStore.Save(ctx, draft)
	require.NoError(t, err)
	done, err := workflow.NewState(wf.ID(), "Done", false, 100)
	require.NoError(t, err)
	done, err = stateStore.Save(ctx, done)
	require.NoError(t, err)

	transition, err := workflow.NewTransition(wf.ID(), "Approve", draft.ID(), done.ID())
	require.NoError(t, err)
	transition, err = store.Save(ctx, transition)
	require.NoError(t, err)

	stored, err := NewEventTypeStore(db).GetOrCreate(ctx, event.TypeDocumentCreated)
	require.NoError(t, err)
	trigger, err := workflow.NewTriggerEvent(transition.ID(), stored.ID())
	require.NoError(t, err)
	_, err = triggerStore.Save(ctx, trigger)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, transition.ID()))

	triggers, err := triggerStore.Find(ctx, workflow.WithTransitionID(transition.ID()))
	require.NoError(t, err)
	assert.Empty(t, triggers)
}

func TestWorkflowInstanceStore_UniquePerDocument(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewWorkflowInstanceStore(db)

	wf := mustSaveWorkflow(t, db, "Review")
	dt := mustSaveType(t, db, "invoice")
	doc := mustSaveDocument(t, db, dt.ID(), "Invoice")

	instance, err := workflow.NewInstance(wf.ID(), doc.ID())
	require.NoError(t, err)
	_, err = store.Save(ctx, instance)
	require.NoError(t, err)

	dup, err := workflow.NewInstance(wf.ID(), doc.ID())
	require.NoError(t, err)
	_, err = store.Save(ctx, dup)
	assert.Error(t, err)
}

func TestWorkflowLogStore_SystemEntry(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	logStore := NewWorkflowLogStore(db)
	stateStore := NewWorkflowStateStore(db)

	wf := mustSaveWorkflow(t, db, "Review")
	dt := mustSaveType(t, db, "invoice")
	doc := mustSaveDocument(t, db, dt.ID(), "Invoice")

	draft, err := workflow.NewState(wf.ID(), "Draft", true, 0)
	require.NoError(t, err)
	draft, err = stateStore.Save(ctx, draft)
	require.NoError(t, err)
	done, err := workflow.NewState(wf.ID(), "Done", false, 100)
	require.NoError(t, err)
	done, err = stateStore.Save(ctx, done)
	require.NoError(t, err)
	transition, err := workflow.NewTransition(wf.ID(), "Approve", draft.ID(), done.ID())
	require.NoError(t, err)
	transition, err = NewWorkflowTransitionStore(db).Save(ctx, transition)
	require.NoError(t, err)

	instance, err := workflow.NewInstance(wf.ID(), doc.ID())
	require.NoError(t, err)
	instance, err = NewWorkflowInstanceStore(db).Save(ctx, instance)
	require.NoError(t, err)

	entry, err := workflow.NewLogEntry(instance.ID(), transition.ID(), 0, "time trigger")
	require.NoError(t, err)
	saved, err := logStore.Save(ctx, entry)
	require.NoError(t, err)
	assert.True(t, saved.BySystem())

	entries, err := logStore.Find(ctx, workflow.WithInstanceID(instance.ID()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].BySystem())
	assert.Equal(t, "time trigger", entries[0].Comment())
}
