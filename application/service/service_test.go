package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/infrastructure/content"
	"github.com/pagekeep/doclink/infrastructure/expression"
	"github.com/pagekeep/doclink/infrastructure/persistence"
	"github.com/pagekeep/doclink/internal/cache"
	"github.com/pagekeep/doclink/internal/database"
	"github.com/pagekeep/doclink/internal/metrics"
	"github.com/pagekeep/doclink/internal/testdb"
)

// testEnv wires every service against an in-memory database, the way the
// client does at startup.
type testEnv struct {
	db         database.Database
	users      *Users
	authorizer *Authorizer
	events     *Event
	types      *DocumentType
	metadata   *Metadata
	documents  *Document
	links      *SmartLink
	resolver   *Resolver
	workflows  *Workflow
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testdb.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()

	userStore := persistence.NewUserStore(db)
	entryStore := persistence.NewAccessEntryStore(db)
	docStore := persistence.NewDocumentStore(db)
	typeStore := persistence.NewDocumentTypeStore(db)
	versionStore := persistence.NewDocumentVersionStore(db)
	metaTypeStore := persistence.NewMetadataTypeStore(db)
	metaStore := persistence.NewDocumentMetadataStore(db)
	linkStore := persistence.NewSmartLinkStore(db)
	conditionStore := persistence.NewSmartLinkConditionStore(db)
	workflowStore := persistence.NewWorkflowStore(db)
	stateStore := persistence.NewWorkflowStateStore(db)
	transitionStore := persistence.NewWorkflowTransitionStore(db)
	instanceStore := persistence.NewWorkflowInstanceStore(db)
	logStore := persistence.NewWorkflowLogStore(db)
	triggerStore := persistence.NewWorkflowTriggerStore(db)
	eventTypeStore := persistence.NewEventTypeStore(db)
	eventRecordStore := persistence.NewEventRecordStore(db)

	renderer, err := expression.NewRenderer()
	require.NoError(t, err)

	authorizer := NewAuthorizer(entryStore, cache.NewMemory(128), time.Minute, m, logger)
	events := NewEvent(eventTypeStore, eventRecordStore, m, logger)
	workflows := NewWorkflow(
		workflowStore, stateStore, transitionStore,
		instanceStore, logStore, triggerStore,
		events, m, logger,
	)
	events.Subscribe(workflows.HandleEvent)

	contentStore := content.NewStore(t.TempDir(), logger)
	documents := NewDocument(
		docStore, typeStore, versionStore, contentStore, workflows, events, logger,
	)

	return &testEnv{
		db:         db,
		users:      NewUsers(userStore, authorizer, logger),
		authorizer: authorizer,
		events:     events,
		types:      NewDocumentType(typeStore, docStore, logger),
		metadata:   NewMetadata(metaTypeStore, metaStore, docStore, events, logger),
		documents:  documents,
		links:      NewSmartLink(linkStore, conditionStore, renderer, events, logger),
		resolver: NewResolver(
			linkStore, conditionStore, docStore, metaStore,
			renderer, authorizer, m, logger,
		),
		workflows: workflows,
	}
}

// admin creates an active superuser for tests that act above the gate.
func (e *testEnv) admin(t *testing.T) access.User {
	t.Helper()
	u, err := e.users.EnsureAdmin(context.Background(), "admin")
	require.NoError(t, err)
	return u
}

// member creates an active non-privileged user.
func (e *testEnv) member(t *testing.T, username string) access.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), username)
	require.NoError(t, err)
	return u
}

// docType creates a document type.
func (e *testEnv) docType(t *testing.T, label string) document.Type {
	t.Helper()
	dt, err := e.types.Create(context.Background(), label)
	require.NoError(t, err)
	return dt
}

// doc creates a document of the given type.
func (e *testEnv) doc(t *testing.T, actor access.User, typeID int64, label string) document.Document {
	t.Helper()
	d, err := e.documents.Create(context.Background(), actor, DocumentCreateParams{
		TypeID: typeID,
		Label:  label,
	})
	require.NoError(t, err)
	return d
}
