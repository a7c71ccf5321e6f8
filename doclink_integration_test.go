package doclink_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/application/service"
	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/event"
	"github.com/pagekeep/doclink/domain/linking"
	"github.com/pagekeep/doclink/internal/config"
	"github.com/pagekeep/doclink/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newIntegrationClient builds a client on a fresh SQLite database under
// t.TempDir(). The trigger scheduler is disabled so tests drive every
// transition explicitly.
func newIntegrationClient(t *testing.T) *doclink.Client {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	dataDir := filepath.Join(tmpDir, "data")

	client, err := doclink.New(
		doclink.WithSQLite(dbPath),
		doclink.WithDataDir(dataDir),
		doclink.WithSchedulerConfig(config.NewSchedulerConfig().WithEnabled(false)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestIntegration_DocumentLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()

	client := newIntegrationClient(t)
	ctx := context.Background()

	admin, err := client.Users.ByUsername(ctx, "admin")
	require.NoError(t, err)
	require.True(t, admin.IsSuperuser(), "bootstrap admin should be a superuser")

	invoices, err := client.Types.Create(ctx, "Invoices")
	require.NoError(t, err)

	doc, err := client.Documents.Create(ctx, admin, service.DocumentCreateParams{
		TypeID:      invoices.ID(),
		Label:       "Invoice 2026-001",
		Description: "January invoice",
		Language:    "en",
	})
	require.NoError(t, err)
	assert.Greater(t, doc.ID(), int64(0), "document should have an ID")
	t.Logf("created document %d (%s)", doc.ID(), doc.UUID())

	// Attach a version with content and read it back
	payload := []byte("%PDF-1.7 invoice body")
	version, err := client.Documents.CreateVersion(ctx, admin, service.VersionCreateParams{
		DocumentID: doc.ID(),
		Comment:    "initial upload",
		Content:    payload,
	})
	require.NoError(t, err)
	require.True(t, version.HasContent())

	stored, err := client.Documents.Content(ctx, version.ID())
	require.NoError(t, err)
	assert.Equal(t, payload, stored.Data())

	// Tag the document with a metadata value
	customerID, err := client.Metadata.CreateType(ctx, service.MetadataTypeParams{
		Name:  "customer_id",
		Label: "Customer ID",
	})
	require.NoError(t, err)

	_, err = client.Metadata.SetValue(ctx, admin, doc.ID(), customerID.ID(), "ACME-0042")
	require.NoError(t, err)

	values, err := client.Metadata.ValuesFor(ctx, doc.ID())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"customer_id": "ACME-0042"}, values)

	// The lifecycle so far has left an audit trail
	created, err := client.Events.ResolveType(ctx, event.TypeDocumentCreated)
	require.NoError(t, err)
	count, err := client.Events.Count(ctx, event.WithStoredTypeID(created.ID()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "expected one document created event")

	// Deletion requires the trash first
	err = client.Documents.Delete(ctx, admin, doc.ID())
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = client.Documents.Trash(ctx, admin, doc.ID())
	require.NoError(t, err)
	err = client.Documents.Delete(ctx, admin, doc.ID())
	require.NoError(t, err)

	_, err = client.Documents.Versions(ctx, doc.ID())
	assert.Error(t, err, "versions of a deleted document should not resolve")
}

func TestIntegration_SmartLinkResolution(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()

	client := newIntegrationClient(t)
	ctx := context.Background()

	admin, err := client.Users.ByUsername(ctx, "admin")
	require.NoError(t, err)

	contracts, err := client.Types.Create(ctx, "Contracts")
	require.NoError(t, err)

	// Three English documents and two German ones; the first English
	// document is the resolution source.
	var docIDs []int64
	for i, language := range []string{"en", "en", "en", "de", "de"} {
		doc, err := client.Documents.Create(ctx, admin, service.DocumentCreateParams{
			TypeID:   contracts.ID(),
			Label:    fmt.Sprintf("Contract %02d", i+1),
			Language: language,
		})
		require.NoError(t, err)
		docIDs = append(docIDs, doc.ID())
	}
	sourceID := docIDs[0]

	link, err := client.SmartLinks.Create(ctx, admin, service.SmartLinkCreateParams{
		Label:        "Same language",
		DynamicLabel: `"Contracts in " + document.language`,
	})
	require.NoError(t, err)
	require.NoError(t, client.SmartLinks.AssignType(ctx, admin, link.ID(), contracts.ID()))

	_, err = client.SmartLinks.AddCondition(ctx, admin, link.ID(), service.ConditionParams{
		Inclusion:   linking.InclusionAnd,
		TargetField: linking.FieldLanguage,
		Operator:    linking.OperatorIExact,
		Operand:     linking.FieldOperand(linking.FieldLanguage),
		Enabled:     true,
	})
	require.NoError(t, err)

	// The source matches the two other English contracts, never itself
	resolved, err := client.Resolver.Resolve(ctx, admin, sourceID, link.ID(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, resolved.Total())
	assert.Len(t, resolved.Documents(), 2)
	assert.Equal(t, "Contracts in en", resolved.Label(), "dynamic label should render")
	for _, match := range resolved.Documents() {
		assert.NotEqual(t, sourceID, match.ID(), "source must be excluded from its own results")
	}

	// ResolveAll surfaces every enabled link of the source's type
	all, err := client.Resolver.ResolveAll(ctx, admin, sourceID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, link.ID(), all[0].Link().ID())
	assert.Equal(t, 2, all[0].Total())

	// Trashed documents disappear from resolution until restored
	_, err = client.Documents.Trash(ctx, admin, docIDs[1])
	require.NoError(t, err)
	resolved, err = client.Resolver.Resolve(ctx, admin, sourceID, link.ID(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved.Total())

	_, err = client.Documents.Restore(ctx, admin, docIDs[1])
	require.NoError(t, err)
	resolved, err = client.Resolver.Resolve(ctx, admin, sourceID, link.ID(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, resolved.Total())
}

func TestIntegration_WorkflowAutoLaunch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()

	client := newIntegrationClient(t)
	ctx := context.Background()

	admin, err := client.Users.ByUsername(ctx, "admin")
	require.NoError(t, err)

	reports, err := client.Types.Create(ctx, "Reports")
	require.NoError(t, err)

	review, err := client.Workflows.Create(ctx, service.WorkflowCreateParams{Label: "Review"})
	require.NoError(t, err)

	draft, err := client.Workflows.AddState(ctx, review.ID(), service.StateParams{Label: "Draft", Initial: true})
	require.NoError(t, err)
	inReview, err := client.Workflows.AddState(ctx, review.ID(), service.StateParams{Label: "In review", Completion: 50})
	require.NoError(t, err)
	done, err := client.Workflows.AddState(ctx, review.ID(), service.StateParams{Label: "Done", Completion: 100})
	require.NoError(t, err)

	submit, err := client.Workflows.AddTransition(ctx, review.ID(), service.TransitionParams{
		Label:              "Submit",
		OriginStateID:      draft.ID(),
		DestinationStateID: inReview.ID(),
	})
	require.NoError(t, err)
	approve, err := client.Workflows.AddTransition(ctx, review.ID(), service.TransitionParams{
		Label:              "Approve",
		OriginStateID:      inReview.ID(),
		DestinationStateID: done.ID(),
	})
	require.NoError(t, err)

	require.NoError(t, client.Workflows.AssignType(ctx, review.ID(), reports.ID()))

	// Creating a document of the assigned type launches an instance
	doc, err := client.Documents.Create(ctx, admin, service.DocumentCreateParams{
		TypeID: reports.ID(),
		Label:  "Q2 report",
	})
	require.NoError(t, err)

	instances, err := client.Workflows.InstancesFor(ctx, doc.ID())
	require.NoError(t, err)
	require.Len(t, instances, 1)
	instance := instances[0]
	assert.Equal(t, review.ID(), instance.WorkflowID())

	status, err := client.Workflows.Status(ctx, instance)
	require.NoError(t, err)
	assert.Equal(t, draft.ID(), status.State().ID(), "fresh instances start in the initial state")

	// Walk the instance through both transitions
	_, err = client.Workflows.ExecuteTransition(ctx, admin, instance.ID(), submit.ID(), "ready for review")
	require.NoError(t, err)
	status, err = client.Workflows.Status(ctx, instance)
	require.NoError(t, err)
	assert.Equal(t, inReview.ID(), status.State().ID())

	// A transition that does not leave the current state is rejected
	_, err = client.Workflows.ExecuteTransition(ctx, admin, instance.ID(), submit.ID(), "again")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = client.Workflows.ExecuteTransition(ctx, admin, instance.ID(), approve.ID(), "looks good")
	require.NoError(t, err)
	status, err = client.Workflows.Status(ctx, instance)
	require.NoError(t, err)
	assert.Equal(t, done.ID(), status.State().ID())
	assert.Equal(t, 100, status.State().Completion())

	entries, err := client.Workflows.LogEntries(ctx, instance.ID())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, submit.ID(), entries[0].TransitionID())
	assert.Equal(t, approve.ID(), entries[1].TransitionID())
}

func TestIntegration_AccessControl(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()

	client := newIntegrationClient(t)
	ctx := context.Background()

	admin, err := client.Users.ByUsername(ctx, "admin")
	require.NoError(t, err)

	archive, err := client.Types.Create(ctx, "Archive")
	require.NoError(t, err)
	doc, err := client.Documents.Create(ctx, admin, service.DocumentCreateParams{
		TypeID: archive.ID(),
		Label:  "Filing 1987-044",
	})
	require.NoError(t, err)

	clerk, err := client.Users.Create(ctx, "clerk")
	require.NoError(t, err)

	resource := access.NewResource(access.TargetDocument, doc.ID())

	// Denied before any grant, allowed after, denied again once deactivated
	err = client.Access.CheckAccess(ctx, clerk, access.PermissionDocumentView, resource)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = client.Access.Grant(ctx, service.GrantParams{
		UserID:     clerk.ID(),
		Permission: access.PermissionDocumentView,
	})
	require.NoError(t, err)

	err = client.Access.CheckAccess(ctx, clerk, access.PermissionDocumentView, resource)
	require.NoError(t, err)

	// The grant was view only
	err = client.Access.CheckAccess(ctx, clerk, access.PermissionDocumentTrash, resource)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)

	allowed, err := client.Access.FilterAuthorized(
		ctx, clerk, access.PermissionDocumentView, access.TargetDocument, []int64{doc.ID(), doc.ID() + 1},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, allowed.Cardinality(), "a global grant authorizes every listed ID")

	clerk, err = client.Users.SetActive(ctx, clerk.ID(), false)
	require.NoError(t, err)
	err = client.Access.CheckAccess(ctx, clerk, access.PermissionDocumentView, resource)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
}
