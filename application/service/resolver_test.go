package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/linking"
	"github.com/pagekeep/doclink/internal/domain"
)

// linkedCorpus is one smart link over a pool of documents sharing a type:
// the source invoice plus candidates from two clients.
type linkedCorpus struct {
	docType document.Type
	link    linking.SmartLink
	source  document.Document
	acmeA   document.Document
	acmeB   document.Document
	other   document.Document
}

// newLinkedCorpus builds documents tagged with a "client" metadata value
// and a smart link matching documents of the source's client.
func newLinkedCorpus(t *testing.T, env *testEnv) linkedCorpus {
	t.Helper()
	ctx := context.Background()
	admin := env.admin(t)
	dt := env.docType(t, "Invoice")

	client, err := env.metadata.CreateType(ctx, MetadataTypeParams{Name: "client", Label: "Client"})
	require.NoError(t, err)

	tag := func(doc document.Document, value string) {
		t.Helper()
		_, err := env.metadata.SetValue(ctx, admin, doc.ID(), client.ID(), value)
		require.NoError(t, err)
	}

	source := env.doc(t, admin, dt.ID(), "ACME March")
	acmeA := env.doc(t, admin, dt.ID(), "ACME January")
	acmeB := env.doc(t, admin, dt.ID(), "ACME February")
	other := env.doc(t, admin, dt.ID(), "Globex January")
	tag(source, "acme")
	tag(acmeA, "acme")
	tag(acmeB, "acme")
	tag(other, "globex")

	link, err := env.links.Create(ctx, admin, SmartLinkCreateParams{Label: "Same client"})
	require.NoError(t, err)
	require.NoError(t, env.links.AssignType(ctx, admin, link.ID(), dt.ID()))

	_, err = env.links.AddCondition(ctx, admin, link.ID(), ConditionParams{
		Inclusion:   linking.InclusionAnd,
		TargetField: linking.MetadataField("client"),
		Operator:    linking.OperatorExact,
		Operand:     linking.FieldOperand(linking.MetadataField("client")),
		Enabled:     true,
	})
	require.NoError(t, err)

	return linkedCorpus{
		docType: dt, link: link, source: source,
		acmeA: acmeA, acmeB: acmeB, other: other,
	}
}

func documentIDs(docs []document.Document) []int64 {
	ids := make([]int64, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID())
	}
	return ids
}

func TestResolver_MatchesOnSharedMetadata(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	corpus := newLinkedCorpus(t, env)
	admin := env.admin(t)

	result, err := env.resolver.Resolve(ctx, admin, corpus.source.ID(), corpus.link.ID(), 0, 0)
	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.Equal(t, 2, result.Total())

	ids := documentIDs(result.Documents())
	assert.Contains(t, ids, corpus.acmeA.ID())
	assert.Contains(t, ids, corpus.acmeB.ID())
	assert.NotContains(t, ids, corpus.source.ID(), "the source never matches itself")
	assert.NotContains(t, ids, corpus.other.ID())
}

func TestResolver_ExcludesTrashedCandidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	corpus := newLinkedCorpus(t, env)
	admin := env.admin(t)

	_, err := env.documents.Trash(ctx, admin, corpus.acmeB.ID())
	require.NoError(t, err)

	result, err := env.resolver.Resolve(ctx, admin, corpus.source.ID(), corpus.link.ID(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{corpus.acmeA.ID()}, documentIDs(result.Documents()))
}

func TestResolver_Pagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	corpus := newLinkedCorpus(t, env)
	admin := env.admin(t)

	page, err := env.resolver.Resolve(ctx, admin, corpus.source.ID(), corpus.link.ID(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, page.Documents(), 1)
	assert.Equal(t, 2, page.Total(), "total counts matches before the page cut")

	rest, err := env.resolver.Resolve(ctx, admin, corpus.source.ID(), corpus.link.ID(), 1, 1)
	require.NoError(t, err)
	assert.Len(t, rest.Documents(), 1)
	assert.NotEqual(t, page.Documents()[0].ID(), rest.Documents()[0].ID())

	past, err := env.resolver.Resolve(ctx, admin, corpus.source.ID(), corpus.link.ID(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, past.Documents())
}

func TestResolver_UnassignedTypeIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	corpus := newLinkedCorpus(t, env)
	admin := env.admin(t)
	stray := env.docType(t, "Memo")
	memo := env.doc(t, admin, stray.ID(), "Weekly memo")

	_, err := env.resolver.Resolve(ctx, admin, memo.ID(), corpus.link.ID(), 0, 0)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	t.Run("disabled link", func(t *testing.T) {
		_, err := env.links.Update(ctx, admin, corpus.link.ID(), SmartLinkUpdateParams{
			Label:   corpus.link.Label(),
			Enabled: false,
		})
		require.NoError(t, err)

		_, err = env.resolver.Resolve(ctx, admin, corpus.source.ID(), corpus.link.ID(), 0, 0)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestResolver_FiltersUnauthorizedDocuments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	corpus := newLinkedCorpus(t, env)
	viewer := env.member(t, "viewer")

	grant := func(p access.Permission, kind access.TargetKind, id int64) {
		t.Helper()
		_, err := env.authorizer.Grant(ctx, GrantParams{
			UserID: viewer.ID(), Permission: p, ObjectKind: kind, ObjectID: id,
		})
		require.NoError(t, err)
	}
	grant(access.PermissionSmartLinkView, access.TargetSmartLink, corpus.link.ID())
	grant(access.PermissionDocumentView, access.TargetDocument, corpus.acmeA.ID())

	result, err := env.resolver.Resolve(ctx, viewer, corpus.source.ID(), corpus.link.ID(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{corpus.acmeA.ID()}, documentIDs(result.Documents()),
		"matches the viewer may not see are dropped, not errors")
}

func TestResolver_RequiresLinkViewPermission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	corpus := newLinkedCorpus(t, env)
	viewer := env.member(t, "viewer")

	// Document access alone is not enough to resolve a link by ID.
	_, err := env.authorizer.Grant(ctx, GrantParams{
		UserID: viewer.ID(), Permission: access.PermissionDocumentView,
	})
	require.NoError(t, err)

	resolved, err := env.resolver.ResolveAll(ctx, viewer, corpus.source.ID())
	require.NoError(t, err)
	assert.Empty(t, resolved, "the list hides links the viewer may not see")

	_, err = env.resolver.Resolve(ctx, viewer, corpus.source.ID(), corpus.link.ID(), 0, 0)
	assert.True(t, errors.Is(err, domain.ErrPermissionDenied),
		"fetching a hidden link by ID is denied, not resolved")

	_, err = env.authorizer.Grant(ctx, GrantParams{
		UserID:     viewer.ID(),
		Permission: access.PermissionSmartLinkView,
		ObjectKind: access.TargetSmartLink,
		ObjectID:   corpus.link.ID(),
	})
	require.NoError(t, err)

	result, err := env.resolver.Resolve(ctx, viewer, corpus.source.ID(), corpus.link.ID(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total())
}

func TestResolver_ResolveAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	corpus := newLinkedCorpus(t, env)
	admin := env.admin(t)

	// A second, disabled link must not appear.
	disabled, err := env.links.Create(ctx, admin, SmartLinkCreateParams{Label: "Disabled"})
	require.NoError(t, err)
	require.NoError(t, env.links.AssignType(ctx, admin, disabled.ID(), corpus.docType.ID()))
	_, err = env.links.Update(ctx, admin, disabled.ID(), SmartLinkUpdateParams{
		Label: "Disabled", Enabled: false,
	})
	require.NoError(t, err)

	resolved, err := env.resolver.ResolveAll(ctx, admin, corpus.source.ID())
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, corpus.link.ID(), resolved[0].Link().ID())
	assert.Equal(t, 2, resolved[0].Total())

	t.Run("viewer without link access sees none", func(t *testing.T) {
		viewer := env.member(t, "outsider")
		resolved, err := env.resolver.ResolveAll(ctx, viewer, corpus.source.ID())
		require.NoError(t, err)
		assert.Empty(t, resolved)
	})
}

func TestResolver_EvaluationErrorsAreGuarded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	corpus := newLinkedCorpus(t, env)
	admin := env.admin(t)

	// The source document has no "priority" value, so evaluation fails.
	_, err := env.links.AddCondition(ctx, admin, corpus.link.ID(), ConditionParams{
		Inclusion:   linking.InclusionAnd,
		TargetField: linking.FieldLabel,
		Operator:    linking.OperatorExact,
		Operand:     linking.FieldOperand(linking.MetadataField("priority")),
		Enabled:     true,
	})
	require.NoError(t, err)

	t.Run("editor sees the error text", func(t *testing.T) {
		result, err := env.resolver.Resolve(ctx, admin, corpus.source.ID(), corpus.link.ID(), 0, 0)
		require.NoError(t, err)
		assert.True(t, result.Failed())
		assert.Empty(t, result.Documents())
		assert.NotEmpty(t, result.ErrorMessage())
	})

	t.Run("plain viewer sees an empty result", func(t *testing.T) {
		viewer := env.member(t, "plain")
		_, err := env.authorizer.Grant(ctx, GrantParams{
			UserID:     viewer.ID(),
			Permission: access.PermissionSmartLinkView,
			ObjectKind: access.TargetSmartLink,
			ObjectID:   corpus.link.ID(),
		})
		require.NoError(t, err)

		result, err := env.resolver.Resolve(ctx, viewer, corpus.source.ID(), corpus.link.ID(), 0, 0)
		require.NoError(t, err)
		assert.True(t, result.Failed())
		assert.Empty(t, result.Documents())
		assert.Empty(t, result.ErrorMessage())
	})
}

func TestResolver_DynamicLabel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	corpus := newLinkedCorpus(t, env)
	admin := env.admin(t)

	_, err := env.links.Update(ctx, admin, corpus.link.ID(), SmartLinkUpdateParams{
		Label:        "Same client",
		DynamicLabel: `"Invoices for " + document.metadata.client`,
		Enabled:      true,
	})
	require.NoError(t, err)

	result, err := env.resolver.Resolve(ctx, admin, corpus.source.ID(), corpus.link.ID(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Invoices for acme", result.Label())

	t.Run("render failure falls back to the static label", func(t *testing.T) {
		_, err := env.links.Update(ctx, admin, corpus.link.ID(), SmartLinkUpdateParams{
			Label:        "Same client",
			DynamicLabel: `"For " + document.metadata.missing`,
			Enabled:      true,
		})
		require.NoError(t, err)

		result, err := env.resolver.Resolve(ctx, admin, corpus.source.ID(), corpus.link.ID(), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, "Same client", result.Label())
	})
}
