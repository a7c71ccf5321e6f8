package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/internal/domain"
)

func TestDocumentType_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.types.Create(ctx, "Contracts")
	require.NoError(t, err)
	assert.NotZero(t, created.ID())
	assert.Equal(t, "Contracts", created.Label())

	t.Run("duplicate label rejected", func(t *testing.T) {
		_, err := env.types.Create(ctx, "Contracts")
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	t.Run("blank label rejected", func(t *testing.T) {
		_, err := env.types.Create(ctx, "   ")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}

func TestDocumentType_Rename(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	contracts := env.docType(t, "Contracts")
	invoices := env.docType(t, "Invoices")

	renamed, err := env.types.Rename(ctx, contracts.ID(), "Agreements")
	require.NoError(t, err)
	assert.Equal(t, "Agreements", renamed.Label())

	t.Run("taken label rejected", func(t *testing.T) {
		_, err := env.types.Rename(ctx, invoices.ID(), "Agreements")
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	t.Run("same label passes", func(t *testing.T) {
		kept, err := env.types.Rename(ctx, invoices.ID(), "Invoices")
		require.NoError(t, err)
		assert.Equal(t, "Invoices", kept.Label())
	})
}

func TestDocumentType_DeleteBlockedByDocuments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t)
	dt := env.docType(t, "Invoices")
	doc := env.doc(t, admin, dt.ID(), "March invoice")

	err := env.types.Delete(ctx, dt.ID())
	assert.True(t, errors.Is(err, domain.ErrConflict))

	_, err = env.documents.Trash(ctx, admin, doc.ID())
	require.NoError(t, err)
	require.NoError(t, env.documents.Delete(ctx, admin, doc.ID()))

	require.NoError(t, env.types.Delete(ctx, dt.ID()))
	_, err = env.types.Get(ctx, storage.WithID(dt.ID()))
	assert.Error(t, err)
}

func TestDocumentType_DeleteDropsAssignments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t)
	dt := env.docType(t, "Ephemeral")

	link, err := env.links.Create(ctx, admin, SmartLinkCreateParams{Label: "Peers"})
	require.NoError(t, err)
	require.NoError(t, env.links.AssignType(ctx, admin, link.ID(), dt.ID()))

	flow, err := env.workflows.Create(ctx, WorkflowCreateParams{Label: "Review"})
	require.NoError(t, err)
	require.NoError(t, env.workflows.AssignType(ctx, flow.ID(), dt.ID()))

	require.NoError(t, env.types.Delete(ctx, dt.ID()))

	linkTypes, err := env.links.AssignedTypeIDs(ctx, link.ID())
	require.NoError(t, err)
	assert.Empty(t, linkTypes)

	flowTypes, err := env.workflows.AssignedTypeIDs(ctx, flow.ID())
	require.NoError(t, err)
	assert.Empty(t, flowTypes)
}
