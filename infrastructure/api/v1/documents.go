package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/application/service"
	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
	"github.com/pagekeep/doclink/infrastructure/api/middleware"
	"github.com/pagekeep/doclink/infrastructure/api/v1/dto"
	"github.com/pagekeep/doclink/internal/domain"
)

// DocumentsRouter handles document API endpoints.
type DocumentsRouter struct {
	client     *doclink.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewDocumentsRouter creates a new DocumentsRouter.
func NewDocumentsRouter(client *doclink.Client) *DocumentsRouter {
	return &DocumentsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for document endpoints. Object routes are
// gated on the document named in the URL; the list excludes unauthorized
// documents instead.
func (r *DocumentsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	object := middleware.ObjectResource(access.TargetDocument, "id")
	view := middleware.RequireAccess(r.client.Access, access.PermissionDocumentView, object, r.logger)
	edit := middleware.RequireAccess(r.client.Access, access.PermissionDocumentEdit, object, r.logger)
	trash := middleware.RequireAccess(r.client.Access, access.PermissionDocumentTrash, object, r.logger)
	remove := middleware.RequireAccess(r.client.Access, access.PermissionDocumentDelete, object, r.logger)
	create := middleware.RequireAccess(r.client.Access, access.PermissionDocumentCreate, middleware.GlobalResource, r.logger)

	router.Get("/", r.List)
	router.With(create).Post("/", r.Create)
	router.With(view).Get("/{id}", r.Get)
	router.With(edit).Put("/{id}", r.Update)
	router.With(remove).Delete("/{id}", r.Delete)
	router.With(edit).Post("/{id}/type", r.ChangeType)
	router.With(trash).Post("/{id}/trash", r.Trash)
	router.With(trash).Post("/{id}/restore", r.Restore)
	router.With(view).Get("/{id}/versions", r.ListVersions)
	router.With(edit).Post("/{id}/versions", r.CreateVersion)
	router.With(view).Get("/{id}/versions/{version_id}", r.GetVersion)
	router.With(edit).Delete("/{id}/versions/{version_id}", r.DeleteVersion)
	router.With(view).Get("/{id}/versions/{version_id}/content", r.DownloadContent)
	router.With(edit).Put("/{id}/versions/{version_id}/content", r.UploadContent)
	router.With(view).Get("/{id}/metadata", r.ListMetadata)
	router.With(edit).Put("/{id}/metadata", r.SetMetadata)
	router.With(edit).Delete("/{id}/metadata/{metadata_type_id}", r.RemoveMetadata)
	router.With(view).Get("/{id}/resolved-links", r.ResolveLinks)
	router.With(view).Get("/{id}/resolved-links/{link_id}", r.ResolveLink)
	router.With(view).Get("/{id}/workflow-instances", r.ListInstances)
	router.With(edit).Post("/{id}/workflow-instances", r.LaunchInstance)

	return router
}

// List handles GET /api/v1/documents.
//
//	@Summary		List documents
//	@Description	Get documents visible to the caller, excluding the trash unless requested
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			page				query	int		false	"Page number (default: 1)"
//	@Param			page_size			query	int		false	"Results per page (default: 20, max: 100)"
//	@Param			document_type_id	query	int		false	"Filter by document type"
//	@Param			in_trash			query	bool	false	"List trashed documents instead"
//	@Param			label				query	string	false	"Filter by label substring"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		401	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents [get]
func (r *DocumentsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	viewer := middleware.GetPrincipal(ctx)
	pagination := ParsePagination(req)

	options := []storage.Option{document.WithInTrash(req.URL.Query().Get("in_trash") == "true")}
	if typeStr := req.URL.Query().Get("document_type_id"); typeStr != "" {
		typeID, err := idQuery(typeStr, "document_type_id")
		if err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		options = append(options, document.WithTypeID(typeID))
	}
	if label := req.URL.Query().Get("label"); label != "" {
		options = append(options, document.WithLabelContains(label))
	}

	total, err := r.client.Documents.Count(ctx, options...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	docs, err := r.client.Documents.Find(ctx, append(options, pagination.Options()...)...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	visible, err := r.authorizedDocuments(ctx, viewer, docs)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := jsonapi.NewListResponse(r.serializer.DocumentResources(visible))
	response.Meta = PaginationMeta(pagination, total)
	response.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSON(w, http.StatusOK, response)
}

// Create handles POST /api/v1/documents.
//
//	@Summary		Create document
//	@Description	Create a document under a document type
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.DocumentCreateRequest	true	"Document request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		403		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents [post]
func (r *DocumentsRouter) Create(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.DocumentCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	doc, err := r.client.Documents.Create(ctx, middleware.GetPrincipal(ctx), service.DocumentCreateParams{
		TypeID:      body.Data.Attributes.DocumentTypeID,
		Label:       body.Data.Attributes.Label,
		Description: body.Data.Attributes.Description,
		Language:    body.Data.Attributes.Language,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.DocumentResource(doc)))
}

// Get handles GET /api/v1/documents/{id}.
//
//	@Summary		Get document
//	@Description	Get a document by ID
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Document ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id} [get]
func (r *DocumentsRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc, err := r.client.Documents.Get(ctx, storage.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.DocumentResource(doc)))
}

// Update handles PUT /api/v1/documents/{id}.
//
//	@Summary		Update document
//	@Description	Update a document's label, description, and language
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Document ID"
//	@Param			body	body		dto.DocumentUpdateRequest	true	"Document request"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id} [put]
func (r *DocumentsRouter) Update(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.DocumentUpdateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	doc, err := r.client.Documents.Update(ctx, middleware.GetPrincipal(ctx), id, service.DocumentUpdateParams{
		Label:       body.Data.Attributes.Label,
		Description: body.Data.Attributes.Description,
		Language:    body.Data.Attributes.Language,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.DocumentResource(doc)))
}

// Delete handles DELETE /api/v1/documents/{id}.
//
//	@Summary		Delete document
//	@Description	Permanently delete a trashed document and its versions
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id	path	int	true	"Document ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Failure		409	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id} [delete]
func (r *DocumentsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Documents.Delete(ctx, middleware.GetPrincipal(ctx), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChangeType handles POST /api/v1/documents/{id}/type.
//
//	@Summary		Change document type
//	@Description	Move a document to another document type
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Document ID"
//	@Param			body	body		dto.DocumentTypeChangeRequest	true	"Type change request"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/type [post]
func (r *DocumentsRouter) ChangeType(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.DocumentTypeChangeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	doc, err := r.client.Documents.ChangeType(ctx, middleware.GetPrincipal(ctx), id, body.Data.Attributes.DocumentTypeID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.DocumentResource(doc)))
}

// Trash handles POST /api/v1/documents/{id}/trash.
//
//	@Summary		Trash document
//	@Description	Move a document to the trash; trashing a trashed document is a no-op
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Document ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/trash [post]
func (r *DocumentsRouter) Trash(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc, err := r.client.Documents.Trash(ctx, middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.DocumentResource(doc)))
}

// Restore handles POST /api/v1/documents/{id}/restore.
//
//	@Summary		Restore document
//	@Description	Restore a document from the trash; restoring an active document is a no-op
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Document ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/restore [post]
func (r *DocumentsRouter) Restore(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc, err := r.client.Documents.Restore(ctx, middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.DocumentResource(doc)))
}

// ListVersions handles GET /api/v1/documents/{id}/versions.
//
//	@Summary		List document versions
//	@Description	Get a document's versions, newest first
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Document ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/versions [get]
func (r *DocumentsRouter) ListVersions(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	versions, err := r.client.Documents.Versions(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.VersionResources(versions)))
}

// CreateVersion handles POST /api/v1/documents/{id}/versions.
//
//	@Summary		Create document version
//	@Description	Create a new version, optionally with an inline payload
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Document ID"
//	@Param			body	body		dto.VersionCreateRequest	true	"Version request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/versions [post]
func (r *DocumentsRouter) CreateVersion(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.VersionCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	version, err := r.client.Documents.CreateVersion(ctx, middleware.GetPrincipal(ctx), service.VersionCreateParams{
		DocumentID: id,
		Comment:    body.Data.Attributes.Comment,
		Content:    body.Data.Attributes.Content,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.VersionResource(version)))
}

// GetVersion handles GET /api/v1/documents/{id}/versions/{version_id}.
//
//	@Summary		Get document version
//	@Description	Get one version of a document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int	true	"Document ID"
//	@Param			version_id	path		int	true	"Version ID"
//	@Success		200			{object}	jsonapi.Document
//	@Failure		404			{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/versions/{version_id} [get]
func (r *DocumentsRouter) GetVersion(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	version, err := r.documentVersion(ctx, req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.VersionResource(version)))
}

// DeleteVersion handles DELETE /api/v1/documents/{id}/versions/{version_id}.
//
//	@Summary		Delete document version
//	@Description	Delete one version of a document and its stored payload
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id			path	int	true	"Document ID"
//	@Param			version_id	path	int	true	"Version ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/versions/{version_id} [delete]
func (r *DocumentsRouter) DeleteVersion(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	version, err := r.documentVersion(ctx, req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Documents.DeleteVersion(ctx, version.ID()); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DownloadContent handles GET /api/v1/documents/{id}/versions/{version_id}/content.
//
//	@Summary		Download version content
//	@Description	Download the stored payload of a version
//	@Tags			documents
//	@Produce		application/octet-stream
//	@Param			id			path	int	true	"Document ID"
//	@Param			version_id	path	int	true	"Version ID"
//	@Success		200	{file}		binary
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/versions/{version_id}/content [get]
func (r *DocumentsRouter) DownloadContent(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	version, err := r.documentVersion(ctx, req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	content, err := r.client.Documents.Content(ctx, version.ID())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	mimetype := content.Version().Mimetype()
	if mimetype == "" {
		mimetype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimetype)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("version-%d", version.ID())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content.Data())
}

// UploadContent handles PUT /api/v1/documents/{id}/versions/{version_id}/content.
//
//	@Summary		Upload version content
//	@Description	Store the payload of a version; the raw request body is the payload
//	@Tags			documents
//	@Accept			application/octet-stream
//	@Produce		json
//	@Param			id			path		int	true	"Document ID"
//	@Param			version_id	path		int	true	"Version ID"
//	@Success		200			{object}	jsonapi.Document
//	@Failure		404			{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/versions/{version_id}/content [put]
func (r *DocumentsRouter) UploadContent(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	version, err := r.documentVersion(ctx, req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data, err := io.ReadAll(req.Body)
	if err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	updated, err := r.client.Documents.UploadContent(ctx, middleware.GetPrincipal(ctx), version.ID(), data)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.VersionResource(updated)))
}

// ListMetadata handles GET /api/v1/documents/{id}/metadata.
//
//	@Summary		List document metadata
//	@Description	Get a document's metadata values with their types
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Document ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/metadata [get]
func (r *DocumentsRouter) ListMetadata(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	entries, err := r.client.Metadata.For(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resources := make([]*jsonapi.Resource, len(entries))
	for i, entry := range entries {
		resources[i] = r.serializer.MetadataValueResource(entry.Record(), entry.Type())
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(resources))
}

// SetMetadata handles PUT /api/v1/documents/{id}/metadata.
//
//	@Summary		Set document metadata
//	@Description	Set a metadata value on a document, creating or replacing it
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Document ID"
//	@Param			body	body		dto.MetadataValueRequest	true	"Metadata value request"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/metadata [put]
func (r *DocumentsRouter) SetMetadata(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.MetadataValueRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	value, err := r.client.Metadata.SetValue(ctx, middleware.GetPrincipal(ctx), id, body.Data.Attributes.MetadataTypeID, body.Data.Attributes.Value)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	mtype, err := r.client.Metadata.Get(ctx, storage.WithID(value.TypeID()))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.MetadataValueResource(value, mtype)))
}

// RemoveMetadata handles DELETE /api/v1/documents/{id}/metadata/{metadata_type_id}.
//
//	@Summary		Remove document metadata
//	@Description	Remove a metadata value from a document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id					path	int	true	"Document ID"
//	@Param			metadata_type_id	path	int	true	"Metadata type ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/metadata/{metadata_type_id} [delete]
func (r *DocumentsRouter) RemoveMetadata(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	typeID, err := idParam(req, "metadata_type_id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Metadata.RemoveValue(ctx, middleware.GetPrincipal(ctx), id, typeID); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResolveLinks handles GET /api/v1/documents/{id}/resolved-links.
//
//	@Summary		Resolve smart links
//	@Description	Resolve every visible smart link of the document's type; each entry carries its rendered label and match count
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Document ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/resolved-links [get]
func (r *DocumentsRouter) ResolveLinks(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	results, err := r.client.Resolver.ResolveAll(ctx, middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resources := make([]*jsonapi.Resource, len(results))
	for i, result := range results {
		resources[i] = r.serializer.ResolvedLinkResource(result.Link(), result.Label(), result.Total(), result.ErrorMessage())
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(resources))
}

// ResolveLink handles GET /api/v1/documents/{id}/resolved-links/{link_id}.
//
//	@Summary		Resolve one smart link
//	@Description	Resolve a single smart link for the document, paginating the matching documents
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id			path	int	true	"Document ID"
//	@Param			link_id		path	int	true	"Smart link ID"
//	@Param			page		query	int	false	"Page number (default: 1)"
//	@Param			page_size	query	int	false	"Results per page (default: 20, max: 100)"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/resolved-links/{link_id} [get]
func (r *DocumentsRouter) ResolveLink(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	linkID, err := idParam(req, "link_id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	pagination := ParsePagination(req)
	resolved, err := r.client.Resolver.Resolve(ctx, middleware.GetPrincipal(ctx), id, linkID, pagination.Limit(), pagination.Offset())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total := int64(resolved.Total())
	response := jsonapi.NewListResponse(r.serializer.DocumentResources(resolved.Documents()))
	meta := *PaginationMeta(pagination, total)
	meta["label"] = resolved.Label()
	if resolved.Failed() {
		meta["error"] = resolved.ErrorMessage()
	}
	response.Meta = &meta
	response.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSON(w, http.StatusOK, response)
}

// ListInstances handles GET /api/v1/documents/{id}/workflow-instances.
//
//	@Summary		List workflow instances
//	@Description	Get the workflow instances running on a document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Document ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/workflow-instances [get]
func (r *DocumentsRouter) ListInstances(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	instances, err := r.client.Workflows.InstancesFor(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.InstanceResources(instances)))
}

// LaunchInstance handles POST /api/v1/documents/{id}/workflow-instances.
//
//	@Summary		Launch workflow instance
//	@Description	Launch a workflow on a document; the workflow must be assigned to the document's type
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Document ID"
//	@Param			body	body		dto.InstanceLaunchRequest	true	"Launch request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Failure		409		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/documents/{id}/workflow-instances [post]
func (r *DocumentsRouter) LaunchInstance(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.InstanceLaunchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	doc, err := r.client.Documents.Get(ctx, storage.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	wf, err := r.client.Workflows.Get(ctx, storage.WithID(body.Data.Attributes.WorkflowID))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	assigned, err := r.client.Workflows.AssignedTypeIDs(ctx, wf.ID())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if !slices.Contains(assigned, doc.TypeID()) {
		middleware.WriteError(w, req, fmt.Errorf(
			"%w: workflow %q is not assigned to the document's type", domain.ErrConflict, wf.Label(),
		), r.logger)
		return
	}

	instance, err := r.client.Workflows.Launch(ctx, middleware.GetPrincipal(ctx), wf.ID(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.InstanceResource(instance)))
}

// documentVersion loads the version named in the URL and checks it belongs
// to the document named in the URL.
func (r *DocumentsRouter) documentVersion(ctx context.Context, req *http.Request) (document.Version, error) {
	id, err := idParam(req, "id")
	if err != nil {
		return document.Version{}, err
	}

	versionID, err := idParam(req, "version_id")
	if err != nil {
		return document.Version{}, err
	}

	version, err := r.client.Documents.Version(ctx, versionID)
	if err != nil {
		return document.Version{}, err
	}
	if version.DocumentID() != id {
		return document.Version{}, fmt.Errorf("version %d of document %d: %w", versionID, id, domain.ErrNotFound)
	}

	return version, nil
}

// authorizedDocuments keeps the documents the viewer may see, preserving
// order.
func (r *DocumentsRouter) authorizedDocuments(ctx context.Context, viewer access.User, docs []document.Document) ([]document.Document, error) {
	ids := make([]int64, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID()
	}

	allowed, err := r.client.Access.FilterAuthorized(ctx, viewer, access.PermissionDocumentView, access.TargetDocument, ids)
	if err != nil {
		return nil, err
	}

	visible := make([]document.Document, 0, len(docs))
	for _, doc := range docs {
		if allowed.Contains(doc.ID()) {
			visible = append(visible, doc)
		}
	}
	return visible, nil
}

// idQuery parses a numeric query string value.
func idQuery(value, name string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrValidation, name)
	}
	return id, nil
}
