package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
	"github.com/pagekeep/doclink/infrastructure/api/middleware"
	"github.com/pagekeep/doclink/infrastructure/api/v1/dto"
)

// DocumentTypesRouter handles document type API endpoints.
type DocumentTypesRouter struct {
	client     *doclink.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewDocumentTypesRouter creates a new DocumentTypesRouter.
func NewDocumentTypesRouter(client *doclink.Client) *DocumentTypesRouter {
	return &DocumentTypesRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for document type endpoints.
func (r *DocumentTypesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	object := middleware.ObjectResource(access.TargetDocumentType, "id")
	view := middleware.RequireAccess(r.client.Access, access.PermissionDocumentTypeView, object, r.logger)
	edit := middleware.RequireAccess(r.client.Access, access.PermissionDocumentTypeEdit, object, r.logger)
	remove := middleware.RequireAccess(r.client.Access, access.PermissionDocumentTypeDelete, object, r.logger)
	create := middleware.RequireAccess(r.client.Access, access.PermissionDocumentTypeCreate, middleware.GlobalResource, r.logger)

	router.Get("/", r.List)
	router.With(create).Post("/", r.Create)
	router.With(view).Get("/{id}", r.Get)
	router.With(edit).Put("/{id}", r.Rename)
	router.With(remove).Delete("/{id}", r.Delete)

	return router
}

// List handles GET /api/v1/document-types.
//
//	@Summary		List document types
//	@Description	Get document types visible to the caller
//	@Tags			document-types
//	@Accept			json
//	@Produce		json
//	@Param			page		query	int	false	"Page number (default: 1)"
//	@Param			page_size	query	int	false	"Results per page (default: 20, max: 100)"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		401	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/document-types [get]
func (r *DocumentTypesRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	viewer := middleware.GetPrincipal(ctx)
	pagination := ParsePagination(req)

	total, err := r.client.Types.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	types, err := r.client.Types.Find(ctx, pagination.Options()...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	ids := make([]int64, len(types))
	for i, t := range types {
		ids[i] = t.ID()
	}
	allowed, err := r.client.Access.FilterAuthorized(ctx, viewer, access.PermissionDocumentTypeView, access.TargetDocumentType, ids)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	visible := make([]document.Type, 0, len(types))
	for _, t := range types {
		if allowed.Contains(t.ID()) {
			visible = append(visible, t)
		}
	}

	response := jsonapi.NewListResponse(r.serializer.DocumentTypeResources(visible))
	response.Meta = PaginationMeta(pagination, total)
	response.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSON(w, http.StatusOK, response)
}

// Create handles POST /api/v1/document-types.
//
//	@Summary		Create document type
//	@Description	Create a document type
//	@Tags			document-types
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.DocumentTypeRequest	true	"Document type request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		409		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/document-types [post]
func (r *DocumentTypesRouter) Create(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.DocumentTypeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	created, err := r.client.Types.Create(ctx, body.Data.Attributes.Label)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.DocumentTypeResource(created)))
}

// Get handles GET /api/v1/document-types/{id}.
//
//	@Summary		Get document type
//	@Description	Get a document type by ID
//	@Tags			document-types
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Document type ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/document-types/{id} [get]
func (r *DocumentTypesRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	t, err := r.client.Types.Get(ctx, storage.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.DocumentTypeResource(t)))
}

// Rename handles PUT /api/v1/document-types/{id}.
//
//	@Summary		Rename document type
//	@Description	Change a document type's label
//	@Tags			document-types
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Document type ID"
//	@Param			body	body		dto.DocumentTypeRequest	true	"Document type request"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/document-types/{id} [put]
func (r *DocumentTypesRouter) Rename(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.DocumentTypeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	renamed, err := r.client.Types.Rename(ctx, id, body.Data.Attributes.Label)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.DocumentTypeResource(renamed)))
}

// Delete handles DELETE /api/v1/document-types/{id}.
//
//	@Summary		Delete document type
//	@Description	Delete a document type; fails while documents still use it
//	@Tags			document-types
//	@Accept			json
//	@Produce		json
//	@Param			id	path	int	true	"Document type ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Failure		409	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/document-types/{id} [delete]
func (r *DocumentTypesRouter) Delete(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Types.Delete(ctx, id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
