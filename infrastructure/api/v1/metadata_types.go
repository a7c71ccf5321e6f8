package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/application/service"
	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
	"github.com/pagekeep/doclink/infrastructure/api/middleware"
	"github.com/pagekeep/doclink/infrastructure/api/v1/dto"
)

// MetadataTypesRouter handles metadata type API endpoints.
type MetadataTypesRouter struct {
	client     *doclink.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewMetadataTypesRouter creates a new MetadataTypesRouter.
func NewMetadataTypesRouter(client *doclink.Client) *MetadataTypesRouter {
	return &MetadataTypesRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for metadata type endpoints.
func (r *MetadataTypesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	object := middleware.ObjectResource(access.TargetMetadataType, "id")
	view := middleware.RequireAccess(r.client.Access, access.PermissionMetadataTypeView, object, r.logger)
	edit := middleware.RequireAccess(r.client.Access, access.PermissionMetadataTypeEdit, object, r.logger)
	remove := middleware.RequireAccess(r.client.Access, access.PermissionMetadataTypeDelete, object, r.logger)
	create := middleware.RequireAccess(r.client.Access, access.PermissionMetadataTypeCreate, middleware.GlobalResource, r.logger)

	router.Get("/", r.List)
	router.With(create).Post("/", r.Create)
	router.With(view).Get("/{id}", r.Get)
	router.With(edit).Put("/{id}", r.Rename)
	router.With(remove).Delete("/{id}", r.Delete)

	return router
}

// List handles GET /api/v1/metadata-types.
//
//	@Summary		List metadata types
//	@Description	Get metadata types visible to the caller
//	@Tags			metadata-types
//	@Accept			json
//	@Produce		json
//	@Param			page		query	int	false	"Page number (default: 1)"
//	@Param			page_size	query	int	false	"Results per page (default: 20, max: 100)"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		401	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/metadata-types [get]
func (r *MetadataTypesRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	viewer := middleware.GetPrincipal(ctx)
	pagination := ParsePagination(req)

	total, err := r.client.Metadata.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	types, err := r.client.Metadata.Find(ctx, pagination.Options()...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	ids := make([]int64, len(types))
	for i, t := range types {
		ids[i] = t.ID()
	}
	allowed, err := r.client.Access.FilterAuthorized(ctx, viewer, access.PermissionMetadataTypeView, access.TargetMetadataType, ids)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	visible := make([]document.MetadataType, 0, len(types))
	for _, t := range types {
		if allowed.Contains(t.ID()) {
			visible = append(visible, t)
		}
	}

	response := jsonapi.NewListResponse(r.serializer.MetadataTypeResources(visible))
	response.Meta = PaginationMeta(pagination, total)
	response.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSON(w, http.StatusOK, response)
}

// Create handles POST /api/v1/metadata-types.
//
//	@Summary		Create metadata type
//	@Description	Create a metadata type with a unique machine name
//	@Tags			metadata-types
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.MetadataTypeCreateRequest	true	"Metadata type request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		409		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/metadata-types [post]
func (r *MetadataTypesRouter) Create(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.MetadataTypeCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	created, err := r.client.Metadata.CreateType(ctx, service.MetadataTypeParams{
		Name:  body.Data.Attributes.Name,
		Label: body.Data.Attributes.Label,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.MetadataTypeResource(created)))
}

// Get handles GET /api/v1/metadata-types/{id}.
//
//	@Summary		Get metadata type
//	@Description	Get a metadata type by ID
//	@Tags			metadata-types
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Metadata type ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/metadata-types/{id} [get]
func (r *MetadataTypesRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	t, err := r.client.Metadata.Get(ctx, storage.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.MetadataTypeResource(t)))
}

// Rename handles PUT /api/v1/metadata-types/{id}.
//
//	@Summary		Rename metadata type
//	@Description	Change a metadata type's label; the machine name is immutable
//	@Tags			metadata-types
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Metadata type ID"
//	@Param			body	body		dto.MetadataTypeUpdateRequest	true	"Metadata type request"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/metadata-types/{id} [put]
func (r *MetadataTypesRouter) Rename(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.MetadataTypeUpdateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	renamed, err := r.client.Metadata.RenameType(ctx, id, body.Data.Attributes.Label)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.MetadataTypeResource(renamed)))
}

// Delete handles DELETE /api/v1/metadata-types/{id}.
//
//	@Summary		Delete metadata type
//	@Description	Delete a metadata type and every value stored under it
//	@Tags			metadata-types
//	@Accept			json
//	@Produce		json
//	@Param			id	path	int	true	"Metadata type ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/metadata-types/{id} [delete]
func (r *MetadataTypesRouter) Delete(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Metadata.DeleteType(ctx, id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
