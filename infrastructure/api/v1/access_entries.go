package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/application/service"
	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
	"github.com/pagekeep/doclink/infrastructure/api/middleware"
	"github.com/pagekeep/doclink/infrastructure/api/v1/dto"
	"github.com/pagekeep/doclink/internal/domain"
)

// AccessEntriesRouter handles access control API endpoints. ACL permissions
// have no object scope, so every check here is global.
type AccessEntriesRouter struct {
	client     *doclink.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewAccessEntriesRouter creates a new AccessEntriesRouter.
func NewAccessEntriesRouter(client *doclink.Client) *AccessEntriesRouter {
	return &AccessEntriesRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for access entry endpoints.
func (r *AccessEntriesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	view := middleware.RequireAccess(r.client.Access, access.PermissionACLView, middleware.GlobalResource, r.logger)
	edit := middleware.RequireAccess(r.client.Access, access.PermissionACLEdit, middleware.GlobalResource, r.logger)

	router.With(view).Get("/", r.List)
	router.With(edit).Post("/", r.Grant)
	router.With(view).Get("/permissions", r.ListPermissions)
	router.With(view).Get("/{id}", r.Get)
	router.With(edit).Delete("/{id}", r.Revoke)

	return router
}

// List handles GET /api/v1/access-entries.
//
//	@Summary		List access entries
//	@Description	Get access entries, optionally filtered by user, permission, or object
//	@Tags			access-entries
//	@Accept			json
//	@Produce		json
//	@Param			user_id		query	int		false	"Filter by grantee user ID"
//	@Param			permission	query	string	false	"Filter by permission name"
//	@Param			object_kind	query	string	false	"Filter by object kind, with object_id"
//	@Param			object_id	query	int		false	"Filter by object ID, with object_kind"
//	@Param			page		query	int		false	"Page number (default: 1)"
//	@Param			page_size	query	int		false	"Results per page (default: 20, max: 100)"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		400	{object}	jsonapi.Document
//	@Failure		403	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/access-entries [get]
func (r *AccessEntriesRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	pagination := ParsePagination(req)

	filters, err := entryFilters(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Access.Count(ctx, filters...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	entries, err := r.client.Access.Find(ctx, append(filters, pagination.Options()...)...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := jsonapi.NewListResponse(r.serializer.AccessEntryResources(entries))
	response.Meta = PaginationMeta(pagination, total)
	response.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSON(w, http.StatusOK, response)
}

// Grant handles POST /api/v1/access-entries.
//
//	@Summary		Grant permission
//	@Description	Grant a permission to a user, globally or scoped to one object
//	@Tags			access-entries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.AccessEntryCreateRequest	true	"Access entry request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/access-entries [post]
func (r *AccessEntriesRouter) Grant(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.AccessEntryCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	params, err := grantParams(body.Data.Attributes)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	entry, err := r.client.Access.Grant(ctx, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.AccessEntryResource(entry)))
}

// ListPermissions handles GET /api/v1/access-entries/permissions.
//
//	@Summary		List permissions
//	@Description	Get the grantable permission catalog
//	@Tags			access-entries
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	jsonapi.Document
//	@Failure		403	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/access-entries/permissions [get]
func (r *AccessEntriesRouter) ListPermissions(w http.ResponseWriter, req *http.Request) {
	resources := r.serializer.PermissionResources(access.AllPermissions())
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(resources))
}

// Get handles GET /api/v1/access-entries/{id}.
//
//	@Summary		Get access entry
//	@Description	Get an access entry by ID
//	@Tags			access-entries
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Access entry ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/access-entries/{id} [get]
func (r *AccessEntriesRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	entry, err := r.client.Access.Get(ctx, storage.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.AccessEntryResource(entry)))
}

// Revoke handles DELETE /api/v1/access-entries/{id}.
//
//	@Summary		Revoke permission
//	@Description	Delete an access entry
//	@Tags			access-entries
//	@Accept			json
//	@Produce		json
//	@Param			id	path	int	true	"Access entry ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/access-entries/{id} [delete]
func (r *AccessEntriesRouter) Revoke(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Access.Revoke(ctx, id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// grantParams converts access entry attributes to service params, validating
// the permission and optional object scope.
func grantParams(attrs dto.AccessEntryCreateAttributes) (service.GrantParams, error) {
	permission, err := access.ParsePermission(attrs.Permission)
	if err != nil {
		return service.GrantParams{}, err
	}

	params := service.GrantParams{
		UserID:     attrs.UserID,
		Permission: permission,
	}
	if attrs.ObjectKind != "" {
		kind, err := access.ParseTargetKind(attrs.ObjectKind)
		if err != nil {
			return service.GrantParams{}, err
		}
		params.ObjectKind = kind
		params.ObjectID = attrs.ObjectID
	}
	return params, nil
}

// entryFilters builds query options from the filter parameters.
func entryFilters(req *http.Request) ([]storage.Option, error) {
	var filters []storage.Option
	query := req.URL.Query()

	if value := query.Get("user_id"); value != "" {
		userID, err := idQuery(value, "user_id")
		if err != nil {
			return nil, err
		}
		filters = append(filters, access.WithUserID(userID))
	}

	if value := query.Get("permission"); value != "" {
		permission, err := access.ParsePermission(value)
		if err != nil {
			return nil, err
		}
		filters = append(filters, access.WithPermission(permission))
	}

	kindValue := query.Get("object_kind")
	idValue := query.Get("object_id")
	if (kindValue == "") != (idValue == "") {
		return nil, fmt.Errorf("%w: object_kind and object_id must be given together", domain.ErrValidation)
	}
	if kindValue != "" {
		kind, err := access.ParseTargetKind(kindValue)
		if err != nil {
			return nil, err
		}
		objectID, err := idQuery(idValue, "object_id")
		if err != nil {
			return nil, err
		}
		filters = append(filters, access.WithObject(kind, objectID))
	}

	return filters, nil
}
