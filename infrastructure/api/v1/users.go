package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
	"github.com/pagekeep/doclink/infrastructure/api/middleware"
	"github.com/pagekeep/doclink/infrastructure/api/v1/dto"
)

// UsersRouter handles user management API endpoints. User permissions have
// no object scope, so every check here is global.
type UsersRouter struct {
	client     *doclink.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewUsersRouter creates a new UsersRouter.
func NewUsersRouter(client *doclink.Client) *UsersRouter {
	return &UsersRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for user endpoints.
func (r *UsersRouter) Routes() chi.Router {
	router := chi.NewRouter()

	authed := middleware.RequireAuthenticated(r.logger)
	view := middleware.RequireAccess(r.client.Access, access.PermissionUserView, middleware.GlobalResource, r.logger)
	edit := middleware.RequireAccess(r.client.Access, access.PermissionUserEdit, middleware.GlobalResource, r.logger)

	router.With(authed).Get("/me", r.Me)
	router.With(view).Get("/", r.List)
	router.With(edit).Post("/", r.Create)
	router.With(view).Get("/{id}", r.Get)
	router.With(edit).Put("/{id}", r.Update)
	router.With(edit).Delete("/{id}", r.Delete)

	return router
}

// Me handles GET /api/v1/users/me.
//
//	@Summary		Get current user
//	@Description	Get the authenticated principal
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	jsonapi.Document
//	@Failure		401	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/users/me [get]
func (r *UsersRouter) Me(w http.ResponseWriter, req *http.Request) {
	principal := middleware.GetPrincipal(req.Context())
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.UserResource(principal)))
}

// List handles GET /api/v1/users.
//
//	@Summary		List users
//	@Description	Get all users
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			page		query	int	false	"Page number (default: 1)"
//	@Param			page_size	query	int	false	"Results per page (default: 20, max: 100)"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		403	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/users [get]
func (r *UsersRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	pagination := ParsePagination(req)

	total, err := r.client.Users.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	users, err := r.client.Users.Find(ctx, pagination.Options()...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := jsonapi.NewListResponse(r.serializer.UserResources(users))
	response.Meta = PaginationMeta(pagination, total)
	response.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSON(w, http.StatusOK, response)
}

// Create handles POST /api/v1/users.
//
//	@Summary		Create user
//	@Description	Create an active non-superuser account
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.UserCreateRequest	true	"User request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		409		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/users [post]
func (r *UsersRouter) Create(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.UserCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	created, err := r.client.Users.Create(ctx, body.Data.Attributes.Username)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.UserResource(created)))
}

// Get handles GET /api/v1/users/{id}.
//
//	@Summary		Get user
//	@Description	Get a user by ID
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"User ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/users/{id} [get]
func (r *UsersRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	user, err := r.client.Users.Get(ctx, storage.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.UserResource(user)))
}

// Update handles PUT /api/v1/users/{id}.
//
//	@Summary		Update user
//	@Description	Change a user's active or superuser flag; omitted flags keep their value
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"User ID"
//	@Param			body	body		dto.UserUpdateRequest	true	"User request"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/users/{id} [put]
func (r *UsersRouter) Update(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.UserUpdateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	user, err := r.client.Users.Get(ctx, storage.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if active := body.Data.Attributes.IsActive; active != nil {
		user, err = r.client.Users.SetActive(ctx, id, *active)
		if err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
	}
	if superuser := body.Data.Attributes.IsSuperuser; superuser != nil {
		user, err = r.client.Users.SetSuperuser(ctx, id, *superuser)
		if err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.UserResource(user)))
}

// Delete handles DELETE /api/v1/users/{id}.
//
//	@Summary		Delete user
//	@Description	Delete a user and their access entries
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			id	path	int	true	"User ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/users/{id} [delete]
func (r *UsersRouter) Delete(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Users.Delete(ctx, id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
