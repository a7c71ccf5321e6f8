package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
	"github.com/pagekeep/doclink/infrastructure/api/middleware"
	"github.com/pagekeep/doclink/infrastructure/api/v1/dto"
)

// InstancesRouter handles workflow instance API endpoints. Instances are
// reached by their own ID here; the per-document listing lives under
// /documents/{id}/workflow-instances.
type InstancesRouter struct {
	client     *doclink.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewInstancesRouter creates a new InstancesRouter.
func NewInstancesRouter(client *doclink.Client) *InstancesRouter {
	return &InstancesRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for workflow instance endpoints. Access is
// gated on the document the instance runs for, not on the workflow.
func (r *InstancesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	view := middleware.RequireAccess(r.client.Access, access.PermissionDocumentView, r.documentResource, r.logger)
	transit := middleware.RequireAccess(r.client.Access, access.PermissionWorkflowTransition, r.documentResource, r.logger)

	router.With(view).Get("/{id}", r.Get)
	router.With(view).Get("/{id}/log", r.Log)
	router.With(transit).Post("/{id}/transitions", r.ExecuteTransition)

	return router
}

// Get handles GET /api/v1/workflow-instances/{id}.
//
//	@Summary		Get workflow instance
//	@Description	Get an instance with its computed current state
//	@Tags			workflow-instances
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Instance ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflow-instances/{id} [get]
func (r *InstancesRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	instance, err := r.client.Workflows.Instance(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	status, err := r.client.Workflows.Status(ctx, instance)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resource := r.serializer.InstanceStatusResource(status.Instance(), status.State(), status.EnteredAt())
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(resource))
}

// Log handles GET /api/v1/workflow-instances/{id}/log.
//
//	@Summary		Get instance log
//	@Description	Get an instance's transition history, oldest first
//	@Tags			workflow-instances
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Instance ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflow-instances/{id}/log [get]
func (r *InstancesRouter) Log(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	entries, err := r.client.Workflows.LogEntries(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.LogEntryResources(entries)))
}

// ExecuteTransition handles POST /api/v1/workflow-instances/{id}/transitions.
//
//	@Summary		Execute transition
//	@Description	Move an instance along a transition leaving its current state
//	@Tags			workflow-instances
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Instance ID"
//	@Param			body	body		dto.TransitionExecuteRequest	true	"Transition execution request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflow-instances/{id}/transitions [post]
func (r *InstancesRouter) ExecuteTransition(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetPrincipal(ctx)

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.TransitionExecuteRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	entry, err := r.client.Workflows.ExecuteTransition(ctx, actor, id, body.Data.Attributes.TransitionID, body.Data.Attributes.Comment)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.LogEntryResource(entry)))
}

// documentResource resolves the document an instance runs for, so access
// checks apply to the document rather than the instance.
func (r *InstancesRouter) documentResource(req *http.Request) (access.Resource, error) {
	id, err := idParam(req, "id")
	if err != nil {
		return access.Resource{}, err
	}

	instance, err := r.client.Workflows.Instance(req.Context(), id)
	if err != nil {
		return access.Resource{}, err
	}
	return access.NewResource(access.TargetDocument, instance.DocumentID()), nil
}
