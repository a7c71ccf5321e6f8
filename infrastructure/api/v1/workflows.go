package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/application/service"
	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/event"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/domain/workflow"
	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
	"github.com/pagekeep/doclink/infrastructure/api/middleware"
	"github.com/pagekeep/doclink/infrastructure/api/v1/dto"
	"github.com/pagekeep/doclink/internal/domain"
)

// WorkflowsRouter handles workflow definition API endpoints.
type WorkflowsRouter struct {
	client     *doclink.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewWorkflowsRouter creates a new WorkflowsRouter.
func NewWorkflowsRouter(client *doclink.Client) *WorkflowsRouter {
	return &WorkflowsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for workflow endpoints. State, transition,
// and trigger mutations are gated by edit permission on the owning
// workflow.
func (r *WorkflowsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	object := middleware.ObjectResource(access.TargetWorkflow, "id")
	view := middleware.RequireAccess(r.client.Access, access.PermissionWorkflowView, object, r.logger)
	edit := middleware.RequireAccess(r.client.Access, access.PermissionWorkflowEdit, object, r.logger)
	remove := middleware.RequireAccess(r.client.Access, access.PermissionWorkflowDelete, object, r.logger)
	create := middleware.RequireAccess(r.client.Access, access.PermissionWorkflowCreate, middleware.GlobalResource, r.logger)

	router.Get("/", r.List)
	router.With(create).Post("/", r.Create)
	router.With(view).Get("/{id}", r.Get)
	router.With(edit).Put("/{id}", r.Rename)
	router.With(remove).Delete("/{id}", r.Delete)
	router.With(view).Get("/{id}/document-types", r.ListTypes)
	router.With(edit).Post("/{id}/document-types", r.AssignType)
	router.With(edit).Delete("/{id}/document-types/{type_id}", r.RemoveType)
	router.With(view).Get("/{id}/states", r.ListStates)
	router.With(edit).Post("/{id}/states", r.AddState)
	router.With(edit).Put("/{id}/states/{state_id}", r.UpdateState)
	router.With(edit).Delete("/{id}/states/{state_id}", r.DeleteState)
	router.With(view).Get("/{id}/transitions", r.ListTransitions)
	router.With(edit).Post("/{id}/transitions", r.AddTransition)
	router.With(edit).Put("/{id}/transitions/{transition_id}", r.UpdateTransition)
	router.With(edit).Delete("/{id}/transitions/{transition_id}", r.DeleteTransition)
	router.With(view).Get("/{id}/transitions/{transition_id}/trigger-events", r.ListTriggerEvents)
	router.With(edit).Put("/{id}/transitions/{transition_id}/trigger-events", r.SetTriggerEvents)

	return router
}

// List handles GET /api/v1/workflows.
//
//	@Summary		List workflows
//	@Description	Get workflows visible to the caller
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			page		query	int	false	"Page number (default: 1)"
//	@Param			page_size	query	int	false	"Results per page (default: 20, max: 100)"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		401	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows [get]
func (r *WorkflowsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	viewer := middleware.GetPrincipal(ctx)
	pagination := ParsePagination(req)

	total, err := r.client.Workflows.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	workflows, err := r.client.Workflows.Find(ctx, pagination.Options()...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	ids := make([]int64, len(workflows))
	for i, wf := range workflows {
		ids[i] = wf.ID()
	}
	allowed, err := r.client.Access.FilterAuthorized(ctx, viewer, access.PermissionWorkflowView, access.TargetWorkflow, ids)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	visible := make([]workflow.Workflow, 0, len(workflows))
	for _, wf := range workflows {
		if allowed.Contains(wf.ID()) {
			visible = append(visible, wf)
		}
	}

	response := jsonapi.NewListResponse(r.serializer.WorkflowResources(visible))
	response.Meta = PaginationMeta(pagination, total)
	response.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSON(w, http.StatusOK, response)
}

// Create handles POST /api/v1/workflows.
//
//	@Summary		Create workflow
//	@Description	Create a workflow; states and transitions are added separately
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.WorkflowCreateRequest	true	"Workflow request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		409		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows [post]
func (r *WorkflowsRouter) Create(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.WorkflowCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	created, err := r.client.Workflows.Create(ctx, service.WorkflowCreateParams{
		Label:        body.Data.Attributes.Label,
		InternalName: body.Data.Attributes.InternalName,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.WorkflowResource(created)))
}

// Get handles GET /api/v1/workflows/{id}.
//
//	@Summary		Get workflow
//	@Description	Get a workflow by ID
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Workflow ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id} [get]
func (r *WorkflowsRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	wf, err := r.client.Workflows.Get(ctx, storage.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.WorkflowResource(wf)))
}

// Rename handles PUT /api/v1/workflows/{id}.
//
//	@Summary		Rename workflow
//	@Description	Change a workflow's label; the internal name is immutable
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Workflow ID"
//	@Param			body	body		dto.WorkflowUpdateRequest	true	"Workflow request"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id} [put]
func (r *WorkflowsRouter) Rename(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.WorkflowUpdateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	renamed, err := r.client.Workflows.Rename(ctx, id, body.Data.Attributes.Label)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.WorkflowResource(renamed)))
}

// Delete handles DELETE /api/v1/workflows/{id}.
//
//	@Summary		Delete workflow
//	@Description	Delete a workflow with its states, transitions, and instances
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id	path	int	true	"Workflow ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id} [delete]
func (r *WorkflowsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Workflows.Delete(ctx, id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTypes handles GET /api/v1/workflows/{id}/document-types.
//
//	@Summary		List assigned document types
//	@Description	Get the document types a workflow launches for
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Workflow ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/document-types [get]
func (r *WorkflowsRouter) ListTypes(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	typeIDs, err := r.client.Workflows.AssignedTypeIDs(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	types, err := r.documentTypes(ctx, typeIDs)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.DocumentTypeResources(types)))
}

// AssignType handles POST /api/v1/workflows/{id}/document-types.
//
//	@Summary		Assign document type
//	@Description	Make a workflow launch for documents of a type
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int							true	"Workflow ID"
//	@Param			body	body	dto.TypeAssignmentRequest	true	"Type assignment request"
//	@Success		204
//	@Failure		400	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/document-types [post]
func (r *WorkflowsRouter) AssignType(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.TypeAssignmentRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	if err := r.client.Workflows.AssignType(ctx, id, body.Data.Attributes.DocumentTypeID); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveType handles DELETE /api/v1/workflows/{id}/document-types/{type_id}.
//
//	@Summary		Remove document type
//	@Description	Stop a workflow from launching for documents of a type
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int	true	"Workflow ID"
//	@Param			type_id	path	int	true	"Document type ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/document-types/{type_id} [delete]
func (r *WorkflowsRouter) RemoveType(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	typeID, err := idParam(req, "type_id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Workflows.RemoveType(ctx, id, typeID); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListStates handles GET /api/v1/workflows/{id}/states.
//
//	@Summary		List states
//	@Description	Get a workflow's states
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Workflow ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/states [get]
func (r *WorkflowsRouter) ListStates(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	states, err := r.client.Workflows.States(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.StateResources(states)))
}

// AddState handles POST /api/v1/workflows/{id}/states.
//
//	@Summary		Add state
//	@Description	Add a state to a workflow; marking it initial demotes the previous initial state
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Workflow ID"
//	@Param			body	body		dto.StateRequest	true	"State request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/states [post]
func (r *WorkflowsRouter) AddState(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.StateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	state, err := r.client.Workflows.AddState(ctx, id, service.StateParams{
		Label:      body.Data.Attributes.Label,
		Initial:    body.Data.Attributes.Initial,
		Completion: body.Data.Attributes.Completion,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.StateResource(state)))
}

// UpdateState handles PUT /api/v1/workflows/{id}/states/{state_id}.
//
//	@Summary		Update state
//	@Description	Update a state's label, initial flag, and completion percentage
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int					true	"Workflow ID"
//	@Param			state_id	path		int					true	"State ID"
//	@Param			body		body		dto.StateRequest	true	"State request"
//	@Success		200			{object}	jsonapi.Document
//	@Failure		400			{object}	jsonapi.Document
//	@Failure		404			{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/states/{state_id} [put]
func (r *WorkflowsRouter) UpdateState(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	state, err := r.workflowState(ctx, req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.StateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	updated, err := r.client.Workflows.UpdateState(ctx, state.ID(), service.StateParams{
		Label:      body.Data.Attributes.Label,
		Initial:    body.Data.Attributes.Initial,
		Completion: body.Data.Attributes.Completion,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.StateResource(updated)))
}

// DeleteState handles DELETE /api/v1/workflows/{id}/states/{state_id}.
//
//	@Summary		Delete state
//	@Description	Delete a state; fails while transitions still reference it
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id			path	int	true	"Workflow ID"
//	@Param			state_id	path	int	true	"State ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Failure		409	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/states/{state_id} [delete]
func (r *WorkflowsRouter) DeleteState(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	state, err := r.workflowState(ctx, req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Workflows.DeleteState(ctx, state.ID()); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTransitions handles GET /api/v1/workflows/{id}/transitions.
//
//	@Summary		List transitions
//	@Description	Get a workflow's transitions
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Workflow ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/transitions [get]
func (r *WorkflowsRouter) ListTransitions(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	transitions, err := r.client.Workflows.Transitions(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.TransitionResources(transitions)))
}

// AddTransition handles POST /api/v1/workflows/{id}/transitions.
//
//	@Summary		Add transition
//	@Description	Add a transition between two states of a workflow, optionally with a time trigger
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Workflow ID"
//	@Param			body	body		dto.TransitionRequest	true	"Transition request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/transitions [post]
func (r *WorkflowsRouter) AddTransition(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.TransitionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	params, err := transitionParams(body.Data.Attributes)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	transition, err := r.client.Workflows.AddTransition(ctx, id, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.TransitionResource(transition)))
}

// UpdateTransition handles PUT /api/v1/workflows/{id}/transitions/{transition_id}.
//
//	@Summary		Update transition
//	@Description	Update a transition's label, endpoint states, and time trigger
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id				path		int						true	"Workflow ID"
//	@Param			transition_id	path		int						true	"Transition ID"
//	@Param			body			body		dto.TransitionRequest	true	"Transition request"
//	@Success		200				{object}	jsonapi.Document
//	@Failure		400				{object}	jsonapi.Document
//	@Failure		404				{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/transitions/{transition_id} [put]
func (r *WorkflowsRouter) UpdateTransition(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	transition, err := r.workflowTransition(ctx, req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.TransitionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	params, err := transitionParams(body.Data.Attributes)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	updated, err := r.client.Workflows.UpdateTransition(ctx, transition.ID(), params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.TransitionResource(updated)))
}

// DeleteTransition handles DELETE /api/v1/workflows/{id}/transitions/{transition_id}.
//
//	@Summary		Delete transition
//	@Description	Delete a transition and its triggers
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id				path	int	true	"Workflow ID"
//	@Param			transition_id	path	int	true	"Transition ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/transitions/{transition_id} [delete]
func (r *WorkflowsRouter) DeleteTransition(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	transition, err := r.workflowTransition(ctx, req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Workflows.DeleteTransition(ctx, transition.ID()); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTriggerEvents handles GET /api/v1/workflows/{id}/transitions/{transition_id}/trigger-events.
//
//	@Summary		List trigger events
//	@Description	Get the event types that fire a transition automatically
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id				path		int	true	"Workflow ID"
//	@Param			transition_id	path		int	true	"Transition ID"
//	@Success		200				{object}	jsonapi.Document
//	@Failure		404				{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/transitions/{transition_id}/trigger-events [get]
func (r *WorkflowsRouter) ListTriggerEvents(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	transition, err := r.workflowTransition(ctx, req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resources, err := r.triggerEventResources(ctx, transition.ID())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(resources))
}

// SetTriggerEvents handles PUT /api/v1/workflows/{id}/transitions/{transition_id}/trigger-events.
//
//	@Summary		Set trigger events
//	@Description	Replace the full set of event types that fire a transition
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			id				path		int						true	"Workflow ID"
//	@Param			transition_id	path		int						true	"Transition ID"
//	@Param			body			body		dto.TriggerEventsRequest	true	"Trigger events request"
//	@Success		200				{object}	jsonapi.Document
//	@Failure		400				{object}	jsonapi.Document
//	@Failure		404				{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/workflows/{id}/transitions/{transition_id}/trigger-events [put]
func (r *WorkflowsRouter) SetTriggerEvents(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	transition, err := r.workflowTransition(ctx, req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.TriggerEventsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	types := make([]event.Type, len(body.Data.Attributes.EventTypes))
	for i, name := range body.Data.Attributes.EventTypes {
		types[i] = event.Type(name)
	}

	if err := r.client.Workflows.SetTriggerEvents(ctx, transition.ID(), types); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resources, err := r.triggerEventResources(ctx, transition.ID())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(resources))
}

// workflowState loads the state named in the URL and checks it belongs to
// the workflow named in the URL.
func (r *WorkflowsRouter) workflowState(ctx context.Context, req *http.Request) (workflow.State, error) {
	id, err := idParam(req, "id")
	if err != nil {
		return workflow.State{}, err
	}

	stateID, err := idParam(req, "state_id")
	if err != nil {
		return workflow.State{}, err
	}

	states, err := r.client.Workflows.States(ctx, id)
	if err != nil {
		return workflow.State{}, err
	}
	for _, st := range states {
		if st.ID() == stateID {
			return st, nil
		}
	}
	return workflow.State{}, fmt.Errorf("state %d of workflow %d: %w", stateID, id, domain.ErrNotFound)
}

// workflowTransition loads the transition named in the URL and checks it
// belongs to the workflow named in the URL.
func (r *WorkflowsRouter) workflowTransition(ctx context.Context, req *http.Request) (workflow.Transition, error) {
	id, err := idParam(req, "id")
	if err != nil {
		return workflow.Transition{}, err
	}

	transitionID, err := idParam(req, "transition_id")
	if err != nil {
		return workflow.Transition{}, err
	}

	transitions, err := r.client.Workflows.Transitions(ctx, id)
	if err != nil {
		return workflow.Transition{}, err
	}
	for _, t := range transitions {
		if t.ID() == transitionID {
			return t, nil
		}
	}
	return workflow.Transition{}, fmt.Errorf("transition %d of workflow %d: %w", transitionID, id, domain.ErrNotFound)
}

// triggerEventResources builds trigger resources with their type names
// resolved.
func (r *WorkflowsRouter) triggerEventResources(ctx context.Context, transitionID int64) ([]*jsonapi.Resource, error) {
	triggers, err := r.client.Workflows.TriggerEvents(ctx, transitionID)
	if err != nil {
		return nil, err
	}

	names, err := r.eventTypeNames(ctx)
	if err != nil {
		return nil, err
	}

	resources := make([]*jsonapi.Resource, len(triggers))
	for i, trigger := range triggers {
		resources[i] = r.serializer.TriggerEventResource(trigger, names[trigger.EventTypeID()])
	}
	return resources, nil
}

// eventTypeNames maps stored event type IDs to type names.
func (r *WorkflowsRouter) eventTypeNames(ctx context.Context) (map[int64]event.Type, error) {
	stored, err := r.client.Events.StoredTypes(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]event.Type, len(stored))
	for _, t := range stored {
		names[t.ID()] = t.Name()
	}
	return names, nil
}

// documentTypes loads document types by ID, preserving input order.
func (r *WorkflowsRouter) documentTypes(ctx context.Context, typeIDs []int64) ([]document.Type, error) {
	if len(typeIDs) == 0 {
		return nil, nil
	}

	found, err := r.client.Types.Find(ctx, storage.WithIDIn(typeIDs))
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]document.Type, len(found))
	for _, t := range found {
		byID[t.ID()] = t
	}
	types := make([]document.Type, 0, len(typeIDs))
	for _, id := range typeIDs {
		if t, ok := byID[id]; ok {
			types = append(types, t)
		}
	}
	return types, nil
}

// transitionParams converts transition attributes to service params,
// validating the time trigger unit.
func transitionParams(attrs dto.TransitionAttributes) (service.TransitionParams, error) {
	params := service.TransitionParams{
		Label:              attrs.Label,
		OriginStateID:      attrs.OriginStateID,
		DestinationStateID: attrs.DestinationStateID,
		TriggerPeriod:      attrs.TriggerPeriod,
	}
	if attrs.TriggerUnit != "" {
		unit, err := workflow.ParseTimeUnit(attrs.TriggerUnit)
		if err != nil {
			return service.TransitionParams{}, err
		}
		params.TriggerUnit = unit
	}
	return params, nil
}
