package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/application/service"
	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/linking"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
	"github.com/pagekeep/doclink/infrastructure/api/middleware"
	"github.com/pagekeep/doclink/infrastructure/api/v1/dto"
)

// SmartLinksRouter handles smart link API endpoints.
type SmartLinksRouter struct {
	client     *doclink.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewSmartLinksRouter creates a new SmartLinksRouter.
func NewSmartLinksRouter(client *doclink.Client) *SmartLinksRouter {
	return &SmartLinksRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for smart link endpoints. Condition and
// type assignment mutations are gated by edit permission on the owning
// link.
func (r *SmartLinksRouter) Routes() chi.Router {
	router := chi.NewRouter()

	object := middleware.ObjectResource(access.TargetSmartLink, "id")
	view := middleware.RequireAccess(r.client.Access, access.PermissionSmartLinkView, object, r.logger)
	edit := middleware.RequireAccess(r.client.Access, access.PermissionSmartLinkEdit, object, r.logger)
	remove := middleware.RequireAccess(r.client.Access, access.PermissionSmartLinkDelete, object, r.logger)
	create := middleware.RequireAccess(r.client.Access, access.PermissionSmartLinkCreate, middleware.GlobalResource, r.logger)

	router.Get("/", r.List)
	router.With(create).Post("/", r.Create)
	router.With(view).Get("/{id}", r.Get)
	router.With(edit).Put("/{id}", r.Update)
	router.With(remove).Delete("/{id}", r.Delete)
	router.With(view).Get("/{id}/document-types", r.ListTypes)
	router.With(edit).Post("/{id}/document-types", r.AssignType)
	router.With(edit).Delete("/{id}/document-types/{type_id}", r.RemoveType)
	router.With(view).Get("/{id}/conditions", r.ListConditions)
	router.With(edit).Post("/{id}/conditions", r.AddCondition)
	router.With(view).Get("/{id}/conditions/{condition_id}", r.GetCondition)
	router.With(edit).Put("/{id}/conditions/{condition_id}", r.UpdateCondition)
	router.With(edit).Delete("/{id}/conditions/{condition_id}", r.DeleteCondition)

	return router
}

// List handles GET /api/v1/smart-links.
//
//	@Summary		List smart links
//	@Description	Get smart links visible to the caller
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			page		query	int		false	"Page number (default: 1)"
//	@Param			page_size	query	int		false	"Results per page (default: 20, max: 100)"
//	@Param			label		query	string	false	"Filter by label substring"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		401	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links [get]
func (r *SmartLinksRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	viewer := middleware.GetPrincipal(ctx)
	pagination := ParsePagination(req)

	var options []storage.Option
	if label := req.URL.Query().Get("label"); label != "" {
		options = append(options, linking.WithLabelContains(label))
	}

	total, err := r.client.SmartLinks.Count(ctx, options...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	links, err := r.client.SmartLinks.Find(ctx, append(options, pagination.Options()...)...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	ids := make([]int64, len(links))
	for i, link := range links {
		ids[i] = link.ID()
	}
	allowed, err := r.client.Access.FilterAuthorized(ctx, viewer, access.PermissionSmartLinkView, access.TargetSmartLink, ids)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	visible := make([]linking.SmartLink, 0, len(links))
	for _, link := range links {
		if allowed.Contains(link.ID()) {
			visible = append(visible, link)
		}
	}

	response := jsonapi.NewListResponse(r.serializer.SmartLinkResources(visible))
	response.Meta = PaginationMeta(pagination, total)
	response.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSON(w, http.StatusOK, response)
}

// Create handles POST /api/v1/smart-links.
//
//	@Summary		Create smart link
//	@Description	Create a smart link; conditions and type assignments are added separately
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.SmartLinkCreateRequest	true	"Smart link request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links [post]
func (r *SmartLinksRouter) Create(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.SmartLinkCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	link, err := r.client.SmartLinks.Create(ctx, middleware.GetPrincipal(ctx), service.SmartLinkCreateParams{
		Label:        body.Data.Attributes.Label,
		DynamicLabel: body.Data.Attributes.DynamicLabel,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.SmartLinkResource(link)))
}

// Get handles GET /api/v1/smart-links/{id}.
//
//	@Summary		Get smart link
//	@Description	Get a smart link by ID
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Smart link ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links/{id} [get]
func (r *SmartLinksRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	link, err := r.client.SmartLinks.Get(ctx, storage.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.SmartLinkResource(link)))
}

// Update handles PUT /api/v1/smart-links/{id}.
//
//	@Summary		Update smart link
//	@Description	Update a smart link's label, dynamic label, and enabled flag
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Smart link ID"
//	@Param			body	body		dto.SmartLinkUpdateRequest	true	"Smart link request"
//	@Success		200		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links/{id} [put]
func (r *SmartLinksRouter) Update(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.SmartLinkUpdateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	link, err := r.client.SmartLinks.Update(ctx, middleware.GetPrincipal(ctx), id, service.SmartLinkUpdateParams{
		Label:        body.Data.Attributes.Label,
		DynamicLabel: body.Data.Attributes.DynamicLabel,
		Enabled:      body.Data.Attributes.Enabled,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.SmartLinkResource(link)))
}

// Delete handles DELETE /api/v1/smart-links/{id}.
//
//	@Summary		Delete smart link
//	@Description	Delete a smart link and its conditions
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			id	path	int	true	"Smart link ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links/{id} [delete]
func (r *SmartLinksRouter) Delete(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.SmartLinks.Delete(ctx, middleware.GetPrincipal(ctx), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTypes handles GET /api/v1/smart-links/{id}/document-types.
//
//	@Summary		List assigned document types
//	@Description	Get the document types a smart link applies to
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Smart link ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links/{id}/document-types [get]
func (r *SmartLinksRouter) ListTypes(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	typeIDs, err := r.client.SmartLinks.AssignedTypeIDs(ctx, id)
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

// AssignType handles POST /api/v1/smart-links/{id}/document-types.
//
//	@Summary		Assign document type
//	@Description	Make a smart link apply to a document type
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int							true	"Smart link ID"
//	@Param			body	body	dto.TypeAssignmentRequest	true	"Type assignment request"
//	@Success		204
//	@Failure		400	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links/{id}/document-types [post]
func (r *SmartLinksRouter) AssignType(w http.ResponseWriter, req *http.Request) {
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

	if err := r.client.SmartLinks.AssignType(ctx, middleware.GetPrincipal(ctx), id, body.Data.Attributes.DocumentTypeID); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveType handles DELETE /api/v1/smart-links/{id}/document-types/{type_id}.
//
//	@Summary		Remove document type
//	@Description	Stop a smart link from applying to a document type
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int	true	"Smart link ID"
//	@Param			type_id	path	int	true	"Document type ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links/{id}/document-types/{type_id} [delete]
func (r *SmartLinksRouter) RemoveType(w http.ResponseWriter, req *http.Request) {
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

	if err := r.client.SmartLinks.RemoveType(ctx, middleware.GetPrincipal(ctx), id, typeID); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListConditions handles GET /api/v1/smart-links/{id}/conditions.
//
//	@Summary		List conditions
//	@Description	Get a smart link's conditions in evaluation order
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Smart link ID"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links/{id}/conditions [get]
func (r *SmartLinksRouter) ListConditions(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	conditions, err := r.client.SmartLinks.ConditionsFor(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.ConditionResources(conditions)))
}

// AddCondition handles POST /api/v1/smart-links/{id}/conditions.
//
//	@Summary		Add condition
//	@Description	Append a condition to a smart link; new conditions evaluate last
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Smart link ID"
//	@Param			body	body		dto.ConditionRequest	true	"Condition request"
//	@Success		201		{object}	jsonapi.Document
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links/{id}/conditions [post]
func (r *SmartLinksRouter) AddCondition(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.ConditionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	params, err := conditionParams(body.Data.Attributes)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	condition, err := r.client.SmartLinks.AddCondition(ctx, middleware.GetPrincipal(ctx), id, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.ConditionResource(condition)))
}

// GetCondition handles GET /api/v1/smart-links/{id}/conditions/{condition_id}.
//
//	@Summary		Get condition
//	@Description	Get one condition of a smart link
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			id				path		int	true	"Smart link ID"
//	@Param			condition_id	path		int	true	"Condition ID"
//	@Success		200				{object}	jsonapi.Document
//	@Failure		404				{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links/{id}/conditions/{condition_id} [get]
func (r *SmartLinksRouter) GetCondition(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	conditionID, err := idParam(req, "condition_id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	condition, err := r.client.SmartLinks.Condition(ctx, id, conditionID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.ConditionResource(condition)))
}

// UpdateCondition handles PUT /api/v1/smart-links/{id}/conditions/{condition_id}.
//
//	@Summary		Update condition
//	@Description	Replace a condition's comparison
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			id				path		int						true	"Smart link ID"
//	@Param			condition_id	path		int						true	"Condition ID"
//	@Param			body			body		dto.ConditionRequest	true	"Condition request"
//	@Success		200				{object}	jsonapi.Document
//	@Failure		400				{object}	jsonapi.Document
//	@Failure		404				{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links/{id}/conditions/{condition_id} [put]
func (r *SmartLinksRouter) UpdateCondition(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	conditionID, err := idParam(req, "condition_id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.ConditionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, invalidBody(err), r.logger)
		return
	}

	params, err := conditionParams(body.Data.Attributes)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	condition, err := r.client.SmartLinks.UpdateCondition(ctx, middleware.GetPrincipal(ctx), id, conditionID, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.ConditionResource(condition)))
}

// DeleteCondition handles DELETE /api/v1/smart-links/{id}/conditions/{condition_id}.
//
//	@Summary		Delete condition
//	@Description	Remove a condition from a smart link
//	@Tags			smart-links
//	@Accept			json
//	@Produce		json
//	@Param			id				path	int	true	"Smart link ID"
//	@Param			condition_id	path	int	true	"Condition ID"
//	@Success		204
//	@Failure		404	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/smart-links/{id}/conditions/{condition_id} [delete]
func (r *SmartLinksRouter) DeleteCondition(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := idParam(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	conditionID, err := idParam(req, "condition_id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.SmartLinks.DeleteCondition(ctx, middleware.GetPrincipal(ctx), id, conditionID); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// documentTypes loads document types by ID, preserving input order.
func (r *SmartLinksRouter) documentTypes(ctx context.Context, typeIDs []int64) ([]document.Type, error) {
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

// conditionParams converts condition attributes to service params,
// validating the enumerated fields.
func conditionParams(attrs dto.ConditionAttributes) (service.ConditionParams, error) {
	inclusion, err := linking.ParseInclusion(attrs.Inclusion)
	if err != nil {
		return service.ConditionParams{}, err
	}
	field, err := linking.ParseFieldRef(attrs.TargetField)
	if err != nil {
		return service.ConditionParams{}, err
	}
	operator, err := linking.ParseOperator(attrs.Operator)
	if err != nil {
		return service.ConditionParams{}, err
	}

	kind := attrs.OperandKind
	if kind == "" {
		kind = string(linking.OperandLiteral)
	}
	operand, err := linking.ParseOperand(kind, attrs.OperandValue)
	if err != nil {
		return service.ConditionParams{}, err
	}

	enabled := true
	if attrs.Enabled != nil {
		enabled = *attrs.Enabled
	}

	return service.ConditionParams{
		Inclusion:   inclusion,
		TargetField: field,
		Operator:    operator,
		Operand:     operand,
		Negated:     attrs.Negated,
		Enabled:     enabled,
	}, nil
}
