package v1

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-chi/chi/v5"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/event"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
	"github.com/pagekeep/doclink/infrastructure/api/middleware"
	"github.com/pagekeep/doclink/internal/domain"
)

// EventsRouter handles audit trail API endpoints.
type EventsRouter struct {
	client     *doclink.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewEventsRouter creates a new EventsRouter.
func NewEventsRouter(client *doclink.Client) *EventsRouter {
	return &EventsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for event endpoints.
func (r *EventsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	view := middleware.RequireAccess(r.client.Access, access.PermissionEventView, middleware.GlobalResource, r.logger)

	router.Get("/", r.List)
	router.With(view).Get("/types", r.ListTypes)

	return router
}

// List handles GET /api/v1/events.
//
//	@Summary		List events
//	@Description	Get the audit trail, newest first, filtered to targets the caller may view events for
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			event_type	query	string	false	"Filter by event type name"
//	@Param			actor_id	query	int		false	"Filter by acting user ID"
//	@Param			target_kind	query	string	false	"Filter by target kind, with target_id"
//	@Param			target_id	query	int		false	"Filter by target ID, with target_kind"
//	@Param			page		query	int		false	"Page number (default: 1)"
//	@Param			page_size	query	int		false	"Results per page (default: 20, max: 100)"
//	@Success		200	{object}	jsonapi.Document
//	@Failure		400	{object}	jsonapi.Document
//	@Failure		401	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/events [get]
func (r *EventsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	viewer := middleware.GetPrincipal(ctx)
	pagination := ParsePagination(req)

	filters, err := eventFilters(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Events.Count(ctx, filters...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	options := append(filters, event.ByDatetimeDesc())
	options = append(options, pagination.Options()...)
	records, err := r.client.Events.Find(ctx, options...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	visible, err := r.authorizedRecords(ctx, viewer, records)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	names, err := r.eventTypeNames(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resources := make([]*jsonapi.Resource, len(visible))
	for i, record := range visible {
		resources[i] = r.serializer.EventRecordResource(record, names[record.StoredTypeID()])
	}

	response := jsonapi.NewListResponse(resources)
	response.Meta = PaginationMeta(pagination, total)
	response.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSON(w, http.StatusOK, response)
}

// ListTypes handles GET /api/v1/events/types.
//
//	@Summary		List event types
//	@Description	Get the registered event type catalog
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	jsonapi.Document
//	@Failure		401	{object}	jsonapi.Document
//	@Failure		403	{object}	jsonapi.Document
//	@Security		APIKeyAuth
//	@Router			/events/types [get]
func (r *EventsRouter) ListTypes(w http.ResponseWriter, req *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.EventTypeResources(event.AllTypes())))
}

// authorizedRecords filters records to those whose target the viewer holds
// event view permission on, kind by kind, preserving order.
func (r *EventsRouter) authorizedRecords(
	ctx context.Context,
	viewer access.User,
	records []event.Record,
) ([]event.Record, error) {
	byKind := make(map[access.TargetKind][]int64)
	for _, record := range records {
		byKind[record.TargetKind()] = append(byKind[record.TargetKind()], record.TargetID())
	}

	allowed := make(map[access.TargetKind]mapset.Set[int64], len(byKind))
	for kind, ids := range byKind {
		set, err := r.client.Access.FilterAuthorized(ctx, viewer, access.PermissionEventView, kind, ids)
		if err != nil {
			return nil, err
		}
		allowed[kind] = set
	}

	visible := make([]event.Record, 0, len(records))
	for _, record := range records {
		if set, ok := allowed[record.TargetKind()]; ok && set.Contains(record.TargetID()) {
			visible = append(visible, record)
		}
	}
	return visible, nil
}

// eventTypeNames maps stored event type IDs to type names.
func (r *EventsRouter) eventTypeNames(ctx context.Context) (map[int64]event.Type, error) {
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

// eventFilters builds query options from the filter parameters.
func eventFilters(req *http.Request) ([]storage.Option, error) {
	var filters []storage.Option
	query := req.URL.Query()

	if value := query.Get("event_type"); value != "" {
		t, err := event.ParseType(value)
		if err != nil {
			return nil, err
		}
		filters = append(filters, event.WithTypeName(t))
	}

	if value := query.Get("actor_id"); value != "" {
		actorID, err := idQuery(value, "actor_id")
		if err != nil {
			return nil, err
		}
		filters = append(filters, event.WithActorID(actorID))
	}

	kindValue := query.Get("target_kind")
	idValue := query.Get("target_id")
	if (kindValue == "") != (idValue == "") {
		return nil, fmt.Errorf("%w: target_kind and target_id must be given together", domain.ErrValidation)
	}
	if kindValue != "" {
		kind, err := access.ParseTargetKind(kindValue)
		if err != nil {
			return nil, err
		}
		targetID, err := idQuery(idValue, "target_id")
		if err != nil {
			return nil, err
		}
		filters = append(filters, event.WithTarget(kind, targetID))
	}

	return filters, nil
}
