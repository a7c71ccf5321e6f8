package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/event"
	"github.com/pagekeep/doclink/domain/linking"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/internal/domain"
)

// LabelRenderer validates and renders dynamic label expressions.
type LabelRenderer interface {
	Validate(expression string) error
	Render(expression string, doc document.Document, metadata map[string]string) (string, error)
}

// SmartLinkCreateParams configures creating a smart link.
type SmartLinkCreateParams struct {
	Label        string
	DynamicLabel string
}

// SmartLinkUpdateParams configures updating a smart link.
type SmartLinkUpdateParams struct {
	Label        string
	DynamicLabel string
	Enabled      bool
}

// ConditionParams configures creating or updating a smart link condition.
type ConditionParams struct {
	Inclusion   linking.Inclusion
	TargetField linking.FieldRef
	Operator    linking.Operator
	Operand     linking.Operand
	Negated     bool
	Enabled     bool
}

// SmartLink manages smart link definitions: the links themselves, their
// ordered conditions, and their document type assignments. Resolution
// lives in the Resolver service.
// Embeds Collection for Find/Get.
type SmartLink struct {
	storage.Collection[linking.SmartLink]
	links      linking.Store
	conditions linking.ConditionStore
	renderer   LabelRenderer
	events     *Event
	logger     *slog.Logger
}

// NewSmartLink creates a new SmartLink service.
func NewSmartLink(
	links linking.Store,
	conditions linking.ConditionStore,
	renderer LabelRenderer,
	events *Event,
	logger *slog.Logger,
) *SmartLink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SmartLink{
		Collection: storage.NewCollection[linking.SmartLink](links),
		links:      links,
		conditions: conditions,
		renderer:   renderer,
		events:     events,
		logger:     logger,
	}
}

// Create adds an enabled smart link. A non-empty dynamic label must be a
// valid expression producing a string.
func (s *SmartLink) Create(ctx context.Context, actor access.User, params SmartLinkCreateParams) (linking.SmartLink, error) {
	if params.DynamicLabel != "" {
		if err := s.renderer.Validate(params.DynamicLabel); err != nil {
			return linking.SmartLink{}, err
		}
	}

	link, err := linking.NewSmartLink(params.Label, params.DynamicLabel)
	if err != nil {
		return linking.SmartLink{}, err
	}

	saved, err := s.links.Save(ctx, link)
	if err != nil {
		return linking.SmartLink{}, fmt.Errorf("save smart link: %w", err)
	}
	s.commitLinkEvent(ctx, event.TypeSmartLinkCreated, actor, saved.ID())

	s.logger.Info("smart link created",
		slog.Int64("smart_link_id", saved.ID()),
		slog.String("label", saved.Label()),
	)

	return saved, nil
}

// Update replaces a smart link's fields.
func (s *SmartLink) Update(ctx context.Context, actor access.User, id int64, params SmartLinkUpdateParams) (linking.SmartLink, error) {
	link, err := s.links.Get(ctx, id)
	if err != nil {
		return linking.SmartLink{}, fmt.Errorf("get smart link: %w", err)
	}

	if params.DynamicLabel != "" {
		if err := s.renderer.Validate(params.DynamicLabel); err != nil {
			return linking.SmartLink{}, err
		}
	}

	updated, err := link.Update(params.Label, params.DynamicLabel, params.Enabled)
	if err != nil {
		return linking.SmartLink{}, err
	}

	saved, err := s.links.Save(ctx, updated)
	if err != nil {
		return linking.SmartLink{}, fmt.Errorf("save smart link: %w", err)
	}
	s.commitLinkEvent(ctx, event.TypeSmartLinkEdited, actor, saved.ID())

	return saved, nil
}

// Delete removes a smart link together with its conditions and type
// assignments.
func (s *SmartLink) Delete(ctx context.Context, actor access.User, id int64) error {
	if _, err := s.links.Get(ctx, id); err != nil {
		return fmt.Errorf("get smart link: %w", err)
	}

	if err := s.links.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete smart link: %w", err)
	}
	s.commitLinkEvent(ctx, event.TypeSmartLinkDeleted, actor, id)

	s.logger.Info("smart link deleted", slog.Int64("smart_link_id", id))
	return nil
}

// AssignType enables the link for a document type. Assigning twice is a
// no-op.
func (s *SmartLink) AssignType(ctx context.Context, actor access.User, linkID, typeID int64) error {
	if _, err := s.links.Get(ctx, linkID); err != nil {
		return fmt.Errorf("get smart link: %w", err)
	}
	if err := s.links.AssignType(ctx, linkID, typeID); err != nil {
		return fmt.Errorf("assign document type: %w", err)
	}
	s.commitLinkEvent(ctx, event.TypeSmartLinkEdited, actor, linkID)
	return nil
}

// RemoveType disables the link for a document type. Removing an unassigned
// type is a no-op.
func (s *SmartLink) RemoveType(ctx context.Context, actor access.User, linkID, typeID int64) error {
	if _, err := s.links.Get(ctx, linkID); err != nil {
		return fmt.Errorf("get smart link: %w", err)
	}
	if err := s.links.RemoveType(ctx, linkID, typeID); err != nil {
		return fmt.Errorf("remove document type: %w", err)
	}
	s.commitLinkEvent(ctx, event.TypeSmartLinkEdited, actor, linkID)
	return nil
}

// AssignedTypeIDs returns the document types the link is enabled for.
func (s *SmartLink) AssignedTypeIDs(ctx context.Context, linkID int64) ([]int64, error) {
	ids, err := s.links.TypeIDs(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("find assigned types: %w", err)
	}
	return ids, nil
}

// --- conditions ---

// ConditionsFor returns a link's conditions in evaluation order.
func (s *SmartLink) ConditionsFor(ctx context.Context, linkID int64) ([]linking.Condition, error) {
	if _, err := s.links.Get(ctx, linkID); err != nil {
		return nil, fmt.Errorf("get smart link: %w", err)
	}
	conditions, err := s.conditions.Find(ctx,
		linking.WithSmartLinkID(linkID),
		linking.InCreationOrder(),
	)
	if err != nil {
		return nil, fmt.Errorf("find conditions: %w", err)
	}
	return conditions, nil
}

// Condition returns one condition of a link.
func (s *SmartLink) Condition(ctx context.Context, linkID, conditionID int64) (linking.Condition, error) {
	condition, err := s.conditions.Get(ctx, conditionID)
	if err != nil {
		return linking.Condition{}, fmt.Errorf("get condition: %w", err)
	}
	if condition.SmartLinkID() != linkID {
		return linking.Condition{}, fmt.Errorf(
			"condition %d: %w", conditionID, domain.ErrNotFound,
		)
	}
	return condition, nil
}

// AddCondition appends a condition to a link. New conditions evaluate last.
func (s *SmartLink) AddCondition(ctx context.Context, actor access.User, linkID int64, params ConditionParams) (linking.Condition, error) {
	if _, err := s.links.Get(ctx, linkID); err != nil {
		return linking.Condition{}, fmt.Errorf("get smart link: %w", err)
	}

	condition, err := linking.NewCondition(linkID, params.TargetField, params.Operator, params.Operand)
	if err != nil {
		return linking.Condition{}, err
	}
	inclusion, err := linking.ParseInclusion(string(params.Inclusion))
	if err != nil {
		return linking.Condition{}, err
	}
	condition = condition.
		WithInclusion(inclusion).
		WithNegated(params.Negated).
		WithEnabled(params.Enabled)

	saved, err := s.conditions.Save(ctx, condition)
	if err != nil {
		return linking.Condition{}, fmt.Errorf("save condition: %w", err)
	}
	s.commitLinkEvent(ctx, event.TypeSmartLinkEdited, actor, linkID)

	s.logger.Info("smart link condition added",
		slog.Int64("smart_link_id", linkID),
		slog.Int64("condition_id", saved.ID()),
		slog.String("condition", saved.String()),
	)

	return saved, nil
}

// UpdateCondition replaces a condition's fields.
func (s *SmartLink) UpdateCondition(ctx context.Context, actor access.User, linkID, conditionID int64, params ConditionParams) (linking.Condition, error) {
	condition, err := s.Condition(ctx, linkID, conditionID)
	if err != nil {
		return linking.Condition{}, err
	}

	updated, err := condition.Update(
		params.Inclusion, params.TargetField, params.Operator, params.Operand,
		params.Negated, params.Enabled,
	)
	if err != nil {
		return linking.Condition{}, err
	}

	saved, err := s.conditions.Save(ctx, updated)
	if err != nil {
		return linking.Condition{}, fmt.Errorf("save condition: %w", err)
	}
	s.commitLinkEvent(ctx, event.TypeSmartLinkEdited, actor, linkID)

	return saved, nil
}

// DeleteCondition removes a condition from a link.
func (s *SmartLink) DeleteCondition(ctx context.Context, actor access.User, linkID, conditionID int64) error {
	if _, err := s.Condition(ctx, linkID, conditionID); err != nil {
		return err
	}

	if err := s.conditions.Delete(ctx, conditionID); err != nil {
		return fmt.Errorf("delete condition: %w", err)
	}
	s.commitLinkEvent(ctx, event.TypeSmartLinkEdited, actor, linkID)

	return nil
}

func (s *SmartLink) commitLinkEvent(ctx context.Context, t event.Type, actor access.User, linkID int64) {
	if _, err := s.events.Commit(ctx, t, actor,
		access.NewResource(access.TargetSmartLink, linkID),
	); err != nil {
		s.logger.Warn("failed to commit event",
			slog.String("type", t.String()),
			slog.Int64("smart_link_id", linkID),
			slog.String("error", err.Error()),
		)
	}
}
