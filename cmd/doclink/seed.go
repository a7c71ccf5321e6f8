package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/application/service"
	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/event"
	"github.com/pagekeep/doclink/domain/linking"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/domain/workflow"
	"github.com/pagekeep/doclink/internal/config"
	"github.com/pagekeep/doclink/internal/domain"
	"github.com/pagekeep/doclink/internal/log"
)

func seedCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load a YAML fixture into the database",
		Long: `Load a YAML fixture into the database.

Seeding is idempotent: entities that already exist (matched by username,
name, or label) are left untouched, so a fixture can be applied repeatedly.
References between sections are by label.

Fixture format:

  users:
    - username: maria
      superuser: false
      grants:
        - permission: document_view
        - permission: smart_link_edit
          object_kind: smart_link
          object: Related invoices

  document_types:
    - Invoice
    - Contract

  metadata_types:
    - name: department
      label: Department

  smart_links:
    - label: Related invoices
      dynamic_label: "'Invoices for ' + document.label"
      types: [Contract]
      conditions:
        - field: label
          operator: icontains
          operand: invoice
        - field: metadata.department
          operator: exact
          operand_field: metadata.department

  workflows:
    - label: Review
      internal_name: review
      types: [Invoice]
      states:
        - label: Draft
          initial: true
        - label: In review
        - label: Approved
          completion: 100
      transitions:
        - label: Submit
          from: Draft
          to: In review
          events: [document_edited]
        - label: Auto approve
          from: In review
          to: Approved
          trigger_period: 3
          trigger_unit: days

  documents:
    - label: Invoice 2026-001
      type: Invoice
      language: en
      metadata:
        department: finance
      content: |
        Payment due within 30 days.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(envFile, args[0])
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

// seedFile is the YAML fixture consumed by the seed command.
type seedFile struct {
	Users         []seedUser         `yaml:"users"`
	DocumentTypes []string           `yaml:"document_types"`
	MetadataTypes []seedMetadataType `yaml:"metadata_types"`
	SmartLinks    []seedSmartLink    `yaml:"smart_links"`
	Workflows     []seedWorkflow     `yaml:"workflows"`
	Documents     []seedDocument     `yaml:"documents"`
}

type seedUser struct {
	Username  string      `yaml:"username"`
	Superuser bool        `yaml:"superuser"`
	Grants    []seedGrant `yaml:"grants"`
}

type seedGrant struct {
	Permission string `yaml:"permission"`
	ObjectKind string `yaml:"object_kind"`
	Object     string `yaml:"object"`
}

type seedMetadataType struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
}

type seedSmartLink struct {
	Label        string          `yaml:"label"`
	DynamicLabel string          `yaml:"dynamic_label"`
	Types        []string        `yaml:"types"`
	Conditions   []seedCondition `yaml:"conditions"`
}

type seedCondition struct {
	Inclusion    string `yaml:"inclusion"`
	Field        string `yaml:"field"`
	Operator     string `yaml:"operator"`
	Operand      string `yaml:"operand"`
	OperandField string `yaml:"operand_field"`
	Negated      bool   `yaml:"negated"`
	Disabled     bool   `yaml:"disabled"`
}

type seedWorkflow struct {
	Label        string           `yaml:"label"`
	InternalName string           `yaml:"internal_name"`
	Types        []string         `yaml:"types"`
	States       []seedState      `yaml:"states"`
	Transitions  []seedTransition `yaml:"transitions"`
}

type seedState struct {
	Label      string `yaml:"label"`
	Initial    bool   `yaml:"initial"`
	Completion int    `yaml:"completion"`
}

type seedTransition struct {
	Label         string   `yaml:"label"`
	From          string   `yaml:"from"`
	To            string   `yaml:"to"`
	TriggerPeriod int      `yaml:"trigger_period"`
	TriggerUnit   string   `yaml:"trigger_unit"`
	Events        []string `yaml:"events"`
}

type seedDocument struct {
	Label       string            `yaml:"label"`
	Type        string            `yaml:"type"`
	Description string            `yaml:"description"`
	Language    string            `yaml:"language"`
	Metadata    map[string]string `yaml:"metadata"`
	Content     string            `yaml:"content"`
}

func runSeed(envFile, path string) error {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := cfg.EnsureVersionDir(); err != nil {
		return fmt.Errorf("create version directory: %w", err)
	}

	logger := log.NewLogger(cfg)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}

	var fixture seedFile
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("parse fixture: %w", err)
	}

	// The seed command never serves traffic, so the trigger scheduler
	// stays off.
	opts := clientOptions(cfg, logger)
	opts = append(opts, doclink.WithSchedulerConfig(cfg.Scheduler().WithEnabled(false)))

	client, err := doclink.New(opts...)
	if err != nil {
		return fmt.Errorf("create doclink client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close doclink client", slog.Any("error", err))
		}
	}()

	ctx := context.Background()

	// Seed as the bootstrap admin so created entities carry a real actor.
	admin, err := client.Users.ByUsername(ctx, cfg.AdminUsername())
	if err != nil {
		return fmt.Errorf("load admin user: %w", err)
	}

	s := &seeder{client: client, actor: admin, logger: logger}
	if err := s.apply(ctx, fixture); err != nil {
		return err
	}

	logger.Info("fixture applied", slog.String("path", path))
	return nil
}

// seeder applies a fixture through the client's services, acting as the
// bootstrap admin.
type seeder struct {
	client *doclink.Client
	actor  access.User
	logger *slog.Logger
}

// apply loads fixture sections in dependency order: users first, then the
// type catalogs, then links and workflows, and documents last so type and
// workflow assignments are in place when documents are created.
func (s *seeder) apply(ctx context.Context, fixture seedFile) error {
	if err := s.seedUsers(ctx, fixture.Users); err != nil {
		return err
	}
	if err := s.seedDocumentTypes(ctx, fixture.DocumentTypes); err != nil {
		return err
	}
	if err := s.seedMetadataTypes(ctx, fixture.MetadataTypes); err != nil {
		return err
	}
	if err := s.seedSmartLinks(ctx, fixture.SmartLinks); err != nil {
		return err
	}
	if err := s.seedWorkflows(ctx, fixture.Workflows); err != nil {
		return err
	}
	return s.seedDocuments(ctx, fixture.Documents)
}

func (s *seeder) seedUsers(ctx context.Context, users []seedUser) error {
	for _, entry := range users {
		user, err := s.client.Users.ByUsername(ctx, entry.Username)
		switch {
		case err == nil:
			s.logger.Debug("user exists", slog.String("username", entry.Username))
		case errors.Is(err, domain.ErrNotFound):
			user, err = s.client.Users.Create(ctx, entry.Username)
			if err != nil {
				return fmt.Errorf("create user %q: %w", entry.Username, err)
			}
			s.logger.Info("created user", slog.String("username", entry.Username))
		default:
			return fmt.Errorf("look up user %q: %w", entry.Username, err)
		}

		if entry.Superuser && !user.IsSuperuser() {
			if user, err = s.client.Users.SetSuperuser(ctx, user.ID(), true); err != nil {
				return fmt.Errorf("promote user %q: %w", entry.Username, err)
			}
		}

		for _, grant := range entry.Grants {
			if err := s.seedGrant(ctx, user, grant); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) seedGrant(ctx context.Context, user access.User, grant seedGrant) error {
	permission, err := access.ParsePermission(grant.Permission)
	if err != nil {
		return fmt.Errorf("grant for %q: %w", user.Username(), err)
	}

	params := service.GrantParams{UserID: user.ID(), Permission: permission}
	if grant.ObjectKind != "" {
		kind, err := access.ParseTargetKind(grant.ObjectKind)
		if err != nil {
			return fmt.Errorf("grant for %q: %w", user.Username(), err)
		}
		objectID, err := s.resolveObject(ctx, kind, grant.Object)
		if err != nil {
			return fmt.Errorf("grant for %q: %w", user.Username(), err)
		}
		params.ObjectKind = kind
		params.ObjectID = objectID
	}

	// Grant is idempotent, no need to look for an existing entry first.
	if _, err := s.client.Access.Grant(ctx, params); err != nil {
		return fmt.Errorf("grant %s to %q: %w", permission, user.Username(), err)
	}
	return nil
}

// resolveObject turns an object label into the ID of the named entity for
// object-scoped grants.
func (s *seeder) resolveObject(ctx context.Context, kind access.TargetKind, label string) (int64, error) {
	switch kind {
	case access.TargetDocument:
		doc, err := s.client.Documents.Get(ctx, storage.WithCondition("label", label))
		if err != nil {
			return 0, fmt.Errorf("document %q: %w", label, err)
		}
		return doc.ID(), nil
	case access.TargetDocumentType:
		t, err := s.client.Types.Get(ctx, storage.WithCondition("label", label))
		if err != nil {
			return 0, fmt.Errorf("document type %q: %w", label, err)
		}
		return t.ID(), nil
	case access.TargetSmartLink:
		link, err := s.client.SmartLinks.Get(ctx, storage.WithCondition("label", label))
		if err != nil {
			return 0, fmt.Errorf("smart link %q: %w", label, err)
		}
		return link.ID(), nil
	case access.TargetWorkflow:
		w, err := s.client.Workflows.Get(ctx, storage.WithCondition("label", label))
		if err != nil {
			return 0, fmt.Errorf("workflow %q: %w", label, err)
		}
		return w.ID(), nil
	case access.TargetMetadataType:
		mt, err := s.client.Metadata.Get(ctx, storage.WithCondition("name", label))
		if err != nil {
			return 0, fmt.Errorf("metadata type %q: %w", label, err)
		}
		return mt.ID(), nil
	default:
		return 0, fmt.Errorf("%w: unknown target kind %q", domain.ErrValidation, kind)
	}
}

func (s *seeder) seedDocumentTypes(ctx context.Context, labels []string) error {
	for _, label := range labels {
		_, err := s.client.Types.Get(ctx, storage.WithCondition("label", label))
		switch {
		case err == nil:
			s.logger.Debug("document type exists", slog.String("label", label))
		case errors.Is(err, domain.ErrNotFound):
			if _, err := s.client.Types.Create(ctx, label); err != nil {
				return fmt.Errorf("create document type %q: %w", label, err)
			}
			s.logger.Info("created document type", slog.String("label", label))
		default:
			return fmt.Errorf("look up document type %q: %w", label, err)
		}
	}
	return nil
}

func (s *seeder) seedMetadataTypes(ctx context.Context, types []seedMetadataType) error {
	for _, entry := range types {
		_, err := s.client.Metadata.Get(ctx, storage.WithCondition("name", entry.Name))
		switch {
		case err == nil:
			s.logger.Debug("metadata type exists", slog.String("name", entry.Name))
		case errors.Is(err, domain.ErrNotFound):
			params := service.MetadataTypeParams{Name: entry.Name, Label: entry.Label}
			if _, err := s.client.Metadata.CreateType(ctx, params); err != nil {
				return fmt.Errorf("create metadata type %q: %w", entry.Name, err)
			}
			s.logger.Info("created metadata type", slog.String("name", entry.Name))
		default:
			return fmt.Errorf("look up metadata type %q: %w", entry.Name, err)
		}
	}
	return nil
}

func (s *seeder) seedSmartLinks(ctx context.Context, links []seedSmartLink) error {
	for _, entry := range links {
		_, err := s.client.SmartLinks.Get(ctx, storage.WithCondition("label", entry.Label))
		switch {
		case err == nil:
			// Conditions are not reconciled against existing links.
			s.logger.Debug("smart link exists", slog.String("label", entry.Label))
			continue
		case errors.Is(err, domain.ErrNotFound):
		default:
			return fmt.Errorf("look up smart link %q: %w", entry.Label, err)
		}

		link, err := s.client.SmartLinks.Create(ctx, s.actor, service.SmartLinkCreateParams{
			Label:        entry.Label,
			DynamicLabel: entry.DynamicLabel,
		})
		if err != nil {
			return fmt.Errorf("create smart link %q: %w", entry.Label, err)
		}

		for _, condition := range entry.Conditions {
			params, err := conditionParams(condition)
			if err != nil {
				return fmt.Errorf("smart link %q: %w", entry.Label, err)
			}
			if _, err := s.client.SmartLinks.AddCondition(ctx, s.actor, link.ID(), params); err != nil {
				return fmt.Errorf("smart link %q condition: %w", entry.Label, err)
			}
		}

		for _, typeLabel := range entry.Types {
			t, err := s.client.Types.Get(ctx, storage.WithCondition("label", typeLabel))
			if err != nil {
				return fmt.Errorf("smart link %q type %q: %w", entry.Label, typeLabel, err)
			}
			if err := s.client.SmartLinks.AssignType(ctx, s.actor, link.ID(), t.ID()); err != nil {
				return fmt.Errorf("assign type %q to smart link %q: %w", typeLabel, entry.Label, err)
			}
		}

		s.logger.Info("created smart link",
			slog.String("label", entry.Label),
			slog.Int("conditions", len(entry.Conditions)))
	}
	return nil
}

// conditionParams converts a fixture condition into service params. The
// operand is the literal text unless operand_field names a source field.
func conditionParams(c seedCondition) (service.ConditionParams, error) {
	inclusion := linking.InclusionAnd
	if c.Inclusion != "" {
		parsed, err := linking.ParseInclusion(c.Inclusion)
		if err != nil {
			return service.ConditionParams{}, err
		}
		inclusion = parsed
	}

	field, err := linking.ParseFieldRef(c.Field)
	if err != nil {
		return service.ConditionParams{}, err
	}
	operator, err := linking.ParseOperator(c.Operator)
	if err != nil {
		return service.ConditionParams{}, err
	}

	operand := linking.LiteralOperand(c.Operand)
	if c.OperandField != "" {
		ref, err := linking.ParseFieldRef(c.OperandField)
		if err != nil {
			return service.ConditionParams{}, err
		}
		operand = linking.FieldOperand(ref)
	}

	return service.ConditionParams{
		Inclusion:   inclusion,
		TargetField: field,
		Operator:    operator,
		Operand:     operand,
		Negated:     c.Negated,
		Enabled:     !c.Disabled,
	}, nil
}

func (s *seeder) seedWorkflows(ctx context.Context, workflows []seedWorkflow) error {
	for _, entry := range workflows {
		_, err := s.client.Workflows.Get(ctx, storage.WithCondition("label", entry.Label))
		switch {
		case err == nil:
			// States and transitions are not reconciled against existing
			// workflows.
			s.logger.Debug("workflow exists", slog.String("label", entry.Label))
			continue
		case errors.Is(err, domain.ErrNotFound):
		default:
			return fmt.Errorf("look up workflow %q: %w", entry.Label, err)
		}

		created, err := s.client.Workflows.Create(ctx, service.WorkflowCreateParams{
			Label:        entry.Label,
			InternalName: entry.InternalName,
		})
		if err != nil {
			return fmt.Errorf("create workflow %q: %w", entry.Label, err)
		}

		stateIDs := make(map[string]int64, len(entry.States))
		for _, state := range entry.States {
			added, err := s.client.Workflows.AddState(ctx, created.ID(), service.StateParams{
				Label:      state.Label,
				Initial:    state.Initial,
				Completion: state.Completion,
			})
			if err != nil {
				return fmt.Errorf("workflow %q state %q: %w", entry.Label, state.Label, err)
			}
			stateIDs[state.Label] = added.ID()
		}

		for _, transition := range entry.Transitions {
			if err := s.seedTransition(ctx, created.ID(), entry.Label, stateIDs, transition); err != nil {
				return err
			}
		}

		for _, typeLabel := range entry.Types {
			t, err := s.client.Types.Get(ctx, storage.WithCondition("label", typeLabel))
			if err != nil {
				return fmt.Errorf("workflow %q type %q: %w", entry.Label, typeLabel, err)
			}
			if err := s.client.Workflows.AssignType(ctx, created.ID(), t.ID()); err != nil {
				return fmt.Errorf("assign type %q to workflow %q: %w", typeLabel, entry.Label, err)
			}
		}

		s.logger.Info("created workflow",
			slog.String("label", entry.Label),
			slog.Int("states", len(entry.States)),
			slog.Int("transitions", len(entry.Transitions)))
	}
	return nil
}

func (s *seeder) seedTransition(
	ctx context.Context,
	workflowID int64,
	workflowLabel string,
	stateIDs map[string]int64,
	entry seedTransition,
) error {
	originID, ok := stateIDs[entry.From]
	if !ok {
		return fmt.Errorf("workflow %q transition %q: unknown origin state %q", workflowLabel, entry.Label, entry.From)
	}
	destID, ok := stateIDs[entry.To]
	if !ok {
		return fmt.Errorf("workflow %q transition %q: unknown destination state %q", workflowLabel, entry.Label, entry.To)
	}

	params := service.TransitionParams{
		Label:              entry.Label,
		OriginStateID:      originID,
		DestinationStateID: destID,
	}
	if entry.TriggerPeriod > 0 {
		unit, err := workflow.ParseTimeUnit(entry.TriggerUnit)
		if err != nil {
			return fmt.Errorf("workflow %q transition %q: %w", workflowLabel, entry.Label, err)
		}
		params.TriggerPeriod = entry.TriggerPeriod
		params.TriggerUnit = unit
	}

	added, err := s.client.Workflows.AddTransition(ctx, workflowID, params)
	if err != nil {
		return fmt.Errorf("workflow %q transition %q: %w", workflowLabel, entry.Label, err)
	}

	if len(entry.Events) > 0 {
		types := make([]event.Type, 0, len(entry.Events))
		for _, name := range entry.Events {
			t, err := event.ParseType(name)
			if err != nil {
				return fmt.Errorf("workflow %q transition %q: %w", workflowLabel, entry.Label, err)
			}
			types = append(types, t)
		}
		if err := s.client.Workflows.SetTriggerEvents(ctx, added.ID(), types); err != nil {
			return fmt.Errorf("workflow %q transition %q events: %w", workflowLabel, entry.Label, err)
		}
	}
	return nil
}

func (s *seeder) seedDocuments(ctx context.Context, documents []seedDocument) error {
	for _, entry := range documents {
		_, err := s.client.Documents.Get(ctx, storage.WithCondition("label", entry.Label))
		switch {
		case err == nil:
			s.logger.Debug("document exists", slog.String("label", entry.Label))
			continue
		case errors.Is(err, domain.ErrNotFound):
		default:
			return fmt.Errorf("look up document %q: %w", entry.Label, err)
		}

		t, err := s.client.Types.Get(ctx, storage.WithCondition("label", entry.Type))
		if err != nil {
			return fmt.Errorf("document %q type %q: %w", entry.Label, entry.Type, err)
		}

		doc, err := s.client.Documents.Create(ctx, s.actor, service.DocumentCreateParams{
			TypeID:      t.ID(),
			Label:       entry.Label,
			Description: entry.Description,
			Language:    entry.Language,
		})
		if err != nil {
			return fmt.Errorf("create document %q: %w", entry.Label, err)
		}

		for name, value := range entry.Metadata {
			mt, err := s.client.Metadata.Get(ctx, storage.WithCondition("name", name))
			if err != nil {
				return fmt.Errorf("document %q metadata %q: %w", entry.Label, name, err)
			}
			if _, err := s.client.Metadata.SetValue(ctx, s.actor, doc.ID(), mt.ID(), value); err != nil {
				return fmt.Errorf("document %q metadata %q: %w", entry.Label, name, err)
			}
		}

		if entry.Content != "" {
			_, err := s.client.Documents.CreateVersion(ctx, s.actor, service.VersionCreateParams{
				DocumentID: doc.ID(),
				Comment:    "Seeded version",
				Content:    []byte(entry.Content),
			})
			if err != nil {
				return fmt.Errorf("document %q content: %w", entry.Label, err)
			}
		}

		s.logger.Info("created document", slog.String("label", entry.Label))
	}
	return nil
}
