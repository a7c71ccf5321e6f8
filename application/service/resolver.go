package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/document"
	"github.com/pagekeep/doclink/domain/linking"
	"github.com/pagekeep/doclink/internal/domain"
	"github.com/pagekeep/doclink/internal/metrics"
)

// resolveConcurrency bounds how many links ResolveAll evaluates at once.
const resolveConcurrency = 4

// ResolvedLink is one smart link resolved for a source document: the
// matching documents, the rendered label, and, for principals allowed to
// edit the link, the text of any evaluation error.
type ResolvedLink struct {
	link      linking.SmartLink
	label     string
	documents []document.Document
	total     int
	errText   string
}

// Link returns the resolved smart link.
func (r ResolvedLink) Link() linking.SmartLink { return r.link }

// Label returns the rendered dynamic label, or the link label when no
// expression is set or rendering failed.
func (r ResolvedLink) Label() string { return r.label }

// Documents returns the matching documents, in candidate order.
func (r ResolvedLink) Documents() []document.Document { return r.documents }

// Total returns the number of matching documents before pagination.
func (r ResolvedLink) Total() int { return r.total }

// Failed reports whether condition evaluation failed. Failed resolutions
// carry an empty document list.
func (r ResolvedLink) Failed() bool { return r.errText != "" }

// ErrorMessage returns the evaluation error text, or "". It is populated
// only for principals holding edit permission on the link.
func (r ResolvedLink) ErrorMessage() string { return r.errText }

// Resolver evaluates smart links against candidate documents. Candidates
// are the documents of the link's assigned types, excluding the source
// document and anything in the trash. Evaluation failures resolve to an
// empty set; the error detail is reserved for principals who may edit the
// link.
type Resolver struct {
	links      linking.Store
	conditions linking.ConditionStore
	documents  document.Store
	metadata   document.MetadataStore
	renderer   LabelRenderer
	authorizer *Authorizer
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewResolver creates a new Resolver service.
func NewResolver(
	links linking.Store,
	conditions linking.ConditionStore,
	documents document.Store,
	metadata document.MetadataStore,
	renderer LabelRenderer,
	authorizer *Authorizer,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Resolver {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		links:      links,
		conditions: conditions,
		documents:  documents,
		metadata:   metadata,
		renderer:   renderer,
		authorizer: authorizer,
		metrics:    m,
		logger:     logger,
	}
}

// ResolveAll resolves every enabled smart link of the document's type that
// the viewer may see. Unauthorized links are excluded, not errors.
func (s *Resolver) ResolveAll(ctx context.Context, viewer access.User, documentID int64) ([]ResolvedLink, error) {
	source, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	links, err := s.links.ForType(ctx, source.TypeID())
	if err != nil {
		return nil, fmt.Errorf("find smart links: %w", err)
	}

	linkIDs := make([]int64, 0, len(links))
	for _, link := range links {
		if link.Enabled() {
			linkIDs = append(linkIDs, link.ID())
		}
	}
	visible, err := s.authorizer.FilterAuthorized(ctx, viewer,
		access.PermissionSmartLinkView, access.TargetSmartLink, linkIDs,
	)
	if err != nil {
		return nil, err
	}

	visibleLinks := make([]linking.SmartLink, 0, len(links))
	for _, link := range links {
		if link.Enabled() && visible.Contains(link.ID()) {
			visibleLinks = append(visibleLinks, link)
		}
	}

	// Links evaluate independently; fan out but keep input order.
	resolved := make([]ResolvedLink, len(visibleLinks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, link := range visibleLinks {
		g.Go(func() error {
			result, err := s.resolve(gctx, viewer, link, source, 0, 0)
			if err != nil {
				return err
			}
			resolved[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

// Resolve resolves one smart link for a source document, paginating the
// matching documents. A limit of zero returns everything. The viewer must
// hold view permission on the link itself; the list endpoint hides links
// the viewer may not see, and fetching one by ID is gated the same way.
func (s *Resolver) Resolve(
	ctx context.Context,
	viewer access.User,
	documentID, linkID int64,
	limit, offset int,
) (ResolvedLink, error) {
	source, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return ResolvedLink{}, fmt.Errorf("get document: %w", err)
	}
	link, err := s.links.Get(ctx, linkID)
	if err != nil {
		return ResolvedLink{}, fmt.Errorf("get smart link: %w", err)
	}

	resource := access.NewResource(access.TargetSmartLink, link.ID())
	if err := s.authorizer.CheckAccess(ctx, viewer, access.PermissionSmartLinkView, resource); err != nil {
		return ResolvedLink{}, err
	}

	typeIDs, err := s.links.TypeIDs(ctx, linkID)
	if err != nil {
		return ResolvedLink{}, fmt.Errorf("find assigned types: %w", err)
	}
	if !link.Enabled() || !slices.Contains(typeIDs, source.TypeID()) {
		return ResolvedLink{}, fmt.Errorf(
			"smart link %d for document %d: %w", linkID, documentID, domain.ErrNotFound,
		)
	}

	return s.resolve(ctx, viewer, link, source, limit, offset)
}

// --- internal resolution ---

func (s *Resolver) resolve(
	ctx context.Context,
	viewer access.User,
	link linking.SmartLink,
	source document.Document,
	limit, offset int,
) (ResolvedLink, error) {
	candidates, sourceValues, err := s.loadCandidates(ctx, link.ID(), source)
	if err != nil {
		return ResolvedLink{}, err
	}

	conditions, err := s.conditions.Find(ctx,
		linking.WithSmartLinkID(link.ID()),
		linking.InCreationOrder(),
	)
	if err != nil {
		return ResolvedLink{}, fmt.Errorf("find conditions: %w", err)
	}

	label := s.renderLabel(link, source, sourceValues)

	matched, evalErr := linking.Evaluate(conditions, sourceValues, candidates)
	if evalErr != nil {
		s.metrics.RecordResolution(false, 0)
		s.logger.Warn("smart link evaluation failed",
			slog.Int64("smart_link_id", link.ID()),
			slog.Int64("document_id", source.ID()),
			slog.String("error", evalErr.Error()),
		)
		return ResolvedLink{
			link:    link,
			label:   label,
			errText: s.guardedErrorText(ctx, viewer, link.ID(), evalErr),
		}, nil
	}

	documents, err := s.visibleDocuments(ctx, viewer, matched)
	if err != nil {
		return ResolvedLink{}, err
	}
	s.metrics.RecordResolution(true, len(documents))

	total := len(documents)
	if offset > 0 {
		if offset >= len(documents) {
			documents = nil
		} else {
			documents = documents[offset:]
		}
	}
	if limit > 0 && len(documents) > limit {
		documents = documents[:limit]
	}

	return ResolvedLink{
		link:      link,
		label:     label,
		documents: documents,
		total:     total,
	}, nil
}

// loadCandidates returns the candidate field values for a link and the
// source document's own values. Trashed documents and the source itself
// never become candidates.
func (s *Resolver) loadCandidates(
	ctx context.Context,
	linkID int64,
	source document.Document,
) ([]linking.FieldValues, linking.FieldValues, error) {
	typeIDs, err := s.links.TypeIDs(ctx, linkID)
	if err != nil {
		return nil, linking.FieldValues{}, fmt.Errorf("find assigned types: %w", err)
	}

	var docs []document.Document
	if len(typeIDs) > 0 {
		docs, err = s.documents.Find(ctx,
			document.WithTypeIDIn(typeIDs),
			document.WithInTrash(false),
			document.ByDateAddedDesc(),
		)
		if err != nil {
			return nil, linking.FieldValues{}, fmt.Errorf("find candidates: %w", err)
		}
	}

	ids := make([]int64, 0, len(docs)+1)
	ids = append(ids, source.ID())
	for _, doc := range docs {
		if doc.ID() != source.ID() {
			ids = append(ids, doc.ID())
		}
	}
	metadata, err := s.metadata.ValuesForAll(ctx, ids)
	if err != nil {
		return nil, linking.FieldValues{}, fmt.Errorf("load metadata: %w", err)
	}

	candidates := make([]linking.FieldValues, 0, len(docs))
	for _, doc := range docs {
		if doc.ID() == source.ID() {
			continue
		}
		candidates = append(candidates, linking.NewFieldValues(doc, metadata[doc.ID()]))
	}
	return candidates, linking.NewFieldValues(source, metadata[source.ID()]), nil
}

// visibleDocuments filters resolved documents down to the ones the viewer
// may see.
func (s *Resolver) visibleDocuments(
	ctx context.Context,
	viewer access.User,
	matched []linking.FieldValues,
) ([]document.Document, error) {
	ids := make([]int64, 0, len(matched))
	for _, values := range matched {
		ids = append(ids, values.Document().ID())
	}
	visible, err := s.authorizer.FilterAuthorized(ctx, viewer,
		access.PermissionDocumentView, access.TargetDocument, ids,
	)
	if err != nil {
		return nil, err
	}

	documents := make([]document.Document, 0, len(matched))
	for _, values := range matched {
		if visible.Contains(values.Document().ID()) {
			documents = append(documents, values.Document())
		}
	}
	return documents, nil
}

// renderLabel renders the link's dynamic label for the source document,
// falling back to the static label when unset or on render failure.
func (s *Resolver) renderLabel(
	link linking.SmartLink,
	source document.Document,
	sourceValues linking.FieldValues,
) string {
	if !link.HasDynamicLabel() {
		return link.Label()
	}

	label, err := s.renderer.Render(link.DynamicLabel(), source, sourceValues.Metadata())
	if err != nil {
		s.logger.Warn("dynamic label render failed",
			slog.Int64("smart_link_id", link.ID()),
			slog.Int64("document_id", source.ID()),
			slog.String("error", err.Error()),
		)
		return link.Label()
	}
	return label
}

// guardedErrorText returns the evaluation error text only for principals
// who may edit the link; everyone else sees an empty result with no detail.
func (s *Resolver) guardedErrorText(
	ctx context.Context,
	viewer access.User,
	linkID int64,
	evalErr error,
) string {
	resource := access.NewResource(access.TargetSmartLink, linkID)
	if err := s.authorizer.CheckAccess(ctx, viewer, access.PermissionSmartLinkEdit, resource); err != nil {
		return ""
	}
	return evalErr.Error()
}
