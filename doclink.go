// Package doclink provides a library for document management with smart
// links, workflows, and access control.
//
// Doclink stores typed documents with versioned content and free-form
// metadata, resolves smart links between documents through condition
// matching, and drives workflow state machines with manual, timed, and
// event-fired transitions.
//
// Basic usage:
//
//	client, err := doclink.New(
//	    doclink.WithSQLite(".doclink/data.db"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Create a document type and a document
//	invoices, err := client.Types.Create(ctx, "Invoice")
//	doc, err := client.Documents.Create(ctx, actor, service.DocumentCreateParams{
//	    TypeID: invoices.ID(),
//	    Label:  "Invoice 2026-001",
//	})
//
//	// Resolve smart links for the document
//	links, err := client.Resolver.ResolveAll(ctx, actor, doc.ID())
package doclink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pagekeep/doclink/application/service"
	"github.com/pagekeep/doclink/infrastructure/content"
	"github.com/pagekeep/doclink/infrastructure/expression"
	"github.com/pagekeep/doclink/infrastructure/persistence"
	"github.com/pagekeep/doclink/internal/cache"
	"github.com/pagekeep/doclink/internal/config"
	"github.com/pagekeep/doclink/internal/database"
	"github.com/pagekeep/doclink/internal/metrics"
)

var (
	// ErrNoDatabase indicates New was called without WithSQLite or
	// WithPostgres.
	ErrNoDatabase = errors.New("doclink: no database configured")

	// ErrClientClosed indicates an operation on a closed Client.
	ErrClientClosed = errors.New("doclink: client is closed")
)

// Client is the main entry point for the doclink library.
// The workflow trigger scheduler starts automatically on creation.
//
// Access resources via struct fields:
//
//	client.Documents.Find(ctx)
//	client.SmartLinks.Get(ctx, storage.WithID(id))
//	client.Resolver.ResolveAll(ctx, viewer, documentID)
type Client struct {
	// Public resource fields (direct service access)
	Documents  *service.Document
	Types      *service.DocumentType
	Metadata   *service.Metadata
	SmartLinks *service.SmartLink
	Resolver   *service.Resolver
	Workflows  *service.Workflow
	Events     *service.Event
	Users      *service.Users
	Access     *service.Authorizer

	db            database.Database
	decisionCache cache.Cache
	metrics       *metrics.Metrics
	contentStore  *content.Store
	scheduler     *service.Scheduler
	closers       []io.Closer

	logger        *slog.Logger
	dataDir       string
	versionDir    string
	adminUsername string
	closed        atomic.Bool
	mu            sync.Mutex
}

// New creates a new Client with the given options.
// The trigger scheduler is started automatically.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.database == databaseUnset {
		return nil, ErrNoDatabase
	}

	// Set up logger
	logger := cfg.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	// Set up data directories
	dataDir, err := config.PrepareDataDir(cfg.dataDir)
	if err != nil {
		return nil, err
	}
	versionDir, err := config.PrepareVersionDir(cfg.versionDir, dataDir)
	if err != nil {
		return nil, err
	}

	// Open database and bring the schema up to date
	ctx := context.Background()
	dbURL, err := buildDatabaseURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("build database url: %w", err)
	}
	db, err := database.NewDatabase(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer at a time; a single pooled connection queues
	// concurrent requests instead of surfacing busy errors.
	if db.IsSQLite() {
		err = db.ConfigurePool(1, 1, 0)
	} else {
		err = db.ConfigurePool(10, 5, 30*time.Minute)
	}
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("configure pool: %w", err), errClose)
	}
	if err := persistence.Migrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("migrate: %w", err), errClose)
	}

	// Access decision cache
	decisionCache, err := buildCache(cfg.cache)
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("decision cache: %w", err), errClose)
	}

	m := metrics.New()

	// Create stores
	userStore := persistence.NewUserStore(db)
	entryStore := persistence.NewAccessEntryStore(db)
	documentStore := persistence.NewDocumentStore(db)
	typeStore := persistence.NewDocumentTypeStore(db)
	versionStore := persistence.NewDocumentVersionStore(db)
	metadataTypeStore := persistence.NewMetadataTypeStore(db)
	metadataStore := persistence.NewDocumentMetadataStore(db)
	linkStore := persistence.NewSmartLinkStore(db)
	conditionStore := persistence.NewSmartLinkConditionStore(db)
	workflowStore := persistence.NewWorkflowStore(db)
	stateStore := persistence.NewWorkflowStateStore(db)
	transitionStore := persistence.NewWorkflowTransitionStore(db)
	instanceStore := persistence.NewWorkflowInstanceStore(db)
	logStore := persistence.NewWorkflowLogStore(db)
	triggerStore := persistence.NewWorkflowTriggerStore(db)
	eventTypeStore := persistence.NewEventTypeStore(db)
	eventRecordStore := persistence.NewEventRecordStore(db)

	contentStore := content.NewStore(versionDir, logger)

	renderer, err := expression.NewRenderer()
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("label renderer: %w", err), errClose)
	}

	// Create application services
	events := service.NewEvent(eventTypeStore, eventRecordStore, m, logger)
	authorizer := service.NewAuthorizer(entryStore, decisionCache, cfg.cache.TTL(), m, logger)
	workflows := service.NewWorkflow(
		workflowStore, stateStore, transitionStore,
		instanceStore, logStore, triggerStore,
		events, m, logger,
	)
	documents := service.NewDocument(
		documentStore, typeStore, versionStore,
		contentStore, workflows, events, logger,
	)
	types := service.NewDocumentType(typeStore, documentStore, logger)
	metadata := service.NewMetadata(metadataTypeStore, metadataStore, documentStore, events, logger)
	smartLinks := service.NewSmartLink(linkStore, conditionStore, renderer, events, logger)
	resolver := service.NewResolver(
		linkStore, conditionStore, documentStore, metadataStore,
		renderer, authorizer, m, logger,
	)
	users := service.NewUsers(userStore, authorizer, logger)
	scheduler := service.NewScheduler(cfg.scheduler, workflows, logger)

	// Event triggers fire off committed events
	events.Subscribe(workflows.HandleEvent)

	client := &Client{
		db:            db,
		decisionCache: decisionCache,
		metrics:       m,
		contentStore:  contentStore,
		scheduler:     scheduler,
		closers:       cfg.closers,
		logger:        logger,
		dataDir:       dataDir,
		versionDir:    versionDir,
		adminUsername: cfg.adminUsername,
	}

	// Initialize service fields directly
	client.Documents = documents
	client.Types = types
	client.Metadata = metadata
	client.SmartLinks = smartLinks
	client.Resolver = resolver
	client.Workflows = workflows
	client.Events = events
	client.Users = users
	client.Access = authorizer

	// The admin account exists and is a superuser after startup
	if _, err := users.EnsureAdmin(ctx, cfg.adminUsername); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("ensure admin: %w", err), errClose)
	}

	if err := scheduler.Start(ctx); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("start scheduler: %w", err), errClose)
	}

	return client, nil
}

// Close releases all resources and stops the trigger scheduler.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.scheduler.Stop()

	// Close registered resources
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	if err := c.decisionCache.Close(); err != nil {
		c.logger.Error("failed to close decision cache", slog.Any("error", err))
	}

	// Close the database
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("doclink client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Metrics returns the client's metrics registry.
func (c *Client) Metrics() *metrics.Metrics {
	return c.metrics
}

// DataDir returns the prepared data directory.
func (c *Client) DataDir() string {
	return c.dataDir
}

// buildDatabaseURL constructs the database URL from configuration.
func buildDatabaseURL(cfg *clientConfig) (string, error) {
	switch cfg.database {
	case databaseSQLite:
		return "sqlite:///" + cfg.dbPath, nil
	case databasePostgres:
		return cfg.dbDSN, nil
	default:
		return "", ErrNoDatabase
	}
}

// buildCache constructs the access decision cache from configuration.
func buildCache(cfg config.CacheConfig) (cache.Cache, error) {
	if cfg.IsRedis() {
		c, err := cache.NewRedis(cfg.RedisURL())
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemory(cfg.MaxEntries()), nil
}
