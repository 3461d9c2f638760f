package config

import (
	"context"
	"fmt"

	"question-bank/internal/domain"
	"question-bank/internal/infra/supabase"
	"question-bank/internal/repository"
	"question-bank/internal/repository/sqlstore"
	"question-bank/internal/service"
	"question-bank/pkg/logger"
)

// DatabaseSupabase selects the hosted PostgREST repositories.
const DatabaseSupabase = "supabase"

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient

	DocumentRepository     domain.DocumentRepository
	TopicRepository        domain.TopicRepository
	QuestionRepository     domain.QuestionRepository
	JobRepository          domain.JobRepository
	GeneratedPDFRepository domain.GeneratedPDFRepository

	Uploads   *service.UploadStore
	Artifacts domain.ArtifactStore
	Runner    *service.TaskRunner
	Sweeper   *service.UploadSweeper

	DocumentService     *service.DocumentService
	ProcessingService   *service.ProcessingService
	QuestionBankService *service.QuestionBankService

	closers []func() error
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context) (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel(), config.GetLogFormat())

	c := &Container{
		Config: config,
		Logger: appLogger,
	}
	if err := c.initRepositories(); err != nil {
		return nil, err
	}
	if err := c.initStorage(); err != nil {
		return nil, err
	}

	generator, closeGenerator, err := service.NewTextGenerator(ctx, config, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure LLM provider: %w", err)
	}
	c.closers = append(c.closers, closeGenerator)

	categorizer := service.NewLLMCategorizer(generator, config.GetLLMMaxInputChars(), appLogger)
	extractor := service.NewPDFProcessor(appLogger)
	c.Runner = service.NewTaskRunner(appLogger)

	c.DocumentService = service.NewDocumentService(
		c.DocumentRepository,
		c.TopicRepository,
		c.QuestionRepository,
		extractor,
		categorizer,
		c.Runner,
		appLogger,
	)
	c.ProcessingService = service.NewProcessingService(service.ProcessingDeps{
		Documents:     c.DocumentRepository,
		Topics:        c.TopicRepository,
		Questions:     c.QuestionRepository,
		GeneratedPDFs: c.GeneratedPDFRepository,
		Jobs:          c.JobRepository,
		Extractor:     extractor,
		Categorizer:   categorizer,
		Renderer:      service.NewFPDFRenderer(appLogger),
		Artifacts:     c.Artifacts,
		Runner:        c.Runner,
		Logger:        appLogger,
	})
	c.QuestionBankService = service.NewQuestionBankService(
		c.TopicRepository,
		c.QuestionRepository,
		c.GeneratedPDFRepository,
		c.Artifacts,
	)
	c.Sweeper = service.NewUploadSweeper(config.GetUploadPath(), config.GetUploadRetention(), appLogger)

	return c, nil
}

func (c *Container) initRepositories() error {
	driver := c.Config.GetDatabaseDriver()
	if driver == DatabaseSupabase {
		c.SupabaseClient = supabase.NewClient(c.Config, c.Logger)
		if err := c.SupabaseClient.Initialize(); err != nil {
			return err
		}
		c.DocumentRepository = repository.NewSupabaseDocumentRepository(c.SupabaseClient, c.Logger)
		c.TopicRepository = repository.NewSupabaseTopicRepository(c.SupabaseClient, c.Logger)
		c.QuestionRepository = repository.NewSupabaseQuestionRepository(c.SupabaseClient, c.Logger)
		c.JobRepository = repository.NewSupabaseJobRepository(c.SupabaseClient, c.Logger)
		c.GeneratedPDFRepository = repository.NewSupabaseGeneratedPDFRepository(c.SupabaseClient, c.Logger)
		return nil
	}

	db, err := sqlstore.Open(driver, c.Config.GetDatabaseDSN(), c.Logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		c.closers = append(c.closers, sqlDB.Close)
	}

	repos := sqlstore.NewRepositories(db)
	c.DocumentRepository = repos.Documents
	c.TopicRepository = repos.Topics
	c.QuestionRepository = repos.Questions
	c.JobRepository = repos.Jobs
	c.GeneratedPDFRepository = repos.GeneratedPDFs
	c.Logger.Info("Database opened", "driver", driver)
	return nil
}

func (c *Container) initStorage() error {
	uploads, err := service.NewUploadStore(c.Config.GetUploadPath())
	if err != nil {
		return err
	}
	c.Uploads = uploads

	switch c.Config.GetArtifactStore() {
	case DatabaseSupabase:
		if c.SupabaseClient == nil {
			c.SupabaseClient = supabase.NewClient(c.Config, c.Logger)
			if err := c.SupabaseClient.Initialize(); err != nil {
				return err
			}
		}
		c.Artifacts = service.NewSupabaseArtifactStore(c.SupabaseClient, c.Config.GetSupabaseBucket())
	case "local", "":
		local, err := service.NewLocalArtifactStore(c.Config.GetOutputPath())
		if err != nil {
			return err
		}
		c.Artifacts = local
	default:
		return fmt.Errorf("unsupported artifact store %q", c.Config.GetArtifactStore())
	}
	return nil
}

// Close releases the database and LLM client, then flushes the logger.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("Failed to release resource", "error", err)
		}
	}
	if s, ok := c.Logger.(interface{ Sync() }); ok {
		s.Sync()
	}
}
