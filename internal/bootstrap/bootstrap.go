package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwpark-dev/lawsearch/internal/config"
	"github.com/jwpark-dev/lawsearch/internal/core/domain"
	"github.com/jwpark-dev/lawsearch/internal/core/usecase"
	"github.com/jwpark-dev/lawsearch/internal/infrastructure/cache"
	"github.com/jwpark-dev/lawsearch/internal/infrastructure/embedding/ollama"
	"github.com/jwpark-dev/lawsearch/internal/infrastructure/graph/neo4j"
	"github.com/jwpark-dev/lawsearch/internal/infrastructure/queue/nats"
	"github.com/jwpark-dev/lawsearch/internal/infrastructure/repository/postgres"
	"github.com/jwpark-dev/lawsearch/internal/infrastructure/resilience"
	"github.com/jwpark-dev/lawsearch/internal/infrastructure/vector/qdrant"
)

// App wires the engine and its backing services. The graph is optional:
// an empty NEO4J_URI leaves related-provision enrichment off without
// affecting any other path.
type App struct {
	Config config.Config

	Search *usecase.SearchService
	Cache  *cache.ResultCache
	Queue  *nats.Queue

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewLawRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	embedder := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaEmbedModel, ollama.Options{
		ResilienceExecutor: executor,
	})
	vectorIndex := qdrant.NewWithOptions(cfg.QdrantURL, cfg.QdrantCollection, qdrant.Options{
		ResilienceExecutor: executor,
	})

	var graph *neo4j.Client
	if cfg.Neo4jURI != "" {
		graph, err = neo4j.NewWithOptions(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, neo4j.Options{
			Database:           cfg.Neo4jDatabase,
			ResilienceExecutor: executor,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init provision graph: %w", err)
		}
	}

	resultCache, err := cache.New(cfg.SearchCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init result cache: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init event queue: %w", err)
	}

	profile, err := config.LoadRetrievalProfile(cfg.RetrievalProfile)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, err
	}

	opts := usecase.Options{
		Cache:  resultCache,
		Logger: logger,
	}
	if graph != nil {
		opts.Graph = graph
	}
	if len(profile.LegalTerms) > 0 {
		opts.Enhancer = usecase.NewQueryEnhancer(profile.LegalTerms)
	}
	if len(profile.HierarchyWeights) > 0 {
		weights := make(map[domain.DocType]float64, len(profile.HierarchyWeights))
		for docType, weight := range profile.HierarchyWeights {
			weights[domain.DocType(docType)] = weight
		}
		opts.Ranker = usecase.NewHierarchyRanker(weights)
	}

	search := usecase.NewSearchService(repo, embedder, vectorIndex, opts)

	return &App{
		Config: cfg,
		Search: search,
		Cache:  resultCache,
		Queue:  queue,

		closeFn: func() {
			queue.Close()
			if graph != nil {
				_ = graph.Close(context.Background())
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
