package ports

import (
	"context"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
)

// LawRepository reads law/article metadata from the relational store.
// All methods are read-only and safe for concurrent callers. Lookups that
// find nothing return a typed not-found kind (domain.ErrLawNotFound /
// domain.ErrArticleNotFound), distinguishable from infrastructure failure
// via domain.IsNotFound.
type LawRepository interface {
	// GetLawByTitle resolves a law by title. Fuzzy mode matches by
	// case-insensitive substring containment and returns the first match;
	// exact mode requires equality.
	GetLawByTitle(ctx context.Context, title string, fuzzy bool) (*domain.Law, error)
	GetArticlesByLaw(ctx context.Context, lawID int64, includeDeleted bool) ([]domain.Article, error)
	// GetArticleByNumber joins laws and articles on a fuzzy title match,
	// an exact article-number match and a non-deleted filter.
	GetArticleByNumber(ctx context.Context, lawTitle, articleNo string) (*domain.Article, *domain.Law, error)
	// GetChunkIDs returns the stored chunk-ID list for an article. A
	// missing or malformed list yields an empty slice, not an error.
	GetChunkIDs(ctx context.Context, articleID int64) ([]string, error)
	SearchLawsByCategory(ctx context.Context, category string) ([]domain.Law, error)
	SearchLawsByDocType(ctx context.Context, docType domain.DocType) ([]domain.Law, error)
	GetSpecialArticles(ctx context.Context, flag domain.ArticleFlag) ([]domain.FlaggedArticle, error)
}

// Embedder maps query text to the fixed-dimension vector space the index
// was populated with. The model is pinned by configuration; a model
// mismatch between ingestion and query time silently degrades relevance,
// so implementations must log the model name at startup.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex performs nearest-neighbor search over chunk embeddings.
// Hits carry cosine distance (0 = identical); filters are equality
// predicates ANDed over the denormalized chunk payload.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, topN int, filters map[string]string) ([]domain.ChunkHit, error)
	// GetByIDs fetches chunk texts by identity, bypassing similarity
	// search. Results are ordered to match ids; missing IDs are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]string, error)
}

// ProvisionGraph exposes delegation links between provisions. Optional:
// a nil graph disables related-provision enrichment.
type ProvisionGraph interface {
	RelatedProvisions(ctx context.Context, lawTitle, articleNo string) ([]domain.RelatedProvision, error)
}

// CorpusEvents delivers ingestion-side notifications. The engine only
// consumes reindex events to drop cached responses.
type CorpusEvents interface {
	SubscribeCorpusReindexed(ctx context.Context, handler func(context.Context) error) error
}

// ResultCache memoizes full search responses. Purge is called when the
// backing corpus changes.
type ResultCache interface {
	Get(key string) (domain.SearchResponse, bool)
	Add(key string, resp domain.SearchResponse)
	Purge()
}
