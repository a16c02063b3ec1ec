package ports

import (
	"context"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
)

// ProvisionSearcher is the inbound contract the orchestration layer and
// the MCP adapter consume. Search never returns a Go error: every failure
// is folded into the response's status/error fields.
type ProvisionSearcher interface {
	Search(ctx context.Context, req domain.SearchRequest) domain.SearchResponse
	SearchSpecificArticle(ctx context.Context, lawTitle, articleNo string) (*domain.ArticleDetail, error)
	TopProvisions(ctx context.Context, query string, n int) ([]domain.RankedProvision, error)
}

// LawBrowser is the inbound read model over the law inventory.
type LawBrowser interface {
	LawsByCategory(ctx context.Context, category string) ([]domain.Law, error)
	LawsByDocType(ctx context.Context, docType domain.DocType) ([]domain.Law, error)
	SpecialArticles(ctx context.Context, flag domain.ArticleFlag) ([]domain.FlaggedArticle, error)
}
