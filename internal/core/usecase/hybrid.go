package usecase

import (
	"context"
	"fmt"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
)

// overFetchFactor over-requests vector candidates so that post-hoc
// relational filtering rarely starves the final result list. A list
// shorter than limit after attrition is accepted behavior.
const overFetchFactor = 2

func (s *SearchService) hybridSearch(ctx context.Context, query string, limit int, filter domain.SearchFilter) ([]domain.SearchResult, error) {
	vector, err := s.embedder.EmbedQuery(ctx, s.enhancer.Enhance(query))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// doc_type lives in the chunk payload, so it is pushed down into the
	// index-native filter; category and the boolean flags require the
	// relational record and are checked per candidate below.
	var pushdown map[string]string
	if filter.DocType != "" {
		pushdown = map[string]string{"doc_type": filter.DocType}
	}

	hits, err := s.vector.Search(ctx, vector, limit*overFetchFactor, pushdown)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	results := make([]domain.SearchResult, 0, limit)
	for _, hit := range hits {
		article, law, err := s.repo.GetArticleByNumber(ctx, hit.Meta.LawTitle, hit.Meta.ArticleNo)
		if err != nil {
			if domain.IsNotFound(err) {
				// A chunk without a backing article record is an
				// ingestion-side integrity gap, not a query failure.
				s.log.Debug("chunk without backing article",
					"chunk_id", hit.ID,
					"law_title", hit.Meta.LawTitle,
					"article_no", hit.Meta.ArticleNo,
				)
				continue
			}
			return nil, fmt.Errorf("resolve article: %w", err)
		}

		if filter.Category != "" && law.Category != filter.Category {
			continue
		}
		if filter.TenantProtection != nil && article.TenantProtection != *filter.TenantProtection {
			continue
		}
		if filter.TaxRelated != nil && article.TaxRelated != *filter.TaxRelated {
			continue
		}

		results = append(results, buildSearchResult(hit, article, law))
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

func buildSearchResult(hit domain.ChunkHit, article *domain.Article, law *domain.Law) domain.SearchResult {
	return domain.SearchResult{
		LawTitle:         law.Title,
		ArticleNo:        article.ArticleNo,
		ArticleTitle:     article.Title,
		Chapter:          article.Chapter,
		Section:          article.Section,
		Text:             hit.Text,
		Score:            similarityScore(hit.Distance),
		TenantProtection: article.TenantProtection,
		TaxRelated:       article.TaxRelated,
		Delegation:       article.Delegation,
		Penalty:          article.Penalty,
		Meta:             hit.Meta,
	}
}

// similarityScore maps cosine distance to the [0,1] relevance convention
// of hybrid search: 1 is an identical vector, 0 the index's maximum
// considered distance.
func similarityScore(distance float64) float64 {
	score := 1 - distance
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
