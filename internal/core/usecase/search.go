package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
	"github.com/jwpark-dev/lawsearch/internal/core/ports"
)

const (
	defaultSearchLimit   = 10
	defaultTopProvisions = 3
	// rerankOverFetch widens the candidate pool before hierarchy
	// re-ranking so lower-authority near matches can still be displaced.
	rerankOverFetch = 3
)

// SearchService is the hybrid retrieval engine. It owns three injected
// read-only dependencies (relational store, vector index, embedder) plus
// optional enrichments; it performs no internal parallelism and holds no
// state across calls, so abandoning an in-flight call is always safe.
type SearchService struct {
	repo     ports.LawRepository
	embedder ports.Embedder
	vector   ports.VectorIndex
	graph    ports.ProvisionGraph
	cache    ports.ResultCache
	enhancer *QueryEnhancer
	ranker   *HierarchyRanker
	log      *slog.Logger
}

// Options carries the optional collaborators of a SearchService. Zero
// values disable the corresponding behavior.
type Options struct {
	Graph    ports.ProvisionGraph
	Cache    ports.ResultCache
	Enhancer *QueryEnhancer
	Ranker   *HierarchyRanker
	Logger   *slog.Logger
}

func NewSearchService(repo ports.LawRepository, embedder ports.Embedder, vector ports.VectorIndex, opts Options) *SearchService {
	enhancer := opts.Enhancer
	if enhancer == nil {
		enhancer = NewQueryEnhancer(nil)
	}
	ranker := opts.Ranker
	if ranker == nil {
		ranker = NewHierarchyRanker(nil)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &SearchService{
		repo:     repo,
		embedder: embedder,
		vector:   vector,
		graph:    opts.Graph,
		cache:    opts.Cache,
		enhancer: enhancer,
		ranker:   ranker,
		log:      log,
	}
}

// Search is the single error boundary of the engine: no failure from the
// backing stores escapes as a Go error, every outcome is folded into the
// response shape. Empty result sets are successes; only infrastructure
// failure yields status "error".
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (resp domain.SearchResponse) {
	mode := req.Mode
	if mode == "" {
		mode = domain.ModeHybrid
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	key := cacheKey(req.Query, mode, limit, req.Filter)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached
		}
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("search panic recovered", "mode", string(mode), "panic", fmt.Sprint(r))
			resp = errorResponse(req.Query, mode, fmt.Sprintf("internal failure: %v", r))
		}
	}()

	var (
		results []domain.SearchResult
		err     error
	)
	switch mode {
	case domain.ModeHybrid:
		results, err = s.hybridSearch(ctx, req.Query, limit, req.Filter)
	case domain.ModeVector:
		results, err = s.vectorSearch(ctx, req.Query, limit, req.Filter)
	case domain.ModeSpecific:
		results, err = s.specificSearch(ctx, req.Query)
	default:
		err = domain.WrapError(domain.ErrInvalidInput, "search", fmt.Errorf("unknown mode %q", mode))
	}
	if err != nil {
		s.log.Error("search failed", "mode", string(mode), "query", req.Query, "error", err)
		return errorResponse(req.Query, mode, err.Error())
	}

	if results == nil {
		results = []domain.SearchResult{}
	}
	resp = domain.SearchResponse{
		Status: "success",
		Data:   results,
		Count:  len(results),
		Query:  req.Query,
		Mode:   mode,
	}
	if s.cache != nil {
		s.cache.Add(key, resp)
	}
	return resp
}

// vectorSearch is the raw similarity path: index hits mapped straight
// into the result shape without relational enrichment or filtering.
func (s *SearchService) vectorSearch(ctx context.Context, query string, limit int, filter domain.SearchFilter) ([]domain.SearchResult, error) {
	vector, err := s.embedder.EmbedQuery(ctx, s.enhancer.Enhance(query))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var pushdown map[string]string
	if filter.DocType != "" {
		pushdown = map[string]string{"doc_type": filter.DocType}
	}
	hits, err := s.vector.Search(ctx, vector, limit, pushdown)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, domain.SearchResult{
			LawTitle:  hit.Meta.LawTitle,
			ArticleNo: hit.Meta.ArticleNo,
			Text:      hit.Text,
			Score:     similarityScore(hit.Distance),
			Meta:      hit.Meta,
		})
	}
	return results, nil
}

// specificSearch answers explicit citations. A query that does not parse
// as a citation, or a citation the corpus does not contain, yields an
// empty result set.
func (s *SearchService) specificSearch(ctx context.Context, query string) ([]domain.SearchResult, error) {
	lawTitle, articleNo, ok := parseCitation(query)
	if !ok {
		return nil, nil
	}

	detail, err := s.SearchSpecificArticle(ctx, lawTitle, articleNo)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, nil
	}

	return []domain.SearchResult{{
		LawTitle:         detail.LawTitle,
		ArticleNo:        detail.Article.ArticleNo,
		ArticleTitle:     detail.Article.Title,
		Chapter:          detail.Article.Chapter,
		Section:          detail.Article.Section,
		Text:             detail.Text,
		Score:            1,
		TenantProtection: detail.Article.TenantProtection,
		TaxRelated:       detail.Article.TaxRelated,
		Delegation:       detail.Article.Delegation,
		Penalty:          detail.Article.Penalty,
		Meta: domain.ChunkMeta{
			LawTitle:  detail.LawTitle,
			ArticleNo: detail.Article.ArticleNo,
			DocType:   detail.DocType,
		},
	}}, nil
}

// SearchSpecificArticle is the exact citation lookup: a pure identity
// path that never touches similarity search. A nil detail with nil error
// means the corpus does not contain the citation.
func (s *SearchService) SearchSpecificArticle(ctx context.Context, lawTitle, articleNo string) (*domain.ArticleDetail, error) {
	article, law, err := s.repo.GetArticleByNumber(ctx, lawTitle, articleNo)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve citation: %w", err)
	}

	ids, err := s.repo.GetChunkIDs(ctx, article.ID)
	if err != nil {
		return nil, fmt.Errorf("load chunk ids: %w", err)
	}

	var texts []string
	if len(ids) > 0 {
		texts, err = s.vector.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("fetch chunks: %w", err)
		}
		if len(texts) < len(ids) {
			s.log.Debug("article references missing chunks",
				"law_title", law.Title,
				"article_no", article.ArticleNo,
				"expected", len(ids),
				"found", len(texts),
			)
		}
	}

	detail := &domain.ArticleDetail{
		LawTitle:   law.Title,
		DocType:    law.DocType,
		Article:    *article,
		Text:       strings.Join(texts, "\n"),
		ChunkCount: len(texts),
	}

	if s.graph != nil {
		related, err := s.graph.RelatedProvisions(ctx, law.Title, article.ArticleNo)
		if err != nil {
			// Graph enrichment is best effort; the citation answer
			// stands without it.
			s.log.Warn("related provision lookup failed", "law_title", law.Title, "article_no", article.ArticleNo, "error", err)
		} else {
			detail.Related = related
		}
	}
	return detail, nil
}

// TopProvisions is the free-text answering path: similarity candidates
// re-ranked by legal hierarchy before truncation. Unlike hybrid search it
// returns authority-ordered output.
func (s *SearchService) TopProvisions(ctx context.Context, query string, n int) ([]domain.RankedProvision, error) {
	if n <= 0 {
		n = defaultTopProvisions
	}

	vector, err := s.embedder.EmbedQuery(ctx, s.enhancer.Enhance(query))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := s.vector.Search(ctx, vector, n*rerankOverFetch, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return s.ranker.Rank(hits, n), nil
}

// LawsByCategory lists laws in one real-estate sub-domain.
func (s *SearchService) LawsByCategory(ctx context.Context, category string) ([]domain.Law, error) {
	return s.repo.SearchLawsByCategory(ctx, category)
}

func (s *SearchService) LawsByDocType(ctx context.Context, docType domain.DocType) ([]domain.Law, error) {
	return s.repo.SearchLawsByDocType(ctx, docType)
}

// SpecialArticles answers "list all tenant-protection provisions" style
// queries from the relational store alone.
func (s *SearchService) SpecialArticles(ctx context.Context, flag domain.ArticleFlag) ([]domain.FlaggedArticle, error) {
	return s.repo.GetSpecialArticles(ctx, flag)
}

func errorResponse(query string, mode domain.SearchMode, message string) domain.SearchResponse {
	return domain.SearchResponse{
		Status: "error",
		Data:   []domain.SearchResult{},
		Count:  0,
		Query:  query,
		Mode:   mode,
		Error:  message,
	}
}

func cacheKey(query string, mode domain.SearchMode, limit int, filter domain.SearchFilter) string {
	var b strings.Builder
	b.WriteString(string(mode))
	b.WriteByte('|')
	fmt.Fprintf(&b, "%d|%s|%s|%s|", limit, filter.DocType, filter.Category, boolKey(filter.TenantProtection))
	b.WriteString(boolKey(filter.TaxRelated))
	b.WriteByte('|')
	b.WriteString(query)
	return b.String()
}

func boolKey(v *bool) string {
	switch {
	case v == nil:
		return "-"
	case *v:
		return "t"
	default:
		return "f"
	}
}
