package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
	"github.com/jwpark-dev/lawsearch/internal/core/ports"
	"github.com/jwpark-dev/lawsearch/internal/observability/metrics"
)

type Router struct {
	searcher ports.ProvisionSearcher
	browser  ports.LawBrowser
	metrics  *metrics.HTTPServerMetrics

	rateLimitRPS   int
	rateLimitBurst int
}

type RouterOptions struct {
	Metrics        *metrics.HTTPServerMetrics
	RateLimitRPS   int
	RateLimitBurst int
}

func NewRouter(searcher ports.ProvisionSearcher, browser ports.LawBrowser, options RouterOptions) *Router {
	return &Router{
		searcher:       searcher,
		browser:        browser,
		metrics:        options.Metrics,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/search", rt.search)
	mux.HandleFunc("/v1/articles/", rt.getArticle)
	mux.HandleFunc("/v1/laws", rt.listLaws)
	mux.HandleFunc("/v1/provisions/special", rt.specialProvisions)
	mux.HandleFunc("/v1/provisions/top", rt.topProvisions)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query            string `json:"query"`
		Mode             string `json:"mode"`
		Limit            int    `json:"limit"`
		DocType          string `json:"doc_type"`
		Category         string `json:"category"`
		TenantProtection *bool  `json:"is_tenant_protection"`
		TaxRelated       *bool  `json:"is_tax_related"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	resp := rt.searcher.Search(r.Context(), domain.SearchRequest{
		Query: req.Query,
		Mode:  domain.SearchMode(req.Mode),
		Limit: req.Limit,
		Filter: domain.SearchFilter{
			DocType:          req.DocType,
			Category:         req.Category,
			TenantProtection: req.TenantProtection,
			TaxRelated:       req.TaxRelated,
		},
	})
	if rt.metrics != nil {
		rt.metrics.RecordSearch("api", string(resp.Mode), resp.Status, resp.Count, time.Since(start))
	}

	status := http.StatusOK
	if resp.Status == "error" {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

// getArticle serves /v1/articles/{law_title}/{article_no}. Both path
// segments are URL-escaped Korean text.
func (rt *Router) getArticle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/articles/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path must be /v1/articles/{law_title}/{article_no}"})
		return
	}
	lawTitle := pathSegment(parts[0])
	articleNo := pathSegment(parts[1])

	detail, err := rt.searcher.SearchSpecificArticle(r.Context(), lawTitle, articleNo)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if detail == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "article not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (rt *Router) listLaws(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	docType := strings.TrimSpace(r.URL.Query().Get("doc_type"))

	var (
		laws []domain.Law
		err  error
	)
	switch {
	case category != "":
		laws, err = rt.browser.LawsByCategory(r.Context(), category)
	case docType != "":
		laws, err = rt.browser.LawsByDocType(r.Context(), domain.DocType(docType))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category or doc_type query parameter is required"})
		return
	}
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if laws == nil {
		laws = []domain.Law{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"laws": laws, "count": len(laws)})
}

func (rt *Router) specialProvisions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	flag := strings.TrimSpace(r.URL.Query().Get("flag"))
	if flag == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "flag query parameter is required"})
		return
	}

	articles, err := rt.browser.SpecialArticles(r.Context(), domain.ArticleFlag(flag))
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if articles == nil {
		articles = []domain.FlaggedArticle{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": articles, "count": len(articles)})
}

func (rt *Router) topProvisions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query string `json:"query"`
		N     int    `json:"n"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	ranked, err := rt.searcher.TopProvisions(r.Context(), req.Query, req.N)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if ranked == nil {
		ranked = []domain.RankedProvision{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"provisions": ranked, "count": len(ranked)})
}

func pathSegment(raw string) string {
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return unescaped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
