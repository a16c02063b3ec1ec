package domain

// SearchMode selects the retrieval path for one Search call.
type SearchMode string

const (
	ModeHybrid   SearchMode = "hybrid"
	ModeVector   SearchMode = "vector"
	ModeSpecific SearchMode = "specific"
)

// SearchFilter carries the structured constraints of a hybrid search.
// DocType is pushed down into the vector index filter; Category and the
// boolean flags are checked against the relational store per candidate.
// A nil boolean means "not requested", not "false".
type SearchFilter struct {
	DocType          string `json:"doc_type,omitempty"`
	Category         string `json:"category,omitempty"`
	TenantProtection *bool  `json:"is_tenant_protection,omitempty"`
	TaxRelated       *bool  `json:"is_tax_related,omitempty"`
}

type SearchRequest struct {
	Query  string       `json:"query"`
	Mode   SearchMode   `json:"mode,omitempty"`
	Limit  int          `json:"limit,omitempty"`
	Filter SearchFilter `json:"filter"`
}

// ChunkMeta is the denormalized metadata stored alongside each vector
// index entry, validated once at the access layer so the engine never
// inspects raw payload maps.
type ChunkMeta struct {
	LawTitle  string  `json:"law_title"`
	ArticleNo string  `json:"article_no"`
	DocType   DocType `json:"doc_type"`
}

// ChunkHit is one nearest-neighbor candidate from the vector index.
// Distance follows the cosine distance convention: 0 is an identical
// vector.
type ChunkHit struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Meta     ChunkMeta `json:"meta"`
	Distance float64   `json:"distance"`
}

// SearchResult is one ranked hit returned to the caller. Score is
// 1 - distance, clamped to [0,1].
type SearchResult struct {
	LawTitle         string    `json:"law_title"`
	ArticleNo        string    `json:"article_no"`
	ArticleTitle     string    `json:"article_title,omitempty"`
	Chapter          string    `json:"chapter,omitempty"`
	Section          string    `json:"section,omitempty"`
	Text             string    `json:"text"`
	Score            float64   `json:"score"`
	TenantProtection bool      `json:"is_tenant_protection"`
	TaxRelated       bool      `json:"is_tax_related"`
	Delegation       bool      `json:"is_delegation"`
	Penalty          bool      `json:"is_penalty"`
	Meta             ChunkMeta `json:"meta"`
}

// ArticleDetail is the exact-citation lookup result: the relational
// record plus the article's full text assembled from its chunks.
type ArticleDetail struct {
	LawTitle   string             `json:"law_title"`
	DocType    DocType            `json:"doc_type"`
	Article    Article            `json:"article"`
	Text       string             `json:"text"`
	ChunkCount int                `json:"chunk_count"`
	Related    []RelatedProvision `json:"related,omitempty"`
}

// RelatedProvision is a provision linked to an article in the delegation
// graph, e.g. the decree article a statute article delegates detail to.
type RelatedProvision struct {
	LawTitle  string  `json:"law_title"`
	ArticleNo string  `json:"article_no"`
	DocType   DocType `json:"doc_type"`
	Relation  string  `json:"relation"`
}

// SearchResponse is the engine's only public output shape. Status is
// "error" only on backing-store failure; empty results are a success.
type SearchResponse struct {
	Status string         `json:"status"`
	Data   []SearchResult `json:"data"`
	Count  int            `json:"count"`
	Query  string         `json:"query"`
	Mode   SearchMode     `json:"mode"`
	Error  string         `json:"error,omitempty"`
}

// RankedProvision is one authority-ranked hit from the free-text
// answering path. Score is weight/(1+distance); unlike SearchResult.Score
// it is not bounded to [0,1]. The two conventions are intentionally kept
// separate: downstream prompt templates were tuned against each.
type RankedProvision struct {
	Hit    ChunkHit `json:"hit"`
	Weight float64  `json:"weight"`
	Score  float64  `json:"score"`
}
