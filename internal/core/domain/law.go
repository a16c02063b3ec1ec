package domain

import "encoding/json"

type DocType string

const (
	DocTypeStatute     DocType = "법률"
	DocTypeDecree      DocType = "시행령"
	DocTypeRule        DocType = "시행규칙"
	DocTypeAdminNotice DocType = "행정규칙"
	DocTypeGlossary    DocType = "용어집"
	DocTypeOther       DocType = "기타"
)

// Law is one legal document: a statute, implementing decree, implementing
// rule, administrative notice or glossary. (Title, OfficialNumber, DocType)
// is unique. Records are written once by the ingestion pipeline and are
// read-only from this service's perspective.
type Law struct {
	ID              int64   `json:"id"`
	DocType         DocType `json:"doc_type"`
	Title           string  `json:"title"`
	OfficialNumber  string  `json:"official_number,omitempty"`
	EnforcementDate string  `json:"enforcement_date,omitempty"`
	Category        string  `json:"category,omitempty"`
	TotalArticles   int     `json:"total_articles"`
	LastArticleNo   string  `json:"last_article_no,omitempty"`
	SourceFile      string  `json:"source_file,omitempty"`
}

// Article is one numbered provision of a Law. (LawID, ArticleNo) is unique.
// ChunkIDs references the vector index entries carrying this article's text,
// in reading order; an article with no chunk IDs has no retrievable text.
type Article struct {
	ID               int64           `json:"id"`
	LawID            int64           `json:"law_id"`
	ArticleNo        string          `json:"article_no"`
	Title            string          `json:"title,omitempty"`
	Chapter          string          `json:"chapter,omitempty"`
	Section          string          `json:"section,omitempty"`
	Deleted          bool            `json:"deleted"`
	TenantProtection bool            `json:"is_tenant_protection"`
	TaxRelated       bool            `json:"is_tax_related"`
	Delegation       bool            `json:"is_delegation"`
	Penalty          bool            `json:"is_penalty"`
	ChunkIDs         []string        `json:"chunk_ids,omitempty"`
	Extra            json.RawMessage `json:"extra,omitempty"`
}

// ArticleFlag names one of the boolean classification columns that
// GetSpecialArticles may filter on. The repository only accepts these
// values, never a caller-supplied column name.
type ArticleFlag string

const (
	FlagTenantProtection ArticleFlag = "is_tenant_protection"
	FlagTaxRelated       ArticleFlag = "is_tax_related"
	FlagDelegation       ArticleFlag = "is_delegation"
	FlagPenalty          ArticleFlag = "is_penalty"
)

// FlaggedArticle is an Article joined with its owning Law for display.
type FlaggedArticle struct {
	Article
	LawTitle string  `json:"law_title"`
	DocType  DocType `json:"doc_type"`
}
