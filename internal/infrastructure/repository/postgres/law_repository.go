package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
)

// LawRepository is the read-only access layer over the law/article
// metadata the ingestion pipeline maintains. A single shared connection
// pool serves all concurrent readers; nothing here writes.
type LawRepository struct {
	db *sql.DB
}

func NewLawRepository(db *sql.DB) *LawRepository {
	return &LawRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates empty tables on first start so a fresh instance
// comes up before the ingestion pipeline has run.
func (r *LawRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS laws (
	id BIGSERIAL PRIMARY KEY,
	doc_type TEXT NOT NULL,
	title TEXT NOT NULL,
	official_number TEXT,
	enforcement_date TEXT,
	category TEXT,
	total_articles INT NOT NULL DEFAULT 0,
	last_article_no TEXT,
	source_file TEXT,
	UNIQUE (title, official_number, doc_type)
);

CREATE INDEX IF NOT EXISTS idx_laws_category ON laws(category);
CREATE INDEX IF NOT EXISTS idx_laws_doc_type ON laws(doc_type);

CREATE TABLE IF NOT EXISTS articles (
	id BIGSERIAL PRIMARY KEY,
	law_id BIGINT NOT NULL REFERENCES laws(id) ON DELETE CASCADE,
	article_no TEXT NOT NULL,
	article_seq INT NOT NULL DEFAULT 0,
	title TEXT,
	chapter TEXT,
	section TEXT,
	deleted BOOLEAN NOT NULL DEFAULT FALSE,
	is_tenant_protection BOOLEAN NOT NULL DEFAULT FALSE,
	is_tax_related BOOLEAN NOT NULL DEFAULT FALSE,
	is_delegation BOOLEAN NOT NULL DEFAULT FALSE,
	is_penalty BOOLEAN NOT NULL DEFAULT FALSE,
	chunk_ids JSONB NOT NULL DEFAULT '[]'::jsonb,
	extra JSONB,
	UNIQUE (law_id, article_no)
);

CREATE INDEX IF NOT EXISTS idx_articles_law ON articles(law_id);
CREATE INDEX IF NOT EXISTS idx_articles_no ON articles(article_no);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const lawColumns = `id, doc_type, title, COALESCE(official_number, ''), COALESCE(enforcement_date, ''), COALESCE(category, ''), total_articles, COALESCE(last_article_no, ''), COALESCE(source_file, '')`

const lawColumnsL = `l.id, l.doc_type, l.title, COALESCE(l.official_number, ''), COALESCE(l.enforcement_date, ''), COALESCE(l.category, ''), l.total_articles, COALESCE(l.last_article_no, ''), COALESCE(l.source_file, '')`

func (r *LawRepository) GetLawByTitle(ctx context.Context, title string, fuzzy bool) (*domain.Law, error) {
	var row *sql.Row
	if fuzzy {
		// Prefer an exact title, then the shortest containing title, so
		// substring collisions resolve toward the base statute rather
		// than its decree ("주택임대차보호법" vs "주택임대차보호법 시행령").
		row = r.db.QueryRowContext(ctx, `
SELECT `+lawColumns+`
FROM laws
WHERE title ILIKE '%' || $1 || '%'
ORDER BY (lower(title) = lower($1)) DESC, char_length(title) ASC, id ASC
LIMIT 1
`, title)
	} else {
		row = r.db.QueryRowContext(ctx, `
SELECT `+lawColumns+`
FROM laws
WHERE title = $1
ORDER BY id ASC
LIMIT 1
`, title)
	}

	law, err := scanLaw(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrLawNotFound, "get law by title", err)
		}
		return nil, fmt.Errorf("scan law: %w", err)
	}
	return law, nil
}

const articleColumnsA = `a.id, a.law_id, a.article_no, COALESCE(a.title, ''), COALESCE(a.chapter, ''), COALESCE(a.section, ''), a.deleted, a.is_tenant_protection, a.is_tax_related, a.is_delegation, a.is_penalty, a.chunk_ids, a.extra`

func (r *LawRepository) GetArticlesByLaw(ctx context.Context, lawID int64, includeDeleted bool) ([]domain.Article, error) {
	query := `
SELECT ` + articleColumnsA + `
FROM articles a
WHERE a.law_id = $1
ORDER BY a.article_seq ASC, a.article_no ASC
`
	if !includeDeleted {
		query = `
SELECT ` + articleColumnsA + `
FROM articles a
WHERE a.law_id = $1 AND NOT a.deleted
ORDER BY a.article_seq ASC, a.article_no ASC
`
	}

	rows, err := r.db.QueryContext(ctx, query, lawID)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}

// GetArticleByNumber joins laws and articles on a fuzzy title match, an
// exact article-number match and a non-deleted filter, returning both
// records so callers do not need a second lookup for category checks.
func (r *LawRepository) GetArticleByNumber(ctx context.Context, lawTitle, articleNo string) (*domain.Article, *domain.Law, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+articleColumnsA+`, `+lawColumnsL+`
FROM articles a
JOIN laws l ON l.id = a.law_id
WHERE l.title ILIKE '%' || $1 || '%' AND a.article_no = $2 AND NOT a.deleted
ORDER BY (lower(l.title) = lower($1)) DESC, char_length(l.title) ASC, a.id ASC
LIMIT 1
`, lawTitle, articleNo)

	article, law, err := scanArticleWithLaw(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.WrapError(domain.ErrArticleNotFound, "get article by number", err)
		}
		return nil, nil, fmt.Errorf("scan article with law: %w", err)
	}
	return article, law, nil
}

// GetChunkIDs deserializes the stored chunk-ID list. A missing row or a
// malformed column yields an empty list, never an error: a stale index
// must not make every touching query appear broken.
func (r *LawRepository) GetChunkIDs(ctx context.Context, articleID int64) ([]string, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT chunk_ids FROM articles WHERE id = $1`, articleID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("query chunk ids: %w", err)
	}
	return decodeChunkIDs(raw), nil
}

func (r *LawRepository) SearchLawsByCategory(ctx context.Context, category string) ([]domain.Law, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+lawColumns+`
FROM laws
WHERE category = $1
ORDER BY title ASC
`, category)
	if err != nil {
		return nil, fmt.Errorf("query laws by category: %w", err)
	}
	return collectLaws(rows)
}

func (r *LawRepository) SearchLawsByDocType(ctx context.Context, docType domain.DocType) ([]domain.Law, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+lawColumns+`
FROM laws
WHERE doc_type = $1
ORDER BY title ASC
`, string(docType))
	if err != nil {
		return nil, fmt.Errorf("query laws by doc type: %w", err)
	}
	return collectLaws(rows)
}

// GetSpecialArticles lists all non-deleted articles carrying one of the
// classification flags, joined with their law for display context. The
// flag name is validated against the known columns before it reaches SQL.
func (r *LawRepository) GetSpecialArticles(ctx context.Context, flag domain.ArticleFlag) ([]domain.FlaggedArticle, error) {
	switch flag {
	case domain.FlagTenantProtection, domain.FlagTaxRelated, domain.FlagDelegation, domain.FlagPenalty:
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "get special articles", fmt.Errorf("unknown flag %q", flag))
	}

	query := fmt.Sprintf(`
SELECT %s, l.title, l.doc_type
FROM articles a
JOIN laws l ON l.id = a.law_id
WHERE a.%s AND NOT a.deleted
ORDER BY l.title ASC, a.article_seq ASC
`, articleColumnsA, string(flag))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query special articles: %w", err)
	}
	defer rows.Close()

	var out []domain.FlaggedArticle
	for rows.Next() {
		var fa domain.FlaggedArticle
		var chunkIDsRaw []byte
		var extra sql.NullString
		var docType string
		err := rows.Scan(
			&fa.ID, &fa.LawID, &fa.ArticleNo, &fa.Title, &fa.Chapter, &fa.Section,
			&fa.Deleted, &fa.TenantProtection, &fa.TaxRelated, &fa.Delegation, &fa.Penalty,
			&chunkIDsRaw, &extra,
			&fa.LawTitle, &docType,
		)
		if err != nil {
			return nil, fmt.Errorf("scan special article: %w", err)
		}
		fa.ChunkIDs = decodeChunkIDs(chunkIDsRaw)
		if extra.Valid {
			fa.Extra = json.RawMessage(extra.String)
		}
		fa.DocType = domain.DocType(docType)
		out = append(out, fa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate special articles: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLaw(row rowScanner) (*domain.Law, error) {
	var law domain.Law
	var docType string
	err := row.Scan(
		&law.ID, &docType, &law.Title, &law.OfficialNumber, &law.EnforcementDate,
		&law.Category, &law.TotalArticles, &law.LastArticleNo, &law.SourceFile,
	)
	if err != nil {
		return nil, err
	}
	law.DocType = domain.DocType(docType)
	return &law, nil
}

func scanArticle(row rowScanner) (*domain.Article, error) {
	var article domain.Article
	var chunkIDsRaw []byte
	var extra sql.NullString
	err := row.Scan(
		&article.ID, &article.LawID, &article.ArticleNo, &article.Title, &article.Chapter, &article.Section,
		&article.Deleted, &article.TenantProtection, &article.TaxRelated, &article.Delegation, &article.Penalty,
		&chunkIDsRaw, &extra,
	)
	if err != nil {
		return nil, err
	}
	article.ChunkIDs = decodeChunkIDs(chunkIDsRaw)
	if extra.Valid {
		article.Extra = json.RawMessage(extra.String)
	}
	return &article, nil
}

func scanArticleWithLaw(row rowScanner) (*domain.Article, *domain.Law, error) {
	var article domain.Article
	var law domain.Law
	var chunkIDsRaw []byte
	var extra sql.NullString
	var docType string
	err := row.Scan(
		&article.ID, &article.LawID, &article.ArticleNo, &article.Title, &article.Chapter, &article.Section,
		&article.Deleted, &article.TenantProtection, &article.TaxRelated, &article.Delegation, &article.Penalty,
		&chunkIDsRaw, &extra,
		&law.ID, &docType, &law.Title, &law.OfficialNumber, &law.EnforcementDate,
		&law.Category, &law.TotalArticles, &law.LastArticleNo, &law.SourceFile,
	)
	if err != nil {
		return nil, nil, err
	}
	article.ChunkIDs = decodeChunkIDs(chunkIDsRaw)
	if extra.Valid {
		article.Extra = json.RawMessage(extra.String)
	}
	law.DocType = domain.DocType(docType)
	return &article, &law, nil
}

func collectLaws(rows *sql.Rows) ([]domain.Law, error) {
	defer rows.Close()

	var laws []domain.Law
	for rows.Next() {
		law, err := scanLaw(rows)
		if err != nil {
			return nil, fmt.Errorf("scan law: %w", err)
		}
		laws = append(laws, *law)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate laws: %w", err)
	}
	return laws, nil
}

func decodeChunkIDs(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return []string{}
	}
	return ids
}

