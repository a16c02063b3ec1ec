package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*LawRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &LawRepository{db: db}, mock, func() { _ = db.Close() }
}

func lawRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "doc_type", "title", "official_number", "enforcement_date",
		"category", "total_articles", "last_article_no", "source_file",
	})
}

func articleWithLawRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "law_id", "article_no", "title", "chapter", "section",
		"deleted", "is_tenant_protection", "is_tax_related", "is_delegation", "is_penalty",
		"chunk_ids", "extra",
		"l_id", "l_doc_type", "l_title", "l_official_number", "l_enforcement_date",
		"l_category", "l_total_articles", "l_last_article_no", "l_source_file",
	})
}

func TestGetLawByTitleFuzzyOrdersExactMatchFirst(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery(`ILIKE '%' \|\| \$1 \|\| '%'`).
		WithArgs("주택임대차보호법").
		WillReturnRows(lawRows().AddRow(
			int64(1), "법률", "주택임대차보호법", "법률 제19356호", "2023-07-19",
			"임대차", 32, "제32조", "주택임대차보호법.json",
		))

	law, err := repo.GetLawByTitle(context.Background(), "주택임대차보호법", true)
	if err != nil {
		t.Fatalf("GetLawByTitle() error = %v", err)
	}
	if law.Title != "주택임대차보호법" || law.DocType != domain.DocTypeStatute {
		t.Fatalf("unexpected law: %+v", law)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetLawByTitleExactUsesEquality(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery(`WHERE title = \$1`).
		WithArgs("민법").
		WillReturnRows(lawRows().AddRow(
			int64(2), "법률", "민법", "", "", "일반", 1118, "제1118조", "",
		))

	law, err := repo.GetLawByTitle(context.Background(), "민법", false)
	if err != nil {
		t.Fatalf("GetLawByTitle() error = %v", err)
	}
	if law.ID != 2 {
		t.Fatalf("unexpected law id %d", law.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetLawByTitleReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery(`FROM laws`).
		WithArgs("없는 법률").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetLawByTitle(context.Background(), "없는 법률", true)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrLawNotFound) {
		t.Fatalf("expected ErrLawNotFound, got %v", err)
	}
	if !domain.IsNotFound(err) {
		t.Fatalf("IsNotFound should classify law lookups")
	}
}

func TestGetArticleByNumberReturnsBothRecords(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery(`JOIN laws l ON l.id = a.law_id`).
		WithArgs("주택임대차보호법", "제7조").
		WillReturnRows(articleWithLawRows().AddRow(
			int64(11), int64(1), "제7조", "차임 등의 증감청구권", "제2장", "",
			false, true, false, false, false,
			[]byte(`["c-11-0","c-11-1"]`), nil,
			int64(1), "법률", "주택임대차보호법", "법률 제19356호", "2023-07-19",
			"임대차", 32, "제32조", "주택임대차보호법.json",
		))

	article, law, err := repo.GetArticleByNumber(context.Background(), "주택임대차보호법", "제7조")
	if err != nil {
		t.Fatalf("GetArticleByNumber() error = %v", err)
	}
	if article.ArticleNo != "제7조" || !article.TenantProtection {
		t.Fatalf("unexpected article: %+v", article)
	}
	if len(article.ChunkIDs) != 2 {
		t.Fatalf("chunk ids = %v, want 2 entries", article.ChunkIDs)
	}
	if law.Category != "임대차" {
		t.Fatalf("unexpected law: %+v", law)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetArticleByNumberReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery(`JOIN laws l ON l.id = a.law_id`).
		WithArgs("주택임대차보호법", "제999조").
		WillReturnError(sql.ErrNoRows)

	_, _, err := repo.GetArticleByNumber(context.Background(), "주택임대차보호법", "제999조")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestGetChunkIDsMalformedColumnYieldsEmpty(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery(`SELECT chunk_ids FROM articles`).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"chunk_ids"}).AddRow([]byte(`{broken`)))

	ids, err := repo.GetChunkIDs(context.Background(), 11)
	if err != nil {
		t.Fatalf("GetChunkIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty list for malformed column, got %v", ids)
	}
}

func TestGetChunkIDsMissingRowYieldsEmpty(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery(`SELECT chunk_ids FROM articles`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	ids, err := repo.GetChunkIDs(context.Background(), 404)
	if err != nil {
		t.Fatalf("GetChunkIDs() error = %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", ids)
	}
}

func TestSearchLawsByDocType(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery(`WHERE doc_type = \$1`).
		WithArgs("시행령").
		WillReturnRows(lawRows().
			AddRow(int64(2), "시행령", "주택임대차보호법 시행령", "", "", "임대차", 20, "제20조", "").
			AddRow(int64(4), "시행령", "공인중개사법 시행령", "", "", "중개", 38, "제38조", ""))

	laws, err := repo.SearchLawsByDocType(context.Background(), domain.DocTypeDecree)
	if err != nil {
		t.Fatalf("SearchLawsByDocType() error = %v", err)
	}
	if len(laws) != 2 {
		t.Fatalf("laws = %d, want 2", len(laws))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetSpecialArticlesRejectsUnknownFlag(t *testing.T) {
	repo, _, done := newRepoWithMock(t)
	defer done()

	_, err := repo.GetSpecialArticles(context.Background(), domain.ArticleFlag("is_whatever"))
	if err == nil {
		t.Fatalf("expected error for unknown flag")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGetSpecialArticlesJoinsLawContext(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{
		"id", "law_id", "article_no", "title", "chapter", "section",
		"deleted", "is_tenant_protection", "is_tax_related", "is_delegation", "is_penalty",
		"chunk_ids", "extra", "l_title", "l_doc_type",
	}).AddRow(
		int64(12), int64(1), "제8조", "보증금 중 일정액의 보호", "", "",
		false, true, false, false, false,
		[]byte(`[]`), nil, "주택임대차보호법", "법률",
	)

	mock.ExpectQuery(`WHERE a.is_tenant_protection AND NOT a.deleted`).
		WillReturnRows(rows)

	articles, err := repo.GetSpecialArticles(context.Background(), domain.FlagTenantProtection)
	if err != nil {
		t.Fatalf("GetSpecialArticles() error = %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("articles = %d, want 1", len(articles))
	}
	if articles[0].LawTitle != "주택임대차보호법" || articles[0].DocType != domain.DocTypeStatute {
		t.Fatalf("unexpected law context: %+v", articles[0])
	}
}
