package neo4j

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
	"github.com/jwpark-dev/lawsearch/internal/infrastructure/resilience"
)

// Client reads the delegation graph between provisions. The graph is
// populated by the ingestion pipeline: a (:Provision) node per article,
// keyed by law title and article number, with DELEGATES_TO and
// REFERS_TO relationships extracted from article text. The engine only
// traverses; it never writes.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	executor *resilience.Executor
}

type Options struct {
	Database           string
	ConnectTimeout     time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(uri, username, password string) (*Client, error) {
	return NewWithOptions(uri, username, password, Options{})
}

func NewWithOptions(uri, username, password string, options Options) (*Client, error) {
	database := options.Database
	if database == "" {
		database = "neo4j"
	}
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(context.Background())
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	return &Client{driver: driver, database: database, executor: options.ResilienceExecutor}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// RelatedProvisions returns provisions linked to the given article in
// either direction, nearest first. An article with no node in the graph
// yields an empty result, not an error.
func (c *Client) RelatedProvisions(ctx context.Context, lawTitle, articleNo string) ([]domain.RelatedProvision, error) {
	var related []domain.RelatedProvision
	call := func(ctx context.Context) error {
		var err error
		related, err = c.relatedProvisions(ctx, lawTitle, articleNo)
		return err
	}
	if c.executor != nil {
		if err := c.executor.Execute(ctx, "neo4j.related", call, classifyNeo4jError); err != nil {
			return nil, err
		}
		return related, nil
	}
	if err := call(ctx); err != nil {
		return nil, err
	}
	return related, nil
}

func (c *Client) relatedProvisions(ctx context.Context, lawTitle, articleNo string) ([]domain.RelatedProvision, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	query := `
		MATCH (p:Provision {law_title: $law_title, article_no: $article_no})-[r]-(q:Provision)
		RETURN q.law_title AS law_title,
		       q.article_no AS article_no,
		       q.doc_type AS doc_type,
		       type(r) AS relation
		ORDER BY relation, law_title, article_no
		LIMIT 20
	`

	result, err := session.Run(ctx, query, map[string]any{
		"law_title":  lawTitle,
		"article_no": articleNo,
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j related provisions: %w", err)
	}

	var related []domain.RelatedProvision
	for result.Next(ctx) {
		record := result.Record()
		related = append(related, domain.RelatedProvision{
			LawTitle:  recordString(record, "law_title"),
			ArticleNo: recordString(record, "article_no"),
			DocType:   domain.DocType(recordString(record, "doc_type")),
			Relation:  recordString(record, "relation"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("neo4j related provisions stream: %w", err)
	}
	return related, nil
}

func classifyNeo4jError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	if neo4j.IsConnectivityError(err) || neo4j.IsRetryable(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

func recordString(record *neo4j.Record, key string) string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return s
}
