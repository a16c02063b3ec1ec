package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
	"github.com/jwpark-dev/lawsearch/internal/core/ports"
)

// Server exposes the retrieval engine as MCP tools over stdio, so an
// LLM agent can call provision search the same way the HTTP surface
// does. Tool results are the JSON response shapes of the engine.
type Server struct {
	mcpServer *server.MCPServer
	searcher  ports.ProvisionSearcher
	browser   ports.LawBrowser
}

func NewServer(name, version string, searcher ports.ProvisionSearcher, browser ports.LawBrowser) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
		searcher:  searcher,
		browser:   browser,
	}
	s.registerTools()
	return s
}

func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	searchTool := mcp.NewTool("search_provisions",
		mcp.WithDescription("Search Korean real-estate law provisions. Modes: hybrid (vector recall verified against the law registry), vector (raw similarity), specific (exact citation like '주택임대차보호법 제7조')."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural-language question or exact citation")),
		mcp.WithString("mode", mcp.Description("hybrid, vector or specific; defaults to hybrid")),
		mcp.WithNumber("limit", mcp.Description("Maximum provisions to return; defaults to 10")),
		mcp.WithString("doc_type", mcp.Description("Restrict to one document type, e.g. 법률 or 시행령")),
		mcp.WithString("category", mcp.Description("Restrict to one corpus category")),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearch)

	articleTool := mcp.NewTool("get_article",
		mcp.WithDescription("Fetch the full text of one article by law title and article number, with related provisions from the delegation graph when available."),
		mcp.WithString("law_title", mcp.Required(), mcp.Description("Law title, fuzzy-matched")),
		mcp.WithString("article_no", mcp.Required(), mcp.Description("Article number, e.g. 제7조 or 제7조의2")),
	)
	s.mcpServer.AddTool(articleTool, s.handleGetArticle)

	specialTool := mcp.NewTool("list_special_articles",
		mcp.WithDescription("List articles carrying a curated flag: is_tenant_protection, is_tax_related, is_delegation or is_penalty."),
		mcp.WithString("flag", mcp.Required(), mcp.Description("Flag name")),
	)
	s.mcpServer.AddTool(specialTool, s.handleSpecialArticles)
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := s.searcher.Search(ctx, domain.SearchRequest{
		Query: query,
		Mode:  domain.SearchMode(request.GetString("mode", "")),
		Limit: request.GetInt("limit", 0),
		Filter: domain.SearchFilter{
			DocType:  request.GetString("doc_type", ""),
			Category: request.GetString("category", ""),
		},
	})
	return jsonToolResult(resp)
}

func (s *Server) handleGetArticle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lawTitle, err := request.RequireString("law_title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	articleNo, err := request.RequireString("article_no")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detail, err := s.searcher.SearchSpecificArticle(ctx, lawTitle, articleNo)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if detail == nil {
		return mcp.NewToolResultText(fmt.Sprintf("article %s %s not found", lawTitle, articleNo)), nil
	}
	return jsonToolResult(detail)
}

func (s *Server) handleSpecialArticles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	flag, err := request.RequireString("flag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	articles, err := s.browser.SpecialArticles(ctx, domain.ArticleFlag(flag))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonToolResult(map[string]any{"articles": articles, "count": len(articles)})
}

func jsonToolResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
