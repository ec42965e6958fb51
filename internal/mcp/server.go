package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/brightfin/rbac-rag/internal/engine"
	"github.com/brightfin/rbac-rag/internal/retrieval"
	"github.com/brightfin/rbac-rag/internal/storage"
)

// Server wraps the MCP server with dependencies.
type Server struct {
	server *mcp.Server
}

// Config holds server dependencies.
type Config struct {
	Engine     *engine.Engine
	Retriever  *retrieval.Retriever
	Storage    *storage.Storage
	Collection string
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "fintech-rbac-rag",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a question from the indexed company documents, scoped to the requester's role. Returns the generated answer with source citations and evidence metadata.",
	}, makeAskHandler(cfg.Engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_docs",
		Description: "Search the indexed company documents semantically, scoped to the requester's role. Returns matching chunks with relevance scores.",
	}, makeSearchHandler(cfg.Retriever))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_index_status",
		Description: "Get the current status of the document index including point counts, embedding dimension, and sampled role and file-type distributions.",
	}, makeStatusHandler(cfg.Storage, cfg.Collection))

	return &Server{server: server}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
