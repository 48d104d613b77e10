// Package mcp exposes the schema catalog and validator as Model Context
// Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SchemasURI is the resource listing every registered schema.
const SchemasURI = "schemata://schemas"

// Server exposes a catalog over MCP.
type Server struct {
	catalog   *catalog.Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates an MCP server for cat.
func NewServer(cat *catalog.Catalog, version string, opts ...Option) *Server {
	s := &Server{
		catalog:   cat,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("schemata-mcp", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on port using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_schemas",
		mcp.WithDescription("List the collection names that have a registered schema."),
	), s.handleListSchemas)

	s.mcpServer.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("Get the schema definition of a collection."),
		mcp.WithString("collection", mcp.Required(), mcp.Description("Collection name")),
	), s.handleGetSchema)

	s.mcpServer.AddTool(mcp.NewTool("validate_document",
		mcp.WithDescription("Validate a JSON document, or a JSON array of documents, against a collection schema."),
		mcp.WithString("collection", mcp.Required(), mcp.Description("Collection name")),
		mcp.WithString("document", mcp.Required(), mcp.Description("JSON document or array of documents")),
	), s.handleValidate)
}

func (s *Server) handleListSchemas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.catalog.Names())
}

func (s *Server) handleGetSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	node, err := s.catalog.Get(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(node)
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	document, err := request.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := runner.Check(s.catalog, collection, []byte(document))
	if err != nil {
		s.logger.Warn("MCP validate: rejected", "collection", collection, "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("validate failed: %v", err)), nil
	}
	return jsonResult(res)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SchemasURI, "Registered Schemas",
		mcp.WithMIMEType("application/json"),
	), s.readSchemas)
}

func (s *Server) readSchemas(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.catalog.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to encode schemas: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SchemasURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
