package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/demark"
	"github.com/aretw0/demark/pkg/domain"
	"github.com/aretw0/demark/pkg/sanitize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RulesURI identifies the resource listing the normalization stages.
const RulesURI = "demark://rules"

// Normalizer defines what the MCP server needs from the markup service.
type Normalizer interface {
	Normalize(ctx context.Context, text string) string
	Render(ctx context.Context, resp *domain.Response) domain.View
	Rules() []string
}

// Server wraps a Normalizer and exposes it as an MCP Server.
type Server struct {
	normalizer   Normalizer
	logger       *slog.Logger
	maxInputSize int
	mcpServer    *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInputSize overrides the sanitizer limit for tool arguments.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(normalizer Normalizer, opts ...Option) *Server {
	s := &Server{
		normalizer:   normalizer,
		logger:       slog.Default(),
		maxInputSize: sanitize.MaxInputSize(),
		mcpServer:    server.NewMCPServer("demark-mcp", strings.TrimSpace(demark.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is cancelled.
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

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
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

		s.logger.Info("Shutdown signal received, shutting down MCP server")
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

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: normalize_text
	s.mcpServer.AddTool(mcp.NewTool("normalize_text",
		mcp.WithDescription("Strip Markdown markup (headings, emphasis, lists, code, links, rules) from a text and return plain text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Markdown text to normalize")),
	), s.handleNormalize)

	// TOOL: render_response
	s.mcpServer.AddTool(mcp.NewTool("render_response",
		mcp.WithDescription("Turn an assistant response envelope into a display view with plain-text summary, tool badges and numbered steps."),
		mcp.WithString("response", mcp.Required(), mcp.Description("JSON object with status, summary, query, tools_used, chain_used, timeline and error")),
		mcp.WithOutputSchema[domain.View](),
	), mcp.NewStructuredToolHandler(s.handleRender))
}

func (s *Server) handleNormalize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	clean, err := sanitize.InputWithLimit(text, s.maxInputSize)
	if err != nil {
		s.logger.Warn("MCP Normalize: Input rejected", "error", err, "size", len(text))
		return mcp.NewToolResultError(fmt.Sprintf("input rejected: %v", err)), nil
	}

	return mcp.NewToolResultText(s.normalizer.Normalize(ctx, clean)), nil
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.View, error) {
	raw, _ := args["response"].(string)

	clean, err := sanitize.InputWithLimit(raw, s.maxInputSize)
	if err != nil {
		s.logger.Warn("MCP Render: Input rejected", "error", err, "size", len(raw))
		return domain.View{}, fmt.Errorf("input rejected: %w", err)
	}

	var resp domain.Response
	if err := json.Unmarshal([]byte(clean), &resp); err != nil {
		return domain.View{}, fmt.Errorf("invalid response envelope: %w", err)
	}

	return s.normalizer.Render(ctx, &resp), nil
}

func (s *Server) registerResources() {
	// EXPOSE: demark://rules
	s.mcpServer.AddResource(mcp.NewResource(RulesURI, "Normalization Stages",
		mcp.WithResourceDescription("Ordered names of the stages applied by normalize_text"),
		mcp.WithMIMEType("application/json"),
	), s.handleRules)
}

func (s *Server) handleRules(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.normalizer.Rules())
	if err != nil {
		return nil, fmt.Errorf("failed to encode rules: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RulesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
