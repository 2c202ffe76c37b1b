package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fermata-io/purgatory"
	"github.com/fermata-io/purgatory/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Store defines the slice of the purgatory store the MCP surface needs.
type Store interface {
	Resolve(ctx context.Context, id string, value any) (*purgatory.Resolution, error)
	Cancel(ctx context.Context, id string) (*domain.Token, error)
	Sweep(ctx context.Context) ([]*domain.Token, error)
	ListPending() []*domain.Token
	ListAll() []*domain.Token
	Get(id string) (*domain.Token, error)
}

// Server exposes the suspension ledger as an MCP server, so an agent-side
// host can list pending decisions and resolve them over stdio.
type Server struct {
	store     Store
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(store Store, version string) *Server {
	s := &Server{
		store:     store,
		mcpServer: server.NewMCPServer("purgatory-mcp", version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	listPending := mcp.NewTool("list_pending",
		mcp.WithDescription("List every suspension token currently awaiting a decision."),
	)
	s.mcpServer.AddTool(listPending, s.handleListPending)

	listAll := mcp.NewTool("list_all",
		mcp.WithDescription("List every token in the ledger, including resolved, cancelled and voided ones."),
	)
	s.mcpServer.AddTool(listAll, s.handleListAll)

	getToken := mcp.NewTool("get_token",
		mcp.WithDescription("Fetch one token by ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The token ID (e.g. sem-1a2b3c4d)")),
	)
	s.mcpServer.AddTool(getToken, s.handleGetToken)

	resolveToken := mcp.NewTool("resolve_token",
		mcp.WithDescription("Resolve a pending token with a decision value, unblocking the suspended computation."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The token ID")),
		mcp.WithString("value", mcp.Required(), mcp.Description("The resolution value (free-form; the token's options are suggestions)")),
	)
	s.mcpServer.AddTool(resolveToken, s.handleResolveToken)

	cancelToken := mcp.NewTool("cancel_token",
		mcp.WithDescription("Cancel a pending token without a resolution value."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The token ID")),
	)
	s.mcpServer.AddTool(cancelToken, s.handleCancelToken)

	sweep := mcp.NewTool("sweep",
		mcp.WithDescription("Void every pending token whose deadline has passed. Returns the newly voided tokens."),
	)
	s.mcpServer.AddTool(sweep, s.handleSweep)
}

// tokenView mirrors the HTTP adapter's response shape: the wire form plus
// the derived status.
type tokenView struct {
	*domain.Token
	Status domain.Status `json:"status"`
}

func views(tokens []*domain.Token) []tokenView {
	out := make([]tokenView, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, tokenView{Token: t, Status: t.Status()})
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleListPending(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(views(s.store.ListPending()))
}

func (s *Server) handleListAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(views(s.store.ListAll()))
}

func (s *Server) handleGetToken(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	token, err := s.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tokenView{Token: token, Status: token.Status()})
}

func (s *Server) handleResolveToken(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.store.Resolve(ctx, id, value)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"token": tokenView{Token: res.Token, Status: res.Token.Status()},
		"value": res.Value,
	})
}

func (s *Server) handleCancelToken(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	token, err := s.store.Cancel(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tokenView{Token: token, Status: token.Status()})
}

func (s *Server) handleSweep(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	voided, err := s.store.Sweep(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(views(voided))
}
