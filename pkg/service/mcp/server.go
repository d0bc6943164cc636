package mcp

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/usecase/memories"
	"github.com/soulthread/memoria/pkg/utils/logging"
)

const serverName = "memoria"

// Server exposes the memories read operations as MCP tools. The operator of
// the MCP session is trusted, so no API key or scope applies.
type Server struct {
	uc     *memories.UseCase
	server *mcp.Server
}

type listMemoriesParams struct {
	UserID    string   `json:"userId" jsonschema:"Owner of the memories"`
	Page      int      `json:"page,omitempty" jsonschema:"Page number starting at 1 (default 1)"`
	PageSize  int      `json:"pageSize,omitempty" jsonschema:"Records per page, at most 100 (default 50)"`
	SortBy    string   `json:"sortBy,omitempty" jsonschema:"Field each collection is ordered by (default createdAt)"`
	SortOrder string   `json:"sortOrder,omitempty" jsonschema:"asc or desc (default desc)"`
	StartDate *int64   `json:"startDate,omitempty" jsonschema:"Lower createdAt bound in epoch milliseconds"`
	EndDate   *int64   `json:"endDate,omitempty" jsonschema:"Upper createdAt bound in epoch milliseconds"`
	Tags      []string `json:"tags,omitempty" jsonschema:"Keep voice events with one of these people and dreams with one of these themes"`
	Emotion   string   `json:"emotion,omitempty" jsonschema:"Keep memories with exactly this emotion"`
}

type aggregateTagsParams struct {
	UserID   string `json:"userId" jsonschema:"Owner of the memories"`
	Category string `json:"category,omitempty" jsonschema:"One of people, tasks, emotions, themes, symbols. Omit for all."`
}

type getMetadataParams struct {
	UserID string `json:"userId" jsonschema:"Owner of the memories"`
	Type   string `json:"type,omitempty" jsonschema:"One of usage, analytics, summary. Omit for all."`
}

type searchEmbeddingsParams struct {
	UserID    string   `json:"userId" jsonschema:"Owner of the memories"`
	Query     string   `json:"query,omitempty" jsonschema:"Text to rank memories against"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"Minimum cosine similarity (default 0.7, 0 disables)"`
	Limit     int      `json:"limit,omitempty" jsonschema:"Maximum results, at most 50 (default 10)"`
}

// NewServer creates an MCP server with the memory tools registered
func NewServer(uc *memories.UseCase, version string) *Server {
	s := &Server{
		uc: uc,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: version,
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_memories",
		Description: "List voice events, dream events and reflections of a user, newest first, with pagination and filters",
	}, s.listMemories)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "aggregate_tags",
		Description: "Aggregate people, tasks, emotions, themes and symbols of a user's memories by frequency",
	}, s.aggregateTags)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_metadata",
		Description: "Compute usage, analytics and summary metrics of a user's memories",
	}, s.getMetadata)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_embeddings",
		Description: "Return embedding vectors of voice and dream events, ranked by similarity to a query when given",
	}, s.searchEmbeddings)

	return s
}

// Run serves the tools on transport until the client disconnects or ctx is done
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	if err := s.server.Run(ctx, transport); err != nil {
		return goerr.Wrap(err, "mcp server stopped")
	}
	return nil
}

// Connect starts one session on transport without blocking
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	session, err := s.server.Connect(ctx, transport, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect mcp session")
	}
	return session, nil
}

// result renders out as JSON text. Request errors are reported to the client
// as tool errors with their message, other errors with a generic one.
func result(ctx context.Context, tool string, out any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		msg := "Internal server error"
		if reqErr, ok := model.AsRequestError(err); ok {
			msg = reqErr.Message
		} else {
			logging.From(ctx).Error("mcp tool failed", "tool", tool, "error", err)
		}
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		}, nil, nil
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to encode tool result", goerr.V("tool", tool))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil, nil
}

func (s *Server) listMemories(ctx context.Context, req *mcp.CallToolRequest, params *listMemoriesParams) (*mcp.CallToolResult, any, error) {
	out, err := s.uc.List(ctx, memories.ListInput{
		UserID:    params.UserID,
		Page:      params.Page,
		PageSize:  params.PageSize,
		SortBy:    params.SortBy,
		SortOrder: model.SortOrder(params.SortOrder),
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
		Tags:      params.Tags,
		Emotion:   params.Emotion,
	})
	return result(ctx, "list_memories", out, err)
}

func (s *Server) aggregateTags(ctx context.Context, req *mcp.CallToolRequest, params *aggregateTagsParams) (*mcp.CallToolResult, any, error) {
	out, err := s.uc.Tags(ctx, memories.TagsInput{
		UserID:   params.UserID,
		Category: model.TagCategory(params.Category),
	})
	return result(ctx, "aggregate_tags", out, err)
}

func (s *Server) getMetadata(ctx context.Context, req *mcp.CallToolRequest, params *getMetadataParams) (*mcp.CallToolResult, any, error) {
	out, err := s.uc.Metadata(ctx, memories.MetadataInput{
		UserID: params.UserID,
		Type:   model.MetricType(params.Type),
	})
	return result(ctx, "get_metadata", out, err)
}

func (s *Server) searchEmbeddings(ctx context.Context, req *mcp.CallToolRequest, params *searchEmbeddingsParams) (*mcp.CallToolResult, any, error) {
	out, err := s.uc.Embeddings(ctx, memories.EmbeddingsInput{
		UserID:    params.UserID,
		Query:     params.Query,
		Threshold: params.Threshold,
		Limit:     params.Limit,
	})
	return result(ctx, "search_embeddings", out, err)
}
