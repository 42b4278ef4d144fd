package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"youtube_gpt_creator/generator"
)

// Builder returns a pipeline for the configured keys.
type Builder func(req generator.Request) (*generator.Pipeline, error)

// MCPServer exposes the generation pipeline as MCP tools. All calls share one session.
type MCPServer struct {
	build     Builder
	session   *generator.Session
	mcpServer *server.MCPServer
}

// New creates the MCP server and registers its tools.
func New(build Builder, version string) (*MCPServer, error) {
	if build == nil {
		return nil, errors.New("pipeline builder required")
	}
	s := &MCPServer{
		build:   build,
		session: generator.NewSession(uuid.NewString()),
	}
	s.mcpServer = server.NewMCPServer(
		"youtube-gpt-creator",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerTools()
	return s, nil
}

// Server returns the underlying MCP server.
func (s *MCPServer) Server() *server.MCPServer {
	return s.mcpServer
}

func (s *MCPServer) registerTools() {
	generateTool := mcp.NewTool("generate_video_script",
		mcp.WithDescription("Generate a YouTube video title and script for a topic, grounded on a Google search"),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("What the video is about"),
		),
	)
	s.mcpServer.AddTool(generateTool, s.handleGenerate)

	historyTool := mcp.NewTool("get_history",
		mcp.WithDescription("Show the title and script history of this server"),
	)
	s.mcpServer.AddTool(historyTool, s.handleHistory)
}

func (s *MCPServer) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic := strings.TrimSpace(request.GetString("topic", ""))
	if topic == "" {
		return mcp.NewToolResultError("topic parameter required"), nil
	}
	p, err := s.build(generator.Request{Topic: topic})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build pipeline: %v", err)), nil
	}
	res, err := s.session.Run(ctx, p, topic)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate: %v", err)), nil
	}
	return mcp.NewToolResultText(formatResult(res)), nil
}

func (s *MCPServer) handleHistory(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatHistory(s.session)), nil
}

func formatResult(res generator.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", res.Title)
	b.WriteString(res.Script)
	b.WriteString("\n\n## Google Research\n\n")
	b.WriteString(res.Research)
	b.WriteString("\n")
	return b.String()
}

func formatHistory(sess *generator.Session) string {
	if sess.TitleMemory.Len() == 0 {
		return "# History\n\nNothing generated yet."
	}
	var b strings.Builder
	b.WriteString("# History\n\n## Title History\n\n")
	b.WriteString(sess.TitleMemory.Buffer())
	b.WriteString("\n\n## Script History\n\n")
	b.WriteString(sess.ScriptMemory.Buffer())
	b.WriteString("\n")
	return b.String()
}
