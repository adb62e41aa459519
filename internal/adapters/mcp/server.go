// Package mcpadapter exposes the filename classifier as Model Context
// Protocol tools so assistants can sort site documents without the HTTP API.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
	"github.com/kirillkom/sitedocs/internal/core/ports"
)

const (
	serverName = "sitedocs"

	toolClassifyFilename = "classify_filename"
	toolListCategories   = "list_document_categories"
	toolMimeType         = "mime_type_for_filename"
)

type Server struct {
	classifier ports.FilenameClassifier
	mcp        *server.MCPServer
}

func NewServer(classifier ports.FilenameClassifier, version string) *Server {
	s := &Server{
		classifier: classifier,
		mcp: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool(toolClassifyFilename,
		mcp.WithDescription("Classify a construction site document by its filename. Returns the category with display name, icon and color."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("File name including extension, e.g. 請求書_2024.pdf")),
		mcp.WithBoolean("detailed", mcp.Description("Return confidence and matched keywords from the weighted classifier")),
	), s.classifyFilename)

	s.mcp.AddTool(mcp.NewTool(toolListCategories,
		mcp.WithDescription("List every document category with its presentation attributes."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool(toolMimeType,
		mcp.WithDescription("Guess the MIME type of a file from its extension."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("File name including extension")),
	), s.mimeType)
}

// simpleClassification is the first-match answer returned when detailed is
// not requested.
type simpleClassification struct {
	Filename    string           `json:"filename"`
	Category    doctype.Category `json:"category"`
	DisplayName string           `json:"display_name"`
	IconKey     string           `json:"icon_key"`
	ThemeColor  string           `json:"theme_color"`
	MimeType    string           `json:"mime_type"`
}

func (s *Server) classifyFilename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil || filename == "" {
		return mcp.NewToolResultError("filename is required"), nil
	}

	result := s.classifier.ClassifyFilename(ctx, filename)
	if req.GetBool("detailed", false) {
		return jsonResult(result)
	}
	return jsonResult(simpleClassification{
		Filename:    result.Filename,
		Category:    result.SimpleCategory,
		DisplayName: doctype.DisplayName(result.SimpleCategory),
		IconKey:     doctype.IconKey(result.SimpleCategory),
		ThemeColor:  doctype.ThemeColor(result.SimpleCategory),
		MimeType:    result.MimeType,
	})
}

func (s *Server) listCategories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{"categories": s.classifier.Categories()})
}

func (s *Server) mimeType(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil || filename == "" {
		return mcp.NewToolResultError("filename is required"), nil
	}
	return jsonResult(map[string]string{
		"filename":  filename,
		"mime_type": doctype.MimeTypeFromExtension(filename),
	})
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// ServeStdio blocks until ctx is cancelled or stdin is closed. Protocol
// errors go to logger since stdout carries the protocol.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer, logger *slog.Logger) error {
	stdio := server.NewStdioServer(s.mcp)
	if logger != nil {
		stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
	}
	return stdio.Listen(ctx, in, out)
}

// HTTPHandler serves the streamable HTTP transport.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}
