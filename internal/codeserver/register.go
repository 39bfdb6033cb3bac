package codeserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcode/internal/extraction"
)

// ExtractInput is the input for extract_code.
type ExtractInput struct {
	URL   string `json:"url" jsonschema:"YouTube watch/share/embed/shorts URL or bare 11-character video ID"`
	Force bool   `json:"force,omitempty" jsonschema:"discard a finished extraction for the same video and run again"`
}

// IDInput is the input for tools addressing one record.
type IDInput struct {
	ID string `json:"id" jsonschema:"extraction record ID returned by extract_code"`
}

// ListInput is the input for extraction_list.
type ListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum records to return (default 50)"`
}

// ListOutput is the output of extraction_list.
type ListOutput struct {
	Records []RecordView `json:"records"`
	Total   int          `json:"total"`
}

// ArchiveOutput is the output of extraction_archive.
type ArchiveOutput struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Files    int    `json:"files"`
}

// RegisterTools registers extract_code, extraction_status, extraction_list
// and extraction_archive on server.
func RegisterTools(server *mcp.Server, svc Extractor) {
	registerExtract(server, svc)
	registerStatus(server, svc)
	registerList(server, svc)
	registerArchive(server, svc)
}

func registerExtract(server *mcp.Server, svc Extractor) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_code",
		Description: "Queue code extraction for a YouTube video. Returns the extraction record immediately; poll extraction_status with its id until status is completed, no_code_detected or failed. An existing record for the same video is returned unless force is set.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ExtractInput) (*mcp.CallToolResult, RecordView, error) {
		if input.URL == "" {
			return nil, RecordView{}, errors.New("url is required")
		}
		rec, err := svc.Submit(ctx, input.URL, input.Force)
		if err != nil {
			return nil, RecordView{}, err
		}
		return nil, viewOf(rec, false), nil
	})
}

func registerStatus(server *mcp.Server, svc Extractor) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extraction_status",
		Description: "Get an extraction record by id, including the generated project (stack, files, guides) once completed.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, RecordView, error) {
		if input.ID == "" {
			return nil, RecordView{}, errors.New("id is required")
		}
		rec, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, RecordView{}, err
		}
		return nil, viewOf(rec, true), nil
	})
}

func registerList(server *mcp.Server, svc Extractor) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extraction_list",
		Description: "List extraction records, newest first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
		records, err := svc.List(ctx, input.Limit)
		if err != nil {
			return nil, ListOutput{}, err
		}
		views := viewsOf(records)
		return nil, ListOutput{Records: views, Total: len(views)}, nil
	})
}

func registerArchive(server *mcp.Server, svc Extractor) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extraction_archive",
		Description: "Build the ZIP archive (README, code files, SETUP.md, dependency manifests) for a completed extraction and return its path on the server.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, ArchiveOutput, error) {
		if input.ID == "" {
			return nil, ArchiveOutput{}, errors.New("id is required")
		}
		p, rec, err := svc.Download(ctx, input.ID)
		switch {
		case errors.Is(err, extraction.ErrNotCompleted):
			return nil, ArchiveOutput{}, fmt.Errorf("extraction %s is %s; wait for completed", input.ID, rec.Status)
		case err != nil:
			return nil, ArchiveOutput{}, err
		}
		return nil, ArchiveOutput{Path: p, Filename: archiveFilename(rec), Files: len(rec.Result.Files)}, nil
	})
}
