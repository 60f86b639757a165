// Package mcp exposes paper verification as Model Context Protocol tools over
// stdin/stdout. The server is a thin shim: it loads nothing itself and holds
// no detection logic; every tool call goes through the pipeline.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/papercheck/papercheck/internal/model"
	"github.com/papercheck/papercheck/internal/pipeline"
	"github.com/papercheck/papercheck/internal/report"
)

// Server speaks JSON-RPC 2.0, one message per line.
type Server struct {
	cfg     *model.Config
	version string

	in  io.Reader
	out io.Writer

	ctx    context.Context
	cancel context.CancelFunc
}

// MCPRequest is a request from the MCP client.
type MCPRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
	ID     *int            `json:"id,omitempty"`
}

// NewServer creates a server bound to stdin/stdout.
func NewServer(cfg *model.Config, version string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:     cfg,
		version: version,
		in:      os.Stdin,
		out:     os.Stdout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start reads requests until EOF or shutdown.
func (s *Server) Start() error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)

	for scanner.Scan() {
		select {
		case <-s.ctx.Done():
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.sendError(nil, -32700, "Parse error")
			continue
		}
		s.handleRequest(&req)
	}
	return scanner.Err()
}

func (s *Server) handleRequest(req *MCPRequest) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "ping":
		s.sendResult(req.ID, map[string]any{})
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolCall(req)
	case "notifications/initialized", "initialized":
		// Client notification; no response required.
	case "shutdown":
		s.cancel()
		s.sendResult(req.ID, map[string]any{})
	default:
		if req.ID != nil {
			s.sendError(req.ID, -32601, fmt.Sprintf("Method not found: %s", req.Method))
		}
	}
}

func (s *Server) handleInitialize(req *MCPRequest) {
	s.sendResult(req.ID, map[string]any{
		"protocolVersion": "2024-11-05",
		"serverInfo": map[string]string{
			"name":    "papercheck",
			"version": s.version,
		},
		"capabilities": map[string]any{
			"tools": map[string]bool{},
		},
	})
}

func (s *Server) handleToolsList(req *MCPRequest) {
	tools := []map[string]any{
		{
			"name":        "verify_paper",
			"description": "Run all quality checks and bibliography verification on a paper",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"paper_path": map[string]any{
						"type":        "string",
						"description": "Path to the paper markup file",
					},
					"bib_path": map[string]any{
						"type":        "string",
						"description": "Path to the BibTeX bibliography (discovered next to the paper when omitted)",
					},
					"checks": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Restrict to these checks (sparsity, stereotype, formula, citation, image, code, reference_count, bibliography)",
					},
					"min_references": map[string]any{
						"type":        "number",
						"description": "Override the expected minimum number of distinct cited works",
					},
					"render": map[string]any{
						"type":        "string",
						"enum":        []string{"markdown", "json"},
						"description": "Report format returned in the tool result (default markdown)",
					},
				},
				"required": []string{"paper_path"},
			},
		},
		{
			"name":        "verify_bibliography",
			"description": "Verify that bibliography entries correspond to findable real works",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"bib_path": map[string]any{
						"type":        "string",
						"description": "Path to the BibTeX bibliography",
					},
					"paper_path": map[string]any{
						"type":        "string",
						"description": "Optional paper whose citations restrict which entries are verified",
					},
					"render": map[string]any{
						"type":        "string",
						"enum":        []string{"markdown", "json"},
						"description": "Report format returned in the tool result (default markdown)",
					},
				},
				"required": []string{"bib_path"},
			},
		},
		{
			"name":        "health_check",
			"description": "Report server version, search credentials, and cache state",
			"inputSchema": map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}

	s.sendResult(req.ID, map[string]any{"tools": tools})
}

func (s *Server) handleToolCall(req *MCPRequest) {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.sendError(req.ID, -32602, "Invalid params")
		return
	}

	args, _ := json.Marshal(params.Arguments)

	switch params.Name {
	case "verify_paper":
		s.handleVerifyPaper(req, args)
	case "verify_bibliography":
		s.handleVerifyBibliography(req, args)
	case "health_check":
		s.handleHealthCheck(req)
	default:
		s.sendError(req.ID, -32601, fmt.Sprintf("Tool not found: %s", params.Name))
	}
}

func (s *Server) handleVerifyPaper(req *MCPRequest, args json.RawMessage) {
	var callReq struct {
		PaperPath     string   `json:"paper_path"`
		BibPath       string   `json:"bib_path"`
		Checks        []string `json:"checks"`
		MinReferences int      `json:"min_references"`
		Render        string   `json:"render"`
	}
	if err := json.Unmarshal(args, &callReq); err != nil {
		s.sendError(req.ID, -32602, "Invalid arguments for verify_paper")
		return
	}
	if callReq.PaperPath == "" {
		s.sendError(req.ID, -32602, "verify_paper requires paper_path")
		return
	}

	pipe, err := s.pipelineFor(callReq.Checks, callReq.MinReferences)
	if err != nil {
		s.sendError(req.ID, -32602, err.Error())
		return
	}

	rep, err := pipe.CheckFiles(s.ctx, callReq.PaperPath, callReq.BibPath)
	if err != nil {
		s.sendError(req.ID, -32603, fmt.Sprintf("Check failed: %v", err))
		return
	}
	s.sendReport(req.ID, rep, callReq.Render)
}

func (s *Server) handleVerifyBibliography(req *MCPRequest, args json.RawMessage) {
	var callReq struct {
		BibPath   string `json:"bib_path"`
		PaperPath string `json:"paper_path"`
		Render    string `json:"render"`
	}
	if err := json.Unmarshal(args, &callReq); err != nil {
		s.sendError(req.ID, -32602, "Invalid arguments for verify_bibliography")
		return
	}
	if callReq.BibPath == "" {
		s.sendError(req.ID, -32602, "verify_bibliography requires bib_path")
		return
	}

	pipe, err := pipeline.New(s.cfg)
	if err != nil {
		s.sendError(req.ID, -32603, err.Error())
		return
	}

	rep, err := pipe.CheckBibliography(s.ctx, callReq.BibPath, callReq.PaperPath)
	if err != nil {
		s.sendError(req.ID, -32603, fmt.Sprintf("Check failed: %v", err))
		return
	}
	s.sendReport(req.ID, rep, callReq.Render)
}

func (s *Server) handleHealthCheck(req *MCPRequest) {
	var b strings.Builder
	fmt.Fprintf(&b, "papercheck %s\n\n", s.version)
	fmt.Fprintf(&b, "Search provider: %s\n", s.cfg.Search.Provider)

	if s.cfg.Search.Provider == "serper" {
		if s.cfg.Search.APIKey != "" {
			b.WriteString("API key: configured\n")
		} else {
			b.WriteString("API key: missing (bibliography verification will be skipped)\n")
		}
	}

	if s.cfg.Cache.Enabled {
		if err := os.MkdirAll(s.cfg.Cache.Dir, 0755); err != nil {
			fmt.Fprintf(&b, "Cache: unusable (%v)\n", err)
		} else {
			fmt.Fprintf(&b, "Cache: %s\n", s.cfg.Cache.Dir)
		}
	} else {
		b.WriteString("Cache: disabled\n")
	}

	if s.cfg.LLM.Provider != "" {
		fmt.Fprintf(&b, "Advisory summary: %s\n", s.cfg.LLM.Provider)
	}

	s.sendText(req.ID, b.String())
}

// pipelineFor builds a pipeline honoring per-call check and threshold
// overrides without touching the server's base configuration.
func (s *Server) pipelineFor(checks []string, minReferences int) (*pipeline.Pipeline, error) {
	cfg, err := s.cfg.WithOnly(checks)
	if err != nil {
		return nil, err
	}
	if minReferences > 0 {
		cfg.Detectors.ReferenceCount.Minimum = minReferences
	}
	return pipeline.New(&cfg)
}

func (s *Server) sendReport(id *int, rep *model.Report, render string) {
	var text string
	if render == "json" {
		data, err := report.RenderJSON(rep)
		if err != nil {
			s.sendError(id, -32603, fmt.Sprintf("Render failed: %v", err))
			return
		}
		text = string(data)
	} else {
		text = report.RenderMarkdown(rep, report.RenderOptions{})
	}
	s.sendText(id, text)
}

func (s *Server) sendText(id *int, text string) {
	s.sendResult(id, map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
	})
}

func (s *Server) sendResult(id *int, result any) {
	s.send(map[string]any{
		"jsonrpc": "2.0",
		"result":  result,
		"id":      id,
	})
}

func (s *Server) sendError(id *int, code int, message string) {
	s.send(map[string]any{
		"jsonrpc": "2.0",
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
		"id": id,
	})
}

func (s *Server) send(response map[string]any) {
	data, err := json.Marshal(response)
	if err != nil {
		log.Error().Err(err).Msg("marshal mcp response")
		return
	}
	fmt.Fprintln(s.out, string(data))
}
