package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/papercheck/papercheck/internal/model"
)

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	ID *int `json:"id"`
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Verify.Enabled = false
	cfg.Cache.Enabled = false
	return &cfg
}

// runServer feeds the input lines through a server and returns one parsed
// response per output line.
func runServer(t *testing.T, cfg *model.Config, input string) []rpcResponse {
	t.Helper()

	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:     cfg,
		version: "test",
		in:      strings.NewReader(input),
		out:     &out,
		ctx:     ctx,
		cancel:  cancel,
	}
	if err := s.Start(); err != nil {
		t.Fatalf("server failed: %v", err)
	}

	var responses []rpcResponse
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp rpcResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("bad response line %q: %v", line, err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func contentText(t *testing.T, resp rpcResponse) string {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error response: %+v", resp.Error)
	}
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if len(result.Content) != 1 || result.Content[0].Type != "text" {
		t.Fatalf("expected one text content block, got %+v", result.Content)
	}
	return result.Content[0].Text
}

func TestInitializeAndToolsList(t *testing.T) {
	responses := runServer(t, testConfig(),
		`{"method":"initialize","id":1}`+"\n"+
			`{"method":"tools/list","id":2}`+"\n")

	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}

	var initResult struct {
		ServerInfo map[string]string `json:"serverInfo"`
	}
	if err := json.Unmarshal(responses[0].Result, &initResult); err != nil {
		t.Fatalf("parse initialize result: %v", err)
	}
	if initResult.ServerInfo["name"] != "papercheck" {
		t.Errorf("unexpected server name %q", initResult.ServerInfo["name"])
	}

	var listResult struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(responses[1].Result, &listResult); err != nil {
		t.Fatalf("parse tools/list result: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range listResult.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"verify_paper", "verify_bibliography", "health_check"} {
		if !names[want] {
			t.Errorf("tools/list missing %s", want)
		}
	}
}

func TestVerifyPaperTool(t *testing.T) {
	dir := t.TempDir()
	paper := filepath.Join(dir, "paper.md")
	text := strings.Repeat("This paragraph carries enough connected prose to pass the density checks without trouble. ", 5)
	if err := os.WriteFile(paper, []byte(text+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	call := map[string]any{
		"method": "tools/call",
		"id":     7,
		"params": map[string]any{
			"name": "verify_paper",
			"arguments": map[string]any{
				"paper_path": paper,
			},
		},
	}
	line, _ := json.Marshal(call)

	responses := runServer(t, testConfig(), string(line)+"\n")
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}

	text = contentText(t, responses[0])
	if !strings.Contains(text, "# Paper Verification Report") {
		t.Errorf("expected a markdown report, got %q", text)
	}
	if !strings.Contains(text, "no bibliography supplied") {
		t.Errorf("expected the bibliography skip note, got %q", text)
	}
}

func TestVerifyPaperUnknownCheck(t *testing.T) {
	responses := runServer(t, testConfig(),
		`{"method":"tools/call","id":3,"params":{"name":"verify_paper","arguments":{"paper_path":"x.md","checks":["nonsense"]}}}`+"\n")

	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatalf("expected an error response, got %+v", responses)
	}
	if responses[0].Error.Code != -32602 {
		t.Errorf("expected code -32602, got %d", responses[0].Error.Code)
	}
}

func TestVerifyPaperMissingPath(t *testing.T) {
	responses := runServer(t, testConfig(),
		`{"method":"tools/call","id":4,"params":{"name":"verify_paper","arguments":{}}}`+"\n")

	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatalf("expected an error response, got %+v", responses)
	}
}

func TestHealthCheckTool(t *testing.T) {
	cfg := testConfig()
	cfg.Search.Provider = "serper"

	responses := runServer(t, cfg,
		`{"method":"tools/call","id":5,"params":{"name":"health_check","arguments":{}}}`+"\n")

	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	text := contentText(t, responses[0])
	if !strings.Contains(text, "papercheck test") {
		t.Errorf("expected version line, got %q", text)
	}
	if !strings.Contains(text, "API key: missing") {
		t.Errorf("expected missing-key notice, got %q", text)
	}
}

func TestUnknownMethodAndTool(t *testing.T) {
	responses := runServer(t, testConfig(),
		`{"method":"frobnicate","id":6}`+"\n"+
			`{"method":"tools/call","id":7,"params":{"name":"frobnicate","arguments":{}}}`+"\n")

	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	for i, resp := range responses {
		if resp.Error == nil || resp.Error.Code != -32601 {
			t.Errorf("response %d: expected -32601, got %+v", i, resp.Error)
		}
	}
}

func TestNotificationProducesNoResponse(t *testing.T) {
	responses := runServer(t, testConfig(),
		`{"method":"notifications/initialized"}`+"\n"+
			`{"method":"ping","id":8}`+"\n")

	if len(responses) != 1 {
		t.Fatalf("expected only the ping response, got %d", len(responses))
	}
}

func TestParseError(t *testing.T) {
	responses := runServer(t, testConfig(), "{not json}\n")

	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatalf("expected a parse error response, got %+v", responses)
	}
	if responses[0].Error.Code != -32700 {
		t.Errorf("expected code -32700, got %d", responses[0].Error.Code)
	}
}

func TestShutdownStopsProcessing(t *testing.T) {
	responses := runServer(t, testConfig(),
		`{"method":"shutdown","id":9}`+"\n"+
			`{"method":"ping","id":10}`+"\n")

	if len(responses) != 1 {
		t.Fatalf("expected only the shutdown response, got %d", len(responses))
	}
}
