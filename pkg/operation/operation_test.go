package operation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTool_Order(t *testing.T) {
	tool := &Tool{}
	tool.RegisterRead(server.ServerTool{Tool: mcp.NewTool("r1")})
	tool.RegisterWrite(server.ServerTool{Tool: mcp.NewTool("w1")})
	tool.RegisterRead(server.ServerTool{Tool: mcp.NewTool("r2")})

	var names []string
	for _, st := range tool.Tools() {
		names = append(names, st.Tool.Name)
	}
	assert.Equal(t, []string{"w1", "r1", "r2"}, names)
}

func TestRegisterVATTool(t *testing.T) {
	s := server.NewMCPServer("test", "0.0.0", server.WithToolCapabilities(true))
	RegisterVATTool(s, "http://localhost:0")

	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	for _, name := range []string{"vat_open_obligations", "vat_submit_return", "show_auth_token"} {
		assert.Contains(t, string(data), `"`+name+`"`)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		res  *mcp.CallToolResult
		err  error
		want string
	}{
		{"ok", mcp.NewToolResultText("fine"), nil, ""},
		{"nil result", nil, nil, ""},
		{"handler error", nil, errors.New("boom"), "boom"},
		{"tool error", mcp.NewToolResultError("bad input"), nil, "bad input"},
		{"tool error without content", &mcp.CallToolResult{IsError: true}, nil, "unknown error with no content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage(tt.res, tt.err))
		})
	}
}

func TestToolHandlerMiddleware(t *testing.T) {
	var called bool
	next := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultError("nope"), nil
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = "vat_open_obligations"
	res, err := ToolHandlerMiddleware()(next)(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, res.IsError)
}
