// Package operation exposes the VAT client as MCP tools.
package operation

import (
	"github.com/go-training/mtd-vat/pkg/operation/obligation"
	"github.com/go-training/mtd-vat/pkg/operation/token"
	"github.com/go-training/mtd-vat/pkg/vat"

	"github.com/mark3labs/mcp-go/server"
)

/*
RegisterVATTool registers the VAT tools to the specified MCPServer instance.

Parameters:
  - s: Pointer to the MCPServer instance where the tools will be registered.
  - apiBase: Base URL of the VAT API.
  - opts: Options passed to every vat.Client the tools create.

Every tool reads the cached token of the account found in the call context.
*/
func RegisterVATTool(s *server.MCPServer, apiBase string, opts ...vat.Option) {
	tool := &Tool{}
	h := obligation.NewHandler(apiBase, opts...)

	tool.RegisterWrite(server.ServerTool{
		Tool:    obligation.SubmitReturnTool,
		Handler: h.HandleSubmitReturn,
	})
	tool.RegisterRead(server.ServerTool{
		Tool:    obligation.OpenObligationsTool,
		Handler: h.HandleOpenObligations,
	})
	tool.RegisterRead(server.ServerTool{
		Tool:    token.ShowAuthTokenTool,
		Handler: token.HandleShowAuthTokenTool,
	})

	s.AddTools(tool.Tools()...)
}

/*
Tool manages collections of tools to be registered with an MCPServer.

Fields:
  - write: Stores all ServerTools registered as write operations.
  - read: Stores all ServerTools registered as read operations.
*/
type Tool struct {
	write []server.ServerTool
	read  []server.ServerTool
}

// RegisterWrite registers a ServerTool as a write operation.
func (t *Tool) RegisterWrite(s server.ServerTool) {
	t.write = append(t.write, s)
}

// RegisterRead registers a ServerTool as a read operation.
func (t *Tool) RegisterRead(s server.ServerTool) {
	t.read = append(t.read, s)
}

// Tools returns write tools first, then read tools.
func (t *Tool) Tools() []server.ServerTool {
	tools := make([]server.ServerTool, 0, len(t.write)+len(t.read))
	tools = append(tools, t.write...)
	tools = append(tools, t.read...)
	return tools
}
