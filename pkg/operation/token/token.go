// Package token provides the MCP tool showing the cached access token.
package token

import (
	"context"
	"fmt"

	"github.com/go-training/mtd-vat/pkg/core"

	"github.com/mark3labs/mcp-go/mcp"
)

// ShowAuthTokenTool defines the MCP tool for displaying the cached access token.
var ShowAuthTokenTool = mcp.NewTool("show_auth_token",
	mcp.WithDescription("Show the cached access token (masked)"),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("vrn",
		mcp.Description("VAT registration number. Defaults to the server's configured VRN"),
	),
)

// Mask keeps the first six and last two characters of long tokens.
func Mask(token string) string {
	switch {
	case len(token) > 8:
		return token[:6] + "****" + token[len(token)-2:]
	case len(token) > 0:
		return "****"
	default:
		return ""
	}
}

// HandleShowAuthTokenTool is an MCP tool handler that returns the masked
// token cached for the account.
func HandleShowAuthTokenTool(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	if vrn := request.GetString("vrn", ""); vrn != "" {
		ctx = core.WithAccount(ctx, vrn)
	}
	token, account, err := core.TokenFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("missing token for %q: %w", account, err)
	}
	return mcp.NewToolResultText(Mask(token.AccessToken)), nil
}
