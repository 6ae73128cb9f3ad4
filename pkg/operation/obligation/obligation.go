// Package obligation provides MCP tools for listing open VAT obligations and
// submitting returns.
package obligation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-training/mtd-vat/pkg/core"
	"github.com/go-training/mtd-vat/pkg/vat"

	"github.com/mark3labs/mcp-go/mcp"
)

// OpenObligationsTool lists the open obligations of a VAT registration.
var OpenObligationsTool = mcp.NewTool("vat_open_obligations",
	mcp.WithDescription("List open VAT return obligations, oldest period first"),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("vrn",
		mcp.Description("VAT registration number. Defaults to the server's configured VRN"),
	),
)

// SubmitReturnTool submits a finalised nine box VAT return. Boxes 3 and 5 are
// derived.
var SubmitReturnTool = mcp.NewTool("vat_submit_return",
	mcp.WithDescription("Submit a finalised VAT return for an open period"),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithString("vrn",
		mcp.Description("VAT registration number. Defaults to the server's configured VRN"),
	),
	mcp.WithString("period_key",
		mcp.Description("Period key of an open obligation"),
		mcp.Required(),
	),
	mcp.WithNumber("box1", mcp.Description("VAT due on sales and other outputs"), mcp.Required()),
	mcp.WithNumber("box2", mcp.Description("VAT due on acquisitions from EU Member States"), mcp.Required()),
	mcp.WithNumber("box4", mcp.Description("VAT reclaimed on purchases and other inputs"), mcp.Required()),
	mcp.WithNumber("box6", mcp.Description("Total sales excluding VAT, whole pounds"), mcp.Required()),
	mcp.WithNumber("box7", mcp.Description("Total purchases excluding VAT, whole pounds"), mcp.Required()),
	mcp.WithNumber("box8", mcp.Description("Goods supplied to EU Member States excluding VAT, whole pounds"), mcp.Required()),
	mcp.WithNumber("box9", mcp.Description("Acquisitions from EU Member States excluding VAT, whole pounds"), mcp.Required()),
)

// Handler creates a VAT client per call from the token cached for the
// account in the call context.
type Handler struct {
	apiBase string
	opts    []vat.Option
}

// NewHandler creates a Handler for the VAT API at apiBase.
func NewHandler(apiBase string, opts ...vat.Option) *Handler {
	return &Handler{apiBase: apiBase, opts: opts}
}

func (h *Handler) client(ctx context.Context, request mcp.CallToolRequest) (*vat.Client, error) {
	if vrn := request.GetString("vrn", ""); vrn != "" {
		ctx = core.WithAccount(ctx, vrn)
	}
	token, account, err := core.TokenFromContext(ctx)
	if errors.Is(err, core.ErrMissingToken) {
		return nil, fmt.Errorf("no cached token for %s, authorize with mtd-vat first", account)
	}
	if err != nil {
		return nil, err
	}
	return vat.NewClient(h.apiBase, token, account, h.opts...), nil
}

// HandleOpenObligations returns the open obligations as JSON.
func (h *Handler) HandleOpenObligations(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	logger := core.LoggerFromCtx(ctx)
	logger.Info("Handling vat_open_obligations tool")

	client, err := h.client(ctx, request)
	if err != nil {
		logger.Error("Failed to create VAT client", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	obligations, err := client.OpenObligations(ctx)
	if err != nil {
		logger.Error("Failed to list obligations", "vrn", client.VRN(), "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.Marshal(obligations)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// HandleSubmitReturn submits the return described by the tool arguments and
// returns the receipt as JSON.
func (h *Handler) HandleSubmitReturn(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	logger := core.LoggerFromCtx(ctx)
	logger.Info("Handling vat_submit_return tool")

	r, err := returnFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := h.client(ctx, request)
	if err != nil {
		logger.Error("Failed to create VAT client", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	receipt, err := client.SubmitReturn(ctx, r)
	if err != nil {
		logger.Error("Failed to submit return", "vrn", client.VRN(), "period_key", r.PeriodKey, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	if receipt == nil {
		return mcp.NewToolResultText("submitted"), nil
	}

	data, err := json.Marshal(receipt)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func returnFromRequest(request mcp.CallToolRequest) (*vat.Return, error) {
	periodKey, err := request.RequireString("period_key")
	if err != nil {
		return nil, err
	}

	var boxes [7]float64
	for i, name := range []string{"box1", "box2", "box4", "box6", "box7", "box8", "box9"} {
		if boxes[i], err = request.RequireFloat(name); err != nil {
			return nil, err
		}
	}

	return vat.NewReturn(periodKey,
		boxes[0], boxes[1], boxes[2],
		int64(boxes[3]), int64(boxes[4]), int64(boxes[5]), int64(boxes[6]),
	), nil
}
