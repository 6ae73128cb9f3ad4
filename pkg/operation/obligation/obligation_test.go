package obligation

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-training/mtd-vat/pkg/core"
	"github.com/go-training/mtd-vat/pkg/sandbox"
	"github.com/go-training/mtd-vat/pkg/store"
	"github.com/go-training/mtd-vat/pkg/vat"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const vrn = "123456789"

func setup(t *testing.T) (*Handler, *sandbox.Server, context.Context) {
	t.Helper()
	sb := sandbox.New()
	sb.AddObligation(vrn, vat.Obligation{Start: "2024-04-01", End: "2024-06-30", Status: "O", PeriodKey: "24A2"})
	sb.AddObligation(vrn, vat.Obligation{Start: "2024-01-01", End: "2024-03-31", Status: "O", PeriodKey: "24A1"})
	srv := httptest.NewServer(sb.Handler())
	t.Cleanup(srv.Close)

	s := store.NewMemoryStore()
	require.NoError(t, s.Write(context.Background(), vrn, &core.Token{AccessToken: sb.IssueToken()}))

	ctx := core.WithAccount(core.WithStore(context.Background(), s), vrn)
	return NewHandler(srv.URL), sb, ctx
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	txt, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return txt.Text
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestHandleOpenObligations(t *testing.T) {
	h, _, ctx := setup(t)

	res, err := h.HandleOpenObligations(ctx, call(nil))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var obs []vat.Obligation
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &obs))
	require.Len(t, obs, 2)
	assert.Equal(t, "24A1", obs[0].PeriodKey)
}

func TestHandleOpenObligations_NoToken(t *testing.T) {
	h, _, ctx := setup(t)

	res, err := h.HandleOpenObligations(ctx, call(map[string]any{"vrn": "000"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "no cached token for 000")
}

func TestHandleSubmitReturn(t *testing.T) {
	h, sb, ctx := setup(t)

	res, err := h.HandleSubmitReturn(ctx, call(map[string]any{
		"period_key": "24A1",
		"box1":       100.0,
		"box2":       0.0,
		"box4":       30.5,
		"box6":       1000.0,
		"box7":       200.0,
		"box8":       0.0,
		"box9":       0.0,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var receipt vat.Receipt
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &receipt))
	assert.NotEmpty(t, receipt.FormBundleNumber)

	returns := sb.Returns(vrn)
	require.Len(t, returns, 1)
	assert.Equal(t, 100.0, returns[0].TotalVATDue)
	assert.Equal(t, 69.5, returns[0].NetVATDue)
	assert.Equal(t, int64(1000), returns[0].TotalValueSalesExVAT)
}

func TestHandleSubmitReturn_Invalid(t *testing.T) {
	h, _, ctx := setup(t)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing period", map[string]any{"box1": 1.0}},
		{"missing box", map[string]any{"period_key": "24A1", "box1": 1.0}},
		{"closed period", map[string]any{
			"period_key": "99Z9", "box1": 1.0, "box2": 0.0, "box4": 0.0,
			"box6": 0.0, "box7": 0.0, "box8": 0.0, "box9": 0.0,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.HandleSubmitReturn(ctx, call(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}
