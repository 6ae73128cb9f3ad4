package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-training/mtd-vat/pkg/vat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	returns []*vat.Return
	err     error
}

func (f *fakeSubmitter) SubmitReturn(_ context.Context, r *vat.Return) (*vat.Receipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.returns = append(f.returns, r)
	return &vat.Receipt{FormBundleNumber: "FB1"}, nil
}

var twoPeriods = []vat.Obligation{
	{Start: "2024-01-01", End: "2024-03-31", Due: "2024-05-07", Status: "O", PeriodKey: "24A1"},
	{Start: "2024-04-01", End: "2024-06-30", Due: "2024-08-07", Status: "O", PeriodKey: "24A2"},
}

func TestFileReturns(t *testing.T) {
	input := strings.Join([]string{
		"y",      // submit 24A1
		"100.50", // box1
		"0",      // box2
		"150",    // box4
		"1000",   // box6
		"2000",   // box7
		"0",      // box8
		"0",      // box9
		"Y",      // send
		"n",      // skip 24A2
	}, "\n") + "\n"

	var out bytes.Buffer
	sub := &fakeSubmitter{}
	err := fileReturns(context.Background(), newPrompter(strings.NewReader(input), &out), sub, twoPeriods)
	require.NoError(t, err)

	require.Len(t, sub.returns, 1)
	r := sub.returns[0]
	assert.Equal(t, "24A1", r.PeriodKey)
	assert.Equal(t, 100.50, r.TotalVATDue)
	assert.InDelta(t, 49.50, r.NetVATDue, 1e-9)
	assert.Equal(t, int64(2000), r.TotalValuePurchasesExVAT)
	assert.True(t, r.Finalised)

	assert.Contains(t, out.String(), "24A1 start:2024-01-01 end:2024-03-31 due:2024-05-07")
	assert.Contains(t, out.String(), "Submit return for 24A2? [yN] ")
	assert.Contains(t, out.String(), `"periodKey": "24A1"`)
	assert.Contains(t, out.String(), "Ok, form bundle FB1")
}

func TestFileReturns_DeclineSend(t *testing.T) {
	input := "y\n1\n0\n0\n0\n0\n0\n0\nn\n"
	sub := &fakeSubmitter{}
	err := fileReturns(context.Background(), newPrompter(strings.NewReader(input), &bytes.Buffer{}), sub, twoPeriods[:1])
	require.NoError(t, err)
	assert.Empty(t, sub.returns)
}

func TestFileReturns_NoObligations(t *testing.T) {
	var out bytes.Buffer
	err := fileReturns(context.Background(), newPrompter(strings.NewReader(""), &out), &fakeSubmitter{}, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No open obligations")
}

func TestFileReturns_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		sub   *fakeSubmitter
	}{
		{"bad amount", "y\nlots\n", &fakeSubmitter{}},
		{"pence in whole pounds", "y\n1\n0\n0\n10.5\n", &fakeSubmitter{}},
		{"input ends", "y\n1\n", &fakeSubmitter{}},
		{"submit fails", "y\n1\n0\n0\n0\n0\n0\n0\ny\n", &fakeSubmitter{err: errors.New("403")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fileReturns(context.Background(), newPrompter(strings.NewReader(tt.input), &bytes.Buffer{}), tt.sub, twoPeriods[:1])
			require.Error(t, err)
		})
	}
}

func TestPrompter_AskWithoutTrailingNewline(t *testing.T) {
	p := newPrompter(strings.NewReader("  y"), &bytes.Buffer{})
	ok, err := p.confirm("Send?")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = p.ask("again")
	assert.Error(t, err)
}
