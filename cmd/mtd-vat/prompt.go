package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-training/mtd-vat/pkg/vat"
)

type returnSubmitter interface {
	SubmitReturn(ctx context.Context, r *vat.Return) (*vat.Receipt, error)
}

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints msg and reads one trimmed line. EOF after a partial line is
// accepted.
func (p *prompter) ask(msg string) (string, error) {
	fmt.Fprint(p.out, msg)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) confirm(msg string) (bool, error) {
	answer, err := p.ask(msg + " [yN] ")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

func (p *prompter) amount(msg string) (float64, error) {
	s, err := p.ask(msg)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

func (p *prompter) pounds(msg string) (int64, error) {
	s, err := p.ask(msg)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid whole pound amount %q: %w", s, err)
	}
	return v, nil
}

// readReturn prompts for boxes 1, 2, 4, 6, 7, 8 and 9.
func (p *prompter) readReturn(periodKey string) (*vat.Return, error) {
	var (
		err                    error
		box1, box2, box4       float64
		box6, box7, box8, box9 int64
	)
	amounts := []struct {
		dst *float64
		msg string
	}{
		{&box1, "- VAT due on sales and other outputs: "},
		{&box2, "- VAT due in the period on acquisitions of goods\n  made in Northern Ireland from EU Member States: "},
		{&box4, "- VAT reclaimed in the period on purchases and\n  other inputs (including acquisitions in Northern\n  Ireland from EU member states): "},
	}
	for _, a := range amounts {
		if *a.dst, err = p.amount(a.msg); err != nil {
			return nil, err
		}
	}

	totals := []struct {
		dst *int64
		msg string
	}{
		{&box6, "- Total value of sales and all other outputs\n  excluding any VAT (no pence): "},
		{&box7, "- Total value of purchases and all other inputs\n  excluding any VAT (including exempt purchases, no pence): "},
		{&box8, "- Total value of dispatches of goods and related\n  costs (excluding VAT) from Northern Ireland to\n  EU Member States (no pence): "},
		{&box9, "- Total value of acquisitions of goods and\n  related costs (excluding VAT) made in\n  Northern Ireland from EU Member States (no pence): "},
	}
	for _, a := range totals {
		if *a.dst, err = p.pounds(a.msg); err != nil {
			return nil, err
		}
	}

	return vat.NewReturn(periodKey, box1, box2, box4, box6, box7, box8, box9), nil
}

// fileReturns lists the obligations, then offers a return for each in turn.
func fileReturns(ctx context.Context, p *prompter, client returnSubmitter, obligations []vat.Obligation) error {
	if len(obligations) == 0 {
		fmt.Fprintln(p.out, "No open obligations :)")
		return nil
	}

	fmt.Fprintln(p.out, "==> Open obligations")
	for _, o := range obligations {
		fmt.Fprintf(p.out, "%s start:%s end:%s due:%s\n", o.PeriodKey, o.Start, o.End, o.Due)
	}
	fmt.Fprintln(p.out)

	for _, o := range obligations {
		ok, err := p.confirm(fmt.Sprintf("Submit return for %s?", o.PeriodKey))
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		r, err := p.readReturn(o.PeriodKey)
		if err != nil {
			return err
		}

		summary, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(p.out, "\n%s\n", summary)

		send, err := p.confirm("Send?")
		if err != nil {
			return err
		}
		if !send {
			continue
		}

		receipt, err := client.SubmitReturn(ctx, r)
		if err != nil {
			return err
		}
		if receipt != nil && receipt.FormBundleNumber != "" {
			fmt.Fprintf(p.out, "Ok, form bundle %s\n", receipt.FormBundleNumber)
		} else {
			fmt.Fprintln(p.out, "Ok")
		}
	}
	return nil
}
