package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/23skdu/longbow-tokviz/internal/compare"
	"github.com/23skdu/longbow-tokviz/internal/registry"
	"github.com/23skdu/longbow-tokviz/internal/report"
)

func runCounts(ctx context.Context, o *options, out io.Writer, regOpts []registry.Option) error {
	cfg, err := loadConfig(nil, o)
	if err != nil {
		return err
	}

	d := &report.Driver{Acquirer: newRegistry(o, regOpts)}
	tks, err := d.Tokenizers(ctx, cfg.Models)
	if err != nil {
		return err
	}
	tbl, err := compare.Tabulate(cfg.Samples, tks)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, countsTable(tbl))
	if err != nil || !o.tokens {
		return err
	}
	tokens, err := tokensTable(tbl, tks)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tokens)
	return err
}

func countsTable(tbl *compare.Table) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Token Counts")

	header := table.Row{"Sample"}
	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}
	for j, m := range tbl.Models() {
		header = append(header, m)
		configs = append(configs, table.ColumnConfig{Number: j + 2, Align: text.AlignRight})
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for i, label := range tbl.Labels() {
		row := table.Row{label}
		for j := range tbl.Models() {
			row = append(row, tbl.At(i, j))
		}
		t.AppendRow(row)
	}
	return t.Render()
}

func tokensTable(tbl *compare.Table, tks []compare.Named) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Tokens")
	t.AppendHeader(table.Row{"Sample", "Model", "Tokens"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: 80}})

	for _, s := range tbl.Samples() {
		for _, n := range tks {
			tokens, err := n.Tokenizer.Tokenize(s.Text)
			if err != nil {
				return "", fmt.Errorf("tokenize %q with %q: %w", s.Label, n.Name, err)
			}
			quoted := make([]string, len(tokens))
			for i, tok := range tokens {
				quoted[i] = fmt.Sprintf("%q", tok)
			}
			t.AppendRow(table.Row{s.Label, n.Name, strings.Join(quoted, " ")})
		}
		t.AppendSeparator()
	}
	return t.Render(), nil
}
