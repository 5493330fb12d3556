package renderer

import (
	"fmt"
	"io"
	"strings"

	md "github.com/nao1215/markdown"
)

var (
	balanceHeader   = []string{"Net Value", "P&L", "P&L %"}
	balanceAlign    = []md.TableAlignment{md.AlignRight, md.AlignRight, md.AlignRight}
	positionsHeader = []string{"Ticker", "Name", "Qty", "Price", "Market Value", "P&L", "P&L %"}
	positionsAlign  = []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight}
)

// Markdown renders v as a markdown document: the balance, then a table of
// the positions in display order.
func Markdown(v View) string {
	doc := md.NewMarkdown(io.Discard).
		H1("Portfolio").
		PlainText("").
		PlainText(fmt.Sprintf("Tick %d", v.Tick)).
		PlainText("")
	balanceTable(doc, v.Balance)

	if len(v.Positions) == 0 {
		return text(doc.PlainText("No positions."))
	}
	rows := make([][]string, 0, len(v.Positions))
	for _, p := range v.Positions {
		rows = append(rows, []string{
			cell(p.Ticker),
			cell(p.Name),
			p.Quantity,
			p.Price,
			p.MarketValue,
			p.PnL,
			p.PnLPercentage,
		})
	}
	doc.Table(md.TableSet{Header: positionsHeader, Rows: rows, Alignment: positionsAlign})
	return text(doc)
}

// UnavailableMarkdown renders the document displayed when the portfolio
// could not be loaded.
func UnavailableMarkdown(err error) string {
	doc := md.NewMarkdown(io.Discard).H1("Portfolio").PlainText("")
	balanceTable(doc, PlaceholderBalance())
	if err != nil {
		doc.PlainText("Portfolio unavailable: " + cell(err.Error()))
	} else {
		doc.PlainText("Portfolio unavailable.")
	}
	return text(doc)
}

// balanceTable appends the balance table, followed by a blank line so the
// next block does not read as a table row.
func balanceTable(doc *md.Markdown, v BalanceView) {
	doc.Table(md.TableSet{
		Header:    balanceHeader,
		Rows:      [][]string{{v.NetValue, v.PnL, v.PnLPercentage}},
		Alignment: balanceAlign,
	}).PlainText("")
}

// text returns the document ending with a single line feed.
func text(doc *md.Markdown) string {
	return strings.TrimRight(doc.String(), "\n") + "\n"
}

// cell escapes the pipes and line breaks of s, which the table writer keeps
// as they are.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
