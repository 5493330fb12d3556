package renderer

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/saudanwar3/portfolio"
)

var fixGolden = flag.Bool("fix-golden", false, "if true, update failing golden .md files with the received output")

func TestFixGoldenIsOff(t *testing.T) {
	if *fixGolden {
		t.Fatal("-fix-golden is enabled. This flag should only be used for updating test fixtures and must be disabled for regular tests.")
	}
}

func golden(t *testing.T, file, got string) {
	t.Helper()
	want, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("cannot read golden file: %v", err)
	}
	if canonical(got) == canonical(string(want)) {
		return
	}
	if *fixGolden {
		if err := os.WriteFile(file, []byte(got), 0644); err != nil {
			t.Fatalf("cannot fix golden file: %v", err)
		}
		return
	}
	t.Errorf("output mismatch for %s:\n--- got ---\n%s\n--- want ---\n%s", file, got, want)
}

// canonical drops the blank lines and the cell padding of s, lower-cases
// its table rows and reduces the delimiter rows to their dashes.
func canonical(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "|") {
			line = canonicalRow(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

var delimiter = regexp.MustCompile(`^:?-+:?$`)

func canonicalRow(line string) string {
	// split on the pipes that are not escaped.
	var cells []string
	var cur strings.Builder
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == '|':
			cur.WriteString(`\|`)
			i++
		case line[i] == '|':
			cells = append(cells, strings.ToLower(strings.TrimSpace(cur.String())))
			cur.Reset()
		default:
			cur.WriteByte(line[i])
		}
	}
	cells = append(cells, strings.ToLower(strings.TrimSpace(cur.String())))
	for i, c := range cells {
		if delimiter.MatchString(c) {
			cells[i] = "---"
		}
	}
	return strings.Join(cells, "|")
}

func TestCanonical(t *testing.T) {
	a := "# Portfolio\n\n| NET VALUE |  P&L  |\n|----------:|:-----|\n| $1.00     | a \\| b |\n\n\nNo positions.\n"
	b := "# Portfolio\n| Net Value | P&L |\n|---:|---|\n| $1.00 | a \\| b |\nNo positions."
	if canonical(a) != canonical(b) {
		t.Errorf("canonical() differs:\n%s\n%s", canonical(a), canonical(b))
	}
	if c := strings.Replace(a, "$1.00", "$2.00", 1); canonical(c) == canonical(b) {
		t.Errorf("canonical() hides a changed cell")
	}
}

func TestMarkdown(t *testing.T) {
	s := portfolio.NewSnapshot(0, time.Time{}, []portfolio.Position{aapl(), tsla()})
	golden(t, "testdata/portfolio.md", Markdown(FormatSnapshot(s, "")))
}

func TestMarkdown_Empty(t *testing.T) {
	s := portfolio.NewSnapshot(7, time.Time{}, nil)
	golden(t, "testdata/empty.md", Markdown(FormatSnapshot(s, "")))
}

func TestUnavailableMarkdown(t *testing.T) {
	golden(t, "testdata/unavailable.md", UnavailableMarkdown(errors.New("GET https://example.com: 503 Service Unavailable")))
}

// TestMarkdown_Tables checks the generated markdown is parsed into tables.
func TestMarkdown_Tables(t *testing.T) {
	s := portfolio.NewSnapshot(0, time.Time{}, []portfolio.Position{aapl(), tsla()})
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var html bytes.Buffer
	if err := md.Convert([]byte(Markdown(FormatSnapshot(s, ""))), &html); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	got := html.String()
	if n := strings.Count(got, "<table>"); n != 2 {
		t.Errorf("got %d tables, want 2:\n%s", n, got)
	}
	for _, want := range []string{">AAPL</td>", ">Tesla | Inc</td>", ">+$100.00</td>", ">-9.09%</td>"} {
		if !strings.Contains(got, want) {
			t.Errorf("html is missing %q:\n%s", want, got)
		}
	}
}
