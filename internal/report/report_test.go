package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/ncparse/internal/filing"
	"github.com/dgallion1/ncparse/internal/sgml"
)

func loadSample(t *testing.T) *filing.Filing {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "filing", "testdata", "sample.nc"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	f, err := filing.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return f
}

func TestMarkdown_Sample(t *testing.T) {
	md := Markdown(loadSample(t))

	want := []string{
		"# 10-K 0000950123-21-000042\n",
		"| Filing date | 2021-02-26 |",
		"| Period | 2020-12-31 |",
		"| Accepted | 2021-02-26 16:30:12 |",
		"| Items | 2.02, 9.01 |",
		"| Public documents | 3 |",
		"| Paper | yes |",
		"### FILER: ACME WIDGETS INC",
		"- CIK 0000012345",
		"- Fiscal year end 12-31",
		"- Filed as 10-K / 34 / 001-12345",
		"- Business address: 1 MAIN ST, SPRINGFIELD, IL, 62701",
		"- Formerly ACME TOOLS INC (until 1999-01-04)",
		"| 1 | 10-K | acme-10k.htm | ANNUAL REPORT | text |",
		"| 2 | GRAPHIC | chart.pdf |  | binary (PDF), uuencode |",
		"| 3 | EX-101.INS | acme-20201231.xml | XBRL INSTANCE DOCUMENT | markup (XBRL) |",
	}
	for _, w := range want {
		if !strings.Contains(md, w) {
			t.Errorf("expected report to contain %q\n%s", w, md)
		}
	}
	if strings.Contains(md, "## Anomalies") {
		t.Errorf("expected no anomaly section for a clean filing")
	}
}

func TestMarkdown_Anomalies(t *testing.T) {
	f := &filing.Filing{
		Header: filing.Header{Type: "8-K"},
		Anomalies: []sgml.Anomaly{
			{Kind: sgml.AnomalySpuriousClose, Tag: "FOO", Offset: 10},
			{Kind: filing.AnomalyUnknownField, Tag: "BAR", Offset: 20, Detail: "kept in overflow"},
			{Kind: sgml.AnomalySpuriousClose, Tag: "BAZ", Offset: 30},
		},
	}
	md := Markdown(f)

	for _, w := range []string{
		"# 8-K\n",
		"None.",
		"- spurious-close: 2\n",
		"- unknown-field: 1\n",
		"1. `unknown-field` at offset 20 &lt;BAR&gt;: kept in overflow",
	} {
		if !strings.Contains(md, w) {
			t.Errorf("expected report to contain %q\n%s", w, md)
		}
	}
	if strings.Index(md, "spurious-close: 2") > strings.Index(md, "unknown-field: 1") {
		t.Errorf("expected anomaly kinds sorted")
	}
}

func TestMarkdown_EscapesCells(t *testing.T) {
	f := &filing.Filing{Documents: []filing.Document{{Type: "EX-99", Description: "A | B <script>"}}}
	md := Markdown(f)
	if !strings.Contains(md, `A \| B &lt;script&gt;`) {
		t.Errorf("expected escaped cell, got\n%s", md)
	}
	if !strings.HasPrefix(md, "# Filing\n") {
		t.Errorf("expected fallback title, got %q", md[:20])
	}
}

func TestHTML(t *testing.T) {
	out, err := HTML(loadSample(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<h1>10-K 0000950123-21-000042</h1>") {
		t.Errorf("expected h1 heading, got\n%s", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("expected tables rendered, got\n%s", out)
	}
	if !strings.Contains(out, "<td>acme-10k.htm</td>") {
		t.Errorf("expected document row, got\n%s", out)
	}
}
