// Package report renders a human-readable summary of a parsed filing.
package report

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/ncparse/internal/datetime"
	"github.com/dgallion1/ncparse/internal/filing"
	"github.com/dgallion1/ncparse/internal/sgml"
)

// maxListedAnomalies caps the anomaly detail list; counts always cover all.
const maxListedAnomalies = 20

// Markdown returns the filing summary as Markdown.
func Markdown(f *filing.Filing) string {
	var b strings.Builder
	h := f.Header

	title := strings.TrimSpace(h.Type + " " + h.AccessionNumber)
	if title == "" {
		title = "Filing"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	rows := [][2]string{
		{"Accession number", h.AccessionNumber},
		{"Form type", h.Type},
		{"Filing date", dateString(h.FilingDate)},
		{"Period", dateString(h.Period)},
		{"Accepted", timeString(h.AcceptanceDateTime)},
		{"Items", strings.Join(h.Items, ", ")},
		{"Public documents", intString(h.PublicDocumentCount)},
		{"Paper", lo.Ternary(h.Paper, "yes", "")},
	}
	rows = lo.Filter(rows, func(r [2]string, _ int) bool { return r[1] != "" })
	if len(rows) > 0 {
		b.WriteString("| Field | Value |\n|---|---|\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "| %s | %s |\n", r[0], cell(r[1]))
		}
		b.WriteString("\n")
	}

	if len(h.Companies) > 0 {
		b.WriteString("## Companies\n\n")
		for _, c := range h.Companies {
			writeCompany(&b, c)
		}
	}

	if sc := h.SeriesAndClasses; sc != nil {
		series := slices.Concat(sc.Existing, lo.FlatMap(sc.Mergers, func(m filing.Merger, _ int) []filing.Series {
			return lo.FlatMap(m.Targets, func(p filing.MergerParty, _ int) []filing.Series { return p.Series })
		}))
		if sc.New != nil {
			series = slices.Concat(series, sc.New.Series)
		}
		if len(series) > 0 {
			b.WriteString("## Series and classes\n\n| Series | Name | Classes |\n|---|---|---|\n")
			for _, s := range series {
				classes := lo.Map(s.ClassContracts, func(cc filing.ClassContract, _ int) string {
					if cc.TickerSymbol != "" {
						return cc.ID + " (" + cc.TickerSymbol + ")"
					}
					return cc.ID
				})
				fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(s.SeriesID), cell(s.SeriesName), cell(strings.Join(classes, ", ")))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Documents\n\n")
	if len(f.Documents) == 0 {
		b.WriteString("None.\n\n")
	} else {
		b.WriteString("| # | Type | Filename | Description | Payload | Bytes |\n|---|---|---|---|---|---|\n")
		for i, d := range f.Documents {
			seq := strconv.Itoa(i + 1)
			if d.Sequence != nil {
				seq = strconv.Itoa(*d.Sequence)
			}
			kind := d.Payload.Kind.String()
			if d.Payload.Wrapper != "" {
				kind += " (" + d.Payload.Wrapper + ")"
			}
			if d.Payload.Encoding != "" {
				kind += ", " + d.Payload.Encoding
			}
			if d.Flawed {
				kind += ", flawed"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d |\n",
				seq, cell(d.Type), cell(d.Filename), cell(d.Description), cell(kind), d.Payload.Size())
		}
		b.WriteString("\n")
	}

	if len(f.Anomalies) > 0 {
		writeAnomalies(&b, f.Anomalies)
	}

	return b.String()
}

// HTML returns the Markdown summary rendered as an HTML fragment.
func HTML(f *filing.Filing) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(f)), &buf); err != nil {
		return "", fmt.Errorf("render report html: %w", err)
	}
	return buf.String(), nil
}

func writeCompany(b *strings.Builder, c filing.Company) {
	name := c.Name()
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(b, "### %s: %s\n\n", c.Role, name)

	var lines []string
	if cik := c.CIK(); cik != "" {
		lines = append(lines, "CIK "+cik)
	}
	if d := c.Data; d != nil {
		if d.AssignedSIC != "" {
			lines = append(lines, "SIC "+d.AssignedSIC)
		}
		if d.StateOfIncorporation != "" {
			lines = append(lines, "Incorporated in "+d.StateOfIncorporation)
		}
		if d.FiscalYearEnd != nil {
			lines = append(lines, "Fiscal year end "+d.FiscalYearEnd.String())
		}
	}
	for _, v := range c.FilingValues {
		parts := lo.Compact([]string{v.FormType, v.Act, v.FileNumber})
		if len(parts) > 0 {
			lines = append(lines, "Filed as "+strings.Join(parts, " / "))
		}
	}
	if a := c.BusinessAddress; a != nil {
		if addr := strings.Join(lo.Compact([]string{a.Street1, a.Street2, a.City, a.State, a.Zip}), ", "); addr != "" {
			lines = append(lines, "Business address: "+addr)
		}
	}
	for _, fc := range slices.Concat(c.FormerCompanies, c.FormerNames) {
		line := "Formerly " + fc.FormerConformedName
		if fc.DateChanged != nil {
			line += " (until " + fc.DateChanged.String() + ")"
		}
		lines = append(lines, line)
	}
	for _, l := range lines {
		fmt.Fprintf(b, "- %s\n", l)
	}
	b.WriteString("\n")
}

func writeAnomalies(b *strings.Builder, anomalies []sgml.Anomaly) {
	b.WriteString("## Anomalies\n\n")
	byKind := lo.GroupBy(anomalies, func(a sgml.Anomaly) sgml.AnomalyKind { return a.Kind })
	kinds := lo.Keys(byKind)
	slices.Sort(kinds)
	for _, k := range kinds {
		fmt.Fprintf(b, "- %s: %d\n", k, len(byKind[k]))
	}
	b.WriteString("\n")

	for _, a := range lo.Slice(anomalies, 0, maxListedAnomalies) {
		line := fmt.Sprintf("`%s` at offset %d", a.Kind, a.Offset)
		if a.Tag != "" {
			line += " <" + a.Tag + ">"
		}
		if a.Detail != "" {
			line += ": " + a.Detail
		}
		fmt.Fprintf(b, "1. %s\n", escape(line))
	}
	if n := len(anomalies) - maxListedAnomalies; n > 0 {
		fmt.Fprintf(b, "\n%d more not shown.\n", n)
	}
}

func dateString(d *datetime.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func timeString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func intString(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func cell(s string) string {
	return strings.ReplaceAll(escape(strings.Join(strings.Fields(s), " ")), "|", `\|`)
}

// escape neutralizes raw HTML in values copied from the filing.
func escape(s string) string {
	return strings.NewReplacer("<", "&lt;", ">", "&gt;").Replace(s)
}
