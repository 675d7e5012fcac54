package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"cssaudit/metrics"
	"cssaudit/rules"
)

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiGreen  = "\x1b[32m"
	ansiCyan   = "\x1b[36m"
	ansiBold   = "\x1b[1m"
)

// reportWriter accumulates indented report lines, optionally colorized.
type reportWriter struct {
	b     strings.Builder
	color bool
}

func (rw *reportWriter) line(depth int, format string, args ...any) {
	for range depth {
		rw.b.WriteString("  ")
	}
	fmt.Fprintf(&rw.b, format, args...)
	rw.b.WriteByte('\n')
}

func (rw *reportWriter) paint(code, s string) string {
	if !rw.color {
		return s
	}
	return code + s + ansiReset
}

func (rw *reportWriter) severity(s rules.Severity) string {
	switch s {
	case rules.SeverityCritical:
		return rw.paint(ansiBold+ansiRed, string(s))
	case rules.SeverityHigh:
		return rw.paint(ansiRed, string(s))
	case rules.SeverityMedium:
		return rw.paint(ansiYellow, string(s))
	default:
		return string(s)
	}
}

func (rw *reportWriter) grade(g string) string {
	switch g {
	case "A", "B":
		return rw.paint(ansiGreen, g)
	case "C":
		return rw.paint(ansiYellow, g)
	default:
		return rw.paint(ansiRed, g)
	}
}

// RenderText writes a human-oriented report. Files are listed in natural
// order so sheet-1.css sorts before sheet-10.css.
func RenderText(w io.Writer, rep *Report, verdict Verdict, color bool) error {
	rw := &reportWriter{color: color}

	rw.line(0, "%s", rw.paint(ansiBold, fmt.Sprintf("Stylesheet maintainability report (v%s)", rep.Version)))
	rw.line(0, "Generated: %s", rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	rw.line(0, "")
	rw.line(0, "Overall score: %s/100  grade %s",
		rw.paint(ansiBold, fmt.Sprintf("%d", rep.Summary.OverallScore)),
		rw.grade(rep.Summary.Grade))
	rw.line(1, "specificity  %5.1f", rep.Summary.SpecificityScore)
	rw.line(1, "cascade      %5.1f", rep.Summary.CascadeScore)
	rw.line(1, "duplication  %5.1f", rep.Summary.DuplicationScore)
	rw.line(1, "layout risk  %5.1f", rep.Summary.LayoutRiskScore)
	rw.line(0, "")

	rw.line(0, "Files: %d  rules: %d  selectors: %d  declarations: %d  !important: %d",
		rep.Global.Files, rep.Global.Rules, rep.Global.Selectors,
		rep.Global.Declarations, rep.Global.ImportantCount)

	files := append([]string(nil), fileNames(rep)...)
	sort.Sort(natural.StringSlice(files))
	byName := fileIndex(rep)
	for _, name := range files {
		fm := byName[name]
		rw.line(1, "%s: rules %d, max depth %d, max specificity (%d,%d,%d), !important %d",
			name, fm.Rules, fm.MaxDepth,
			fm.MaxSpecificity.IDs, fm.MaxSpecificity.Classes, fm.MaxSpecificity.Elements,
			fm.ImportantCount)
		for _, e := range rep.ParseErrors[name] {
			rw.line(2, "%s %s", rw.paint(ansiRed, "parse error:"), e)
		}
	}
	rw.line(0, "")

	if len(rep.Issues) > 0 {
		rw.line(0, "Issues (%d):", len(rep.Issues))
		for _, is := range rep.Issues {
			loc := is.Evidence.File
			if is.Evidence.Line > 0 {
				loc = fmt.Sprintf("%s:%d", loc, is.Evidence.Line)
			}
			rw.line(1, "[%s] %s %s", rw.severity(is.Severity), is.ID, loc)
			rw.line(2, "%s", is.Explanation)
			for _, sg := range is.Suggestions {
				rw.line(2, "%s %s", rw.paint(ansiCyan, "->"), sg.Description)
			}
		}
		rw.line(0, "")
	}

	if len(rep.WorstSelectors) > 0 {
		rw.line(0, "Worst selectors:")
		for i, ws := range rep.WorstSelectors {
			rw.line(1, "%2d. %q  specificity (%d,%d,%d) score %d depth %d  [%s]",
				i+1, ws.Selector,
				ws.Specificity.IDs, ws.Specificity.Classes, ws.Specificity.Elements,
				ws.Score, ws.Depth, ws.File)
		}
		rw.line(0, "")
	}

	if len(rep.Summary.Recommendations) > 0 {
		rw.line(0, "Recommendations:")
		for _, rec := range rep.Summary.Recommendations {
			rw.line(1, "[%s] %s: %s", rec.Priority, rec.Category, rec.Message)
		}
		rw.line(0, "")
	}

	if verdict.Passed {
		rw.line(0, "Verdict: %s", rw.paint(ansiGreen, "PASSED"))
	} else {
		rw.line(0, "Verdict: %s", rw.paint(ansiBold+ansiRed, "FAILED"))
		for _, r := range verdict.Reasons {
			rw.line(1, "%s", r)
		}
	}

	_, err := io.WriteString(w, rw.b.String())
	return err
}

func fileNames(rep *Report) []string {
	names := make([]string, 0, len(rep.Files))
	for _, fm := range rep.Files {
		names = append(names, fm.File)
	}
	return names
}

func fileIndex(rep *Report) map[string]metrics.FileMetrics {
	idx := make(map[string]metrics.FileMetrics, len(rep.Files))
	for _, fm := range rep.Files {
		idx[fm.File] = fm
	}
	return idx
}
