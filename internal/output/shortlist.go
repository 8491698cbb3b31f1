// Package output renders ranking results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/spigell/mentor-matcher/internal/matching"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// score thresholds used for coloring
const (
	strongScore = 75
	fairScore   = 55
)

// Explainer returns per-criterion sub-scores for a candidate.
type Explainer func(c *matching.CandidateProfile) matching.Breakdown

// Printer writes shortlists in table or JSON form.
type Printer struct {
	out       io.Writer
	useColors bool
	strong    *color.Color
	fair      *color.Color
	weak      *color.Color
	muted     *color.Color
}

func NewPrinter(out io.Writer, useColors bool) *Printer {
	p := &Printer{
		out:       out,
		useColors: useColors,
		strong:    color.New(color.FgGreen, color.Bold),
		fair:      color.New(color.FgYellow),
		weak:      color.New(color.FgRed),
		muted:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.strong, p.fair, p.weak, p.muted} {
		if useColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// ValidateFormat reports whether format is a supported output format.
func ValidateFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid output format %q: must be %s or %s", format, FormatTable, FormatJSON)
	}
}

// Shortlist renders results in the requested format. explain may be nil;
// when set, the table gains one column per criterion.
func (p *Printer) Shortlist(format string, results []matching.MatchResult, explain Explainer) error {
	switch format {
	case FormatJSON:
		return p.JSON(results)
	case FormatTable, "":
		return p.table(results, explain)
	default:
		return ValidateFormat(format)
	}
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Reasons prints the reason list of every result.
func (p *Printer) Reasons(results []matching.MatchResult) {
	for i, r := range results {
		fmt.Fprintf(p.out, "%d. %s (%s) %s\n", i+1, displayName(r.Candidate), r.Candidate.ID, p.score(r.Score))
		if len(r.Reasons) == 0 {
			p.muted.Fprintln(p.out, "   no highlighted reasons")
			continue
		}
		for _, reason := range r.Reasons {
			fmt.Fprintf(p.out, "   - %s\n", reason)
		}
	}
}

func (p *Printer) table(results []matching.MatchResult, explain Explainer) error {
	if len(results) == 0 {
		p.muted.Fprintln(p.out, "no candidates above the score threshold")
		return nil
	}

	header := []string{"#", "Score", "ID", "Name", "Field", "Domain", "Role", "Company"}
	if explain != nil {
		header = append(header, "Fld", "Dom", "Exp", "Goal", "Rec")
	}

	table := newTable(p.out)
	table.Header(header)

	for i, r := range results {
		c := r.Candidate
		row := []string{
			strconv.Itoa(i + 1),
			p.score(r.Score),
			c.ID,
			displayName(c),
			c.FieldOfStudy,
			c.Domain,
			c.RoleTitle,
			c.Company,
		}
		if explain != nil {
			b := explain(c)
			row = append(row,
				strconv.Itoa(b.Field),
				strconv.Itoa(b.Domain),
				strconv.Itoa(b.Experience),
				strconv.Itoa(b.Goal),
				strconv.Itoa(b.Recency),
			)
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}

	return table.Render()
}

func (p *Printer) score(score int) string {
	s := strconv.Itoa(score)
	switch {
	case score >= strongScore:
		return p.strong.Sprint(s)
	case score >= fairScore:
		return p.fair.Sprint(s)
	default:
		return p.weak.Sprint(s)
	}
}

func displayName(c *matching.CandidateProfile) string {
	if c.Name == "" {
		return "-"
	}
	return c.Name
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
}
