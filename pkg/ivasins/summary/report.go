package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
)

// DuplicateSampleSize is how many duplicate identifiers a report lists.
const DuplicateSampleSize = 10

type reportLine struct {
	label string
	value int
}

// WriteReport writes a fixed-width, human-readable rendering of rec.
func WriteReport(w io.Writer, rec *models.SummaryRecord) error {
	var b strings.Builder
	status := "OK"
	if !rec.OK {
		status = "FAILED"
	}
	fmt.Fprintf(&b, "%s SUMMARY (%s)\n\n", strings.ToUpper(string(rec.Mode)), status)
	if rec.Message != "" {
		fmt.Fprintf(&b, "%s\n\n", rec.Message)
	}

	switch {
	case rec.Export != nil:
		e := rec.Export
		writeLines(&b, []reportLine{
			{"Report rows", e.TotalReportRows},
			{"(-) Cancelled rows", e.SkippedCancelled},
			{"(-) Rows without ASIN", e.NoIDRows},
			{"(-) Duplicate rows", e.DuplicateRows},
			{"(-) Already in base", e.SkippedBase},
		})
		fmt.Fprintf(&b, "%-28s %8s\n", strings.Repeat("-", 28), "")
		writeLines(&b, []reportLine{
			{"(=) Exported", e.Processed},
		})
		b.WriteString("\n")
		writeLines(&b, []reportLine{
			{"Duplicate ASINs (unique)", e.Duplicates},
			{"Matches with base", e.BaseMatches},
		})
		if e.Rejected > 0 {
			writeLines(&b, []reportLine{{"Rejected rows", e.Rejected}})
		}
	case rec.Merge != nil:
		m := rec.Merge
		writeLines(&b, []reportLine{
			{"Report rows", m.TotalReportRows},
			{"(-) Cancelled rows", m.CancelledRows},
			{"(-) Rows without ASIN", m.NoIDRows},
			{"(-) Duplicate rows", m.DuplicateRows},
			{"Cancelled ASINs", m.CancelledIDs},
			{"Unique ASINs", m.UniqueIDs},
		})
		b.WriteString("\n")
		writeLines(&b, []reportLine{
			{"Added", m.Added},
			{"Modified", m.Modified},
			{"Unchanged", m.Unchanged},
			{"Base rows consolidated", m.BaseConsolidated},
			{"Base rows removed", m.BaseRemoved},
			{"Base rows before", m.BaseBefore},
			{"Base rows after", m.BaseAfter},
		})
	}

	if ids, more := rec.DuplicateSample(DuplicateSampleSize); len(ids) > 0 {
		fmt.Fprintf(&b, "\nDuplicates: %s", strings.Join(ids, ", "))
		if more {
			b.WriteString(" ...")
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeLines(b *strings.Builder, lines []reportLine) {
	for _, l := range lines {
		fmt.Fprintf(b, "%-28s %8d\n", l.label, l.value)
	}
}
