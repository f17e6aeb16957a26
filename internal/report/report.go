// Package report renders scrape results for a terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/maltedev/leadtime-scraper/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const clock = "2006-01-02 15:04:05"

type Printer struct {
	w       io.Writer
	numbers *message.Printer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:       w,
		numbers: message.NewPrinter(language.English),
	}
}

// Number formats n with thousands grouping, e.g. 9,999,999.
func (p *Printer) Number(n int) string {
	return p.numbers.Sprintf("%d", n)
}

func (p *Printer) rule(ch string) {
	fmt.Fprintln(p.w, strings.Repeat(ch, ruleWidth))
}

func (p *Printer) field(label, value string) {
	fmt.Fprintf(p.w, "%s %s\n", labelStyle.Render(label+":"), value)
}

func status(success bool) string {
	if success {
		return successStyle.Render("SUCCESS")
	}
	return errorStyle.Render("FAILED")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// PrintBanner announces a batch.
func (p *Printer) PrintBanner(parts []string, startedAt time.Time) {
	fmt.Fprintln(p.w)
	p.rule("=")
	fmt.Fprintln(p.w, titleStyle.Render("Digikey Lead Time Scraper"))
	p.rule("=")
	p.field("Started at", startedAt.Format(clock))
	p.field("Parts", strconv.Itoa(len(parts)))
	p.rule("=")
	fmt.Fprintln(p.w)
}

// PrintResult renders one part's outcome as soon as it is known.
func (p *Printer) PrintResult(r *models.ScrapeResult) {
	fmt.Fprintln(p.w)
	p.rule("=")
	fmt.Fprintln(p.w, titleStyle.Render("PART NUMBER: "+r.PartNumber))
	p.rule("=")
	p.field("Status", status(r.Success))
	p.field("Timestamp", r.Timestamp)
	p.field("In Stock", yesNo(r.InStock))
	p.field("Current Quantity", p.Number(r.CurrentQuantity))

	if r.Error != "" {
		p.field("Error", errorStyle.Render(r.Error))
	}

	if len(r.LeadTimes) > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, "Lead Time Schedule:")
		fmt.Fprintln(p.w, p.leadTimeTable(r.LeadTimes, false))
	}

	p.rule("=")
}

func (p *Printer) leadTimeTable(entries []models.LeadTimeEntry, numbered bool) string {
	t := newTable()
	if numbered {
		t.Headers("#", "QTY", "Ship Date")
	} else {
		t.Headers("QTY", "Ship Date")
	}

	for i, e := range entries {
		if numbered {
			t.Row(strconv.Itoa(i+1), p.Number(e.Qty), e.ShipDate)
		} else {
			t.Row(p.Number(e.Qty), e.ShipDate)
		}
	}

	return t.String()
}

// PrintSummary renders timings, counts, a per-part table and every
// lead-time schedule of the batch.
func (p *Printer) PrintSummary(report *models.BatchReport) {
	total := len(report.Parts)
	elapsed := report.Elapsed()

	fmt.Fprintln(p.w)
	p.rule("=")
	fmt.Fprintln(p.w, titleStyle.Render("EXECUTION SUMMARY"))
	p.rule("=")
	p.field("Run", report.RunID)
	p.field("Completed at", report.CompletedAt.Format(clock))
	p.field("Total time", fmt.Sprintf("%.1fs (%.1f minutes)", elapsed.Seconds(), elapsed.Minutes()))
	if total > 0 {
		p.field("Average per part", fmt.Sprintf("%.1fs", report.AveragePerPart().Seconds()))
	}
	p.field("Successful", fmt.Sprintf("%d/%d", report.Successful(), total))
	p.field("Failed", fmt.Sprintf("%d/%d", report.Failed(), total))
	if report.Interrupted {
		p.field("Interrupted", errorStyle.Render(fmt.Sprintf("after %d of %d parts", len(report.Results), total)))
	}
	p.rule("=")

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, titleStyle.Render("DETAILED RESULTS"))
	fmt.Fprintln(p.w, p.resultsTable(report.Results))

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, titleStyle.Render("LEAD TIME SUMMARY"))
	p.rule("=")
	for _, r := range report.Results {
		fmt.Fprintln(p.w)
		if len(r.LeadTimes) == 0 {
			fmt.Fprintf(p.w, "%s: No lead time data\n", r.PartNumber)
			continue
		}
		fmt.Fprintf(p.w, "%s:\n", r.PartNumber)
		fmt.Fprintf(p.w, "  Total entries: %d\n", len(r.LeadTimes))
		fmt.Fprintln(p.w, p.leadTimeTable(r.LeadTimes, true))
	}
	fmt.Fprintln(p.w)
	p.rule("=")
}

func (p *Printer) resultsTable(results []*models.ScrapeResult) string {
	t := newTable().Headers("Part Number", "Status", "Stock", "Lead Times")

	for _, r := range results {
		stock := "Out"
		if r.CurrentQuantity > 0 {
			stock = p.Number(r.CurrentQuantity)
		}
		t.Row(r.PartNumber, status(r.Success), stock, fmt.Sprintf("%d entries", len(r.LeadTimes)))
	}

	return t.String()
}
