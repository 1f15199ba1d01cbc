package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ipastusi/macsql/report"
)

type column struct {
	name  string
	width int
}

var columns = []column{
	{"MAC Address", 20},
	{"MAC Vendor", 30},
	{"First seen", 22},
	{"Last seen", 22},
	{"Count", 10},
}

const timeFormat = "2006-01-02 15:04:05"

// summaryTable is a read-only virtual table over a capture summary:
// https://github.com/rivo/tview/wiki/VirtualTable
type summaryTable struct {
	tview.TableContentReadOnly
	items []report.Item
}

func newSummaryTable(summary report.Summary) *summaryTable {
	return &summaryTable{items: summary.Items}
}

func (t *summaryTable) GetCell(row int, col int) *tview.TableCell {
	item := t.items[row]
	switch col {
	case 0:
		return tview.NewTableCell(alignLeft(" "+item.Mac, columns[0].width-1))
	case 1:
		vendor := item.Vendor
		if vendor == "" {
			vendor = "Unknown"
		}
		return tview.NewTableCell(alignLeft(truncate(vendor, columns[1].width), columns[1].width-1))
	case 2:
		return tview.NewTableCell(alignLeft(formatTs(item.FirstTs), columns[2].width-1))
	case 3:
		return tview.NewTableCell(alignLeft(formatTs(item.LastTs), columns[3].width-1))
	default:
		return tview.NewTableCell(alignRight(strconv.Itoa(item.Count), columns[4].width-2))
	}
}

func (t *summaryTable) GetRowCount() int {
	return len(t.items)
}

func (t *summaryTable) GetColumnCount() int {
	return len(columns)
}

// showSummary blocks until the user quits the summary view.
func showSummary(app *tview.Application, summary report.Summary, captureFile string) error {
	table := tview.NewTable().SetEvaluateAllRows(false)
	table.SetContent(newSummaryTable(summary))

	newTextView := func(text string) tview.Primitive {
		return tview.NewTextView().
			SetTextAlign(tview.AlignLeft).
			SetText(text)
	}

	titleBar := fmt.Sprintf(" macsql  |  Capture: %v  |  Addresses: %v ", captureFile, len(summary.Items))
	menuBar := " ▲ - Scroll Up  |  ▼ - Scroll Down  |  Q / ESC - Quit"
	grid := tview.NewGrid().
		SetRows(1, 1, 0, 1).
		SetColumns(0).
		SetBorders(true).
		AddItem(newTextView(titleBar), 0, 0, 1, 1, 0, 0, false).
		AddItem(newTextView(headerRow()), 1, 0, 1, 1, 0, 0, false).
		AddItem(table, 2, 0, 1, 1, 0, 0, true).
		AddItem(newTextView(menuBar), 3, 0, 1, 1, 0, 0, false)
	grid.SetInputCapture(quitKeys(app))

	if err := app.SetRoot(grid, true).Run(); err != nil {
		return fmt.Errorf("unable to load the UI: %w", err)
	}
	return nil
}

// quitKeys stops app on q or Esc and swallows horizontal scrolling.
func quitKeys(app *tview.Application) func(*tcell.EventKey) *tcell.EventKey {
	return func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Rune() == 'q' || event.Key() == tcell.KeyEsc:
			app.Stop()
			return nil
		case event.Key() == tcell.KeyLeft || event.Key() == tcell.KeyRight:
			return nil
		}
		return event
	}
}

func headerRow() string {
	var headers string
	for i, col := range columns {
		header := col.name
		if i == 0 {
			header = " " + header
		}
		headers += alignLeft(header, col.width)
	}
	return headers
}

func formatTs(ts int64) string {
	return time.UnixMilli(ts).Format(timeFormat)
}

func truncate(text string, width int) string {
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return string(runes[:width-3]) + "..."
}

func alignLeft(text string, width int) string {
	return fmt.Sprintf("%-*s", width, text)
}

func alignRight(text string, width int) string {
	return fmt.Sprintf("%*s", width, text)
}
