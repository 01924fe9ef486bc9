package ui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/EchoSun2025/TimeTag/internal/models"
	"github.com/EchoSun2025/TimeTag/internal/stats"
	"github.com/EchoSun2025/TimeTag/internal/store"
	"github.com/EchoSun2025/TimeTag/internal/timeutil"
)

// Week is the weekly report tab: one column per day, plus per-tag totals
// for the whole week.
type Week struct {
	window fyne.Window
	db     *store.Store

	selected time.Time
}

func NewWeek(w fyne.Window, db *store.Store) *Week {
	return &Week{window: w, db: db, selected: time.Now()}
}

func (v *Week) MakeUI() fyne.CanvasObject {
	weekLabel := widget.NewLabel("")
	content := container.NewStack()

	var update func()
	update = func() {
		settings, _ := v.db.GetSettings()
		tags, _ := v.db.ListAllTags()

		start := timeutil.WeekStart(v.selected)
		end := timeutil.DayEnd(start.AddDate(0, 0, 6))
		records, _ := v.db.ListRecordsInRange(start, end)

		week := stats.ComputeWeek(records, tags, v.selected, settings.WeekDaysCount)
		weekLabel.SetText(fmt.Sprintf("Week %s – %s",
			week.StartDate.Format("Jan 02"), week.EndDate.Format("Jan 02")))

		content.Objects = []fyne.CanvasObject{v.renderWeek(week)}
		content.Refresh()
	}
	update()

	header := container.NewHBox(
		widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
			v.selected = v.selected.AddDate(0, 0, -7)
			update()
		}),
		widget.NewButton("This Week", func() {
			v.selected = time.Now()
			update()
		}),
		widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
			v.selected = v.selected.AddDate(0, 0, 7)
			update()
		}),
		layout.NewSpacer(),
		weekLabel,
		widget.NewButtonWithIcon("PDF", theme.DocumentIcon(), func() {
			v.exportPDF()
		}),
	)

	return container.NewBorder(header, nil, nil, nil, content)
}

func (v *Week) renderWeek(week models.WeekStats) fyne.CanvasObject {
	tags, _ := v.db.ListAllTags()
	byID := tagIndex(tags)

	cells := make([]fyne.CanvasObject, 0, len(week.Days))
	for _, day := range week.Days {
		name := widget.NewLabelWithStyle(day.Date.Format("Mon 02"),
			fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
		total := widget.NewLabelWithStyle(timeutil.FormatDuration(day.TotalMinutes),
			fyne.TextAlignCenter, fyne.TextStyle{})

		detail := widget.NewLabelWithStyle("—", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
		if len(day.Records) > 0 {
			first, _ := stats.DayTimeRange(day.Records)
			detail.SetText(fmt.Sprintf("from %s · %d breaks",
				timeutil.FormatClock(first), len(day.Breaks)))
		}

		swatch := canvas.NewRectangle(withAlpha(theme.Color(theme.ColorNameForeground), 0x20))
		swatch.SetMinSize(fyne.NewSize(0, 6))
		if top := day.TopTag(); top != "" {
			if t, ok := byID[top]; ok {
				swatch.FillColor = parseHexColor(t.Color)
			}
		}

		cells = append(cells, container.NewVBox(name, swatch, total, detail))
	}
	grid := container.NewGridWithColumns(len(cells), cells...)

	summary := widget.NewLabelWithStyle(
		fmt.Sprintf("Week total: %s", timeutil.FormatDuration(week.TotalMinutes)),
		fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	tagRows := container.NewVBox()
	for _, t := range tags {
		minutes := week.TagMinutes[t.ID]
		if minutes == 0 {
			continue
		}
		swatch := canvas.NewRectangle(parseHexColor(t.Color))
		swatch.SetMinSize(fyne.NewSize(14, 14))
		tagRows.Add(container.NewHBox(
			swatch,
			widget.NewLabel(t.Name),
			layout.NewSpacer(),
			widget.NewLabel(timeutil.FormatDuration(minutes)),
		))
	}

	return container.NewVScroll(container.NewVBox(
		grid,
		widget.NewSeparator(),
		summary,
		tagRows,
	))
}

func (v *Week) exportPDF() {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		start := timeutil.WeekStart(v.selected)
		end := timeutil.DayEnd(start.AddDate(0, 0, 6))
		records, _ := v.db.ListRecordsInRange(start, end)
		tags, _ := v.db.ListAllTags()

		if err := GeneratePDF(path, records, tags, start, end); err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		dialog.ShowInformation("PDF Export", "Report written to "+path, v.window)
	}, v.window)
}
