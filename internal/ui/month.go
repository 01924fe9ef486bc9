package ui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/EchoSun2025/TimeTag/internal/models"
	"github.com/EchoSun2025/TimeTag/internal/stats"
	"github.com/EchoSun2025/TimeTag/internal/store"
	"github.com/EchoSun2025/TimeTag/internal/timeutil"
)

// Month is the monthly heatmap tab. Each cell is tinted by the day's top
// tag, with intensity scaled by tracked minutes. The grid is padded to
// whole Monday-start weeks, so the leading and trailing cells can belong
// to neighboring months.
type Month struct {
	window fyne.Window
	db     *store.Store

	selected time.Time
}

func NewMonth(w fyne.Window, db *store.Store) *Month {
	return &Month{window: w, db: db, selected: time.Now()}
}

func (v *Month) MakeUI() fyne.CanvasObject {
	monthLabel := widget.NewLabel("")
	content := container.NewStack()

	var update func()
	update = func() {
		tags, _ := v.db.ListAllTags()

		first := timeutil.MonthStart(v.selected)
		gridStart := timeutil.WeekStart(first)
		gridEnd := timeutil.DayEnd(timeutil.WeekStart(first.AddDate(0, 1, -1)).AddDate(0, 0, 6))
		records, _ := v.db.ListRecordsInRange(gridStart, gridEnd)

		month := stats.ComputeMonth(records, tags, v.selected)
		monthLabel.SetText(month.Month.Format("January 2006"))

		content.Objects = []fyne.CanvasObject{v.renderMonth(month, tags)}
		content.Refresh()
	}
	update()

	header := container.NewHBox(
		widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
			v.selected = v.selected.AddDate(0, -1, 0)
			update()
		}),
		widget.NewButton("This Month", func() {
			v.selected = time.Now()
			update()
		}),
		widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
			v.selected = v.selected.AddDate(0, 1, 0)
			update()
		}),
		layout.NewSpacer(),
		monthLabel,
	)

	return container.NewBorder(header, nil, nil, nil, content)
}

func (v *Month) renderMonth(month models.MonthStats, tags []models.Tag) fyne.CanvasObject {
	byID := tagIndex(tags)

	// Scale cell intensity against the busiest day of the grid.
	maxMinutes := 1
	for _, week := range month.Weeks {
		for _, day := range week {
			if day.Minutes > maxMinutes {
				maxMinutes = day.Minutes
			}
		}
	}

	cells := []fyne.CanvasObject{}
	for _, name := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		cells = append(cells, widget.NewLabelWithStyle(name, fyne.TextAlignCenter, fyne.TextStyle{Bold: true}))
	}
	for _, week := range month.Weeks {
		for _, day := range week {
			cells = append(cells, v.monthCell(day, byID, maxMinutes))
		}
	}
	grid := container.NewGridWithColumns(7, cells...)

	summary := widget.NewLabelWithStyle(
		fmt.Sprintf("Month total: %s", timeutil.FormatDuration(month.TotalMinutes)),
		fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	tagRows := container.NewVBox()
	for _, t := range tags {
		minutes := month.TagMinutes[t.ID]
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

func (v *Month) monthCell(day models.MonthDay, byID map[string]models.Tag, maxMinutes int) fyne.CanvasObject {
	fill := withAlpha(theme.Color(theme.ColorNameForeground), 0x10)
	if day.Minutes > 0 {
		base := parseHexColor("#9e9e9e")
		if t, ok := byID[day.TopTagID]; ok {
			base = parseHexColor(t.Color)
		}
		// Intensity floor keeps light days visible.
		alpha := 0x30 + (0xc0*day.Minutes)/maxMinutes
		fill = withAlpha(base, uint8(timeutil.Clamp(alpha, 0x30, 0xf0)))
	}

	rect := canvas.NewRectangle(fill)
	rect.CornerRadius = 3
	rect.SetMinSize(fyne.NewSize(36, 36))

	num := widget.NewLabelWithStyle(fmt.Sprintf("%d", day.Date.Day()),
		fyne.TextAlignCenter, fyne.TextStyle{})
	if !day.InQueriedMonth {
		num.TextStyle = fyne.TextStyle{Italic: true}
	}

	return container.NewStack(rect, num)
}
