package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"

	"github.com/EchoSun2025/TimeTag/internal/models"
	"github.com/EchoSun2025/TimeTag/internal/timeutil"
)

// GeneratePDF writes a report of the given records as an A4 PDF: the
// record table followed by per-tag totals.
func GeneratePDF(path string, records []models.TimeRecord, tags []models.Tag, start, end time.Time) error {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("TimeTag Report", props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(fmt.Sprintf("%s – %s", start.Format("2006-01-02"), end.Format("2006-01-02")), props.Text{
					Top:   3,
					Align: consts.Center,
					Size:  12,
				})
			})
		})
	})

	byID := tagIndex(tags)
	headers := []string{"Date", "Description", "Tags", "Duration"}

	rows := make([][]string, 0, len(records))
	tagMinutes := map[string]int{}
	total := 0
	for _, r := range records {
		minutes := timeutil.DurationMinutes(r.StartTime, r.EndTime)
		total += minutes
		for _, id := range r.Tags {
			tagMinutes[id] += minutes
		}
		rows = append(rows, []string{
			r.StartTime.Format("2006-01-02"),
			r.Description,
			strings.Join(tagNames(r.Tags, byID), ", "),
			timeutil.FormatDuration(minutes),
		})
	}

	m.Row(10, func() {
		m.Col(12, func() {
			m.Text("Records", props.Text{Top: 5, Style: consts.Bold, Size: 14})
		})
	})
	m.TableList(headers, rows, props.TableList{
		HeaderProp: props.TableListContent{
			Size:      10,
			GridSizes: []uint{2, 5, 3, 2},
		},
		ContentProp: props.TableListContent{
			Size:      10,
			GridSizes: []uint{2, 5, 3, 2},
		},
		Align:                consts.Left,
		AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
		HeaderContentSpace:   1,
		Line:                 false,
	})

	m.Row(10, func() {
		m.Col(12, func() {
			m.Text("Per Tag", props.Text{Top: 5, Style: consts.Bold, Size: 14})
		})
	})
	tagRows := [][]string{}
	for _, t := range tags {
		if minutes := tagMinutes[t.ID]; minutes > 0 {
			tagRows = append(tagRows, []string{t.Name, timeutil.FormatDuration(minutes)})
		}
	}
	m.TableList([]string{"Tag", "Duration"}, tagRows, props.TableList{
		HeaderProp: props.TableListContent{
			Size:      10,
			GridSizes: []uint{8, 4},
		},
		ContentProp: props.TableListContent{
			Size:      10,
			GridSizes: []uint{8, 4},
		},
		Align:              consts.Left,
		HeaderContentSpace: 1,
		Line:               false,
	})

	m.Row(20, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Total: %s", timeutil.FormatDuration(total)), props.Text{
				Top:   10,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  12,
			})
		})
	})

	return m.OutputFileAndClose(path)
}
