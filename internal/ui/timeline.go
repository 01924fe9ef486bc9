package ui

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	overlap "github.com/EchoSun2025/TimeTag/internal/layout"
	"github.com/EchoSun2025/TimeTag/internal/models"
	"github.com/EchoSun2025/TimeTag/internal/timeutil"
)

const (
	minuteHeight    float32 = 1.2
	hourGutterWidth float32 = 52
	dragSnapMinutes         = 5
	minBlockHeight  float32 = 18
)

// TimelineBlock couples a record with its display color. The running
// session is rendered like any other block but cannot be dragged.
type TimelineBlock struct {
	Record  models.TimeRecord
	Color   color.Color
	Running bool
}

// Timeline renders one day as a vertical hour ruler with record blocks.
// Blocks that overlap, or sit within ten minutes of each other, share the
// horizontal space in side-by-side columns. A completed block can be
// dragged vertically; the move stays a local draft while the pointer is
// down and is reported through OnMoved only on release.
type Timeline struct {
	widget.BaseWidget

	startHour int
	endHour   int
	blocks    []TimelineBlock
	columns   map[string]overlap.Placement

	OnMoved    func(record models.TimeRecord)
	OnSelected func(record models.TimeRecord)
}

func NewTimeline() *Timeline {
	t := &Timeline{startHour: 8, endHour: 21, columns: map[string]overlap.Placement{}}
	t.ExtendBaseWidget(t)
	return t
}

// SetWindow sets the default visible hour range. Blocks outside it still
// show; the ruler stretches to include them.
func (t *Timeline) SetWindow(startHour, endHour int) {
	t.startHour = timeutil.Clamp(startHour, 0, 23)
	t.endHour = timeutil.Clamp(endHour, t.startHour+1, 24)
}

// SetBlocks replaces the day's content and recomputes column placement.
func (t *Timeline) SetBlocks(blocks []TimelineBlock) {
	t.blocks = blocks

	intervals := make([]overlap.Interval, 0, len(blocks))
	for _, b := range blocks {
		intervals = append(intervals, overlap.Interval{
			ID:    b.Record.ID,
			Start: b.Record.StartTime,
			End:   b.Record.EndTime,
		})
	}
	t.columns = make(map[string]overlap.Placement, len(intervals))
	for _, p := range overlap.Compute(intervals) {
		t.columns[p.Interval.ID] = p
	}
	t.Refresh()
}

func (t *Timeline) CreateRenderer() fyne.WidgetRenderer {
	r := &timelineRenderer{timeline: t}
	r.rebuild()
	return r
}

// visibleHours returns the ruler range, widened to cover every block.
func (t *Timeline) visibleHours() (int, int) {
	start, end := t.startHour, t.endHour
	for _, b := range t.blocks {
		if h := b.Record.StartTime.Hour(); h < start {
			start = h
		}
		endHour := b.Record.EndTime.Hour()
		if b.Record.EndTime.Minute() > 0 || b.Record.EndTime.Second() > 0 {
			endHour++
		}
		if endHour > end {
			end = endHour
		}
	}
	if end > 24 {
		end = 24
	}
	return start, end
}

type timelineRenderer struct {
	timeline *Timeline

	hourLines  []*canvas.Line
	hourLabels []*canvas.Text
	blockBoxes []*timelineBlockWidget
	objects    []fyne.CanvasObject
}

func (r *timelineRenderer) rebuild() {
	t := r.timeline
	start, end := t.visibleHours()

	r.hourLines = r.hourLines[:0]
	r.hourLabels = r.hourLabels[:0]
	r.blockBoxes = r.blockBoxes[:0]
	r.objects = r.objects[:0]

	lineColor := withAlpha(theme.Color(theme.ColorNameForeground), 0x30)
	for h := start; h <= end; h++ {
		line := canvas.NewLine(lineColor)
		line.StrokeWidth = 1
		label := canvas.NewText(fmt.Sprintf("%02d:00", h%24), theme.Color(theme.ColorNameForeground))
		label.TextSize = 11
		r.hourLines = append(r.hourLines, line)
		r.hourLabels = append(r.hourLabels, label)
		r.objects = append(r.objects, line, label)
	}

	for _, b := range t.blocks {
		box := newTimelineBlockWidget(t, b)
		r.blockBoxes = append(r.blockBoxes, box)
		r.objects = append(r.objects, box)
	}
}

func (r *timelineRenderer) Layout(size fyne.Size) {
	t := r.timeline
	start, _ := t.visibleHours()
	contentWidth := size.Width - hourGutterWidth

	for i, line := range r.hourLines {
		y := float32(i) * 60 * minuteHeight
		line.Position1 = fyne.NewPos(hourGutterWidth, y)
		line.Position2 = fyne.NewPos(size.Width, y)
		r.hourLabels[i].Move(fyne.NewPos(4, y-7))
	}

	windowStart := float32(start * 60)
	for _, box := range r.blockBoxes {
		rec := box.block.Record
		startMin := float32(rec.StartTime.Hour()*60+rec.StartTime.Minute()) - windowStart
		endMin := float32(rec.EndTime.Hour()*60+rec.EndTime.Minute()) - windowStart
		if rec.EndTime.Day() != rec.StartTime.Day() {
			endMin = float32((t.endHour - start) * 60)
		}

		height := (endMin - startMin) * minuteHeight
		if height < minBlockHeight {
			height = minBlockHeight
		}

		pl, ok := t.columns[rec.ID]
		cols := 1
		col := 0
		if ok {
			cols, col = pl.TotalColumns, pl.Column
		}
		colWidth := contentWidth / float32(cols)
		x := hourGutterWidth + float32(col)*colWidth

		box.Resize(fyne.NewSize(colWidth-4, height))
		box.Move(fyne.NewPos(x+2, startMin*minuteHeight))
	}
}

func (r *timelineRenderer) MinSize() fyne.Size {
	start, end := r.timeline.visibleHours()
	return fyne.NewSize(320, float32((end-start)*60)*minuteHeight+minBlockHeight)
}

func (r *timelineRenderer) Refresh() {
	r.rebuild()
	r.Layout(r.timeline.Size())
	canvas.Refresh(r.timeline)
}

func (r *timelineRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *timelineRenderer) Destroy()                     {}

type timelineBlockWidget struct {
	widget.BaseWidget

	owner *Timeline
	block TimelineBlock

	rect       *canvas.Rectangle
	label      *widget.Label
	dragPixels float32
}

func newTimelineBlockWidget(owner *Timeline, block TimelineBlock) *timelineBlockWidget {
	alpha := uint8(0xb8)
	if block.Running {
		alpha = 0xe8
	}
	rect := canvas.NewRectangle(withAlpha(block.Color, alpha))
	rect.CornerRadius = 4

	rec := block.Record
	text := fmt.Sprintf("%s–%s %s",
		timeutil.FormatClock(rec.StartTime), timeutil.FormatClock(rec.EndTime), rec.Description)
	label := widget.NewLabel(text)
	label.Truncation = fyne.TextTruncateEllipsis

	b := &timelineBlockWidget{owner: owner, block: block, rect: rect, label: label}
	b.ExtendBaseWidget(b)
	return b
}

func (b *timelineBlockWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(b.rect, b.label))
}

func (b *timelineBlockWidget) Tapped(_ *fyne.PointEvent) {
	if b.owner.OnSelected != nil {
		b.owner.OnSelected(b.block.Record)
	}
}

func (b *timelineBlockWidget) Dragged(e *fyne.DragEvent) {
	if b.block.Running {
		return
	}
	b.dragPixels += e.Dragged.DY
	b.Move(fyne.NewPos(b.Position().X, b.Position().Y+e.Dragged.DY))
}

func (b *timelineBlockWidget) DragEnd() {
	if b.block.Running {
		return
	}
	minutes := int(b.dragPixels / minuteHeight)
	b.dragPixels = 0

	// Snap to five-minute steps; a tiny wiggle is not an edit.
	minutes = (minutes / dragSnapMinutes) * dragSnapMinutes
	if minutes == 0 {
		b.owner.Refresh()
		return
	}

	rec := b.block.Record
	shift := time.Duration(minutes) * time.Minute
	rec.StartTime = rec.StartTime.Add(shift)
	rec.EndTime = rec.EndTime.Add(shift)
	if b.owner.OnMoved != nil {
		b.owner.OnMoved(rec)
	}
}
