package ui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/EchoSun2025/TimeTag/internal/models"
	"github.com/EchoSun2025/TimeTag/internal/reminder"
	"github.com/EchoSun2025/TimeTag/internal/schedule"
	"github.com/EchoSun2025/TimeTag/internal/session"
	"github.com/EchoSun2025/TimeTag/internal/stats"
	"github.com/EchoSun2025/TimeTag/internal/store"
	"github.com/EchoSun2025/TimeTag/internal/timeutil"
)

const editTimeLayout = "2006-01-02 15:04"

// fyneNotifier delivers reminders through the system notification area.
type fyneNotifier struct{}

func (fyneNotifier) Notify(title, message string) {
	fyne.CurrentApp().SendNotification(fyne.NewNotification(title, message))
}

// Dashboard is the day view: the timeline for one day plus the recording
// controls.
type Dashboard struct {
	window  fyne.Window
	db      *store.Store
	tracker *session.Tracker
	nudges  *reminder.Scheduler

	selectedDay time.Time
	settings    models.Settings
	tags        []models.Tag

	timerData binding.String
	refresh   func()
}

func NewDashboard(w fyne.Window, db *store.Store, tracker *session.Tracker) *Dashboard {
	return &Dashboard{
		window:      w,
		db:          db,
		tracker:     tracker,
		nudges:      reminder.New(fyneNotifier{}),
		selectedDay: time.Now(),
		timerData:   binding.NewString(),
	}
}

func (d *Dashboard) MakeUI() fyne.CanvasObject {
	d.timerData.Set("00:00:00")

	timerLabel := widget.NewLabelWithData(d.timerData)
	timerLabel.TextStyle = fyne.TextStyle{Bold: true}
	timerLabel.Alignment = fyne.TextAlignCenter

	descEntry := widget.NewEntry()
	descEntry.PlaceHolder = "What are you doing?"

	tagPicker := widget.NewCheckGroup(nil, nil)
	tagPicker.Horizontal = true

	// Sub-items of the checked tags, for one-tap re-entry of frequent
	// descriptions.
	quickFill := widget.NewSelect(nil, func(item string) {
		if item != "" {
			descEntry.SetText(item)
		}
	})
	quickFill.PlaceHolder = "Quick fill"
	tagPicker.OnChanged = func(selected []string) {
		var items []string
		for _, name := range selected {
			for _, t := range d.tags {
				if t.Name == name {
					items = append(items, t.SubItems...)
				}
			}
		}
		quickFill.Options = items
		quickFill.ClearSelected()
		quickFill.Refresh()
	}

	var btn *widget.Button
	btn = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), func() {
		if d.tracker.Recording() {
			d.StopRecording()
			btn.SetText("Start")
			btn.SetIcon(theme.MediaPlayIcon())
		} else {
			if err := d.startRecording(descEntry.Text, tagPicker.Selected); err != nil {
				dialog.ShowError(err, d.window)
				return
			}
			btn.SetText("Stop")
			btn.SetIcon(theme.MediaStopIcon())
			descEntry.SetText("")
			tagPicker.SetSelected(nil)
		}
		d.refresh()
	})
	if d.tracker.Recording() {
		btn.SetText("Stop")
		btn.SetIcon(theme.MediaStopIcon())
	}

	dayLabel := widget.NewLabel("")
	summaryLabel := widget.NewLabel("")

	timeline := NewTimeline()
	timeline.OnMoved = func(rec models.TimeRecord) {
		// A manual move invalidates the cached pre-rounding times.
		rec.OriginalStartTime = nil
		rec.OriginalEndTime = nil
		rec.UpdatedAt = time.Now()
		if err := d.db.UpsertRecord(rec); err != nil {
			dialog.ShowError(err, d.window)
		}
		d.refresh()
	}
	timeline.OnSelected = func(rec models.TimeRecord) {
		if active, ok := d.tracker.Active(); ok && active.ID == rec.ID {
			return
		}
		d.showEditDialog(rec)
	}

	d.refresh = func() {
		now := time.Now()
		d.settings, _ = d.db.GetSettings()
		d.tags, _ = d.db.ListAllTags()
		timeline.SetWindow(d.settings.DefaultStartHour, d.settings.DefaultEndHour)

		if _, err := schedule.EnsureDay(d.db, d.selectedDay, d.tags, now); err != nil {
			fyne.LogError("materialize schedules", err)
		}

		records, _ := d.db.ListRecordsInRange(
			timeutil.DayStart(d.selectedDay), timeutil.DayEnd(d.selectedDay))

		var running string
		if snap, ok := d.tracker.Snapshot(now); ok && timeutil.SameDay(snap.StartTime, d.selectedDay) {
			records = append(records, snap)
			running = snap.ID
		}

		byID := tagIndex(d.tags)
		blocks := make([]TimelineBlock, 0, len(records))
		for _, rec := range records {
			blocks = append(blocks, TimelineBlock{
				Record:  rec,
				Color:   recordColor(rec, byID),
				Running: rec.ID == running,
			})
		}
		timeline.SetBlocks(blocks)

		day := stats.ComputeDay(records, d.tags, d.selectedDay)
		dayLabel.SetText(d.selectedDay.Format("Mon, 02 Jan 2006"))
		summaryLabel.SetText(fmt.Sprintf("Total %s · %d breaks",
			timeutil.FormatDuration(day.TotalMinutes), len(day.Breaks)))

		var names []string
		for _, t := range d.tags {
			if t.IsActive {
				names = append(names, t.Name)
			}
		}
		tagPicker.Options = names
		tagPicker.Refresh()
	}
	d.refresh()

	go func() {
		ticker := time.NewTicker(time.Second)
		tick := 0
		for range ticker.C {
			tick++
			fyne.Do(func() {
				now := time.Now()
				if d.tracker.Recording() {
					d.timerData.Set(formatTimer(d.tracker.Elapsed(now)))
				} else {
					d.timerData.Set("00:00:00")
				}
				active, _ := d.tracker.Active()
				var activePtr *models.ActiveRecord
				if d.tracker.Recording() {
					activePtr = &active
				}
				d.nudges.Tick(now, d.settings, activePtr, d.tags)
				// The running block grows on screen once a minute.
				if tick%60 == 0 && d.tracker.Recording() {
					d.refresh()
				}
			})
		}
	}()

	header := container.NewHBox(
		widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
			d.selectedDay = d.selectedDay.AddDate(0, 0, -1)
			d.refresh()
		}),
		widget.NewButton("Today", func() {
			d.selectedDay = time.Now()
			d.refresh()
		}),
		widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
			d.selectedDay = d.selectedDay.AddDate(0, 0, 1)
			d.refresh()
		}),
		layout.NewSpacer(),
		dayLabel,
	)

	controls := container.NewVBox(
		timerLabel,
		container.NewBorder(nil, nil, nil, btn, descEntry),
		container.NewBorder(nil, nil, nil, quickFill, tagPicker),
		summaryLabel,
	)

	return container.NewBorder(
		container.NewVBox(header, controls, widget.NewSeparator()),
		nil, nil, nil,
		container.NewVScroll(timeline),
	)
}

// RefreshDay reloads the current day view. Other tabs call it after they
// change records behind the dashboard's back.
func (d *Dashboard) RefreshDay() {
	if d.refresh != nil {
		d.refresh()
	}
}

func (d *Dashboard) startRecording(description string, tagNames []string) error {
	ids := make([]string, 0, len(tagNames))
	for _, name := range tagNames {
		for _, t := range d.tags {
			if t.Name == name {
				ids = append(ids, t.ID)
				break
			}
		}
	}
	active, err := d.tracker.Start(description, ids, time.Now())
	if err != nil {
		return err
	}
	// Crash-recovery hint; the session itself lives in memory.
	if err := d.db.SaveActiveHint(&active); err != nil {
		fyne.LogError("save active hint", err)
	}
	return nil
}

// StopRecording freezes the running session into a record. Safe to call
// from the tray when nothing is recording.
func (d *Dashboard) StopRecording() {
	if !d.tracker.Recording() {
		return
	}
	if _, err := d.tracker.Stop(d.db, time.Now()); err != nil {
		dialog.ShowError(err, d.window)
	}
	if err := d.db.SaveActiveHint(nil); err != nil {
		fyne.LogError("clear active hint", err)
	}
	d.timerData.Set("00:00:00")
	if d.refresh != nil {
		d.refresh()
	}
}

func (d *Dashboard) showEditDialog(rec models.TimeRecord) {
	descEntry := widget.NewEntry()
	descEntry.SetText(rec.Description)

	startEntry := widget.NewEntry()
	startEntry.SetText(rec.StartTime.Format(editTimeLayout))
	endEntry := widget.NewEntry()
	endEntry.SetText(rec.EndTime.Format(editTimeLayout))

	byID := tagIndex(d.tags)
	var names []string
	for _, t := range d.tags {
		names = append(names, t.Name)
	}
	tagPicker := widget.NewCheckGroup(names, nil)
	tagPicker.SetSelected(tagNames(rec.Tags, byID))

	deleteBtn := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), nil)
	deleteBtn.Importance = widget.DangerImportance

	form := widget.NewForm(
		widget.NewFormItem("Description", descEntry),
		widget.NewFormItem("Start", startEntry),
		widget.NewFormItem("End", endEntry),
		widget.NewFormItem("Tags", tagPicker),
	)
	content := container.NewVBox(form, widget.NewSeparator(), deleteBtn)

	dlg := dialog.NewCustomConfirm("Edit Record", "Save", "Cancel", content, func(save bool) {
		if !save {
			return
		}
		start, err1 := time.ParseInLocation(editTimeLayout, startEntry.Text, rec.StartTime.Location())
		end, err2 := time.ParseInLocation(editTimeLayout, endEntry.Text, rec.EndTime.Location())
		if err1 != nil || err2 != nil {
			dialog.ShowError(fmt.Errorf("times must look like %s", editTimeLayout), d.window)
			return
		}
		if !end.After(start) {
			dialog.ShowError(fmt.Errorf("end time must be after start time"), d.window)
			return
		}

		ids := make([]string, 0, len(tagPicker.Selected))
		for _, name := range tagPicker.Selected {
			for _, t := range d.tags {
				if t.Name == name {
					ids = append(ids, t.ID)
					break
				}
			}
		}

		rec.Description = descEntry.Text
		rec.StartTime = start
		rec.EndTime = end
		rec.Tags = ids
		rec.OriginalStartTime = nil
		rec.OriginalEndTime = nil
		rec.UpdatedAt = time.Now()
		if err := d.db.UpsertRecord(rec); err != nil {
			dialog.ShowError(err, d.window)
			return
		}
		d.refresh()
	}, d.window)

	deleteBtn.OnTapped = func() {
		dialog.ShowConfirm("Delete Record", "Delete this record?", func(confirmed bool) {
			if !confirmed {
				return
			}
			dlg.Hide()
			if err := d.db.DeleteRecord(rec.ID); err != nil {
				dialog.ShowError(err, d.window)
				return
			}
			d.refresh()
		}, d.window)
	}

	dlg.Resize(fyne.NewSize(420, dlg.MinSize().Height))
	dlg.Show()
}
