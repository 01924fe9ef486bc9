package ui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/EchoSun2025/TimeTag/internal/models"
	"github.com/EchoSun2025/TimeTag/internal/schedule"
	"github.com/EchoSun2025/TimeTag/internal/store"
	"github.com/google/uuid"
)

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Tags is the tag catalog tab: colors, active/leisure flags, sub-items
// and weekly recurring schedules.
type Tags struct {
	window fyne.Window
	db     *store.Store

	tags    []models.Tag
	refresh func()

	// OnChanged lets the dashboard reload after catalog edits.
	OnChanged func()
}

func NewTags(w fyne.Window, db *store.Store) *Tags {
	return &Tags{window: w, db: db}
}

func (v *Tags) MakeUI() fyne.CanvasObject {
	list := widget.NewList(
		func() int { return len(v.tags) },
		func() fyne.CanvasObject {
			swatch := canvas.NewRectangle(color.Transparent)
			swatch.SetMinSize(fyne.NewSize(16, 16))
			return container.NewBorder(nil, nil,
				swatch,
				container.NewHBox(
					widget.NewLabel("flags"),
					widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), nil),
					widget.NewButtonWithIcon("", theme.DeleteIcon(), nil),
				),
				widget.NewLabel("name"))
		},
		func(i int, o fyne.CanvasObject) {
			tag := v.tags[i]
			box := o.(*fyne.Container)
			name := box.Objects[0].(*widget.Label)
			swatch := box.Objects[1].(*canvas.Rectangle)
			right := box.Objects[2].(*fyne.Container)
			flags := right.Objects[0].(*widget.Label)
			editBtn := right.Objects[1].(*widget.Button)
			delBtn := right.Objects[2].(*widget.Button)

			name.SetText(tag.Name)
			swatch.FillColor = parseHexColor(tag.Color)
			swatch.Refresh()

			var parts []string
			if !tag.IsActive {
				parts = append(parts, "inactive")
			}
			if tag.IsLeisure {
				parts = append(parts, "leisure")
			}
			if n := len(tag.RecurringSchedules); n > 0 {
				parts = append(parts, fmt.Sprintf("%d scheduled", n))
			}
			flags.SetText(strings.Join(parts, ", "))

			editBtn.OnTapped = func() { v.showEditDialog(tag) }
			delBtn.OnTapped = func() {
				dialog.ShowConfirm("Delete Tag",
					fmt.Sprintf("Delete %q? Records keep their history but lose this tag's color.", tag.Name),
					func(confirmed bool) {
						if !confirmed {
							return
						}
						if err := v.db.DeleteTag(tag.ID); err != nil {
							dialog.ShowError(err, v.window)
							return
						}
						v.changed()
					}, v.window)
			}
		},
	)

	v.refresh = func() {
		v.tags, _ = v.db.ListAllTags()
		list.Refresh()
	}
	v.refresh()

	addBtn := widget.NewButtonWithIcon("New Tag", theme.ContentAddIcon(), func() {
		v.showEditDialog(models.Tag{
			ID:        uuid.New().String(),
			Color:     "#4285F4",
			IsActive:  true,
			CreatedAt: time.Now(),
		})
	})

	return container.NewBorder(
		container.NewHBox(layout.NewSpacer(), addBtn),
		nil, nil, nil,
		list,
	)
}

func (v *Tags) changed() {
	v.refresh()
	if v.OnChanged != nil {
		v.OnChanged()
	}
}

func (v *Tags) showEditDialog(tag models.Tag) {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(tag.Name)

	colorEntry := widget.NewEntry()
	colorEntry.SetText(tag.Color)
	colorEntry.PlaceHolder = "#4285F4"

	activeCheck := widget.NewCheck("Counts toward statistics", nil)
	activeCheck.SetChecked(tag.IsActive)
	leisureCheck := widget.NewCheck("Leisure (shorter reminder cadence)", nil)
	leisureCheck.SetChecked(tag.IsLeisure)

	subItemsEntry := widget.NewMultiLineEntry()
	subItemsEntry.SetText(strings.Join(tag.SubItems, "\n"))
	subItemsEntry.PlaceHolder = "One sub-item per line"
	subItemsEntry.SetMinRowsVisible(3)

	schedules := append([]models.RecurringSchedule(nil), tag.RecurringSchedules...)
	scheduleRows := container.NewVBox()
	var rebuildSchedules func()
	rebuildSchedules = func() {
		scheduleRows.Objects = nil
		for i, s := range schedules {
			idx := i
			label := widget.NewLabel(fmt.Sprintf("%s %02d:%02d–%02d:%02d",
				weekdayNames[s.DayOfWeek], s.StartHour, s.StartMinute, s.EndHour, s.EndMinute))
			remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
				schedules = append(schedules[:idx], schedules[idx+1:]...)
				rebuildSchedules()
			})
			scheduleRows.Add(container.NewBorder(nil, nil, nil, remove, label))
		}
		scheduleRows.Refresh()
	}
	rebuildSchedules()

	daySelect := widget.NewSelect(weekdayNames, nil)
	daySelect.SetSelectedIndex(1)
	startEntry := widget.NewEntry()
	startEntry.PlaceHolder = "18:00"
	endEntry := widget.NewEntry()
	endEntry.PlaceHolder = "19:30"
	addSchedule := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		sh, sm, err1 := parseClock(startEntry.Text)
		eh, em, err2 := parseClock(endEntry.Text)
		if err1 != nil || err2 != nil {
			dialog.ShowError(fmt.Errorf("schedule times must look like 18:00"), v.window)
			return
		}
		s := schedule.ClampSchedule(models.RecurringSchedule{
			DayOfWeek:   daySelect.SelectedIndex(),
			StartHour:   sh,
			StartMinute: sm,
			EndHour:     eh,
			EndMinute:   em,
		})
		schedules = append(schedules, s)
		startEntry.SetText("")
		endEntry.SetText("")
		rebuildSchedules()
	})
	scheduleForm := container.NewHBox(daySelect, startEntry, widget.NewLabel("–"), endEntry, addSchedule)

	content := container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Name", nameEntry),
			widget.NewFormItem("Color", colorEntry),
		),
		activeCheck,
		leisureCheck,
		widget.NewLabel("Sub-items"),
		subItemsEntry,
		widget.NewLabel("Weekly schedules"),
		scheduleRows,
		scheduleForm,
	)

	dlg := dialog.NewCustomConfirm("Edit Tag", "Save", "Cancel",
		container.NewVScroll(content), func(save bool) {
			if !save {
				return
			}
			if strings.TrimSpace(nameEntry.Text) == "" {
				dialog.ShowError(fmt.Errorf("tag name is required"), v.window)
				return
			}

			tag.Name = strings.TrimSpace(nameEntry.Text)
			tag.Color = strings.TrimSpace(colorEntry.Text)
			tag.IsActive = activeCheck.Checked
			tag.IsLeisure = leisureCheck.Checked
			tag.RecurringSchedules = schedules

			tag.SubItems = nil
			for _, line := range strings.Split(subItemsEntry.Text, "\n") {
				if item := strings.TrimSpace(line); item != "" {
					tag.SubItems = append(tag.SubItems, item)
				}
			}

			if err := v.db.UpsertTag(tag); err != nil {
				dialog.ShowError(err, v.window)
				return
			}
			v.changed()
		}, v.window)
	dlg.Resize(fyne.NewSize(460, 520))
	dlg.Show()
}

func parseClock(s string) (hour, minute int, err error) {
	if _, err = fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &hour, &minute); err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("out of range: %s", s)
	}
	return hour, minute, nil
}
