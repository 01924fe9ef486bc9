package ui

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/viper"

	"github.com/EchoSun2025/TimeTag/internal/models"
	"github.com/EchoSun2025/TimeTag/internal/store"
	"github.com/EchoSun2025/TimeTag/internal/transfer"
)

var roundingIntervals = []string{"5", "10", "15", "30", "60"}

// Settings is the configuration tab: rounding, week length, reminders,
// data folder and import/export.
type Settings struct {
	window             fyne.Window
	db                 *store.Store
	userConfigFilePath string

	// OnDataChanged fires after imports, erases or rounding toggles so
	// the other tabs can reload.
	OnDataChanged func()
}

func NewSettings(w fyne.Window, db *store.Store, userConfigFilePath string) *Settings {
	return &Settings{window: w, db: db, userConfigFilePath: userConfigFilePath}
}

func (v *Settings) MakeUI() fyne.CanvasObject {
	settings, _ := v.db.GetSettings()

	roundingCheck := widget.NewCheck("Round records to interval", nil)
	roundingCheck.SetChecked(settings.RoundingEnabled())
	intervalSelect := widget.NewSelect(roundingIntervals, nil)
	intervalSelect.SetSelected(strconv.Itoa(settings.RoundingInterval))

	weekRadio := widget.NewRadioGroup([]string{"5 days", "7 days"}, nil)
	if settings.WeekDaysCount == 7 {
		weekRadio.SetSelected("7 days")
	} else {
		weekRadio.SetSelected("5 days")
	}
	weekRadio.Horizontal = true

	dayStartEntry := widget.NewEntry()
	dayStartEntry.SetText(strconv.Itoa(settings.DefaultStartHour))
	dayEndEntry := widget.NewEntry()
	dayEndEntry.SetText(strconv.Itoa(settings.DefaultEndHour))

	reminderCheck := widget.NewCheck("Enable reminders", nil)
	reminderCheck.SetChecked(settings.RemindersEnabled())
	normalInterval := widget.NewEntry()
	normalInterval.SetText(strconv.Itoa(settings.NormalInterval))
	leisureInterval := widget.NewEntry()
	leisureInterval.SetText(strconv.Itoa(settings.LeisureInterval))

	normalMode := widget.NewSelect([]string{models.MessageModeRandom, models.MessageModeCustom}, nil)
	normalMode.SetSelected(settings.NormalMode)
	normalMessage := widget.NewEntry()
	normalMessage.SetText(settings.NormalMessage)
	leisureMode := widget.NewSelect([]string{models.MessageModeRandom, models.MessageModeCustom}, nil)
	leisureMode.SetSelected(settings.LeisureMode)
	leisureMessage := widget.NewEntry()
	leisureMessage.SetText(settings.LeisureMessage)

	saveBtn := widget.NewButton("Save Settings", func() {
		v.saveSettings(settingsForm{
			rounding:        roundingCheck.Checked,
			interval:        intervalSelect.Selected,
			weekDays:        weekRadio.Selected,
			dayStart:        dayStartEntry.Text,
			dayEnd:          dayEndEntry.Text,
			reminders:       reminderCheck.Checked,
			normalInterval:  normalInterval.Text,
			normalMode:      normalMode.Selected,
			normalMessage:   normalMessage.Text,
			leisureInterval: leisureInterval.Text,
			leisureMode:     leisureMode.Selected,
			leisureMessage:  leisureMessage.Text,
		})
	})
	saveBtn.Importance = widget.HighImportance

	form := widget.NewForm(
		widget.NewFormItem("Rounding", container.NewHBox(roundingCheck, intervalSelect, widget.NewLabel("minutes"))),
		widget.NewFormItem("Week length", weekRadio),
		widget.NewFormItem("Day starts at", dayStartEntry),
		widget.NewFormItem("Day ends at", dayEndEntry),
		widget.NewFormItem("Reminders", reminderCheck),
		widget.NewFormItem("Focus nudge (min)", container.NewGridWithColumns(2, normalInterval, normalMode)),
		widget.NewFormItem("Focus message", normalMessage),
		widget.NewFormItem("Leisure nudge (min)", container.NewGridWithColumns(2, leisureInterval, leisureMode)),
		widget.NewFormItem("Leisure message", leisureMessage),
	)

	dataSection := v.makeDataSection()

	quitBtn := widget.NewButtonWithIcon("Quit", theme.LogoutIcon(), func() {
		fyne.CurrentApp().Quit()
	})

	return container.NewVScroll(container.NewVBox(
		form,
		saveBtn,
		widget.NewSeparator(),
		dataSection,
		widget.NewSeparator(),
		quitBtn,
	))
}

type settingsForm struct {
	rounding        bool
	interval        string
	weekDays        string
	dayStart        string
	dayEnd          string
	reminders       bool
	normalInterval  string
	normalMode      string
	normalMessage   string
	leisureInterval string
	leisureMode     string
	leisureMessage  string
}

func (v *Settings) saveSettings(form settingsForm) {
	old, err := v.db.GetSettings()
	if err != nil {
		dialog.ShowError(err, v.window)
		return
	}

	next := old
	next.TimeRounding = 0
	if form.rounding {
		next.TimeRounding = 1
	}
	next.RoundingInterval = atoiOr(form.interval, old.RoundingInterval)
	next.WeekDaysCount = 5
	if form.weekDays == "7 days" {
		next.WeekDaysCount = 7
	}
	next.DefaultStartHour = atoiOr(form.dayStart, old.DefaultStartHour)
	next.DefaultEndHour = atoiOr(form.dayEnd, old.DefaultEndHour)
	next.ReminderEnabled = 0
	if form.reminders {
		next.ReminderEnabled = 1
	}
	next.NormalInterval = atoiOr(form.normalInterval, old.NormalInterval)
	next.NormalMode = form.normalMode
	next.NormalMessage = form.normalMessage
	next.LeisureInterval = atoiOr(form.leisureInterval, old.LeisureInterval)
	next.LeisureMode = form.leisureMode
	next.LeisureMessage = form.leisureMessage

	if err := v.db.UpdateSettings(next); err != nil {
		dialog.ShowError(err, v.window)
		return
	}

	now := time.Now()
	switch {
	case next.RoundingEnabled() && (!old.RoundingEnabled() || next.RoundingInterval != old.RoundingInterval):
		err = v.db.ApplyRounding(next.RoundingInterval, now)
	case !next.RoundingEnabled() && old.RoundingEnabled():
		err = v.db.RemoveRounding(now)
	}
	if err != nil {
		dialog.ShowError(err, v.window)
		return
	}

	v.dataChanged()
	dialog.ShowInformation("Settings", "Settings saved", v.window)
}

func (v *Settings) makeDataSection() fyne.CanvasObject {
	folderEntry := widget.NewEntry()
	folderEntry.SetText(viper.GetString("data_folder"))

	browseBtn := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), func() {
		dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				dialog.ShowError(err, v.window)
				return
			}
			if uri == nil {
				return
			}
			folderEntry.SetText(uri.Path())
		}, v.window).Show()
	})

	saveFolderBtn := widget.NewButton("Save Data Folder", func() {
		if folderEntry.Text == "" {
			dialog.ShowError(fmt.Errorf("data folder cannot be empty"), v.window)
			return
		}
		viper.Set("data_folder", folderEntry.Text)
		if err := viper.WriteConfigAs(v.userConfigFilePath); err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		dialog.ShowInformation("Data Folder",
			"Saved. The new folder is used after the next start.", v.window)
	})

	exportBtn := widget.NewButtonWithIcon("Export JSON", theme.DownloadIcon(), v.exportJSON)
	importBtn := widget.NewButtonWithIcon("Import JSON", theme.UploadIcon(), v.importJSON)

	eraseBtn := widget.NewButtonWithIcon("Erase All History", theme.DeleteIcon(), func() {
		dialog.ShowConfirm("Erase All History",
			"Delete every record and tag? This cannot be undone.",
			func(confirmed bool) {
				if !confirmed {
					return
				}
				if err := v.db.ClearAll(); err != nil {
					dialog.ShowError(err, v.window)
					return
				}
				v.dataChanged()
			}, v.window)
	})
	eraseBtn.Importance = widget.DangerImportance

	return container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Data folder", container.NewBorder(nil, nil, nil, browseBtn, folderEntry)),
		),
		saveFolderBtn,
		container.NewHBox(exportBtn, importBtn),
		eraseBtn,
	)
}

func (v *Settings) exportJSON() {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		data, err := transfer.Export(v.db, nil, nil, time.Now())
		if err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		if _, err := writer.Write(data); err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		dialog.ShowInformation("Export", "Data exported", v.window)
	}, v.window)
}

func (v *Settings) importJSON() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		doc, err := transfer.Parse(data)
		if err != nil {
			dialog.ShowError(err, v.window)
			return
		}

		var dlg dialog.Dialog
		mergeBtn := widget.NewButton("Merge with existing data", func() {
			dlg.Hide()
			result, err := transfer.ImportMerge(v.db, doc, time.Now())
			if err != nil {
				dialog.ShowError(err, v.window)
				return
			}
			v.dataChanged()
			dialog.ShowInformation("Import",
				fmt.Sprintf("Added %d records, %d tags (%d tags updated)",
					result.AddedRecords, result.AddedTags, result.UpdatedTags), v.window)
		})
		replaceBtn := widget.NewButton("Replace everything", func() {
			dlg.Hide()
			dialog.ShowConfirm("Replace Everything",
				"Existing records and tags will be deleted first. Continue?",
				func(confirmed bool) {
					if !confirmed {
						return
					}
					records, tags, err := transfer.ImportReplace(v.db, doc, time.Now())
					if err != nil {
						dialog.ShowError(err, v.window)
						return
					}
					v.dataChanged()
					dialog.ShowInformation("Import",
						fmt.Sprintf("Loaded %d records, %d tags", records, tags), v.window)
				}, v.window)
		})
		replaceBtn.Importance = widget.DangerImportance

		content := container.NewVBox(
			widget.NewLabel(fmt.Sprintf("File contains %d records and %d tags.",
				len(doc.Records), len(doc.Tags))),
			mergeBtn,
			replaceBtn,
		)
		dlg = dialog.NewCustom("Import", "Cancel", content, v.window)
		dlg.Show()
	}, v.window)
}

func (v *Settings) dataChanged() {
	if v.OnDataChanged != nil {
		v.OnDataChanged()
	}
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
