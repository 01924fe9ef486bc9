package ui

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/EchoSun2025/TimeTag/internal/session"
)

// MiniWindow is a small floating timer: the elapsed time of the running
// session and a stop button, for keeping an eye on a recording without
// the full window.
type MiniWindow struct {
	app     fyne.App
	tracker *session.Tracker
	dash    *Dashboard

	win  fyne.Window
	stop chan struct{}
}

func NewMiniWindow(a fyne.App, tracker *session.Tracker, dash *Dashboard) *MiniWindow {
	return &MiniWindow{app: a, tracker: tracker, dash: dash}
}

func (m *MiniWindow) Show() {
	if m.win != nil {
		m.win.Show()
		return
	}

	w := m.app.NewWindow("TimeTag")
	w.Resize(fyne.NewSize(200, 90))
	w.SetFixedSize(true)

	timerData := binding.NewString()
	timerData.Set("00:00:00")
	timerLabel := widget.NewLabelWithData(timerData)
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.Alignment = fyne.TextAlignCenter

	descLabel := widget.NewLabel("")
	descLabel.Alignment = fyne.TextAlignCenter
	descLabel.Truncation = fyne.TextTruncateEllipsis

	stopBtn := widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), func() {
		m.dash.StopRecording()
	})

	w.SetContent(container.NewVBox(timerLabel, descLabel, stopBtn))

	m.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case now := <-ticker.C:
				fyne.Do(func() {
					if active, ok := m.tracker.Active(); ok {
						timerData.Set(formatTimer(m.tracker.Elapsed(now)))
						descLabel.SetText(active.Description)
						stopBtn.Enable()
					} else {
						timerData.Set("00:00:00")
						descLabel.SetText("not recording")
						stopBtn.Disable()
					}
				})
			}
		}
	}()

	w.SetCloseIntercept(func() {
		w.Hide()
	})
	w.SetOnClosed(func() {
		close(m.stop)
		m.win = nil
	})

	m.win = w
	w.Show()
}
