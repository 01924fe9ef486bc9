package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// SetupTray installs the system tray menu and makes the close button hide
// the window instead of quitting.
func SetupTray(a fyne.App, w fyne.Window, icon fyne.Resource, d *Dashboard, mini *MiniWindow) {
	if desk, ok := a.(desktop.App); ok {
		m := fyne.NewMenu("TimeTag",
			fyne.NewMenuItem("Show", func() {
				w.Show()
			}),
			fyne.NewMenuItem("Mini Timer", func() {
				mini.Show()
			}),
			fyne.NewMenuItem("Stop Recording", func() {
				d.StopRecording()
			}),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Quit", func() {
				a.Quit()
			}),
		)
		desk.SetSystemTrayMenu(m)
		desk.SetSystemTrayIcon(icon)
	}

	w.SetCloseIntercept(func() {
		w.Hide()
	})
}
