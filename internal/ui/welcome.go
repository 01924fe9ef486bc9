package ui

import (
	_ "embed"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/EchoSun2025/TimeTag/internal/store"
	"github.com/EchoSun2025/TimeTag/internal/version"
)

//go:embed CHANGELOG.md
var changelogData string

// CheckVersion shows the release notes once after an update or on first
// run, then records the running version.
func CheckVersion(w fyne.Window, db *store.Store) {
	state, _ := db.GetAppState()
	if state.LastRunVersion == version.Version {
		return
	}

	showWelcomeDialog(w, version.Version)

	state.LastRunVersion = version.Version
	if err := db.SaveAppState(state); err != nil {
		fyne.LogError("save app state", err)
	}
}

func showWelcomeDialog(w fyne.Window, v string) {
	notes := changelogSection(v)
	if notes == "" {
		return
	}

	content := widget.NewRichTextFromMarkdown(notes)
	scroll := container.NewScroll(content)
	scroll.SetMinSize(fyne.NewSize(400, 300))

	dlg := dialog.NewCustom("What's New in "+v, "Close", scroll, w)
	dlg.Resize(fyne.NewSize(500, 400))
	dlg.Show()
}

// changelogSection extracts the "## <version>" block from the embedded
// changelog, without its header. The dev build gets the newest block.
func changelogSection(v string) string {
	var extracted []string
	capture := false

	for _, line := range strings.Split(changelogData, "\n") {
		if strings.HasPrefix(line, "## ") {
			if capture {
				break
			}
			if v == "dev" || strings.Contains(line, v) ||
				strings.Contains(line, strings.TrimPrefix(v, "v")) {
				capture = true
			}
			continue
		}
		if capture {
			extracted = append(extracted, line)
		}
	}
	return strings.TrimSpace(strings.Join(extracted, "\n"))
}
