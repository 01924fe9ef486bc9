package main

import (
	_ "embed"

	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/EchoSun2025/TimeTag/internal/session"
	"github.com/EchoSun2025/TimeTag/internal/store"
	"github.com/EchoSun2025/TimeTag/internal/ui"
	"github.com/EchoSun2025/TimeTag/internal/updater"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
)

//go:embed Icon.png
var embeddedIconBytes []byte

var userConfigFilePath string

func setupViper() error {
	viper.SetConfigName("timetag")
	viper.SetConfigType("yaml")

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		if runtime.GOOS == "windows" {
			configHome = filepath.Join(homeDir, "AppData", "Roaming")
		} else {
			configHome = filepath.Join(homeDir, ".config")
		}
	}

	userConfigFilePath = filepath.Join(configHome, "timetag", "timetag.yml")
	viper.SetConfigFile(userConfigFilePath)

	if err := os.MkdirAll(filepath.Dir(userConfigFilePath), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, _ := os.UserHomeDir()
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	viper.SetDefault("data_folder", filepath.Join(dataHome, "timetag"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			log.Println("Config file not found; creating one with default values")
			if err := viper.WriteConfigAs(userConfigFilePath); err != nil {
				return fmt.Errorf("create config file: %w", err)
			}
		} else {
			return fmt.Errorf("read config file: %w", err)
		}
	}
	return nil
}

func main() {
	os.Setenv("FYNE_SCALE", "auto")

	go func() {
		tag, err := updater.SelfUpdate("EchoSun2025", "TimeTag")
		if err != nil {
			log.Printf("Self-update failed: %v", err)
		} else if tag != "" {
			log.Printf("Updated to %s; restart to run the new version", tag)
		}
	}()

	a := app.NewWithID("com.echosun.timetag")
	iconResource := fyne.NewStaticResource("timetag.png", embeddedIconBytes)
	a.SetIcon(iconResource)

	w := a.NewWindow("TimeTag")
	w.Resize(fyne.NewSize(480, 680))

	if err := setupViper(); err != nil {
		dialog.ShowError(err, w)
		w.ShowAndRun()
		return
	}

	db, err := store.Open(viper.GetString("data_folder"))
	if err != nil {
		dialog.ShowError(err, w)
		w.ShowAndRun()
		return
	}
	defer db.Close()

	if err := db.InitializeDefaults(time.Now()); err != nil {
		log.Printf("initialize defaults: %v", err)
	}

	// A hint left behind by a crash resumes the interrupted session.
	tracker := session.New()
	if hint, err := db.LoadActiveHint(); err == nil && hint != nil {
		tracker = session.Resume(*hint)
		log.Printf("Resumed session started at %s", hint.StartTime.Format(time.RFC3339))
	}

	dashboard := ui.NewDashboard(w, db, tracker)
	week := ui.NewWeek(w, db)
	month := ui.NewMonth(w, db)
	tags := ui.NewTags(w, db)
	settings := ui.NewSettings(w, db, userConfigFilePath)

	tags.OnChanged = dashboard.RefreshDay
	settings.OnDataChanged = dashboard.RefreshDay

	tabs := container.NewAppTabs(
		container.NewTabItem("Day", dashboard.MakeUI()),
		container.NewTabItem("Week", week.MakeUI()),
		container.NewTabItem("Month", month.MakeUI()),
		container.NewTabItem("Tags", tags.MakeUI()),
		container.NewTabItem("Settings", settings.MakeUI()),
	)
	w.SetContent(tabs)

	mini := ui.NewMiniWindow(a, tracker, dashboard)
	ui.SetupTray(a, w, iconResource, dashboard, mini)
	ui.CheckVersion(w, db)

	w.ShowAndRun()
}
