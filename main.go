// Package main provides the entry point for the PHASe application.
package main

import (
	"log"
	"os"
	"time"

	fyneapp "fyne.io/fyne/v2/app"

	"phase-analyzer/internal/app"
	"phase-analyzer/internal/version"
	"phase-analyzer/ui/mainwindow"
	"phase-analyzer/ui/prefs"
)

const autosaveInterval = 30 * time.Second

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting PHASe %s (%s)", version.Version, version.VersionName)

	fyneApp := fyneapp.NewWithID("com.vxco.phase")
	fyneApp.Settings().SetTheme(&app.PhaseTheme{})

	appState := app.NewState()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs)

	saver := app.NewAutosaver(appState, app.DefaultRecoveryPath(), autosaveInterval)
	saver.OnError(func(err error) {
		log.Printf("Autosave failed: %v", err)
	})
	win.OfferRecovery(saver)
	saver.Start()
	defer saver.Stop()

	// Handle command line arguments
	var workspacePath string
	if len(os.Args) > 1 {
		workspacePath = os.Args[1]
	}
	win.RestoreSession(workspacePath)

	win.ShowAndRun()

	if err := appPrefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}
