// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"phase-analyzer/internal/app"
	"phase-analyzer/internal/micrograph"
	"phase-analyzer/internal/version"
	"phase-analyzer/internal/workspace"
	"phase-analyzer/ui/canvas"
	"phase-analyzer/ui/dialogs"
	"phase-analyzer/ui/panels"
	"phase-analyzer/ui/prefs"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.MicrographCanvas
	panel     *panels.ControlPanel
	statusBar *widget.Label

	// Menu items that need state tracking
	fitToWindowItem *fyne.MenuItem
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("PHASe")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.refreshTitle()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewMicrographCanvas()

	mw.panel = panels.NewControlPanel(mw.state, mw.canvas)
	mw.statusBar = widget.NewLabel("Load an image to start measuring")

	mw.panel.OnStatus(mw.updateStatus)
	mw.panel.OnLoadImage(mw.onLoadImage)
	mw.panel.OnExport(mw.onExportCSV)
	mw.panel.OnLabelScale(func(v float64) {
		mw.prefs.SetFloat(prefs.KeyLabelSize, v)
	})

	mw.canvas.OnLeftClick(mw.panel.HandleClick)
	mw.canvas.OnRightClick(mw.onEditParticleAt)
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.updateStatus(fmt.Sprintf("Zoom: %.0f%%", zoom*100))
	})
	mw.canvas.SetFrame(mw.state.Frame)

	toolbar := mw.createToolbar()
	canvasArea := container.NewBorder(toolbar, nil, nil, nil, mw.canvas.Container())

	split := container.NewHSplit(mw.panel.Container(), canvasArea)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1280, 800))
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", mw.onZoomOut)
	zoomInBtn := widget.NewButton("+", mw.onZoomIn)
	fitBtn := widget.NewButton("Fit", mw.onToggleFitToWindow)
	actualBtn := widget.NewButton("1:1", mw.onActualSize)

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		actualBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Workspace", mw.onNewWorkspace),
		fyne.NewMenuItem("Open Workspace...", mw.onOpenWorkspace),
		mw.buildRecentMenu(),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Workspace", mw.onSaveWorkspace),
		fyne.NewMenuItem("Save Workspace As...", mw.onSaveWorkspaceAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Load Image...", mw.onLoadImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export CSV...", mw.onExportCSV),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Copy Results", mw.onCopyResults),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Selections", func() { mw.state.ClearSelections() }),
		fyne.NewMenuItem("Clear Workspace", mw.onClearWorkspace),
	)

	mw.fitToWindowItem = fyne.NewMenuItem("  Fit to Window", mw.onToggleFitToWindow)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		mw.fitToWindowItem,
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

// buildRecentMenu builds the File > Open Recent submenu.
func (mw *MainWindow) buildRecentMenu() *fyne.MenuItem {
	recent := mw.prefs.RecentFiles()
	items := make([]*fyne.MenuItem, 0, len(recent))
	for _, path := range recent {
		p := path
		items = append(items, fyne.NewMenuItem(filepath.Base(p), func() {
			mw.confirmUnsaved(func() { mw.openWorkspacePath(p) })
		}))
	}
	if len(items) == 0 {
		empty := fyne.NewMenuItem("(empty)", nil)
		empty.Disabled = true
		items = append(items, empty)
	}

	item := fyne.NewMenuItem("Open Recent", nil)
	item.ChildMenu = fyne.NewMenu("", items...)
	return item
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		m, _ := data.(*micrograph.Micrograph)
		mw.canvas.SetMicrograph(m)
		mw.canvas.SetFitToWindow(true)
		if m != nil {
			mw.updateStatus(fmt.Sprintf("Image loaded (%dx%d)", m.Width(), m.Height()))
		}
	})

	mw.state.On(app.EventFrameChanged, func(interface{}) {
		mw.canvas.SetFrame(mw.state.Frame)
	})

	mw.state.On(app.EventParticlesChanged, func(interface{}) {
		mw.canvas.SetParticles(mw.state.Particles)
	})

	mw.state.On(app.EventModified, func(interface{}) {
		mw.refreshTitle()
	})

	mw.state.On(app.EventWorkspaceLoaded, func(data interface{}) {
		mw.panel.Sync()
		mw.refreshTitle()
		if path, ok := data.(string); ok {
			mw.updateStatus("Workspace loaded: " + filepath.Base(path))
		}
	})

	mw.state.On(app.EventWorkspaceSaved, func(data interface{}) {
		mw.refreshTitle()
		if path, ok := data.(string); ok {
			mw.prefs.AddRecentFile(path)
			mw.prefs.Save()
			mw.setupMenus()
			mw.updateStatus("Workspace saved: " + filepath.Base(path))
		}
	})
}

// refreshTitle shows the workspace name with an asterisk for unsaved
// changes.
func (mw *MainWindow) refreshTitle() {
	title := "PHASe - " + mw.state.Name
	if mw.state.Modified {
		title += " *"
	}
	mw.SetTitle(title)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDirectory)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDirectory, filepath.Dir(filePath))
	mw.prefs.Save()
}

// confirmUnsaved runs proceed, asking first when the session has
// unsaved changes.
func (mw *MainWindow) confirmUnsaved(proceed func()) {
	if !mw.state.Modified {
		proceed()
		return
	}
	dialog.ShowConfirm("Unsaved Changes",
		"The current workspace has unsaved changes. Discard them?",
		func(ok bool) {
			if ok {
				proceed()
			}
		}, mw.Window)
}

// RestoreSession applies persisted preferences and an optional
// workspace path from the command line.
func (mw *MainWindow) RestoreSession(workspacePath string) {
	if v := mw.prefs.Float(prefs.KeyLabelSize, app.DefaultLabelSize); v > 0 {
		mw.canvas.SetLabelScale(v / 100)
	}
	if workspacePath != "" {
		mw.openWorkspacePath(workspacePath)
	}
	if !mw.prefs.Bool(prefs.KeyTourDone, false) {
		mw.showWelcome()
	}
}

// showWelcome walks a first-time user through the measurement steps.
// Shown once; the flag persists with the preferences.
func (mw *MainWindow) showWelcome() {
	dialog.ShowInformation("Welcome to PHASe",
		"Measuring particle heights takes four steps:\n\n"+
			"1. Load a capillary image (File > Load Image).\n"+
			"2. Click the top and bottom inner edges of the capillary.\n"+
			"3. Enter the capillary height, e.g. \"50um\" or \"1.5mm\".\n"+
			"4. Click particles to measure them, then export to CSV.\n\n"+
			"Tilted capillary? Set the angle with the slider before marking.",
		mw.Window)
	mw.prefs.SetBool(prefs.KeyTourDone, true)
	mw.prefs.Save()
}

// OfferRecovery prompts to restore an autosaved session left behind by
// a crash.
func (mw *MainWindow) OfferRecovery(saver *app.Autosaver) {
	if !saver.HasRecovery() {
		return
	}
	dialog.ShowConfirm("Recovered Workspace",
		"An autosaved workspace from a previous session was found. Restore it?",
		func(ok bool) {
			if ok {
				mw.openWorkspacePath(saver.RecoveryPath())
				// Treat the restored data as unsaved
				mw.state.WorkspacePath = ""
				mw.state.SetModified(true)
			}
		}, mw.Window)
}

// Menu action handlers

func (mw *MainWindow) onNewWorkspace() {
	mw.confirmUnsaved(func() {
		mw.state.ClearWorkspace()
		mw.panel.Sync()
		mw.refreshTitle()
		mw.updateStatus("New workspace")
	})
}

func (mw *MainWindow) onOpenWorkspace() {
	mw.confirmUnsaved(func() {
		fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			reader.Close()
			path := reader.URI().Path()
			mw.saveLastDir(path)
			mw.openWorkspacePath(path)
		}, mw.Window)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{workspace.Extension}))
		if loc := mw.getLastDir(); loc != nil {
			fd.SetLocation(loc)
		}
		fd.Show()
	})
}

func (mw *MainWindow) openWorkspacePath(path string) {
	if err := mw.state.LoadWorkspace(path); err != nil {
		mw.prefs.RemoveRecentFile(path)
		mw.prefs.Save()
		mw.setupMenus()
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.prefs.AddRecentFile(path)
	mw.prefs.Save()
	mw.setupMenus()
}

func (mw *MainWindow) onSaveWorkspace() {
	if mw.state.WorkspacePath == "" {
		mw.onSaveWorkspaceAs()
		return
	}
	if err := mw.state.SaveWorkspace(mw.state.WorkspacePath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveWorkspaceAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != workspace.Extension {
			path += workspace.Extension
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveWorkspace(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName(mw.state.Name + workspace.Extension)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onLoadImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)

		if err := mw.state.LoadImage(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.panel.Sync()
		mw.updateStatus("Click the top inner edge of the capillary")
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter(micrograph.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExportCSV() {
	if len(mw.state.Particles) == 0 {
		mw.updateStatus("Nothing to export: no particles marked")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != ".csv" {
			path += ".csv"
		}
		mw.saveLastDir(path)
		if err := mw.state.ExportCSV(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exported " + filepath.Base(path))
	}, mw.Window)
	fd.SetFileName(mw.state.Name + ".csv")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onCopyResults() {
	if err := mw.state.CopyResults(); err != nil {
		mw.updateStatus("Copy failed: " + err.Error())
		return
	}
	mw.updateStatus("Results copied to clipboard")
}

func (mw *MainWindow) onClearWorkspace() {
	mw.confirmUnsaved(func() {
		mw.state.ClearWorkspace()
		mw.panel.Sync()
		mw.refreshTitle()
		mw.updateStatus("Workspace cleared")
	})
}

// onEditParticleAt opens the particle editor for a right-clicked
// marker.
func (mw *MainWindow) onEditParticleAt(x, y float64) {
	// Generous hit radius in image pixels, widened when zoomed out.
	radius := 10.0 / mw.canvas.GetZoom()
	if radius < 10 {
		radius = 10
	}
	i := mw.state.ParticleAt(x, y, radius)
	if i < 0 {
		return
	}

	p := mw.state.Particles[i]
	dialogs.ShowParticleEditor(mw.Window, p, app.BetaFeaturesEnabled,
		func(name, notes string) {
			if name != "" && name != p.Name {
				mw.state.RenameParticle(i, name)
			}
			if notes != p.Notes {
				mw.state.SetParticleNotes(i, notes)
			}
		},
		func() {
			mw.state.RemoveParticle(i)
			mw.updateStatus("Particle removed")
		})
}

func (mw *MainWindow) onZoomIn() {
	mw.disableFitToWindow()
	mw.canvas.ZoomIn()
}

func (mw *MainWindow) onZoomOut() {
	mw.disableFitToWindow()
	mw.canvas.ZoomOut()
}

func (mw *MainWindow) onToggleFitToWindow() {
	enabled := !mw.canvas.GetFitToWindow()
	mw.canvas.SetFitToWindow(enabled)

	if enabled {
		mw.fitToWindowItem.Label = "✓ Fit to Window"
	} else {
		mw.fitToWindowItem.Label = "  Fit to Window"
	}
}

func (mw *MainWindow) onActualSize() {
	mw.disableFitToWindow()
	mw.canvas.SetZoom(1.0)
}

func (mw *MainWindow) disableFitToWindow() {
	if mw.canvas.GetFitToWindow() {
		mw.canvas.SetFitToWindow(false)
		mw.fitToWindowItem.Label = "  Fit to Window"
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About PHASe",
		fmt.Sprintf("PHASe %s (%s)\n\n"+
			"Particle Height Analysis Software.\n"+
			"Measures particle heights inside angled capillary tubes.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.VersionName, version.BuildTime, version.GitCommit),
		mw.Window)
}
