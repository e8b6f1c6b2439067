// Package dialogs provides modal dialogs for the application.
package dialogs

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"phase-analyzer/internal/capillary"
	"phase-analyzer/internal/units"
)

// ShowParticleEditor opens the edit dialog for one particle. The
// height is shown read-only since it is always derived from the frame.
// Notes editing only appears when beta features are on.
func ShowParticleEditor(win fyne.Window, p *capillary.Particle, withNotes bool,
	onSave func(name, notes string), onDelete func()) {

	nameEntry := widget.NewEntry()
	nameEntry.SetText(p.Name)

	notesEntry := widget.NewMultiLineEntry()
	notesEntry.SetText(p.Notes)
	notesEntry.SetMinRowsVisible(3)

	var d dialog.Dialog

	deleteBtn := widget.NewButton("Delete Particle", func() {
		d.Hide()
		onDelete()
	})
	deleteBtn.Importance = widget.DangerImportance

	items := []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("Height", widget.NewLabel(units.FormatMicrometers(p.HeightUM))),
	}
	if withNotes {
		items = append(items, widget.NewFormItem("Notes", notesEntry))
	}
	items = append(items, widget.NewFormItem("", deleteBtn))

	d = dialog.NewForm("Edit Particle", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		onSave(nameEntry.Text, notesEntry.Text)
	}, win)
	d.Resize(fyne.NewSize(360, 0))
	d.Show()
}
