// Package panels provides UI panels for the application.
package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"phase-analyzer/internal/app"
	"phase-analyzer/internal/capillary"
	"phase-analyzer/internal/units"
	"phase-analyzer/ui/canvas"
)

// Mode is the current canvas click interpretation.
type Mode int

const (
	ModePan Mode = iota
	ModeCeiling
	ModeFloor
	ModeParticle
)

// ControlPanel holds the measurement controls on the left side of the
// main window.
type ControlPanel struct {
	state  *app.State
	canvas *canvas.MicrographCanvas

	mode Mode

	nameEntry       *widget.Entry
	heightEntry     *widget.Entry
	heightModeRadio *widget.RadioGroup
	wallCheck       *widget.Check
	wallEntry       *widget.Entry
	angleEntry      *widget.Entry
	angleSlider     *widget.Slider
	labelSlider     *widget.Slider
	modeRadio       *widget.RadioGroup
	ceilingBtn      *widget.Button
	floorBtn        *widget.Button

	container fyne.CanvasObject

	onStatus     func(string)
	onLoadImage  func()
	onExport     func()
	onLabelScale func(float64)
}

// NewControlPanel creates the control panel bound to the given state
// and canvas.
func NewControlPanel(state *app.State, mc *canvas.MicrographCanvas) *ControlPanel {
	cp := &ControlPanel{
		state:  state,
		canvas: mc,
		mode:   ModePan,
	}
	cp.buildWidgets()
	cp.container = cp.buildLayout()
	return cp
}

// Container returns the panel's root object.
func (cp *ControlPanel) Container() fyne.CanvasObject {
	return cp.container
}

// OnStatus sets the status message callback.
func (cp *ControlPanel) OnStatus(callback func(string)) {
	cp.onStatus = callback
}

// OnLoadImage sets the callback for the Load Image button.
func (cp *ControlPanel) OnLoadImage(callback func()) {
	cp.onLoadImage = callback
}

// OnExport sets the callback for the Export CSV button.
func (cp *ControlPanel) OnExport(callback func()) {
	cp.onExport = callback
}

// OnLabelScale sets the callback for label size changes, so the scale
// can be persisted.
func (cp *ControlPanel) OnLabelScale(callback func(float64)) {
	cp.onLabelScale = callback
}

func (cp *ControlPanel) status(msg string) {
	if cp.onStatus != nil {
		cp.onStatus(msg)
	}
}

func (cp *ControlPanel) buildWidgets() {
	cp.nameEntry = widget.NewEntry()
	cp.nameEntry.SetPlaceHolder(app.DefaultWorkspaceName)
	cp.nameEntry.OnSubmitted = func(s string) {
		cp.state.SetName(s)
		cp.status("Workspace renamed")
	}

	cp.heightEntry = widget.NewEntry()
	cp.heightEntry.SetPlaceHolder("e.g. 50um or 1.5mm")
	cp.heightEntry.OnSubmitted = func(string) { cp.commitHeight() }

	cp.heightModeRadio = widget.NewRadioGroup(
		[]string{"Capillary Height", "Magnet Distance"},
		func(selected string) {
			mode := capillary.CapillaryHeight
			if selected == "Magnet Distance" {
				mode = capillary.MagnetDistance
			}
			cp.state.SetHeightMode(mode)
			// Reinterpret whatever is in the field under the new mode.
			if cp.heightEntry.Text != "" {
				cp.commitHeight()
			}
		},
	)
	cp.heightModeRadio.SetSelected("Capillary Height")

	cp.wallEntry = widget.NewEntry()
	cp.wallEntry.SetPlaceHolder("wall thickness")
	cp.wallEntry.Disable()
	cp.wallEntry.OnSubmitted = func(string) { cp.commitWallThickness() }

	cp.wallCheck = widget.NewCheck("Wall thickness", func(enabled bool) {
		if err := cp.state.SetWallEnabled(enabled); err != nil {
			cp.status(err.Error())
		}
		if enabled {
			cp.wallEntry.Enable()
		} else {
			cp.wallEntry.SetText("")
			cp.wallEntry.Disable()
		}
	})

	cp.angleEntry = widget.NewEntry()
	cp.angleEntry.SetPlaceHolder("angle °")
	cp.angleEntry.OnSubmitted = func(s string) {
		if err := cp.state.SetAngleText(s); err != nil {
			cp.status(err.Error())
			cp.angleEntry.SetText(fmt.Sprintf("%.2f", cp.state.Frame.AngleDegrees))
			return
		}
		cp.angleSlider.SetValue(cp.state.Frame.AngleDegrees)
	}

	cp.angleSlider = widget.NewSlider(capillary.MinAngle, capillary.MaxAngle)
	cp.angleSlider.Step = 0.5
	cp.angleSlider.OnChanged = func(v float64) {
		if err := cp.state.SetAngle(v); err != nil {
			cp.status(err.Error())
		}
		cp.angleEntry.SetText(fmt.Sprintf("%.2f", cp.state.Frame.AngleDegrees))
	}

	cp.labelSlider = widget.NewSlider(50, 200)
	cp.labelSlider.Step = 10
	cp.labelSlider.Value = app.DefaultLabelSize
	cp.labelSlider.OnChanged = func(v float64) {
		cp.canvas.SetLabelScale(v / 100)
		if cp.onLabelScale != nil {
			cp.onLabelScale(v)
		}
	}

	cp.ceilingBtn = widget.NewButton("Set Ceiling", func() {
		cp.SetMode(ModeCeiling)
		cp.status("Click the top inner edge of the capillary")
	})
	cp.floorBtn = widget.NewButton("Set Floor", func() {
		cp.SetMode(ModeFloor)
		cp.status("Click the bottom inner edge of the capillary")
	})

	cp.modeRadio = widget.NewRadioGroup([]string{"Pan", "Mark Particles"}, func(selected string) {
		if selected == "Mark Particles" {
			cp.mode = ModeParticle
		} else {
			cp.mode = ModePan
		}
	})
	cp.modeRadio.SetSelected("Pan")
}

func (cp *ControlPanel) buildLayout() fyne.CanvasObject {
	nudge := func(label string, action func()) *widget.Button {
		b := widget.NewButton(label, action)
		b.Importance = widget.LowImportance
		return b
	}

	ceilingRow := container.NewBorder(nil, nil, nil, container.NewHBox(
		nudge("▲", func() { cp.nudge(cp.state.NudgeCeiling, -1) }),
		nudge("▼", func() { cp.nudge(cp.state.NudgeCeiling, 1) }),
	), cp.ceilingBtn)
	floorRow := container.NewBorder(nil, nil, nil, container.NewHBox(
		nudge("▲", func() { cp.nudge(cp.state.NudgeFloor, -1) }),
		nudge("▼", func() { cp.nudge(cp.state.NudgeFloor, 1) }),
	), cp.floorBtn)

	fineRow := container.NewGridWithColumns(4,
		nudge("-1°", func() { cp.fineAngle(-1) }),
		nudge("-0.1°", func() { cp.fineAngle(-0.1) }),
		nudge("+0.1°", func() { cp.fineAngle(0.1) }),
		nudge("+1°", func() { cp.fineAngle(1) }),
	)

	return container.NewVScroll(container.NewVBox(
		widget.NewLabelWithStyle("Workspace", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		cp.nameEntry,
		widget.NewButton("Load Image…", func() {
			if cp.onLoadImage != nil {
				cp.onLoadImage()
			}
		}),
		widget.NewSeparator(),

		widget.NewLabelWithStyle("Capillary", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		ceilingRow,
		floorRow,
		cp.heightModeRadio,
		cp.heightEntry,
		cp.wallCheck,
		cp.wallEntry,
		widget.NewSeparator(),

		widget.NewLabelWithStyle("Tilt Angle", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		cp.angleEntry,
		cp.angleSlider,
		fineRow,
		widget.NewButton("Reset Angle", func() {
			cp.state.ResetAngle()
			cp.angleSlider.SetValue(0)
			cp.angleEntry.SetText("0.00")
		}),
		widget.NewSeparator(),

		widget.NewLabelWithStyle("Particles", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		cp.modeRadio,
		widget.NewLabel("Label size"),
		cp.labelSlider,
		widget.NewSeparator(),

		widget.NewButton("Export CSV…", func() {
			if cp.onExport != nil {
				cp.onExport()
			}
		}),
		widget.NewButton("Clear Selections", func() {
			cp.state.ClearSelections()
			cp.status("Lines and particles cleared")
		}),
	))
}

// SetMode switches the click interpretation and mirrors it in the
// mode radio where applicable.
func (cp *ControlPanel) SetMode(mode Mode) {
	cp.mode = mode
	switch mode {
	case ModeParticle:
		cp.modeRadio.SetSelected("Mark Particles")
	case ModePan:
		cp.modeRadio.SetSelected("Pan")
	}
}

// HandleClick routes a left click in image coordinates according to
// the current mode. Marking a line auto-advances to the next unset
// step, so a fresh image walks ceiling → floor → particles.
func (cp *ControlPanel) HandleClick(x, y float64) {
	switch cp.mode {
	case ModeCeiling:
		if err := cp.state.SetCeiling(y); err != nil {
			cp.status(err.Error())
			return
		}
		cp.status(fmt.Sprintf("Ceiling set at y=%.0f", y))
		if cp.state.Frame.FloorY == nil {
			cp.SetMode(ModeFloor)
			cp.status("Ceiling set. Now click the floor.")
		} else {
			cp.SetMode(ModeParticle)
		}
	case ModeFloor:
		if err := cp.state.SetFloor(y); err != nil {
			cp.status(err.Error())
			return
		}
		cp.SetMode(ModeParticle)
		cp.status("Floor set. Click particles to measure them.")
	case ModeParticle:
		p, err := cp.state.AddParticle(x, y)
		if err != nil {
			cp.status(err.Error())
			return
		}
		if cp.state.Frame.Ready() {
			cp.status(fmt.Sprintf("%s: %s", p.Name, units.FormatMicrometers(p.HeightUM)))
		} else {
			cp.status(fmt.Sprintf("%s placed; set lines and height to measure", p.Name))
		}
	}
}

func (cp *ControlPanel) commitHeight() {
	h, err := cp.state.SetHeightText(cp.heightEntry.Text)
	if err != nil {
		cp.status(err.Error())
		return
	}
	cp.heightEntry.SetText(units.FormatMicrometers(h))
	cp.status("Capillary height set to " + units.FormatMicrometers(h))
}

func (cp *ControlPanel) commitWallThickness() {
	if err := cp.state.SetWallThicknessText(cp.wallEntry.Text); err != nil {
		cp.status(err.Error())
		return
	}
	// Wall changes shift the derived height in magnet-distance mode.
	if cp.state.HeightMode == capillary.MagnetDistance && cp.heightEntry.Text != "" {
		cp.commitHeight()
	}
}

func (cp *ControlPanel) nudge(fn func(int) error, direction int) {
	if err := fn(direction); err != nil {
		cp.status(err.Error())
	}
}

func (cp *ControlPanel) fineAngle(delta float64) {
	if err := cp.state.AdjustAngle(delta); err != nil {
		cp.status(err.Error())
	}
	cp.angleSlider.SetValue(cp.state.Frame.AngleDegrees)
	cp.angleEntry.SetText(fmt.Sprintf("%.2f", cp.state.Frame.AngleDegrees))
}

// Sync refreshes every control from the state, after a workspace load
// or clear.
func (cp *ControlPanel) Sync() {
	cp.nameEntry.SetText(cp.state.Name)

	if h := cp.state.Frame.HeightUM; h != nil {
		cp.heightEntry.SetText(units.FormatMicrometers(*h))
	} else {
		cp.heightEntry.SetText("")
	}

	if cp.state.WallEnabled {
		cp.wallCheck.SetChecked(true)
		cp.wallEntry.Enable()
		cp.wallEntry.SetText(units.FormatMicrometers(cp.state.Frame.WallThicknessUM))
	} else {
		cp.wallCheck.SetChecked(false)
		cp.wallEntry.SetText("")
		cp.wallEntry.Disable()
	}

	cp.angleEntry.SetText(fmt.Sprintf("%.2f", cp.state.Frame.AngleDegrees))
	cp.angleSlider.SetValue(cp.state.Frame.AngleDegrees)

	// A fresh image starts at the ceiling step; a restored session
	// with lines already marked starts in pan mode.
	if cp.state.Micrograph != nil && cp.state.Frame.CeilingY == nil {
		cp.SetMode(ModeCeiling)
	} else {
		cp.SetMode(ModePan)
	}
}
