package app

// Feature flags and UI limits.
const (
	// BetaFeaturesEnabled gates the particle-notes column in exports.
	BetaFeaturesEnabled = true

	// DefaultLabelSize is the label size slider's initial percentage.
	DefaultLabelSize = 100
)
