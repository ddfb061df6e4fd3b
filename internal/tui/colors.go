package tui

// Color constants for the board theme
const (
	ColorBorder        = "#3A3F55" // Column borders
	ColorPrimaryText   = "#E6EAF2" // Task titles
	ColorSecondaryText = "#B1B8C7" // Meta lines
	ColorHelpText      = "240"     // Footer help

	ColorAccentMain   = "#7C3AED" // Cursor
	ColorAccentBright = "#A78BFA" // Dragged card

	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B"
)

var priorityColors = map[string]string{
	"LOW":    "#64748B",
	"MEDIUM": "#3B82F6",
	"HIGH":   ColorWarning,
	"URGENT": ColorError,
}
