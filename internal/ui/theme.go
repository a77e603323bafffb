package ui

import (
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Theme defines the UI color tokens used across widgets and text tags.
type Theme struct {
	Bg          tcell.Color
	Surface     tcell.Color
	Border      tcell.Color
	FocusBorder tcell.Color
	SelectionBg tcell.Color
	SelectionFg tcell.Color
	TextPrimary tcell.Color
	TextMuted   tcell.Color
	Accent      tcell.Color
	Success     tcell.Color
	Warning     tcell.Color
	Error       tcell.Color

	TableHeader   tcell.Color
	TableHeaderBg tcell.Color
	TableRow      tcell.Color
	TableRowMuted tcell.Color

	// Priority colors
	PriorityHigh   tcell.Color
	PriorityMedium tcell.Color
	PriorityLow    tcell.Color

	// Text tag colors (for tview dynamic color markup)
	TagTextPrimary    string
	TagMuted          string
	TagAccent         string
	TagSuccess        string
	TagWarning        string
	TagError          string
	TagPriorityHigh   string
	TagPriorityMedium string
	TagPriorityLow    string
}

func hex(s string) tcell.Color { return tcell.GetColor(s) }

func themeDark() Theme {
	return Theme{
		Bg:          hex("#0e1116"),
		Surface:     hex("#12161e"),
		Border:      hex("#2b3240"),
		FocusBorder: hex("#4aa8ff"),
		SelectionBg: hex("#2b3240"),
		SelectionFg: hex("#cfd8e3"),
		TextPrimary: hex("#e6edf3"),
		TextMuted:   hex("#8a939f"),
		Accent:      hex("#2dd4bf"),
		Success:     hex("#22c55e"),
		Warning:     hex("#f59e0b"),
		Error:       hex("#ef4444"),

		TableHeader:   hex("#eab308"),
		TableHeaderBg: hex("#1a2332"),
		TableRow:      hex("#e6edf3"),
		TableRowMuted: hex("#94a3b8"),

		PriorityHigh:   hex("#ff5f5f"),
		PriorityMedium: hex("#ffd75f"),
		PriorityLow:    hex("#87ffaf"),

		TagTextPrimary:    "#e6edf3",
		TagMuted:          "#8a939f",
		TagAccent:         "#2dd4bf",
		TagSuccess:        "#22c55e",
		TagWarning:        "#f59e0b",
		TagError:          "#ef4444",
		TagPriorityHigh:   "#ff5f5f",
		TagPriorityMedium: "#ffd75f",
		TagPriorityLow:    "#87ffaf",
	}
}

func detectTrueColor() bool {
	// Best-effort detection without initializing a screen
	ct := strings.ToLower(os.Getenv("COLORTERM"))
	if strings.Contains(ct, "truecolor") || strings.Contains(ct, "24bit") {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "truecolor") || strings.Contains(term, "24bit") || strings.Contains(term, "256color") {
		return true
	}
	return false
}

func (t Theme) priorityTag(priority string) string {
	switch strings.ToUpper(priority) {
	case "ALTA":
		return t.TagPriorityHigh
	case "MEDIA":
		return t.TagPriorityMedium
	case "BAJA":
		return t.TagPriorityLow
	default:
		return t.TagMuted
	}
}
