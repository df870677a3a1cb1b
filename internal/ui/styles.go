// Package ui provides terminal styling for triage CLI output.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rgrier/triage/internal/types"
)

var (
	ColorPending = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	ColorPushed  = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	ColorUrgent  = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
)

var (
	PendingStyle = lipgloss.NewStyle().Foreground(ColorPending)
	PushedStyle  = lipgloss.NewStyle().Foreground(ColorPushed)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	UrgentStyle  = lipgloss.NewStyle().Foreground(ColorUrgent).Bold(true)
	AccentStyle  = lipgloss.NewStyle().Foreground(ColorAccent)
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

// StatusStyle returns the style for a computed sync status.
func StatusStyle(status types.SyncStatus) lipgloss.Style {
	switch status {
	case types.StatusPushed:
		return PushedStyle
	case types.StatusDismissed:
		return MutedStyle
	default:
		return PendingStyle
	}
}

// PriorityStyle returns the style for a priority level.
func PriorityStyle(p types.Priority) lipgloss.Style {
	switch p {
	case types.PriorityUrgent:
		return UrgentStyle
	case types.PriorityHigh:
		return PendingStyle
	case types.PriorityLow:
		return MutedStyle
	default:
		return AccentStyle
	}
}

// AgeStyle colors a task age: under 3 days quiet, under 7 days warning,
// older alarming.
func AgeStyle(days int) lipgloss.Style {
	switch {
	case days < 3:
		return PushedStyle
	case days < 7:
		return PendingStyle
	default:
		return UrgentStyle
	}
}
