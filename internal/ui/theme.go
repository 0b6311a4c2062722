package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ChronoForge theme (CLI + TUI).

const (
	IconShard   = "💠"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconForge   = "🔨"
	IconBolt    = "⚡"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconVault   = "🏦"
	IconFlask   = "🧪"
	IconScroll  = "📜"
	IconClock   = "⏳"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeEvolved = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("EVOLVED")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// ElementIcon maps an element name (Aqua, Terra, Pyro, Aero, Umbra) to its glyph.
func ElementIcon(element string) string {
	switch strings.ToLower(strings.TrimSpace(element)) {
	case "aqua":
		return "💧"
	case "terra":
		return "🪨"
	case "pyro":
		return "🔥"
	case "aero":
		return "🌪️"
	case "umbra":
		return "🌑"
	default:
		return IconShard
	}
}

// PurityText colours purity by how close it is to the evolve gate.
func PurityText(purity, gate int) string {
	s := fmt.Sprintf("%d%%", purity)
	switch {
	case purity >= 100:
		return Good.Render(s)
	case purity >= gate:
		return H2.Render(s)
	case purity > 0:
		return Warn.Render(s)
	default:
		return Bad.Render(s)
	}
}

// EnergyBar renders energy toward threshold as a fixed-width bar.
func EnergyBar(energy, threshold int64, width int) string {
	if width <= 0 {
		width = 20
	}
	if threshold <= 0 {
		threshold = 1
	}
	filled := int(energy * int64(width) / threshold)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	label := fmt.Sprintf(" %d/%d", energy, threshold)
	if energy >= threshold {
		return Good.Render(bar) + Muted.Render(label)
	}
	return H2.Render(bar) + Muted.Render(label)
}

// CooldownText describes when a token can next be energized.
func CooldownText(next, now time.Time) string {
	if !now.Before(next) {
		return Good.Render("ready")
	}
	return Warn.Render("in " + next.Sub(now).Round(time.Minute).String())
}
