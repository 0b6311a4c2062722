package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chronoforge/internal/engine"
	"chronoforge/internal/ui"
)

type boardModel struct {
	ctx    context.Context
	svc    *engine.Service
	caller engine.Address

	width  int
	height int

	stats  engine.BasicStats
	tokens []engine.TokenAttributes
	now    time.Time

	selected int
	// marked holds the first token picked for a forge.
	marked *int64

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	stats  engine.BasicStats
	tokens []engine.TokenAttributes
	now    time.Time
	err    error
}

// actionMsg reports the outcome of a mutation issued from the board.
type actionMsg struct {
	summary string
	err     error
}

func newBoardModel(ctx context.Context, svc *engine.Service, caller engine.Address) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		caller:  caller,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.svc.BasicStats(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		ids, err := m.svc.UserTokens(m.ctx, m.caller)
		if err != nil {
			return loadedMsg{err: err}
		}
		tokens := make([]engine.TokenAttributes, 0, len(ids))
		for _, id := range ids {
			attrs, err := m.svc.TokenAttributes(m.ctx, id)
			if err != nil {
				return loadedMsg{err: err}
			}
			tokens = append(tokens, *attrs)
		}
		return loadedMsg{stats: stats, tokens: tokens, now: m.svc.Now()}
	}
}

func (m boardModel) energizeCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.Energize(m.ctx, m.caller, id)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{summary: fmt.Sprintf("Energized #%d: +%d (energy %d, streak %d)", res.TokenID, res.Gain, res.EnergyLevel, res.Streak)}
	}
}

func (m boardModel) evolveCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.Evolve(m.ctx, m.caller, id)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{summary: fmt.Sprintf("Evolved #%d to %s", res.TokenID, res.Generation)}
	}
}

func (m boardModel) forgeCmd(a, b int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.Forge(m.ctx, m.caller, a, b)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{summary: fmt.Sprintf("Forged #%d + #%d into #%d (%s)", a, b, res.TokenID, res.Generation)}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.stats = msg.stats
		m.tokens = msg.tokens
		m.now = msg.now
		if m.selected >= len(m.tokens) {
			m.selected = len(m.tokens) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case actionMsg:
		if msg.err != nil {
			m.lastLog = "Rejected: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = msg.summary
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.tokens)-1 {
				m.selected++
			}
			return m, nil
		case "e", " ":
			tok := m.current()
			if tok == nil {
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Energizing #%d…", tok.ID)
			return m, m.energizeCmd(tok.ID)
		case "v":
			tok := m.current()
			if tok == nil {
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Evolving #%d…", tok.ID)
			return m, m.evolveCmd(tok.ID)
		case "f":
			tok := m.current()
			if tok == nil {
				return m, nil
			}
			if m.marked == nil {
				id := tok.ID
				m.marked = &id
				m.lastLog = fmt.Sprintf("Marked #%d for forging. Select a second token and press f.", id)
				return m, nil
			}
			first := *m.marked
			m.marked = nil
			if first == tok.ID {
				m.lastLog = "Forge cancelled."
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Forging #%d + #%d…", first, tok.ID)
			return m, m.forgeCmd(first, tok.ID)
		case "esc":
			m.marked = nil
			return m, nil
		}
	}
	return m, nil
}

func (m boardModel) current() *engine.TokenAttributes {
	if m.selected < 0 || m.selected >= len(m.tokens) {
		return nil
	}
	return &m.tokens[m.selected]
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 26
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.loading && m.tokens == nil {
		return "ChronoForge loading…"
	}
	return fmt.Sprintf("ChronoForge | %s | %d shards | minted %d | evolved %d",
		m.caller.Short(), len(m.tokens), m.stats.TotalMinted, m.stats.TotalEvolved)
}

func (m boardModel) renderSidebar() string {
	rules := m.svc.Rules()
	lines := []string{"Rules"}
	lines = append(lines, fmt.Sprintf("- evolve at %d energy", rules.EvolutionThreshold))
	lines = append(lines, fmt.Sprintf("- +%d per day", rules.DailyEnergyGain))
	lines = append(lines, fmt.Sprintf("- x%d after %d-day streak", rules.StreakBonusMultiplier, engine.StreakBonusAfter))
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- e/space: energize")
	lines = append(lines, "- v: evolve")
	lines = append(lines, "- f: forge (pick two)")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading && m.tokens == nil {
		return "Loading…"
	}
	var out []string
	out = append(out, "Vault")
	if len(m.tokens) == 0 {
		out = append(out, "(no shards; mint one with `cf mint`)")
		return strings.Join(out, "\n")
	}
	rules := m.svc.Rules()
	for i, t := range m.tokens {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		mark := ""
		if m.marked != nil && *m.marked == t.ID {
			mark = " [forge]"
		}
		evolved := ""
		if t.Evolved {
			evolved = " " + ui.BadgeEvolved
		}
		out = append(out, fmt.Sprintf("%s#%d %s %s %s%s%s",
			cursor, t.ID, ui.ElementIcon(t.CoreElement.String()), t.CoreElement, t.Generation, evolved, mark))
		out = append(out, fmt.Sprintf("    %s", ui.EnergyBar(t.EnergyLevel, rules.EvolutionThreshold, 20)))
		out = append(out, fmt.Sprintf("    purity %s  streak %d  energize %s  traits %d",
			ui.PurityText(t.Purity, rules.MinEvolvePurity), t.CurrentStreak,
			ui.CooldownText(rules.NextEnergizeAt(t.LastEnergized), m.now), t.TraitCount))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
