// Package ui provides the Bubble Tea TUI for the arbitrage pipeline.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	arbitrageApp "github.com/quantfi/flasharb/business/arbitrage/app"
)

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// maxRows is how many opportunity rows the dashboard retains for scrolling.
const maxRows = 50

// opportunityRow is a display-ready opportunity line. All values are
// pre-formatted by the domain; the UI never calculates anything.
type opportunityRow struct {
	Timestamp string
	Route     string
	Pair      string
	Borrow    string
	ProfitUSD string
	ProfitPct string
	Composite string
	Approved  bool
}

// executionEntry is a display-ready settlement outcome.
type executionEntry struct {
	Timestamp string
	Route     string
	Success   bool
	Detail    string
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	keys KeyMap

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	quitting bool
	paused   bool
	width    int
	height   int

	rows       []opportunityRow
	scroll     int
	executions []executionEntry
	cycle      arbitrageApp.CycleStats
	cycleCount uint64
	lastCycle  time.Time

	logs   []string
	errors []string
}

// New creates a new TUI model.
func New() Model {
	return Model{
		keys:         DefaultKeyMap(),
		phase:        PhaseWelcome,
		welcomeStart: time.Now(),
		rows:         make([]opportunityRow, 0, maxRows),
		executions:   make([]executionEntry, 0, 5),
		logs:         make([]string, 0, 5),
		errors:       make([]string, 0, 3),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to the dashboard
		if m.phase == PhaseWelcome {
			m.phase = PhaseDashboard
			if OnStartModules != nil {
				go OnStartModules()
			}
			return m, tickCmd()
		}
		switch msg.String() {
		case "c":
			m.rows = m.rows[:0]
			m.scroll = 0
			return m, nil
		case "p":
			m.paused = !m.paused
			if OnTogglePause != nil {
				go OnTogglePause(m.paused)
			}
			return m, nil
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
			return m, nil
		case "down", "j":
			if m.scroll < len(m.rows)-1 {
				m.scroll++
			}
			return m, nil
		case "e":
			m.errors = m.errors[:0]
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.phase = PhaseDashboard
			if OnStartModules != nil {
				go OnStartModules()
			}
		}
		return m, tickCmd()

	case OpportunityMsg:
		if msg.Opportunity != nil {
			opp := msg.Opportunity
			row := opportunityRow{
				Timestamp: opp.LastSeenAt.Format("15:04:05"),
				Route:     opp.ID,
				Pair:      opp.Pair,
				Borrow:    opp.Borrow.Symbol(),
				ProfitUSD: opp.ProfitUSD.StringFixed(2),
				ProfitPct: opp.ProfitPct.StringFixed(3),
				Composite: "-",
			}
			if opp.Score != nil {
				row.Composite = fmt.Sprintf("%.0f", opp.Score.Composite)
				row.Approved = opp.Score.Approved
			}
			m.rows = append([]opportunityRow{row}, m.rows...)
			if len(m.rows) > maxRows {
				m.rows = m.rows[:maxRows]
			}
		}

	case CycleMsg:
		m.cycle = msg.Stats
		m.cycleCount++
		m.lastCycle = time.Now()

	case ExecutionMsg:
		detail := "ref " + msg.Ref
		if !msg.Success {
			detail = msg.Ref
		}
		m.executions = append([]executionEntry{{
			Timestamp: time.Now().Format("15:04:05"),
			Route:     msg.RouteID,
			Success:   msg.Success,
			Detail:    detail,
		}}, m.executions...)
		if len(m.executions) > 5 {
			m.executions = m.executions[:5]
		}

	case ErrorMsg:
		m.errors = append(m.errors, msg.Error.Error())
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		line := fmt.Sprintf("[%s] %s: %s", time.Now().Format("15:04:05"), msg.Level, msg.Message)
		m.logs = append(m.logs, line)
		if len(m.logs) > 5 {
			m.logs = m.logs[len(m.logs)-5:]
		}
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}
	if m.phase == PhaseWelcome {
		return m.renderWelcome()
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" ⚡ Flash Loan Arbitrage Pipeline "))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	width := m.width
	if width < 60 {
		width = 100
	}
	b.WriteString(BoxStyle.Width(width - 4).Render(m.renderOpportunities()))
	b.WriteString("\n")
	b.WriteString(BoxStyle.Width(width - 4).Render(m.renderExecutions()))
	b.WriteString("\n")

	if len(m.logs) > 0 {
		b.WriteString(MutedValue.Render(strings.Join(m.logs, "\n")))
		b.WriteString("\n")
	}

	if len(m.errors) > 0 {
		b.WriteString(NegativeValue.Render("ERRORS (e: clear)"))
		b.WriteString("\n")
		for _, e := range m.errors {
			b.WriteString(NegativeValue.Render("  • " + e))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.paused {
		b.WriteString(PausedStyle.Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(HelpStyle.Render("q: quit • p: pause • c: clear • ↑↓: scroll"))

	return b.String()
}

func (m Model) renderStatusBar() string {
	age := "-"
	if !m.lastCycle.IsZero() {
		age = time.Since(m.lastCycle).Round(time.Second).String()
	}
	return MutedValue.Render(fmt.Sprintf(
		"cycle #%d (%s ago) • pools %d • candidates %d • tracked %d • approved %d • submitted %d • swept %d",
		m.cycleCount, age,
		m.cycle.PricedPools, m.cycle.Candidates, m.cycle.Tracked,
		m.cycle.Approved, m.cycle.Submitted, m.cycle.SweptExpired,
	))
}

func (m Model) renderOpportunities() string {
	var sb strings.Builder
	sb.WriteString(TableHeaderStyle.Render("OPPORTUNITIES"))
	sb.WriteString("\n\n")

	if len(m.rows) == 0 {
		sb.WriteString(MutedValue.Render("  Scanning for spreads..."))
		return sb.String()
	}

	sb.WriteString(TableHeaderStyle.Render(fmt.Sprintf(
		"  %-8s %-22s %-10s %-6s %10s %8s %6s %s",
		"TIME", "ROUTE", "PAIR", "TOKEN", "PROFIT $", "PROFIT %", "SCORE", "GATE",
	)))
	sb.WriteString("\n")

	visible := 10
	start := m.scroll
	if start > len(m.rows)-1 {
		start = len(m.rows) - 1
	}
	end := start + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for _, row := range m.rows[start:end] {
		gate := MutedValue.Render("held")
		if row.Approved {
			gate = PositiveValue.Render("go")
		}
		line := fmt.Sprintf("  %-8s %-22s %-10s %-6s %10s %8s %6s ",
			row.Timestamp, row.Route, row.Pair, row.Borrow,
			row.ProfitUSD, row.ProfitPct, row.Composite)
		sb.WriteString(line)
		sb.WriteString(gate)
		sb.WriteString("\n")
	}

	if len(m.rows) > visible {
		sb.WriteString(MutedValue.Render(fmt.Sprintf("  … %d total", len(m.rows))))
	}
	return sb.String()
}

func (m Model) renderExecutions() string {
	var sb strings.Builder
	sb.WriteString(TableHeaderStyle.Render("EXECUTIONS"))
	sb.WriteString("\n\n")

	if len(m.executions) == 0 {
		sb.WriteString(MutedValue.Render("  No settlements yet"))
		return sb.String()
	}

	for _, e := range m.executions {
		status := NegativeValue.Render("FAIL")
		if e.Success {
			status = PositiveValue.Render("OK  ")
		}
		sb.WriteString(fmt.Sprintf("  %s %s %-22s %s\n",
			e.Timestamp, status, e.Route, MutedValue.Render(e.Detail)))
	}
	return sb.String()
}

func (m Model) renderWelcome() string {
	elapsed := time.Since(m.welcomeStart)
	dots := strings.Repeat(".", int(elapsed.Milliseconds()/300)%4)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")

	logo := `
   ███████╗██╗      █████╗ ███████╗██╗  ██╗ █████╗ ██████╗ ██████╗
   ██╔════╝██║     ██╔══██╗██╔════╝██║  ██║██╔══██╗██╔══██╗██╔══██╗
   █████╗  ██║     ███████║███████╗███████║███████║██████╔╝██████╔╝
   ██╔══╝  ██║     ██╔══██║╚════██║██╔══██║██╔══██║██╔══██╗██╔══██╗
   ██║     ███████╗██║  ██║███████║██║  ██║██║  ██║██║  ██║██████╔╝
   ╚═╝     ╚══════╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝
`
	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Render(logo))
	sb.WriteString("\n")
	sb.WriteString(HelpStyle.Render("   Cross-venue flash loan arbitrage"))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("   Starting" + dots))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("   press any key to skip"))
	return sb.String()
}

// Program is the global Bubble Tea program, set by the entry point so
// reporters can push messages into the UI.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
var OnStartModules func()

// OnTogglePause is called when the operator toggles detection dispatch.
var OnTogglePause func(paused bool)

// Send delivers a message to the running TUI program. Safe to call before
// the program starts; the message is dropped.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
	if _, ok := msg.(StartModulesMsg); ok && OnStartModules != nil {
		OnStartModules()
	}
}
