package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ising/internal/report"
	"github.com/san-kum/ising/internal/sweep"
)

const (
	barWidth   = 40
	maxVisible = 12
)

type recordMsg sweep.Record

type doneMsg struct {
	records []sweep.Record
	err     error
}

type tickMsg time.Time

// Model shows a running sweep: progress, the latest records and the
// specific-heat curve so far.
type Model struct {
	label   string
	total   int
	records []sweep.Record
	started time.Time
	now     time.Time

	done   bool
	result []sweep.Record
	err    error
	cancel context.CancelFunc
}

func NewModel(label string, total int, cancel context.CancelFunc) Model {
	now := time.Now()
	return Model{label: label, total: total, started: now, now: now, cancel: cancel}
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case recordMsg:
		m.records = append(m.records, sweep.Record(msg))
		sweep.SortByTemperature(m.records)
	case doneMsg:
		m.done = true
		m.result = msg.records
		m.err = msg.err
		return m, tea.Quit
	case tickMsg:
		m.now = time.Time(msg)
		if !m.done {
			return m, tick()
		}
	}
	return m, nil
}

func (m Model) progressBar() string {
	filled := 0
	if m.total > 0 {
		filled = len(m.records) * barWidth / m.total
	}
	return barFull.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", barWidth-filled))
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(title.Render("ising sweep: "+m.label) + "\n\n")
	status := running.Render("running")
	if m.done {
		status = running.Render("done")
	}
	fmt.Fprintf(&b, "%s %s %d/%d  %s\n\n", status, m.progressBar(), len(m.records), m.total,
		subtle.Render(m.now.Sub(m.started).Truncate(time.Second).String()))

	start := 0
	if len(m.records) > maxVisible {
		start = len(m.records) - maxVisible
	}
	for _, r := range m.records[start:] {
		line := report.Line(r)
		if r.Failed() {
			line = failed.Render(line)
		}
		b.WriteString(line + "\n")
	}

	temps, cv := report.Column(m.records, report.Observables[2])
	if len(cv) >= 2 {
		graph := asciigraph.Plot(cv,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("Cv, T %.2f..%.2f", temps[0], temps[len(temps)-1])),
		)
		b.WriteString("\n" + graph + "\n")
	}

	b.WriteString("\n" + subtle.Render("q: cancel"))
	return panel.Render(b.String())
}

// Records returns what the sweep produced once it is done.
func (m Model) Records() ([]sweep.Record, error) { return m.result, m.err }

// SweepFunc starts a sweep that reports each finished record to onRecord.
type SweepFunc func(ctx context.Context, onRecord func(sweep.Record)) ([]sweep.Record, error)

// Run drives run under a live terminal view and returns its records.
// Quitting the view cancels the sweep; Run still waits for it to finish
// and returns whatever it completed.
func Run(ctx context.Context, label string, total int, run SweepFunc) ([]sweep.Record, error) {
	return runProgram(ctx, label, total, run)
}

func runProgram(ctx context.Context, label string, total int, run SweepFunc, opts ...tea.ProgramOption) ([]sweep.Record, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(label, total, cancel), opts...)
	finished := make(chan doneMsg, 1)
	go func() {
		records, err := run(ctx, func(r sweep.Record) { p.Send(recordMsg(r)) })
		done := doneMsg{records: records, err: err}
		finished <- done
		p.Send(done)
	}()

	_, perr := p.Run()
	cancel()
	done := <-finished
	return done.records, errors.Join(perr, done.err)
}
