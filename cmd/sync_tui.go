package cmd

import (
	"context"
	"fmt"
	"strings"

	"curse-catalog/ui"
	"curse-catalog/updater"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// syncDoneMsg is sent once the progress channel is closed.
type syncDoneMsg struct{}

// SyncModel controls the UI for the sync command
type SyncModel struct {
	spinner      spinner.Model
	progressChan chan updater.Progress
	ctx          context.Context
	opts         syncOptions

	// State
	status      string
	downloading []string
	completed   []string
	errors      []string
	summary     string
	done        bool

	// Counters
	totalChecked int
	totalUpdated int
	totalErrors  int
}

func initialSyncModel(ctx context.Context, opts syncOptions) SyncModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.SpinnerStyle

	return SyncModel{
		spinner:      s,
		progressChan: make(chan updater.Progress, 16),
		ctx:          ctx,
		opts:         opts,
		status:       "Initializing...",
	}
}

func (m SyncModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startSync(),
		m.waitForActivity(),
	)
}

func (m SyncModel) startSync() tea.Cmd {
	return func() tea.Msg {
		go func() {
			defer close(m.progressChan)
			runSync(m.ctx, m.opts, m.progressChan)
		}()
		return nil
	}
}

func (m SyncModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.progressChan
		if !ok {
			return syncDoneMsg{}
		}
		return msg
	}
}

func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.done {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case syncDoneMsg:
		m.done = true
		m.status = "Finished"
		return m, tea.Quit

	case updater.Progress:
		m.apply(msg)
		return m, m.waitForActivity()
	}

	return m, nil
}

func (m *SyncModel) apply(p updater.Progress) {
	switch p.Type {
	case updater.EventStatus:
		m.status = p.Message

	case updater.EventCheck:
		m.status = fmt.Sprintf("Checking %s...", p.Tier)
		m.totalChecked++

	case updater.EventUpToDate:
		m.completed = append(m.completed, fmt.Sprintf("%s is up to date (%d)", p.Tier, p.Version))

	case updater.EventDownloadStart:
		m.downloading = append(m.downloading, downloadLabel(p))

	case updater.EventDownloadSuccess:
		m.removeFromDownloading(downloadLabel(p))
		m.completed = append(m.completed, fmt.Sprintf("Updated %s to %d", p.Tier, p.Version))
		m.totalUpdated++

	case updater.EventError:
		m.errors = append(m.errors, fmt.Sprintf("%s: %s", p.Tier, p.Message))
		m.totalErrors++

	case updater.EventSummary:
		m.summary = p.Message
	}
}

func downloadLabel(p updater.Progress) string {
	return fmt.Sprintf("%s (%d)", p.Tier, p.Version)
}

func (m *SyncModel) removeFromDownloading(name string) {
	for i, v := range m.downloading {
		if v == name {
			m.downloading = append(m.downloading[:i], m.downloading[i+1:]...)
			return
		}
	}
}

func (m SyncModel) View() string {
	var symbol string
	if m.done {
		symbol = ui.SuccessStyle.Render("✓")
	} else {
		symbol = m.spinner.View()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n %s %s\n\n", symbol, m.status)

	section := func(title string, style func(...string) string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(style(title) + "\n")
		for _, it := range items {
			fmt.Fprintf(&b, "  • %s\n", it)
		}
		b.WriteString("\n")
	}

	section("Downloading:", ui.TitleStyle.Render, m.downloading)
	section("Errors:", ui.ErrorStyle.Render, m.errors)
	section("Completed:", ui.SuccessStyle.Render, m.completed)

	if m.done {
		b.WriteString(ui.TitleStyle.Render(m.summary) + "\n")
	}

	return b.String()
}
