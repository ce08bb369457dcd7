package cmd

import (
	"fmt"
	"strings"
	"time"

	"curse-catalog/catalog"
	"curse-catalog/logger"
	"curse-catalog/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Launch an interactive catalog browser",
	Long:  `Launch an interactive TUI to page through the catalog and narrow it by section, category and game version.`,
	Run: func(cmd *cobra.Command, _ []string) {
		a := bootstrap(configDir)
		defer a.close()

		m := newBrowseModel(func() (*catalog.Catalog, error) {
			return a.loadCatalog(cmd.Context()), nil
		})

		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			logger.Log.Fatalw("Failed to run browser", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// facet is one cyclable filter dimension. pos 0 means "any".
type facet struct {
	label  string
	values []string
	pos    int
	build  func(string) catalog.Filter
}

func (f *facet) next() {
	f.pos = (f.pos + 1) % (len(f.values) + 1)
}

func (f *facet) prev() {
	f.pos = (f.pos + len(f.values)) % (len(f.values) + 1)
}

func (f *facet) current() (string, bool) {
	if f.pos == 0 || f.pos > len(f.values) {
		return "", false
	}
	return f.values[f.pos-1], true
}

// BrowseModel represents the state of the TUI
type BrowseModel struct {
	load    func() (*catalog.Catalog, error)
	cat     *catalog.Catalog
	records []*catalog.Record

	section  facet
	category facet
	version  facet

	selectedIndex int
	offset        int
	showDetail    bool
	loading       bool
	error         string
	width         int
	height        int
	spinnerFrame  int
}

func newBrowseModel(load func() (*catalog.Catalog, error)) BrowseModel {
	return BrowseModel{
		load:     load,
		loading:  true,
		width:    80,
		height:   24,
		section:  facet{label: "section", build: catalog.BySection},
		category: facet{label: "category", build: catalog.ByCategory},
		version:  facet{label: "version", build: catalog.ByVersion},
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(
		m.loadCatalog(),
		tickSpinner(),
	)
}

func tickSpinner() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// Update handles messages
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
	case catalogLoadedMsg:
		m.setCatalog(msg.cat)
	case spinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		if m.loading {
			return m, tickSpinner()
		}
	case errorMsg:
		m.error = string(msg)
		m.loading = false
	}
	return m, nil
}

func (m BrowseModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case "down", "j":
		if m.selectedIndex < len(m.records)-1 {
			m.selectedIndex++
		}
	case "pgup":
		m.selectedIndex = max(m.selectedIndex-m.pageSize(), 0)
	case "pgdown":
		m.selectedIndex = max(min(m.selectedIndex+m.pageSize(), len(m.records)-1), 0)
	case "s":
		m.section.next()
		m.refilter()
	case "S":
		m.section.prev()
		m.refilter()
	case "c":
		m.category.next()
		m.refilter()
	case "C":
		m.category.prev()
		m.refilter()
	case "v":
		m.version.next()
		m.refilter()
	case "V":
		m.version.prev()
		m.refilter()
	case "x":
		m.section.pos, m.category.pos, m.version.pos = 0, 0, 0
		m.refilter()
	case "enter":
		m.showDetail = !m.showDetail
	}
	m.clampOffset()
	return m, nil
}

func (m *BrowseModel) setCatalog(cat *catalog.Catalog) {
	m.cat = cat
	m.loading = false
	m.section.values = cat.Sections()
	m.category.values = cat.Categories()
	m.version.values = cat.SortedVersions()
	m.refilter()
}

func (m *BrowseModel) filters() []catalog.Filter {
	var fs []catalog.Filter
	for _, f := range []*facet{&m.section, &m.category, &m.version} {
		if v, ok := f.current(); ok {
			fs = append(fs, f.build(v))
		}
	}
	return fs
}

func (m *BrowseModel) refilter() {
	if m.cat == nil {
		return
	}
	m.records = m.cat.FilterAll(m.filters(), nil)
	m.selectedIndex = 0
	m.offset = 0
}

func (m *BrowseModel) pageSize() int {
	// header, blank line, filter line, footer and detail pane
	n := m.height - 6
	if m.showDetail {
		n -= 5
	}
	return max(n, 1)
}

func (m *BrowseModel) clampOffset() {
	page := m.pageSize()
	if m.selectedIndex < m.offset {
		m.offset = m.selectedIndex
	}
	if m.selectedIndex >= m.offset+page {
		m.offset = m.selectedIndex - page + 1
	}
}

// View renders the UI
func (m BrowseModel) View() string {
	if m.loading {
		return m.renderLoadingScreen()
	}

	if m.error != "" {
		return fmt.Sprintf("Error: %s\n", m.error)
	}

	var b strings.Builder
	b.WriteString(m.renderFilterLine() + "\n")

	if len(m.records) == 0 {
		b.WriteString("\nNo records match the current filters.\n\n")
		b.WriteString(renderFooter())
		return b.String()
	}

	b.WriteString(renderHeader() + "\n")

	end := min(m.offset+m.pageSize(), len(m.records))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRecordRow(i, m.records[i]) + "\n")
	}

	if m.showDetail {
		b.WriteString("\n" + renderDetail(m.records[m.selectedIndex]))
	}

	b.WriteString("\n" + renderFooter())
	return b.String()
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m BrowseModel) renderLoadingScreen() string {
	loadingStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	return loadingStyle.Render(fmt.Sprintf("%s Loading catalog...", spinnerFrames[m.spinnerFrame])) + "\n"
}

func (m BrowseModel) renderFilterLine() string {
	parts := []string{fmt.Sprintf("%d records", len(m.records))}
	for _, f := range []facet{m.section, m.category, m.version} {
		if v, ok := f.current(); ok {
			parts = append(parts, fmt.Sprintf("%s=%s", f.label, v))
		}
	}
	return ui.MutedStyle.Render(strings.Join(parts, "  "))
}

func renderHeader() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Padding(0, 1)

	return headerStyle.Render(fmt.Sprintf("  %-8s %-38s %-20s %-16s", "ID", "Name", "Author", "Section"))
}

func renderFooter() string {
	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true)

	return footerStyle.Render("↑/k ↓/j: move  s/c/v: section/category/version  x: clear  enter: details  q: quit")
}

func (m BrowseModel) renderRecordRow(index int, r *catalog.Record) string {
	rowStyle := lipgloss.NewStyle().Padding(0, 1)
	if index == m.selectedIndex {
		rowStyle = rowStyle.
			Background(lipgloss.Color("8")).
			Bold(true)
	}

	paddedSection := fmt.Sprintf("%-16s", truncate(r.Section(), 16))
	row := fmt.Sprintf("  %-8d %-38s %-20s %s",
		r.ID,
		truncate(r.Name, 38),
		truncate(r.PrimaryAuthorName, 20),
		ui.Colorize(paddedSection, ui.SectionColor(r.Section())),
	)

	return rowStyle.Render(row)
}

func renderDetail(r *catalog.Record) string {
	var versions []string
	for _, f := range r.LatestFiles {
		versions = append(versions, f.GameVersion...)
	}
	versions = catalog.SortVersions(dedupe(versions))

	lines := []string{
		ui.TitleStyle.Render(r.Name) + "  " + ui.MutedStyle.Render(r.WebSiteURL),
		truncate(r.Summary, 100),
		fmt.Sprintf("Category: %s   Downloads: %.0f", r.PrimaryCategoryName, r.DownloadCount),
		fmt.Sprintf("Versions: %s", truncate(strings.Join(versions, ", "), 90)),
	}
	return strings.Join(lines, "\n") + "\n"
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Message types
type catalogLoadedMsg struct {
	cat *catalog.Catalog
}

type errorMsg string

type spinnerTickMsg struct{}

func (m BrowseModel) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		cat, err := m.load()
		if err != nil {
			logger.Log.Errorw("Failed to load catalog", zap.Error(err))
			return errorMsg(fmt.Sprintf("Failed to load catalog: %v", err))
		}
		return catalogLoadedMsg{cat: cat}
	}
}
