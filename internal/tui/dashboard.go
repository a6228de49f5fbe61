package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sqldash/internal/capacity"
	"sqldash/internal/domain"
	"sqldash/internal/instanceprefs"
	"sqldash/internal/series"
	"sqldash/internal/tui/components"
	"sqldash/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// metricsWindow is the time range the dashboard fetches on load and
// refresh.
const metricsWindow = time.Hour

// safeLineFraction is the quota share drawn as the toggleable "safe
// line" on the disk panel.
const safeLineFraction = 0.9

// --- Panels ---

const (
	panelDisk = iota
	panelIO
	panelTransactions
	panelStatements
	panelCount
)

var panelTitles = [panelCount]string{"Disk", "I/O", "Transactions", "Statements"}

// --- Messages ---

type metricsLoadedMsg struct {
	metrics *domain.InstanceMetrics
}

type metricsErrorMsg struct {
	err error
}

// --- Dashboard model ---

type dashboardModel struct {
	provider    domain.Provider
	backendName string
	instance    *domain.Instance

	metrics  *domain.InstanceMetrics
	envelope *capacity.Envelope
	envErr   error

	panel        int
	unit         series.Unit
	showSafeLine bool

	width  int
	height int

	loading  bool
	spinner  spinner.Model
	err      error
	quitting bool
}

// RunDashboard starts the full-window metrics dashboard for an instance.
func RunDashboard(provider domain.Provider, backendName string, instance *domain.Instance, unit series.Unit) error {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	m := dashboardModel{
		provider:    provider,
		backendName: backendName,
		instance:    instance,
		unit:        unit,
		loading:     true,
		spinner:     s,
	}
	m.loadPrefs()

	if env, err := capacity.Lookup(instance.Tier, instance.Availability); err != nil {
		m.envErr = err
	} else {
		m.envelope = &env
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	if fm, ok := final.(dashboardModel); ok {
		fm.savePrefs()
	}
	return nil
}

// loadPrefs restores the unit and safe-line toggle the dashboard was
// last closed with. Preferences are best-effort: any storage error
// leaves the defaults in place.
func (m *dashboardModel) loadPrefs() {
	repo, err := instanceprefs.Open()
	if err != nil {
		return
	}
	defer repo.Close()

	prefs, err := repo.Get(m.backendName, m.instance.ID)
	if err != nil || prefs == nil {
		return
	}
	if prefs.Unit != "" {
		m.unit = series.Unit(prefs.Unit)
	}
	m.showSafeLine = prefs.ShowSafeLine
}

// savePrefs persists the current unit and safe-line toggle, best-effort.
func (m dashboardModel) savePrefs() {
	repo, err := instanceprefs.Open()
	if err != nil {
		return
	}
	defer repo.Close()

	_ = repo.Save(&instanceprefs.InstancePrefs{
		Backend:      m.backendName,
		InstanceID:   m.instance.ID,
		Unit:         string(m.unit),
		ShowSafeLine: m.showSafeLine,
	})
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchMetrics())
}

func (m dashboardModel) fetchMetrics() tea.Cmd {
	provider := m.provider
	id := m.instance.ID
	return func() tea.Msg {
		end := time.Now().UTC().Truncate(time.Minute)
		start := end.Add(-metricsWindow)
		kinds := []domain.MetricKind{domain.MetricDisk, domain.MetricTransactions, domain.MetricStatements}

		metrics, err := provider.GetInstanceMetrics(context.Background(), id, kinds, start, end)
		if err != nil {
			return metricsErrorMsg{err: err}
		}
		return metricsLoadedMsg{metrics: metrics}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case metricsLoadedMsg:
		m.loading = false
		m.metrics = msg.metrics
		m.err = nil
		return m, nil

	case metricsErrorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "right", "l":
		m.panel = (m.panel + 1) % panelCount
		return m, nil

	case "shift+tab", "left", "h":
		m.panel = (m.panel + panelCount - 1) % panelCount
		return m, nil

	case "1", "2", "3", "4":
		m.panel = int(msg.String()[0] - '1')
		return m, nil

	case "s":
		m.showSafeLine = !m.showSafeLine
		return m, nil

	case "u":
		m.unit = nextUnit(m.unit)
		return m, nil

	case "r":
		if !m.loading {
			m.loading = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.fetchMetrics())
		}
	}

	return m, nil
}

func nextUnit(u series.Unit) series.Unit {
	switch u {
	case series.Bytes:
		return series.MiB
	case series.MiB:
		return series.GiB
	default:
		return series.Bytes
	}
}

// --- View ---

func (m dashboardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "dashboard · "+m.instance.Name, m.provider.GetDisplayName())

	bindings := []components.KeyBinding{
		{Key: "tab/1-4", Desc: "panel"},
		{Key: "s", Desc: "safe line"},
		{Key: "u", Desc: "unit"},
		{Key: "r", Desc: "refresh"},
		{Key: "q", Desc: "quit"},
	}
	footer := components.Footer(m.width, bindings)

	status := ""
	if m.err != nil {
		status = components.StatusBar(m.width, "Error: "+m.err.Error(), true)
	}

	headerH := lipgloss.Height(header)
	footerH := lipgloss.Height(footer)
	statusH := 0
	if status != "" {
		statusH = lipgloss.Height(status)
	}
	contentH := m.height - headerH - footerH - statusH - 1 // tabs row
	if contentH < 1 {
		contentH = 1
	}

	sections := []string{header, m.renderTabs()}
	sections = append(sections, m.renderContent(contentH))
	if status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, footer)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m dashboardModel) renderTabs() string {
	parts := make([]string, panelCount)
	for i, title := range panelTitles {
		style := styles.TabInactive
		if i == m.panel {
			style = styles.TabActive
		}
		parts[i] = style.Render(fmt.Sprintf("%d %s", i+1, title))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(parts, " "))
}

func (m dashboardModel) renderContent(height int) string {
	if m.loading {
		loadingText := m.spinner.View() + "  Fetching metrics..."
		return lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(loadingText),
		)
	}

	if m.metrics == nil {
		message := "No metric data."
		if m.err != nil {
			message = "Press r to retry."
		}
		return lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(message),
		)
	}

	var panel string
	switch m.panel {
	case panelDisk:
		panel = m.renderDiskPanel(height)
	case panelIO:
		panel = m.renderIOPanel()
	case panelTransactions:
		panel = m.renderCountersPanel(height, "Transactions per database", m.metrics.Transactions)
	case panelStatements:
		panel = m.renderCountersPanel(height, "Statements per database", m.metrics.Statements)
	}

	return lipgloss.NewStyle().Width(m.width).Height(height).Padding(0, 2).Render(panel)
}

// --- Disk panel ---

func (m dashboardModel) renderDiskPanel(height int) string {
	metrics := m.metrics

	chartW := m.width - 34 // leave room for the breakdown card
	if chartW < 40 {
		chartW = m.width - 4
	}
	chartH := height - 4
	if chartH < 6 {
		chartH = 6
	}

	colors := chartColors()
	var datasets []components.TimeDataset
	i := 0
	for dataType, ts := range metrics.DiskBytesUsedByType {
		datasets = append(datasets, components.TimeDataset{
			Name:   dataType,
			Color:  colors[i%len(colors)],
			Series: convertedSeries(ts, m.unit),
		})
		i++
	}
	datasets = append(datasets, components.TimeDataset{
		Name:   "quota",
		Color:  styles.Red,
		Series: convertedSeries(metrics.DiskQuota, m.unit),
	})
	if m.showSafeLine {
		datasets = append(datasets, components.TimeDataset{
			Name:   "90% of quota",
			Color:  styles.Yellow,
			Series: scaledOverlay(metrics.DiskQuota, safeLineFraction, m.unit),
		})
	}

	chart := components.TimeChart(chartW, chartH, datasets)
	legend := components.TimeChartLegend(datasets)
	title := styles.Label.Render(fmt.Sprintf("Disk usage by type (%s)", m.unit))

	left := lipgloss.JoinVertical(lipgloss.Left, title, chart, legend)
	right := m.renderBreakdownCard()

	if chartW == m.width-4 {
		return lipgloss.JoinVertical(lipgloss.Left, left, "", right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// renderBreakdownCard shows the current usage split with the Available
// remainder.
func (m dashboardModel) renderBreakdownCard() string {
	metrics := m.metrics

	usages := make(map[string]*float64, len(metrics.DiskBytesUsedByType))
	for dataType, ts := range metrics.DiskBytesUsedByType {
		usages[dataType] = ts.Sorted().Last()
	}
	slices := series.Breakdown(metrics.DiskQuota.Sorted().Last(), usages, m.unit)

	rows := make([]string, 0, len(slices)+1)
	rows = append(rows, styles.Subtitle.Render("Current usage"))
	for _, s := range slices {
		label := styles.Value.Render(s.Label)
		if s.Label == series.AvailableLabel {
			label = styles.SuccessText.Render(s.Label)
		}
		rows = append(rows, fmt.Sprintf("%s %s",
			styles.MutedText.Render(fmt.Sprintf("%10.2f %s", s.Value, m.unit)), label))
	}

	return styles.Card.Width(28).Render(strings.Join(rows, "\n"))
}

// --- I/O panel ---

func (m dashboardModel) renderIOPanel() string {
	metrics := m.metrics
	chartW := m.width - 6

	read := series.ConvertSeries(metrics.DiskReadOps, series.Bytes)
	write := series.ConvertSeries(metrics.DiskWriteOps, series.Bytes)

	var sections []string
	if m.envelope != nil {
		// Envelope ceilings are per second; the series carry one count
		// per step, so the reference lines scale by the step length.
		perStep := metrics.Step.Seconds()
		readCeiling := flatLine(len(read), float64(m.envelope.ReadIOPS)*perStep)
		writeCeiling := flatLine(len(write), float64(m.envelope.WriteIOPS)*perStep)

		sections = append(sections,
			components.MetricsOverlayChart("Disk read ops", read, readCeiling, "read", "ceiling", chartW, ""),
			"",
			components.MetricsOverlayChart("Disk write ops", write, writeCeiling, "write", "ceiling", chartW, ""),
			"",
			styles.MutedText.Render(fmt.Sprintf(
				"Envelope %s/%s: read %d IOPS · write %d IOPS · throughput %d/%d MB/s",
				m.instance.Tier, m.instance.Availability,
				m.envelope.ReadIOPS, m.envelope.WriteIOPS,
				m.envelope.ReadThroughput, m.envelope.WriteThroughput)),
		)
	} else {
		sections = append(sections,
			components.MetricsDualChart("Disk ops", read, write, "read", "write", chartW, ""),
			"",
			styles.WarningText.Render("No capacity envelope: "+m.envErr.Error()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// --- Counter panels ---

func (m dashboardModel) renderCountersPanel(height int, title string, groups []domain.DatabaseSeries) string {
	if len(groups) == 0 {
		return styles.MutedText.Render(title + ": no data")
	}

	chartW := m.width - 6
	chartH := height - 5
	if chartH < 6 {
		chartH = 6
	}

	colors := chartColors()
	datasets := make([]components.TimeDataset, 0, len(groups)+1)
	raw := make([]domain.TimeSeries, 0, len(groups))
	for i, g := range groups {
		datasets = append(datasets, components.TimeDataset{
			Name:   g.Key(),
			Color:  colors[i%len(colors)],
			Series: g.Series,
		})
		raw = append(raw, g.Series)
	}

	note := ""
	avg, err := series.FlatAverage("avg", raw)
	switch {
	case err != nil:
		note = styles.WarningText.Render("average unavailable: " + err.Error())
	case len(avg.Points) > 0:
		datasets = append(datasets, components.TimeDataset{
			Name:   "avg",
			Color:  styles.White,
			Series: avg,
		})
	}

	chart := components.TimeChart(chartW, chartH, datasets)
	legend := components.TimeChartLegend(datasets)

	sections := []string{styles.Label.Render(title), chart, legend}
	if note != "" {
		sections = append(sections, note)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// --- Helpers ---

func chartColors() []lipgloss.Color {
	return []lipgloss.Color{styles.Blue, styles.Green, styles.Yellow, styles.DimBlue, styles.Gray}
}

// convertedSeries maps a byte series to the display unit, keeping the
// timestamp axis.
func convertedSeries(ts domain.TimeSeries, unit series.Unit) domain.TimeSeries {
	out := domain.TimeSeries{Name: ts.Name, Points: make([]domain.Point, len(ts.Points))}
	for i, p := range ts.Points {
		v := series.ConvertBytes(p.Value, unit)
		out.Points[i] = domain.Point{Timestamp: p.Timestamp, Value: &v}
	}
	return out
}

// scaledOverlay builds a reference series at fraction of ts, converted
// to the display unit.
func scaledOverlay(ts domain.TimeSeries, fraction float64, unit series.Unit) domain.TimeSeries {
	values := series.ScaledSeries(ts, fraction, unit)
	out := domain.TimeSeries{Name: ts.Name, Points: make([]domain.Point, len(values))}
	for i, p := range ts.Points {
		v := values[i]
		out.Points[i] = domain.Point{Timestamp: p.Timestamp, Value: &v}
	}
	return out
}

// flatLine builds a constant reference series of length n.
func flatLine(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}
