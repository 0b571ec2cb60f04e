package ui

import (
	"fmt"
	"strings"

	"a3kd/internal/api"
	"a3kd/internal/ui/textutil"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// columns are the dashboard column widths; the last column is unbounded.
var columns = []int{10, 20, 10, 12, 12, 10, 0}

// experimentItem implements list.Item for an ExperimentSummary.
type experimentItem struct {
	api.ExperimentSummary
}

func (e experimentItem) FilterValue() string { return e.Name }
func (e experimentItem) Title() string {
	return textutil.Row(columns,
		e.ID, e.Name, e.Dataset, e.TeacherID, e.StudentID, e.Status,
		formatAccuracy(e.BestAccuracy))
}
func (e experimentItem) Description() string { return "" }

// formatAccuracy renders an accuracy with three decimals, or nothing when absent.
func formatAccuracy(acc api.Optional[float64]) string {
	v, ok := acc.Get()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.3f", v)
}

// DashboardView lists experiments from the latest snapshot.
type DashboardView struct {
	list        list.Model
	Experiments []api.ExperimentSummary
	spinner     spinner.Model
	loaded      bool
	refreshErr  error
}

// Ensure DashboardView implements View.
var _ View = (*DashboardView)(nil)

// NewDashboardView creates an empty dashboard. Rows arrive via SetExperiments.
func NewDashboardView() *DashboardView {
	l := list.New(nil, NewCompactListDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent))

	return &DashboardView{
		list:    l,
		spinner: s,
	}
}

// Init implements View.
func (d *DashboardView) Init() tea.Cmd {
	return d.spinner.Tick
}

// SetExperiments replaces every row, keeping the cursor on the same
// experiment when it is still listed.
func (d *DashboardView) SetExperiments(exps []api.ExperimentSummary, loaded bool, refreshErr error) {
	prev, hadPrev := d.Selected()
	d.Experiments = exps
	d.loaded = loaded
	d.refreshErr = refreshErr

	items := make([]list.Item, len(exps))
	idx := 0
	for i, e := range exps {
		items[i] = experimentItem{ExperimentSummary: e}
		if hadPrev && e.ID == prev.ID {
			idx = i
		}
	}
	d.list.SetItems(items)
	if len(items) > 0 {
		d.list.Select(idx)
	}
}

// Selected returns the experiment under the cursor.
func (d *DashboardView) Selected() (api.ExperimentSummary, bool) {
	item, ok := d.list.SelectedItem().(experimentItem)
	if !ok {
		return api.ExperimentSummary{}, false
	}
	return item.ExperimentSummary, true
}

// Update implements View.
func (d *DashboardView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.list.SetWidth(msg.Width)
		d.list.SetHeight(msg.Height - 8) // header, column titles, hints
		return d, nil
	case spinner.TickMsg:
		if d.loaded {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd
	}

	// j/k/g/G are handled by list.Model. Enter is handled by the app.
	var cmd tea.Cmd
	d.list, cmd = d.list.Update(msg)
	return d, cmd
}

// View implements View.
func (d *DashboardView) View() string {
	// Default dimensions for tests.
	if d.list.Width() == 0 {
		d.list.SetWidth(100)
	}
	if d.list.Height() == 0 {
		d.list.SetHeight(20)
	}

	var b strings.Builder
	title := fmt.Sprintf("Experiments (%d)", len(d.Experiments))
	if !d.loaded {
		title += " " + d.spinner.View()
	}
	b.WriteString(Styles.Title.Render(title) + "\n")
	if d.refreshErr != nil {
		b.WriteString(Styles.Error.Render("Refresh failed: "+d.refreshErr.Error()) + "\n")
	}
	b.WriteString("\n")

	if d.loaded && len(d.Experiments) == 0 {
		b.WriteString(Styles.Empty.Render("No experiments yet.") + "\n")
		return b.String()
	}
	header := textutil.Row(columns, "ID", "Name", "Dataset", "Teacher", "Student", "Status", "Best acc.")
	b.WriteString(Styles.Muted.Render("  "+header) + "\n")
	b.WriteString(d.list.View())
	return b.String()
}
