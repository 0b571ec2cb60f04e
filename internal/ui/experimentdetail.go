package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// DetailView renders the experiment held by a DetailLoader in a scrollable
// viewport.
type DetailView struct {
	loader   *DetailLoader
	viewport viewport.Model
}

// Ensure DetailView implements View.
var _ View = (*DetailView)(nil)

func NewDetailView(loader *DetailLoader) *DetailView {
	return &DetailView{
		loader:   loader,
		viewport: viewport.New(0, 0),
	}
}

// Init implements View.
func (d *DetailView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (d *DetailView) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		d.viewport.Width = msg.Width
		d.viewport.Height = msg.Height - 6 // header, status, hints
		return d, nil
	}
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return d, cmd
}

// View implements View.
func (d *DetailView) View() string {
	if d.viewport.Width == 0 {
		d.viewport.Width = 100
	}
	if d.viewport.Height == 0 {
		d.viewport.Height = 30
	}
	d.viewport.SetContent(d.render())
	return d.viewport.View()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (d *DetailView) render() string {
	l := d.loader
	var b strings.Builder

	detail, ok := l.Detail().Get()
	if !ok {
		if err := l.DetailErr(); err != nil {
			b.WriteString(Styles.BoxDanger.Render(
				Styles.TitleError.Render("Could not load experiment "+l.ID()) + "\n" + err.Error()))
			return b.String()
		}
		b.WriteString(Styles.Muted.Render("Loading experiment " + l.ID() + "…"))
		return b.String()
	}

	b.WriteString(Styles.Title.Render("Experiment "+detail.ID) + "\n")
	b.WriteString(Styles.Muted.Render("Monitor accuracy, reward, and the best teacher assistant.") + "\n")
	if err := l.DetailErr(); err != nil {
		b.WriteString(Styles.Error.Render("Refresh failed: "+err.Error()) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(Styles.Section.Render("Configuration") + "\n")
	cfg := detail.Config
	fmt.Fprintf(&b, "  Name: %s\n", cfg.Name)
	fmt.Fprintf(&b, "  Dataset: %s\n", cfg.Dataset)
	fmt.Fprintf(&b, "  Teacher: %s\n", cfg.TeacherID)
	fmt.Fprintf(&b, "  Student: %s\n", cfg.StudentID)
	fmt.Fprintf(&b, "  Search episodes: %d\n", cfg.SearchEpisodes)
	fmt.Fprintf(&b, "  Status: %s\n", detail.Status)
	if acc := formatAccuracy(detail.BestAccuracy); acc != "" {
		fmt.Fprintf(&b, "  Best accuracy: %s\n", acc)
	}
	b.WriteString("\n")

	metrics, _ := l.Metrics().Get()
	points := metrics.Points()
	metricsErr := l.MetricsErr()
	section := func(title, label string, value func(i int) float64) {
		b.WriteString(Styles.Section.Render(title) + "\n")
		switch {
		case len(points) == 0 && metricsErr != nil:
			b.WriteString("  " + Styles.Error.Render("Could not load metrics: "+metricsErr.Error()) + "\n")
		case len(points) == 0:
			b.WriteString("  " + Styles.Empty.Render("No metrics yet.") + "\n")
		default:
			for i, p := range points {
				fmt.Fprintf(&b, "  Episode %d: %s %s\n", p.Episode, label, formatFloat(value(i)))
			}
		}
		b.WriteString("\n")
	}
	section("Student accuracy per episode", "accuracy", func(i int) float64 { return points[i].StudentAccuracy })
	section("Reward per episode", "reward", func(i int) float64 { return points[i].Reward })
	if metricsErr != nil && len(points) > 0 {
		b.WriteString(Styles.Error.Render("Metrics refresh failed: "+metricsErr.Error()) + "\n\n")
	}

	b.WriteString(Styles.Section.Render("Best assistant") + "\n")
	if a, ok := l.Assistant().Get(); ok {
		fmt.Fprintf(&b, "  Architecture: %s\n", a.ArchitectureID)
		fmt.Fprintf(&b, "  Accuracy: %s\n", formatFloat(a.ValAccuracy))
		fmt.Fprintf(&b, "  Latency (ms): %s\n", formatFloat(a.LatencyMS))
		fmt.Fprintf(&b, "  Params (M): %s\n", formatFloat(a.ParamsM))
	} else {
		b.WriteString("  " + Styles.Empty.Render("No assistant selected yet.") + "\n")
	}
	return b.String()
}
