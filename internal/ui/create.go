package ui

import (
	"fmt"
	"strconv"
	"strings"

	"a3kd/internal/api"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultSearchEpisodes pre-fills the episodes field.
const DefaultSearchEpisodes = 10

// Form fields in focus order.
const (
	fieldName = iota
	fieldDataset
	fieldTeacher
	fieldStudent
	fieldEpisodes
	fieldCount
)

// canSubmit is the submit gate: name set, both models chosen and episodes in range.
func canSubmit(cfg api.ExperimentConfig) bool {
	return cfg.Validate() == nil
}

// CreateView is the form for a new experiment. It never talks to the
// service itself; submitting emits SubmitExperimentMsg.
type CreateView struct {
	name     textinput.Model
	episodes textinput.Model
	spinner  spinner.Model
	focus    int

	dataset  int
	teachers []api.ModelOption
	students []api.ModelOption
	teacher  int // -1 until the catalog loads
	student  int

	teacherErr     error
	studentErr     error
	teacherLoading bool
	studentLoading bool

	submitting bool
	err        error
}

// Ensure CreateView implements View.
var _ View = (*CreateView)(nil)

// NewCreateView returns a form with the default dataset and episode count.
func NewCreateView() *CreateView {
	name := textinput.New()
	name.Placeholder = "experiment name"
	name.Width = 40
	name.CharLimit = 128
	name.Focus()

	episodes := textinput.New()
	episodes.Placeholder = strconv.Itoa(DefaultSearchEpisodes)
	episodes.Width = 6
	episodes.CharLimit = 4
	episodes.SetValue(strconv.Itoa(DefaultSearchEpisodes))

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent))

	return &CreateView{
		name:     name,
		episodes: episodes,
		spinner:  s,
		teacher:  -1,
		student:  -1,
	}
}

// Init implements View.
func (v *CreateView) Init() tea.Cmd {
	return textinput.Blink
}

// syncCatalog copies the catalog state into the form and selects the first
// teacher and student once their lists are available.
func (v *CreateView) syncCatalog(c *CatalogLoader) {
	v.teachers = c.Models(api.KindTeacher)
	v.students = c.Models(api.KindStudent)
	v.teacherErr = c.Err(api.KindTeacher)
	v.studentErr = c.Err(api.KindStudent)
	v.teacherLoading = c.Loading(api.KindTeacher)
	v.studentLoading = c.Loading(api.KindStudent)
	if v.teacher < 0 && len(v.teachers) > 0 {
		v.teacher = 0
	}
	if v.student < 0 && len(v.students) > 0 {
		v.student = 0
	}
}

// Draft returns the config the form would submit. Episodes text that is not
// an integer yields zero, which the gate rejects.
func (v *CreateView) Draft() api.ExperimentConfig {
	cfg := api.ExperimentConfig{
		Name:    strings.TrimSpace(v.name.Value()),
		Dataset: api.Datasets[v.dataset],
	}
	if v.teacher >= 0 && v.teacher < len(v.teachers) {
		cfg.TeacherID = v.teachers[v.teacher].ID
	}
	if v.student >= 0 && v.student < len(v.students) {
		cfg.StudentID = v.students[v.student].ID
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.episodes.Value())); err == nil {
		cfg.SearchEpisodes = n
	}
	return cfg
}

// CanSubmit reports whether the current draft passes the submit gate.
func (v *CreateView) CanSubmit() bool {
	return canSubmit(v.Draft())
}

// Submitting reports whether a submission is in flight.
func (v *CreateView) Submitting() bool {
	return v.submitting
}

// Err returns the error of the last failed submission.
func (v *CreateView) Err() error {
	return v.err
}

func (v *CreateView) beginSubmit() tea.Cmd {
	v.submitting = true
	v.err = nil
	return v.spinner.Tick
}

// submitFailed keeps the draft and shows err.
func (v *CreateView) submitFailed(err error) {
	v.submitting = false
	v.err = err
}

func (v *CreateView) setFocus(f int) tea.Cmd {
	v.focus = (f + fieldCount) % fieldCount
	v.name.Blur()
	v.episodes.Blur()
	switch v.focus {
	case fieldName:
		return v.name.Focus()
	case fieldEpisodes:
		return v.episodes.Focus()
	}
	return nil
}

// cycle moves the focused selector by delta, wrapping around.
func (v *CreateView) cycle(delta int) {
	step := func(i, n int) int {
		if n == 0 {
			return i
		}
		return ((i+delta)%n + n) % n
	}
	switch v.focus {
	case fieldDataset:
		v.dataset = step(v.dataset, len(api.Datasets))
	case fieldTeacher:
		v.teacher = step(v.teacher, len(v.teachers))
	case fieldStudent:
		v.student = step(v.student, len(v.students))
	}
}

func (v *CreateView) onSelector() bool {
	return v.focus == fieldDataset || v.focus == fieldTeacher || v.focus == fieldStudent
}

// Update implements View.
func (v *CreateView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !v.submitting {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg { return BackMsg{} }
		case "tab", "down":
			return v, v.setFocus(v.focus + 1)
		case "shift+tab", "up":
			return v, v.setFocus(v.focus - 1)
		case "enter", "ctrl+s":
			if v.submitting || !v.CanSubmit() {
				return v, nil
			}
			cfg := v.Draft()
			return v, func() tea.Msg { return SubmitExperimentMsg{Config: cfg} }
		case "left", "h":
			if v.onSelector() {
				v.cycle(-1)
				return v, nil
			}
		case "right", "l", " ":
			if v.onSelector() {
				v.cycle(1)
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	switch v.focus {
	case fieldName:
		v.name, cmd = v.name.Update(msg)
	case fieldEpisodes:
		v.episodes, cmd = v.episodes.Update(msg)
	}
	return v, cmd
}

func (v *CreateView) selectorValue(opts []api.ModelOption, idx int, loading bool, err error, kind api.ModelKind) string {
	switch {
	case idx >= 0 && idx < len(opts):
		return "‹ " + opts[idx].Name + " ›"
	case loading:
		return Styles.Muted.Render("loading…")
	case err != nil:
		return Styles.Error.Render(fmt.Sprintf("could not load %ss: %v", kind, err))
	default:
		return Styles.Empty.Render(fmt.Sprintf("no %ss available", kind))
	}
}

func (v *CreateView) row(field int, label, value string) string {
	marker := "  "
	if v.focus == field {
		marker = Styles.Selected.Render("> ")
	}
	return marker + Styles.Label.Render(label) + value + "\n"
}

// View implements View.
func (v *CreateView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render("New experiment") + "\n\n")
	b.WriteString(v.row(fieldName, "Name", v.name.View()))
	b.WriteString(v.row(fieldDataset, "Dataset", "‹ "+api.Datasets[v.dataset]+" ›"))
	b.WriteString(v.row(fieldTeacher, "Teacher", v.selectorValue(v.teachers, v.teacher, v.teacherLoading, v.teacherErr, api.KindTeacher)))
	b.WriteString(v.row(fieldStudent, "Student", v.selectorValue(v.students, v.student, v.studentLoading, v.studentErr, api.KindStudent)))
	b.WriteString(v.row(fieldEpisodes, "Search episodes", v.episodes.View()+
		Styles.Muted.Render(fmt.Sprintf("  (%d-%d)", api.MinSearchEpisodes, api.MaxSearchEpisodes))))
	b.WriteString("\n")

	switch {
	case v.submitting:
		b.WriteString(v.spinner.View() + " Creating experiment…\n")
	case v.err != nil:
		b.WriteString(Styles.BoxDanger.Render(Styles.TitleError.Render("Create failed")+"\n"+v.err.Error()) + "\n")
	}

	if v.CanSubmit() {
		b.WriteString(Styles.Hint.Render("enter: create  tab: next field  ←/→: change  esc: cancel"))
	} else {
		b.WriteString(Styles.Hint.Render("fill in every field to create  tab: next field  esc: cancel"))
	}
	return b.String()
}
