package ui

// AppMode is the screen the console is showing.
type AppMode int

const (
	ModeDashboard AppMode = iota
	ModeCreate
	ModeDetails
)

func (m AppMode) String() string {
	switch m {
	case ModeDashboard:
		return "Dashboard"
	case ModeCreate:
		return "Create"
	case ModeDetails:
		return "Details"
	default:
		return "Unknown"
	}
}
