package ui

// AppMode is the top-level page the console shows.
type AppMode int

const (
	ModeLogin AppMode = iota
	ModeDashboard
	ModeProject
)

func (m AppMode) String() string {
	switch m {
	case ModeLogin:
		return "Login"
	case ModeDashboard:
		return "Dashboard"
	case ModeProject:
		return "Project"
	default:
		return "Unknown"
	}
}
