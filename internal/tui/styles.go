package tui

import "github.com/charmbracelet/lipgloss"

var (
	// tsStyle renders the timestamp column.
	tsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	// nickStyle renders sender nicks.
	nickStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)

	// selfNickStyle renders the local participant's own nick.
	selfNickStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)

	// presenceStyle renders join/leave notices.
	presenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)

	// errorStyle renders transient error notices.
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	// promptStyle renders the input prompt.
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)

	// helpStyle renders the footer hint line.
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
