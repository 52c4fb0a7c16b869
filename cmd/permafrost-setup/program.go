package pfsetup

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Global program instance for async messaging
var program *tea.Program

// SetProgram stores the program instance for async messaging
func SetProgram(p *tea.Program) {
	program = p
}

// ProgramOptions returns default program options.
func ProgramOptions() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithAltScreen()}
}

// NewModel creates a new setup model instance.
func NewModel(configDir string) tea.Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = progressStyle

	return setupModel{
		currentStep: stepWelcome,
		configDir:   configDir,
		stripPrefix: "/home",
		scanPaths:   "/home",
		spin:        spin,
	}
}
