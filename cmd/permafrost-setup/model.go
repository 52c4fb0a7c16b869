package pfsetup

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// textStep describes one free-text question: where its answer lives, what
// came before and after, and whether an empty answer is allowed.
type textStep struct {
	field    func(m *setupModel) *string
	prev     setupStep
	next     setupStep
	required bool
}

var textSteps = map[setupStep]textStep{
	stepMachineName:    {func(m *setupModel) *string { return &m.machineName }, stepWelcome, stepStorageHost, true},
	stepStorageHost:    {func(m *setupModel) *string { return &m.storageHost }, stepMachineName, stepStorageUser, true},
	stepStorageUser:    {func(m *setupModel) *string { return &m.storageUser }, stepStorageHost, stepSSHKey, true},
	stepSSHKey:         {func(m *setupModel) *string { return &m.sshKey }, stepStorageUser, stepResticPath, false},
	stepResticPath:     {func(m *setupModel) *string { return &m.resticPath }, stepSSHKey, stepColdPath, true},
	stepColdPath:       {func(m *setupModel) *string { return &m.coldPath }, stepResticPath, stepStripPrefix, true},
	stepStripPrefix:    {func(m *setupModel) *string { return &m.stripPrefix }, stepColdPath, stepScanPaths, true},
	stepScanPaths:      {func(m *setupModel) *string { return &m.scanPaths }, stepStripPrefix, stepExtraPaths, true},
	stepExtraPaths:     {func(m *setupModel) *string { return &m.extraPaths }, stepScanPaths, stepDatabases, false},
	stepDatabases:      {func(m *setupModel) *string { return &m.databases }, stepExtraPaths, stepKumaBackup, false},
	stepKumaBackup:     {func(m *setupModel) *string { return &m.kumaBackup }, stepDatabases, stepKumaVerify, false},
	stepKumaVerify:     {func(m *setupModel) *string { return &m.kumaVerify }, stepKumaBackup, stepKumaDeepVerify, false},
	stepKumaDeepVerify: {func(m *setupModel) *string { return &m.kumaDeepVerify }, stepKumaVerify, stepSummary, false},
}

// Init initializes the model and returns initial commands
func (m setupModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.currentStep {
		case stepWelcome:
			if msg.String() == "enter" {
				m.currentStep = stepMachineName
				m.input = m.machineName
				m.err = nil
			}
			return m, nil

		case stepSummary:
			return m.handleSummaryInput(msg)

		case stepInstalling:
			// No input while installing
			return m, nil

		case stepComplete:
			if msg.String() == "enter" || msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil

		default:
			return m.handleTextInput(msg)
		}

	case spinner.TickMsg:
		if m.isProcessing {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case installProgressMsg:
		m.progress = append(m.progress, msg.message)
		return m, nil

	case installDoneMsg:
		m.isProcessing = false
		if msg.err != nil {
			m.err = msg.err
			m.currentStep = stepSummary
		} else {
			m.currentStep = stepComplete
		}
		return m, nil
	}

	return m, nil
}

// handleTextInput edits the current free-text answer.
func (m setupModel) handleTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step, ok := textSteps[m.currentStep]
	if !ok {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		if step.required && m.input == "" {
			m.err = fmt.Errorf("this field is required")
			return m, nil
		}
		*step.field(&m) = m.input
		m.err = nil
		m.currentStep = step.next
		if next, ok := textSteps[m.currentStep]; ok {
			m.input = *next.field(&m)
		}
	case "esc":
		*step.field(&m) = m.input
		m.err = nil
		m.currentStep = step.prev
		if prev, ok := textSteps[m.currentStep]; ok {
			m.input = *prev.field(&m)
		}
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if len(msg.Runes) == 1 && len(m.input) < 200 {
			m.input += string(msg.Runes)
		}
	}
	return m, nil
}

func (m setupModel) handleSummaryInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.currentStep = stepInstalling
		m.isProcessing = true
		m.progress = nil
		m.err = nil
		return m, tea.Batch(installCmd(m), m.spin.Tick)
	case "esc":
		m.currentStep = stepKumaDeepVerify
		m.input = m.kumaDeepVerify
	case "q":
		return m, tea.Quit
	}
	return m, nil
}
