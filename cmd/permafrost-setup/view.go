package pfsetup

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("86")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

type stepPrompt struct {
	title    string
	subtitle string
}

var stepPrompts = map[setupStep]stepPrompt{
	stepMachineName:    {"Machine Name", "Identifies this machine on the storage box and in the checksum ledger"},
	stepStorageHost:    {"Storage Box Host", "Hostname of the rsync/SFTP storage box, e.g. u123456.your-storagebox.de"},
	stepStorageUser:    {"Storage Box User", "SSH username on the storage box"},
	stepSSHKey:         {"SSH Key Path", "Private key for the storage box, empty to use the SSH agent"},
	stepResticPath:     {"Restic Base Path", "Remote directory for restic repositories, e.g. /backups"},
	stepColdPath:       {"Cold Storage Base Path", "Remote directory for cold storage mirrors, e.g. /cold"},
	stepStripPrefix:    {"Strip Prefix", "Local prefix removed from cold storage remote paths"},
	stepScanPaths:      {"Scan Paths", "Comma-separated directories searched for marker files"},
	stepExtraPaths:     {"Extra Backup Paths", "Comma-separated paths always backed up, empty for none"},
	stepDatabases:      {"Databases", "Comma-separated MariaDB databases to dump, empty for none"},
	stepKumaBackup:     {"Kuma Backup URL", "Uptime Kuma push URL for backup runs, empty to disable"},
	stepKumaVerify:     {"Kuma Verify URL", "Uptime Kuma push URL for verification runs, empty to disable"},
	stepKumaDeepVerify: {"Kuma Deep Verify URL", "Uptime Kuma push URL for deep verification runs, empty to disable"},
}

// View renders the UI
func (m setupModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var content string
	switch m.currentStep {
	case stepWelcome:
		content = m.renderWelcomeStep()
	case stepSummary:
		content = m.renderSummaryStep()
	case stepInstalling:
		content = m.renderInstallingStep()
	case stepComplete:
		content = m.renderCompleteStep()
	default:
		content = m.renderTextStep()
	}

	if m.err != nil {
		content += "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return " " + strings.ReplaceAll(content, "\n", "\n ")
}

func (m setupModel) renderWelcomeStep() string {
	title := titleStyle.Render("Welcome to Permafrost Setup")
	subtitle := subtitleStyle.Render("This machine has no backup configuration yet")

	description := normalStyle.Render(
		"This setup wizard will guide you through configuring backups.\n" +
			"You'll need to:\n\n" +
			"  • Name this machine\n" +
			"  • Point at your storage box\n" +
			"  • Choose restic and cold storage directories\n" +
			"  • Pick scan paths and databases\n" +
			"  • Optionally wire up Uptime Kuma monitoring")

	prompt := successStyle.Render("Ready to begin?")
	help := helpStyle.Render("Enter: Start Setup • Ctrl+C: Cancel")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "", description, "", prompt, "", help)
}

func (m setupModel) renderTextStep() string {
	prompt, ok := stepPrompts[m.currentStep]
	if !ok {
		return ""
	}

	title := titleStyle.Render(prompt.title)
	subtitle := subtitleStyle.Render(prompt.subtitle)
	input := inputStyle.Render(m.input + "█")
	help := helpStyle.Render("Enter: Next • Esc: Back • Ctrl+C: Cancel")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "", input, "", help)
}

func (m setupModel) renderSummaryStep() string {
	title := titleStyle.Render("Summary")

	orNone := func(s string) string {
		if s == "" {
			return "(none)"
		}
		return s
	}

	lines := []string{
		fmt.Sprintf("Machine:        %s", m.machineName),
		fmt.Sprintf("Storage box:    %s@%s", m.storageUser, m.storageHost),
		fmt.Sprintf("SSH key:        %s", orNone(m.sshKey)),
		fmt.Sprintf("Restic path:    %s", m.resticPath),
		fmt.Sprintf("Cold path:      %s", m.coldPath),
		fmt.Sprintf("Strip prefix:   %s", m.stripPrefix),
		fmt.Sprintf("Scan paths:     %s", m.scanPaths),
		fmt.Sprintf("Extra paths:    %s", orNone(m.extraPaths)),
		fmt.Sprintf("Databases:      %s", orNone(m.databases)),
		fmt.Sprintf("Kuma backup:    %s", orNone(m.kumaBackup)),
		fmt.Sprintf("Kuma verify:    %s", orNone(m.kumaVerify)),
		fmt.Sprintf("Kuma deep:      %s", orNone(m.kumaDeepVerify)),
	}
	body := normalStyle.Render(strings.Join(lines, "\n"))

	prompt := successStyle.Render("Write configuration and install timers?")
	help := helpStyle.Render("Enter: Install • Esc: Back • q: Quit without saving")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", prompt, "", help)
}

func (m setupModel) renderInstallingStep() string {
	title := titleStyle.Render("Installing")

	var lines []string
	for _, p := range m.progress {
		lines = append(lines, progressStyle.Render("• "+p))
	}
	lines = append(lines, m.spin.View()+" working")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", strings.Join(lines, "\n"))
}

func (m setupModel) renderCompleteStep() string {
	title := successStyle.Render("Setup Complete")

	description := normalStyle.Render(
		"Configuration written and timers installed.\n\n" +
			"Next steps:\n" +
			"  • Run `permafrost init` to create the repository and secrets\n" +
			"  • Run `permafrost scan` to check your markers\n" +
			"  • Run `permafrost run --dry-run` for a first pass")

	help := helpStyle.Render("Enter: Exit")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", description, "", help)
}
