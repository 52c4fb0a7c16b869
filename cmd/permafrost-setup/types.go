package pfsetup

import (
	"github.com/charmbracelet/bubbles/spinner"
)

// setupStep represents the current step in the setup process
type setupStep int

const (
	stepWelcome setupStep = iota
	stepMachineName
	stepStorageHost
	stepStorageUser
	stepSSHKey
	stepResticPath
	stepColdPath
	stepStripPrefix
	stepScanPaths
	stepExtraPaths
	stepDatabases
	stepKumaBackup
	stepKumaVerify
	stepKumaDeepVerify
	stepSummary
	stepInstalling
	stepComplete
)

// setupModel holds the answers collected so far
type setupModel struct {
	// Configuration data
	machineName    string
	storageHost    string
	storageUser    string
	sshKey         string
	resticPath     string
	coldPath       string
	stripPrefix    string
	scanPaths      string
	extraPaths     string
	databases      string
	kumaBackup     string
	kumaVerify     string
	kumaDeepVerify string

	// UI state
	currentStep   setupStep
	width, height int
	input         string
	err           error
	isProcessing  bool
	progress      []string
	spin          spinner.Model

	configDir string
}

// Message types
type installProgressMsg struct {
	message string
}
type installDoneMsg struct {
	err error
}
