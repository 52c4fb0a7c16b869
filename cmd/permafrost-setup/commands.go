package pfsetup

import (
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/permafrost-sh/permafrost/pkg/config"
	"github.com/permafrost-sh/permafrost/pkg/system"
)

// buildConfig converts the collected answers into a Config. The storage box
// is shared between restic and cold storage, matching the common case of one
// rented box with two directories.
func buildConfig(m setupModel) *config.Config {
	box := func(path string) config.StorageBox {
		return config.StorageBox{
			Host:   m.storageHost,
			User:   m.storageUser,
			Path:   path,
			SSHKey: m.sshKey,
		}
	}

	cfg := &config.Config{
		Restic: config.Restic{
			StorageBox: box(m.resticPath),
			Retention:  config.Retention{Hourly: 24, Daily: 7, Weekly: 4, Monthly: 12},
		},
		Cold: config.ColdStorage{
			StorageBox:    box(m.coldPath),
			BasePathStrip: m.stripPrefix,
		},
		Machine: config.Machine{
			Name:             m.machineName,
			ScanPaths:        splitList(m.scanPaths),
			ExtraBackupPaths: splitList(m.extraPaths),
			Databases:        splitList(m.databases),
			Kuma: config.KumaEndpoints{
				Backup:     m.kumaBackup,
				Verify:     m.kumaVerify,
				DeepVerify: m.kumaDeepVerify,
			},
		},
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// installCmd writes the config files and installs the systemd timers,
// reporting progress back to the UI.
func installCmd(m setupModel) tea.Cmd {
	return func() tea.Msg {
		go func() {
			sendProgress("Writing configuration files...")
			cfg := buildConfig(m)
			if err := cfg.Validate(); err != nil {
				program.Send(installDoneMsg{err: err})
				return
			}
			if err := config.WriteFiles(m.configDir, cfg); err != nil {
				program.Send(installDoneMsg{err: err})
				return
			}

			sendProgress("Installing systemd timers...")
			binPath, err := os.Executable()
			if err != nil {
				program.Send(installDoneMsg{err: err})
				return
			}

			log := logrus.New()
			log.SetOutput(os.Stderr)
			if err := system.InstallTimers(binPath, logrus.NewEntry(log)); err != nil {
				program.Send(installDoneMsg{err: err})
				return
			}

			sendProgress("Done")
			program.Send(installDoneMsg{})
		}()
		return nil
	}
}

func sendProgress(message string) {
	if program != nil {
		program.Send(installProgressMsg{message: message})
	}
}
