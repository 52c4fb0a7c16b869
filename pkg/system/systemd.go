package system

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const systemdDir = "/etc/systemd/system"

type unit struct {
	name        string
	description string
	args        string
	onCalendar  string
}

// Schedules: backups run hourly, light verification daily, deep (read-data)
// verification weekly.
var units = []unit{
	{"permafrost-backup", "Permafrost backup run", "run", "hourly"},
	{"permafrost-verify", "Permafrost repository verification", "verify", "daily"},
	{"permafrost-verify-deep", "Permafrost deep repository verification", "verify --deep", "weekly"},
}

// InstallTimers writes the service/timer pairs, reloads systemd and enables
// the timers. binPath is the permafrost executable the services invoke.
func InstallTimers(binPath string, log *logrus.Entry) error {
	for _, u := range units {
		servicePath := filepath.Join(systemdDir, u.name+".service")
		timerPath := filepath.Join(systemdDir, u.name+".timer")

		if err := os.WriteFile(servicePath, []byte(serviceUnit(u, binPath)), 0644); err != nil {
			return fmt.Errorf("cannot write %s: %w", servicePath, err)
		}
		if err := os.WriteFile(timerPath, []byte(timerUnit(u)), 0644); err != nil {
			return fmt.Errorf("cannot write %s: %w", timerPath, err)
		}
		log.WithField("unit", u.name).Info("installed systemd unit")
	}

	if err := systemctl("daemon-reload"); err != nil {
		return err
	}

	for _, u := range units {
		if err := systemctl("enable", "--now", u.name+".timer"); err != nil {
			return err
		}
	}
	return nil
}

func systemctl(args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.Command("systemctl", args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("systemctl %v: %w: %s", args, err, stderr.String())
	}
	return nil
}

// Type=notify: the run and verify commands call sd_notify so systemd can
// tell a hung backup from a long one.
func serviceUnit(u unit, binPath string) string {
	return fmt.Sprintf(`[Unit]
Description=%s
After=network-online.target
Wants=network-online.target

[Service]
Type=notify
ExecStart=%s %s
NotifyAccess=main
TimeoutStartSec=6h
`, u.description, binPath, u.args)
}

func timerUnit(u unit) string {
	return fmt.Sprintf(`[Unit]
Description=%s timer

[Timer]
OnCalendar=%s
Persistent=true
RandomizedDelaySec=300

[Install]
WantedBy=timers.target
`, u.description, u.onCalendar)
}
