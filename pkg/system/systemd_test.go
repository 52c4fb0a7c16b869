package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceUnit(t *testing.T) {
	u := unit{"permafrost-verify-deep", "Permafrost deep repository verification", "verify --deep", "weekly"}
	out := serviceUnit(u, "/usr/local/bin/permafrost")

	assert.Contains(t, out, "Description=Permafrost deep repository verification")
	assert.Contains(t, out, "Type=notify")
	assert.Contains(t, out, "ExecStart=/usr/local/bin/permafrost verify --deep")
}

func TestTimerUnit(t *testing.T) {
	u := unit{"permafrost-backup", "Permafrost backup run", "run", "hourly"}
	out := timerUnit(u)

	assert.Contains(t, out, "OnCalendar=hourly")
	assert.Contains(t, out, "Persistent=true")
	assert.Contains(t, out, "WantedBy=timers.target")
}
