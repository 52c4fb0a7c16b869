package mariadb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDumpArgs(t *testing.T) {
	args := dumpArgs("app_db", "backup", "hunter2")

	assert.Equal(t, []string{
		"-u", "backup",
		"-phunter2",
		"--single-transaction",
		"--routines",
		"--triggers",
		"--databases", "app_db",
	}, args)
}

func TestDumpArgsNoCredentials(t *testing.T) {
	args := dumpArgs("app_db", "", "")

	assert.Equal(t, []string{
		"--single-transaction",
		"--routines",
		"--triggers",
		"--databases", "app_db",
	}, args)
}

func TestCredentialArgsUserOnly(t *testing.T) {
	assert.Equal(t, []string{"-u", "root"}, credentialArgs("root", ""))
}
