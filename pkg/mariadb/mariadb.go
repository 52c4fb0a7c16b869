// Package mariadb produces consistent database dumps for backup.
package mariadb

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

type Dumper struct {
	User     string
	Password string
	Log      *logrus.Entry
}

// Dump writes a timestamped SQL dump of one database into outputDir and
// returns the file path. A partial file is removed on failure.
func (d *Dumper) Dump(database, outputDir string) (string, error) {
	name := fmt.Sprintf("%s_%s.sql", database, time.Now().Format("20060102_150405"))
	outPath := filepath.Join(outputDir, name)

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("cannot create dump file: %w", err)
	}
	defer out.Close()

	cmd := exec.Command("mariadb-dump", dumpArgs(database, d.User, d.Password)...)
	cmd.Stdout = out

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("mariadb-dump %s: %w: %s", database, err, stderr.String())
	}

	d.Log.WithFields(logrus.Fields{"database": database, "file": outPath}).Info("database dumped")
	return outPath, nil
}

// DumpAll dumps every database into a fresh temp directory. The directory is
// removed if any dump fails; on success the caller owns cleanup.
func (d *Dumper) DumpAll(databases []string) (string, []string, error) {
	if len(databases) == 0 {
		return "", nil, nil
	}

	dir, err := os.MkdirTemp("", "permafrost_db_")
	if err != nil {
		return "", nil, fmt.Errorf("cannot create dump directory: %w", err)
	}

	var files []string
	for _, db := range databases {
		path, err := d.Dump(db, dir)
		if err != nil {
			os.RemoveAll(dir)
			return "", nil, err
		}
		files = append(files, path)
	}
	return dir, files, nil
}

// TestConnection checks that the server is reachable with the configured
// credentials.
func (d *Dumper) TestConnection() error {
	args := credentialArgs(d.User, d.Password)
	args = append(args, "-e", "SELECT 1")

	var stderr bytes.Buffer
	cmd := exec.Command("mariadb", args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mariadb connection test: %w: %s", err, stderr.String())
	}
	return nil
}

// dumpArgs builds the mariadb-dump argument list. Single-transaction keeps
// InnoDB dumps consistent without locking; routines and triggers are part of
// the schema and must travel with it.
func dumpArgs(database, user, password string) []string {
	args := credentialArgs(user, password)
	return append(args,
		"--single-transaction",
		"--routines",
		"--triggers",
		"--databases", database,
	)
}

func credentialArgs(user, password string) []string {
	var args []string
	if user != "" {
		args = append(args, "-u", user)
	}
	if password != "" {
		args = append(args, "-p"+password)
	}
	return args
}
