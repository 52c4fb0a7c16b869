// Package restic wraps the restic binary for the primary versioned backups.
// Repository location and credentials travel through the environment, never
// argv, so they stay out of the process list.
package restic

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/permafrost-sh/permafrost/pkg/config"
	"github.com/permafrost-sh/permafrost/pkg/utils"
)

type Client struct {
	Machine   string
	Box       config.StorageBox
	Retention config.Retention
	Exclude   []string
	Password  string
	Log       *logrus.Entry
}

// RepoURL is the per-machine SFTP repository on the storage box.
func (c *Client) RepoURL() string {
	return fmt.Sprintf("sftp:%s@%s:%s/%s", c.Box.User, c.Box.Host, c.Box.Path, c.Machine)
}

func (c *Client) env() []string {
	env := append(os.Environ(),
		"RESTIC_REPOSITORY="+c.RepoURL(),
		"RESTIC_PASSWORD="+c.Password,
	)
	if c.Box.SSHKey != "" {
		env = append(env, "RESTIC_SFTP_ARGS=-i "+c.Box.SSHKey)
	}
	return env
}

func (c *Client) run(args ...string) error {
	c.Log.WithField("args", args).Debug("running restic")

	cmd := exec.Command("restic", args...)
	cmd.Env = c.env()

	var stderr bytes.Buffer
	cmd.Stdout = utils.NewLineWriter(func(s string) {
		c.Log.Debug(s)
	})
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("restic %s: %w: %s", args[0], err, stderr.String())
	}
	return nil
}

// runCaptured returns stdout instead of streaming it.
func (c *Client) runCaptured(args ...string) (string, error) {
	cmd := exec.Command("restic", args...)
	cmd.Env = c.env()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("restic %s: %w: %s", args[0], err, stderr.String())
	}
	return stdout.String(), nil
}

// InitRepo creates the repository. Fails if it already exists.
func (c *Client) InitRepo() error {
	return c.run("init")
}

// RepoExists probes the repository with a cheap snapshot listing.
func (c *Client) RepoExists() bool {
	_, err := c.runCaptured("snapshots", "--latest", "1")
	return err == nil
}

// Backup snapshots the given paths. Excludes come from config; dryRun maps
// to restic's own --dry-run.
func (c *Client) Backup(paths []string, dryRun bool) error {
	if len(paths) == 0 {
		c.Log.Info("nothing to back up")
		return nil
	}
	return c.run(backupArgs(paths, c.Exclude, "", dryRun)...)
}

// BackupDump snapshots a database dump directory under a tag so dump
// snapshots are distinguishable from filesystem ones.
func (c *Client) BackupDump(path, tag string) error {
	return c.run(backupArgs([]string{path}, nil, tag, false)...)
}

// ForgetAndPrune applies the retention policy and reclaims space.
func (c *Client) ForgetAndPrune() error {
	return c.run(retentionArgs(c.Retention)...)
}

// Check verifies repository integrity. readData re-downloads and re-hashes
// every pack, which is slow and bandwidth-heavy.
func (c *Client) Check(readData bool) error {
	args := []string{"check"}
	if readData {
		args = append(args, "--read-data")
	}
	return c.run(args...)
}

// Snapshots returns the raw snapshot listing for display.
func (c *Client) Snapshots() (string, error) {
	return c.runCaptured("snapshots")
}

func backupArgs(paths, exclude []string, tag string, dryRun bool) []string {
	args := []string{"backup"}
	if dryRun {
		args = append(args, "--dry-run")
	}
	if tag != "" {
		args = append(args, "--tag", tag)
	}
	for _, e := range exclude {
		args = append(args, "--exclude", e)
	}
	return append(args, paths...)
}

func retentionArgs(r config.Retention) []string {
	return []string{
		"forget", "--prune",
		"--keep-hourly", strconv.Itoa(r.Hourly),
		"--keep-daily", strconv.Itoa(r.Daily),
		"--keep-weekly", strconv.Itoa(r.Weekly),
		"--keep-monthly", strconv.Itoa(r.Monthly),
	}
}
