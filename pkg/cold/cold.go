// Package cold implements the cold storage subsystem: a one-directional
// mirror of rarely-changing files onto one or two storage boxes, tracked by
// a per-machine sha256 ledger.
package cold

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/permafrost-sh/permafrost/pkg/config"
	"github.com/permafrost-sh/permafrost/pkg/transfer"
)

// Coordinator uploads local paths to cold storage and records what landed.
type Coordinator struct {
	Machine  string
	Cold     config.ColdStorage
	Ledger   *Ledger
	Executor transfer.Executor
	Log      *logrus.Entry
}

type target struct {
	box  config.StorageBox
	name string
}

// Upload mirrors localPath (a file or a directory tree) to the primary
// storage box, plus the redundant box when requested. Per file: hash, send
// to every target, then stage a ledger entry. The first transfer or hash
// error aborts the batch; entries staged before the failure are still
// written so completed work survives (re-running is idempotent).
func (c *Coordinator) Upload(localPath string, redundant bool) ([]Entry, error) {
	targets := []target{{box: c.Cold.StorageBox, name: "primary"}}
	if redundant {
		if c.Cold.RedundantStorageBox != nil {
			targets = append(targets, target{box: *c.Cold.RedundantStorageBox, name: "redundant"})
		} else {
			c.Log.WithField("path", localPath).Warn("redundant cold storage requested but not configured, uploading to primary only")
		}
	}

	files, err := CollectFiles(localPath)
	if err != nil {
		return nil, err
	}

	mapper := Mapper{Machine: c.Machine, StripPrefix: c.Cold.BasePathStrip}

	var staged []Entry
	for _, file := range files {
		if !mapper.WithinBase(file) {
			c.Log.WithField("path", file).Warnf("path outside %s, mirroring its full path", c.Cold.BasePathStrip)
		}

		digest, size, err := FileSHA256(file)
		if err != nil {
			return staged, c.flushAndWrap(staged, fmt.Errorf("failed to hash %s: %w", file, err))
		}

		for _, t := range targets {
			remote := mapper.Remote(t.box.Path, file)
			c.Log.WithFields(logrus.Fields{"path": file, "target": t.name, "remote": remote}).Info("uploading")
			if err := c.Executor.Send(file, remote, t.box); err != nil {
				return staged, c.flushAndWrap(staged, err)
			}
		}

		staged = append(staged, Entry{
			Path:     file,
			SHA256:   digest,
			Size:     size,
			BackedUp: time.Now().UTC().Truncate(time.Second),
		})
	}

	if err := c.Ledger.PutAll(staged); err != nil {
		return staged, fmt.Errorf("failed to record cold storage checksums: %w", err)
	}
	return staged, nil
}

// flushAndWrap persists whatever was staged before a mid-batch failure, then
// returns the failure. A ledger write error at this point is logged, not
// returned, so the original cause surfaces.
func (c *Coordinator) flushAndWrap(staged []Entry, cause error) error {
	if err := c.Ledger.PutAll(staged); err != nil {
		c.Log.WithError(err).Error("failed to persist staged checksums after upload failure")
	}
	return cause
}

// CollectFiles expands localPath into the sorted list of regular files to
// upload. Symlinks and special files are excluded.
func CollectFiles(localPath string) ([]string, error) {
	info, err := os.Lstat(localPath)
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", localPath, err)
	}

	if info.Mode().IsRegular() {
		return []string{localPath}, nil
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is neither a regular file nor a directory", localPath)
	}

	var files []string
	err = filepath.WalkDir(localPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", localPath, err)
	}

	sort.Strings(files)
	return files, nil
}
