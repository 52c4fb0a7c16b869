package transfer

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/permafrost-sh/permafrost/pkg/config"
	"github.com/permafrost-sh/permafrost/pkg/utils"
)

// Rsync sends files with rsync over ssh. Remote parent directories are
// created first with a plain ssh mkdir -p, since rsync will not create more
// than the final path component itself.
type Rsync struct {
	Log *logrus.Entry
}

func NewRsync(log *logrus.Entry) *Rsync {
	return &Rsync{Log: log}
}

func (r *Rsync) Send(localPath, remotePath string, box config.StorageBox) error {
	if err := r.mkdirRemote(path.Dir(remotePath), box); err != nil {
		return &SendError{Host: box.Host, Local: localPath, Remote: remotePath, Err: err}
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return &SendError{Host: box.Host, Local: localPath, Remote: remotePath, Err: err}
	}

	args := rsyncArgs(localPath, info.IsDir(), remotePath, box)
	cmd := exec.Command("rsync", args...)

	var stderr bytes.Buffer
	cmd.Stdout = utils.NewLineWriter(func(s string) {
		r.Log.WithField("host", box.Host).Debug(s)
	})
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &SendError{
			Host:   box.Host,
			Local:  localPath,
			Remote: remotePath,
			Err:    fmt.Errorf("rsync: %w: %s", err, stderr.String()),
		}
	}
	return nil
}

func (r *Rsync) mkdirRemote(dir string, box config.StorageBox) error {
	args := sshArgs(box, "mkdir", "-p", dir)
	cmd := exec.Command("ssh", args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ssh mkdir -p %s: %w: %s", dir, err, stderr.String())
	}
	return nil
}

// sshArgs builds the argument list for running a command on the box.
func sshArgs(box config.StorageBox, remoteCmd ...string) []string {
	args := []string{}
	if box.SSHKey != "" {
		args = append(args, "-i", box.SSHKey)
	}
	args = append(args, fmt.Sprintf("%s@%s", box.User, box.Host))
	return append(args, remoteCmd...)
}

// rsyncArgs builds the rsync argument list. Directories get a trailing slash
// so their contents land inside remotePath instead of nesting one deeper.
func rsyncArgs(localPath string, isDir bool, remotePath string, box config.StorageBox) []string {
	args := []string{"-az"}
	if box.SSHKey != "" {
		args = append(args, "-e", fmt.Sprintf("ssh -i %s", box.SSHKey))
	}

	src := localPath
	if isDir {
		src += "/"
	}

	return append(args, src, fmt.Sprintf("%s@%s:%s", box.User, box.Host, remotePath))
}
