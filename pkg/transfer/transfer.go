// Package transfer moves local files onto remote storage boxes. The cold
// storage coordinator only depends on the Executor interface; the production
// implementation shells out to rsync over ssh.
package transfer

import (
	"fmt"

	"github.com/permafrost-sh/permafrost/pkg/config"
)

// Executor sends one local path to one remote path on a storage box. The
// localPath may be a file or a directory; implementations must be idempotent
// and create missing remote parent directories.
type Executor interface {
	Send(localPath, remotePath string, box config.StorageBox) error
}

// SendError wraps a failed transfer with enough context to report which
// target and which file broke the batch.
type SendError struct {
	Host   string
	Local  string
	Remote string
	Err    error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("transfer of %s to %s:%s failed: %v", e.Local, e.Host, e.Remote, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
