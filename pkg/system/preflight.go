package system

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/permafrost-sh/permafrost/pkg/utils"
)

// EnsureFreeSpace fails when the filesystem holding path has less than
// minBytes free. Run before database dumps so a full disk surfaces as a
// clear error instead of a truncated dump.
func EnsureFreeSpace(path string, minBytes uint64) error {
	usage, err := disk.Usage(path)
	if err != nil {
		return fmt.Errorf("cannot check free space on %s: %w", path, err)
	}

	if usage.Free < minBytes {
		return fmt.Errorf("not enough free space on %s: %s free, %s required",
			path,
			utils.PrettyPrintDiskSize(int64(usage.Free)),
			utils.PrettyPrintDiskSize(int64(minBytes)))
	}
	return nil
}
