package cold

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
)

// hashChunkSize bounds memory per file regardless of file size.
const hashChunkSize = 8 << 20

// FileSHA256 streams path through sha256 in fixed-size chunks and returns
// the hex digest and the number of bytes hashed. Uses an explicit read loop
// rather than io.Copy so the chunk bound holds for any reader.
func FileSHA256(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	var size int64

	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			size += int64(n)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", 0, err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), size, nil
}
