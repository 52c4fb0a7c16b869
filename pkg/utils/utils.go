package utils

import (
	"bufio"
	"bytes"
	"fmt"
)

func PrettyPrintDiskSize(size int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)

	switch {
	case size >= TB:
		return fmt.Sprintf("%.2f TB", float64(size)/float64(TB))
	case size >= GB:
		return fmt.Sprintf("%.2f GB", float64(size)/float64(GB))
	case size >= MB:
		return fmt.Sprintf("%.2f MB", float64(size)/float64(MB))
	case size >= KB:
		return fmt.Sprintf("%.2f KB", float64(size)/float64(KB))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

type LineWriter struct {
	receiver func(string)
	buf      bytes.Buffer
}

// implements io.Writer and calls a function for each line
func NewLineWriter(receiver func(string)) *LineWriter {
	return &LineWriter{receiver: receiver}
}

func (t *LineWriter) Write(p []byte) (int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(p))
	scanner.Split(bufio.ScanLines)

	var lastLine bytes.Buffer

	for scanner.Scan() {
		lastLine.Write(t.buf.Bytes())
		t.buf.Reset()
		lastLine.Write(scanner.Bytes())

		t.receiver(lastLine.String())
		lastLine.Reset()
	}

	if len(p) > 0 && p[len(p)-1] != '\n' {
		if scanner.Err() == nil {
			t.buf.Write(p)
		} else {
			t.buf.Write(p[:len(p)-len(scanner.Bytes())])
		}
	}
	return len(p), scanner.Err()
}
