package output

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// DefaultPlaceholder is written for paths no commit accounted for.
const DefaultPlaceholder = "?"

func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

func placeholderOrDefault(p string) string {
	if p == "" {
		return DefaultPlaceholder
	}
	return p
}

// outputTarget is where a writer sends its bytes. Close flushes any
// compression layer and closes the file; it is a no-op for stdout.
type outputTarget struct {
	io.Writer
	closers []io.Closer
}

func (o *outputTarget) Close() error {
	var first error
	for _, c := range o.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	o.closers = nil
	return first
}

func openOutputWriter(outputPath string) (*outputTarget, error) {
	if outputPath == "" || outputPath == "-" {
		return &outputTarget{Writer: os.Stdout}, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(strings.ToLower(outputPath), ".gz") {
		zw := gzip.NewWriter(file)
		return &outputTarget{Writer: zw, closers: []io.Closer{zw, file}}, nil
	}
	return &outputTarget{Writer: file, closers: []io.Closer{file}}, nil
}

// writeTo opens the target, runs fn and closes the target, reporting the
// first error.
func writeTo(outputPath string, fn func(w io.Writer) error) (err error) {
	out, err := openOutputWriter(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(out)
}
