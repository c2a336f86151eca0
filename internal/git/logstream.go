package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// recordSeparator opens every commit header in the log stream.
const recordSeparator = 0x1e

// logFormat prints "<0x1e><sha> <committer date, strict ISO 8601>" per
// commit. With -z the changed paths that follow are NUL terminated, which
// keeps the stream parseable whatever bytes the paths contain.
const logFormat = "%x1e%H %cI"

type logRecordKind int

const (
	recordMarker logRecordKind = iota
	recordPath
)

// logRecord is either a timestamp marker or a changed path belonging to
// the most recent marker.
type logRecord struct {
	kind   logRecordKind
	commit CommitInfo
	path   string
}

// logScanner splits a `git log -z --name-only` stream into records.
type logScanner struct {
	sc    *bufio.Scanner
	queue []logRecord
}

func newLogScanner(r io.Reader) *logScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	sc.Split(splitLogTokens)
	return &logScanner{sc: sc}
}

// splitLogTokens is a bufio.SplitFunc cutting at NUL. A commit header only
// ever opens the stream or follows the NUL ending the previous commit, so
// headers always start a token and a 0x1e inside a path stays part of it.
func splitLogTokens(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0x00); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// next returns the next record, or io.EOF at the end of the stream.
func (s *logScanner) next() (logRecord, error) {
	for len(s.queue) == 0 {
		if !s.sc.Scan() {
			if err := s.sc.Err(); err != nil {
				return logRecord{}, err
			}
			return logRecord{}, io.EOF
		}
		if err := s.parseToken(s.sc.Bytes()); err != nil {
			return logRecord{}, err
		}
	}
	rec := s.queue[0]
	s.queue = s.queue[1:]
	return rec, nil
}

func (s *logScanner) parseToken(tok []byte) error {
	if len(tok) > 0 && tok[0] == recordSeparator {
		header, rest, _ := bytes.Cut(tok[1:], []byte{'\n'})
		commit, err := parseLogHeader(string(header))
		if err != nil {
			return err
		}
		s.queue = append(s.queue, logRecord{kind: recordMarker, commit: commit})
		tok = rest
	}

	if path := string(bytes.TrimLeft(tok, "\n")); path != "" {
		s.queue = append(s.queue, logRecord{kind: recordPath, path: path})
	}
	return nil
}

func parseLogHeader(header string) (CommitInfo, error) {
	sha, date, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return CommitInfo{}, fmt.Errorf("unexpected git log header %q", header)
	}
	when, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return CommitInfo{}, fmt.Errorf("parse committer date: %w", err)
	}
	return CommitInfo{SHA: sha, When: when}, nil
}

// LogStream detects changes by reading a first-parent
// `git log --name-only` stream from a git subprocess. Merge commits list
// their changes against the first parent, matching TreeWalker. The process
// is only started on the first Next and is killed by Close if still running.
type LogStream struct {
	opts WalkOptions

	open    func(ctx context.Context) (io.ReadCloser, func() error, error)
	rc      io.ReadCloser
	wait    func() error
	cancel  context.CancelFunc
	scanner *logScanner
	current *ChangeStep
	started bool
	done    bool
}

// NewLogStream creates a log-stream step source for the repository at
// opts.RepoPath.
func NewLogStream(opts WalkOptions) *LogStream {
	s := &LogStream{opts: opts}
	s.open = s.startGit
	return s
}

// newLogStreamFromReader builds a stream over already produced log output.
func newLogStreamFromReader(r io.Reader) *LogStream {
	return &LogStream{
		open: func(context.Context) (io.ReadCloser, func() error, error) {
			return io.NopCloser(r), func() error { return nil }, nil
		},
	}
}

func (s *LogStream) startGit(ctx context.Context) (io.ReadCloser, func() error, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, nil, backendError("locate git executable", err)
	}

	args := []string{
		"-C", s.opts.RepoPath,
		"log",
		"--no-color",
		"--no-renames",
		"--first-parent",
		"--diff-merges=first-parent",
		"--name-only",
		"-z",
		"--pretty=format:" + logFormat,
		s.opts.revision(),
		"--",
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, backendError("git log", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, backendError("git log", err)
	}

	wait := func() error {
		if err := cmd.Wait(); err != nil {
			return fmt.Errorf("git log failed: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil
	}
	return stdout, wait, nil
}

func (s *LogStream) start(ctx context.Context) error {
	s.started = true

	procCtx, cancel := context.WithCancel(ctx)
	rc, wait, err := s.open(procCtx)
	if err != nil {
		cancel()
		return err
	}
	s.rc, s.wait, s.cancel = rc, wait, cancel
	s.scanner = newLogScanner(rc)
	return nil
}

// Next reads records up to the following marker and returns the step of
// the current marker with its changed paths that are still pending.
func (s *LogStream) Next(ctx context.Context, pending PendingPaths) (*ChangeStep, error) {
	if !s.started {
		if err := s.start(ctx); err != nil {
			return nil, err
		}
	}
	if s.done {
		return nil, io.EOF
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := s.scanner.next()
		if errors.Is(err, io.EOF) {
			s.done = true
			if err := s.finish(); err != nil {
				return nil, err
			}
			if step := s.current; step != nil {
				s.current = nil
				return step, nil
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, backendError("read git log", err)
		}

		switch rec.kind {
		case recordMarker:
			step := s.current
			s.current = &ChangeStep{Commit: rec.commit}
			if step != nil {
				return step, nil
			}
		case recordPath:
			if s.current == nil {
				return nil, backendError("read git log", fmt.Errorf("path %q before any commit header", rec.path))
			}
			if pending.Contains(rec.path) {
				s.current.Paths = append(s.current.Paths, rec.path)
			}
		}
	}
}

// finish waits for a producer that ran to completion and reports its exit
// status.
func (s *LogStream) finish() error {
	if s.wait == nil {
		return nil
	}
	wait := s.wait
	s.wait = nil
	if err := wait(); err != nil {
		return backendError("git log", err)
	}
	return nil
}

// Close stops the producer. A process still running is killed and its exit
// status discarded, since stopping early is the expected way to end a walk.
func (s *LogStream) Close() error {
	if !s.started {
		s.done = true
		return nil
	}
	s.done = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.rc != nil {
		s.rc.Close()
		s.rc = nil
	}
	if s.wait != nil {
		_ = s.wait()
		s.wait = nil
	}
	return nil
}
