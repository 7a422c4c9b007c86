// Package source supplies raw event records, one line at a time, from
// the journal service, a file, or standard input. Reading blocks until
// a line is available or the supplier closes; termination is the
// caller's business (a bounded query ends on its own, a live follow
// ends when the subprocess is killed).
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Source yields raw record lines. Next returns io.EOF when the stream
// ends. Prefiltered reports whether the supplier already applied the
// time window, letting the orchestrator skip in-process admission.
type Source interface {
	Next() ([]byte, error)
	Prefiltered() bool
	Close() error
}

// maxLine allows for records carrying large attribute sets (dm tables).
const maxLine = 1024 * 1024

type lineSource struct {
	scanner     *bufio.Scanner
	closer      io.Closer
	prefiltered bool
}

func newLineSource(r io.Reader, closer io.Closer, prefiltered bool) *lineSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	return &lineSource{scanner: sc, closer: closer, prefiltered: prefiltered}
}

func (s *lineSource) Next() ([]byte, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return s.scanner.Bytes(), nil
}

func (s *lineSource) Prefiltered() bool {
	return s.prefiltered
}

func (s *lineSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// FromFile reads a previously exported record file. The window was not
// applied by anyone, so in-process admission stays on.
func FromFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening record file: %w", err)
	}
	return newLineSource(f, f, false), nil
}

// FromStdin consumes records piped in by the caller.
func FromStdin() Source {
	return newLineSource(os.Stdin, nil, false)
}

// journalSource wraps a journalctl subprocess. Closing waits for the
// subprocess so its exit status is not lost.
type journalSource struct {
	*lineSource
	cmd *exec.Cmd
}

func (s *journalSource) Close() error {
	if err := s.lineSource.Close(); err != nil {
		s.cmd.Wait()
		return err
	}
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("journal supplier: %w", err)
	}
	return nil
}

// FromJournal queries the journal service with the window built into
// the query, so the stream arrives pre-filtered. since/until are passed
// through in the journal's own human format.
func FromJournal(journalProg, tag, since, until string) (Source, error) {
	if journalProg == "" {
		journalProg = "journalctl"
	}
	args := []string{"-o", "json", "--no-pager"}
	if tag != "" {
		args = append(args, "-t", tag)
	}
	if since != "" {
		args = append(args, "--since", since)
	}
	if until != "" {
		args = append(args, "--until", until)
	}

	cmd := exec.Command(journalProg, args...)
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("journal supplier %q: %w", journalProg, err)
	}
	return &journalSource{
		lineSource: newLineSource(stdout, nil, true),
		cmd:        cmd,
	}, nil
}
