package labels

// Label files hold one box per line: "<class> <cx> <cy> <w> <h>", normalized floats,
// one file per image sharing the image basename with a .txt extension.

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/soocke/boxlabel-go/domain/geometry"
)

// Policy selects how malformed lines are handled on load.
type Policy int

const (
	// Strict aborts the load on the first malformed line.
	Strict Policy = iota
	// Lenient skips malformed lines, logging and reporting each one.
	Lenient
)

func (p Policy) String() string {
	if p == Lenient {
		return "lenient"
	}
	return "strict"
}

// ErrMalformedLine matches every MalformedLineError via errors.Is.
var ErrMalformedLine = errors.New("malformed label line")

// MalformedLineError describes a line that is not exactly five numeric fields.
type MalformedLineError struct {
	Path   string
	Line   int // 1-based
	Text   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s:%d: malformed label line %q: %s", e.Path, e.Line, e.Text, e.Reason)
}

func (e *MalformedLineError) Is(target error) bool { return target == ErrMalformedLine }

// Result is the outcome of a load. Skipped is only populated under Lenient.
type Result struct {
	Boxes   []*geometry.Box
	Skipped []*MalformedLineError
}

// Codec reads and writes label files under a fixed malformed-line policy.
type Codec struct {
	policy Policy
	logger *slog.Logger
}

// NewCodec returns a codec applying policy.
func NewCodec(policy Policy, logger *slog.Logger) *Codec {
	return &Codec{policy: policy, logger: logger}
}

// Policy returns the configured policy.
func (c *Codec) Policy() Policy { return c.policy }

// Load reads the label file at path. A missing file is an empty result, never an error.
func (c *Codec) Load(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, nil
		}
		return Result{}, err
	}
	defer f.Close()
	res, err := Read(f, path, c.policy)
	if err != nil {
		return Result{}, err
	}
	if c.logger != nil {
		for _, s := range res.Skipped {
			c.logger.Warn("label line skipped", "path", s.Path, "line", s.Line, "reason", s.Reason)
		}
	}
	return res, nil
}

// Save overwrites path with boxes in order. An empty slice produces an empty file, which
// is how "no annotations" is persisted. The write goes through a temp file and rename so
// a crash never leaves a half-written label file.
func (c *Codec) Save(path string, boxes []*geometry.Box) error {
	var buf bytes.Buffer
	if err := Write(&buf, boxes); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create label dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp label file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write label file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close label file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace label file: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug("labels saved", "path", path, "boxes", len(boxes))
	}
	return nil
}

// Read parses label lines from r. path is only used in error messages.
func Read(r io.Reader, path string, policy Policy) (Result, error) {
	var res Result
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		b, reason := parseLine(text)
		if reason != "" {
			merr := &MalformedLineError{Path: path, Line: n, Text: text, Reason: reason}
			if policy == Strict {
				return Result{}, merr
			}
			res.Skipped = append(res.Skipped, merr)
			continue
		}
		res.Boxes = append(res.Boxes, b)
	}
	if err := sc.Err(); err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return res, nil
}

// Write serializes boxes, one newline-terminated line each.
func Write(w io.Writer, boxes []*geometry.Box) error {
	bw := bufio.NewWriter(w)
	for _, b := range boxes {
		if b == nil {
			continue
		}
		if _, err := bw.WriteString(FormatLine(*b)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatLine renders b without a trailing newline. Floats use the shortest representation
// that parses back to the same value.
func FormatLine(b geometry.Box) string {
	return strconv.Itoa(b.Class) + " " +
		formatFloat(b.CX) + " " +
		formatFloat(b.CY) + " " +
		formatFloat(b.W) + " " +
		formatFloat(b.H)
}

// ParseLine parses a single label line.
func ParseLine(line string) (geometry.Box, error) {
	b, reason := parseLine(line)
	if reason != "" {
		return geometry.Box{}, &MalformedLineError{Line: 1, Text: line, Reason: reason}
	}
	return *b, nil
}

func parseLine(line string) (*geometry.Box, string) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return nil, fmt.Sprintf("expected 5 fields, got %d", len(fields))
	}
	class, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Sprintf("class index %q is not an integer", fields[0])
	}
	if class < 0 {
		return nil, fmt.Sprintf("class index %d is negative", class)
	}
	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Sprintf("field %d %q is not a number", i+2, fields[i+1])
		}
		vals[i] = v
	}
	return &geometry.Box{Class: class, CX: vals[0], CY: vals[1], W: vals[2], H: vals[3]}, ""
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
