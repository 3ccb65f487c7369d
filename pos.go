package tomo

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Location is a single point in a source file: a byte cursor plus the
// 1-based line/column it corresponds to.
type Location struct {
	Line   int32
	Column int32
	Cursor int32
}

// Span is a half-open byte range [Start, End) into a File, carried on
// every AST node so error messages and source-backed formatting can
// point at exact text (§3.8).
type Span struct {
	File  *File
	Start int32
	End   int32
}

func (s Span) String() string {
	if s.File == nil {
		return fmt.Sprintf("%d..%d", s.Start, s.End)
	}
	startLine, startCol := s.File.LineColumn(int(s.Start))
	endLine, endCol := s.File.LineColumn(int(s.End))
	if startLine == endLine && startCol == endCol {
		return fmt.Sprintf("%s:%d:%d", s.File.RelativeFilename, startLine, startCol)
	}
	if startLine == endLine {
		return fmt.Sprintf("%s:%d:%d-%d", s.File.RelativeFilename, startLine, startCol, endCol)
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", s.File.RelativeFilename, startLine, startCol, endLine, endCol)
}

// Text returns the exact source slice the span covers.
func (s Span) Text() string {
	if s.File == nil || s.Start < 0 || int(s.End) > len(s.File.Text) {
		return ""
	}
	return s.File.Text[s.Start:s.End]
}

// joinSpans returns the smallest span covering both a and b.
func joinSpans(a, b Span) Span {
	start, end := a.Start, a.End
	if b.Start < start {
		start = b.Start
	}
	if b.End > end {
		end = b.End
	}
	return Span{File: a.File, Start: start, End: end}
}

// File is the source-file abstraction the parser and error reporter
// share (§6.2): filename, relative filename, full text and a
// precomputed line-start index.
type File struct {
	Filename         string
	RelativeFilename string
	Text             string

	lineOffsets []int32
}

// LoadFile reads a file off disk into a *File (§6.2 `load_file`).
func LoadFile(path string) (*File, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	rel := path
	if wd, err := workingDirectory(); err == nil {
		if r, err := filepath.Rel(wd, path); err == nil {
			rel = r
		}
	}
	return newFile(path, rel, string(data)), nil
}

// SpoofFile builds an in-memory File (§6.2 `spoof_file`), used by tests
// and by fragment-parsing entry points (`parse_expression_str`,
// `parse_type_str`) that have no backing disk file.
func SpoofFile(name, text string) *File {
	return newFile(name, name, text)
}

func newFile(filename, relative, text string) *File {
	f := &File{Filename: filename, RelativeFilename: relative, Text: text}
	f.lineOffsets = append(f.lineOffsets, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			f.lineOffsets = append(f.lineOffsets, int32(i+1))
		}
	}
	return f
}

// LineNumber returns the 1-based line number containing byte offset p
// (§6.2 `get_line_number`).
func (f *File) LineNumber(p int) int {
	line, _ := f.LineColumn(p)
	return line
}

// LineColumn converts a byte offset into 1-based (line, column)
// (§6.2 `get_line_column`).
func (f *File) LineColumn(p int) (line, column int) {
	if p < 0 {
		p = 0
	}
	if p > len(f.Text) {
		p = len(f.Text)
	}
	idx := sort.Search(len(f.lineOffsets), func(i int) bool {
		return int(f.lineOffsets[i]) > p
	}) - 1
	if idx < 0 {
		idx = 0
	}
	lineStart := int(f.lineOffsets[idx])
	return idx + 1, p - lineStart + 1
}

// Line returns the raw text of 1-based line number n, without its
// trailing newline (§6.2 `get_line`).
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.lineOffsets) {
		return ""
	}
	start := int(f.lineOffsets[n-1])
	var end int
	if n == len(f.lineOffsets) {
		end = len(f.Text)
	} else {
		end = int(f.lineOffsets[n]) - 1
	}
	if end < start {
		end = start
	}
	if end > len(f.Text) {
		end = len(f.Text)
	}
	return f.Text[start:end]
}

// HighlightError formats a span-highlighted error message the way the
// parser's error-reporting escape hatch does (§6.2 `highlight_error`):
// the offending line(s) with a `^` underline beneath the span,
// optionally ANSI-colored (§7, color policy).
func (f *File) HighlightError(start, end int32, message string, contextLines int, useColor bool) string {
	startLine, startCol := f.LineColumn(int(start))
	endLine, _ := f.LineColumn(int(end))

	var b []byte
	header := fmt.Sprintf("%s:%d:%d: %s", f.RelativeFilename, startLine, startCol, message)
	if useColor {
		header = "\x1b[1;31m" + header + "\x1b[0m"
	}
	b = append(b, header...)
	b = append(b, '\n')

	first := startLine - contextLines
	if first < 1 {
		first = 1
	}
	last := endLine + contextLines
	if last > len(f.lineOffsets) {
		last = len(f.lineOffsets)
	}
	for ln := first; ln <= last; ln++ {
		line := f.Line(ln)
		b = append(b, []byte(fmt.Sprintf("%5d | %s\n", ln, line))...)
		if ln == startLine {
			width := 1
			if endLine == startLine && int(end) > int(start) {
				width = int(end - start)
			}
			mark := "^"
			if useColor {
				mark = "\x1b[1;31m^\x1b[0m"
			}
			b = append(b, []byte(fmt.Sprintf("%8s", ""))...)
			for col := 1; col < startCol; col++ {
				b = append(b, ' ')
			}
			for i := 0; i < width; i++ {
				b = append(b, []byte(mark)...)
			}
			b = append(b, '\n')
		}
	}
	return string(b)
}
