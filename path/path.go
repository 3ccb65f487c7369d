// Package path implements Tomo's Path value type (§4.8): an immutable,
// tagged-union filesystem path (relative, absolute, or home-relative)
// plus the file operations the standard library exposes on it. `~`
// is late-bound to $HOME at resolve time rather than at parse time,
// so a Path value built before HOME is known (or in a different
// process) still resolves correctly.
package path

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/edsrzf/mmap-go"
	"github.com/google/uuid"
)

// Kind distinguishes the three root forms a Path literal can have
// (§4.7 "Path literal sublanguage": `(~/...)`, `(./...)`, `(../...)`,
// `(/...)`).
type Kind int

const (
	KindRelative Kind = iota
	KindAbsolute
	KindHome
)

// Path is a normalized sequence of path components plus the root kind
// they're relative to. Components never include "." and collapse ".."
// against a preceding real component where possible, the way
// builtins/path.c's normalization does.
type Path struct {
	Kind       Kind
	Components []string
}

// Parse builds a Path from a literal path string, normalizing `.`
// and `..` components (§4.8 "normalization").
func Parse(s string) Path {
	var kind Kind
	switch {
	case strings.HasPrefix(s, "~/") || s == "~":
		kind = KindHome
		s = strings.TrimPrefix(s, "~")
		s = strings.TrimPrefix(s, "/")
	case strings.HasPrefix(s, "/"):
		kind = KindAbsolute
		s = strings.TrimPrefix(s, "/")
	default:
		kind = KindRelative
		s = strings.TrimPrefix(s, "./")
	}
	var components []string
	for _, part := range strings.Split(s, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(components) > 0 && components[len(components)-1] != ".." {
				components = components[:len(components)-1]
			} else if kind == KindRelative {
				components = append(components, "..")
			}
		default:
			components = append(components, part)
		}
	}
	return Path{Kind: kind, Components: components}
}

// Resolved converts p to an absolute, `~`-expanded native path string
// at call time (late binding of `~`, §4.8).
func (p Path) Resolved() (string, error) {
	switch p.Kind {
	case KindHome:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(append([]string{home}, p.Components...)...), nil
	case KindAbsolute:
		return "/" + strings.Join(p.Components, "/"), nil
	default:
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(append([]string{wd}, p.Components...)...), nil
	}
}

// String renders p back to Tomo path-literal syntax.
func (p Path) String() string {
	var prefix string
	switch p.Kind {
	case KindHome:
		prefix = "~/"
	case KindAbsolute:
		prefix = "/"
	default:
		prefix = "./"
	}
	return prefix + strings.Join(p.Components, "/")
}

// Concat appends other's components to p's, keeping p's root kind
// (§4.8 "concat").
func (p Path) Concat(other Path) Path {
	return Path{Kind: p.Kind, Components: append(append([]string{}, p.Components...), other.Components...)}
}

// RelativeTo computes p expressed relative to base, both resolved
// first (§4.8 "relative_to").
func (p Path) RelativeTo(base Path) (Path, error) {
	pr, err := p.Resolved()
	if err != nil {
		return Path{}, err
	}
	br, err := base.Resolved()
	if err != nil {
		return Path{}, err
	}
	rel, err := filepath.Rel(br, pr)
	if err != nil {
		return Path{}, err
	}
	return Parse("./" + rel), nil
}

// Parent returns p with its last component removed.
func (p Path) Parent() Path {
	if len(p.Components) == 0 {
		return p
	}
	return Path{Kind: p.Kind, Components: p.Components[:len(p.Components)-1]}
}

func (p Path) BaseName() string {
	if len(p.Components) == 0 {
		return ""
	}
	return p.Components[len(p.Components)-1]
}

func (p Path) Extension() string {
	base := p.BaseName()
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}

func (p Path) WithComponent(name string) Path {
	return Path{Kind: p.Kind, Components: append(append([]string{}, p.Components...), name)}
}

func (p Path) WithExtension(ext string) Path {
	if len(p.Components) == 0 {
		return p
	}
	base := p.BaseName()
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	newComponents := append([]string{}, p.Components[:len(p.Components)-1]...)
	newComponents = append(newComponents, base+"."+ext)
	return Path{Kind: p.Kind, Components: newComponents}
}

// ---- filesystem operations ----

func (p Path) Exists() bool {
	r, err := p.Resolved()
	if err != nil {
		return false
	}
	_, err = os.Stat(r)
	return err == nil
}

func (p Path) IsFile() bool {
	info, err := p.stat()
	return err == nil && !info.IsDir()
}

func (p Path) IsDirectory() bool {
	info, err := p.stat()
	return err == nil && info.IsDir()
}

func (p Path) stat() (fs.FileInfo, error) {
	r, err := p.Resolved()
	if err != nil {
		return nil, err
	}
	return os.Stat(r)
}

func (p Path) CanRead() bool    { return p.checkAccess(0o4) }
func (p Path) CanWrite() bool   { return p.checkAccess(0o2) }
func (p Path) CanExecute() bool { return p.checkAccess(0o1) }

func (p Path) checkAccess(bit os.FileMode) bool {
	r, err := p.Resolved()
	if err != nil {
		return false
	}
	return syscall.Access(r, uint32(bit)) == nil
}

// IsSymlink reports whether the path itself (not its target) is a
// symbolic link, so it must Lstat rather than Stat like the other
// Is* predicates.
func (p Path) IsSymlink() bool {
	r, err := p.Resolved()
	if err != nil {
		return false
	}
	info, err := os.Lstat(r)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func (p Path) IsPipe() bool   { return p.hasMode(os.ModeNamedPipe) }
func (p Path) IsSocket() bool { return p.hasMode(os.ModeSocket) }

func (p Path) hasMode(bit os.FileMode) bool {
	info, err := p.stat()
	return err == nil && info.Mode()&bit != 0
}

func (p Path) Modified() (int64, error) {
	info, err := p.stat()
	if err != nil {
		return 0, err
	}
	return info.ModTime().Unix(), nil
}

// Accessed and Changed read the platform stat_t's atim/ctim fields,
// which os.FileInfo doesn't expose directly (§4.8 "accessed",
// "changed" alongside "modified").
func (p Path) Accessed() (int64, error) {
	st, err := p.sysStat()
	if err != nil {
		return 0, err
	}
	return st.Atim.Sec, nil
}

func (p Path) Changed() (int64, error) {
	st, err := p.sysStat()
	if err != nil {
		return 0, err
	}
	return st.Ctim.Sec, nil
}

func (p Path) sysStat() (*syscall.Stat_t, error) {
	info, err := p.stat()
	if err != nil {
		return nil, err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("path: stat_t unavailable on this platform")
	}
	return st, nil
}

// Read mmaps the file read-only and returns its contents, avoiding a
// full read()-syscall copy for large files (§5 "file reads should use
// mmap where the platform supports it").
func (p Path) Read() ([]byte, error) {
	r, err := p.Resolved()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		// Fall back to a regular read for filesystems that don't
		// support mmap (e.g. some virtual/network filesystems).
		return io.ReadAll(f)
	}
	defer m.Unmap()
	out := make([]byte, len(m))
	copy(out, m)
	return out, nil
}

// ByLine returns a scanner iterating the file's lines without loading
// the whole file into memory at once.
func (p Path) ByLine() (*bufio.Scanner, func() error, error) {
	r, err := p.Resolved()
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(r)
	if err != nil {
		return nil, nil, err
	}
	return bufio.NewScanner(f), f.Close, nil
}

func (p Path) Write(data []byte) error {
	r, err := p.Resolved()
	if err != nil {
		return err
	}
	return os.WriteFile(r, data, 0o644)
}

func (p Path) Append(data []byte) error {
	r, err := p.Resolved()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(r, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

// WriteUnique writes data to a freshly-generated unique filename in
// p's parent directory and returns the Path actually written to
// (§4.8 "write_unique"), using a UUID rather than a PID+timestamp
// scheme to avoid collisions across machines/containers.
func (p Path) WriteUnique(data []byte) (Path, error) {
	name := fmt.Sprintf("%s.%s", p.BaseName(), uuid.New().String())
	target := p.Parent().WithComponent(name)
	if err := target.Write(data); err != nil {
		return Path{}, err
	}
	return target, nil
}

// UniqueDirectory creates a fresh, empty subdirectory of p and
// returns its Path (§4.8 "unique_directory").
func (p Path) UniqueDirectory() (Path, error) {
	suffix := uuid.New().String()
	dir := p.WithComponent(suffix)
	r, err := dir.Resolved()
	if err != nil {
		return Path{}, err
	}
	if err := os.MkdirAll(r, 0o755); err != nil {
		return Path{}, err
	}
	return dir, nil
}

func (p Path) CreateDirectory() error {
	r, err := p.Resolved()
	if err != nil {
		return err
	}
	return os.MkdirAll(r, 0o755)
}

func (p Path) Remove() error {
	r, err := p.Resolved()
	if err != nil {
		return err
	}
	return os.RemoveAll(r)
}

// Children, Files, Subdirectories list p's directory entries, filtered
// by kind for the latter two (§4.8).
func (p Path) Children() ([]Path, error) {
	r, err := p.Resolved()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r)
	if err != nil {
		return nil, err
	}
	out := make([]Path, 0, len(entries))
	for _, e := range entries {
		out = append(out, p.WithComponent(e.Name()))
	}
	return out, nil
}

func (p Path) Files() ([]Path, error) {
	children, err := p.Children()
	if err != nil {
		return nil, err
	}
	var out []Path
	for _, c := range children {
		if c.IsFile() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p Path) Subdirectories() ([]Path, error) {
	children, err := p.Children()
	if err != nil {
		return nil, err
	}
	var out []Path
	for _, c := range children {
		if c.IsDirectory() {
			out = append(out, c)
		}
	}
	return out, nil
}

// Glob expands a brace-alternative pattern rooted at p (e.g.
// `*.{tm,md}`) into matching paths, supplementing filepath.Glob (which
// has no brace-expansion) with the behavior
// original_source/builtins/path.c's Path$glob implements.
func (p Path) Glob(pattern string) ([]Path, error) {
	root, err := p.Resolved()
	if err != nil {
		return nil, err
	}
	var out []Path
	for _, expanded := range expandBraces(pattern) {
		matches, err := filepath.Glob(filepath.Join(root, expanded))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			rel, err := filepath.Rel(root, m)
			if err != nil {
				continue
			}
			out = append(out, p.WithComponent(rel))
		}
	}
	return out, nil
}

// expandBraces expands one level of `{a,b,c}` alternation in pattern,
// e.g. "*.{tm,md}" -> ["*.tm", "*.md"]. Nested braces aren't
// supported, matching the original's single-level brace expander.
func expandBraces(pattern string) []string {
	start := strings.IndexByte(pattern, '{')
	if start < 0 {
		return []string{pattern}
	}
	end := strings.IndexByte(pattern[start:], '}')
	if end < 0 {
		return []string{pattern}
	}
	end += start
	prefix, suffix := pattern[:start], pattern[end+1:]
	alts := strings.Split(pattern[start+1:end], ",")
	out := make([]string, 0, len(alts))
	for _, alt := range alts {
		out = append(out, prefix+alt+suffix)
	}
	return out
}
