package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
)

// Load reads a file from disk and normalizes its encoding and line endings.
func Load(path string) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newFile(path, content, 0)
}

// FromBytes builds a virtual file from in-memory content, e.g. stdin.
func FromBytes(name string, content []byte) (*File, error) {
	return newFile(name, content, FileVirtual)
}

func newFile(path string, raw []byte, flags FileFlags) (*File, error) {
	if err := checkSize(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	content, decFlags, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: decode: %w", path, err)
	}
	flags |= decFlags
	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	if err := checkSize(content); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(raw),
		Flags:   flags,
	}, nil
}

func checkSize(b []byte) error {
	if _, err := safecast.Conv[uint32](len(b)); err != nil {
		return fmt.Errorf("file too large: %w", err)
	}
	return nil
}

// Position converts a byte offset into the normalized content to a line and
// column. Offsets past the end clamp to the end of the file.
func (f *File) Position(off int) LineCol {
	off = min(max(off, 0), len(f.Content))
	u, err := safecast.Conv[uint32](off)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return toLineCol(f.LineIdx, u)
}

// Normalized reports whether loading changed the bytes beyond decoding, so a
// rewrite is due even when formatting leaves the text as is.
func (f *File) Normalized() bool {
	return f.Flags&(FileHadBOM|FileNormalizedCRLF|FileUTF16) != 0
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	lines, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	if lineNum > lines+1 {
		return ""
	}

	var start uint32
	if lineNum > 1 {
		start = f.LineIdx[lineNum-2] + 1
	}
	end := uint32(len(f.Content)) // #nosec G115 -- bounded by checkSize
	if lineNum <= lines {
		end = f.LineIdx[lineNum-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// FormatPath форматирует путь к файлу в зависимости от режима.
func (f *File) FormatPath(mode, baseDir string) string {
	return DisplayPath(f.Path, mode, baseDir)
}

// DisplayPath renders path for output.
// mode: "absolute", "relative", "basename", "auto"; anything else keeps path as is.
func DisplayPath(path, mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(path); err == nil {
			return abs
		}
		return path
	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(path, baseDir); err == nil {
			return rel
		}
		return path
	case "basename":
		return BaseName(path)
	case "auto":
		// короткий или относительный путь - как есть
		if len(path) < 40 || !filepath.IsAbs(path) {
			return path
		}
		return BaseName(path)
	default:
		return path
	}
}

// AbsolutePath returns the cleaned absolute form of path with forward slashes.
func AbsolutePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return normalizePath(abs), nil
}

// RelativePath returns path relative to baseDir. Paths that would escape
// baseDir come back absolute instead of as a chain of "..".
func RelativePath(path, baseDir string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(abs), nil
	}
	return normalizePath(rel), nil
}

// BaseName returns the last element of path.
func BaseName(path string) string {
	return filepath.Base(path)
}
