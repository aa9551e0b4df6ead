package source

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadNormalizesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.swift")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("let a = 1\r\nlet b = 2\r\n")...)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := string(f.Content); got != "let a = 1\nlet b = 2\n" {
		t.Fatalf("Content = %q", got)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("Flags = %b, want BOM and CRLF set", f.Flags)
	}
	if f.Flags&FileVirtual != 0 {
		t.Fatal("file loaded from disk flagged virtual")
	}
	if !f.Normalized() {
		t.Fatal("Normalized = false for a file with BOM and CRLF")
	}
	if f.Path != normalizePath(path) {
		t.Fatalf("Path = %q", f.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.swift")); !os.IsNotExist(err) {
		t.Fatalf("Load error = %v, want not-exist", err)
	}
}

func TestFromBytesDecodesUTF16(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
	}{
		{"little endian", []byte{0xFF, 0xFE, 'x', 0, '=', 0, '1', 0}},
		{"big endian", []byte{0xFE, 0xFF, 0, 'x', 0, '=', 0, '1'}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := FromBytes("<stdin>", tc.raw)
			if err != nil {
				t.Fatalf("FromBytes: %v", err)
			}
			if got := string(f.Content); got != "x=1" {
				t.Fatalf("Content = %q, want x=1", got)
			}
			if f.Flags&FileUTF16 == 0 || f.Flags&FileVirtual == 0 {
				t.Fatalf("Flags = %b", f.Flags)
			}
		})
	}
}

func TestFromBytesKeepsPlainUTF8(t *testing.T) {
	raw := []byte("let s = \"héllo\"\r")
	f, err := FromBytes("a.swift", raw)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if !bytes.Equal(f.Content, raw) {
		t.Fatalf("Content = %q, want untouched", f.Content)
	}
	if f.Normalized() {
		t.Fatal("plain UTF-8 reported as normalized")
	}
}

func TestPositionAndGetLine(t *testing.T) {
	f, err := FromBytes("a.swift", []byte("ab\ncd\n\nef"))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	cases := []struct {
		off  int
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{8, LineCol{4, 2}},
		{100, LineCol{4, 3}},
		{-5, LineCol{1, 1}},
	}
	for _, tc := range cases {
		if got := f.Position(tc.off); got != tc.want {
			t.Errorf("Position(%d) = %+v, want %+v", tc.off, got, tc.want)
		}
	}

	lines := map[uint32]string{0: "", 1: "ab", 2: "cd", 3: "", 4: "ef", 5: ""}
	for n, want := range lines {
		if got := f.GetLine(n); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()
	baseDir := filepath.Join(tmp, "base")
	target := filepath.Join(tmp, "other", "file.swift")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := normalizePath(target); got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "nested", "file.swift")

	got, err := RelativePath(target, tmp)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := "nested/file.swift"; got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}

func TestFormatPathModes(t *testing.T) {
	f := &File{Path: "/very/long/absolute/path/that/exceeds/forty/chars/main.swift"}
	if got := f.FormatPath("basename", ""); got != "main.swift" {
		t.Fatalf("basename = %q", got)
	}
	if got := f.FormatPath("auto", ""); got != "main.swift" {
		t.Fatalf("auto = %q", got)
	}
	short := &File{Path: "src/main.swift"}
	if got := short.FormatPath("auto", ""); got != "src/main.swift" {
		t.Fatalf("auto short = %q", got)
	}
	if got := short.FormatPath("unknown", ""); got != short.Path {
		t.Fatalf("default = %q", got)
	}
}

func TestDisplayPathModes(t *testing.T) {
	base := t.TempDir()
	inside := filepath.Join(base, "Sources", "main.swift")
	cases := []struct {
		mode string
		want string
	}{
		{"", inside},
		{"relative", "Sources/main.swift"},
		{"basename", "main.swift"},
		{"absolute", filepath.ToSlash(inside)},
	}
	for _, tc := range cases {
		if got := DisplayPath(inside, tc.mode, base); got != tc.want {
			t.Errorf("DisplayPath(%q) = %q, want %q", tc.mode, got, tc.want)
		}
	}
}
