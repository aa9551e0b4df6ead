package source

type (
	// FileFlags encodes metadata about a source file.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the file was read from memory (stdin, tests).
	FileVirtual FileFlags = 1 << iota // не с диска
	FileHadBOM
	FileNormalizedCRLF
	// FileUTF16 indicates the file was decoded from UTF-16 into UTF-8.
	FileUTF16
)

// File captures the content of a single source file as the formatter sees it:
// UTF-8, without a byte order mark and with LF line endings.
type File struct {
	Path    string
	Content []byte
	LineIdx []uint32
	// Hash is the SHA-256 of the bytes as read, before any normalization.
	Hash  [32]byte
	Flags FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
