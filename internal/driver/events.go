package driver

// Status reports what happened to a file.
type Status int

const (
	// StatusQueued means the file was collected and waits for a worker.
	StatusQueued Status = iota
	StatusWorking
	StatusCached
	StatusUnchanged
	StatusChanged
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return "formatting"
	case StatusCached:
		return "cached"
	case StatusUnchanged:
		return "unchanged"
	case StatusChanged:
		return "changed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Done reports whether s is a final status.
func (s Status) Done() bool {
	return s >= StatusCached
}

// Event is a progress notification for one file.
type Event struct {
	File   string
	Status Status
}

// ProgressSink receives events emitted during FormatPaths. It is called from
// worker goroutines and must be safe for concurrent use.
type ProgressSink func(Event)

func (p ProgressSink) emit(file string, status Status) {
	if p != nil {
		p(Event{File: file, Status: status})
	}
}
