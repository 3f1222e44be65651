package uhdrsplit

// EventKind identifies what an Event reports.
type EventKind int

// Event kinds. Offset is a byte position in the scanned buffer for every kind
// except EventFileWritten, which carries Path and the written Length instead.
const (
	// EventSegment reports a marker segment: Marker, Offset and Length in bytes.
	EventSegment EventKind = iota + 1
	// EventImage reports a sub-image: 1-based Index, Offset and Length.
	EventImage
	// EventMetadata reports a parsed hdrgm record at the APP1 Offset, with its Index.
	EventMetadata
	// EventMetadataSkipped reports an XMP APP1 segment whose record failed to parse, with Err.
	EventMetadataSkipped
	// EventMPFMismatch reports an unreadable MPF segment (Err set) or declared
	// ranges that disagree with the scan (secondary Offset and Length).
	EventMPFMismatch
	// EventFileWritten reports an output file: Path, Index and Length.
	EventFileWritten
)

func (k EventKind) String() string {
	switch k {
	case EventSegment:
		return "segment"
	case EventImage:
		return "image"
	case EventMetadata:
		return "metadata"
	case EventMetadataSkipped:
		return "metadata skipped"
	case EventMPFMismatch:
		return "mpf mismatch"
	case EventFileWritten:
		return "file written"
	default:
		return "unknown"
	}
}

// Event is one step of splitting a file, in file order.
// Split never prints; callers decide how to report events.
type Event struct {
	Kind   EventKind
	Offset int
	Length int
	Marker Marker
	// Index is the 1-based image or metadata record number.
	Index int
	// Path is set by callers for EventFileWritten.
	Path string
	// Err is the reason for EventMetadataSkipped.
	Err error
}
