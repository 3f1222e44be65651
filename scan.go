package uhdrsplit

import "encoding/binary"

// Segment is a contiguous byte range of the stream tagged with its marker.
// For SOS the range covers the scan header and the entropy-coded data after it.
type Segment struct {
	Marker Marker `json:"marker"`
	Offset int    `json:"offset"`
	End    int    `json:"end"`
	// Length is the value of the length field, zero for SOI and EOI.
	Length int `json:"length,omitempty"`
}

// Len returns the number of bytes in the segment.
func (s Segment) Len() int {
	return s.End - s.Offset
}

// Payload returns the bytes covered by the length field, excluding the field itself.
func (s Segment) Payload(data []byte) []byte {
	if s.Length < 2 {
		return nil
	}
	return data[s.Offset+4 : s.Offset+2+s.Length]
}

// SubImage is a [Start, End) range from a SOI marker through its EOI marker inclusive.
type SubImage struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the size of the image in bytes.
func (r SubImage) Len() int {
	return r.End - r.Start
}

// Payload is an APP segment payload located at Offset (the marker position).
type Payload struct {
	Offset int
	Data   []byte
}

// ScanOptions controls the segment scanner.
type ScanOptions struct {
	// LegacyEntropyScan ends scan data at the first 0xFFD9 byte pair regardless
	// of byte stuffing or intervening markers.
	LegacyEntropyScan bool
}

// ScanResult holds the segments of a stream and what was derived from them.
type ScanResult struct {
	Segments []Segment
	Images   []SubImage
	// APP1 payloads are sub-slices of the scanned buffer.
	APP1 []Payload
}

// Scan walks data as a sequence of JPEG marker segments.
//
// Every EOI marker closes a sub-image that started right after the previous
// one (or at offset 0). Any error is fatal and no partial result is returned.
func Scan(data []byte, opts ...func(o *ScanOptions)) (*ScanResult, error) {
	var o ScanOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := scanner{data: data, legacy: o.LegacyEntropyScan}
	res := &ScanResult{}
	start := 0
	for s.pos < len(data) {
		seg, err := s.next()
		if err != nil {
			return nil, err
		}
		res.Segments = append(res.Segments, seg)
		switch seg.Marker {
		case MarkerEOI:
			res.Images = append(res.Images, SubImage{Start: start, End: seg.End})
			start = seg.End
		case MarkerAPP1:
			res.APP1 = append(res.APP1, Payload{Offset: seg.Offset, Data: seg.Payload(data)})
		}
	}
	return res, nil
}

type scanner struct {
	data   []byte
	pos    int
	legacy bool
}

func (s *scanner) next() (Segment, error) {
	start := s.pos
	if start+2 > len(s.data) {
		return Segment{}, &ScanError{Offset: start, Err: ErrTruncatedStream}
	}
	m := Marker(binary.BigEndian.Uint16(s.data[start:]))
	if !m.Valid() {
		return Segment{}, &ScanError{Offset: start, Marker: m, Err: ErrMalformedStream}
	}
	s.pos += 2

	seg := Segment{Marker: m, Offset: start}
	if m.HasLength() {
		if s.pos+2 > len(s.data) {
			return Segment{}, &ScanError{Offset: start, Marker: m, Err: ErrTruncatedStream}
		}
		n := int(binary.BigEndian.Uint16(s.data[s.pos:]))
		if n < 2 {
			return Segment{}, &ScanError{Offset: start, Marker: m, Err: ErrMalformedStream}
		}
		if s.pos+n > len(s.data) {
			return Segment{}, &ScanError{Offset: start, Marker: m, Err: ErrTruncatedStream}
		}
		s.pos += n
		seg.Length = n
	}

	if m == MarkerSOS {
		skip := s.skipEntropyData
		if s.legacy {
			skip = s.skipToEOIPattern
		}
		if !skip() {
			return Segment{}, &ScanError{Offset: start, Marker: m, Err: ErrTruncatedStream}
		}
	}

	seg.End = s.pos
	return seg, nil
}

// skipEntropyData advances to the first marker that ends the scan data.
// Stuffed 0xFF00, restart markers and 0xFF fill bytes belong to the scan.
func (s *scanner) skipEntropyData() bool {
	d := s.data
	for i := s.pos; i+1 < len(d); i++ {
		if d[i] != markerStart {
			continue
		}
		switch b := d[i+1]; {
		case b == 0x00 || isRST(b):
			i++
		case b == markerStart:
		default:
			s.pos = i
			return true
		}
	}
	return false
}

// skipToEOIPattern advances to the first 0xFFD9 byte pair, wherever it is.
func (s *scanner) skipToEOIPattern() bool {
	var window uint16
	for i := s.pos; i < len(s.data); i++ {
		window = window<<8 | uint16(s.data[i])
		if Marker(window) == MarkerEOI {
			s.pos = i - 1
			return true
		}
	}
	return false
}
