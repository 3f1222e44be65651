package uhdrsplit

import (
	"bytes"
	"errors"
	"testing"
)

func TestScanMinimalImages(t *testing.T) {
	res, err := Scan([]byte{0xFF, 0xD8, 0xFF, 0xD9, 0xFF, 0xD8, 0xFF, 0xD9})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []SubImage{{Start: 0, End: 4}, {Start: 4, End: 8}}
	if len(res.Images) != len(want) {
		t.Fatalf("images: got %v, want %v", res.Images, want)
	}
	for i := range want {
		if res.Images[i] != want[i] {
			t.Fatalf("image %d: got %v, want %v", i, res.Images[i], want[i])
		}
	}
	if len(res.Segments) != 4 {
		t.Fatalf("segments: got %d, want 4", len(res.Segments))
	}
}

func TestScanPartitionsBuffer(t *testing.T) {
	data := append(jpegImage([]byte{0x10, 0xFF, 0x00, 0x20, 0xFF, 0xD3, 0x30},
		segment(MarkerAPP0, []byte("JFIF\x00\x01\x02")),
		xmpSegment("hello"),
		segment(MarkerCOM, []byte("comment")),
	), jpegImage([]byte{0x40}, xmpSegment("world"))...)

	res, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var joined []byte
	pos := 0
	for _, img := range res.Images {
		if img.Start != pos {
			t.Fatalf("gap or overlap at %d: %v", pos, img)
		}
		joined = append(joined, data[img.Start:img.End]...)
		pos = img.End
	}
	if !bytes.Equal(joined, data) {
		t.Fatalf("images do not concatenate to the input")
	}

	pos = 0
	for _, seg := range res.Segments {
		if seg.Offset != pos {
			t.Fatalf("segment %s at %d, want %d", seg.Marker, seg.Offset, pos)
		}
		pos = seg.End
	}
	if pos != len(data) {
		t.Fatalf("segments end at %d, want %d", pos, len(data))
	}

	if len(res.APP1) != 2 {
		t.Fatalf("APP1 payloads: got %d, want 2", len(res.APP1))
	}
	if got := string(res.APP1[1].Data); got != xmpNamespace+"\x00world" {
		t.Fatalf("unexpected APP1 payload %q", got)
	}
}

func TestScanErrors(t *testing.T) {
	cases := []struct {
		name   string
		data   []byte
		err    error
		offset int
	}{
		{name: "not a marker", data: []byte{0x12, 0x34}, err: ErrMalformedStream, offset: 0},
		{name: "marker below FFC0", data: []byte{0xFF, 0xD8, 0xFF, 0x10}, err: ErrMalformedStream, offset: 2},
		{name: "trailing garbage", data: []byte{0xFF, 0xD8, 0xFF, 0xD9, 0x00, 0x00}, err: ErrMalformedStream, offset: 4},
		{name: "length below two", data: []byte{0xFF, 0xD8, 0xFF, 0xFE, 0x00, 0x01}, err: ErrMalformedStream, offset: 2},
		{name: "single trailing byte", data: []byte{0xFF, 0xD8, 0xFF}, err: ErrTruncatedStream, offset: 2},
		{name: "missing length", data: []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00}, err: ErrTruncatedStream, offset: 2},
		{name: "length past end", data: []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00, 0x10, 0x01, 0x02}, err: ErrTruncatedStream, offset: 2},
		{
			name:   "scan data without end",
			data:   append([]byte{0xFF, 0xD8}, append(segment(MarkerSOS, scanHeader), 0x01, 0xFF, 0x00, 0x02)...),
			err:    ErrTruncatedStream,
			offset: 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Scan(tc.data)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			if res != nil {
				t.Fatalf("expected no partial result, got %+v", res)
			}
			var se *ScanError
			if !errors.As(err, &se) {
				t.Fatalf("expected *ScanError, got %T", err)
			}
			if se.Offset != tc.offset {
				t.Fatalf("offset: got %#x, want %#x", se.Offset, tc.offset)
			}
		})
	}
}

func TestScanEntropyData(t *testing.T) {
	// Stuffed bytes, a restart marker and fill bytes belong to the scan.
	entropy := []byte{0x01, 0xFF, 0x00, 0x02, 0xFF, 0xD3, 0x03, 0xFF, 0xFF}
	data := jpegImage(entropy)

	res, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Images) != 1 {
		t.Fatalf("images: got %d, want 1", len(res.Images))
	}

	var sos Segment
	for _, seg := range res.Segments {
		if seg.Marker == MarkerRST0+3 {
			t.Fatalf("restart marker reported as a segment")
		}
		if seg.Marker == MarkerSOS {
			sos = seg
		}
	}
	if want := len(data) - 2; sos.End != want {
		t.Fatalf("scan ends at %d, want %d", sos.End, want)
	}
	if sos.Length != 2+len(scanHeader) {
		t.Fatalf("scan header length: got %d", sos.Length)
	}
}

func TestScanProgressive(t *testing.T) {
	// Two scans separated by a DHT and a comment whose payload ends in FF D9.
	b := []byte{0xFF, 0xD8}
	b = append(b, segment(MarkerSOS, scanHeader)...)
	b = append(b, 0x01, 0x02)
	b = append(b, segment(MarkerDHT, []byte{0x00, 0x01})...)
	b = append(b, segment(MarkerCOM, []byte{'a', 'b', 0xFF, 0xD9})...)
	b = append(b, segment(MarkerSOS, scanHeader)...)
	b = append(b, 0x03, 0x04)
	b = append(b, 0xFF, 0xD9)

	res, err := Scan(b)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Images) != 1 || res.Images[0] != (SubImage{Start: 0, End: len(b)}) {
		t.Fatalf("default scan: got %v", res.Images)
	}
	scans := 0
	for _, seg := range res.Segments {
		if seg.Marker == MarkerSOS {
			scans++
		}
	}
	if scans != 2 {
		t.Fatalf("expected 2 scans, got %d", scans)
	}

	legacy, err := Scan(b, func(o *ScanOptions) { o.LegacyEntropyScan = true })
	if err != nil {
		t.Fatalf("legacy Scan: %v", err)
	}
	if len(legacy.Images) != 2 {
		t.Fatalf("legacy scan should stop at the comment's FF D9, got %v", legacy.Images)
	}
}

func TestScanLegacyStuffing(t *testing.T) {
	data := jpegImage([]byte{0x01, 0xFF, 0x00, 0x02})
	res, err := Scan(data, func(o *ScanOptions) { o.LegacyEntropyScan = true })
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Images) != 1 || res.Images[0].End != len(data) {
		t.Fatalf("unexpected images %v", res.Images)
	}
}

func TestScanEmpty(t *testing.T) {
	res, err := Scan(nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Images) != 0 || len(res.Segments) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestMarkerName(t *testing.T) {
	cases := map[Marker]string{
		MarkerSOI:       "SOI",
		MarkerSOF0 + 2:  "SOF2",
		MarkerDHT:       "DHT",
		MarkerRST0 + 5:  "RST5",
		MarkerAPP1:      "APP1",
		MarkerAPP0 + 14: "APP14",
		MarkerCOM:       "COM",
		Marker(0x1234):  "1234",
	}
	for m, want := range cases {
		if got := m.Name(); got != want {
			t.Errorf("%#04x: got %q, want %q", uint16(m), got, want)
		}
	}
	if MarkerSOI.HasLength() || MarkerEOI.HasLength() || !MarkerSOS.HasLength() {
		t.Fatalf("unexpected length classification")
	}
	if Marker(0xFF10).Valid() || !MarkerCOM.Valid() {
		t.Fatalf("unexpected validity")
	}
}

func TestMarkerBytes(t *testing.T) {
	if Marker(markerStart)<<8|markerSOI != MarkerSOI ||
		Marker(markerStart)<<8|markerRST0 != MarkerRST0 ||
		Marker(markerStart)<<8|markerRST7 != MarkerRST7 {
		t.Fatalf("marker bytes disagree with marker codes")
	}

	for b := 0; b <= 0xFF; b++ {
		m := Marker(markerStart)<<8 | Marker(b)
		want := m >= MarkerRST0 && m <= MarkerRST7
		if got := isRST(byte(b)); got != want {
			t.Fatalf("isRST(%#02x) = %v, want %v", b, got, want)
		}
	}
}
