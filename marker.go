package uhdrsplit

import "fmt"

// Marker is a 16-bit big-endian JPEG marker code, 0xFF followed by the marker byte.
type Marker uint16

const (
	// Marker bytes as they appear in the stream.
	markerStart = 0xFF
	markerSOI   = 0xD8
	markerRST0  = 0xD0
	markerRST7  = 0xD7

	// MarkerMin is the lowest code accepted at a marker position.
	MarkerMin Marker = 0xFFC0

	MarkerSOF0 Marker = 0xFFC0 // SOFn = SOF0+n, n = 0-15 excluding 4, 8 and 12
	MarkerDHT  Marker = 0xFFC4
	MarkerJPG  Marker = 0xFFC8
	MarkerDAC  Marker = 0xFFCC
	MarkerRST0 Marker = 0xFFD0 // RSTn = RST0+n, n = 0-7
	MarkerRST7 Marker = 0xFFD7
	MarkerSOI  Marker = 0xFFD8
	MarkerEOI  Marker = 0xFFD9
	MarkerSOS  Marker = 0xFFDA
	MarkerDQT  Marker = 0xFFDB
	MarkerDNL  Marker = 0xFFDC
	MarkerDRI  Marker = 0xFFDD
	MarkerDHP  Marker = 0xFFDE
	MarkerEXP  Marker = 0xFFDF
	MarkerAPP0 Marker = 0xFFE0 // APPn = APP0+n, n = 0-15
	MarkerAPP1 Marker = 0xFFE1
	MarkerAPP2 Marker = 0xFFE2
	MarkerJPG0 Marker = 0xFFF0 // JPGn = JPG0+n, n = 0-13
	MarkerCOM  Marker = 0xFFFE
	MarkerFill Marker = 0xFFFF
)

var markerNames = map[Marker]string{
	MarkerDHT:  "DHT",
	MarkerJPG:  "JPG",
	MarkerDAC:  "DAC",
	MarkerSOI:  "SOI",
	MarkerEOI:  "EOI",
	MarkerSOS:  "SOS",
	MarkerDQT:  "DQT",
	MarkerDNL:  "DNL",
	MarkerDRI:  "DRI",
	MarkerDHP:  "DHP",
	MarkerEXP:  "EXP",
	MarkerCOM:  "COM",
	MarkerFill: "FILL",
}

func init() {
	for m := MarkerSOF0; m <= MarkerSOF0+0xF; m++ {
		if m == MarkerDHT || m == MarkerJPG || m == MarkerDAC {
			continue
		}
		markerNames[m] = fmt.Sprintf("SOF%d", m-MarkerSOF0)
	}
	for m := MarkerRST0; m <= MarkerRST7; m++ {
		markerNames[m] = fmt.Sprintf("RST%d", m-MarkerRST0)
	}
	for m := MarkerAPP0; m <= MarkerAPP0+0xF; m++ {
		markerNames[m] = fmt.Sprintf("APP%d", m-MarkerAPP0)
	}
	for m := MarkerJPG0; m <= MarkerJPG0+0xD; m++ {
		markerNames[m] = fmt.Sprintf("JPG%d", m-MarkerJPG0)
	}
}

// Name returns the conventional name of the marker, or its hex code if unnamed.
func (m Marker) Name() string {
	if n, ok := markerNames[m]; ok {
		return n
	}
	return fmt.Sprintf("%04X", uint16(m))
}

func (m Marker) String() string {
	return m.Name()
}

// MarshalText renders the marker by name.
func (m Marker) MarshalText() ([]byte, error) {
	return []byte(m.Name()), nil
}

// Valid reports whether m may appear at a marker position.
func (m Marker) Valid() bool {
	return m>>8 == markerStart && m >= MarkerMin
}

// HasLength reports whether the marker is followed by a 2-byte length field.
// Only SOI and EOI are standalone at a marker position.
func (m Marker) HasLength() bool {
	return m != MarkerSOI && m != MarkerEOI
}

// isRST reports whether b is the second byte of a restart marker.
func isRST(b byte) bool {
	return b >= markerRST0 && b <= markerRST7
}
