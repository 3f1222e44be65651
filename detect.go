package uhdrsplit

import (
	"bufio"
	"errors"
	"io"
)

// IsUltraHDR performs a streaming UltraHDR check without loading the full image.
// It skips the base image, then looks for an XMP APP1 segment in the gain map
// header that parses as hdrgm metadata.
func IsUltraHDR(r io.Reader) (bool, error) {
	br := bufio.NewReader(r)
	found, err := findSOI(br)
	if err != nil || !found {
		return false, err
	}
	if err := skipImage(br); err != nil {
		return false, err
	}
	found, err = findSOI(br)
	if err != nil || !found {
		return false, err
	}
	return checkGainmapHeader(br)
}

func findSOI(br *bufio.Reader) (bool, error) {
	var prev byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		if prev == markerStart && b == markerSOI {
			return true, nil
		}
		prev = b
	}
}

// skipImage consumes segments up to and including EOI.
func skipImage(br *bufio.Reader) error {
	m, err := readMarker(br)
	for err == nil {
		switch m {
		case MarkerEOI:
			return nil
		case MarkerSOI:
			m, err = readMarker(br)
		case MarkerSOS:
			if err = discardSegment(br); err == nil {
				m, err = skipEntropyData(br)
			}
		default:
			if err = discardSegment(br); err == nil {
				m, err = readMarker(br)
			}
		}
	}
	return err
}

func checkGainmapHeader(br *bufio.Reader) (bool, error) {
	for {
		m, err := readMarker(br)
		if err != nil {
			return false, err
		}
		switch m {
		case MarkerEOI, MarkerSOS:
			return false, nil
		case MarkerAPP1:
			payload, err := readSegment(br)
			if err != nil {
				return false, err
			}
			if _, err := parseAPP1(payload); err == nil {
				return true, nil
			}
		default:
			if err := discardSegment(br); err != nil {
				return false, err
			}
		}
	}
}

func readMarker(br *bufio.Reader) (Marker, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != markerStart {
			continue
		}
		for {
			m, err := br.ReadByte()
			if err != nil {
				return 0, err
			}
			if m != markerStart {
				return Marker(markerStart)<<8 | Marker(m), nil
			}
		}
	}
}

// skipEntropyData consumes scan data and returns the marker that ends it.
func skipEntropyData(br *bufio.Reader) (Marker, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != markerStart {
			continue
		}
		m, err := br.ReadByte()
		for err == nil && m == markerStart {
			m, err = br.ReadByte()
		}
		if err != nil {
			return 0, err
		}
		if m == 0x00 || isRST(m) {
			continue
		}
		return Marker(markerStart)<<8 | Marker(m), nil
	}
}

func readLength(br *bufio.Reader) (int, error) {
	hi, err := br.ReadByte()
	if err != nil {
		return 0, err
	}
	lo, err := br.ReadByte()
	if err != nil {
		return 0, err
	}
	n := int(hi)<<8 | int(lo)
	if n < 2 {
		return 0, ErrMalformedStream
	}
	return n - 2, nil
}

func discardSegment(br *bufio.Reader) error {
	n, err := readLength(br)
	if err != nil {
		return err
	}
	_, err = br.Discard(n)
	return err
}

func readSegment(br *bufio.Reader) ([]byte, error) {
	n, err := readLength(br)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
