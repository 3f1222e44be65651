package uhdrsplit

import (
	"encoding/binary"
	"fmt"
)

// segment encodes a length-prefixed marker segment.
func segment(m Marker, payload []byte) []byte {
	b := make([]byte, 4, 4+len(payload))
	binary.BigEndian.PutUint16(b, uint16(m))
	binary.BigEndian.PutUint16(b[2:], uint16(len(payload)+2))
	return append(b, payload...)
}

// scanHeader is a single-component SOS header.
var scanHeader = []byte{1, 1, 0, 0, 63, 0}

// jpegImage assembles SOI, the given segments, one scan over entropy and EOI.
func jpegImage(entropy []byte, segments ...[]byte) []byte {
	b := []byte{0xFF, 0xD8}
	for _, s := range segments {
		b = append(b, s...)
	}
	b = append(b, segment(MarkerDQT, make([]byte, 65))...)
	b = append(b, segment(MarkerSOS, scanHeader)...)
	b = append(b, entropy...)
	return append(b, 0xFF, 0xD9)
}

func xmpSegment(text string) []byte {
	return segment(MarkerAPP1, []byte(xmpNamespace+"\x00"+text))
}

func hdrgmXMP(attrs string) string {
	return fmt.Sprintf(`<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:hdrgm="http://ns.adobe.com/hdr-gain-map/1.0/"
   %s/>
 </rdf:RDF>
</x:xmpmeta>`, attrs)
}

const minimalHDRGM = `hdrgm:Version="1.0" hdrgm:GainMapMax="2.5" hdrgm:HDRCapacityMax="2.5"`

// mpfSegment encodes a big-endian MPF APP2 segment declaring two images.
// secondaryOffset is relative to the TIFF header, as stored in files.
func mpfSegment(primarySize, secondarySize, secondaryOffset int) []byte {
	be := binary.BigEndian
	tiff := []byte{'M', 'M', 0x00, 0x2A, 0, 0, 0, 8}

	ifd := make([]byte, 2+12+4)
	be.PutUint16(ifd, 1)
	be.PutUint16(ifd[2:], mpfEntryTag)
	be.PutUint16(ifd[4:], mpfTypeUndefined)
	be.PutUint32(ifd[6:], 2*mpfEntrySize)
	be.PutUint32(ifd[10:], uint32(8+len(ifd)))
	tiff = append(tiff, ifd...)

	entries := make([]byte, 2*mpfEntrySize)
	be.PutUint32(entries, 0x20030000)
	be.PutUint32(entries[4:], uint32(primarySize))
	be.PutUint32(entries[mpfEntrySize+4:], uint32(secondarySize))
	be.PutUint32(entries[mpfEntrySize+8:], uint32(secondaryOffset))
	tiff = append(tiff, entries...)

	return segment(MarkerAPP2, append(append([]byte(nil), mpfSig...), tiff...))
}

// ultraHDR builds a two-image file with hdrgm metadata in the gain map header
// and, when withMPF is set, a matching MPF segment in the primary.
func ultraHDR(withMPF bool) []byte {
	gainmap := jpegImage([]byte{0x11, 0xFF, 0x00, 0x22}, xmpSegment(hdrgmXMP(minimalHDRGM)))

	primarySegs := [][]byte{xmpSegment(hdrgmXMP(`hdrgm:Version="1.0"`))}
	if !withMPF {
		return append(jpegImage([]byte{0x01, 0x02, 0x03}, primarySegs...), gainmap...)
	}

	// The MPF segment has a fixed size, so encode once to learn the layout.
	probe := mpfSegment(0, 0, 0)
	primaryLen := len(jpegImage([]byte{0x01, 0x02, 0x03}, append(primarySegs, probe)...))
	mpfStart := 2 + len(primarySegs[0])
	tiffStart := mpfStart + 4 + len(mpfSig)
	mpf := mpfSegment(primaryLen, len(gainmap), primaryLen-tiffStart)

	primary := jpegImage([]byte{0x01, 0x02, 0x03}, append(primarySegs, mpf)...)
	return append(primary, gainmap...)
}
