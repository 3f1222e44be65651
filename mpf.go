package uhdrsplit

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	mpfEntryTag        = 0xB002
	mpfTypeUndefined   = 0x7
	mpfEntrySize       = 16
	mpfAttrTypePrimary = 0x030000
)

var mpfSig = []byte{'M', 'P', 'F', 0}

// MPFInfo holds the image ranges declared by a Multi-Picture Format APP2 segment.
type MPFInfo struct {
	PrimarySize int `json:"primary_size"`
	// SecondaryOffset is absolute within the scanned buffer.
	SecondaryOffset int `json:"secondary_offset"`
	SecondarySize   int `json:"secondary_size"`
}

// Matches reports whether the declared ranges agree with the scanned images.
func (m MPFInfo) Matches(images []SubImage) bool {
	if len(images) < 2 {
		return false
	}
	return images[0].Len() == m.PrimarySize &&
		images[1].Start == m.SecondaryOffset &&
		images[1].Len() == m.SecondarySize
}

// findMPF returns the first MPF segment of the first image.
func findMPF(data []byte, res *ScanResult) (*MPFInfo, error) {
	for _, seg := range res.Segments {
		if len(res.Images) > 0 && seg.Offset >= res.Images[0].End {
			break
		}
		if seg.Marker != MarkerAPP2 {
			continue
		}
		payload := seg.Payload(data)
		if !bytes.HasPrefix(payload, mpfSig) {
			continue
		}
		info, err := parseMPF(payload)
		if err != nil {
			return nil, err
		}
		// Offsets are relative to the TIFF header that follows the signature.
		info.SecondaryOffset += seg.Offset + 4 + len(mpfSig)
		return &info, nil
	}
	return nil, nil
}

func parseMPF(payload []byte) (MPFInfo, error) {
	if len(payload) < len(mpfSig)+8 || !bytes.HasPrefix(payload, mpfSig) {
		return MPFInfo{}, errors.New("mpf signature missing")
	}
	tiff := payload[len(mpfSig):]
	var order binary.ByteOrder
	switch {
	case tiff[0] == 0x4D && tiff[1] == 0x4D:
		order = binary.BigEndian
	case tiff[0] == 0x49 && tiff[1] == 0x49:
		order = binary.LittleEndian
	default:
		return MPFInfo{}, errors.New("mpf endian invalid")
	}
	if order.Uint16(tiff[2:4]) != 0x002A {
		return MPFInfo{}, errors.New("mpf tiff magic invalid")
	}
	ifdPos := int(order.Uint32(tiff[4:8]))
	if ifdPos < 0 || ifdPos+2 > len(tiff) {
		return MPFInfo{}, errors.New("mpf ifd offset invalid")
	}
	tagCount := int(order.Uint16(tiff[ifdPos:]))
	ifdPos += 2

	entryPos, entryCount := -1, 0
	for i := 0; i < tagCount; i++ {
		if ifdPos+12 > len(tiff) {
			return MPFInfo{}, errors.New("mpf ifd truncated")
		}
		tag := order.Uint16(tiff[ifdPos:])
		typ := order.Uint16(tiff[ifdPos+2:])
		count := int(order.Uint32(tiff[ifdPos+4:]))
		if tag == mpfEntryTag && typ == mpfTypeUndefined && count >= mpfEntrySize {
			entryPos = int(order.Uint32(tiff[ifdPos+8:]))
			entryCount = count / mpfEntrySize
			break
		}
		ifdPos += 12
	}
	if entryPos < 0 || entryPos+mpfEntrySize*entryCount > len(tiff) {
		return MPFInfo{}, errors.New("mpf entry offset invalid")
	}

	var info MPFInfo
	for i := 0; i < entryCount; i++ {
		attr := order.Uint32(tiff[entryPos:])
		size := int(order.Uint32(tiff[entryPos+4:]))
		offset := int(order.Uint32(tiff[entryPos+8:]))
		switch {
		case attr&mpfAttrTypePrimary == mpfAttrTypePrimary:
			info.PrimarySize = size
		case info.SecondarySize == 0:
			info.SecondarySize = size
			info.SecondaryOffset = offset
		}
		entryPos += mpfEntrySize
	}
	if info.PrimarySize == 0 || info.SecondarySize == 0 {
		return MPFInfo{}, errors.New("mpf sizes missing")
	}
	return info, nil
}
