package uhdrsplit

import "errors"

// SplitResult holds the parts of a split UltraHDR file.
type SplitResult struct {
	Scan *ScanResult
	// Images are copies of the sub-image ranges, base rendition first.
	Images [][]byte
	// Metadata holds one record per APP1 segment that parsed as UltraHDR.
	Metadata []*Metadata
	// MPF is set when the first image declares its layout in an MPF segment.
	MPF    *MPFInfo
	Events []Event
}

// Primary returns the base rendition JPEG.
func (r *SplitResult) Primary() []byte {
	if len(r.Images) < 1 {
		return nil
	}
	return r.Images[0]
}

// Gainmap returns the gain map JPEG.
func (r *SplitResult) Gainmap() []byte {
	if len(r.Images) < 2 {
		return nil
	}
	return r.Images[1]
}

// Meta returns the first parsed metadata record.
func (r *SplitResult) Meta() *Metadata {
	if len(r.Metadata) == 0 {
		return nil
	}
	return r.Metadata[0]
}

// Split scans data and separates it into sub-images and metadata records.
//
// Scan errors abort the split. Metadata errors only skip the APP1 segment
// they occur in and are reported as EventMetadataSkipped.
func Split(data []byte, opts ...func(o *ScanOptions)) (*SplitResult, error) {
	scan, err := Scan(data, opts...)
	if err != nil {
		return nil, err
	}

	res := &SplitResult{Scan: scan}
	images, app1 := 0, 0
	for _, seg := range scan.Segments {
		res.Events = append(res.Events, Event{Kind: EventSegment, Offset: seg.Offset, Length: seg.Len(), Marker: seg.Marker})

		switch seg.Marker {
		case MarkerEOI:
			img := scan.Images[images]
			images++
			res.Images = append(res.Images, append([]byte(nil), data[img.Start:img.End]...))
			res.Events = append(res.Events, Event{Kind: EventImage, Offset: img.Start, Length: img.Len(), Index: images})
		case MarkerAPP1:
			p := scan.APP1[app1]
			app1++
			meta, err := parseAPP1(p.Data)
			switch {
			case errors.Is(err, ErrNotXMP):
			case err != nil:
				res.Events = append(res.Events, Event{Kind: EventMetadataSkipped, Offset: p.Offset, Marker: seg.Marker, Err: err})
			default:
				res.Metadata = append(res.Metadata, meta)
				res.Events = append(res.Events, Event{Kind: EventMetadata, Offset: p.Offset, Marker: seg.Marker, Index: len(res.Metadata)})
			}
		}
	}

	mpf, err := findMPF(data, scan)
	if err != nil {
		res.Events = append(res.Events, Event{Kind: EventMPFMismatch, Marker: MarkerAPP2, Err: err})
	} else if mpf != nil {
		res.MPF = mpf
		if !mpf.Matches(scan.Images) {
			res.Events = append(res.Events, Event{Kind: EventMPFMismatch, Offset: mpf.SecondaryOffset, Length: mpf.SecondarySize, Marker: MarkerAPP2})
		}
	}

	return res, nil
}

func parseAPP1(payload []byte) (*Metadata, error) {
	text, err := ExtractXMP(payload)
	if err != nil {
		return nil, err
	}
	return ParseMetadata(text)
}
