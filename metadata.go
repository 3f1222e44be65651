package uhdrsplit

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Metadata is the hdrgm gain map record of an UltraHDR image.
//
// Every numeric field holds one value, or three for per-channel (RGB) gain maps.
type Metadata struct {
	HeaderVersion      float64   `json:"version"`
	BaseRenditionIsHDR bool      `json:"base_rendition_is_hdr"`
	GainMapMin         []float64 `json:"gain_map_min"`
	GainMapMax         []float64 `json:"gain_map_max"`
	Gamma              []float64 `json:"gamma"`
	OffsetSDR          []float64 `json:"offset_sdr"`
	OffsetHDR          []float64 `json:"offset_hdr"`
	HDRCapacityMin     []float64 `json:"hdr_capacity_min"`
	HDRCapacityMax     []float64 `json:"hdr_capacity_max"`
}

type metadataField struct {
	name       string
	required   bool
	scalarOnly bool
	def        float64
	slot       func(b *metadataBuilder) *[]float64
}

// metadataFields lists the numeric hdrgm fields in output order.
var metadataFields = []metadataField{
	{name: "Version", required: true, scalarOnly: true, slot: func(b *metadataBuilder) *[]float64 { return &b.version }},
	{name: "GainMapMin", def: 0, slot: func(b *metadataBuilder) *[]float64 { return &b.gainMapMin }},
	{name: "GainMapMax", required: true, slot: func(b *metadataBuilder) *[]float64 { return &b.gainMapMax }},
	{name: "Gamma", def: 1, slot: func(b *metadataBuilder) *[]float64 { return &b.gamma }},
	{name: "OffsetSDR", def: 1.0 / 64, slot: func(b *metadataBuilder) *[]float64 { return &b.offsetSDR }},
	{name: "OffsetHDR", def: 1.0 / 64, slot: func(b *metadataBuilder) *[]float64 { return &b.offsetHDR }},
	{name: "HDRCapacityMin", def: 0, slot: func(b *metadataBuilder) *[]float64 { return &b.capacityMin }},
	{name: "HDRCapacityMax", required: true, slot: func(b *metadataBuilder) *[]float64 { return &b.capacityMax }},
}

const baseRenditionField = "BaseRenditionIsHDR"

// ParseMetadata parses the hdrgm fields of XMP text.
//
// A field is taken from its first attribute form, else from its first
// three-element rdf:Seq form, else from its default. A missing required field
// fails with ErrMissingField, an unconvertible numeral with ErrNumberFormat.
func ParseMetadata(text string) (*Metadata, error) {
	var b metadataBuilder
	for _, f := range metadataFields {
		values, err := f.parse(text)
		if err != nil {
			return nil, err
		}
		*f.slot(&b) = values
	}
	b.baseRenditionIsHDR, _ = matchBool(text, baseRenditionField)
	return b.build()
}

// parse returns nil values for an absent required field.
func (f metadataField) parse(text string) ([]float64, error) {
	if num, ok := matchAttribute(text, f.name); ok {
		return f.convert(num)
	}
	if !f.scalarOnly {
		if nums, ok := matchSequence(text, f.name); ok {
			return f.convert(nums[:]...)
		}
	}
	if f.required {
		return nil, nil
	}
	return []float64{f.def}, nil
}

func (f metadataField) convert(nums ...string) ([]float64, error) {
	values := make([]float64, 0, len(nums))
	for _, num := range nums {
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return nil, &FieldError{Field: f.name, Err: fmt.Errorf("%w: %v", ErrNumberFormat, err)}
		}
		values = append(values, v)
	}
	return values, nil
}

// metadataBuilder accumulates field values; nil slots are unset.
type metadataBuilder struct {
	version            []float64
	baseRenditionIsHDR bool
	gainMapMin         []float64
	gainMapMax         []float64
	gamma              []float64
	offsetSDR          []float64
	offsetHDR          []float64
	capacityMin        []float64
	capacityMax        []float64
}

func (b *metadataBuilder) build() (*Metadata, error) {
	for _, f := range metadataFields {
		if len(*f.slot(b)) == 0 {
			return nil, &FieldError{Field: f.name, Err: ErrMissingField}
		}
	}
	return &Metadata{
		HeaderVersion:      b.version[0],
		BaseRenditionIsHDR: b.baseRenditionIsHDR,
		GainMapMin:         b.gainMapMin,
		GainMapMax:         b.gainMapMax,
		Gamma:              b.gamma,
		OffsetSDR:          b.offsetSDR,
		OffsetHDR:          b.offsetHDR,
		HDRCapacityMin:     b.capacityMin,
		HDRCapacityMax:     b.capacityMax,
	}, nil
}

// WriteTo writes one "<label>: <values>" line per field.
func (m *Metadata) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	line := func(label, value string) {
		buf.WriteString(label)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteByte('\n')
	}

	line("Version", formatValues(m.HeaderVersion))
	line(baseRenditionField, strconv.FormatBool(m.BaseRenditionIsHDR))
	line("GainMapMin", formatValues(m.GainMapMin...))
	line("GainMapMax", formatValues(m.GainMapMax...))
	line("Gamma", formatValues(m.Gamma...))
	line("OffsetSDR", formatValues(m.OffsetSDR...))
	line("OffsetHDR", formatValues(m.OffsetHDR...))
	line("HDRCapacityMin", formatValues(m.HDRCapacityMin...))
	line("HDRCapacityMax", formatValues(m.HDRCapacityMax...))

	return buf.WriteTo(w)
}

func (m *Metadata) String() string {
	var sb strings.Builder
	_, _ = m.WriteTo(&sb)
	return sb.String()
}

func formatValues(values ...float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}
