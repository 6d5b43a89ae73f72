package digi

import (
	"fmt"
	"strconv"
	"strings"
)

// BitField is one packed field of the 64-bit cell identifier.
type BitField struct {
	Name   string
	Offset uint
	Width  uint
}

func (f BitField) mask() uint64 {
	return ((uint64(1) << f.Width) - 1) << f.Offset
}

// CellIDCoder packs and unpacks the bit fields of a cell identifier.
// Built once from an encoding string like "system:8,layer:4,phi:10,z:12"
// (fields packed LSB first). Immutable after construction.
type CellIDCoder struct {
	fields []BitField
	byName map[string]int
}

func NewCellIDCoder(encoding string) (*CellIDCoder, error) {
	coder := &CellIDCoder{byName: make(map[string]int)}
	var offset uint
	for _, spec := range strings.Split(encoding, ",") {
		parts := strings.Split(strings.TrimSpace(spec), ":")
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid cell id field %q", spec)
		}
		width, err := strconv.ParseUint(parts[1], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid width in cell id field %q: %w", spec, err)
		}
		if width == 0 || offset+uint(width) > 64 {
			return nil, fmt.Errorf("cell id field %q does not fit in 64 bits", spec)
		}
		if _, dup := coder.byName[parts[0]]; dup {
			return nil, fmt.Errorf("duplicated cell id field %q", parts[0])
		}
		coder.byName[parts[0]] = len(coder.fields)
		coder.fields = append(coder.fields, BitField{Name: parts[0], Offset: offset, Width: uint(width)})
		offset += uint(width)
	}
	if len(coder.fields) == 0 {
		return nil, fmt.Errorf("empty cell id encoding")
	}
	return coder, nil
}

// Get extracts the value of the named field.
func (c *CellIDCoder) Get(id uint64, field string) (uint64, error) {
	index, ok := c.byName[field]
	if !ok {
		return 0, fmt.Errorf("unknown cell id field %q", field)
	}
	f := c.fields[index]
	return (id >> f.Offset) & ((uint64(1) << f.Width) - 1), nil
}

// Set returns id with the named field replaced. Values wider than the field
// are truncated to its width.
func (c *CellIDCoder) Set(id uint64, field string, value uint64) (uint64, error) {
	index, ok := c.byName[field]
	if !ok {
		return 0, fmt.Errorf("unknown cell id field %q", field)
	}
	f := c.fields[index]
	return (id &^ f.mask()) | ((value << f.Offset) & f.mask()), nil
}

// Mask returns the bit mask covering the named fields. The aggregator uses
// it to build the sum-fields merge key.
func (c *CellIDCoder) Mask(fields []string) (uint64, error) {
	var mask uint64
	for _, field := range fields {
		index, ok := c.byName[field]
		if !ok {
			return 0, fmt.Errorf("unknown cell id field %q", field)
		}
		mask |= c.fields[index].mask()
	}
	return mask, nil
}

// Encode packs the given field values into an identifier. Fields not named
// stay zero.
func (c *CellIDCoder) Encode(values map[string]uint64) (uint64, error) {
	var id uint64
	var err error
	for field, value := range values {
		id, err = c.Set(id, field, value)
		if err != nil {
			return 0, err
		}
	}
	return id, nil
}
