package solver

import (
	"math"
)

// Encoding is the storage format of a Table
type Encoding uint8

const (
	// Dense stores float32 values as is
	Dense Encoding = iota
	// Unsigned16 stores non-negative values as 16-bit fixed point
	Unsigned16
	// Signed16 stores signed values as 16-bit fixed point
	Signed16
)

// String returns the encoding name
func (e Encoding) String() string {
	switch e {
	case Dense:
		return "dense"
	case Unsigned16:
		return "u16"
	case Signed16:
		return "i16"
	default:
		return "unknown"
	}
}

const (
	maxUnsigned16 = math.MaxUint16
	maxSigned16   = math.MaxInt16
)

// Table is a per-node statistic, either dense or fixed-point compressed.
// Compressed entries decode as raw * scale / max, where max is the largest
// raw value the encoding can represent
type Table struct {
	enc   Encoding
	dense []float32
	u16   []uint16
	i16   []int16
	scale float32
}

// DenseTable wraps float32 values
func DenseTable(values []float32) Table {
	return Table{enc: Dense, dense: values}
}

// UnsignedTable wraps 16-bit unsigned fixed-point values
func UnsignedTable(raw []uint16, scale float32) Table {
	return Table{enc: Unsigned16, u16: raw, scale: scale}
}

// SignedTable wraps 16-bit signed fixed-point values
func SignedTable(raw []int16, scale float32) Table {
	return Table{enc: Signed16, i16: raw, scale: scale}
}

// Encoding returns the storage format
func (t Table) Encoding() Encoding { return t.enc }

// Compressed reports whether the table is stored as fixed point
func (t Table) Compressed() bool { return t.enc != Dense }

// Scale returns the compression scale factor (zero for dense tables)
func (t Table) Scale() float32 { return t.scale }

// Len returns the number of entries
func (t Table) Len() int {
	switch t.enc {
	case Unsigned16:
		return len(t.u16)
	case Signed16:
		return len(t.i16)
	default:
		return len(t.dense)
	}
}

// Decode returns the table as float32 values
func (t Table) Decode() []float32 {
	out := make([]float32, t.Len())
	t.DecodeInto(out)
	return out
}

// DecodeInto writes the decoded values into dst, which must hold Len entries
func (t Table) DecodeInto(dst []float32) {
	switch t.enc {
	case Unsigned16:
		for i, raw := range t.u16 {
			dst[i] = float32(raw) * t.scale / maxUnsigned16
		}
	case Signed16:
		for i, raw := range t.i16 {
			dst[i] = float32(raw) * t.scale / maxSigned16
		}
	default:
		copy(dst, t.dense)
	}
}

// Row decodes entries [row*width, (row+1)*width)
func (t Table) Row(row, width int) []float32 {
	out := make([]float32, width)
	lo := row * width
	switch t.enc {
	case Unsigned16:
		for i, raw := range t.u16[lo : lo+width] {
			out[i] = float32(raw) * t.scale / maxUnsigned16
		}
	case Signed16:
		for i, raw := range t.i16[lo : lo+width] {
			out[i] = float32(raw) * t.scale / maxSigned16
		}
	default:
		copy(out, t.dense[lo:lo+width])
	}
	return out
}

// CompressUnsigned encodes non-negative values as 16-bit unsigned fixed
// point, scaled by the largest value. Negative values are stored as zero
func CompressUnsigned(values []float32) Table {
	var scale float32
	for _, v := range values {
		if v > scale {
			scale = v
		}
	}

	raw := make([]uint16, len(values))
	if scale > 0 {
		for i, v := range values {
			if v > 0 {
				raw[i] = uint16(math.Round(float64(v / scale * maxUnsigned16)))
			}
		}
	}
	return UnsignedTable(raw, scale)
}

// CompressSigned encodes values as 16-bit signed fixed point, scaled by the
// largest magnitude
func CompressSigned(values []float32) Table {
	var scale float32
	for _, v := range values {
		if a := float32(math.Abs(float64(v))); a > scale {
			scale = a
		}
	}

	raw := make([]int16, len(values))
	if scale > 0 {
		for i, v := range values {
			raw[i] = int16(math.Round(float64(v / scale * maxSigned16)))
		}
	}
	return SignedTable(raw, scale)
}
