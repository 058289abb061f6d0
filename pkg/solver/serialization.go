package solver

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// SerializableTable is a JSON-friendly representation of a Table
type SerializableTable struct {
	Encoding string    `json:"encoding"`
	Scale    float32   `json:"scale,omitempty"`
	Values   []float32 `json:"values,omitempty"`
	Raw      []int32   `json:"raw,omitempty"`
}

// ToSerializable converts the table into its JSON form
func (t Table) ToSerializable() SerializableTable {
	st := SerializableTable{Encoding: t.enc.String(), Scale: t.scale}
	switch t.enc {
	case Unsigned16:
		st.Raw = make([]int32, len(t.u16))
		for i, v := range t.u16 {
			st.Raw[i] = int32(v)
		}
	case Signed16:
		st.Raw = make([]int32, len(t.i16))
		for i, v := range t.i16 {
			st.Raw[i] = int32(v)
		}
	default:
		st.Values = t.dense
	}
	return st
}

// Table converts the JSON form back into a Table
func (st SerializableTable) Table() (Table, error) {
	switch st.Encoding {
	case "", "dense":
		return DenseTable(st.Values), nil
	case "u16":
		raw := make([]uint16, len(st.Raw))
		for i, v := range st.Raw {
			if v < 0 || v > maxUnsigned16 {
				return Table{}, errors.Errorf("u16 entry %d out of range: %d", i, v)
			}
			raw[i] = uint16(v)
		}
		return UnsignedTable(raw, st.Scale), nil
	case "i16":
		raw := make([]int16, len(st.Raw))
		for i, v := range st.Raw {
			if v < -maxSigned16-1 || v > maxSigned16 {
				return Table{}, errors.Errorf("i16 entry %d out of range: %d", i, v)
			}
			raw[i] = int16(v)
		}
		return SignedTable(raw, st.Scale), nil
	default:
		return Table{}, errors.Errorf("unknown table encoding %q", st.Encoding)
	}
}

// MarshalJSON implements json.Marshaler
func (t Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToSerializable())
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Table) UnmarshalJSON(data []byte) error {
	var st SerializableTable
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	table, err := st.Table()
	if err != nil {
		return err
	}
	*t = table
	return nil
}
