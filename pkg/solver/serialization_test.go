package solver

import (
	"encoding/json"
	"testing"
)

func TestTable_ToJSON(t *testing.T) {
	data, err := json.Marshal(CompressSigned([]float32{-1, 0.5}))
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	// Check that it's valid JSON
	if len(data) == 0 {
		t.Error("JSON output is empty")
	}

	t.Logf("Serialized JSON:\n%s", string(data))
}

func TestTable_RoundTrip(t *testing.T) {
	tables := map[string]Table{
		"dense": DenseTable([]float32{0.125, 3, -7.5}),
		"u16":   CompressUnsigned([]float32{0, 1, 2.5, 10}),
		"i16":   CompressSigned([]float32{-4, 0, 2, 8}),
	}

	for name, original := range tables {
		t.Run(name, func(t *testing.T) {
			data, err := json.Marshal(original)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			var restored Table
			if err := json.Unmarshal(data, &restored); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			if restored.Encoding() != original.Encoding() {
				t.Errorf("Encoding = %v, want %v", restored.Encoding(), original.Encoding())
			}
			if restored.Scale() != original.Scale() {
				t.Errorf("Scale = %v, want %v", restored.Scale(), original.Scale())
			}

			want, got := original.Decode(), restored.Decode()
			if len(got) != len(want) {
				t.Fatalf("Expected %d entries, got %d", len(want), len(got))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("entry %d = %v, want %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestTable_FromJSONErrors(t *testing.T) {
	tests := []string{
		`{"encoding":"f64","values":[1]}`,
		`{"encoding":"u16","scale":1,"raw":[70000]}`,
		`{"encoding":"u16","scale":1,"raw":[-1]}`,
		`{"encoding":"i16","scale":1,"raw":[40000]}`,
		`{"encoding":`,
	}

	for _, input := range tests {
		var table Table
		if err := json.Unmarshal([]byte(input), &table); err == nil {
			t.Errorf("Unmarshal(%s) should fail", input)
		}
	}
}
