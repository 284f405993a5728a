package pairing

import (
	"encoding/json"
	"os"
	"reflect"
	"testing"
)

func TestMain(m *testing.M) {
	verifySymmetry = true
	os.Exit(m.Run())
}

func TestRecordPairIsSymmetric(t *testing.T) {
	h := NewHistory()
	h.RecordPair("a", "b")
	h.RecordPair("b", "a")
	h.RecordPair("a", "c")

	if got := h.Count("a", "b"); got != 2 {
		t.Errorf("Count(a,b) = %d, want 2", got)
	}
	if got := h.Count("b", "a"); got != 2 {
		t.Errorf("Count(b,a) = %d, want 2", got)
	}
	if got := h.Count("c", "a"); got != 1 {
		t.Errorf("Count(c,a) = %d, want 1", got)
	}
	if got := h.Count("b", "c"); got != 0 {
		t.Errorf("Count(b,c) = %d, want 0", got)
	}
	if got := h.Partners("a"); !reflect.DeepEqual(got, []string{"b", "b", "c"}) {
		t.Errorf("Partners(a) = %v", got)
	}
}

func TestCountsOnlyGrow(t *testing.T) {
	h := NewHistory()
	prev := 0
	for i := 0; i < 5; i++ {
		h.RecordPair("a", "b")
		n := h.Count("a", "b")
		if n <= prev {
			t.Fatalf("count went from %d to %d", prev, n)
		}
		prev = n
	}
}

func TestEnsureKnownKeepsExisting(t *testing.T) {
	h := NewHistory()
	h.RecordPair("a", "b")
	h.EnsureKnown("a", "z")

	if !h.Known("z") {
		t.Error("z should be known")
	}
	if got := h.Partners("z"); len(got) != 0 {
		t.Errorf("Partners(z) = %v, want empty", got)
	}
	if got := h.Count("a", "b"); got != 1 {
		t.Errorf("EnsureKnown reset a: Count(a,b) = %d", got)
	}
}

func TestZeroHistoryIsUsable(t *testing.T) {
	var h History
	if got := h.Count("a", "b"); got != 0 {
		t.Errorf("Count on zero History = %d", got)
	}
	h.RecordPair("a", "b")
	h.EnsureKnown("c")
	if got := h.Count("b", "a"); got != 1 {
		t.Errorf("Count(b,a) = %d, want 1", got)
	}
	if h.Len() != 3 {
		t.Errorf("Len = %d, want 3", h.Len())
	}

	var z History
	if c := z.Clone(); c.Len() != 0 {
		t.Errorf("Clone of zero History has %d entries", c.Len())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	h := NewHistory()
	h.RecordPair("a", "b")

	c := h.Clone()
	c.RecordPair("a", "b")
	c.RecordPair("c", "d")

	if got := h.Count("a", "b"); got != 1 {
		t.Errorf("original Count(a,b) = %d, want 1", got)
	}
	if h.Known("c") {
		t.Error("original should not know c")
	}
	if got := c.Count("a", "b"); got != 2 {
		t.Errorf("clone Count(a,b) = %d, want 2", got)
	}
}

func TestHistoryJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string][]string
	}{
		{
			name:  "string ids",
			input: `{"histories": {"1": ["2", "2"], "2": ["1", "1"]}}`,
			want:  map[string][]string{"1": {"2", "2"}, "2": {"1", "1"}},
		},
		{
			name:  "numeric ids from older records",
			input: `{"histories": {"123456789012345678": [876543210987654321], "876543210987654321": [123456789012345678]}}`,
			want: map[string][]string{
				"123456789012345678": {"876543210987654321"},
				"876543210987654321": {"123456789012345678"},
			},
		},
		{
			name:  "empty",
			input: `{"histories": {}}`,
			want:  map[string][]string{},
		},
		{
			name:  "unknown fields ignored",
			input: `{"histories": {"a": []}, "version": 2}`,
			want:  map[string][]string{"a": {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h History
			if err := json.Unmarshal([]byte(tt.input), &h); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !reflect.DeepEqual(h.histories, tt.want) {
				t.Errorf("histories = %v, want %v", h.histories, tt.want)
			}
		})
	}
}

func TestHistoryJSONRejectsFractionalID(t *testing.T) {
	var h History
	if err := json.Unmarshal([]byte(`{"histories": {"a": [1.5]}}`), &h); err == nil {
		t.Error("expected error for fractional id")
	}
}

func TestHistoryMarshalEmpty(t *testing.T) {
	data, err := json.Marshal(NewHistory())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"histories":{}}` {
		t.Errorf("got %s", data)
	}
}
