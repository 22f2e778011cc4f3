package portal

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRow_UnmarshalKeepsOrder(t *testing.T) {
	var r Row
	err := json.Unmarshal([]byte(`{"user_id":"USR1","zeta":1,"alpha":2.5,"nested":{"b":1},"none":null}`), &r)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := []string{"user_id", "zeta", "alpha", "nested", "none"}
	if diff := cmp.Diff(want, r.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if got := r.String("user_id"); got != "USR1" {
		t.Errorf("String(user_id) = %q, want %q", got, "USR1")
	}
	if got, ok := r.Float("alpha"); !ok || got != 2.5 {
		t.Errorf("Float(alpha) = %v, %v, want 2.5, true", got, ok)
	}
	if got := r.String("none"); got != "" {
		t.Errorf("String(none) = %q, want empty", got)
	}
}

func TestRow_MarshalRoundTripsOrder(t *testing.T) {
	in := `{"b":1,"a":"x","c":[1,2]}`
	var r Row
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != in {
		t.Errorf("Marshal() = %s, want %s", out, in)
	}
}

func TestRow_MoneyIsExact(t *testing.T) {
	var r Row
	if err := json.Unmarshal([]byte(`{"v":0.1,"w":"0.2","x":"bad"}`), &r); err != nil {
		t.Fatal(err)
	}
	sum := r.Money("v").Add(r.Money("w"))
	if !sum.Equal(USD(0.3)) {
		t.Errorf("Money(v)+Money(w) = %v, want $0.30", sum)
	}
	if !r.Money("x").IsZero() {
		t.Errorf("Money(x) = %v, want zero", r.Money("x"))
	}
}

func TestRow_Path(t *testing.T) {
	var r Row
	if err := json.Unmarshal([]byte(`{"current_allocation":{"equities":65.5}}`), &r); err != nil {
		t.Fatal(err)
	}
	got, err := r.Path("$.current_allocation.equities")
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if got != 65.5 {
		t.Errorf("Path() = %v, want 65.5", got)
	}
}

func TestRow_Contains(t *testing.T) {
	r := NewRow("name", "Alice Smith", "age", json.Number("42"),
		"balance", json.Number("0"), "active", false, "vip", true, "note", "", "city", nil)
	tests := []struct {
		term string
		want bool
	}{
		{"alice", true},
		{"smith", true},
		{"42", true},
		{"bob", false},
		{"0", false},
		{"false", false},
		{"true", true},
		{"null", false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.term); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}
