package portal

import (
	"encoding/json"
	"testing"
)

func TestFormatHeader(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"user_id", "User ID"},
		{"market_price_usd", "Market Price USD"},
		{"full_name", "Full Name"},
		{"returns_1year", "Returns 1year"},
		{"category", "Category"},
	}
	for _, tt := range tests {
		if got := FormatHeader(tt.key); got != tt.want {
			t.Errorf("FormatHeader(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"null", nil, "-"},
		{"large integer", json.Number("250000"), "$250,000.00"},
		{"fractional above 1000", json.Number("1234.5"), "$1,234.50"},
		{"integer between 1000 and 100000", json.Number("45000"), "45,000"},
		{"fractional percentage", json.Number("12.346"), "12.35%"},
		{"integer below 100", json.Number("42"), "42"},
		{"fractional between 100 and 1000", json.Number("150.5"), "150.5"},
		{"negative", json.Number("-3.5"), "-3.5"},
		{"iso date", "2024-03-15", "Mar 15, 2024"},
		{"iso datetime", "2024-03-15T10:00:00", "Mar 15, 2024"},
		{"text", "Moderate", "Moderate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCell(tt.v); got != tt.want {
				t.Errorf("FormatCell(%v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestInitials(t *testing.T) {
	if got := Initials("jane mary doe"); got != "JMD" {
		t.Errorf("Initials() = %q, want %q", got, "JMD")
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("custom-table_name"); got != "Custom Table Name" {
		t.Errorf("TitleCase() = %q, want %q", got, "Custom Table Name")
	}
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{USD(1234.5), "$1,234.50"},
		{USD(0), "$0.00"},
		{USD(-50), "-$50.00"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if got := USD(1234.5).Whole(); got != "$1,235" {
		t.Errorf("Whole() = %q, want %q", got, "$1,235")
	}
}

func TestMoney_JSON(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`1500.25`), &m); err != nil {
		t.Fatal(err)
	}
	if !m.Equal(USD(1500.25)) {
		t.Errorf("Unmarshal() = %v, want $1,500.25", m)
	}
	b, err := json.Marshal(USD(500))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "500" {
		t.Errorf("Marshal() = %s, want 500", b)
	}
}
