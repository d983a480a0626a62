package cplx

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/fractalview/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Number
		wantErr bool
	}{
		{"1.5", Number{1.5, 0}, false},
		{"-2", Number{-2, 0}, false},
		{"0.5i", Number{0, 0.5}, false},
		{"-3i", Number{0, -3}, false},
		{"i", Number{0, 1}, false},
		{"-i", Number{0, -1}, false},
		{"-0.75+0.1i", Number{-0.75, 0.1}, false},
		{"0.25-0.5i", Number{0.25, -0.5}, false},
		{"1e-3+2E2i", Number{0.001, 200}, false},
		{" 1 + 2i ", Number{1, 2}, false},
		{"3+i", Number{3, 1}, false},
		{".5-.5i", Number{0.5, -0.5}, false},

		{"", Number{}, true},
		{"abc", Number{}, true},
		{"1+2", Number{}, true},
		{"1+2j", Number{}, true},
		{"1++2i", Number{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidFormat) {
					t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	values := []Number{
		{-0.743643887037151, 0.131825904205330},
		{1e21, -1e-21},
		{0, 0},
		{-2, 0.5},
	}

	for _, z := range values {
		got, err := Parse(z.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", z.String(), err)
		}
		if !got.Equal(z) {
			t.Errorf("Parse(String(%v)) = %v", z, got)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		z    Number
		dp   int
		want string
	}{
		{Number{-0.75, 0.1}, 2, "-0.75+0.10i"},
		{Number{0.123456, -0.987654}, 3, "0.123-0.988i"},
		{Number{1, -0.0001}, 2, "1.00+0.00i"},
	}

	for _, tt := range tests {
		if got := tt.z.Format(tt.dp); got != tt.want {
			t.Errorf("Format(%v, %d) = %v, want %v", tt.z, tt.dp, got, tt.want)
		}
	}
}

func TestTextMarshalling(t *testing.T) {
	type doc struct {
		Centre Number `json:"centre"`
	}

	data, err := json.Marshal(doc{Centre: Number{-0.5, 0.25}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"centre":"-0.5+0.25i"}` {
		t.Errorf("Marshal = %s", data)
	}

	var back doc
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Centre.Equal(Number{-0.5, 0.25}) {
		t.Errorf("Unmarshal centre = %v", back.Centre)
	}

	if err := json.Unmarshal([]byte(`{"centre":"nope"}`), &back); err == nil {
		t.Error("Unmarshal(invalid) = nil, want error")
	}
}
