package utils

import (
	"errors"
	"testing"
)

func TestValidateZipCode(t *testing.T) {
	tests := []struct {
		zip  string
		want error
	}{
		{"75201", nil},
		{" 76102 ", nil},
		{"7520", ErrInvalidZipCode},
		{"752011", ErrInvalidZipCode},
		{"75a01", ErrInvalidZipCode},
		{"", ErrInvalidZipCode},
	}
	for _, tt := range tests {
		t.Run(tt.zip, func(t *testing.T) {
			if got := ValidateZipCode(tt.zip); !errors.Is(got, tt.want) {
				t.Errorf("ValidateZipCode(%q) = %v, want %v", tt.zip, got, tt.want)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng string
		want     error
	}{
		{"dallas", "32.7767", "-96.7970", nil},
		{"blank latitude", "", "-96.7970", ErrInvalidLatitude},
		{"latitude out of range", "91", "0", ErrInvalidLatitude},
		{"longitude not a number", "32.7", "west", ErrInvalidLongitude},
		{"longitude out of range", "32.7", "-181", ErrInvalidLongitude},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateCoordinates(tt.lat, tt.lng); !errors.Is(got, tt.want) {
				t.Errorf("ValidateCoordinates(%q, %q) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestOptionalString(t *testing.T) {
	blank := "   "
	val := " 214-555-0100 "
	if OptionalString(nil) != nil {
		t.Error("nil should stay nil")
	}
	if OptionalString(&blank) != nil {
		t.Error("blank should become nil")
	}
	if got := OptionalString(&val); got == nil || *got != "214-555-0100" {
		t.Errorf("OptionalString trimmed = %v", got)
	}
}
