package geo

import "testing"

func TestContinentForCity(t *testing.T) {
	tests := []struct {
		city string
		want string
	}{
		{"Paris", "Europe"},
		{"paris", "Europe"},
		{"PARIS", "Europe"},
		{"Los Angeles", "North America"},
		{"Tokyo", "Asia"},
		{"Sydney", "Oceania"},
		{"Atlantis", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ContinentForCity(tt.city); got != tt.want {
			t.Errorf("ContinentForCity(%q)=%q want %q", tt.city, got, tt.want)
		}
	}
}
