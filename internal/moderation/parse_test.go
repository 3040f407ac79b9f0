package moderation

import "testing"

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"bare integer", "42", 42, false},
		{"zero", "0", 0, false},
		{"max", "100", 100, false},
		{"surrounding prose", "The score is 73.", 73, false},
		{"leading newline", "\n12\n", 12, false},
		{"no number", "cannot determine", 0, true},
		{"out of range", "250", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScore(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("got=%d want=%d", got, tt.want)
			}
		})
	}
}
