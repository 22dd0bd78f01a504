package capture

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"LEHTO Kalle", "Kalle Lehto"},
		{"kalle lehto", "Kalle Lehto"},
		{"NISKANEN Iivo Pekka", "Iivo Pekka Niskanen"},
		{"  PÄRMÄKOSKI   Krista ", "Krista Pärmäkoski"},
		{"Kalle LEHTO", "Kalle Lehto"},
		{"LEHTO", "Lehto"},
		{"A Smith", "A Smith"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeName(tt.in); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
