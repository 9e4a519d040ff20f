package scheduling

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"22999998352", "22999998352"},
		{"(22) 99999-8352", "22999998352"},
		{"+55 22 99999 8352", "5522999998352"},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"22999998352", true},
		{"2299999835", true},
		{"123", false},
		{"229999983521", false},
		{"22999a98352", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidPhone(tt.in); got != tt.want {
			t.Errorf("ValidPhone(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidCEP(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"28890000", true},
		{"2889000", false},
		{"288900001", false},
		{"28890-00", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidCEP(tt.in); got != tt.want {
			t.Errorf("ValidCEP(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2025-06-10", true},
		{"2025-13-10", false},
		{"10/06/2025", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidDate(tt.in); got != tt.want {
			t.Errorf("ValidDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://meet.google.com/abc-defg-hij", true},
		{"http://example.com", true},
		{"not a url", false},
		{"meet.google.com/abc", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidURL(tt.in); got != tt.want {
			t.Errorf("ValidURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOnlineFor(t *testing.T) {
	tests := []struct {
		city string
		want bool
	}{
		{"Rio das Ostras", false},
		{"rio das ostras", false},
		{"  Rio das Ostras  ", false},
		{"Rio De Janeiro", true},
		{"Macaé", true},
	}
	for _, tt := range tests {
		if got := OnlineFor(tt.city, "rio das ostras"); got != tt.want {
			t.Errorf("OnlineFor(%q) = %v, want %v", tt.city, got, tt.want)
		}
	}
}
