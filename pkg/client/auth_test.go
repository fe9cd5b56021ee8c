package client

import "testing"

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc123", "bearer abc123"},
		{"bearer abc123", "Bearer abc123"},
		{"Bearer abc123", "Bearer abc123"},
		{"  abc123\n", "bearer abc123"},
		{"", ""},
		{"bearerXYZ123", "bearer bearerXYZ123"},
		{"BearerXYZ123", "bearer BearerXYZ123"},
	}
	for _, tt := range tests {
		if got := NormalizeToken(tt.in); got != tt.want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAppendTeamID(t *testing.T) {
	tests := []struct {
		url, team, sep, want string
	}{
		{"https://x/api", "", "?", "https://x/api"},
		{"https://x/api", "t1", "?", "https://x/api?teamId=t1"},
		{"https://x/api?path=a", "t1", "&", "https://x/api?path=a&teamId=t1"},
	}
	for _, tt := range tests {
		if got := AppendTeamID(tt.url, tt.team, tt.sep); got != tt.want {
			t.Errorf("AppendTeamID(%q, %q, %q) = %q, want %q", tt.url, tt.team, tt.sep, got, tt.want)
		}
	}
}
