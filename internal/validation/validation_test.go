package validation

import "testing"

func TestIsValidLogin(t *testing.T) {
	tests := []struct {
		name  string
		login string
		want  bool
	}{
		{"simple login", "viewer", true},
		{"with digits and underscore", "Fan_2024", true},
		{"minimum length", "abc", true},
		{"maximum length", "a2345678901234567890123456789012", true},
		{"too short", "ab", false},
		{"too long", "a23456789012345678901234567890123", false},
		{"empty", "", false},
		{"spaces", "some viewer", false},
		{"unicode", "зритель", false},
		{"special characters", "viewer!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidLogin(tt.login); got != tt.want {
				t.Errorf("IsValidLogin(%q) = %v, want %v", tt.login, got, tt.want)
			}
		})
	}
}

func TestIsValidChannelName(t *testing.T) {
	tests := []struct {
		name    string
		channel string
		want    bool
	}{
		{"lowercase", "main_stream", true},
		{"with digits", "gaming2", true},
		{"uppercase rejected", "MainStream", false},
		{"too short", "ab", false},
		{"empty", "", false},
		{"dash rejected", "main-stream", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidChannelName(tt.channel); got != tt.want {
				t.Errorf("IsValidChannelName(%q) = %v, want %v", tt.channel, got, tt.want)
			}
		})
	}
}
