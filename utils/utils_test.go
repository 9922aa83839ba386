package utils

import (
	"path/filepath"
	"testing"
)

func TestGetConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var tests = []struct {
		explicit string
		want     string
	}{
		{"", filepath.Join(home, ConfigFileName)},
		{"overlay.yaml", "overlay.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.explicit, func(t *testing.T) {
			got, err := GetConfigPath(tt.explicit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
