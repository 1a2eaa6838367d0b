package config

import "testing"

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name       string
		settings   Settings
		errorPaths []string
	}{
		{
			name:     "defaults are valid",
			settings: DefaultSettings(),
		},
		{
			name:       "missing tables",
			settings:   Settings{},
			errorPaths: []string{"apiPaths", "queries"},
		},
		{
			name:       "bad format and timeout",
			settings:   Settings{APIPaths: "a", Queries: "q", Format: "html", Timeout: "never"},
			errorPaths: []string{"format", "timeout"},
		},
		{
			name:       "blank feature path",
			settings:   Settings{APIPaths: "a", Queries: "q", Features: []string{"ok", " "}},
			errorPaths: []string{"features[1]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateSettings(&tt.settings)
			if len(errs) != len(tt.errorPaths) {
				t.Fatalf("Expected %d errors, got %d: %v", len(tt.errorPaths), len(errs), errs)
			}
			for i, path := range tt.errorPaths {
				if errs[i].Path != path {
					t.Errorf("Expected error path %s, got %s", path, errs[i].Path)
				}
			}
		})
	}
}
