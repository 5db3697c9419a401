package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckVersionCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		engineVersion string
		configVersion string
		expectError   bool
		errorContains string
	}{
		{
			name:          "exact match",
			engineVersion: "1.2.0",
			configVersion: "1.2.0",
		},
		{
			name:          "engine patch higher",
			engineVersion: "1.2.1",
			configVersion: "1.2.0",
		},
		{
			name:          "engine minor higher",
			engineVersion: "1.4.1",
			configVersion: "1.2.0",
		},
		{
			name:          "config patch higher",
			engineVersion: "1.2.0",
			configVersion: "1.2.5",
			expectError:   true,
			errorContains: "older than configuration",
		},
		{
			name:          "config minor higher",
			engineVersion: "1.2.0",
			configVersion: "1.3.0",
			expectError:   true,
			errorContains: "older than configuration",
		},
		{
			name:          "major version differs",
			engineVersion: "2.0.0",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},
		{
			name:          "engine is main",
			engineVersion: "main",
			configVersion: "9.0.0",
		},
		{
			name:          "config is main",
			engineVersion: "1.2.0",
			configVersion: "main",
		},
		{
			name:          "v prefix on both",
			engineVersion: "v1.2.0",
			configVersion: "v1.2.0",
		},
		{
			name:          "prerelease engine",
			engineVersion: "1.2.0-alpha",
			configVersion: "1.2.0",
		},
		{
			name:          "build metadata",
			engineVersion: "1.2.0+build123",
			configVersion: "1.2.0",
		},
		{
			name:          "invalid engine version",
			engineVersion: "not-a-version",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "invalid engine version",
		},
		{
			name:          "invalid config version",
			engineVersion: "1.2.0",
			configVersion: "not-a-version",
			expectError:   true,
			errorContains: "invalid configuration version",
		},
		{
			name:          "empty engine version",
			engineVersion: "",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "invalid engine version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVersionCompatibility(tt.engineVersion, tt.configVersion)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
