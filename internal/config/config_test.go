package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  error
	}{
		{
			name: "valid config",
			contents: `
[spotify]
client_id = "abc123"
client_secret = "def456"
`,
			wantErr: nil,
		},
		{
			name: "missing client secret",
			contents: `
[spotify]
client_id = "abc123"
`,
			wantErr: ErrMissingCredentials,
		},
		{
			name:     "empty config",
			contents: "",
			wantErr:  ErrMissingCredentials,
		},
		{
			name: "placeholder client id",
			contents: `
[spotify]
client_id = "your-client-id"
client_secret = "def456"
`,
			wantErr: ErrPlaceholderCredentials,
		},
		{
			name: "placeholder client secret",
			contents: `
[spotify]
client_id = "abc123"
client_secret = "your-client-secret"
`,
			wantErr: ErrPlaceholderCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.contents)

			cfg, err := Load(path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			if cfg.Spotify.ClientID != "abc123" {
				t.Errorf("ClientID = %q, want %q", cfg.Spotify.ClientID, "abc123")
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
[spotify]
client_id = "abc123"
client_secret = "def456"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, want := cfg.Server.Addr(), "127.0.0.1:8080"; got != want {
		t.Errorf("Server.Addr() = %q, want %q", got, want)
	}
	if cfg.Spotify.RedirectURI == "" {
		t.Error("RedirectURI default not applied")
	}
	if cfg.Data.Dir == "" {
		t.Error("Data.Dir default not applied")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestWriteExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := WriteExample(path); err != nil {
		t.Fatalf("WriteExample() error = %v", err)
	}

	// A second write must refuse to clobber the existing file.
	if err := WriteExample(path); err == nil {
		t.Error("WriteExample() expected error for existing file")
	}

	// The example must fail validation as-is (placeholders).
	_, err := Load(path)
	if !errors.Is(err, ErrPlaceholderCredentials) {
		t.Errorf("Load(example) error = %v, want ErrPlaceholderCredentials", err)
	}
}
