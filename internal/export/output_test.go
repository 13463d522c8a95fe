package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heimdex/pagexport/internal/model"
)

func TestSanitizeName_ControlChars(t *testing.T) {
	got := SanitizeName(" A\nB\rC\tD\x00 ", 100)
	if strings.ContainsAny(got, "\n\r\t\x00") {
		t.Fatalf("sanitize output contains control chars: %q", got)
	}
	if got != "ABCD" {
		t.Fatalf("SanitizeName control char behavior mismatch, got %q", got)
	}
}

func TestSanitizeName_MaxLength(t *testing.T) {
	got := SanitizeName("abcdefghijklmnopqrstuvwxyz", 10)
	if len([]rune(got)) != 10 {
		t.Fatalf("expected length 10, got %d (%q)", len([]rune(got)), got)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "spaces", title: "Main Comp", want: "Main_Comp"},
		{name: "disallowed", title: "intro<>|", want: "intro___"},
		{name: "empty", title: "  ", want: "export"},
		{name: "dots only", title: "..", want: "export"},
		{name: "unicode letters kept", title: "片头", want: "片头"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := OutputName(tc.title); got != tc.want {
				t.Fatalf("OutputName(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestValidateOutputDir(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	tests := []struct {
		name    string
		dir     string
		wantErr bool
	}{
		{name: "valid", dir: base},
		{name: "empty", dir: " ", wantErr: true},
		{name: "missing", dir: filepath.Join(base, "missing"), wantErr: true},
		{name: "traversal", dir: "/tmp/../etc", wantErr: true},
		{name: "not clean", dir: base + "/", wantErr: true},
		{name: "file", dir: file, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateOutputDir(tc.dir)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateOutputDir(%q) error = %v, wantErr %v", tc.dir, err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidOutputDir) {
				t.Fatalf("ValidateOutputDir(%q) error = %v, want ErrInvalidOutputDir", tc.dir, err)
			}
		})
	}
}

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	root := &model.Composition{ID: 1, Name: "Main", Width: 10, Height: 10, FrameRate: 24, Duration: 48}
	r := &Result{Compositions: []*model.Composition{root}}

	manifestPath, reportPath, err := WriteOutputs(dir, r, "Main Comp")
	if err != nil {
		t.Fatalf("WriteOutputs() error = %v", err)
	}
	if filepath.Base(manifestPath) != "Main_Comp.manifest.json" {
		t.Errorf("manifest path = %q", manifestPath)
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if m.RootID != 1 || len(m.Compositions) != 1 || m.Compositions[0].Duration != "00:00:02:00" {
		t.Errorf("manifest = %+v", m)
	}

	report, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(report), "TITLE: Main Comp") {
		t.Errorf("report missing title: %q", report)
	}
}
