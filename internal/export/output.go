package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const maxOutputNameLen = 80

var ErrInvalidOutputDir = errors.New("invalid output directory")

// SanitizeName drops control characters and replaces anything outside a
// conservative set with '_'.
func SanitizeName(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if isAllowedNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	cleaned := strings.TrimSpace(b.String())
	if maxLen > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxLen {
			cleaned = string(runes[:maxLen])
		}
	}
	return cleaned
}

func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case ' ', '-', '_', '.', ',', '(', ')':
		return true
	default:
		return false
	}
}

// OutputName is the file base name used for the outputs of a composition.
func OutputName(title string) string {
	name := strings.ReplaceAll(SanitizeName(title, maxOutputNameLen), " ", "_")
	if name == "" || strings.Trim(name, "._") == "" {
		return "export"
	}
	return name
}

func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidOutputDir)
	}

	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return fmt.Errorf("%w: path traversal", ErrInvalidOutputDir)
		}
	}

	if filepath.Clean(dir) != dir {
		return fmt.Errorf("%w: path must be clean", ErrInvalidOutputDir)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s does not exist", ErrInvalidOutputDir, dir)
		}
		return fmt.Errorf("%w: %v", ErrInvalidOutputDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidOutputDir, dir)
	}
	return nil
}

// WriteOutputs writes the JSON manifest and the text report of r into dir
// and returns their paths.
func WriteOutputs(dir string, r *Result, title string) (manifestPath, reportPath string, err error) {
	if err := ValidateOutputDir(dir); err != nil {
		return "", "", err
	}
	base := OutputName(title)

	data, err := json.MarshalIndent(BuildManifest(r, title), "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	manifestPath = filepath.Join(dir, base+".manifest.json")
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write manifest: %w", err)
	}

	reportPath = filepath.Join(dir, base+".report.txt")
	if err := os.WriteFile(reportPath, []byte(Report(r, title)), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write report: %w", err)
	}
	return manifestPath, reportPath, nil
}
