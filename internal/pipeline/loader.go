package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxInputBytes caps the size of any input file. Papers are text; anything
// larger is almost certainly the wrong file.
const MaxInputBytes = 10 << 20

// LoadedFile is one input read from disk, normalized for parsing.
type LoadedFile struct {
	Path    string
	Subject string // Base name without extension, used in report headers
	Text    string
}

// LoadDocument reads and normalizes a paper file. Failures here belong to the
// fatal input class: no report is produced.
func LoadDocument(path string) (*LoadedFile, error) {
	return loadText(path, "paper")
}

// LoadBibliography reads and normalizes a BibTeX file.
func LoadBibliography(path string) (*LoadedFile, error) {
	return loadText(path, "bibliography")
}

func loadText(path, role string) (*LoadedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", role, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("read %s %s: is a directory", role, path)
	}
	if info.Size() > MaxInputBytes {
		return nil, fmt.Errorf("read %s %s: file is %d bytes, limit is %d", role, path, info.Size(), MaxInputBytes)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", role, path, err)
	}
	text, err := normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", role, path, err)
	}

	return &LoadedFile{
		Path:    path,
		Subject: subjectFromPath(path),
		Text:    text,
	}, nil
}

// normalize strips a UTF-8 BOM, rejects invalid UTF-8, and folds CRLF line
// endings to LF so line math stays consistent downstream.
func normalize(raw []byte) (string, error) {
	text := strings.TrimPrefix(string(raw), "\ufeff")
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("not valid UTF-8 text")
	}
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}

// subjectFromPath turns paths/my-paper.md into "my-paper".
func subjectFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FindBibliography looks for a bibliography next to the paper when none was
// given explicitly: first <paper-stem>.bib, then references.bib in the same
// directory. Returns "" when neither exists.
func FindBibliography(paperPath string) string {
	dir := filepath.Dir(paperPath)
	stem := strings.TrimSuffix(filepath.Base(paperPath), filepath.Ext(paperPath))

	for _, candidate := range []string{
		filepath.Join(dir, stem+".bib"),
		filepath.Join(dir, "references.bib"),
	} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
