package editor

import (
	"path/filepath"
	"strings"
)

// PlainText is the language id of documents with no recognised extension.
const PlainText = "plaintext"

var languageByExtension = map[string]string{
	".sh":   "shellscript",
	".bash": "shellscript",
	".zsh":  "shellscript",
	".py":   "python",
	".go":   "go",
	".js":   "javascript",
	".ts":   "typescript",
	".rb":   "ruby",
	".rs":   "rust",
	".md":   "markdown",
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
	".txt":  PlainText,
}

// LanguageForPath guesses a language id from a file name.
func LanguageForPath(path string) string {
	base := filepath.Base(path)
	if base == "Makefile" {
		return "makefile"
	}
	if base == "Dockerfile" {
		return "dockerfile"
	}
	if id, ok := languageByExtension[strings.ToLower(filepath.Ext(base))]; ok {
		return id
	}
	return PlainText
}
