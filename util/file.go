package util

import (
	"os"
	"path/filepath"
	"strings"
)

// WriteToFile writes the contents to savePath one per line, creating the parent folder
func WriteToFile(savePath string, content ...string) error {
	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(savePath, []byte(joinLines(content)), 0644)
}

// AppendToFile appends every content as a line of savePath
func AppendToFile(savePath string, content ...string) error {
	f, err := os.OpenFile(savePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(joinLines(content))
	return err
}

func joinLines(content []string) string {
	if len(content) == 0 {
		return ""
	}
	return strings.Join(content, "\n") + "\n"
}
