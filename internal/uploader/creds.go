package uploader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadCaption reads the optional caption.txt and hashtags.txt from dir.
// Absent files simply yield empty strings.
func LoadCaption(dir string) (caption, hashtags string) {
	caption = readTrimmed(filepath.Join(dir, "caption.txt"))
	hashtags = readTrimmed(filepath.Join(dir, "hashtags.txt"))
	return caption, hashtags
}

// LoadCredential returns the credential stored at path, or prompts for it
// on the given streams and optionally persists the answer for future runs.
func LoadCredential(path, label string, in io.Reader, out io.Writer) (string, error) {
	if v := readTrimmed(path); v != "" {
		return v, nil
	}

	r := bufio.NewReader(in)
	fmt.Fprintf(out, "Please enter your %s: ", label)
	value, err := readLine(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	if value == "" {
		return "", fmt.Errorf("%s is required", label)
	}

	fmt.Fprintf(out, "Save %s for future use? (y/n): ", label)
	answer, err := readLine(r)
	if err == nil && strings.EqualFold(answer, "y") {
		if werr := os.WriteFile(path, []byte(value), 0o600); werr != nil {
			fmt.Fprintf(out, "could not save %s: %v\n", label, werr)
		}
	}
	return value, nil
}

func readTrimmed(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
