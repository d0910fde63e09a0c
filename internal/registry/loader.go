package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// reducedPrecisionMarkers rank file names: earlier markers win.
var reducedPrecisionMarkers = []string{"bf16", "f16"}

// Scan lists the *.gguf files directly inside dir, sorted by name.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// Resolve maps a checkpoint path to the weights file to load. A file is
// returned as is. A directory resolves to the reduced-precision *.gguf inside
// it, or the first one by name. Stat errors are returned unmodified.
func Resolve(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return path, nil
	}
	files, err := Scan(path)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no .gguf checkpoint in %s: %w", path, os.ErrNotExist)
	}
	return pick(files), nil
}

func pick(files []string) string {
	for _, m := range reducedPrecisionMarkers {
		for _, f := range files {
			if strings.Contains(strings.ToLower(filepath.Base(f)), m) {
				return f
			}
		}
	}
	return files[0]
}
