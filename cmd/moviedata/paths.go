package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"moviedata/internal/config"
)

// resolvePaths expands input and output. An empty output becomes
// "<input>_<suffix>.csv" beside the input; an empty suffix leaves it empty.
func resolvePaths(input, output, suffix string) (string, string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", errors.New("input path is required")
	}
	in, err := config.ExpandPath(input)
	if err != nil {
		return "", "", fmt.Errorf("resolve input path: %w", err)
	}

	output = strings.TrimSpace(output)
	if output == "" {
		if suffix == "" {
			return in, "", nil
		}
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		return in, filepath.Join(filepath.Dir(in), fmt.Sprintf("%s_%s.csv", base, suffix)), nil
	}
	out, err := config.ExpandPath(output)
	if err != nil {
		return "", "", fmt.Errorf("resolve output path: %w", err)
	}
	if out == in {
		return "", "", errors.New("output path must differ from input path")
	}
	return in, out, nil
}
