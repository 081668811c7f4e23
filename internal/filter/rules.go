package filter

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// rulesFile is the YAML layout of a filter rules file:
//
//	files:
//	  internal/record/parse.go:
//	    - "10-40"
//	    - "97"
type rulesFile struct {
	Files map[string][]string `yaml:"files"`
}

// LoadRules builds a filter from a YAML rules file. Each entry is either a
// single line ("97") or an inclusive range ("10-40").
func LoadRules(path string) (*LineFilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	var rules rulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	f := New()
	for file, specs := range rules.Files {
		for _, spec := range specs {
			start, end, err := ParseRange(spec)
			if err != nil {
				return nil, fmt.Errorf("file %q: %w", file, err)
			}
			f.Add(file, start, end)
		}
	}
	return f, nil
}

// ParseRange parses a "start-end" or single "line" spec.
func ParseRange(spec string) (start, end int, err error) {
	first, second, isRange := strings.Cut(spec, "-")

	start, err = strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid line range %q: %w", spec, err)
	}
	if !isRange {
		return start, start, nil
	}

	end, err = strconv.Atoi(strings.TrimSpace(second))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid line range %q: %w", spec, err)
	}
	if start > end {
		return 0, 0, fmt.Errorf("invalid line range %q: start after end", spec)
	}
	return start, end, nil
}
