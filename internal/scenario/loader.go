package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDir loads every scenario file (*.yaml, *.yml) in dir. Invalid
// scenarios are reported as warnings and skipped so one bad file does not
// take down the whole benchmark; unreadable directories and duplicate ids
// are hard errors.
func LoadDir(dir string) ([]*Scenario, []string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil, errors.New("scenario: empty directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario: read dir %q: %w", dir, err)
	}

	var (
		scenarios []*Scenario
		warnings  []string
	)
	seen := make(map[string]string)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		s, err := LoadFile(path)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		if prev, dup := seen[s.ID]; dup {
			return nil, warnings, fmt.Errorf("scenario: duplicate id %q in %s and %s", s.ID, prev, name)
		}
		seen[s.ID] = name
		scenarios = append(scenarios, s)
	}

	if len(scenarios) == 0 {
		return nil, warnings, fmt.Errorf("scenario: no valid scenarios in %q", dir)
	}
	return scenarios, warnings, nil
}

// LoadFile loads and validates a single scenario file.
func LoadFile(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %q: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("scenario: parse %q: %w", path, err)
	}
	if err := Validate(&s); err != nil {
		return nil, fmt.Errorf("scenario: %q: %w", path, err)
	}
	return &s, nil
}

// Validate checks scenario invariants before any unit executes.
func Validate(s *Scenario) error {
	if s == nil {
		return errors.New("nil scenario")
	}
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("missing scenario_id")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("missing name")
	}
	if strings.TrimSpace(s.Category) == "" {
		return errors.New("missing category")
	}
	if len(s.Turns) == 0 {
		return fmt.Errorf("scenario %q has zero scripted turns", s.ID)
	}
	for i, t := range s.Turns {
		if strings.TrimSpace(t.UserMessage) == "" {
			return fmt.Errorf("scenario %q: turn %d has empty user_message", s.ID, i)
		}
	}
	if s.MaxTurns < 0 {
		return fmt.Errorf("scenario %q: negative max_turns", s.ID)
	}
	return nil
}
