// Package analyzer matches crawled titles against configured word groups
// and derives trending topics from the matches.
package analyzer

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// WordGroup is one block of frequency_words.txt. A title matches the
// group when it contains any normal word, contains every required word,
// and contains no filter word.
type WordGroup struct {
	Label    string   // first normal word, used as the topic name
	Words    []string // normal words, any-of
	Required []string // +word, all-of
	Filtered []string // !word, none-of
}

// ParseWordGroups reads blank-line separated word groups. Lines starting
// with '+' are required words, lines starting with '!' are filter words,
// '#' lines are comments.
func ParseWordGroups(r *bufio.Scanner) ([]WordGroup, error) {
	var (
		groups  []WordGroup
		current WordGroup
	)

	flush := func() {
		if len(current.Words) == 0 && len(current.Required) == 0 {
			current = WordGroup{}
			return
		}
		if current.Label == "" {
			if len(current.Words) > 0 {
				current.Label = current.Words[0]
			} else {
				current.Label = current.Required[0]
			}
		}
		groups = append(groups, current)
		current = WordGroup{}
	}

	for r.Scan() {
		line := strings.TrimSpace(r.Text())
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "+"):
			word := strings.TrimSpace(line[1:])
			if word != "" {
				current.Required = append(current.Required, Normalize(word))
			}
		case strings.HasPrefix(line, "!"):
			word := strings.TrimSpace(line[1:])
			if word != "" {
				current.Filtered = append(current.Filtered, Normalize(word))
			}
		default:
			current.Words = append(current.Words, Normalize(line))
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	flush()

	return groups, nil
}

// LoadWordGroups parses the frequency words file at path. A missing file
// yields no groups rather than an error, matching a fresh deployment
// without keyword configuration.
func LoadWordGroups(path string) ([]WordGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open word groups: %w", err)
	}
	defer f.Close()

	groups, err := ParseWordGroups(bufio.NewScanner(f))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return groups, nil
}

// Matches reports whether the normalized title satisfies the group.
func (g WordGroup) Matches(normalizedTitle string) bool {
	for _, word := range g.Filtered {
		if strings.Contains(normalizedTitle, word) {
			return false
		}
	}
	for _, word := range g.Required {
		if !strings.Contains(normalizedTitle, word) {
			return false
		}
	}
	if len(g.Words) == 0 {
		return len(g.Required) > 0
	}
	for _, word := range g.Words {
		if strings.Contains(normalizedTitle, word) {
			return true
		}
	}
	return false
}
