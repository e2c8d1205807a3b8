package client

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadTaunts reads a taunt file (spec §6 "-t|--taunt-file <path>"):
// the same key=value grammar as the record store (store.FileStore),
// but addressed directly by path rather than by record id, since a
// taunt file is a standalone client input, not a database record.
// Keys other than "hit" and "miss" are ignored.
func LoadTaunts(path string) (hits, misses []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("client: open taunt file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "hit":
			hits = append(hits, strings.TrimSpace(value))
		case "miss":
			misses = append(misses, strings.TrimSpace(value))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("client: read taunt file: %w", err)
	}
	return hits, misses, nil
}
