package domain

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AliveStatusSet is the set of status codes whose reference-list entry is
// marked "Live". A filing with one of these codes represents an active
// registration or application.
type AliveStatusSet map[int]struct{}

// Contains reports whether the status code is in the alive set
func (s AliveStatusSet) Contains(status int) bool {
	_, ok := s[status]
	return ok
}

// LoadAliveStatuses reads the status-code reference list. Each line is
// "<code> <description>"; codes whose line contains the token "Live" are
// collected. Blank lines are skipped.
func LoadAliveStatuses(path string) (AliveStatusSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open status code list: %w", err)
	}
	defer file.Close() //nolint:errcheck

	statuses := make(AliveStatusSet)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.Contains(line, "Live") {
			continue
		}

		code, err := strconv.Atoi(strings.Fields(line)[0])
		if err != nil {
			return nil, fmt.Errorf("invalid status code line %q: %w", line, err)
		}
		statuses[code] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status code list: %w", err)
	}

	return statuses, nil
}
