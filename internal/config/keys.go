// Package config contains everything related to configuration
package config

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

// assignment matches a .env style line. Bare keys may contain '=' padding,
// so only an identifier before the '=' makes a line an assignment.
var assignment = regexp.MustCompile(`^(export\s+)?[A-Za-z_][A-Za-z0-9_]*\s*=`)

// LoadKeysFile reads API credentials from path. Keys may be one per line or
// comma separated; lines starting with '#' are ignored.
func LoadKeysFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keys file: %w", err)
	}
	return parseKeys(string(content)), nil
}

func parseKeys(content string) []string {
	var keys []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if assignment.MatchString(line) {
			env, err := godotenv.Unmarshal(line)
			if err != nil {
				continue
			}
			for _, value := range env {
				keys = append(keys, SplitList(value)...)
			}
			continue
		}
		keys = append(keys, SplitList(line)...)
	}
	return keys
}
