package naming

import (
	"github.com/pkg/errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	variableRegex   = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
	assignmentRegex = regexp.MustCompile(`(?s)^\s*var\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(.*?)\s*;?\s*$`)
)

// parseAssignment extracts the region name from a statement like `var slRegionName = "Ahern";`. Anything else
// assigned to the variable, like `{'error' : true}` or `null`, means there's no region.
func parseAssignment(body string, variable string) (string, error) {
	matches := assignmentRegex.FindStringSubmatch(body)
	if matches == nil {
		return "", errors.Wrapf(ErrNoLocation, "response is not a variable assignment: %.100q", body)
	}
	if matches[1] != variable {
		return "", errors.Wrapf(ErrNoLocation, "response assigns variable '%s' instead of '%s'", matches[1], variable)
	}

	name, err := unquote(matches[2])
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", errors.Wrap(ErrNoLocation, "region name is empty")
	}

	return name, nil
}

func unquote(value string) (string, error) {
	if len(value) < 2 {
		return "", errors.Wrapf(ErrNoLocation, "value %q is no string", value)
	}

	switch value[0] {
	case '"':
		name, err := strconv.Unquote(value)
		if err != nil {
			return "", errors.Wrapf(ErrNoLocation, "malformed string %q: %v", value, err)
		}
		return name, nil
	case '\'':
		if value[len(value)-1] != '\'' {
			return "", errors.Wrapf(ErrNoLocation, "malformed string %q", value)
		}
		inner := value[1 : len(value)-1]
		inner = strings.ReplaceAll(inner, `\'`, `'`)
		inner = strings.ReplaceAll(inner, `\\`, `\`)
		return inner, nil
	}

	return "", errors.Wrapf(ErrNoLocation, "value %.100s is no string", value)
}
