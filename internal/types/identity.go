package types

import (
	"fmt"
	"regexp"
)

// identPattern restricts service identifiers to names that are safe as file
// name stems and stable as map keys: lowercase alphanumerics separated by
// single dashes or underscores.
var identPattern = regexp.MustCompile(`^[a-z0-9]+([_-][a-z0-9]+)*$`)

// ServiceIdent identifies one managed service. It is used as the stable key
// for the service everywhere: in configuration, in file names, and in
// reports.
type ServiceIdent string

// ParseServiceIdent validates s and returns it as a ServiceIdent.
func ParseServiceIdent(s string) (ServiceIdent, error) {
	if s == "" {
		return "", fmt.Errorf("service identifier must not be empty")
	}
	if !identPattern.MatchString(s) {
		return "", fmt.Errorf(
			"invalid service identifier %q: use lowercase letters, digits, '-' and '_'", s)
	}
	return ServiceIdent(s), nil
}

func (i ServiceIdent) String() string {
	return string(i)
}
