package branches

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"bankinfo/internal"
)

var ErrInvalidBranchNumber = errors.New("invalid branch number")

var reBranchNumber = regexp.MustCompile(`^([0-9]{3})([0-9]{5})$`)

// ParseBranchNumber splits an 8-digit number into its 3-digit institution
// and 5-digit branch parts.
func ParseBranchNumber(input string) (internal.BranchNumber, error) {
	m := reBranchNumber.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return internal.BranchNumber{}, fmt.Errorf("%w: %q", ErrInvalidBranchNumber, input)
	}
	return internal.BranchNumber{Institution: m[1], Branch: m[2]}, nil
}

// BuildURL returns the lookup page for number under baseURL, as
// <baseURL>/<branch>-<institution>/.
func BuildURL(baseURL, number string) (string, error) {
	n, err := ParseBranchNumber(number)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	return u.JoinPath(n.Branch+"-"+n.Institution).String() + "/", nil
}
