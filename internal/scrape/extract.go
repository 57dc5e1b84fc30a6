package scrape

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bankinfo/internal"
	"bankinfo/internal/util"
)

var ErrMissingAddress = errors.New("address not found in page description")

var (
	reMetaDescription = regexp.MustCompile(`(?i)<meta.name="description"[\s\S]*?content="([^"]*)"`)
	// A label starts the content or follows one of , ; . | and ends with a colon.
	reLabel = regexp.MustCompile(`(?i)(?:^|[,;.|])\s*([a-z][a-z ]*?)[ |]*:[ |]*`)
)

// Words that end a label. Other "word:" pairs stay part of the value, so
// "Suite: 5" inside an address does not cut it.
var labelWords = []string{
	"branch", "address", "phone", "telephone", "fax", "transit", "institution",
	"number", "code", "bank", "city", "province", "swift", "micr", "email", "website", "hours",
}

var looseLabels = map[string]*regexp.Regexp{
	"branch":  regexp.MustCompile(`(?i)branch[ |]*:[ |]*(.*[^\s,.])`),
	"address": regexp.MustCompile(`(?i)address[ |]*:[ |]*(.*[^\s,.])`),
}

// ExtractionError reports a page whose description carries no address.
type ExtractionError struct {
	BranchName  string
	Description string
}

func (e *ExtractionError) Error() string {
	msg := ErrMissingAddress.Error()
	if e.BranchName != "" {
		msg += fmt.Sprintf(" (branch name %q)", e.BranchName)
	}
	if e.Description == "" {
		return msg + ": page has no description"
	}
	desc := []rune(e.Description)
	if len(desc) > 120 {
		desc = append(desc[:120], []rune("...")...)
	}
	return msg + fmt.Sprintf(": description %q", string(desc))
}

func (e *ExtractionError) Unwrap() error {
	return ErrMissingAddress
}

// ExtractAddress pulls the branch name and address out of the page's meta
// description. The branch name is dropped when the address already contains
// it, and folded in front of the address when it contains a digit.
func ExtractAddress(body string) (internal.ScrapedAddress, error) {
	description := MetaDescription(body)
	segments := labelSegments(description)

	branchName := labelValue(description, segments, "branch")
	address := labelValue(description, segments, "address")
	if address == "" {
		return internal.ScrapedAddress{}, &ExtractionError{BranchName: branchName, Description: description}
	}

	return normalizeAddress(internal.ScrapedAddress{BranchName: branchName, Address: address}), nil
}

// MetaDescription returns the content of <meta name="description">, or ""
// when the page has none.
func MetaDescription(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err == nil {
		content := ""
		found := false
		doc.Find("meta[content]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			name, _ := s.Attr("name")
			if !strings.EqualFold(strings.TrimSpace(name), "description") {
				return true
			}
			content, found = s.Attr("content")
			return false
		})
		if found {
			return content
		}
	}
	if m := reMetaDescription.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}

type segment struct {
	label string
	value string
}

func labelSegments(content string) []segment {
	locs := knownLabels(content)
	out := make([]segment, 0, len(locs))
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out = append(out, segment{
			label: labelText(content, loc),
			value: content[loc[1]:end],
		})
	}
	return out
}

// knownLabels returns the reLabel matches whose label ends in a labelWords entry.
func knownLabels(content string) [][]int {
	var out [][]int
	for _, loc := range reLabel.FindAllStringSubmatchIndex(content, -1) {
		label := labelText(content, loc)
		for _, word := range labelWords {
			if label == word || strings.HasSuffix(label, " "+word) {
				out = append(out, loc)
				break
			}
		}
	}
	return out
}

func labelText(content string, loc []int) string {
	return strings.ToLower(util.NormalizeText(content[loc[2]:loc[3]]))
}

func labelValue(content string, segments []segment, key string) string {
	for _, s := range segments {
		if s.label == key || strings.HasSuffix(s.label, " "+key) {
			return cleanValue(s.value)
		}
	}
	if m := looseLabels[key].FindStringSubmatch(content); m != nil {
		value := m[1]
		// The loose pattern runs to the end of the line; stop at the next label.
		if locs := knownLabels(value); len(locs) > 0 {
			value = value[:locs[0][0]]
		}
		return cleanValue(value)
	}
	return ""
}

func cleanValue(value string) string {
	if i := strings.IndexAny(value, "\r\n"); i >= 0 {
		value = value[:i]
	}
	return util.NormalizeText(util.TrimValueTail(value))
}

func normalizeAddress(a internal.ScrapedAddress) internal.ScrapedAddress {
	if strings.Contains(a.Address, a.BranchName) {
		a.BranchName = ""
	}
	if util.ContainsDigit(a.BranchName) {
		a.Address = a.BranchName + " " + a.Address
		a.BranchName = ""
	}
	return a
}
