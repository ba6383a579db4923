package tracker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// maxKeyAttempts bounds the check-and-retry loop when deriving a project key.
const maxKeyAttempts = 10

// NextKey formats the key of the next issue in a project from the number of
// keys already issued there: NextKey("PBL", 0) is "PBL-1".
func NextKey(projectKey string, issued int) string {
	return fmt.Sprintf("%s-%d", projectKey, issued+1)
}

// keyPrefix takes up to three leading letters or digits of the project name,
// uppercased, starting at the first letter. Names without letters get "PRJ".
func keyPrefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		if b.Len() == 3 {
			break
		}
		if r > unicode.MaxASCII {
			continue
		}
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsDigit(r) && b.Len() > 0:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "PRJ"
	}
	return b.String()
}
