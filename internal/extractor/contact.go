package extractor

import (
	"regexp"
	"strings"

	"swipeinterview/internal/model"
)

var (
	emailPattern = regexp.MustCompile(`(?i)[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?(\d{10}|\d{3}[-.\s]\d{3}[-.\s]\d{4})`)
	namePattern  = regexp.MustCompile(`[A-Z][a-z]`)
)

// ParseContactInfo guesses name, email and phone from resume text. Any field
// may come back empty.
func ParseContactInfo(text string) model.ContactInfo {
	info := model.ContactInfo{
		Email: emailPattern.FindString(text),
		Phone: phonePattern.FindString(text),
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// only the first non-empty line is a name candidate
		if info.Email != "" {
			line = strings.Replace(line, info.Email, "", 1)
		}
		if info.Phone != "" {
			line = strings.Replace(line, info.Phone, "", 1)
		}
		line = strings.TrimSpace(line)
		if line != "" && len(strings.Fields(line)) <= 4 && namePattern.MatchString(line) {
			info.Name = line
		}
		break
	}
	return info
}
