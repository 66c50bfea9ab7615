package intake

import "regexp"

// emailPattern accepts local@domain where the local part is dot-separated
// atoms or a quoted string, and the domain is a bracketed IPv4 literal or a
// label sequence ending in a TLD of at least two letters.
var emailPattern = regexp.MustCompile(`(?i)^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|.(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-z\-0-9]+\.)+[a-z]{2,}))$`)

// ValidEmail reports whether text passes the intake email syntax check.
func ValidEmail(text string) bool {
	if text == "" {
		return false
	}
	return emailPattern.MatchString(text)
}
