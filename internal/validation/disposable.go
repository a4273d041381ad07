package validation

import (
	"fmt"
	"strings"

	"github.com/proteq/go-email-service/internal/domain"
)

// Domains known for providing throwaway mailboxes. Matching is a
// case-insensitive substring test on the address domain.
var disposableDomains = []string{
	"10minutemail.com",
	"tempmail.org",
	"guerrillamail.com",
	"mailinator.com",
	"throwaway.email",
	"temp-mail.org",
}

// IsDisposableEmail reports whether the address domain matches the denylist
func IsDisposableEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}

	domainPart := strings.ToLower(email[at+1:])
	for _, d := range disposableDomains {
		if strings.Contains(domainPart, d) {
			return true
		}
	}
	return false
}

// findDisposable collects every disposable recipient with its 1-based
// position, formatted for the rejection message
func findDisposable(recipients []domain.Recipient) []string {
	var offenders []string
	for i, r := range recipients {
		if IsDisposableEmail(r.Email) {
			offenders = append(offenders, fmt.Sprintf("Posição %d: %s", i+1, r.Email))
		}
	}
	return offenders
}
