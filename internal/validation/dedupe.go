package validation

import (
	"strings"

	"github.com/proteq/go-email-service/internal/domain"
)

// Deduplicate removes repeated recipients by case-insensitive email match,
// keeping the first occurrence's full record and preserving relative order.
// Returns the deduplicated list and the number of entries removed.
func Deduplicate(recipients []domain.Recipient) ([]domain.Recipient, int) {
	seen := make(map[string]struct{}, len(recipients))
	unique := make([]domain.Recipient, 0, len(recipients))

	for _, r := range recipients {
		key := strings.ToLower(r.Email)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}

	return unique, len(recipients) - len(unique)
}
