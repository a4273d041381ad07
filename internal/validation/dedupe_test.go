package validation

import (
	"testing"

	"github.com/proteq/go-email-service/internal/domain"
)

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name        string
		emails      []string
		wantEmails  []string
		wantRemoved int
	}{
		{
			name:        "no duplicates",
			emails:      []string{"a@x.com", "b@y.com"},
			wantEmails:  []string{"a@x.com", "b@y.com"},
			wantRemoved: 0,
		},
		{
			name:        "case-insensitive duplicate",
			emails:      []string{"a@x.com", "A@X.COM", "b@y.com"},
			wantEmails:  []string{"a@x.com", "b@y.com"},
			wantRemoved: 1,
		},
		{
			name:        "multiple duplicates keep first occurrence order",
			emails:      []string{"c@z.com", "a@x.com", "c@Z.com", "b@y.com", "a@x.com", "C@Z.COM"},
			wantEmails:  []string{"c@z.com", "a@x.com", "b@y.com"},
			wantRemoved: 3,
		},
		{
			name:        "single entry",
			emails:      []string{"a@x.com"},
			wantEmails:  []string{"a@x.com"},
			wantRemoved: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipients := make([]domain.Recipient, len(tt.emails))
			for i, e := range tt.emails {
				recipients[i] = domain.Recipient{Email: e}
			}

			unique, removed := Deduplicate(recipients)

			if removed != tt.wantRemoved {
				t.Errorf("removed = %d, want %d", removed, tt.wantRemoved)
			}
			if len(unique) != len(tt.wantEmails) {
				t.Fatalf("len(unique) = %d, want %d", len(unique), len(tt.wantEmails))
			}
			for i, want := range tt.wantEmails {
				if unique[i].Email != want {
					t.Errorf("unique[%d].Email = %q, want %q", i, unique[i].Email, want)
				}
			}
		})
	}
}

func TestDeduplicateKeepsFirstOccurrenceRecord(t *testing.T) {
	recipients := []domain.Recipient{
		{Email: "a@x.com", NomeResponsavel: "Primeira"},
		{Email: "A@X.COM", NomeResponsavel: "Segunda"},
	}

	unique, removed := Deduplicate(recipients)

	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if unique[0].NomeResponsavel != "Primeira" {
		t.Errorf("kept record = %q, want the first occurrence", unique[0].NomeResponsavel)
	}
}
