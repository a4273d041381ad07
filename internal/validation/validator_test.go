package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/proteq/go-email-service/internal/domain"
	"github.com/proteq/go-email-service/internal/shared/errors"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com.br", true},
		{"financeiro@empresa.gov", true},
		{"aluno@universidade.edu", true},
		{"invalid.email", false},
		{"@example.com", false},
		{"user@", false},
		{"user@example", false},
		{"user@example..com", false},
		{"user@example.xyz", false}, // TLD not in allow-list
		{"user@example.io", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.valid {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.valid)
			}
		})
	}
}

func TestValidateSingle(t *testing.T) {
	valid := func() *domain.SendEmailRequest {
		return &domain.SendEmailRequest{
			To:       "cliente@empresa.com",
			Subject:  "Cobrança pendente",
			Template: "primeira-cobranca",
		}
	}

	t.Run("valid request", func(t *testing.T) {
		if err := ValidateSingle(valid()); err != nil {
			t.Errorf("ValidateSingle() error = %v, want nil", err)
		}
	})

	tests := []struct {
		name      string
		mutate    func(*domain.SendEmailRequest)
		wantField string
		wantCode  string
	}{
		{
			name:      "missing to",
			mutate:    func(r *domain.SendEmailRequest) { r.To = "" },
			wantField: "to",
			wantCode:  errors.CodeValidation,
		},
		{
			name:      "invalid to",
			mutate:    func(r *domain.SendEmailRequest) { r.To = "not-an-email" },
			wantField: "to",
			wantCode:  errors.CodeValidation,
		},
		{
			name:      "empty subject",
			mutate:    func(r *domain.SendEmailRequest) { r.Subject = "" },
			wantField: "subject",
			wantCode:  errors.CodeValidation,
		},
		{
			name:      "subject too long",
			mutate:    func(r *domain.SendEmailRequest) { r.Subject = strings.Repeat("a", 201) },
			wantField: "subject",
			wantCode:  errors.CodeValidation,
		},
		{
			name:      "unknown template",
			mutate:    func(r *domain.SendEmailRequest) { r.Template = "cobranca-90dias" },
			wantField: "template",
			wantCode:  errors.CodeValidation,
		},
		{
			name:      "disposable recipient",
			mutate:    func(r *domain.SendEmailRequest) { r.To = "user@mailinator.com" },
			wantField: "to",
			wantCode:  errors.CodeDisposableEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)

			err := ValidateSingle(req)
			if err == nil {
				t.Fatal("ValidateSingle() expected error")
			}
			if err.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", err.Field, tt.wantField)
			}
			if err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", err.Code, tt.wantCode)
			}
		})
	}
}

func TestValidateSingleDisposableMentionsTemporary(t *testing.T) {
	req := &domain.SendEmailRequest{
		To:       "user@mailinator.com",
		Subject:  "Test",
		Template: "primeira-cobranca",
	}

	err := ValidateSingle(req)
	if err == nil {
		t.Fatal("ValidateSingle() expected error")
	}
	if !strings.Contains(err.Message, "temporário") && !strings.Contains(err.Message, "descartável") {
		t.Errorf("Message = %q, should mention temporary/disposable email", err.Message)
	}
}

func TestValidateSingleSubjectAt200Chars(t *testing.T) {
	req := &domain.SendEmailRequest{
		To:       "cliente@empresa.com",
		Subject:  strings.Repeat("a", 200),
		Template: "primeira-cobranca",
	}

	if err := ValidateSingle(req); err != nil {
		t.Errorf("ValidateSingle() error = %v, subject of exactly 200 chars should pass", err)
	}
}

func bulkRequest(recipients ...domain.Recipient) *domain.BulkEmailRequest {
	return &domain.BulkEmailRequest{
		Recipients: recipients,
		Subject:    "Cobrança pendente",
		Template:   "primeira-cobranca",
	}
}

func TestValidateBulkBounds(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		_, err := ValidateBulk(bulkRequest())
		if err == nil || err.Field != "recipients" {
			t.Fatalf("ValidateBulk() = %v, want error on field recipients", err)
		}
	})

	t.Run("51 recipients rejected before any per-recipient work", func(t *testing.T) {
		recipients := make([]domain.Recipient, 51)
		for i := range recipients {
			recipients[i] = domain.Recipient{Email: fmt.Sprintf("user%d@example.com", i)}
		}

		_, err := ValidateBulk(bulkRequest(recipients...))
		if err == nil {
			t.Fatal("ValidateBulk() expected error for 51 recipients")
		}
		if err.Field != "recipients" {
			t.Errorf("Field = %q, want recipients", err.Field)
		}
		if !strings.Contains(err.Message, "50") {
			t.Errorf("Message = %q, should mention the 50-recipient cap", err.Message)
		}
	})

	t.Run("50 recipients accepted", func(t *testing.T) {
		recipients := make([]domain.Recipient, 50)
		for i := range recipients {
			recipients[i] = domain.Recipient{Email: fmt.Sprintf("user%d@example.com", i)}
		}

		if _, err := ValidateBulk(bulkRequest(recipients...)); err != nil {
			t.Errorf("ValidateBulk() error = %v, want nil", err)
		}
	})
}

func TestValidateBulkInvalidRecipientFieldPath(t *testing.T) {
	req := bulkRequest(
		domain.Recipient{Email: "ok@example.com"},
		domain.Recipient{Email: "broken"},
	)

	_, err := ValidateBulk(req)
	if err == nil {
		t.Fatal("ValidateBulk() expected error")
	}
	if err.Field != "recipients.1.email" {
		t.Errorf("Field = %q, want recipients.1.email", err.Field)
	}
}

func TestValidateBulkDisposableReportsAllPositions(t *testing.T) {
	req := bulkRequest(
		domain.Recipient{Email: "ok@example.com"},
		domain.Recipient{Email: "a@mailinator.com"},
		domain.Recipient{Email: "b@tempmail.org"},
	)

	_, err := ValidateBulk(req)
	if err == nil {
		t.Fatal("ValidateBulk() expected error")
	}
	if err.Code != errors.CodeDisposableEmail {
		t.Errorf("Code = %q, want %q", err.Code, errors.CodeDisposableEmail)
	}
	if err.Field != "recipients" {
		t.Errorf("Field = %q, want recipients", err.Field)
	}
	for _, want := range []string{"Posição 2: a@mailinator.com", "Posição 3: b@tempmail.org"} {
		if !strings.Contains(err.Message, want) {
			t.Errorf("Message = %q, missing %q", err.Message, want)
		}
	}
}

func TestValidateBulkDeduplicates(t *testing.T) {
	req := bulkRequest(
		domain.Recipient{Email: "a@x.com"},
		domain.Recipient{Email: "A@X.COM"},
		domain.Recipient{Email: "b@y.com"},
	)

	removed, err := ValidateBulk(req)
	if err != nil {
		t.Fatalf("ValidateBulk() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("duplicatesRemoved = %d, want 1", removed)
	}
	if len(req.Recipients) != 2 {
		t.Fatalf("len(Recipients) = %d, want 2", len(req.Recipients))
	}
	if req.Recipients[0].Email != "a@x.com" || req.Recipients[1].Email != "b@y.com" {
		t.Errorf("deduplicated order = [%s, %s], want [a@x.com, b@y.com]",
			req.Recipients[0].Email, req.Recipients[1].Email)
	}
}

func TestValidatePreview(t *testing.T) {
	if err := ValidatePreview(&domain.PreviewRequest{Template: "cobranca-7dias"}); err != nil {
		t.Errorf("ValidatePreview() error = %v, want nil", err)
	}

	err := ValidatePreview(&domain.PreviewRequest{Template: "unknown-template"})
	if err == nil {
		t.Fatal("ValidatePreview() expected error for unknown template")
	}
	if err.Field != "template" {
		t.Errorf("Field = %q, want template", err.Field)
	}
}
