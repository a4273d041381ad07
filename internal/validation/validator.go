package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/proteq/go-email-service/internal/domain"
	"github.com/proteq/go-email-service/internal/metrics"
	"github.com/proteq/go-email-service/internal/shared/errors"
	"github.com/proteq/go-email-service/internal/template"
)

const (
	maxSubjectLength = 200
	maxBulkRecipients = 50
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Top-level domains accepted for recipient addresses
var allowedTLDs = map[string]struct{}{
	"com": {}, "net": {}, "org": {}, "br": {}, "gov": {}, "edu": {}, "mil": {},
}

// IsValidEmail reports whether the address matches the restricted email
// grammar: RFC-shaped local@domain with at least two domain segments and an
// allow-listed top-level domain.
func IsValidEmail(email string) bool {
	if !emailPattern.MatchString(email) {
		return false
	}

	domainPart := email[strings.LastIndex(email, "@")+1:]
	labels := strings.Split(domainPart, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}

	tld := strings.ToLower(labels[len(labels)-1])
	_, ok := allowedTLDs[tld]
	return ok
}

// ValidateSingle checks a single-send request. Validation is fail-fast:
// the first violation is reported with its field path and nothing further
// is inspected.
func ValidateSingle(req *domain.SendEmailRequest) *errors.AppError {
	if req.To == "" {
		return errors.NewValidationError(`"to" is required`, "to")
	}
	if !IsValidEmail(req.To) {
		return errors.NewValidationError(`"to" must be a valid email`, "to")
	}
	if err := validateSubject(req.Subject); err != nil {
		return err
	}
	if err := validateTemplate(req.Template); err != nil {
		return err
	}

	if IsDisposableEmail(req.To) {
		metrics.DisposableRejected.Inc()
		return errors.NewDisposableEmailError("Email temporário ou descartável não permitido", "to")
	}

	return nil
}

// ValidateBulk checks a bulk-send request, rejects disposable recipients
// (reporting every offending position), and deduplicates the recipient list
// in place. Length bounds are enforced before any per-recipient work; a
// violation fails the whole request.
func ValidateBulk(req *domain.BulkEmailRequest) (int, *errors.AppError) {
	if len(req.Recipients) == 0 {
		return 0, errors.NewValidationError(`"recipients" must contain at least 1 items`, "recipients")
	}
	if len(req.Recipients) > maxBulkRecipients {
		return 0, errors.NewValidationError(
			fmt.Sprintf(`"recipients" must contain less than or equal to %d items`, maxBulkRecipients),
			"recipients",
		)
	}

	for i, r := range req.Recipients {
		if r.Email == "" {
			return 0, errors.NewValidationError(
				fmt.Sprintf(`"recipients[%d].email" is required`, i),
				fmt.Sprintf("recipients.%d.email", i),
			)
		}
		if !IsValidEmail(r.Email) {
			return 0, errors.NewValidationError(
				fmt.Sprintf(`"recipients[%d].email" must be a valid email`, i),
				fmt.Sprintf("recipients.%d.email", i),
			)
		}
	}

	if err := validateSubject(req.Subject); err != nil {
		return 0, err
	}
	if err := validateTemplate(req.Template); err != nil {
		return 0, err
	}

	if offenders := findDisposable(req.Recipients); len(offenders) > 0 {
		metrics.DisposableRejected.Inc()
		return 0, errors.NewDisposableEmailError(
			"Emails temporários encontrados: "+strings.Join(offenders, ", "),
			"recipients",
		)
	}

	unique, removed := Deduplicate(req.Recipients)
	req.Recipients = unique

	return removed, nil
}

// ValidatePreview checks a template preview request
func ValidatePreview(req *domain.PreviewRequest) *errors.AppError {
	return validateTemplate(req.Template)
}

func validateSubject(subject string) *errors.AppError {
	if subject == "" {
		return errors.NewValidationError(`"subject" is not allowed to be empty`, "subject")
	}
	if len([]rune(subject)) > maxSubjectLength {
		return errors.NewValidationError(
			fmt.Sprintf(`"subject" length must be less than or equal to %d characters long`, maxSubjectLength),
			"subject",
		)
	}
	return nil
}

func validateTemplate(name string) *errors.AppError {
	if name == "" {
		return errors.NewValidationError(`"template" is required`, "template")
	}
	if !template.IsValid(name) {
		return errors.NewValidationError(
			fmt.Sprintf(`"template" must be one of [%s]`, strings.Join(template.Names, ", ")),
			"template",
		)
	}
	return nil
}
