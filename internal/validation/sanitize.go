package validation

import (
	"regexp"
	"strings"

	"github.com/proteq/go-email-service/internal/domain"
)

var javascriptScheme = regexp.MustCompile(`(?i)javascript:`)

// SanitizeString strips angle brackets and javascript: URI prefixes and
// trims surrounding whitespace. Clean input passes through unchanged.
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	s = javascriptScheme.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SanitizeSingle sanitizes every string-valued field of a single-send request
func SanitizeSingle(req *domain.SendEmailRequest) {
	req.To = SanitizeString(req.To)
	req.Subject = SanitizeString(req.Subject)
	req.Template = SanitizeString(req.Template)
	sanitizeVariables(req.Variables)
}

// SanitizeBulk sanitizes every string-valued field of a bulk-send request,
// recursing through the recipient list
func SanitizeBulk(req *domain.BulkEmailRequest) {
	req.Subject = SanitizeString(req.Subject)
	req.Template = SanitizeString(req.Template)
	sanitizeVariables(req.Variables)

	for i := range req.Recipients {
		sanitizeRecipient(&req.Recipients[i])
	}
}

// SanitizePreview sanitizes a preview request
func SanitizePreview(req *domain.PreviewRequest) {
	req.Template = SanitizeString(req.Template)
	sanitizeVariables(req.Variables)
}

func sanitizeRecipient(r *domain.Recipient) {
	r.Email = SanitizeString(r.Email)
	r.NomeResponsavel = SanitizeString(r.NomeResponsavel)
	r.NomeEmpresa = SanitizeString(r.NomeEmpresa)
	r.CNPJ = SanitizeString(r.CNPJ)
	r.ValorPendente = domain.StringOrNumber(SanitizeString(string(r.ValorPendente)))
	r.ParcelasAtraso = SanitizeString(r.ParcelasAtraso)
	r.ProximoVencimento = SanitizeString(r.ProximoVencimento)
	r.DataVencimento = SanitizeString(r.DataVencimento)
	if r.LinkPagamento != nil {
		clean := SanitizeString(*r.LinkPagamento)
		r.LinkPagamento = &clean
	}
}

func sanitizeVariables(vars map[string]any) {
	for key, value := range vars {
		vars[key] = sanitizeValue(value)
	}
}

func sanitizeValue(value any) any {
	switch v := value.(type) {
	case string:
		return SanitizeString(v)
	case []any:
		for i := range v {
			v[i] = sanitizeValue(v[i])
		}
		return v
	case map[string]any:
		for key, inner := range v {
			v[key] = sanitizeValue(inner)
		}
		return v
	default:
		return value
	}
}
