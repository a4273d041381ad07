package domain

import (
	"encoding/json"
	"strings"
)

// Default values substituted during recipient normalization
const (
	DefaultClientName   = "Cliente"
	DefaultNotInformed  = "Não informado"
	DefaultInstallments = "0 parcelas"
	DefaultPaymentLink  = "#"
)

// Recipient is the canonical recipient record. On the wire it is either a
// bare email string or a detailed object; UnmarshalJSON folds both shapes
// into this one type before any business logic touches it.
type Recipient struct {
	Email             string         `json:"email"`
	NomeResponsavel   string         `json:"nomeResponsavel,omitempty"`
	NomeEmpresa       string         `json:"nomeEmpresa,omitempty"`
	CNPJ              string         `json:"cnpj,omitempty"`
	ValorPendente     StringOrNumber `json:"valorPendente,omitempty"`
	ParcelasAtraso    string         `json:"parcelasAtraso,omitempty"`
	ProximoVencimento string         `json:"proximoVencimento,omitempty"`
	DataVencimento    string         `json:"dataVencimento,omitempty"`
	LinkPagamento     *string        `json:"linkPagamento,omitempty"`
}

// UnmarshalJSON accepts a bare email string or a detailed recipient object
func (r *Recipient) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var email string
		if err := json.Unmarshal(data, &email); err != nil {
			return err
		}
		*r = Recipient{Email: email}
		return nil
	}

	type recipientAlias Recipient
	var alias recipientAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*r = Recipient(alias)
	return nil
}

// TemplateVariables shapes the recipient into the billing template variables,
// filling defaults for absent optional fields. Never fails; a missing email
// is caught later by schema validation.
func (r *Recipient) TemplateVariables() map[string]string {
	dataVencimento := r.ProximoVencimento
	if dataVencimento == "" {
		dataVencimento = r.DataVencimento
	}
	if dataVencimento == "" {
		dataVencimento = DefaultNotInformed
	}

	vars := map[string]string{
		"nomeCliente":    orDefault(r.NomeResponsavel, DefaultClientName),
		"nomeEmpresa":    r.NomeEmpresa,
		"cnpj":           orDefault(r.CNPJ, DefaultNotInformed),
		"valorPendente":  FormatCurrencyBR(string(r.ValorPendente)),
		"parcelasAtraso": orDefault(r.ParcelasAtraso, DefaultInstallments),
		"dataVencimento": dataVencimento,
		"linkPagamento":  DefaultPaymentLink,
	}

	if r.LinkPagamento != nil && *r.LinkPagamento != "" {
		vars["linkPagamento"] = *r.LinkPagamento
	}

	return vars
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// StringOrNumber decodes a JSON string or number into its textual form
type StringOrNumber string

// UnmarshalJSON accepts "1.234,56", 1234.56 or null
func (s *StringOrNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = StringOrNumber(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = StringOrNumber(n.String())
	return nil
}

// FormatCurrencyBR normalizes a pending amount into Brazilian currency
// notation with thousands separators ("R$ 1.234,56"). Empty input renders
// the zero amount.
func FormatCurrencyBR(value string) string {
	if strings.TrimSpace(value) == "" {
		return "R$ 0,00"
	}

	clean := strings.TrimSpace(strings.ReplaceAll(value, "R$", ""))

	// Numeric JSON values arrive with a dot decimal separator
	if !strings.Contains(clean, ",") {
		if i := strings.LastIndex(clean, "."); i >= 0 && len(clean)-i-1 <= 2 {
			clean = clean[:i] + "," + clean[i+1:]
		}
	}

	parts := strings.SplitN(clean, ",", 2)
	integer := strings.ReplaceAll(parts[0], ".", "")
	decimal := "00"
	if len(parts) == 2 && parts[1] != "" {
		decimal = parts[1]
		if len(decimal) == 1 {
			decimal += "0"
		}
	}

	return "R$ " + groupThousands(integer) + "," + decimal
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
