package domain

import (
	"encoding/json"
	"testing"
)

func TestRecipientUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantEmail string
		wantNome  string
	}{
		{
			name:      "bare email string",
			input:     `"financeiro@empresa.com.br"`,
			wantEmail: "financeiro@empresa.com.br",
		},
		{
			name:      "detailed object",
			input:     `{"email":"contato@empresa.com","nomeResponsavel":"Maria Souza"}`,
			wantEmail: "contato@empresa.com",
			wantNome:  "Maria Souza",
		},
		{
			name:      "object without email",
			input:     `{"nomeResponsavel":"Maria Souza"}`,
			wantEmail: "",
			wantNome:  "Maria Souza",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Recipient
			if err := json.Unmarshal([]byte(tt.input), &r); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if r.Email != tt.wantEmail {
				t.Errorf("Email = %q, want %q", r.Email, tt.wantEmail)
			}
			if r.NomeResponsavel != tt.wantNome {
				t.Errorf("NomeResponsavel = %q, want %q", r.NomeResponsavel, tt.wantNome)
			}
		})
	}
}

func TestRecipientUnmarshalJSON_ValorPendenteShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string amount", `{"email":"a@b.com","valorPendente":"1500,00"}`, "1500,00"},
		{"numeric amount", `{"email":"a@b.com","valorPendente":1500.5}`, "1500.5"},
		{"integer amount", `{"email":"a@b.com","valorPendente":200}`, "200"},
		{"null amount", `{"email":"a@b.com","valorPendente":null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Recipient
			if err := json.Unmarshal([]byte(tt.input), &r); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if string(r.ValorPendente) != tt.want {
				t.Errorf("ValorPendente = %q, want %q", r.ValorPendente, tt.want)
			}
		})
	}
}

func TestTemplateVariablesDefaults(t *testing.T) {
	r := Recipient{Email: "cliente@empresa.com"}
	vars := r.TemplateVariables()

	expected := map[string]string{
		"nomeCliente":    "Cliente",
		"nomeEmpresa":    "",
		"cnpj":           "Não informado",
		"valorPendente":  "R$ 0,00",
		"parcelasAtraso": "0 parcelas",
		"dataVencimento": "Não informado",
		"linkPagamento":  "#",
	}

	for key, want := range expected {
		if got := vars[key]; got != want {
			t.Errorf("vars[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestTemplateVariablesFilled(t *testing.T) {
	link := "https://pagamento.example.com/fatura/123"
	r := Recipient{
		Email:             "contato@acme.com.br",
		NomeResponsavel:   "João Lima",
		NomeEmpresa:       "ACME Ltda",
		CNPJ:              "12.345.678/0001-90",
		ValorPendente:     "12500,90",
		ParcelasAtraso:    "3 parcelas",
		ProximoVencimento: "10/10/2026",
		LinkPagamento:     &link,
	}

	vars := r.TemplateVariables()

	if vars["nomeCliente"] != "João Lima" {
		t.Errorf("nomeCliente = %q", vars["nomeCliente"])
	}
	if vars["valorPendente"] != "R$ 12.500,90" {
		t.Errorf("valorPendente = %q, want R$ 12.500,90", vars["valorPendente"])
	}
	if vars["dataVencimento"] != "10/10/2026" {
		t.Errorf("dataVencimento = %q", vars["dataVencimento"])
	}
	if vars["linkPagamento"] != link {
		t.Errorf("linkPagamento = %q", vars["linkPagamento"])
	}
}

func TestTemplateVariablesEmptyLinkFallsBack(t *testing.T) {
	empty := ""
	r := Recipient{Email: "a@b.com", LinkPagamento: &empty}

	if got := r.TemplateVariables()["linkPagamento"]; got != "#" {
		t.Errorf("linkPagamento = %q, want #", got)
	}
}

func TestFormatCurrencyBR(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "R$ 0,00"},
		{"   ", "R$ 0,00"},
		{"1500", "R$ 1.500,00"},
		{"1500,5", "R$ 1.500,50"},
		{"1234567,89", "R$ 1.234.567,89"},
		{"R$ 950,00", "R$ 950,00"},
		{"1500.50", "R$ 1.500,50"},
		{"200", "R$ 200,00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FormatCurrencyBR(tt.input); got != tt.want {
				t.Errorf("FormatCurrencyBR(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
