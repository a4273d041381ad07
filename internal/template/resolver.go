package template

import (
	"embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/proteq/go-email-service/internal/shared/errors"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Names is the closed set of template identifiers. The mapping to stored
// documents is static configuration, not user data.
var Names = []string{
	"primeira-cobranca",
	"cobranca-7dias",
	"cobranca-15dias",
	"cobranca-30dias",
	"solicitacao-contato",
}

// IsValid reports whether name belongs to the template enum
func IsValid(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Info describes a template for the listing endpoint
type Info struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// List returns the available templates in declaration order
func List() []Info {
	infos := make([]Info, 0, len(Names))
	for _, n := range Names {
		infos = append(infos, Info{
			Name:        n,
			DisplayName: strings.ToUpper(n[:1]) + n[1:],
		})
	}
	return infos
}

var placeholderPattern = regexp.MustCompile(`\{\{[^{}]*\}\}`)

// Resolver maps template identifiers to stored HTML documents and performs
// variable substitution
type Resolver struct {
	mu    sync.RWMutex
	cache map[string]string
}

// NewResolver creates a resolver over the embedded template set
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string]string)}
}

// Resolve returns the raw HTML document for a template identifier.
// The schema validator already restricts the enum, but the resolver defends
// against unknown names independently.
func (r *Resolver) Resolve(name string) (string, error) {
	if !IsValid(name) {
		return "", errors.NewTemplateNotFoundError(name)
	}

	r.mu.RLock()
	html, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return html, nil
	}

	raw, err := templatesFS.ReadFile("templates/" + name + ".html")
	if err != nil {
		return "", errors.NewTemplateNotFoundError(name)
	}

	r.mu.Lock()
	r.cache[name] = string(raw)
	r.mu.Unlock()

	return string(raw), nil
}

// Render resolves the template and substitutes named placeholders. The
// current year is always injected; placeholders left unresolved are stripped
// so raw tokens never leak into the output.
func (r *Resolver) Render(name string, vars map[string]string) (string, error) {
	html, err := r.Resolve(name)
	if err != nil {
		return "", err
	}

	for key, value := range vars {
		html = strings.ReplaceAll(html, "{{"+key+"}}", value)
	}
	html = strings.ReplaceAll(html, "{{currentYear}}", strconv.Itoa(time.Now().Year()))

	return placeholderPattern.ReplaceAllString(html, ""), nil
}

// Stringify flattens free-form request variables into template values
func Stringify(vars map[string]any) map[string]string {
	out := make(map[string]string, len(vars))
	for key, value := range vars {
		switch v := value.(type) {
		case string:
			out[key] = v
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}
