package printing

import (
	"bytes"
	"embed"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

const defaultMoneyDigits int32 = 2

// TemplateEngine fills the embedded document templates with data
type TemplateEngine struct {
	templates *template.Template
	printer   *message.Printer
	caser     cases.Caser
}

// NewTemplateEngine parses the embedded templates. Numbers and labels are
// formatted for lang.
func NewTemplateEngine(lang language.Tag) (*TemplateEngine, error) {
	e := &TemplateEngine{
		printer: message.NewPrinter(lang),
		caser:   cases.Title(lang),
	}
	tmpl, err := template.New("documents").Funcs(e.funcMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidTemplate, "failed to parse document templates", err)
	}
	e.templates = tmpl
	return e, nil
}

// Render executes the named document template
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	tmpl := e.templates.Lookup(name)
	if tmpl == nil || !e.isDocument(name) {
		return "", NewRenderError(ErrCodeUnknownTemplate, "unknown document template: "+name, nil)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template "+name, err)
	}
	return buf.String(), nil
}

// Documents lists the templates that can be rendered on their own
func (e *TemplateEngine) Documents() []string {
	var names []string
	for _, t := range e.templates.Templates() {
		if e.isDocument(t.Name()) {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)
	return names
}

// isDocument excludes the file-level templates and shared partials
func (e *TemplateEngine) isDocument(name string) bool {
	switch name {
	case "documents", "head", "foot":
		return false
	}
	return !strings.HasSuffix(name, ".html")
}

func (e *TemplateEngine) funcMap() template.FuncMap {
	return template.FuncMap{
		"money":    e.money,
		"date":     formatDate,
		"datetime": formatDateTime,
		"label":    e.label,
		"sum":      sum,
		"now":      time.Now,
	}
}

// money formats an amount with grouping and a fixed number of digits
func (e *TemplateEngine) money(v decimal.Decimal, digits ...int32) string {
	places := defaultMoneyDigits
	if len(digits) > 0 {
		places = digits[0]
	}
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	v = v.Round(places)
	if v.IsZero() {
		sign = ""
	}
	grouped := e.printer.Sprintf("%d", v.IntPart())
	_, frac, found := strings.Cut(v.StringFixed(places), ".")
	if !found {
		return sign + grouped
	}
	return sign + grouped + "." + frac
}

// label turns an enum such as SUBMITTED_AND_PENDING_APPROVAL into words
func (e *TemplateEngine) label(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case interface{ String() string }:
		s = x.String()
	default:
		return ""
	}
	return e.caser.String(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}

func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return formatDate(*t)
	}
	return ""
}

func formatDateTime(t time.Time) string {
	return t.Format("02 Jan 2006 15:04 MST")
}

func sum(vals ...decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, vals...)
}
