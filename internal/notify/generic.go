package notify

import (
	"bytes"
	"encoding/json"
	"text/template"
	"time"

	"github.com/manav03panchal/babyreminder/internal/model"
)

// TemplateFuncs are available to custom webhook templates. json quotes a
// value so device names with quotes still produce a valid body.
var TemplateFuncs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

// GenericFormatter posts the notification as JSON, or renders Template
// when one is configured.
type GenericFormatter struct {
	Template string

	tmpl *template.Template
	err  error
}

// NewGenericFormatter parses tmpl once. A parse error is reported by Format.
func NewGenericFormatter(tmpl string) *GenericFormatter {
	f := &GenericFormatter{Template: tmpl}
	if tmpl != "" {
		f.tmpl, f.err = template.New("webhook").Funcs(TemplateFuncs).Parse(tmpl)
	}
	return f
}

// genericPayload is both the default body and the template data.
type genericPayload struct {
	ID        int               `json:"id"`
	Type      string            `json:"type"`
	Channel   string            `json:"channel"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Actions   []model.Action    `json:"actions,omitempty"`
	Ongoing   bool              `json:"ongoing"`
	Silent    bool              `json:"silent"`
	Emergency bool              `json:"emergency"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp string            `json:"timestamp"`
	Color     int               `json:"color,omitempty"`
}

func newGenericPayload(n *model.Notification) genericPayload {
	return genericPayload{
		ID:        n.ID,
		Type:      string(n.Type),
		Channel:   n.Channel,
		Title:     n.Title,
		Message:   n.Message,
		Actions:   n.Actions,
		Ongoing:   n.Ongoing,
		Silent:    n.Silent,
		Emergency: n.IsEmergency(),
		Fields:    n.Fields,
		Timestamp: n.Timestamp.UTC().Format(time.RFC3339),
		Color:     colorOf(n),
	}
}

// Format implements Formatter.
func (f *GenericFormatter) Format(n *model.Notification) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := newGenericPayload(n)
	if f.tmpl == nil {
		return json.Marshal(p)
	}

	var buf bytes.Buffer
	if err := f.tmpl.Execute(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentType implements Formatter.
func (f *GenericFormatter) ContentType() string {
	return "application/json"
}
