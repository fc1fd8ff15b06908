package notifications

import (
	"fmt"
	"text/template"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/stevedore/pkg/notifications/templates"
)

// commonTemplates holds the built-in templates, selectable by name.
var commonTemplates = map[string]string{
	`default`: `
{{- .Event.Summary -}}
{{- range .Event.Lines}}
- {{.}}
{{- end -}}`,

	`porcelain.v1`: `
{{- .Event.Command | ToLower}} {{.Event.Image}}: {{.Event.Summary -}}
{{- if .Event.Failed}} [failed]{{end}}`,

	`json.v1`: `{{ToJSON .}}`,
}

// getTemplate resolves tplString to a parsed template.
//
// tplString may name one of the built-in templates or hold a template body. An empty
// string selects the default template.
func getTemplate(tplString string) (*template.Template, error) {
	tplBase := template.New("").Funcs(templates.Funcs)

	if builtin, found := commonTemplates[tplString]; found {
		logrus.WithField("template", tplString).Debug("Using common template")

		tplString = builtin
	}

	if tplString == "" {
		return template.Must(tplBase.Parse(commonTemplates["default"])), nil
	}

	tpl, err := tplBase.Parse(tplString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errParseTemplate, err)
	}

	return tpl, nil
}
