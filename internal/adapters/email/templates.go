// Package email renders onboarding credential messages and delivers them.
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/pkg/errors"

	"github.com/vatelanka/waste-admin-api/internal/domain"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/notifier"
)

// Template names an embedded message body.
type Template string

const (
	TemplateSupervisorCredentials Template = "supervisor_credentials"
	TemplateDriverCredentials     Template = "driver_credentials"
)

//go:embed templates/*.html
var templateFS embed.FS

// Message is a rendered email ready for a transport.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type content struct {
	subject  string
	template Template
}

var byKind = map[domain.Kind]content{
	domain.KindSupervisor: {subject: "Your Supervisor Account Credentials", template: TemplateSupervisorCredentials},
	domain.KindDriver:     {subject: "Your Driver Account Credentials", template: TemplateDriverCredentials},
}

// Renderer holds the parsed credential templates.
type Renderer struct {
	templates map[Template]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: map[Template]*template.Template{}}
	for _, name := range []Template{TemplateSupervisorCredentials, TemplateDriverCredentials} {
		t, err := template.ParseFS(templateFS, fmt.Sprintf("templates/%s.html", name), "templates/partials.html")
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse email template %s", name)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render builds the credentials message for c's kind.
func (r *Renderer) Render(c notifier.Credentials) (Message, error) {
	ct, ok := byKind[c.Kind]
	if !ok {
		return Message{}, errors.Errorf("no email template for kind %q", c.Kind)
	}
	data := struct {
		Name         string
		EntityID     string
		Password     string
		Council      string
		District     string
		Ward         string
		PhoneNumber  string
		LicensePlate string
	}{
		Name:         c.Name,
		EntityID:     string(c.EntityID),
		Password:     c.Password,
		Council:      c.Location.Council,
		District:     c.Location.District,
		Ward:         c.Location.Ward,
		PhoneNumber:  c.PhoneNumber,
		LicensePlate: c.LicensePlate,
	}
	var body bytes.Buffer
	if err := r.templates[ct.template].Execute(&body, data); err != nil {
		return Message{}, errors.Wrapf(err, "failed to execute email template %s", ct.template)
	}
	return Message{To: c.To, Subject: ct.subject, HTML: body.String()}, nil
}
