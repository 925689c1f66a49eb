// Package smtpmail envía los correos transaccionales por SMTP. Los cuerpos
// se renderizan con html/template a partir de plantillas embebidas; son lo
// bastante cortas como para no justificar archivos aparte.
package smtpmail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"

	"pettracker/internal/ports/mail"
)

var bodies = template.Must(template.New("mail").Parse(`
{{define "` + mail.TemplateEmailConfirmation + `"}}
<p>Hola {{.username}},</p>
<p>Confirmá tu cuenta con este token:</p>
<p><code>{{.token}}</code></p>
{{end}}

{{define "` + mail.TemplateEmailChangeConfirm + `"}}
<p>Hola {{.username}},</p>
<p>Confirmá tu nueva dirección de correo con este token:</p>
<p><code>{{.token}}</code></p>
{{end}}

{{define "` + mail.TemplatePasswordReset + `"}}
<p>Hola {{.username}},</p>
<p>Usá este token para restablecer tu contraseña:</p>
<p><code>{{.token}}</code></p>
{{end}}

{{define "` + mail.TemplateEventNotification + `"}}
<p>Recordatorio para {{.pet}}: {{.title}}</p>
{{if .content}}<p>{{.content}}</p>{{end}}
{{end}}
`))

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

type Options struct {
	Host     string
	Port     int
	From     string
	Password string
}

func New(opts Options) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(opts.Host, opts.Port, opts.From, opts.Password),
		from:   opts.From,
	}
}

// Send implementa mail.Sender. gomail no acepta context; el deadline
// efectivo es el timeout de red del dialer.
func (m *Mailer) Send(_ context.Context, msg mail.Message) error {
	var body bytes.Buffer
	if err := bodies.ExecuteTemplate(&body, msg.Template, msg.Data); err != nil {
		return fmt.Errorf("render mail template %q: %w", msg.Template, err)
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", body.String())

	return m.dialer.DialAndSend(gm)
}
