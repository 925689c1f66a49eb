package mail

import "context"

// Nombres de plantilla que conoce el adapter SMTP.
const (
	TemplateEmailConfirmation  = "email_confirmation"
	TemplateEmailChangeConfirm = "email_change_confirmation"
	TemplatePasswordReset      = "password_reset_confirmation"
	TemplateEventNotification  = "event_notification"
)

// Message es un correo a renderizar y enviar.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

// Sender envía un correo. Las fallas se traducen a ErrMailDelivery
// en la capa de servicio.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
