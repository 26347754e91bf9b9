// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// Lang selects the template language. Spanish is the default.
type Lang string

const (
	LangES Lang = "es"
	LangEN Lang = "en"
)

func (l Lang) normalize() Lang {
	if l == LangEN {
		return LangEN
	}
	return LangES
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
}

// NewService creates a new email service
func NewService(config *Config) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

// Email represents an email message
type Email struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	Body     string
	HTMLBody string
}

// VerificationEmailData holds data for email verification emails
type VerificationEmailData struct {
	Name      string
	VerifyURL string
}

// PasswordResetEmailData holds data for password reset emails
type PasswordResetEmailData struct {
	Name     string
	ResetURL string
}

// ClaimDecisionEmailData holds data for claim decision emails
type ClaimDecisionEmailData struct {
	Name     string
	TeamName string
	Approved bool
	Reason   string
	TeamURL  string
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {

	// Email Verification (Spanish)
	s.templates["verify_email_es"] = template.Must(template.New("verify_email_es").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #16a34a; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #16a34a; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Confirma tu correo</h2>
    </div>
    <div class="content">
        <p>Hola {{.Name}},</p>
        <p>Gracias por registrarte en Cancha. Confirma tu dirección de correo para activar todas las funciones de tu cuenta.</p>

        <a href="{{.VerifyURL}}" class="btn">Confirmar correo</a>

        <p style="margin-top: 16px; font-size: 14px; color: #6b7280;">
            Este enlace caduca en 24 horas. Si no creaste esta cuenta, puedes ignorar este mensaje.
        </p>
    </div>
    <div class="footer">
        Cancha • Gestión de equipos
    </div>
</div>
</body>
</html>
`))

	// Email Verification (English)
	s.templates["verify_email_en"] = template.Must(template.New("verify_email_en").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #16a34a; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #16a34a; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Confirm your email</h2>
    </div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        <p>Thanks for signing up for Cancha. Confirm your email address to unlock every feature of your account.</p>

        <a href="{{.VerifyURL}}" class="btn">Confirm email</a>

        <p style="margin-top: 16px; font-size: 14px; color: #6b7280;">
            This link expires in 24 hours. If you did not create this account, you can ignore this message.
        </p>
    </div>
    <div class="footer">
        Cancha • Team Management
    </div>
</div>
</body>
</html>
`))

	// Password Reset (Spanish)
	s.templates["password_reset_es"] = template.Must(template.New("password_reset_es").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2563eb; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #2563eb; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Restablecer contraseña</h2>
    </div>
    <div class="content">
        <p>Hola {{.Name}},</p>
        <p>Recibimos una solicitud para restablecer la contraseña de tu cuenta en Cancha.</p>

        <a href="{{.ResetURL}}" class="btn">Elegir nueva contraseña</a>

        <p style="margin-top: 16px; font-size: 14px; color: #6b7280;">
            Este enlace caduca en 1 hora. Si no solicitaste el cambio, tu contraseña sigue siendo válida y puedes ignorar este mensaje.
        </p>
    </div>
    <div class="footer">
        Cancha • Gestión de equipos
    </div>
</div>
</body>
</html>
`))

	// Password Reset (English)
	s.templates["password_reset_en"] = template.Must(template.New("password_reset_en").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2563eb; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #2563eb; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Reset your password</h2>
    </div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        <p>We received a request to reset the password of your Cancha account.</p>

        <a href="{{.ResetURL}}" class="btn">Choose a new password</a>

        <p style="margin-top: 16px; font-size: 14px; color: #6b7280;">
            This link expires in 1 hour. If you did not request the change, your password is still valid and you can ignore this message.
        </p>
    </div>
    <div class="footer">
        Cancha • Team Management
    </div>
</div>
</body>
</html>
`))

	// Claim Decision (Spanish)
	s.templates["claim_decision_es"] = template.Must(template.New("claim_decision_es").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #16a34a; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .header-rejected { background: #dc2626; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #16a34a; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header{{if not .Approved}} header-rejected{{end}}">
        <h2>{{if .Approved}}Solicitud aprobada{{else}}Solicitud rechazada{{end}}</h2>
    </div>
    <div class="content">
        <p>Hola {{.Name}},</p>
        {{if .Approved}}
        <p>Tu solicitud para unirte a la plantilla de <strong>{{.TeamName}}</strong> fue aprobada. Ya apareces como miembro verificado del equipo.</p>
        <a href="{{.TeamURL}}" class="btn">Ver equipo</a>
        {{else}}
        <p>Tu solicitud para unirte a la plantilla de <strong>{{.TeamName}}</strong> fue rechazada.</p>
        {{if .Reason}}<p><strong>Motivo:</strong> {{.Reason}}</p>{{end}}
        {{end}}
    </div>
    <div class="footer">
        Cancha • Gestión de equipos
    </div>
</div>
</body>
</html>
`))

	// Claim Decision (English)
	s.templates["claim_decision_en"] = template.Must(template.New("claim_decision_en").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #16a34a; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .header-rejected { background: #dc2626; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #16a34a; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header{{if not .Approved}} header-rejected{{end}}">
        <h2>{{if .Approved}}Claim approved{{else}}Claim rejected{{end}}</h2>
    </div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        {{if .Approved}}
        <p>Your request to join the roster of <strong>{{.TeamName}}</strong> was approved. You now appear as a verified member of the team.</p>
        <a href="{{.TeamURL}}" class="btn">View team</a>
        {{else}}
        <p>Your request to join the roster of <strong>{{.TeamName}}</strong> was rejected.</p>
        {{if .Reason}}<p><strong>Reason:</strong> {{.Reason}}</p>{{end}}
        {{end}}
    </div>
    <div class="footer">
        Cancha • Team Management
    </div>
</div>
</body>
</html>
`))
}

// Send sends an email
func (s *Service) Send(email *Email) error {
	if s.config.Host == "" {
		log.Println("Email not configured, skipping send")
		return nil
	}

	// Build message
	var msg bytes.Buffer

	// Headers
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	if len(email.CC) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(email.CC, ", ")))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.Body)
	}

	// Build recipient list
	recipients := append(email.To, email.CC...)
	recipients = append(recipients, email.BCC...)

	// Create auth
	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		// TLS connection
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("TLS dial error: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			return fmt.Errorf("SMTP client error: %w", err)
		}
		defer client.Close()

		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("auth error: %w", err)
		}

		if err = client.Mail(s.config.From); err != nil {
			return fmt.Errorf("mail error: %w", err)
		}

		for _, rcpt := range recipients {
			if err = client.Rcpt(rcpt); err != nil {
				return fmt.Errorf("rcpt error: %w", err)
			}
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("data error: %w", err)
		}

		_, err = w.Write(msg.Bytes())
		if err != nil {
			return fmt.Errorf("write error: %w", err)
		}

		err = w.Close()
		if err != nil {
			return fmt.Errorf("close error: %w", err)
		}

		return client.Quit()
	}

	// Non-TLS
	return smtp.SendMail(addr, auth, s.config.From, recipients, msg.Bytes())
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, lang Lang, data interface{}) error {
	key := templateName + "_" + string(lang.normalize())
	tmpl, ok := s.templates[key]
	if !ok {
		return fmt.Errorf("template not found: %s", key)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	return s.Send(&Email{
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
	})
}

// ============================================
// Convenience Methods
// ============================================

// SendEmailVerification sends the address confirmation email
func (s *Service) SendEmailVerification(to string, lang Lang, data VerificationEmailData) error {
	subject := "[Cancha] Confirma tu correo"
	if lang.normalize() == LangEN {
		subject = "[Cancha] Confirm your email"
	}
	return s.SendWithTemplate([]string{to}, subject, "verify_email", lang, data)
}

// SendPasswordReset sends the password reset email
func (s *Service) SendPasswordReset(to string, lang Lang, data PasswordResetEmailData) error {
	subject := "[Cancha] Restablecer contraseña"
	if lang.normalize() == LangEN {
		subject = "[Cancha] Reset your password"
	}
	return s.SendWithTemplate([]string{to}, subject, "password_reset", lang, data)
}

// SendClaimDecision notifies an account that its roster claim was reviewed
func (s *Service) SendClaimDecision(to string, lang Lang, data ClaimDecisionEmailData) error {
	subject := "[Cancha] Tu solicitud fue revisada"
	if lang.normalize() == LangEN {
		subject = "[Cancha] Your claim was reviewed"
	}
	return s.SendWithTemplate([]string{to}, subject, "claim_decision", lang, data)
}
