package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/insaatai/insaat_backend/internal/platform/mail"
)

const contactUnknownCompany = "Bilinmiyor"

// contactService forwards contact form submissions to the sales inbox.
type contactService struct {
	BaseService
	mailer mail.Mailer
	from   string
	to     string
}

// NewContactService creates a contact service sending from -> to.
func NewContactService(mailer mail.Mailer, from, to string) portssvc.ContactSvc {
	return &contactService{mailer: mailer, from: from, to: to}
}

var _ portssvc.ContactSvc = (*contactService)(nil)

// Submit expects a validated request.
func (s *contactService) Submit(ctx context.Context, req dto.ContactRequest) error {
	if s.from == "" || s.to == "" {
		return mail.ErrNotConfigured
	}
	msg := BuildContactMessage(req)
	msg.From = s.from
	msg.To = []string{s.to}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.LogError(ctx, err, "Failed to send contact mail")
		return err
	}
	s.LogInfo(ctx, "Contact form forwarded", slog.String("company", strings.TrimSpace(req.Company)))
	return nil
}

// BuildContactMessage renders the subject and bodies of a contact mail.
// Every submitted value is HTML-escaped; the submitter becomes the Reply-To.
func BuildContactMessage(req dto.ContactRequest) mail.Message {
	company := strings.TrimSpace(req.Company)
	subjectCompany := company
	if subjectCompany == "" {
		subjectCompany = contactUnknownCompany
	}
	dash := func(v string) string {
		if v = strings.TrimSpace(v); v == "" {
			return "-"
		}
		return v
	}

	esc := html.EscapeString
	message := strings.ReplaceAll(esc(strings.TrimSpace(req.Message)), "\n", "<br/>")
	body := fmt.Sprintf(`<div style="font-family:ui-sans-serif,system-ui;line-height:1.6">
  <h2>Yeni Bilgi Al Formu</h2>
  <p><b>Ad Soyad:</b> %s</p>
  <p><b>E-posta:</b> %s</p>
  <p><b>Telefon:</b> %s</p>
  <p><b>Şirket:</b> %s</p>
  <p><b>Mesaj:</b><br/>%s</p>
  <hr/>
  <small>Kaynak: insaatai.com</small>
</div>`,
		esc(strings.TrimSpace(req.Name)),
		esc(strings.TrimSpace(req.Email)),
		esc(dash(req.Phone)),
		esc(dash(company)),
		message,
	)
	text := fmt.Sprintf("Ad Soyad: %s\nE-posta: %s\nTelefon: %s\nŞirket: %s\n\n%s\n",
		strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), dash(req.Phone), dash(company), strings.TrimSpace(req.Message))

	return mail.Message{
		Kind:    "contact",
		ReplyTo: strings.TrimSpace(req.Email),
		Subject: "Yeni Bilgi Al formu — " + subjectCompany,
		Text:    text,
		HTML:    body,
	}
}
