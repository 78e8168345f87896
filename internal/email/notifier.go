package email

import (
	"log/slog"

	"qrlinks/internal/config"
	"qrlinks/internal/models"
)

// Notifier sends the app's transactional mails.
type Notifier struct {
	service   *Service
	templates *Templates
	cfg       *config.Config
}

func NewNotifier(cfg *config.Config, log *slog.Logger) *Notifier {
	return &Notifier{
		service:   NewService(cfg, log),
		templates: NewTemplates(cfg),
		cfg:       cfg,
	}
}

// NotifyInvitation mails an invitation to its recipient.
func (n *Notifier) NotifyInvitation(inv *models.Invitation, inviter *models.User) {
	if !n.service.IsEnabled() {
		return
	}

	subject, htmlBody, textBody := n.templates.Invitation(inv, inviter)
	n.service.SendAsync([]string{inv.Email}, subject, htmlBody, textBody)
}

// NotifyVerifyEmail mails an address verification link to a new user.
func (n *Notifier) NotifyVerifyEmail(user *models.User, token string) {
	if !n.service.IsEnabled() {
		return
	}

	subject, htmlBody, textBody := n.templates.VerifyEmail(user, token)
	n.service.SendAsync([]string{user.Email}, subject, htmlBody, textBody)
}
