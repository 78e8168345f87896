package email

import (
	"fmt"
	"html"

	"qrlinks/internal/config"
	"qrlinks/internal/models"
)

// Templates renders the subject, HTML, and plain-text bodies for each mail.
type Templates struct {
	cfg *config.Config
}

func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in the shared mail layout.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2563eb; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .button { display: inline-block; background: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 10px 0; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        code { background: #e5e7eb; padding: 2px 6px; border-radius: 4px; font-family: monospace; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// Invitation generates the mail inviting someone to join a team.
func (t *Templates) Invitation(inv *models.Invitation, inviter *models.User) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] You have been invited", t.cfg.SiteTitle)

	acceptURL := fmt.Sprintf("%s/invitations/accept?token=%s", t.cfg.BaseURL, inv.Token)

	content := fmt.Sprintf(`
        <p>%s has invited you to join their team on %s.</p>

        <div class="info-box">
            <p><span class="label">Invited by:</span> %s</p>
            <p><span class="label">Role:</span> %s</p>
            <p><span class="label">Expires:</span> %s</p>
        </div>

        <p style="text-align: center;">
            <a href="%s" class="button">Accept Invitation</a>
        </p>

        <p>If you were not expecting this invitation, you can ignore this email.</p>
    `,
		html.EscapeString(inviter.Email),
		html.EscapeString(t.cfg.SiteTitle),
		html.EscapeString(inviter.Email),
		html.EscapeString(inv.Role),
		inv.ExpiresAt.Format("Jan 2, 2006 15:04 MST"),
		acceptURL,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`You have been invited to %s

Invited by: %s
Role: %s
Expires: %s

Accept at: %s

If you were not expecting this invitation, you can ignore this email.

--
%s
%s`,
		t.cfg.SiteTitle,
		inviter.Email,
		inv.Role,
		inv.ExpiresAt.Format("Jan 2, 2006 15:04 MST"),
		acceptURL,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return
}

// VerifyEmail generates the address verification mail sent after signup.
func (t *Templates) VerifyEmail(user *models.User, token string) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Verify your email address", t.cfg.SiteTitle)

	verifyURL := fmt.Sprintf("%s/auth/verify?token=%s", t.cfg.BaseURL, token)

	content := fmt.Sprintf(`
        <p>Welcome to %s! Please confirm your email address to activate your account.</p>

        <p style="text-align: center;">
            <a href="%s" class="button">Verify Email</a>
        </p>

        <p>If the button does not work, open this link: <a href="%s">%s</a></p>
    `,
		html.EscapeString(t.cfg.SiteTitle),
		verifyURL,
		verifyURL,
		verifyURL,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Welcome to %s!

Please confirm your email address to activate your account:

%s

--
%s
%s`,
		t.cfg.SiteTitle,
		verifyURL,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return
}
