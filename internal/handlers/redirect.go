package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"qrlinks/internal/config"
	"qrlinks/internal/db"
	"qrlinks/internal/metrics"
	"qrlinks/internal/redirect"
)

// RedirectHandler serves the public scan endpoint.
type RedirectHandler struct {
	gate *redirect.Gate
	cfg  *config.Config
}

func NewRedirectHandler(gate *redirect.Gate, cfg *config.Config) *RedirectHandler {
	return &RedirectHandler{gate: gate, cfg: cfg}
}

// Resolve handles GET and POST /s/:slug. Password-protected codes render a
// prompt on GET and check the submitted password on POST.
func (h *RedirectHandler) Resolve(c fiber.Ctx) error {
	slug := c.Params("slug")
	password := c.FormValue("password")

	headers := map[string]string{
		"X-Forwarded-For":  c.Get("X-Forwarded-For"),
		"X-Real-IP":        c.Get("X-Real-IP"),
		"CF-Connecting-IP": c.Get("CF-Connecting-IP"),
	}
	clientIP := redirect.ClientIP(headers, c.IP())

	out, err := h.gate.ResolveAndLog(c.Context(), slug, password, clientIP, c.Get("User-Agent"))
	if err != nil {
		switch {
		case errors.Is(err, db.ErrQRCodeNotFound):
			metrics.RedirectOutcome("not_found")
			return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
				"Title":     "Not Found",
				"Message":   "This QR code does not exist.",
				"SiteTitle": h.cfg.SiteTitle,
			})
		case errors.Is(err, redirect.ErrExpired):
			metrics.RedirectOutcome("expired")
			return c.Status(fiber.StatusGone).Render("error", fiber.Map{
				"Title":     "Expired",
				"Message":   "This QR code has expired.",
				"SiteTitle": h.cfg.SiteTitle,
			})
		case errors.Is(err, redirect.ErrPasswordRequired):
			metrics.RedirectOutcome("password_prompt")
			return c.Render("password", fiber.Map{
				"Title":     "Protected",
				"Slug":      slug,
				"SiteTitle": h.cfg.SiteTitle,
			})
		case errors.Is(err, redirect.ErrWrongPassword):
			metrics.RedirectOutcome("wrong_password")
			return c.Status(fiber.StatusForbidden).Render("password", fiber.Map{
				"Title":     "Protected",
				"Slug":      slug,
				"Error":     "Incorrect password, try again.",
				"SiteTitle": h.cfg.SiteTitle,
			})
		default:
			return err
		}
	}

	metrics.RedirectOutcome("ok")
	return c.Redirect().Status(fiber.StatusFound).To(out.Destination)
}
