package handlers

import (
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"qrlinks/internal/auth"
	"qrlinks/internal/config"
	"qrlinks/internal/db"
	"qrlinks/internal/models"
	"qrlinks/internal/qr"
	"qrlinks/internal/team"
	"qrlinks/internal/validation"
)

// QRCodeHandler handles QR code CRUD and image rendering.
type QRCodeHandler struct {
	db       *db.DB
	cfg      *config.Config
	team     *team.Resolver
	renderer *qr.Renderer
}

func NewQRCodeHandler(database *db.DB, cfg *config.Config, teams *team.Resolver, renderer *qr.Renderer) *QRCodeHandler {
	return &QRCodeHandler{db: database, cfg: cfg, team: teams, renderer: renderer}
}

// List returns all codes visible to the authenticated user's team.
func (h *QRCodeHandler) List(c fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)

	owners, err := h.team.TeamIDs(c.Context(), user.ID.String())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to resolve team")
	}

	codes, err := h.db.ListQRCodesByOwners(c.Context(), owners)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch qr codes")
	}

	return jsonSuccess(c, codes)
}

// Get returns a single code if it belongs to the user's team.
func (h *QRCodeHandler) Get(c fiber.Ctx) error {
	code, status, message := h.teamScopedCode(c)
	if code == nil {
		return jsonError(c, status, message)
	}
	return jsonSuccess(c, code)
}

type qrCodeBody struct {
	Name      string          `json:"name"`
	TargetURL string          `json:"target_url"`
	Dynamic   *bool           `json:"dynamic"`
	Password  *string         `json:"password"`
	ExpiresAt *time.Time      `json:"expires_at"`
	Slug      string          `json:"slug"`
	ECLevel   string          `json:"ec_level"`
	Design    json.RawMessage `json:"design"`
}

// Create creates a new QR code owned by the authenticated user.
func (h *QRCodeHandler) Create(c fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	if !user.CanEdit() {
		return jsonError(c, fiber.StatusForbidden, "viewers cannot create qr codes")
	}

	var body qrCodeBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return jsonError(c, fiber.StatusBadRequest, "name is required")
	}
	if ok, msg := validation.ValidateURL(body.TargetURL); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	slug := validation.NormalizeSlug(body.Slug)
	if slug == "" {
		slug = newSlug()
	} else if !validation.ValidateSlug(slug) {
		return jsonError(c, fiber.StatusBadRequest, "slug must contain only letters, numbers, hyphens, and underscores")
	}

	if body.ECLevel != "" && !models.ValidECLevel(body.ECLevel) {
		return jsonError(c, fiber.StatusBadRequest, "ec_level must be one of L, M, Q, H")
	}

	code := &models.QRCode{
		OwnerID:   user.ID,
		Name:      body.Name,
		TargetURL: body.TargetURL,
		Dynamic:   body.Dynamic == nil || *body.Dynamic,
		ExpiresAt: body.ExpiresAt,
		Slug:      slug,
		ECLevel:   body.ECLevel,
		Design:    body.Design,
	}

	if body.Password != nil && *body.Password != "" {
		hash, err := auth.HashPassword(*body.Password)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "failed to create qr code")
		}
		code.PasswordHash = &hash
	}

	if err := h.db.CreateQRCode(c.Context(), code); err != nil {
		if errors.Is(err, db.ErrDuplicateSlug) {
			return jsonError(c, fiber.StatusConflict, "slug already in use")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create qr code")
	}

	return jsonCreated(c, code)
}

// Update modifies a code's mutable fields. The target URL of a static code
// and the slug never change.
func (h *QRCodeHandler) Update(c fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	if !user.CanEdit() {
		return jsonError(c, fiber.StatusForbidden, "viewers cannot edit qr codes")
	}

	code, status, message := h.teamScopedCode(c)
	if code == nil {
		return jsonError(c, status, message)
	}

	var body qrCodeBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if body.Name != "" {
		code.Name = strings.TrimSpace(body.Name)
	}
	if body.TargetURL != "" {
		if !code.Dynamic {
			return jsonError(c, fiber.StatusUnprocessableEntity, "static qr codes cannot change target")
		}
		if ok, msg := validation.ValidateURL(body.TargetURL); !ok {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
		code.TargetURL = body.TargetURL
	}
	if body.ECLevel != "" {
		if !models.ValidECLevel(body.ECLevel) {
			return jsonError(c, fiber.StatusBadRequest, "ec_level must be one of L, M, Q, H")
		}
		code.ECLevel = body.ECLevel
	}
	if body.ExpiresAt != nil {
		code.ExpiresAt = body.ExpiresAt
	}
	if body.Design != nil {
		code.Design = body.Design
	}
	if body.Password != nil {
		if *body.Password == "" {
			code.PasswordHash = nil
		} else {
			hash, err := auth.HashPassword(*body.Password)
			if err != nil {
				return jsonError(c, fiber.StatusInternalServerError, "failed to update qr code")
			}
			code.PasswordHash = &hash
		}
	}

	if err := h.db.UpdateQRCode(c.Context(), code); err != nil {
		if errors.Is(err, db.ErrQRCodeNotFound) {
			return jsonError(c, fiber.StatusNotFound, "qr code not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update qr code")
	}

	return jsonSuccess(c, code)
}

// Delete removes a code and, via cascade, its scans.
func (h *QRCodeHandler) Delete(c fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	if !user.CanEdit() {
		return jsonError(c, fiber.StatusForbidden, "viewers cannot delete qr codes")
	}

	code, status, message := h.teamScopedCode(c)
	if code == nil {
		return jsonError(c, status, message)
	}

	if err := h.db.DeleteQRCode(c.Context(), code.ID); err != nil {
		if errors.Is(err, db.ErrQRCodeNotFound) {
			return jsonError(c, fiber.StatusNotFound, "qr code not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete qr code")
	}

	return jsonSuccess(c, fiber.Map{"deleted": true})
}

// Image renders the code's QR symbol as a PNG.
func (h *QRCodeHandler) Image(c fiber.Ctx) error {
	code, status, message := h.teamScopedCode(c)
	if code == nil {
		return jsonError(c, status, message)
	}

	size := qr.DefaultSize
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "size must be an integer")
		}
		size = n
	}

	png, err := h.renderer.RenderPNG(code, size)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to render qr code")
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}

// teamScopedCode loads the code from the :id route param and checks it
// belongs to the requesting user's team. On failure it returns a nil code
// plus the status and message to respond with.
func (h *QRCodeHandler) teamScopedCode(c fiber.Ctx) (*models.QRCode, int, string) {
	user, _ := c.Locals("user").(*models.User)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.StatusBadRequest, "invalid qr code id"
	}

	code, err := h.db.GetQRCodeByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrQRCodeNotFound) {
			return nil, fiber.StatusNotFound, "qr code not found"
		}
		return nil, fiber.StatusInternalServerError, "failed to fetch qr code"
	}

	owners, err := h.team.TeamIDs(c.Context(), user.ID.String())
	if err != nil {
		return nil, fiber.StatusInternalServerError, "failed to resolve team"
	}
	if !slices.Contains(owners, code.OwnerID) {
		// Hide other teams' codes entirely.
		return nil, fiber.StatusNotFound, "qr code not found"
	}

	return code, 0, ""
}

// newSlug generates a random URL-safe slug from a UUID.
func newSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
