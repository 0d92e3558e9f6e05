package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/insaatai/insaat_backend/internal/middleware"
)

// contactHandler serves the public lead form.
type contactHandler struct {
	contactService portssvc.ContactSvc
	validate       *validator.Validate
}

func newContactHandler(cs portssvc.ContactSvc) *contactHandler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &contactHandler{contactService: cs, validate: v}
}

func registerContactRoutes(r *gin.Engine, cs portssvc.ContactSvc, limit gin.HandlerFunc) {
	h := newContactHandler(cs)
	r.POST("/api/contact", limit, h.submit)
}

// submit godoc
// @Summary Submit the contact form
// @Description Forwards a lead to the sales inbox. Submissions that fill the hidden website field are accepted and dropped.
// @Tags contact
// @Accept json
// @Produce json
// @Param request body dto.ContactRequest true "Contact form"
// @Success 200 {object} dto.ContactResponse
// @Failure 400 {object} dto.ContactResponse "Invalid JSON"
// @Failure 422 {object} dto.ContactResponse "Validation failed"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} dto.ContactResponse "Mail could not be sent"
// @Router /contact [post]
func (h *contactHandler) submit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ContactResponse{OK: false, Error: "Geçersiz JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Company = strings.TrimSpace(req.Company)

	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.ContactResponse{
			OK:     false,
			Error:  "Doğrulama hatası",
			Issues: contactIssues(err),
		})
		return
	}

	if strings.TrimSpace(req.Website) != "" {
		logger.Info("Contact form honeypot triggered", slog.String("ip", c.ClientIP()))
		c.JSON(http.StatusOK, dto.ContactResponse{OK: true})
		return
	}

	if err := h.contactService.Submit(c.Request.Context(), req); err != nil {
		logger.Error("Contact form delivery failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ContactResponse{OK: false, Error: "E-posta gönderilemedi"})
		return
	}
	c.JSON(http.StatusOK, dto.ContactResponse{OK: true})
}

func contactIssues(err error) []dto.ContactIssue {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []dto.ContactIssue{{Message: err.Error()}}
	}
	issues := make([]dto.ContactIssue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, dto.ContactIssue{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: contactIssueMessage(fe),
		})
	}
	return issues
}

func contactIssueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Bu alan zorunludur."
	case "email":
		return "Geçerli bir e-posta adresi girin."
	case "min":
		return "En az " + fe.Param() + " karakter olmalıdır."
	case "max":
		return "En fazla " + fe.Param() + " karakter olabilir."
	}
	return "Geçersiz değer."
}
