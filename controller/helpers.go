package controller

import (
	"errors"
	"strconv"
	"strings"
	"time"

	services "github.com/Itish41/WorkflowPro/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// fieldMessages maps a failed binding rule to the message shown to clients.
var fieldMessages = map[string]string{
	"Q.notblank":  "Parametro di ricerca obbligatorio",
	"Email.email": "Email non valida",
}

// RegisterValidations adds the custom binding rules to gin's validator.
// It is safe to call more than once.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// parseID reads a positive integer path parameter. On failure the error is
// attached to c and ok is false.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(services.Validation("ID non valido"))
		return 0, false
	}
	return id, true
}

// parseOptionalID reads an optional positive integer; blank means absent.
func parseOptionalID(raw, msg string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || raw == "undefined" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, services.Validation(msg)
	}
	return &id, nil
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(bindingError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		_ = c.Error(bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
			return services.Validation(msg)
		}
		return services.Validation("Campo non valido: " + fe.Field())
	}
	return services.Validation("Richiesta non valida")
}

func parseFilterDate(raw, field string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := services.ParseDate(raw)
	if err != nil {
		return nil, services.Validation("Data non valida: " + field)
	}
	return &t, nil
}
