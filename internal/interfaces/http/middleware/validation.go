package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/xgrltd/storefront/internal/infrastructure/logger"
	"github.com/xgrltd/storefront/internal/interfaces/http/dto"
)

// SetupValidator makes gin's validator report JSON (or form) field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

func fieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	}
	return name
}

// ValidationDetails converts validator errors into response details. Any
// other error yields nil.
func ValidationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: ValidationMessage(e),
			Tag:     e.Tag(),
		})
	}
	return details
}

// HandleValidationError writes a 400 validation response for err
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		c.GetString(logger.GinRequestIDKey),
		ValidationDetails(err),
	))
}

// ruleMessages word each validator tag; %s takes the rule's parameter
var ruleMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"eqfield":  "Must match %s",
	"oneof":    "Must be one of: %s",
	"gte":      "Must be greater than or equal to %s",
	"lte":      "Must be less than or equal to %s",
	"gt":       "Must be greater than %s",
	"min":      "Must be at least %s",
	"max":      "Must be at most %s",
}

// ValidationMessage returns a human-readable message for one failed rule
func ValidationMessage(e validator.FieldError) string {
	msg, ok := ruleMessages[e.Tag()]
	if !ok {
		return "Invalid value"
	}
	if !strings.Contains(msg, "%s") {
		return msg
	}
	msg = fmt.Sprintf(msg, e.Param())
	if (e.Tag() == "min" || e.Tag() == "max") && e.Kind() == reflect.String {
		msg += " characters"
	}
	return msg
}
