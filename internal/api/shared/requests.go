package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/questiongen/internal/domain"
)

// MaxJSONBodyBytes bounds JSON request bodies.
const MaxJSONBodyBytes = 5 << 20

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into the given struct. Malformed
// bodies are reported as domain.ErrValidation.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil {
		return domain.NewValidationError("body", "is required", domain.ErrValidation)
	}
	body := http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return domain.NewValidationError("body", fmt.Sprintf("is not valid JSON: %v", err), domain.ErrValidation)
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
// The first failing field is returned as a *domain.ValidationError.
func ValidateRequest(v interface{}) error {
	if custom, ok := v.(interface{ Validate() error }); ok {
		return custom.Validate()
	}

	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.NewValidationError(fe.Field(), tagMessage(fe), domain.ErrValidation)
	}
	return domain.NewValidationError("", err.Error(), domain.ErrValidation)
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed the " + fe.Tag() + " check"
	}
}
