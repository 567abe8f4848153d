package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
	"unicode"

	"kamwaalay/config"
	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/models"
	"kamwaalay/internal/utils"

	"github.com/go-playground/validator/v10"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Validator wraps go-playground/validator and reports json field names.
type Validator struct {
	validate *validator.Validate
}

var defaultValidator = New()

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	mustRegister(v, "pkphone", func(fl validator.FieldLevel) bool {
		_, ok := utils.NormalizePhone(fl.Field().String())
		return ok
	})
	mustRegister(v, "locale", func(fl validator.FieldLevel) bool {
		return slices.Contains(config.SupportedLocales, fl.Field().String())
	})
	mustRegister(v, "worktype", func(fl validator.FieldLevel) bool {
		return models.IsValidWorkType(fl.Field().String())
	})
	mustRegister(v, "doctype", func(fl validator.FieldLevel) bool {
		return models.IsValidDocumentType(fl.Field().String())
	})
	mustRegister(v, "jobstatus", func(fl validator.FieldLevel) bool {
		return models.IsValidJobPostStatus(fl.Field().String())
	})
	mustRegister(v, "date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	mustRegister(v, "clock", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(TimeLayout, fl.Field().String())
		return err == nil
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register validation %q: %v", tag, err))
	}
}

// Struct validates a request struct. Field failures come back as a 422 AppError.
func Struct(s any) error {
	return defaultValidator.Struct(s)
}

func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Internal(err)
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fieldPath(fe)] = message(fe)
	}

	return apperrors.Validation(fields)
}

// fieldPath drops the root struct name from the namespace, so nested entries
// read as "services[0].monthlyRate". Embedded structs carry no json name and
// show up as exported Go names, which are dropped as well.
func fieldPath(fe validator.FieldError) string {
	segments := strings.Split(fe.Namespace(), ".")
	if len(segments) < 2 {
		return fe.Field()
	}

	path := make([]string, 0, len(segments)-1)
	for i, segment := range segments[1:] {
		last := i == len(segments)-2
		if !last && segment != "" && unicode.IsUpper([]rune(segment)[0]) {
			continue
		}
		path = append(path, segment)
	}
	return strings.Join(path, ".")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		if isSized(fe.Kind()) {
			return fmt.Sprintf("Must be at least %s characters/items", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if isSized(fe.Kind()) {
			return fmt.Sprintf("Must be at most %s characters/items", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "pkphone":
		return "Must be a valid Pakistani mobile number"
	case "locale":
		return fmt.Sprintf("Must be one of: %s", strings.Join(config.SupportedLocales, ", "))
	case "worktype":
		return oneOf(models.WorkTypes)
	case "doctype":
		return oneOf(models.DocumentTypes)
	case "jobstatus":
		return oneOf(models.JobPostStatuses)
	case "date":
		return "Must be a date in YYYY-MM-DD format"
	case "clock":
		return "Must be a time in HH:MM format"
	case "uuid", "uuid4":
		return "Must be a valid id"
	case "eqfield":
		return fmt.Sprintf("Must match %s", fe.Param())
	default:
		return fmt.Sprintf("Invalid value (failed on '%s')", fe.Tag())
	}
}

func oneOf[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, value := range values {
		names[i] = string(value)
	}
	return "Must be one of: " + strings.Join(names, ", ")
}

func isSized(kind reflect.Kind) bool {
	return kind == reflect.String || kind == reflect.Slice || kind == reflect.Map
}
