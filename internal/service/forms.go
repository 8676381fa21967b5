package service

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"worklog/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	maxTitleLen = 200
	maxTagLen   = 100
)

// LoginForm is the payload of POST /login.
type LoginForm struct {
	Username string `form:"username" validate:"required,notblank"`
	Password string `form:"password" validate:"required,notblank"`
}

// TagForm carries the comma-separated tag string. It is optional.
type TagForm struct {
	Tags string `form:"tags"`
}

// EntryForm is the payload of the create and edit pages.
type EntryForm struct {
	Title     string `form:"title" validate:"required,notblank,max=200"`
	Date      string `form:"date" validate:"required,notblank,entrydate"`
	Duration  string `form:"duration" validate:"required,notblank"`
	Learned   string `form:"learned" validate:"required,notblank"`
	Resources string `form:"resources" validate:"required,notblank"`
	TagForm
}

// ParsedDate returns the parsed Date. Call it after validation.
func (f EntryForm) ParsedDate() (time.Time, error) {
	return models.ParseDate(f.Date)
}

// EntryFormFrom prefills a form with the stored values of entry.
func EntryFormFrom(entry *models.Entry) EntryForm {
	return EntryForm{
		Title:     entry.Title,
		Date:      entry.DateString(),
		Duration:  entry.Duration,
		Learned:   entry.Learned,
		Resources: entry.Resources,
		TagForm:   TagForm{Tags: entry.TagString()},
	}
}

// Validator wraps go-playground/validator and reports failures as a
// VALIDATION_ERROR AppError keyed by form field name.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a validator that names fields by their form tag.
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("form")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	// Whitespace-only input counts as missing.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("entrydate", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDate(fl.Field().String())
		return err == nil
	})

	return &Validator{v: v}
}

// Validate validates a form struct.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return formatError(err)
	}
	return nil
}

func formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		if _, seen := fields[e.Field()]; !seen {
			fields[e.Field()] = friendlyMessage(e)
		}
	}
	return models.NewFieldValidationError(fields)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", e.Param())
	case "entrydate":
		return "Not a valid date value. Use DD-MM-YYYY."
	default:
		return "Invalid value."
	}
}
