package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

// custom validation tags
const (
	TagNotBlank      = "notblank"
	TagPercentage    = "percentage"
	TagYear          = "year"
	TagCountry       = "country"
	TagExamType      = "examtype"
	TagEnquiryStatus = "enquirystatus"
)

const (
	minYear = 1950
	maxYear = 2100
)

// Validator wraps go-playground/validator with English messages and the
// CRM specific tags.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator ready for struct and single value checks.
func New() *Validator {
	validate := validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(TagNotBlank, notBlank)
	_ = validate.RegisterValidation(TagPercentage, percentage)
	_ = validate.RegisterValidation(TagYear, year)
	_ = validate.RegisterValidation(TagCountry, country)
	_ = validate.RegisterValidation(TagExamType, examType)
	_ = validate.RegisterValidation(TagEnquiryStatus, enquiryStatus)

	v := &Validator{validate: validate, translator: translator}
	v.registerMessages(TagNotBlank, TagPercentage, TagYear, TagCountry, TagExamType, TagEnquiryStatus)
	return v
}

// Struct validates a request payload and returns an ErrValidation carrying the
// first translated message.
func (v *Validator) Struct(payload interface{}) error {
	if err := v.validate.Struct(payload); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, v.Message(err))
	}
	return nil
}

// Check validates a single value against tag and returns a human message, or
// an empty string when the value passes.
func (v *Validator) Check(value interface{}, tag string) string {
	if err := v.validate.Var(value, tag); err != nil {
		return v.Message(err)
	}
	return ""
}

// Message renders err as a single English sentence.
func (v *Validator) Message(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		msg := fieldErrs[0].Translate(v.translator)
		if msg != "" {
			return msg
		}
		return fieldErrs[0].Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func (v *Validator) registerMessages(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = v.validate.RegisterTranslation(tag, v.translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	subject := fe.Field()
	if subject == "" {
		subject = "this field"
	}
	switch fe.Tag() {
	case TagNotBlank:
		return subject + " cannot be blank"
	case TagPercentage:
		return subject + " must be a number between 0 and 100"
	case TagYear:
		return subject + " must be a four digit year"
	case TagCountry:
		return subject + " must be a supported country code"
	case TagExamType:
		return subject + " must be a supported exam type"
	case TagEnquiryStatus:
		return subject + " must be a known enquiry status"
	default:
		return ""
	}
}

func stringField(fl validator.FieldLevel) (string, bool) {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return "", false
	}
	return strings.TrimSpace(field.String()), true
}

func notBlank(fl validator.FieldLevel) bool {
	str, ok := stringField(fl)
	return ok && str != ""
}

func percentage(fl validator.FieldLevel) bool {
	str, ok := stringField(fl)
	if !ok {
		return false
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(str, "%"), 64)
	return err == nil && value >= 0 && value <= 100
}

func year(fl validator.FieldLevel) bool {
	str, ok := stringField(fl)
	if !ok || len(str) != 4 {
		return false
	}
	value, err := strconv.Atoi(str)
	return err == nil && value >= minYear && value <= maxYear
}

func country(fl validator.FieldLevel) bool {
	str, ok := stringField(fl)
	if !ok {
		return false
	}
	_, found := models.LookupCountry(strings.ToUpper(str))
	return found
}

func examType(fl validator.FieldLevel) bool {
	str, ok := stringField(fl)
	if !ok {
		return false
	}
	_, found := models.LookupExamType(models.ExamType(str))
	return found
}

func enquiryStatus(fl validator.FieldLevel) bool {
	str, ok := stringField(fl)
	return ok && models.EnquiryStatus(str).Valid()
}
