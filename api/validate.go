package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/warp/tuition-engine/billing"
	"github.com/warp/tuition-engine/generic"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	phoneTag    = "phone"
	notBlankTag = "notblank"
	dateTag     = "date"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(dateTag, dateValidation)

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{phoneTag, notBlankTag, dateTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustomErrs)
	}
}

func translateCustomErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case phoneTag:
		return "must be a phone number with area code (10 or 11 digits)"
	case notBlankTag:
		return "this field cannot be blank"
	case dateTag:
		return "must be a date (YYYY-MM-DD or DD/MM/YYYY)"
	default:
		return ""
	}
}

func phoneValidation(fl validator.FieldLevel) bool {
	_, err := billing.ParseStudentID(fl.Field().String())
	return err == nil
}

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func dateValidation(fl validator.FieldLevel) bool {
	_, err := generic.ParseDate(fl.Field().String())
	return err == nil
}

// validateRequest runs struct validation and flattens failures into
// json-field -> message pairs.
func validateRequest(req any) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(translator)
	}
	return fields
}
