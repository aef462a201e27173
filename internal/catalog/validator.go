package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/httpx"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("readdate", validateReadDate)
	validate.RegisterValidation("cover", validateCover)
}

func validateReadDate(fl validator.FieldLevel) bool {
	_, err := book.ReadDateFromInput(fl.Field().String())
	return err == nil
}

// validateCover accepts absolute http(s) URLs and site-local paths.
func validateCover(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if strings.HasPrefix(v, "/") {
		return true
	}
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateStruct runs the struct tags of s and converts failures into
// response details.
func ValidateStruct(s interface{}) []httpx.ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []httpx.ErrorDetail{{Field: "", Message: err.Error()}}
	}

	var details []httpx.ErrorDetail
	for _, err := range verrs {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		var message string
		switch tag {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "readdate":
			message = fmt.Sprintf("%s must be YYYY-MM-DD or \"YYYY. M. D. H:mm\"", field)
		case "cover":
			message = fmt.Sprintf("%s must be an http(s) URL or a path starting with /", field)
		case "gt", "gte", "lte":
			message = fmt.Sprintf("%s is out of range (%s %s)", field, tag, param)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		fieldName := strings.ToLower(field[:1]) + field[1:]
		details = append(details, httpx.ErrorDetail{
			Field:   fieldName,
			Message: message,
		})
	}

	return details
}
