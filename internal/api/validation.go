package api

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

func validationDetails(err error) []ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ErrorDetail{
			Field:   strings.ToLower(fe.Field()),
			Message: "failed " + fe.Tag() + " validation",
		})
	}
	return details
}
