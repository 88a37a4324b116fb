package validation

import (
	"document-archive/internal/domain"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register adds the archive specific tags to gin's validator.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("doccategory", validCategory); err != nil {
		return err
	}
	return v.RegisterValidation("reviewstatus", validReviewStatus)
}

func validCategory(fl validator.FieldLevel) bool {
	return domain.Category(fl.Field().String()).Valid()
}

// validReviewStatus accepts only the terminal states a reviewer may set.
func validReviewStatus(fl validator.FieldLevel) bool {
	switch domain.RequestStatus(fl.Field().String()) {
	case domain.RequestApproved, domain.RequestRejected:
		return true
	}
	return false
}
