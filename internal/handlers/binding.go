package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/sebasr/target-manager/internal/models"
	"github.com/sebasr/target-manager/internal/validation"
)

const msgRequired = "This field is required"

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator.
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// Report JSON field names instead of Go struct field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("dottedquad", func(fl validator.FieldLevel) bool {
			return models.IsDottedQuad(fl.Field().String())
		})
	})
}

// createTargetRequest is the POST body. Pointers distinguish missing fields from zero values.
type createTargetRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Altitude  *float64 `json:"altitude" binding:"required"`
	Frequency *float64 `json:"frequency" binding:"required,gt=0"`
	Speed     *float64 `json:"speed" binding:"required,gte=0"`
	Bearing   *float64 `json:"bearing" binding:"required,gte=0,lte=360"`
	IPAddress *string  `json:"ip_address" binding:"required,dottedquad"`
}

func (r createTargetRequest) toModel() models.TargetCreate {
	return models.TargetCreate{
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
		Altitude:  *r.Altitude,
		Frequency: *r.Frequency,
		Speed:     *r.Speed,
		Bearing:   *r.Bearing,
		IPAddress: *r.IPAddress,
	}
}

// updateTargetRequest is the PUT body; every field is optional
type updateTargetRequest struct {
	Latitude  *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Altitude  *float64 `json:"altitude"`
	Frequency *float64 `json:"frequency" binding:"omitempty,gt=0"`
	Speed     *float64 `json:"speed" binding:"omitempty,gte=0"`
	Bearing   *float64 `json:"bearing" binding:"omitempty,gte=0,lte=360"`
	IPAddress *string  `json:"ip_address" binding:"omitempty,dottedquad"`
}

func (r updateTargetRequest) toModel() models.TargetUpdate {
	return models.TargetUpdate{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Altitude:  r.Altitude,
		Frequency: r.Frequency,
		Speed:     r.Speed,
		Bearing:   r.Bearing,
		IPAddress: r.IPAddress,
	}
}

// bindingDetails converts a binding error into a response message and
// per-field details.
func bindingDetails(err error) (string, map[string]string) {
	if errors.Is(err, io.EOF) {
		return "Request body is required", nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				details[fe.Field()] = msgRequired
				continue
			}
			details[fe.Field()] = validation.Message(validation.Field(fe.Field()), validation.Full)
		}
		return "Validation error", details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && validation.IsValidField(validation.Field(typeErr.Field)) {
		field := validation.Field(typeErr.Field)
		return "Validation error", map[string]string{string(field): validation.Message(field, validation.Full)}
	}

	return "Validation error", map[string]string{"message": err.Error()}
}
