package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"stockwise/internal/service"
	"stockwise/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

func init() {
	// report validation failures under the JSON field names clients send
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

var kindStatus = map[service.Kind]int{
	service.KindValidation:   http.StatusUnprocessableEntity,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusBadRequest,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
}

// respondError writes the envelope for err. Business errors keep their message;
// anything else is a 500 whose detail is only shown while gin runs in debug mode.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		status, ok := kindStatus[svcErr.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		c.JSON(status, response.Error(svcErr.Message))
		return
	}

	_ = c.Error(err)
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")

	msg := "Internal server error"
	if gin.IsDebugging() {
		msg = err.Error()
	}
	c.JSON(http.StatusInternalServerError, response.Error(msg))
}

// bindJSON decodes the body into req and answers 422 with a field map when
// validation fails. It returns false when a response has been written.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe)] = fieldMessage(fe)
		}
		c.JSON(http.StatusUnprocessableEntity, response.ValidationError(fields))
		return false
	}

	c.JSON(http.StatusBadRequest, response.Error("Invalid request payload"))
	return false
}

// fieldPath drops the struct name from the namespace: "CreateOrderRequest.items[0].quantity" -> "items[0].quantity"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}
