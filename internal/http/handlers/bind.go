package handlers

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON decodes the body into out and answers 400 with per-field details
// when it cannot. Request bodies are flat, so fields are named by json tag.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)
	if err == nil {
		return true
	}

	var (
		validationErrs validator.ValidationErrors
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &validationErrs) && len(validationErrs) > 0:
		fields := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			param := fe.Param()
			if fe.Tag() == "eqfield" {
				param = jsonName(out, param)
			}
			fields = append(fields, FieldError{
				Field:   jsonName(out, fe.StructField()),
				Rule:    fe.Tag(),
				Param:   param,
				Message: validationMessage(fe.Tag(), param),
			})
		}
		RespondBadRequest(ctx, fields[0].Field+" "+fields[0].Message, gin.H{"fields": fields})

	case errors.As(err, &syntaxErr):
		RespondBadRequest(ctx, "Invalid request body", gin.H{"json": "invalid_json_syntax"})

	case errors.As(err, &typeErr):
		field := typeErr.Field
		RespondBadRequest(ctx, field+" has the wrong type", gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: "must be of type " + typeErr.Type.String(),
			}},
		})

	default:
		RespondBadRequest(ctx, "Invalid request body", gin.H{"reason": err.Error()})
	}
	return false
}

// jsonName maps a Go field name of the bound struct to its json key.
func jsonName(out interface{}, structField string) string {
	t := reflect.TypeOf(out)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}

	sf, ok := t.FieldByName(structField)
	if !ok {
		return structField
	}
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return structField
	}
	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "eqfield":
		return "must match " + param
	case "uuid":
		return "must be a valid id"
	default:
		return "failed " + rule + " validation"
	}
}
