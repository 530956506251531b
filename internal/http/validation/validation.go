package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldErrors map[string]string

// FromBindError convierte el error de bind/validación en un mapa
// campo -> mensaje. dst: puntero al struct bindeado (para leer tags).
func FromBindError(err error, dst any) FieldErrors {
	out := FieldErrors{}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			key := fieldKey(dst, fe.StructField())
			out[key] = messageForTag(fe.Tag(), fe.Param())
		}
		return out
	}

	// otros errores de bind (tipo inválido, JSON roto)
	out["_"] = "Datos inválidos."
	return out
}

func fieldKey(dst any, structField string) string {
	t := reflect.TypeOf(dst)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return strings.ToLower(structField)
	}

	f, ok := t.FieldByName(structField)
	if !ok {
		return strings.ToLower(structField)
	}
	tag := f.Tag.Get("json")
	if tag == "" {
		return strings.ToLower(structField)
	}
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" || tag == "-" {
		return strings.ToLower(structField)
	}
	return tag
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "Este campo es obligatorio."
	case "email":
		return "Ingresa un correo válido."
	case "min":
		return "Debe tener al menos " + param + " caracteres."
	case "max":
		return "Debe tener como máximo " + param + " caracteres."
	case "gte":
		return "Debe ser mayor o igual a " + param + "."
	case "oneof":
		return "Valor no permitido."
	default:
		return "Valor inválido."
	}
}
