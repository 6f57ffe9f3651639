// Package schema decodes and validates request bodies.
//
// Every failure comes back as a *types.ValidationError listing the
// offending fields by their JSON path ("age", "address.city"), so the HTTP
// layer can map it to a client error without inspecting validator types.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/students-api/internal/types"
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON names instead of Go field names.
	v.RegisterTagNameFunc(jsonName)
	return v
}

// DecodeNewStudent reads a create body and checks it against the full
// Student shape.
func DecodeNewStudent(r io.Reader) (types.NewStudent, error) {
	var s types.NewStudent
	if err := decodeAndValidate(r, &s); err != nil {
		return types.NewStudent{}, err
	}
	return s, nil
}

// DecodeUpdate reads a PATCH body. All fields are optional; an explicit
// JSON null is the same as leaving the field out.
func DecodeUpdate(r io.Reader) (types.UpdateStudent, error) {
	var u types.UpdateStudent
	if err := decodeAndValidate(r, &u); err != nil {
		return types.UpdateStudent{}, err
	}
	return u, nil
}

// Validate checks the validate tags on v.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.NewValidationError("body", err.Error())
	}

	out := &types.ValidationError{Fields: make([]types.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, types.FieldError{
			Field:  fieldPath(fe),
			Reason: reason(fe),
		})
	}
	return out
}

// decodeAndValidate reports wrong-typed fields and failed tags together.
// A field that already has a type error is not reported again as missing.
func decodeAndValidate(r io.Reader, dst any) error {
	fields, err := decode(r, dst)
	if err != nil {
		return err
	}

	if err := Validate(dst); err != nil {
		var verr *types.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		for _, f := range verr.Fields {
			if !covered(fields, f.Field) {
				fields = append(fields, f)
			}
		}
	}

	if len(fields) > 0 {
		return &types.ValidationError{Fields: fields}
	}
	return nil
}

// decode reads exactly one JSON value from r into dst. Body-level failures
// come back as err; wrong-typed fields come back as fields, with dst
// holding whatever else decoded cleanly.
func decode(r io.Reader, dst any) (fields []types.FieldError, err error) {
	dec := json.NewDecoder(r)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, bodyError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, bodyError(err)
		}
		return nil, types.NewValidationError("body", "is not valid JSON")
	}

	err = json.Unmarshal(raw, dst)
	if err == nil {
		return nil, nil
	}

	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return nil, types.NewValidationError("body", err.Error())
	}

	fields = typeErrors("", raw, reflect.TypeOf(dst))
	if len(fields) == 0 {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		fields = []types.FieldError{{Field: field, Reason: "must be " + jsonType(typeErr.Type)}}
	}
	if len(fields) == 1 && fields[0].Field == "body" {
		return nil, &types.ValidationError{Fields: fields}
	}
	return fields, nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return types.NewValidationError("body", "is empty")
	case errors.As(err, &maxErr):
		return types.NewValidationError("body", fmt.Sprintf("must not exceed %d bytes", maxErr.Limit))
	default:
		return types.NewValidationError("body", "is not valid JSON")
	}
}

// typeErrors walks raw alongside t and reports every value whose JSON type
// does not fit its field. path is the JSON path of raw; "" is the body.
func typeErrors(path string, raw json.RawMessage, t reflect.Type) []types.FieldError {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	field := path
	if field == "" {
		field = "body"
	}

	if t.Kind() != reflect.Struct {
		if err := json.Unmarshal(raw, reflect.New(t).Interface()); err != nil {
			return []types.FieldError{{Field: field, Reason: "must be " + jsonType(t)}}
		}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return []types.FieldError{{Field: field, Reason: "must be a JSON object"}}
	}

	var out []types.FieldError
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := jsonName(sf)
		if name == "" || !sf.IsExported() {
			continue
		}
		// encoding/json matches keys case-insensitively.
		for key, value := range obj {
			if strings.EqualFold(key, name) {
				out = append(out, typeErrors(join(path, name), value, sf.Type)...)
				break
			}
		}
	}
	return out
}

func jsonName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}
	return name
}

func jsonType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "a JSON object"
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// covered reports whether field, or a parent of it, already has an error.
func covered(fields []types.FieldError, field string) bool {
	for _, f := range fields {
		if f.Field == field || strings.HasPrefix(field, f.Field+".") {
			return true
		}
	}
	return false
}

// fieldPath drops the root struct name from the namespace:
// "NewStudent.address.city" becomes "address.city".
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func reason(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "must not be empty"
		}
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}
