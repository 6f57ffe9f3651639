// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// Address is embedded in every student record. It has no identity of its
// own and is always written as a complete {city, country} pair.
type Address struct {
	City    string `json:"city"    bson:"city"    validate:"required"`
	Country string `json:"country" bson:"country" validate:"required"`
}

// Student is the external shape of a stored record.
//
// ID is the string form of the datastore identifier (see package
// identifier). The native identifier type never appears here, so it cannot
// leak into a response body.
type Student struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Age     int     `json:"age"`
	Address Address `json:"address"`
}

// NewStudent is the body of a create request.
//
// Age and Address are pointers so that "missing" can be told apart from a
// zero value: {"age": 0} is a valid age, {} is a missing one.
//
// validate tags are checked by go-playground/validator:
//
//	required — the field must be present (non-nil pointer / non-empty string)
//	gte=0    — ages are never negative
type NewStudent struct {
	Name    string   `json:"name"    validate:"required"`
	Age     *int     `json:"age"     validate:"required,gte=0"`
	Address *Address `json:"address" validate:"required"`
}

// Student converts a validated create body into a record without an ID.
// Call it only after validation, it dereferences Age and Address.
func (n NewStudent) Student() Student {
	return Student{
		Name:    n.Name,
		Age:     *n.Age,
		Address: *n.Address,
	}
}

// UpdateStudent is the body of a PATCH request. Every field is optional and
// only the fields present in the request are written.
//
// A nil Address is skipped by the validator. A non-nil one is validated as
// a whole Address, so a partial {"city": "..."} object fails.
type UpdateStudent struct {
	Name    *string  `json:"name"    validate:"omitempty,min=1"`
	Age     *int     `json:"age"     validate:"omitempty,gte=0"`
	Address *Address `json:"address"`
}

// Stored field names shared by every backend.
const (
	FieldName    = "name"
	FieldAge     = "age"
	FieldAddress = "address"
)

// Fields returns the explicitly provided fields keyed by their stored name.
// Omitted fields are never part of the set, even when a zero value exists.
func (u UpdateStudent) Fields() map[string]any {
	fields := make(map[string]any, 3)
	if u.Name != nil {
		fields[FieldName] = *u.Name
	}
	if u.Age != nil {
		fields[FieldAge] = *u.Age
	}
	if u.Address != nil {
		fields[FieldAddress] = *u.Address
	}
	return fields
}

// IsEmpty reports whether the patch carries no fields at all.
func (u UpdateStudent) IsEmpty() bool {
	return u.Name == nil && u.Age == nil && u.Address == nil
}
