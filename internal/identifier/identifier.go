// Package identifier converts between the external string form of a
// student id and the datastore's native ObjectID.
//
// The external form is what the datastore hands out: 24 hex characters.
// Anything else is rejected before a query is built.
package identifier

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aanand-mishra/students-api/internal/types"
)

// ID is the native identifier stored in the _id field.
type ID = primitive.ObjectID

// New returns a fresh identifier. Backends that do not assign ids
// themselves (sqlite) call this on insert.
func New() ID {
	return primitive.NewObjectID()
}

// Decode parses raw into an ID. Wrong length, non-hex input and the empty
// string fail with types.ErrInvalidIdentifier.
func Decode(raw string) (ID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", types.ErrInvalidIdentifier, raw)
	}
	return id, nil
}

// Encode returns the external string form of id.
func Encode(id ID) string {
	return id.Hex()
}
