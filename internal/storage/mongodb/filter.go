package mongodb

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/aanand-mishra/students-api/internal/query"
	"github.com/aanand-mishra/students-api/internal/types"
)

// filterDoc translates a query.Filter into a find predicate. An empty
// filter yields an empty document, which matches everything.
func filterDoc(f query.Filter) bson.D {
	doc := bson.D{}
	if f.Country != nil {
		doc = append(doc, bson.E{Key: "address.country", Value: *f.Country})
	}
	if f.MinAge != nil {
		doc = append(doc, bson.E{Key: "age", Value: bson.D{{Key: "$gte", Value: *f.MinAge}}})
	}
	return doc
}

// setDoc builds a {$set: {...}} update holding only the provided fields.
func setDoc(u types.UpdateStudent) bson.D {
	fields := u.Fields()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	set := make(bson.D, 0, len(keys))
	for _, k := range keys {
		set = append(set, bson.E{Key: k, Value: fields[k]})
	}
	return bson.D{{Key: "$set", Value: set}}
}
