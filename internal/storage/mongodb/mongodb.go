// Package mongodb provides a MongoDB-backed implementation of the
// storage.Storage interface using the official mongo-driver.
//
// Each student is one document in the "students" collection:
//
//	{ _id: ObjectId, name: string, age: int, address: { city, country } }
//
// The *mongo.Client owns a connection pool and is safe for concurrent use,
// so a single MongoDB value is shared by every request.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aanand-mishra/students-api/internal/identifier"
	"github.com/aanand-mishra/students-api/internal/query"
	"github.com/aanand-mishra/students-api/internal/types"
)

// CollectionName is the collection holding student documents.
const CollectionName = "students"

const connectTimeout = 10 * time.Second

// document is the persisted shape. It stays private to this package so
// the ObjectID never reaches a handler.
type document struct {
	ID      identifier.ID `bson:"_id,omitempty"`
	Name    string        `bson:"name"`
	Age     int           `bson:"age"`
	Address types.Address `bson:"address"`
}

func (d document) student() types.Student {
	return types.Student{
		ID:      identifier.Encode(d.ID),
		Name:    d.Name,
		Age:     d.Age,
		Address: d.Address,
	}
}

// MongoDB is the concrete implementation of storage.Storage.
type MongoDB struct {
	client   *mongo.Client
	students *mongo.Collection
}

// New connects to uri, pings the primary and returns a ready-to-use
// *MongoDB bound to database.
func New(ctx context.Context, uri, database string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb.New: connect: %w", err)
	}

	// Connect is lazy; Ping makes a bad uri or an unreachable server fail
	// at startup instead of on the first request.
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb.New: ping: %w", err)
	}

	return NewWithClient(client, database), nil
}

// NewWithClient wraps an already connected client.
func NewWithClient(client *mongo.Client, database string) *MongoDB {
	return &MongoDB{
		client:   client,
		students: client.Database(database).Collection(CollectionName),
	}
}

func (m *MongoDB) CreateStudent(ctx context.Context, student types.Student) (identifier.ID, error) {
	res, err := m.students.InsertOne(ctx, document{
		Name:    student.Name,
		Age:     student.Age,
		Address: student.Address,
	})
	if err != nil {
		return identifier.ID{}, types.Persistence("CreateStudent", err)
	}

	id, ok := res.InsertedID.(identifier.ID)
	if !ok {
		return identifier.ID{}, types.Persistence("CreateStudent",
			fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	return id, nil
}

func (m *MongoDB) GetStudentByID(ctx context.Context, id identifier.ID) (types.Student, error) {
	var doc document
	err := m.students.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return types.Student{}, fmt.Errorf("GetStudentByID %s: %w", identifier.Encode(id), types.ErrNotFound)
	}
	if err != nil {
		return types.Student{}, types.Persistence("GetStudentByID", err)
	}
	return doc.student(), nil
}

func (m *MongoDB) GetStudents(ctx context.Context, filter query.Filter, page query.Page) ([]types.Student, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(page.Offset).
		SetLimit(page.Limit)

	cur, err := m.students.Find(ctx, filterDoc(filter), opts)
	if err != nil {
		return nil, types.Persistence("GetStudents", err)
	}
	defer cur.Close(ctx)

	students := make([]types.Student, 0)
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, types.Persistence("GetStudents", err)
		}
		students = append(students, doc.student())
	}
	if err := cur.Err(); err != nil {
		return nil, types.Persistence("GetStudents", err)
	}

	return students, nil
}

func (m *MongoDB) UpdateStudentByID(ctx context.Context, id identifier.ID, update types.UpdateStudent) error {
	byID := bson.D{{Key: "_id", Value: id}}

	// $set refuses an empty document, so a no-field patch only has to
	// prove the record exists.
	if update.IsEmpty() {
		n, err := m.students.CountDocuments(ctx, byID, options.Count().SetLimit(1))
		if err != nil {
			return types.Persistence("UpdateStudentByID", err)
		}
		if n == 0 {
			return fmt.Errorf("UpdateStudentByID %s: %w", identifier.Encode(id), types.ErrNotFound)
		}
		return nil
	}

	res, err := m.students.UpdateOne(ctx, byID, setDoc(update))
	if err != nil {
		return types.Persistence("UpdateStudentByID", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("UpdateStudentByID %s: %w", identifier.Encode(id), types.ErrNotFound)
	}
	return nil
}

func (m *MongoDB) DeleteStudentByID(ctx context.Context, id identifier.ID) error {
	res, err := m.students.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return types.Persistence("DeleteStudentByID", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("DeleteStudentByID %s: %w", identifier.Encode(id), types.ErrNotFound)
	}
	return nil
}

func (m *MongoDB) Ping(ctx context.Context) error {
	return types.Persistence("Ping", m.client.Ping(ctx, nil))
}

func (m *MongoDB) Close(ctx context.Context) error {
	return types.Persistence("Close", m.client.Disconnect(ctx))
}
