package supplier

import (
	"context"
	"time"

	"go-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SupplierRepository interface {
	Create(ctx context.Context, s *Supplier) error
	FindByID(ctx context.Context, id string) (*Supplier, error)
	FindByEmail(ctx context.Context, email string) (*Supplier, error)
	List(ctx context.Context, category, search string, activeOnly bool) ([]Supplier, error)
	Update(ctx context.Context, id string, s *Supplier) error
	Delete(ctx context.Context, id string) error
}

type SupplierRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewSupplierRepository(mongodb *database.MongodbDB) SupplierRepository {
	return &SupplierRepositoryImpl{
		Collection: mongodb.DB.Collection("suppliers"),
	}
}

func (r *SupplierRepositoryImpl) Create(ctx context.Context, s *Supplier) error {
	_, err := r.Collection.InsertOne(ctx, s)
	return err
}

func (r *SupplierRepositoryImpl) FindByID(ctx context.Context, id string) (*Supplier, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *SupplierRepositoryImpl) FindByEmail(ctx context.Context, email string) (*Supplier, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *SupplierRepositoryImpl) findOne(ctx context.Context, filter bson.M) (*Supplier, error) {
	var s Supplier
	err := r.Collection.FindOne(ctx, filter).Decode(&s)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepositoryImpl) List(ctx context.Context, category, search string, activeOnly bool) ([]Supplier, error) {
	query := bson.M{}
	if category != "" {
		query["category"] = category
	}
	if activeOnly {
		query["active"] = true
	}
	if search != "" {
		regex := primitive.Regex{Pattern: search, Options: "i"}
		query["$or"] = []bson.M{
			{"name": bson.M{"$regex": regex}},
			{"contact_person": bson.M{"$regex": regex}},
			{"email": bson.M{"$regex": regex}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	suppliers := make([]Supplier, 0)
	if err = cursor.All(ctx, &suppliers); err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *SupplierRepositoryImpl) Update(ctx context.Context, id string, s *Supplier) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	update := bson.M{
		"$set": bson.M{
			"name":           s.Name,
			"contact_person": s.ContactPerson,
			"email":          s.Email,
			"phone":          s.Phone,
			"address":        s.Address,
			"category":       s.Category,
			"active":         s.Active,
			"updated_at":     time.Now(),
		},
	}
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SupplierRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
