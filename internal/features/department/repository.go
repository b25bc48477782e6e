package department

import (
	"context"
	"time"

	"go-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	FindByID(ctx context.Context, id string) (*Department, error)
	FindByName(ctx context.Context, name string) (*Department, error)
	FindByCode(ctx context.Context, code string) (*Department, error)
	List(ctx context.Context, activeOnly bool) ([]Department, error)
	Update(ctx context.Context, id string, d *Department) error
	Delete(ctx context.Context, id string) error
}

type DepartmentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewDepartmentRepository(mongodb *database.MongodbDB) DepartmentRepository {
	return &DepartmentRepositoryImpl{
		Collection: mongodb.DB.Collection("departments"),
	}
}

func (r *DepartmentRepositoryImpl) Create(ctx context.Context, d *Department) error {
	_, err := r.Collection.InsertOne(ctx, d)
	return err
}

func (r *DepartmentRepositoryImpl) FindByID(ctx context.Context, id string) (*Department, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *DepartmentRepositoryImpl) FindByName(ctx context.Context, name string) (*Department, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *DepartmentRepositoryImpl) FindByCode(ctx context.Context, code string) (*Department, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *DepartmentRepositoryImpl) findOne(ctx context.Context, filter bson.M) (*Department, error) {
	var d Department
	err := r.Collection.FindOne(ctx, filter).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]Department, error) {
	query := bson.M{}
	if activeOnly {
		query["active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	departments := make([]Department, 0)
	if err = cursor.All(ctx, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *DepartmentRepositoryImpl) Update(ctx context.Context, id string, d *Department) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	update := bson.M{
		"$set": bson.M{
			"name":        d.Name,
			"description": d.Description,
			"manager":     d.Manager,
			"active":      d.Active,
			"updated_at":  time.Now(),
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

func (r *DepartmentRepositoryImpl) Delete(ctx context.Context, id string) error {
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
