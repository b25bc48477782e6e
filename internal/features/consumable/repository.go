package consumable

import (
	"context"
	"time"

	"go-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ConsumableRepository interface {
	Create(ctx context.Context, c *Consumable) error
	FindByID(ctx context.Context, id string) (*Consumable, error)
	FindByCode(ctx context.Context, code string) (*Consumable, error)
	List(ctx context.Context, category, search string, activeOnly bool) ([]Consumable, error)
	LowStock(ctx context.Context) ([]Consumable, error)
	Update(ctx context.Context, id string, c *Consumable) error
	Delete(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, delta float64) (*Consumable, error)
}

type ConsumableRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewConsumableRepository(mongodb *database.MongodbDB) ConsumableRepository {
	return &ConsumableRepositoryImpl{
		Collection: mongodb.DB.Collection("consumables"),
	}
}

func (r *ConsumableRepositoryImpl) Create(ctx context.Context, c *Consumable) error {
	_, err := r.Collection.InsertOne(ctx, c)
	return err
}

func (r *ConsumableRepositoryImpl) FindByID(ctx context.Context, id string) (*Consumable, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ConsumableRepositoryImpl) FindByCode(ctx context.Context, code string) (*Consumable, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *ConsumableRepositoryImpl) findOne(ctx context.Context, filter bson.M) (*Consumable, error) {
	var c Consumable
	err := r.Collection.FindOne(ctx, filter).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConsumableRepositoryImpl) List(ctx context.Context, category, search string, activeOnly bool) ([]Consumable, error) {
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
			{"code": bson.M{"$regex": regex}},
			{"name": bson.M{"$regex": regex}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	consumables := make([]Consumable, 0)
	if err = cursor.All(ctx, &consumables); err != nil {
		return nil, err
	}
	return consumables, nil
}

func (r *ConsumableRepositoryImpl) LowStock(ctx context.Context) ([]Consumable, error) {
	query := bson.M{
		"active": true,
		"$expr":  bson.M{"$lte": bson.A{"$stock_level", "$reorder_level"}},
	}
	cursor, err := r.Collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	consumables := make([]Consumable, 0)
	if err = cursor.All(ctx, &consumables); err != nil {
		return nil, err
	}
	return consumables, nil
}

func (r *ConsumableRepositoryImpl) Update(ctx context.Context, id string, c *Consumable) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	update := bson.M{
		"$set": bson.M{
			"name":          c.Name,
			"category":      c.Category,
			"unit":          c.Unit,
			"reorder_level": c.ReorderLevel,
			"unit_price":    c.UnitPrice,
			"location":      c.Location,
			"active":        c.Active,
			"updated_at":    time.Now(),
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

func (r *ConsumableRepositoryImpl) Delete(ctx context.Context, id string) error {
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

// AdjustStock applies a delta atomically. Withdrawals only match while the
// current level covers them, so concurrent issues cannot drive stock
// negative.
func (r *ConsumableRepositoryImpl) AdjustStock(ctx context.Context, id string, delta float64) (*Consumable, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	filter := bson.M{"_id": oid}
	if delta < 0 {
		filter["stock_level"] = bson.M{"$gte": -delta}
	}

	update := bson.M{
		"$inc": bson.M{"stock_level": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Consumable
	err = r.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Distinguish a missing record from a stock shortfall
			existing, ferr := r.findOne(ctx, bson.M{"_id": oid})
			if ferr == nil && existing != nil {
				return nil, ErrInsufficientStock
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}
