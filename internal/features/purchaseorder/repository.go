package purchaseorder

import (
	"context"

	"go-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderFilter struct {
	Status     string
	SupplierID string
	Search     string
}

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *PurchaseOrder) error
	FindByID(ctx context.Context, id string) (*PurchaseOrder, error)
	List(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error)
	CountOpen(ctx context.Context) (int64, error)
	// ApplyStatus advances the order only while its status is still one of
	// allowed; it returns nil when the guard no longer matches.
	ApplyStatus(ctx context.Context, id string, allowed []OrderStatus, set bson.M) (*PurchaseOrder, error)
}

type PurchaseOrderRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewPurchaseOrderRepository(mongodb *database.MongodbDB) PurchaseOrderRepository {
	return &PurchaseOrderRepositoryImpl{
		Collection: mongodb.DB.Collection("purchase_orders"),
	}
}

func (r *PurchaseOrderRepositoryImpl) Create(ctx context.Context, po *PurchaseOrder) error {
	_, err := r.Collection.InsertOne(ctx, po)
	return err
}

func (r *PurchaseOrderRepositoryImpl) FindByID(ctx context.Context, id string) (*PurchaseOrder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var po PurchaseOrder
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&po); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

func (r *PurchaseOrderRepositoryImpl) List(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.SupplierID != "" {
		query["supplier_id"] = filter.SupplierID
	}
	if filter.Search != "" {
		regex := primitive.Regex{Pattern: filter.Search, Options: "i"}
		query["$or"] = []bson.M{
			{"number": bson.M{"$regex": regex}},
			{"supplier_name": bson.M{"$regex": regex}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "order_date", Value: -1}})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]PurchaseOrder, 0)
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PurchaseOrderRepositoryImpl) CountOpen(ctx context.Context) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": []OrderStatus{OrderStatusDraft, OrderStatusSent, OrderStatusConfirmed}},
	})
}

func (r *PurchaseOrderRepositoryImpl) ApplyStatus(ctx context.Context, id string, allowed []OrderStatus, set bson.M) (*PurchaseOrder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	filter := bson.M{
		"_id":    oid,
		"status": bson.M{"$in": allowed},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var po PurchaseOrder
	err = r.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&po)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}
