package requisition

import (
	"context"
	"time"

	"go-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ListFilter struct {
	Status     string
	Department string
	Search     string // matches number, staff name or department
}

type RequisitionRepository interface {
	Create(ctx context.Context, req *Requisition) error
	FindByID(ctx context.Context, id string) (*Requisition, error)
	List(ctx context.Context, filter ListFilter) ([]Requisition, error)
	FindByStatuses(ctx context.Context, statuses []Status) ([]Requisition, error)
	FindProcessed(ctx context.Context, limit int64) ([]Requisition, error)
	FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]Requisition, error)
	ApplyDecision(ctx context.Context, id string, allowed []Status, set bson.M) (*Requisition, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

type RequisitionRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRequisitionRepository(mongodb *database.MongodbDB) RequisitionRepository {
	return &RequisitionRepositoryImpl{
		Collection: mongodb.DB.Collection("requisitions"),
	}
}

func (r *RequisitionRepositoryImpl) Create(ctx context.Context, req *Requisition) error {
	_, err := r.Collection.InsertOne(ctx, req)
	return err
}

func (r *RequisitionRepositoryImpl) FindByID(ctx context.Context, id string) (*Requisition, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id cannot reference any record
		return nil, nil
	}
	var req Requisition
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *RequisitionRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]Requisition, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Department != "" {
		query["department"] = filter.Department
	}
	if filter.Search != "" {
		regex := primitive.Regex{Pattern: filter.Search, Options: "i"}
		query["$or"] = []bson.M{
			{"number": bson.M{"$regex": regex}},
			{"staff_name": bson.M{"$regex": regex}},
			{"department": bson.M{"$regex": regex}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "request_date", Value: -1}})
	return r.find(ctx, query, opts)
}

func (r *RequisitionRepositoryImpl) FindByStatuses(ctx context.Context, statuses []Status) ([]Requisition, error) {
	query := bson.M{"status": bson.M{"$in": statuses}}
	opts := options.Find().SetSort(bson.D{{Key: "request_date", Value: -1}})
	return r.find(ctx, query, opts)
}

// FindProcessed returns the most recently decided requisitions. Deliberately
// wider than the approved/rejected statuses: a supervisor approval lands in
// admin-review directly, so filtering on approved/rejected alone would hide
// the supervisor's own history.
func (r *RequisitionRepositoryImpl) FindProcessed(ctx context.Context, limit int64) ([]Requisition, error) {
	processed := []Status{
		StatusAdminReview, StatusSupervisorApproved, StatusSupervisorRejected,
		StatusAdminApproved, StatusAdminRejected, StatusCompleted,
	}
	query := bson.M{"status": bson.M{"$in": processed}}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, query, opts)
}

func (r *RequisitionRepositoryImpl) FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]Requisition, error) {
	open := []Status{StatusPending, StatusSupervisorReview, StatusAdminReview}
	query := bson.M{
		"status":       bson.M{"$in": open},
		"request_date": bson.M{"$lt": cutoff},
	}
	opts := options.Find().SetSort(bson.D{{Key: "request_date", Value: 1}})
	return r.find(ctx, query, opts)
}

// ApplyDecision writes a decision atomically: the update only matches while
// the record is still in one of the allowed statuses, so two reviewers
// racing on the same requisition cannot both succeed. Returns nil when the
// compare-and-swap found no matching document.
func (r *RequisitionRepositoryImpl) ApplyDecision(ctx context.Context, id string, allowed []Status, set bson.M) (*Requisition, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	filter := bson.M{
		"_id":    oid,
		"status": bson.M{"$in": allowed},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Requisition
	err = r.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &updated, nil
}

func (r *RequisitionRepositoryImpl) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[Status]int64)
	for cursor.Next(ctx) {
		var row struct {
			Status Status `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Status] = row.Count
	}
	return counts, cursor.Err()
}

func (r *RequisitionRepositoryImpl) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]Requisition, error) {
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requisitions := make([]Requisition, 0)
	if err = cursor.All(ctx, &requisitions); err != nil {
		return nil, err
	}
	return requisitions, nil
}
