package automation

import (
	"context"
	"time"

	"go-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AutomationRepository interface {
	Create(ctx context.Context, rule *AutomationRule) error
	FindActiveByTrigger(ctx context.Context, trigger string) ([]AutomationRule, error)
	List(ctx context.Context) ([]AutomationRule, error)
	Update(ctx context.Context, id string, rule *AutomationRule) error
	Delete(ctx context.Context, id string) error
}

type AutomationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAutomationRepository(mongodb *database.MongodbDB) AutomationRepository {
	return &AutomationRepositoryImpl{
		Collection: mongodb.DB.Collection("automation_rules"),
	}
}

func (r *AutomationRepositoryImpl) Create(ctx context.Context, rule *AutomationRule) error {
	_, err := r.Collection.InsertOne(ctx, rule)
	return err
}

func (r *AutomationRepositoryImpl) FindActiveByTrigger(ctx context.Context, trigger string) ([]AutomationRule, error) {
	return r.find(ctx, bson.M{"trigger": trigger, "active": true})
}

func (r *AutomationRepositoryImpl) List(ctx context.Context) ([]AutomationRule, error) {
	return r.find(ctx, bson.M{})
}

func (r *AutomationRepositoryImpl) find(ctx context.Context, query bson.M) ([]AutomationRule, error) {
	cursor, err := r.Collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rules := make([]AutomationRule, 0)
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *AutomationRepositoryImpl) Update(ctx context.Context, id string, rule *AutomationRule) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"name":       rule.Name,
			"trigger":    rule.Trigger,
			"active":     rule.Active,
			"conditions": rule.Conditions,
			"actions":    rule.Actions,
			"updated_at": time.Now(),
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *AutomationRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
