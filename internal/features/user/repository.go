package user

import (
	"context"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Create(ctx context.Context, user *common_models.User) error
	FindByUsername(ctx context.Context, username string) (*common_models.User, error)
	FindByID(ctx context.Context, id string) (*common_models.User, error)
	FindByStaffID(ctx context.Context, staffID string) (*common_models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error)
	FindByRole(ctx context.Context, role common_models.Role) ([]common_models.User, error)
	List(ctx context.Context, limit, offset int64) ([]common_models.User, error)
	Update(ctx context.Context, id string, user *common_models.User) error
	Delete(ctx context.Context, id string) error
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *common_models.User) error {
	_, err := r.Collection.InsertOne(ctx, user)
	return err
}

func (r *UserRepositoryImpl) FindByUsername(ctx context.Context, username string) (*common_models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*common_models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepositoryImpl) FindByStaffID(ctx context.Context, staffID string) (*common_models.User, error) {
	return r.findOne(ctx, bson.M{"staff_id": staffID})
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, filter bson.M) (*common_models.User, error) {
	var user common_models.User
	err := r.Collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, nil)
}

func (r *UserRepositoryImpl) FindByRole(ctx context.Context, role common_models.Role) ([]common_models.User, error) {
	return r.find(ctx, bson.M{"roles": role, "status": "active"}, nil)
}

func (r *UserRepositoryImpl) List(ctx context.Context, limit, offset int64) ([]common_models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetLimit(limit).
		SetSkip(offset)
	return r.find(ctx, bson.M{}, opts)
}

func (r *UserRepositoryImpl) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]common_models.User, error) {
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]common_models.User, 0)
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, id string, user *common_models.User) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"email":      user.Email,
			"full_name":  user.FullName,
			"staff_id":   user.StaffID,
			"department": user.Department,
			"roles":      user.Roles,
			"status":     user.Status,
			"updated_at": time.Now(),
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
