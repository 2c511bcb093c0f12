package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/bookreflect/backend/apperr"
	"github.com/kevinaaaquil/bookreflect/backend/models"
)

func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts user. A taken email yields an apperr ALREADY_EXISTS error.
func (db *DB) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := db.Users().InsertOne(ctx, user, options.InsertOne())
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, apperr.AlreadyExists("an account with this email already exists")
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) updateUser(ctx context.Context, id primitive.ObjectID, set bson.M) (bool, error) {
	res, err := db.Users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (db *DB) UpdateUserName(ctx context.Context, id primitive.ObjectID, name string) (bool, error) {
	return db.updateUser(ctx, id, bson.M{"name": name})
}

func (db *DB) UpdateUserPassword(ctx context.Context, id primitive.ObjectID, hashedPassword string) (bool, error) {
	return db.updateUser(ctx, id, bson.M{"password": hashedPassword})
}

func (db *DB) UpdateUserAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) (bool, error) {
	return db.updateUser(ctx, id, bson.M{"avatarUrl": avatarURL})
}
