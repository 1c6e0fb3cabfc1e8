package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ticketing/user-service/internal/core/domain"
)

const (
	usersCollection    = "users"
	countersCollection = "counters"
	userSequence       = "users"
)

// caseInsensitive is a strength-2 collation: compares letters ignoring case.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		coll:     db.Collection(usersCollection),
		counters: db.Collection(countersCollection),
	}
}

type mongoRole struct {
	ID          int64  `bson:"id"`
	Description string `bson:"description"`
}

type mongoUser struct {
	ID        int64     `bson:"_id"`
	FirstName string    `bson:"first_name"`
	LastName  string    `bson:"last_name"`
	UserName  string    `bson:"user_name"`
	PassWord  string    `bson:"pass_word"`
	Enabled   bool      `bson:"enabled"`
	Phone     string    `bson:"phone"`
	Gender    string    `bson:"gender,omitempty"`
	Role      mongoRole `bson:"role"`
	IsDeleted bool      `bson:"is_deleted"`
	Version   int64     `bson:"version"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserName:  u.UserName,
		PassWord:  u.PassWord,
		Enabled:   u.Enabled,
		Phone:     u.Phone,
		Gender:    string(u.Gender),
		Role:      mongoRole{ID: u.Role.ID, Description: u.Role.Description},
		IsDeleted: u.IsDeleted,
		Version:   u.Version,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:        mu.ID,
		FirstName: mu.FirstName,
		LastName:  mu.LastName,
		UserName:  mu.UserName,
		PassWord:  mu.PassWord,
		Enabled:   mu.Enabled,
		Phone:     mu.Phone,
		Gender:    domain.Gender(mu.Gender),
		Role:      domain.Role{ID: mu.Role.ID, Description: mu.Role.Description},
		IsDeleted: mu.IsDeleted,
		Version:   mu.Version,
		CreatedAt: mu.CreatedAt,
		UpdatedAt: mu.UpdatedAt,
	}
}

func (r *UserRepository) FindActiveByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	err := r.coll.FindOne(ctx, bson.M{"user_name": username, "is_deleted": false}).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindAllActiveOrderByFirstNameDesc(ctx context.Context) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "first_name", Value: -1}})
	return r.find(ctx, bson.M{"is_deleted": false}, opts)
}

// FindActiveByRoleDescription uses a case-insensitive collation so the
// role_description index can serve the query.
func (r *UserRepository) FindActiveByRoleDescription(ctx context.Context, description string) ([]*domain.User, error) {
	opts := options.Find().SetCollation(caseInsensitive)
	return r.find(ctx, bson.M{"role.description": description, "is_deleted": false}, opts)
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}

// Save inserts new users (ID == 0) with a sequence-allocated ID, and replaces
// existing ones only when the stored version still matches.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if user.ID == 0 {
		return r.insert(ctx, user)
	}

	doc := toMongoUser(user)
	doc.Version = user.Version + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID, "version": user.Version}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrConcurrentModification
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc := toMongoUser(user)
	doc.ID = id
	doc.Version = 1

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

// nextID atomically increments the users sequence in the counters collection.
func (r *UserRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": userSequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate user id: %w", err)
	}
	return counter.Seq, nil
}

// DeleteByUsername removes the active record stored under username. Deleted
// records keep their renamed username and are never matched here.
func (r *UserRepository) DeleteByUsername(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"user_name": username, "is_deleted": false}); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes the user queries rely on. Usernames are
// unique among active records only, so a deleted record never blocks reuse.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_name", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_deleted": false}),
		},
		{Keys: bson.D{{Key: "is_deleted", Value: 1}, {Key: "first_name", Value: -1}}},
		{
			Keys:    bson.D{{Key: "role.description", Value: 1}, {Key: "is_deleted", Value: 1}},
			Options: options.Index().SetCollation(caseInsensitive),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
