package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/storefront-api/internal/core/domain"
)

const (
	collectionCarts = "carts"

	// An upsert racing another upsert on the unique user_id index can fail
	// with a duplicate key error; the retry then finds the winner's document.
	upsertAttempts = 3
)

// CartRepository stores one document per user in the carts collection.
type CartRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{
		col: db.Collection(collectionCarts),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type mongoCartItem struct {
	ProductID string `bson:"product_id"`
	Quantity  int    `bson:"quantity"`
}

type mongoCart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	Items      []mongoCartItem    `bson:"items"`
	TotalPrice float64            `bson:"total_price"`
	Version    int64              `bson:"version"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (mc mongoCart) toDomain() *domain.Cart {
	items := make([]domain.CartItem, 0, len(mc.Items))
	for _, it := range mc.Items {
		items = append(items, domain.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return &domain.Cart{
		ID:         mc.ID.Hex(),
		UserID:     mc.UserID,
		Items:      items,
		TotalPrice: mc.TotalPrice,
		Version:    mc.Version,
		CreatedAt:  mc.CreatedAt,
		UpdatedAt:  mc.UpdatedAt,
	}
}

func toMongoItems(items []domain.CartItem) []mongoCartItem {
	out := make([]mongoCartItem, 0, len(items))
	for _, it := range items {
		out = append(out, mongoCartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// GetOrCreate returns the user's cart, creating an empty one with a single
// atomic upsert. The user_id equality in the filter is copied into the new
// document by the server.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.now()
	filter := bson.M{"user_id": userID}
	update := bson.M{"$setOnInsert": bson.M{
		"items":       bson.A{},
		"total_price": 0.0,
		"version":     int64(0),
		"created_at":  now,
		"updated_at":  now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var lastErr error
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		var mc mongoCart
		err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mc)
		if err == nil {
			return mc.toDomain(), nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, domain.StoreError("get or create cart", err)
		}
		lastErr = err
	}
	return nil, domain.StoreError("get or create cart", lastErr)
}

// Save replaces items and total when the stored version still matches.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": cart.UserID, "version": cart.Version}
	if cart.Version == 0 {
		// Documents written before versioning have no version field.
		filter = bson.M{
			"user_id": cart.UserID,
			"$or": bson.A{
				bson.M{"version": int64(0)},
				bson.M{"version": bson.M{"$exists": false}},
			},
		}
	}

	now := r.now()
	update := bson.M{
		"$set": bson.M{
			"items":       toMongoItems(cart.Items),
			"total_price": cart.TotalPrice,
			"updated_at":  now,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return domain.StoreError("save cart", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCartConflict
	}

	cart.Version++
	cart.UpdatedAt = now
	return nil
}

// EnsureIndexes creates the unique user_id index that backs get-or-create.
func (r *CartRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
