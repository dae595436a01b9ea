package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/cart/models"
	"storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

const (
	cartKeyPrefix = "cart:session:"
	lineIDKey     = "cart:line_id"

	// Carts expire with the session; an untouched cart is abandoned.
	defaultCartTTL = 7 * 24 * time.Hour
)

// Redis stores one JSON cart document per session with a rolling TTL.
// This is the production implementation for multi-instance deployments
// where the edge can route a session to any replica.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOption configures a Redis cart store.
type RedisOption func(*Redis)

// WithTTL overrides the cart expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = ttl }
}

// NewRedis constructs a Redis-backed cart store.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		ttl:    defaultCartTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

type cartDoc struct {
	SessionID string    `json:"session_id"`
	Lines     []lineDoc `json:"lines"`
}

type lineDoc struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func cartKey(sessionID domain.SessionID) string {
	return cartKeyPrefix + sessionID.String()
}

func (r *Redis) FindBySession(ctx context.Context, sessionID domain.SessionID) (models.Cart, error) {
	raw, err := r.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Cart{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Cart{}, fmt.Errorf("get cart: %w", err)
	}

	var doc cartDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return docToCart(doc)
}

func (r *Redis) Save(ctx context.Context, cart models.Cart) error {
	raw, err := json.Marshal(cartToDoc(cart))
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(cart.SessionID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, sessionID domain.SessionID) error {
	if err := r.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// NextLineID allocates line ids from a shared counter so lines stay unique
// across replicas.
func (r *Redis) NextLineID(ctx context.Context) (domain.CartLineID, error) {
	next, err := r.client.Incr(ctx, lineIDKey).Result()
	if err != nil {
		return 0, fmt.Errorf("allocate cart line id: %w", err)
	}
	return domain.NewCartLineID(next)
}

func cartToDoc(cart models.Cart) cartDoc {
	doc := cartDoc{
		SessionID: cart.SessionID.String(),
		Lines:     make([]lineDoc, 0, len(cart.Lines)),
	}
	for _, line := range cart.Lines {
		doc.Lines = append(doc.Lines, lineDoc{
			ID:        int64(line.ID),
			ProductID: int64(line.ProductID),
			Quantity:  line.Quantity.Value(),
			CreatedAt: line.CreatedAt,
			UpdatedAt: line.UpdatedAt,
		})
	}
	return doc
}

func docToCart(doc cartDoc) (models.Cart, error) {
	sessionID, err := domain.ParseSessionID(doc.SessionID)
	if err != nil {
		return models.Cart{}, err
	}

	lines := make([]models.Line, 0, len(doc.Lines))
	for _, ld := range doc.Lines {
		lineID, err := domain.NewCartLineID(ld.ID)
		if err != nil {
			return models.Cart{}, err
		}
		productID, err := domain.NewProductID(ld.ProductID)
		if err != nil {
			return models.Cart{}, err
		}
		qty, err := domain.NewCount(ld.Quantity)
		if err != nil {
			return models.Cart{}, err
		}
		line, err := models.RestoreLine(lineID, sessionID, productID, qty, ld.CreatedAt, ld.UpdatedAt)
		if err != nil {
			return models.Cart{}, err
		}
		lines = append(lines, line)
	}
	return models.RestoreCart(sessionID, lines)
}
