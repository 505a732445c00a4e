package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/centralauth/centralauth/internal/core/domain"
)

const collectionSessions = "sessions"

// SessionRepository is the Mongo-backed session ledger. The single-flight
// refresh guarantee rides on CompareAndRevoke being a single atomic
// findAndModify, so it holds across service replicas.
type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection(collectionSessions)}
}

type mongoSession struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	UserID           string             `bson:"user_id"`
	RefreshTokenHash string             `bson:"refresh_token_hash"`
	IssuedAt         time.Time          `bson:"issued_at"`
	ExpiresAt        time.Time          `bson:"expires_at"`
	UserAgent        string             `bson:"user_agent,omitempty"`
	IPAddress        string             `bson:"ip_address,omitempty"`
	Revoked          bool               `bson:"revoked"`
	RevokedAt        time.Time          `bson:"revoked_at,omitempty"`
	RotatedFrom      string             `bson:"rotated_from,omitempty"`
}

func (ms *mongoSession) toDomain() *domain.Session {
	return &domain.Session{
		ID:               ms.ID.Hex(),
		UserID:           ms.UserID,
		RefreshTokenHash: ms.RefreshTokenHash,
		IssuedAt:         ms.IssuedAt,
		ExpiresAt:        ms.ExpiresAt,
		UserAgent:        ms.UserAgent,
		IPAddress:        ms.IPAddress,
		Revoked:          ms.Revoked,
		RevokedAt:        ms.RevokedAt,
		RotatedFrom:      ms.RotatedFrom,
	}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoSession{
		UserID:           s.UserID,
		RefreshTokenHash: s.RefreshTokenHash,
		IssuedAt:         s.IssuedAt,
		ExpiresAt:        s.ExpiresAt,
		UserAgent:        s.UserAgent,
		IPAddress:        s.IPAddress,
		Revoked:          false,
		RotatedFrom:      s.RotatedFrom,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	created := *s
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *SessionRepository) GetByTokenHash(ctx context.Context, hash string) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ms mongoSession
	if err := r.col.FindOne(ctx, bson.M{"refresh_token_hash": hash}).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return ms.toDomain(), nil
}

// CompareAndRevoke flips revoked false→true in one findAndModify. The filter
// on revoked:false makes it a storage-level CAS: with N concurrent callers
// exactly one matches the document, the rest see no match and return false.
func (r *SessionRepository) CompareAndRevoke(ctx context.Context, sessionID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return false, nil
	}

	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true, "revoked_at": time.Now().UTC()}},
	)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("compare-and-revoke: %w", err)
	}
	return true, nil
}

func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	res, err := r.col.UpdateMany(ctx,
		bson.M{"user_id": userID, "revoked": false, "expires_at": bson.M{"$gt": now}},
		bson.M{"$set": bson.M{"revoked": true, "revoked_at": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("revoke all sessions: %w", err)
	}
	return res.ModifiedCount, nil
}

// DeleteExpiredBefore removes sessions whose expiry predates cutoff. Only
// terminal rows match, so the sweep never interferes with CompareAndRevoke.
func (r *SessionRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the unique token-hash index plus lookup indexes.
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "refresh_token_hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "revoked", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
