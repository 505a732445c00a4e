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

const collectionClients = "oauth_clients"

type ClientRepository struct {
	col *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{col: db.Collection(collectionClients)}
}

type mongoClient struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	ClientID             string             `bson:"client_id"`
	SecretHash           string             `bson:"secret_hash,omitempty"`
	Name                 string             `bson:"name"`
	Description          string             `bson:"description,omitempty"`
	Website              string             `bson:"website,omitempty"`
	RedirectURI          string             `bson:"redirect_uri"`
	IsPublic             bool               `bson:"is_public"`
	OIDCEnabled          bool               `bson:"oidc_enabled"`
	AllowedScopes        []string           `bson:"allowed_scopes"`
	AllowedGrantTypes    []string           `bson:"allowed_grant_types"`
	AllowedResponseTypes []string           `bson:"allowed_response_types"`
	CreatedAt            time.Time          `bson:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at"`
}

func fromDomainClient(c *domain.OAuthClient) mongoClient {
	return mongoClient{
		ClientID:             c.ClientID,
		SecretHash:           c.SecretHash,
		Name:                 c.Name,
		Description:          c.Description,
		Website:              c.Website,
		RedirectURI:          c.RedirectURI,
		IsPublic:             c.IsPublic,
		OIDCEnabled:          c.OIDCEnabled,
		AllowedScopes:        c.AllowedScopes,
		AllowedGrantTypes:    c.AllowedGrantTypes,
		AllowedResponseTypes: c.AllowedResponseTypes,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

func (mc *mongoClient) toDomain() *domain.OAuthClient {
	return &domain.OAuthClient{
		ID:                   mc.ID.Hex(),
		ClientID:             mc.ClientID,
		SecretHash:           mc.SecretHash,
		Name:                 mc.Name,
		Description:          mc.Description,
		Website:              mc.Website,
		RedirectURI:          mc.RedirectURI,
		IsPublic:             mc.IsPublic,
		OIDCEnabled:          mc.OIDCEnabled,
		AllowedScopes:        mc.AllowedScopes,
		AllowedGrantTypes:    mc.AllowedGrantTypes,
		AllowedResponseTypes: mc.AllowedResponseTypes,
		CreatedAt:            mc.CreatedAt,
		UpdatedAt:            mc.UpdatedAt,
	}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.OAuthClient) (*domain.OAuthClient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, fromDomainClient(client))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateClientID
		}
		return nil, fmt.Errorf("insert client: %w", err)
	}

	created := *client
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.OAuthClient, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ClientRepository) FindByClientID(ctx context.Context, clientID string) (*domain.OAuthClient, error) {
	return r.findOne(ctx, bson.M{"client_id": clientID})
}

func (r *ClientRepository) findOne(ctx context.Context, filter bson.M) (*domain.OAuthClient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoClient
	if err := r.col.FindOne(ctx, filter).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *ClientRepository) List(ctx context.Context) ([]domain.OAuthClient, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer cur.Close(ctx)

	var clients []domain.OAuthClient
	for cur.Next(ctx) {
		var mc mongoClient
		if err := cur.Decode(&mc); err != nil {
			return nil, 0, fmt.Errorf("decode client: %w", err)
		}
		clients = append(clients, *mc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	return clients, int64(len(clients)), nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.OAuthClient) (*domain.OAuthClient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(client.ID)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":                   client.Name,
		"description":            client.Description,
		"website":                client.Website,
		"redirect_uri":           client.RedirectURI,
		"is_public":              client.IsPublic,
		"oidc_enabled":           client.OIDCEnabled,
		"allowed_scopes":         client.AllowedScopes,
		"allowed_grant_types":    client.AllowedGrantTypes,
		"allowed_response_types": client.AllowedResponseTypes,
		"secret_hash":            client.SecretHash,
		"updated_at":             client.UpdatedAt,
	}}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrClientNotFound
	}
	return client, nil
}

// UpdateSecretHash overwrites only the secret digest, returning the updated
// document.
func (r *ClientRepository) UpdateSecretHash(ctx context.Context, id, secretHash string) (*domain.OAuthClient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}

	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"secret_hash": secretHash, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var mc mongoClient
	if err := res.Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("update client secret: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrClientNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// EnsureIndexes creates the unique client_id index.
func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "client_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
