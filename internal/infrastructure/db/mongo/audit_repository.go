package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

const collectionAudit = "content_events"

// AuditRepository persists content mutations to the content_events collection.
type AuditRepository struct {
	db *mongo.Database
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuditEvent) error {
	doc := bson.M{
		"content_id":   event.ContentID,
		"kind":         string(event.Kind),
		"action":       string(event.Action),
		"actor_id":     event.ActorID,
		"actor_role":   string(event.ActorRole),
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}

	_, err := r.db.Collection(collectionAudit).InsertOne(ctx, doc)
	return err
}
