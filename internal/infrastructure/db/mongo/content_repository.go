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

	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/ports"
)

const collectionContent = "content"

// ContentRepository stores posts and sermons in one collection, partitioned
// by the kind field.
type ContentRepository struct {
	col *mongo.Collection
}

func NewContentRepository(db *mongo.Database) *ContentRepository {
	return &ContentRepository{col: db.Collection(collectionContent)}
}

type mongoContent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Kind      string             `bson:"kind"`
	Title     string             `bson:"title"`
	BodyHTML  string             `bson:"body_html"`
	Category  string             `bson:"category"`
	AuthorID  string             `bson:"author_id"`
	Pinned    bool               `bson:"pinned"`
	VideoURL  string             `bson:"video_url,omitempty"`
	Speaker   string             `bson:"speaker,omitempty"`
	ImageURL  string             `bson:"image_url,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func fromContent(i *domain.ContentItem) mongoContent {
	return mongoContent{
		Kind:      string(i.Kind),
		Title:     i.Title,
		BodyHTML:  i.BodyHTML,
		Category:  i.Category,
		AuthorID:  i.AuthorID,
		Pinned:    i.Pinned,
		VideoURL:  i.VideoURL,
		Speaker:   i.Speaker,
		ImageURL:  i.ImageURL,
		CreatedAt: i.CreatedAt.UTC(),
		UpdatedAt: i.UpdatedAt.UTC(),
	}
}

func (m *mongoContent) toDomain() *domain.ContentItem {
	return &domain.ContentItem{
		ID:        m.ID.Hex(),
		Kind:      domain.ContentKind(m.Kind),
		Title:     m.Title,
		BodyHTML:  m.BodyHTML,
		Category:  m.Category,
		AuthorID:  m.AuthorID,
		Pinned:    m.Pinned,
		VideoURL:  m.VideoURL,
		Speaker:   m.Speaker,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *ContentRepository) Create(ctx context.Context, item *domain.ContentItem) (*domain.ContentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fromContent(item)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert content: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *ContentRepository) FindByID(ctx context.Context, id string) (*domain.ContentItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrContentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoContent
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContentNotFound
		}
		return nil, fmt.Errorf("find content: %w", err)
	}
	return doc.toDomain(), nil
}

// Update replaces the editable fields. The pinned flag is owned by SetPinned
// and is never overwritten here.
func (r *ContentRepository) Update(ctx context.Context, item *domain.ContentItem) (*domain.ContentItem, error) {
	oid, err := primitive.ObjectIDFromHex(item.ID)
	if err != nil {
		return nil, domain.ErrContentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"title":      item.Title,
		"body_html":  item.BodyHTML,
		"category":   item.Category,
		"video_url":  item.VideoURL,
		"speaker":    item.Speaker,
		"image_url":  item.ImageURL,
		"updated_at": item.UpdatedAt.UTC(),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoContent
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContentNotFound
		}
		return nil, fmt.Errorf("update content: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrContentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

func (r *ContentRepository) List(ctx context.Context, f ports.ListContentFilter) ([]*domain.ContentItem, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"kind": string(f.Kind)}
	if f.Category != "" {
		filter["category"] = f.Category
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count content: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "pinned", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list content: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoContent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode content: %w", err)
	}

	items := make([]*domain.ContentItem, len(docs))
	for i := range docs {
		items[i] = docs[i].toDomain()
	}
	return items, total, nil
}

func (r *ContentRepository) CountPinned(ctx context.Context, kind domain.ContentKind) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"kind": string(kind), "pinned": true})
}

// SetPinned only matches documents whose flag differs, so concurrent
// identical requests report a single change.
func (r *ContentRepository) SetPinned(ctx context.Context, id string, pinned bool) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrContentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "pinned": bson.M{"$ne": pinned}},
		bson.M{"$set": bson.M{"pinned": pinned, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		// Either the item is gone or it already had the desired state.
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, domain.ErrContentNotFound
		}
		return false, nil
	}
	return true, nil
}

// EnsureIndexes creates the indexes backing list and pinned-count queries.
func (r *ContentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "pinned", Value: 1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
