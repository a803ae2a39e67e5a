package domain

import "time"

// ContentKind distinguishes the two content collections.
type ContentKind string

const (
	KindPost   ContentKind = "post"
	KindSermon ContentKind = "sermon"
)

// MaxPinned is the number of items of one kind that may be pinned at once.
const MaxPinned = 3

// Post categories, in selector order.
const (
	CategoryTestimonies = "testimonies"
	CategoryEvents      = "events"
	CategoryTeaching    = "teaching"
	CategoryNews        = "news"
)

// PostCategories is the ordered set of categories a post may carry.
var PostCategories = []string{
	CategoryTestimonies,
	CategoryEvents,
	CategoryTeaching,
	CategoryNews,
}

// SermonCategories is the ordered set of categories a sermon may carry.
var SermonCategories = []string{
	"Sunday Service",
	"Bible Study",
	"Special Event",
	"Youth Ministry",
	"Prayer Meeting",
}

// Valid reports whether k is a known content kind.
func (k ContentKind) Valid() bool {
	return k == KindPost || k == KindSermon
}

// Categories returns the categories recognised by the kind.
func (k ContentKind) Categories() []string {
	switch k {
	case KindPost:
		return PostCategories
	case KindSermon:
		return SermonCategories
	default:
		return nil
	}
}

// AcceptsCategory reports whether category is recognised by the kind.
func (k ContentKind) AcceptsCategory(category string) bool {
	for _, c := range k.Categories() {
		if c == category {
			return true
		}
	}
	return false
}

// ContentItem is a post or a sermon. BodyHTML is always stored sanitized.
type ContentItem struct {
	ID        string      `json:"id" bson:"_id,omitempty"`
	Kind      ContentKind `json:"kind" bson:"kind"`
	Title     string      `json:"title" bson:"title"`
	BodyHTML  string      `json:"body_html" bson:"body_html"`
	Category  string      `json:"category" bson:"category"`
	AuthorID  string      `json:"author_id" bson:"author_id"`
	Pinned    bool        `json:"pinned" bson:"pinned"`
	VideoURL  string      `json:"video_url,omitempty" bson:"video_url,omitempty"`
	Speaker   string      `json:"speaker,omitempty" bson:"speaker,omitempty"`
	ImageURL  string      `json:"image_url,omitempty" bson:"image_url,omitempty"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}
