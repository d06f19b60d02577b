package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"catalog/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	ContentCollection  = "movies"
	FeedbackCollection = "feedback"
	SettingsCollection = "settings"
)

var newestFirst = bson.D{{Key: "_id", Value: -1}}

// contentRecord is a content document as stored in MongoDB
type contentRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	models.Document `bson:",inline"`
}

func (rec contentRecord) content() (*models.Content, error) {
	rec.Document.ID = rec.ID.Hex()
	content, err := rec.Document.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to decode content %s: %w", rec.ID.Hex(), err)
	}
	return content, nil
}

// MongoContentRepository stores content records in a MongoDB collection
type MongoContentRepository struct {
	coll *mongo.Collection
}

// NewMongoContentRepository creates a content repository backed by db
func NewMongoContentRepository(db *mongo.Database) *MongoContentRepository {
	return &MongoContentRepository{coll: db.Collection(ContentCollection)}
}

// Find returns records matching the filter, newest first
func (r *MongoContentRepository) Find(ctx context.Context, filter Filter, limit int) ([]models.Content, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}

	var records []contentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	contents := make([]models.Content, 0, len(records))
	for _, rec := range records {
		content, err := rec.content()
		if err != nil {
			return nil, err
		}
		contents = append(contents, *content)
	}
	return contents, nil
}

// Get retrieves a record by its ID
func (r *MongoContentRepository) Get(ctx context.Context, id string) (*models.Content, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("content %q: %w", id, ErrNotFound)
	}

	var rec contentRecord
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("content %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return rec.content()
}

// Distinct returns every value stored in the field across all records.
// Array fields are flattened by the server.
func (r *MongoContentRepository) Distinct(ctx context.Context, field string) ([]string, error) {
	if field != FieldPosterBadge && field != FieldGenres {
		return nil, fmt.Errorf("distinct not supported for field %q", field)
	}

	raw, err := r.coll.Distinct(ctx, field, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s: %w", field, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			values = append(values, s)
		}
	}
	return values, nil
}

// Create inserts a new record and assigns its ID
func (r *MongoContentRepository) Create(ctx context.Context, content *models.Content) error {
	result, err := r.coll.InsertOne(ctx, contentRecord{Document: content.Document()})
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	content.ID = oid.Hex()
	return nil
}

// Replace removes the fields of the kind the record is not, then sets the
// fields of the new record. Provider identity and rating are only set when
// present so earlier values survive an edit that did not consult the provider.
func (r *MongoContentRepository) Replace(ctx context.Context, id string, content *models.Content) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("content %q: %w", id, ErrNotFound)
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$unset": staleKindFields(content.Kind())})
	if err != nil {
		return fmt.Errorf("failed to clear stale fields: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("content %q: %w", id, ErrNotFound)
	}

	var rec contentRecord
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": contentFields(content)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("content %q: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to update content: %w", err)
	}

	content.ID = id
	content.TMDBID = rec.TMDBID
	content.VoteAverage = rec.VoteAverage
	return nil
}

// SetFlags updates the trending and coming-soon toggles
func (r *MongoContentRepository) SetFlags(ctx context.Context, id string, flags Flags) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("content %q: %w", id, ErrNotFound)
	}

	set := bson.M{}
	if flags.IsTrending != nil {
		set["is_trending"] = *flags.IsTrending
	}
	if flags.IsComingSoon != nil {
		set["is_coming_soon"] = *flags.IsComingSoon
	}
	if len(set) == 0 {
		_, err := r.Get(ctx, id)
		return err
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update flags: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("content %q: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a record
func (r *MongoContentRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("content %q: %w", id, ErrNotFound)
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("content %q: %w", id, ErrNotFound)
	}
	return nil
}

func mongoFilter(f Filter) bson.M {
	filter := bson.M{}

	if f.Kind != "" {
		filter["type"] = string(f.Kind)
	}
	if f.TrendingOnly {
		filter["is_trending"] = true
	}
	switch f.ComingSoon {
	case ComingSoonOnly:
		filter["is_coming_soon"] = true
	case ComingSoonExclude:
		filter["is_coming_soon"] = bson.M{"$ne": true}
	}
	if f.Badge != "" {
		filter["poster_badge"] = f.Badge
	}

	switch {
	case f.Genre != "" && len(f.AnyGenres) > 0:
		filter["$and"] = bson.A{
			bson.M{"genres": f.Genre},
			bson.M{"genres": bson.M{"$in": f.AnyGenres}},
		}
	case f.Genre != "":
		filter["genres"] = f.Genre
	case len(f.AnyGenres) > 0:
		filter["genres"] = bson.M{"$in": f.AnyGenres}
	}

	if f.TitleContains != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.TitleContains), Options: "i"}
	}
	if f.ExcludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(f.ExcludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}
	return filter
}

func staleKindFields(kind models.Kind) bson.M {
	if kind == models.KindSeries {
		return bson.M{"links": "", "watch_link": ""}
	}
	return bson.M{"episodes": ""}
}

func contentFields(c *models.Content) bson.M {
	d := c.Document()
	set := bson.M{
		"title":          d.Title,
		"type":           string(d.Type),
		"poster_badge":   d.PosterBadge,
		"poster":         d.Poster,
		"overview":       d.Overview,
		"release_date":   d.ReleaseDate,
		"genres":         d.Genres,
		"is_trending":    d.IsTrending,
		"is_coming_soon": d.IsComingSoon,
	}
	if d.TMDBID != 0 {
		set["tmdb_id"] = d.TMDBID
	}
	if d.VoteAverage != nil {
		set["vote_average"] = *d.VoteAverage
	}

	switch p := c.Playback.(type) {
	case models.SeriesPlayback:
		episodes := p.Episodes
		if episodes == nil {
			episodes = []models.Episode{}
		}
		set["episodes"] = episodes
	default:
		links := d.Links
		if links == nil {
			links = []models.Link{}
		}
		set["watch_link"] = d.WatchLink
		set["links"] = links
	}
	return set
}

// feedbackRecord is a feedback document as stored in MongoDB
type feedbackRecord struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Type              string             `bson:"type"`
	ContentTitle      string             `bson:"content_title"`
	Message           string             `bson:"message"`
	Email             string             `bson:"email"`
	ReportedContentID string             `bson:"reported_content_id"`
	Timestamp         time.Time          `bson:"timestamp"`
}

// MongoFeedbackRepository stores visitor feedback in MongoDB
type MongoFeedbackRepository struct {
	coll *mongo.Collection
}

// NewMongoFeedbackRepository creates a feedback repository backed by db
func NewMongoFeedbackRepository(db *mongo.Database) *MongoFeedbackRepository {
	return &MongoFeedbackRepository{coll: db.Collection(FeedbackCollection)}
}

// Create stores a feedback message with a server-assigned timestamp
func (r *MongoFeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	feedback.Timestamp = time.Now().UTC()

	result, err := r.coll.InsertOne(ctx, feedbackRecord{
		Type:              string(feedback.Type),
		ContentTitle:      feedback.ContentTitle,
		Message:           feedback.Message,
		Email:             feedback.Email,
		ReportedContentID: feedback.ReportedContentID,
		Timestamp:         feedback.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		feedback.ID = oid.Hex()
	}
	return nil
}

// List returns all feedback, newest first
func (r *MongoFeedbackRepository) List(ctx context.Context) ([]models.Feedback, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}

	var records []feedbackRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode feedback: %w", err)
	}

	list := make([]models.Feedback, 0, len(records))
	for _, rec := range records {
		list = append(list, models.Feedback{
			ID:                rec.ID.Hex(),
			Type:              models.FeedbackType(rec.Type),
			ContentTitle:      rec.ContentTitle,
			Message:           rec.Message,
			Email:             rec.Email,
			ReportedContentID: rec.ReportedContentID,
			Timestamp:         rec.Timestamp,
		})
	}
	return list, nil
}

// Delete removes a single feedback message
func (r *MongoFeedbackRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("feedback %q: %w", id, ErrNotFound)
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("feedback %q: %w", id, ErrNotFound)
	}
	return nil
}

// MongoSettingsRepository stores the singleton ad settings document
type MongoSettingsRepository struct {
	coll *mongo.Collection
}

// NewMongoSettingsRepository creates a settings repository backed by db
func NewMongoSettingsRepository(db *mongo.Database) *MongoSettingsRepository {
	return &MongoSettingsRepository{coll: db.Collection(SettingsCollection)}
}

// Get returns the saved settings, or empty settings when none were saved
func (r *MongoSettingsRepository) Get(ctx context.Context) (*models.AdSettings, error) {
	var s models.AdSettings
	if err := r.coll.FindOne(ctx, bson.D{}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &models.AdSettings{}, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

// Upsert creates or overwrites the settings document
func (r *MongoSettingsRepository) Upsert(ctx context.Context, s *models.AdSettings) error {
	_, err := r.coll.UpdateOne(ctx, bson.D{}, bson.M{"$set": s}, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}

// EnsureMongoIndexes creates the indexes used by catalog queries
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ContentCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "genres", Value: 1}}},
		{Keys: bson.D{{Key: "poster_badge", Value: 1}}},
		{Keys: bson.D{{Key: "is_trending", Value: 1}, {Key: "is_coming_soon", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create content indexes: %w", err)
	}

	_, err = db.Collection(FeedbackCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create feedback indexes: %w", err)
	}
	return nil
}
