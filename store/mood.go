package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/bookreflect/backend/models"
)

// moodDoc is the stored shape of a mood. _id is userId:moodId so clients can choose mood
// ids without colliding across users. Older clients wrote a single "tag" string and used the
// bare mood id as _id.
type moodDoc struct {
	ID        string   `bson:"_id"`
	MoodID    string   `bson:"moodId,omitempty"`
	UserID    string   `bson:"userId"`
	BookID    string   `bson:"bookId"`
	Tags      []string `bson:"tags"`
	Tag       string   `bson:"tag,omitempty"`
	Note      string   `bson:"note"`
	Quotes    []string `bson:"quotes"`
	CreatedAt int64    `bson:"created_at"` // epoch millis
}

func (d moodDoc) mood() models.Mood {
	tags := make([]string, 0, len(d.Tags)+1)
	if d.Tag != "" {
		tags = append(tags, d.Tag)
	}
	for _, t := range d.Tags {
		if t != d.Tag {
			tags = append(tags, t)
		}
	}
	quotes := d.Quotes
	if quotes == nil {
		quotes = []string{}
	}
	id := d.MoodID
	if id == "" {
		id = d.ID
	}
	return models.Mood{
		ID:        id,
		BookID:    d.BookID,
		Tags:      tags,
		Note:      d.Note,
		Quotes:    quotes,
		CreatedAt: time.UnixMilli(d.CreatedAt),
	}
}

func moodKey(userID, moodID string) string {
	return userID + ":" + moodID
}

// moodFilter matches the user's mood whether it was stored under the scoped key or, by an
// older client, under the bare id.
func moodFilter(userID, moodID string) bson.M {
	return bson.M{
		"userId": userID,
		"$or": bson.A{
			bson.M{"_id": moodKey(userID, moodID)},
			bson.M{"_id": moodID},
		},
	}
}

// SaveMood replaces the user's mood document, creating it if needed.
func (db *DB) SaveMood(ctx context.Context, userID string, mood models.Mood) error {
	doc := moodDoc{
		ID:        moodKey(userID, mood.ID),
		MoodID:    mood.ID,
		UserID:    userID,
		BookID:    mood.BookID,
		Tags:      mood.Tags,
		Note:      mood.Note,
		Quotes:    mood.Quotes,
		CreatedAt: mood.CreatedAt.UnixMilli(),
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if doc.Quotes == nil {
		doc.Quotes = []string{}
	}
	_, err := db.Moods().ReplaceOne(ctx,
		bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (db *DB) MoodsByBook(ctx context.Context, userID, bookID string) ([]models.Mood, error) {
	cur, err := db.Moods().Find(ctx, bson.M{"userId": userID, "bookId": bookID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []moodDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	moods := make([]models.Mood, 0, len(docs))
	for _, d := range docs {
		moods = append(moods, d.mood())
	}
	return moods, nil
}

func (db *DB) DeleteMood(ctx context.Context, userID, id string) (bool, error) {
	res, err := db.Moods().DeleteMany(ctx, moodFilter(userID, id))
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (db *DB) DeleteMoodsByBook(ctx context.Context, userID, bookID string) (int64, error) {
	res, err := db.Moods().DeleteMany(ctx, bson.M{"userId": userID, "bookId": bookID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
