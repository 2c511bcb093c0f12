package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/bookreflect/backend/models"
)

type catalogDoc struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Author      string    `bson:"author"`
	Description string    `bson:"description"`
	CoverURL    string    `bson:"coverUrl"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func (d catalogDoc) book() models.Book {
	return models.Book{
		ID:          d.ID,
		Title:       d.Title,
		Author:      d.Author,
		Description: d.Description,
		CoverURL:    d.CoverURL,
	}
}

type libraryEntry struct {
	ID      string    `bson:"_id"`
	UserID  string    `bson:"userId"`
	BookID  string    `bson:"bookId"`
	Status  string    `bson:"status"`
	AddedAt time.Time `bson:"addedAt"`
}

func libraryID(userID, bookID string) string {
	return userID + ":" + bookID
}

// UpsertCatalogBook writes book to the catalog, assigning a new id when it has none.
func (db *DB) UpsertCatalogBook(ctx context.Context, book *models.Book) error {
	if book.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("generate book id: %w", err)
		}
		book.ID = id
	}
	update := bson.M{
		"$set": bson.M{
			"title":       book.Title,
			"author":      book.Author,
			"description": book.Description,
			"coverUrl":    book.CoverURL,
		},
		"$setOnInsert": bson.M{"createdAt": time.Now()},
	}
	_, err := db.Books().UpdateOne(ctx, bson.M{"_id": book.ID}, update, options.Update().SetUpsert(true))
	return err
}

func (db *DB) CatalogBookByID(ctx context.Context, id string) (*models.Book, error) {
	var doc catalogDoc
	err := db.Books().FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b := doc.book()
	return &b, nil
}

func (db *DB) findCatalog(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Book, error) {
	cur, err := db.Books().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []catalogDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	books := make([]models.Book, 0, len(docs))
	for _, d := range docs {
		books = append(books, d.book())
	}
	return books, nil
}

// CatalogPage returns up to limit catalog books with ids after the cursor, in id order.
// An empty cursor starts from the beginning.
func (db *DB) CatalogPage(ctx context.Context, after string, limit int) ([]models.Book, error) {
	filter := bson.M{}
	if after != "" {
		filter["_id"] = bson.M{"$gt": after}
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit))
	return db.findCatalog(ctx, filter, opts)
}

// SearchCatalog matches query case-insensitively against title and author.
func (db *DB) SearchCatalog(ctx context.Context, query string, limit int) ([]models.Book, error) {
	pattern := bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	filter := bson.M{"$or": bson.A{bson.M{"title": pattern}, bson.M{"author": pattern}}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit))
	return db.findCatalog(ctx, filter, opts)
}

// AddToLibrary puts the book on the user's shelf with status, or updates the status if
// it is already there.
func (db *DB) AddToLibrary(ctx context.Context, userID, bookID string, status models.BookStatus) error {
	update := bson.M{
		"$set": bson.M{"status": string(status)},
		"$setOnInsert": bson.M{
			"userId":  userID,
			"bookId":  bookID,
			"addedAt": time.Now(),
		},
	}
	_, err := db.Library().UpdateOne(ctx, bson.M{"_id": libraryID(userID, bookID)}, update, options.Update().SetUpsert(true))
	return err
}

// UpdateLibraryStatus reports whether the user's library had the book.
func (db *DB) UpdateLibraryStatus(ctx context.Context, userID, bookID string, status models.BookStatus) (bool, error) {
	res, err := db.Library().UpdateOne(ctx,
		bson.M{"_id": libraryID(userID, bookID)},
		bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (db *DB) RemoveFromLibrary(ctx context.Context, userID, bookID string) (bool, error) {
	res, err := db.Library().DeleteOne(ctx, bson.M{"_id": libraryID(userID, bookID)})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// LibraryBooks returns the user's shelf in the order books were added. Entries whose
// catalog document no longer exists are skipped.
func (db *DB) LibraryBooks(ctx context.Context, userID string) ([]models.Book, error) {
	cur, err := db.Library().Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "addedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var entries []libraryEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []models.Book{}, nil
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.BookID)
	}
	catalog, err := db.findCatalog(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Book, len(catalog))
	for _, b := range catalog {
		byID[b.ID] = b
	}

	books := make([]models.Book, 0, len(entries))
	for _, e := range entries {
		b, ok := byID[e.BookID]
		if !ok {
			continue
		}
		b.Status = models.ParseBookStatus(e.Status)
		books = append(books, b)
	}
	return books, nil
}
