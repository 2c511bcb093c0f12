package repository

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/apperr"
	"github.com/kevinaaaquil/bookreflect/backend/models"
	"github.com/kevinaaaquil/bookreflect/backend/service"
	"github.com/kevinaaaquil/bookreflect/backend/utils"
)

// ImportResult is a book created from an uploaded EPUB.
type ImportResult struct {
	Book        models.Book `json:"book"`
	NoISBNFound bool        `json:"noISBNFound,omitempty"` // metadata came from the file only
}

// Importer creates local books from EPUB files.
type Importer struct {
	books    *BookRepository
	metadata MetadataFetcher
	covers   ObjectStorage // nil when object storage is not configured
	log      *zap.Logger
}

func NewImporter(books *BookRepository, metadata MetadataFetcher, covers ObjectStorage, log *zap.Logger) *Importer {
	return &Importer{books: books, metadata: metadata, covers: covers, log: log}
}

// Import reads the EPUB's ISBN, looks its metadata up and creates a local book. Without an
// ISBN or a metadata match the file's own metadata is used, and the filename stands in for
// a missing title. An embedded cover is uploaded when the lookup supplied none.
func (im *Importer) Import(ctx context.Context, userID, filename string, data []byte) (ImportResult, error) {
	epub, err := utils.ReadEPUB(data)
	if err != nil {
		return ImportResult{}, apperr.Validation(err.Error())
	}
	log := im.log.With(zap.String("op", "Import"), zap.String("file", filename))

	book := models.Book{
		Title:       epub.Title(),
		Author:      epub.Author(),
		Description: epub.Description(),
		Status:      models.StatusAdded,
	}
	var res ImportResult

	isbn, err := epub.ISBN()
	if err != nil {
		res.NoISBNFound = true
	} else {
		meta, err := im.metadata.FetchMetadataByISBN(ctx, isbn)
		if err != nil {
			log.Warn("metadata lookup failed", zap.String("isbn", isbn), zap.Error(err))
		} else {
			applyMetadata(&book, meta)
		}
	}
	if book.Title == "" {
		book.Title = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	if book.Author == "" {
		book.Author = UnknownAuthor
	}
	if book.CoverURL == "" && im.covers != nil {
		book.CoverURL = im.uploadCover(ctx, log, epub)
	}

	created, err := im.books.CreateBook(ctx, userID, book)
	if err != nil {
		return ImportResult{}, err
	}
	res.Book = created
	return res, nil
}

func applyMetadata(book *models.Book, meta *service.BookMetadata) {
	if meta.Title != "" {
		book.Title = meta.Title
	}
	if len(meta.Authors) > 0 {
		book.Author = strings.Join(meta.Authors, ", ")
	}
	if meta.Description != "" {
		book.Description = meta.Description
	}
	if meta.CoverURL != "" {
		book.CoverURL = strings.ReplaceAll(meta.CoverURL, "http://", "https://")
	}
}

func (im *Importer) uploadCover(ctx context.Context, log *zap.Logger, epub *utils.EPUB) string {
	data, contentType, err := epub.Cover()
	if err != nil || len(data) == 0 {
		return ""
	}
	ext := ".jpg"
	if strings.Contains(contentType, "png") {
		ext = ".png"
	}
	key, err := im.covers.Upload(ctx, service.PrefixCovers, "cover"+ext, bytes.NewReader(data), contentType)
	if err != nil {
		log.Warn("cover upload failed", zap.Error(err))
		return ""
	}
	return service.MediaURL(key)
}
