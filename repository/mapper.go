package repository

import (
	"strings"

	"github.com/kevinaaaquil/bookreflect/backend/models"
	"github.com/kevinaaaquil/bookreflect/backend/service"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = service.MaxResults

	UntitledBook  = "Untitled"
	UnknownAuthor = "Unknown"
)

// ClampPageSize maps a requested page size into [1, MaxPageSize], with 0 or less
// meaning DefaultPageSize.
func ClampPageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}

// VolumeToBook maps a search result to a remote book with no status.
func VolumeToBook(v service.Volume) models.Book {
	info := v.VolumeInfo
	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = UntitledBook
	}
	author := strings.Join(info.Authors, ", ")
	if author == "" {
		author = UnknownAuthor
	}
	return models.Book{
		ID:          v.ID,
		Title:       title,
		Author:      author,
		Description: info.Description,
		CoverURL:    strings.ReplaceAll(info.Thumbnail(), "http://", "https://"),
	}
}

func VolumesToBooks(vols []service.Volume) []models.Book {
	books := make([]models.Book, 0, len(vols))
	for _, v := range vols {
		books = append(books, VolumeToBook(v))
	}
	return books
}

// distinctBooks keeps the first book for each id.
func distinctBooks(books []models.Book) []models.Book {
	seen := make(map[string]struct{}, len(books))
	out := make([]models.Book, 0, len(books))
	for _, b := range books {
		if _, ok := seen[b.ID]; ok {
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}
	return out
}

// distinctMoods keeps the first mood for each id.
func distinctMoods(moods []models.Mood) []models.Mood {
	seen := make(map[string]struct{}, len(moods))
	out := make([]models.Mood, 0, len(moods))
	for _, m := range moods {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

func markBooks(books []models.Book, local bool) {
	for i := range books {
		books[i].IsLocal = local
	}
}

func markMoods(moods []models.Mood, local bool) {
	for i := range moods {
		moods[i].IsLocal = local
	}
}
