package models

import "time"

// Mood is a reflection recorded against a book.
type Mood struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	Tags      []string  `json:"tags"`
	Note      string    `json:"note"`
	Quotes    []string  `json:"quotes"`
	IsLocal   bool      `json:"isLocal"`
	CreatedAt time.Time `json:"createdAt"`
}

// MoodWithBook is a mood decorated with the title of its book, as listed across a user's shelf.
type MoodWithBook struct {
	Mood
	BookTitle string `json:"bookTitle"`
}
