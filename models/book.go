package models

import "strings"

// BookStatus is a book's place on the user's shelf. The zero value means no status,
// which is what catalog and search results carry.
type BookStatus string

const (
	StatusNone      BookStatus = ""
	StatusAdded     BookStatus = "ADDED"
	StatusReading   BookStatus = "READING"
	StatusCompleted BookStatus = "COMPLETED"
)

var ValidStatuses = []BookStatus{StatusAdded, StatusReading, StatusCompleted}

// ParseBookStatus maps a stored status name to a BookStatus. Blank and unknown names yield StatusNone.
func ParseBookStatus(s string) BookStatus {
	switch BookStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusAdded:
		return StatusAdded
	case StatusReading:
		return StatusReading
	case StatusCompleted:
		return StatusCompleted
	default:
		return StatusNone
	}
}

type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Description string     `json:"description"`
	CoverURL    string     `json:"coverUrl"`
	Status      BookStatus `json:"status,omitempty"`
	IsLocal     bool       `json:"isLocal"`
}

// BookPage is one page of the global catalog.
type BookPage struct {
	Books      []Book `json:"books"`
	NextCursor string `json:"nextCursor,omitempty"`
	EndReached bool   `json:"endReached"`
}
