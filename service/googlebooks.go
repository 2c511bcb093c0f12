package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrRateLimited = errors.New("google books: rate limited")
	ErrNotFound    = errors.New("google books: no volume found")
)

// MaxResults is the largest page the volumes endpoint serves.
const MaxResults = 40

// GoogleBooks talks to the public Google Books volumes API.
type GoogleBooks struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewGoogleBooks returns a client for baseURL (e.g. https://www.googleapis.com/books/v1).
// Outbound calls are limited to rps requests per second.
func NewGoogleBooks(baseURL, apiKey string, rps float64) *GoogleBooks {
	if rps <= 0 {
		rps = 5
	}
	return &GoogleBooks{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// short timeout so slow/hung responses don't block callers
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume is a single search result.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

type VolumeInfo struct {
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"publishedDate"`
	Description   string   `json:"description"`
	PageCount     int      `json:"pageCount"`
	Categories    []string `json:"categories"`
	ImageLinks    *struct {
		SmallThumbnail string `json:"smallThumbnail"`
		Thumbnail      string `json:"thumbnail"`
	} `json:"imageLinks"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
}

// Thumbnail returns the thumbnail link, or "" when the volume has none.
func (vi VolumeInfo) Thumbnail() string {
	if vi.ImageLinks == nil {
		return ""
	}
	return vi.ImageLinks.Thumbnail
}

func (g *GoogleBooks) volumes(ctx context.Context, q url.Values) (*volumesResponse, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if g.apiKey != "" {
		q.Set("key", g.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/volumes?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("google books returned %d", resp.StatusCode)
	}
	var data volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode volumes: %w", err)
	}
	return &data, nil
}

// Search returns up to maxResults book volumes for query starting at startIndex.
func (g *GoogleBooks) Search(ctx context.Context, query string, startIndex, maxResults int) ([]Volume, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if maxResults <= 0 {
		return nil, nil
	}
	if maxResults > MaxResults {
		maxResults = MaxResults
	}
	if startIndex < 0 {
		startIndex = 0
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("printType", "books")
	q.Set("startIndex", strconv.Itoa(startIndex))
	q.Set("maxResults", strconv.Itoa(maxResults))
	data, err := g.volumes(ctx, q)
	if err != nil {
		return nil, err
	}
	return data.Items, nil
}

// BookMetadata is the normalized metadata of a single volume.
type BookMetadata struct {
	VolumeID     string
	Title        string
	Authors      []string
	Publisher    string
	PublishDate  string
	ISBN         string
	PageCount    int
	Description  string
	CoverURL     string
	ThumbnailURL string
	Categories   []string
}

// FetchMetadataByISBN fetches book metadata by ISBN.
func (g *GoogleBooks) FetchMetadataByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	if isbn == "" {
		return nil, fmt.Errorf("isbn is required")
	}
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	data, err := g.volumes(ctx, q)
	if err != nil {
		return nil, err
	}
	if data.TotalItems == 0 || len(data.Items) == 0 {
		return nil, fmt.Errorf("%w for isbn %s", ErrNotFound, isbn)
	}
	v := data.Items[0]
	vi := v.VolumeInfo
	meta := &BookMetadata{
		VolumeID:     v.ID,
		Title:        vi.Title,
		Authors:      vi.Authors,
		Publisher:    vi.Publisher,
		PublishDate:  vi.PublishedDate,
		PageCount:    vi.PageCount,
		Categories:   vi.Categories,
		Description:  strings.TrimSpace(vi.Description),
		ThumbnailURL: vi.Thumbnail(),
		ISBN:         isbn,
	}
	if vi.Subtitle != "" {
		meta.Title = meta.Title + ": " + vi.Subtitle
	}
	for _, id := range vi.IndustryIdentifiers {
		if id.Type == "ISBN_13" || id.Type == "ISBN_10" {
			meta.ISBN = id.Identifier
			break
		}
	}
	// Open Library covers by ISBN avoid the captcha Google's image links often serve
	meta.CoverURL = openLibraryCoverURL(meta.ISBN, "L")
	return meta, nil
}

// openLibraryCoverURL returns a direct cover image URL by ISBN. Size: S, M or L.
func openLibraryCoverURL(isbn, size string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	if clean == "" {
		return ""
	}
	return "https://covers.openlibrary.org/b/isbn/" + url.PathEscape(clean) + "-" + size + ".jpg"
}
