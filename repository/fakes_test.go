package repository

import (
	"context"
	"errors"
	"io"
	"slices"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/bookreflect/backend/models"
	"github.com/kevinaaaquil/bookreflect/backend/service"
)

var errBoom = errors.New("boom")

// memMoods is an in-memory mood store keyed by owner then mood id.
type memMoods struct {
	mu      sync.Mutex
	moods   map[string]map[string]models.Mood
	listErr error
	saveErr error
	delErr  error
}

func newMemMoods() *memMoods {
	return &memMoods{moods: map[string]map[string]models.Mood{}}
}

func (m *memMoods) SaveMood(_ context.Context, owner string, mood models.Mood) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.moods[owner] == nil {
		m.moods[owner] = map[string]models.Mood{}
	}
	m.moods[owner][mood.ID] = mood
	return nil
}

func (m *memMoods) sorted(owner string, keep func(models.Mood) bool) []models.Mood {
	out := []models.Mood{}
	for _, mood := range m.moods[owner] {
		if keep(mood) {
			out = append(out, mood)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *memMoods) MoodsByBook(_ context.Context, owner, bookID string) ([]models.Mood, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(owner, func(mood models.Mood) bool { return mood.BookID == bookID }), nil
}

func (m *memMoods) MoodsByOwner(_ context.Context, owner string) ([]models.Mood, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(owner, func(models.Mood) bool { return true }), nil
}

func (m *memMoods) DeleteMood(_ context.Context, owner, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return false, m.delErr
	}
	_, ok := m.moods[owner][id]
	delete(m.moods[owner], id)
	return ok, nil
}

func (m *memMoods) DeleteMoodsByBook(_ context.Context, owner, bookID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return 0, m.delErr
	}
	var n int64
	for id, mood := range m.moods[owner] {
		if mood.BookID == bookID {
			delete(m.moods[owner], id)
			n++
		}
	}
	return n, nil
}

func (m *memMoods) count(owner string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.moods[owner])
}

// fakeLocal stands in for the SQLite store.
type fakeLocal struct {
	*memMoods
	bmu     sync.Mutex
	books   map[string][]models.Book
	bookErr error
	delErr  error
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{memMoods: newMemMoods(), books: map[string][]models.Book{}}
}

func (f *fakeLocal) InsertBook(_ context.Context, owner string, book models.Book) error {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	if f.bookErr != nil {
		return f.bookErr
	}
	for i, b := range f.books[owner] {
		if b.ID == book.ID {
			f.books[owner][i] = book
			return nil
		}
	}
	f.books[owner] = append(f.books[owner], book)
	return nil
}

func (f *fakeLocal) BooksByOwner(_ context.Context, owner string) ([]models.Book, error) {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	return slices.Clone(f.books[owner]), nil
}

func (f *fakeLocal) BookByID(_ context.Context, owner, id string) (*models.Book, error) {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	for _, b := range f.books[owner] {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeLocal) UpdateBookStatus(_ context.Context, owner, id string, status models.BookStatus) (bool, error) {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	if f.bookErr != nil {
		return false, f.bookErr
	}
	for i, b := range f.books[owner] {
		if b.ID == id {
			f.books[owner][i].Status = status
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLocal) DeleteBook(_ context.Context, owner, id string) (bool, error) {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	if f.delErr != nil {
		return false, f.delErr
	}
	books := f.books[owner]
	for i, b := range books {
		if b.ID == id {
			f.books[owner] = slices.Delete(books, i, i+1)
			return true, nil
		}
	}
	return false, nil
}

type libEntry struct {
	bookID string
	status models.BookStatus
}

// fakeRemote stands in for the MongoDB store.
type fakeRemote struct {
	*memMoods
	bmu        sync.Mutex
	catalog    map[string]models.Book
	library    map[string][]libEntry
	catalogErr error
	libraryErr error
	upsertErr  error
	// failUpsert fails UpsertCatalogBook for these ids only.
	failUpsert map[string]bool
	nextID     int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		memMoods: newMemMoods(),
		catalog:  map[string]models.Book{},
		library:  map[string][]libEntry{},
	}
}

func (f *fakeRemote) UpsertCatalogBook(_ context.Context, book *models.Book) error {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	if f.upsertErr != nil || f.failUpsert[book.ID] {
		return errBoom
	}
	if book.ID == "" {
		f.nextID++
		book.ID = "gen-" + string(rune('0'+f.nextID))
	}
	stored := *book
	stored.Status = models.StatusNone
	stored.IsLocal = false
	f.catalog[book.ID] = stored
	return nil
}

func (f *fakeRemote) CatalogBookByID(_ context.Context, id string) (*models.Book, error) {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	b, ok := f.catalog[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeRemote) sortedCatalog() []models.Book {
	out := make([]models.Book, 0, len(f.catalog))
	for _, b := range f.catalog {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeRemote) CatalogPage(_ context.Context, after string, limit int) ([]models.Book, error) {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	out := []models.Book{}
	for _, b := range f.sortedCatalog() {
		if b.ID > after && len(out) < limit {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRemote) SearchCatalog(_ context.Context, query string, limit int) ([]models.Book, error) {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	out := []models.Book{}
	for _, b := range f.sortedCatalog() {
		if (b.Title == query || b.Author == query) && len(out) < limit {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRemote) AddToLibrary(_ context.Context, userID, bookID string, status models.BookStatus) error {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	if f.libraryErr != nil {
		return f.libraryErr
	}
	for i, e := range f.library[userID] {
		if e.bookID == bookID {
			f.library[userID][i].status = status
			return nil
		}
	}
	f.library[userID] = append(f.library[userID], libEntry{bookID: bookID, status: status})
	return nil
}

func (f *fakeRemote) UpdateLibraryStatus(_ context.Context, userID, bookID string, status models.BookStatus) (bool, error) {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	if f.libraryErr != nil {
		return false, f.libraryErr
	}
	for i, e := range f.library[userID] {
		if e.bookID == bookID {
			f.library[userID][i].status = status
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRemote) RemoveFromLibrary(_ context.Context, userID, bookID string) (bool, error) {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	if f.libraryErr != nil {
		return false, f.libraryErr
	}
	entries := f.library[userID]
	for i, e := range entries {
		if e.bookID == bookID {
			f.library[userID] = slices.Delete(entries, i, i+1)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRemote) LibraryBooks(_ context.Context, userID string) ([]models.Book, error) {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	if f.libraryErr != nil {
		return nil, f.libraryErr
	}
	out := []models.Book{}
	for _, e := range f.library[userID] {
		if b, ok := f.catalog[e.bookID]; ok {
			b.Status = e.status
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRemote) libraryStatus(userID, bookID string) (models.BookStatus, bool) {
	f.bmu.Lock()
	defer f.bmu.Unlock()
	for _, e := range f.library[userID] {
		if e.bookID == bookID {
			return e.status, true
		}
	}
	return "", false
}

// fakeSearcher records its calls and returns vols or err.
type fakeSearcher struct {
	mu    sync.Mutex
	vols  []service.Volume
	err   error
	calls []searchCall
}

type searchCall struct {
	query      string
	start, max int
}

func (f *fakeSearcher) Search(_ context.Context, query string, start, max int) ([]service.Volume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, searchCall{query: query, start: start, max: max})
	if f.err != nil {
		return nil, f.err
	}
	if len(f.vols) > max {
		return f.vols[:max], nil
	}
	return f.vols, nil
}

func vol(id, title string, authors ...string) service.Volume {
	return service.Volume{ID: id, VolumeInfo: service.VolumeInfo{Title: title, Authors: authors}}
}

// fakeUsers is an in-memory UserStore.
type fakeUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
	err   error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUsers) UserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	c := *user
	c.ID = id
	f.users[id] = &c
	return id, nil
}

func (f *fakeUsers) update(id primitive.ObjectID, fn func(*models.User)) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return false, nil
	}
	fn(u)
	return true, nil
}

func (f *fakeUsers) UpdateUserName(_ context.Context, id primitive.ObjectID, name string) (bool, error) {
	return f.update(id, func(u *models.User) { u.Name = name })
}

func (f *fakeUsers) UpdateUserPassword(_ context.Context, id primitive.ObjectID, hashed string) (bool, error) {
	return f.update(id, func(u *models.User) { u.Password = hashed })
}

func (f *fakeUsers) UpdateUserAvatar(_ context.Context, id primitive.ObjectID, url string) (bool, error) {
	return f.update(id, func(u *models.User) { u.AvatarURL = url })
}

// fakeStorage records uploads and deletes.
type fakeStorage struct {
	mu      sync.Mutex
	uploads map[string][]byte
	deleted []string
	n       int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, prefix, filename string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	key := prefix + string(rune('a'+f.n)) + "-" + filename
	f.uploads[key] = data
	return key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	delete(f.uploads, key)
	return nil
}

// fakeMailer captures the last reset link.
type fakeMailer struct {
	to, link string
	sent     int
	err      error
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, _, link string) error {
	if f.err != nil {
		return f.err
	}
	f.to, f.link = to, link
	f.sent++
	return nil
}

// fakeMetadata answers FetchMetadataByISBN from a map.
type fakeMetadata struct {
	byISBN map[string]*service.BookMetadata
}

func (f *fakeMetadata) FetchMetadataByISBN(_ context.Context, isbn string) (*service.BookMetadata, error) {
	if m, ok := f.byISBN[isbn]; ok {
		return m, nil
	}
	return nil, service.ErrNotFound
}
