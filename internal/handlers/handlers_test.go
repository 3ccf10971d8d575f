package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"cafe-rater-backend/internal/handlers"
	"cafe-rater-backend/internal/models"
	"cafe-rater-backend/internal/notify"
	"cafe-rater-backend/internal/stats"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ---- fakes ----

type fakeCafes struct {
	cafes     []models.Cafe
	createErr error
}

func (f *fakeCafes) Create(ctx context.Context, cafe *models.Cafe) error {
	if f.createErr != nil {
		return f.createErr
	}
	cafe.ID = bson.NewObjectID()
	if cafe.Items == nil {
		cafe.Items = []models.MenuItem{}
	}
	f.cafes = append(f.cafes, *cafe)
	return nil
}

func (f *fakeCafes) FindAll(ctx context.Context) ([]models.Cafe, error) {
	return f.cafes, nil
}

func (f *fakeCafes) FindByID(ctx context.Context, id bson.ObjectID) (*models.Cafe, error) {
	for i := range f.cafes {
		if f.cafes[i].ID == id {
			cafe := f.cafes[i]
			return &cafe, nil
		}
	}
	return nil, nil
}

func (f *fakeCafes) FindByItemID(ctx context.Context, itemID bson.ObjectID) (*models.Cafe, error) {
	for i := range f.cafes {
		for _, item := range f.cafes[i].Items {
			if item.ID == itemID {
				cafe := f.cafes[i]
				return &cafe, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeCafes) AddItem(ctx context.Context, cafeID bson.ObjectID, item models.MenuItem) (*models.MenuItem, error) {
	for i := range f.cafes {
		if f.cafes[i].ID == cafeID {
			item.ID = bson.NewObjectID()
			f.cafes[i].Items = append(f.cafes[i].Items, item)
			return &item, nil
		}
	}
	return nil, nil
}

func (f *fakeCafes) RemoveItem(ctx context.Context, itemID bson.ObjectID) (bool, error) {
	for i := range f.cafes {
		for j, item := range f.cafes[i].Items {
			if item.ID == itemID {
				f.cafes[i].Items = append(f.cafes[i].Items[:j], f.cafes[i].Items[j+1:]...)
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeCafes) Delete(ctx context.Context, id bson.ObjectID) error {
	for i := range f.cafes {
		if f.cafes[i].ID == id {
			f.cafes = append(f.cafes[:i], f.cafes[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeReviews struct {
	reviews        []models.Review
	deletedForCafe []bson.ObjectID
	deletedForItem []bson.ObjectID
}

func (f *fakeReviews) Create(ctx context.Context, review *models.Review) error {
	review.ID = bson.NewObjectID()
	review.Timestamp = time.Now()
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *fakeReviews) DeleteForCafe(ctx context.Context, cafeID bson.ObjectID) error {
	f.deletedForCafe = append(f.deletedForCafe, cafeID)
	kept := f.reviews[:0]
	for _, r := range f.reviews {
		if r.CafeID != cafeID {
			kept = append(kept, r)
		}
	}
	f.reviews = kept
	return nil
}

func (f *fakeReviews) DeleteForItem(ctx context.Context, itemID bson.ObjectID) error {
	f.deletedForItem = append(f.deletedForItem, itemID)
	kept := f.reviews[:0]
	for _, r := range f.reviews {
		if r.ItemID == nil || *r.ItemID != itemID {
			kept = append(kept, r)
		}
	}
	f.reviews = kept
	return nil
}

func (f *fakeReviews) matching(pred func(models.Review) bool, limit int64) []models.Review {
	out := []models.Review{}
	for _, r := range f.reviews {
		if pred(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func (f *fakeReviews) countAndAverage(pred func(models.Review) bool) (int64, float64, error) {
	sum, count := 0, int64(0)
	for _, r := range f.reviews {
		if pred(r) {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return count, float64(sum) / float64(count), nil
}

func (f *fakeReviews) ListForCafe(ctx context.Context, cafeID bson.ObjectID, limit int64) ([]models.Review, error) {
	return f.matching(func(r models.Review) bool { return r.ItemID == nil && r.CafeID == cafeID }, limit), nil
}

func (f *fakeReviews) ListForItem(ctx context.Context, itemID bson.ObjectID, limit int64) ([]models.Review, error) {
	return f.matching(func(r models.Review) bool { return r.ItemID != nil && *r.ItemID == itemID }, limit), nil
}

func (f *fakeReviews) ListRecent(ctx context.Context, limit int64) ([]models.Review, error) {
	return f.matching(func(r models.Review) bool { return r.ItemID == nil }, limit), nil
}

func (f *fakeReviews) CountAndAverageForCafe(ctx context.Context, cafeID bson.ObjectID) (int64, float64, error) {
	return f.countAndAverage(func(r models.Review) bool { return r.ItemID == nil && r.CafeID == cafeID })
}

func (f *fakeReviews) CountAndAverageForItem(ctx context.Context, itemID bson.ObjectID) (int64, float64, error) {
	return f.countAndAverage(func(r models.Review) bool { return r.ItemID != nil && *r.ItemID == itemID })
}

func (f *fakeReviews) CountAndAverageGlobal(ctx context.Context) (int64, float64, error) {
	return f.countAndAverage(func(r models.Review) bool { return r.ItemID == nil })
}

type captureNotifier struct {
	events chan notify.Event
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{events: make(chan notify.Event, 8)}
}

func (c *captureNotifier) Publish(ctx context.Context, event notify.Event) error {
	c.events <- event
	return nil
}

// newRouter mounts the handlers the way cmd/server does.
func newRouter(cafes *fakeCafes, reviews *fakeReviews, notifier notify.Notifier) chi.Router {
	svc := stats.NewService(cafes, reviews)
	cafeHandler := handlers.NewCafeHandler(cafes, reviews, svc)
	reviewHandler := handlers.NewReviewHandler(reviews, cafes, notifier)
	statsHandler := handlers.NewStatsHandler(svc)

	r := chi.NewRouter()
	r.Get("/cafes", cafeHandler.ListCafes)
	r.Post("/cafes", cafeHandler.CreateCafe)
	r.Delete("/cafes/{id}", cafeHandler.DeleteCafe)
	r.Post("/cafes/{id}/items", cafeHandler.AddItem)
	r.Delete("/items/{id}", cafeHandler.DeleteItem)
	r.Get("/items/{id}/stats", statsHandler.ItemStats)
	r.Post("/reviews", reviewHandler.SubmitReview)
	r.Get("/cafes/{id}/stats", statsHandler.CafeStats)
	r.Get("/stats", statsHandler.GlobalStats)
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
