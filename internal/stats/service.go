package stats

import (
	"context"
	"errors"
	"math"

	"cafe-rater-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrNotFound reports that the requested cafe or item does not resolve.
var ErrNotFound = errors.New("not found")

const (
	recentCafeReviews = 5
	recentItemReviews = 10
)

// CafeStore is the slice of the cafe repository the aggregator reads from.
type CafeStore interface {
	FindAll(ctx context.Context) ([]models.Cafe, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Cafe, error)
	FindByItemID(ctx context.Context, itemID bson.ObjectID) (*models.Cafe, error)
}

// ReviewStore is the slice of the review repository the aggregator reads from.
type ReviewStore interface {
	ListForCafe(ctx context.Context, cafeID bson.ObjectID, limit int64) ([]models.Review, error)
	ListForItem(ctx context.Context, itemID bson.ObjectID, limit int64) ([]models.Review, error)
	ListRecent(ctx context.Context, limit int64) ([]models.Review, error)
	CountAndAverageForCafe(ctx context.Context, cafeID bson.ObjectID) (int64, float64, error)
	CountAndAverageForItem(ctx context.Context, itemID bson.ObjectID) (int64, float64, error)
	CountAndAverageGlobal(ctx context.Context) (int64, float64, error)
}

// Rollup is the derived (count, mean) pair for a set of reviews. With zero
// reviews the average renders as 0 by convention, not as a true mean.
type Rollup struct {
	TotalRatings  int64   `json:"totalRatings"`
	AverageRating float64 `json:"averageRating"`
}

type CafeWithRollup struct {
	models.Cafe
	Rollup
}

type ItemWithRollup struct {
	models.MenuItem
	Rollup
}

// RecentRating is a review with its cafe's name resolved for display.
type RecentRating struct {
	models.Review
	CafeName string `json:"cafeName"`
}

type CafeDetail struct {
	CafeName      string           `json:"cafeName"`
	TotalRatings  int64            `json:"totalRatings"`
	AverageRating float64          `json:"averageRating"`
	RecentRatings []RecentRating   `json:"recentRatings"`
	Items         []ItemWithRollup `json:"items"`
}

type ItemDetail struct {
	Item          models.MenuItem `json:"item"`
	AverageRating float64         `json:"averageRating"`
	TotalRatings  int64           `json:"totalRatings"`
	Reviews       []models.Review `json:"reviews"`
}

type GlobalStats struct {
	TotalRatings  int64          `json:"totalRatings"`
	AverageRating float64        `json:"averageRating"`
	RecentRatings []RecentRating `json:"recentRatings"`
}

// Service composes rollups out of the two stores. Cafe-level rollups count
// only reviews targeting the cafe itself; item reviews roll up per item.
type Service struct {
	cafes   CafeStore
	reviews ReviewStore
}

func NewService(cafes CafeStore, reviews ReviewStore) *Service {
	return &Service{cafes: cafes, reviews: reviews}
}

// Round1 rounds to one decimal place, half away from zero. Every average the
// service surfaces goes through here so all endpoints agree.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (s *Service) rollupForCafe(ctx context.Context, cafeID bson.ObjectID) (Rollup, error) {
	count, avg, err := s.reviews.CountAndAverageForCafe(ctx, cafeID)
	if err != nil {
		return Rollup{}, err
	}
	return Rollup{TotalRatings: count, AverageRating: Round1(avg)}, nil
}

func (s *Service) rollupForItem(ctx context.Context, itemID bson.ObjectID) (Rollup, error) {
	count, avg, err := s.reviews.CountAndAverageForItem(ctx, itemID)
	if err != nil {
		return Rollup{}, err
	}
	return Rollup{TotalRatings: count, AverageRating: Round1(avg)}, nil
}

// CafeSummary returns the cafe's own (count, average) pair.
func (s *Service) CafeSummary(ctx context.Context, cafeID bson.ObjectID) (Rollup, error) {
	return s.rollupForCafe(ctx, cafeID)
}

// ItemSummary returns a single menu item's (count, average) pair.
func (s *Service) ItemSummary(ctx context.Context, itemID bson.ObjectID) (Rollup, error) {
	return s.rollupForItem(ctx, itemID)
}

// ListCafes returns every cafe with its cafe-level rollup attached. Item
// rollups are left to CafeDetail.
func (s *Service) ListCafes(ctx context.Context) ([]CafeWithRollup, error) {
	cafes, err := s.cafes.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CafeWithRollup, 0, len(cafes))
	for _, cafe := range cafes {
		rollup, err := s.rollupForCafe(ctx, cafe.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, CafeWithRollup{Cafe: cafe, Rollup: rollup})
	}
	return out, nil
}

// CafeDetail composes the cafe's own rollup, its 5 most recent reviews and a
// per-item rollup for every menu item it embeds.
func (s *Service) CafeDetail(ctx context.Context, cafeID bson.ObjectID) (*CafeDetail, error) {
	cafe, err := s.cafes.FindByID(ctx, cafeID)
	if err != nil {
		return nil, err
	}
	if cafe == nil {
		return nil, ErrNotFound
	}

	rollup, err := s.rollupForCafe(ctx, cafeID)
	if err != nil {
		return nil, err
	}

	recent, err := s.reviews.ListForCafe(ctx, cafeID, recentCafeReviews)
	if err != nil {
		return nil, err
	}
	recentRatings := make([]RecentRating, 0, len(recent))
	for _, review := range recent {
		recentRatings = append(recentRatings, RecentRating{Review: review, CafeName: cafe.Name})
	}

	items := make([]ItemWithRollup, 0, len(cafe.Items))
	for _, item := range cafe.Items {
		itemRollup, err := s.rollupForItem(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, ItemWithRollup{MenuItem: item, Rollup: itemRollup})
	}

	return &CafeDetail{
		CafeName:      cafe.Name,
		TotalRatings:  rollup.TotalRatings,
		AverageRating: rollup.AverageRating,
		RecentRatings: recentRatings,
		Items:         items,
	}, nil
}

// ItemDetail returns one item's rollup and its 10 most recent reviews.
// Resolves the item through its owning cafe, so a deleted cafe takes its
// items' stats with it.
func (s *Service) ItemDetail(ctx context.Context, itemID bson.ObjectID) (*ItemDetail, error) {
	cafe, err := s.cafes.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if cafe == nil {
		return nil, ErrNotFound
	}

	var item *models.MenuItem
	for i := range cafe.Items {
		if cafe.Items[i].ID == itemID {
			item = &cafe.Items[i]
			break
		}
	}
	if item == nil {
		return nil, ErrNotFound
	}

	rollup, err := s.rollupForItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListForItem(ctx, itemID, recentItemReviews)
	if err != nil {
		return nil, err
	}

	return &ItemDetail{
		Item:          *item,
		AverageRating: rollup.AverageRating,
		TotalRatings:  rollup.TotalRatings,
		Reviews:       reviews,
	}, nil
}

// Global folds all cafe-level reviews into one rollup plus the 5 most recent
// reviews with their cafe names resolved.
func (s *Service) Global(ctx context.Context) (*GlobalStats, error) {
	count, avg, err := s.reviews.CountAndAverageGlobal(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.reviews.ListRecent(ctx, recentCafeReviews)
	if err != nil {
		return nil, err
	}

	names := map[bson.ObjectID]string{}
	recentRatings := make([]RecentRating, 0, len(recent))
	for _, review := range recent {
		name, ok := names[review.CafeID]
		if !ok {
			cafe, err := s.cafes.FindByID(ctx, review.CafeID)
			if err != nil {
				return nil, err
			}
			if cafe != nil {
				name = cafe.Name
			}
			names[review.CafeID] = name
		}
		recentRatings = append(recentRatings, RecentRating{Review: review, CafeName: name})
	}

	return &GlobalStats{
		TotalRatings:  count,
		AverageRating: Round1(avg),
		RecentRatings: recentRatings,
	}, nil
}
