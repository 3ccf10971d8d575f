package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"unicode/utf8"

	"cafe-rater-backend/internal/models"
	"cafe-rater-backend/internal/notify"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ReviewCreator is the write side of the review store.
type ReviewCreator interface {
	Create(ctx context.Context, review *models.Review) error
}

// CafeFinder resolves review targets.
type CafeFinder interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Cafe, error)
}

type ReviewHandler struct {
	reviews  ReviewCreator
	cafes    CafeFinder
	notifier notify.Notifier
}

func NewReviewHandler(reviews ReviewCreator, cafes CafeFinder, notifier notify.Notifier) *ReviewHandler {
	return &ReviewHandler{
		reviews:  reviews,
		cafes:    cafes,
		notifier: notifier,
	}
}

type SubmitReviewRequest struct {
	CafeID  string `json:"cafeId"`
	ItemID  string `json:"itemId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// --- POST /reviews ---

// A review targets the cafe as a whole, or one of its menu items when itemId
// is present. Ratings outside 1..5 never reach the store.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CafeID == "" {
		writeError(w, http.StatusBadRequest, "cafeId and rating are required")
		return
	}
	if req.Rating < models.MinRating || req.Rating > models.MaxRating {
		writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}
	if utf8.RuneCountInString(req.Comment) > models.MaxCommentLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("comment must be at most %d characters", models.MaxCommentLength))
		return
	}

	cafeID, err := bson.ObjectIDFromHex(req.CafeID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cafe ID")
		return
	}

	cafe, err := h.cafes.FindByID(r.Context(), cafeID)
	if err != nil {
		log.Printf("Error finding cafe: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if cafe == nil {
		writeError(w, http.StatusNotFound, "Cafe not found")
		return
	}

	review := &models.Review{
		CafeID:  cafeID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	itemName := ""
	if req.ItemID != "" {
		itemID, err := bson.ObjectIDFromHex(req.ItemID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid item ID")
			return
		}
		found := false
		for _, item := range cafe.Items {
			if item.ID == itemID {
				found = true
				itemName = item.Name
				break
			}
		}
		if !found {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		review.ItemID = &itemID
	}

	if err := h.reviews.Create(r.Context(), review); err != nil {
		log.Printf("Error creating review: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to submit review")
		return
	}

	// Fire the alert in a background goroutine (non-blocking, best-effort)
	event := notify.Event{
		ID:       uuid.NewString(),
		CafeName: cafe.Name,
		ItemName: itemName,
		Rating:   review.Rating,
		Comment:  review.Comment,
	}
	go func() {
		if err := h.notifier.Publish(context.Background(), event); err != nil {
			log.Printf("Error publishing review alert: %v", err)
		}
	}()

	writeJSON(w, http.StatusCreated, review)
}
