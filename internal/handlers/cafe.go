package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"cafe-rater-backend/internal/models"
	"cafe-rater-backend/internal/repository"
	"cafe-rater-backend/internal/stats"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CafeStore is what the cafe handler needs from the cafe repository.
type CafeStore interface {
	Create(ctx context.Context, cafe *models.Cafe) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Cafe, error)
	FindByItemID(ctx context.Context, itemID bson.ObjectID) (*models.Cafe, error)
	AddItem(ctx context.Context, cafeID bson.ObjectID, item models.MenuItem) (*models.MenuItem, error)
	RemoveItem(ctx context.Context, itemID bson.ObjectID) (bool, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

// ReviewDeleter is the cascade side of the review store.
type ReviewDeleter interface {
	DeleteForCafe(ctx context.Context, cafeID bson.ObjectID) error
	DeleteForItem(ctx context.Context, itemID bson.ObjectID) error
}

type CafeHandler struct {
	cafes   CafeStore
	reviews ReviewDeleter
	stats   *stats.Service
}

func NewCafeHandler(cafes CafeStore, reviews ReviewDeleter, statsSvc *stats.Service) *CafeHandler {
	return &CafeHandler{
		cafes:   cafes,
		reviews: reviews,
		stats:   statsSvc,
	}
}

type CreateCafeRequest struct {
	Name     string `json:"name"`
	Building string `json:"building"`
}

type AddItemRequest struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
	Type  string   `json:"type"`
}

// --- GET /cafes ---

func (h *CafeHandler) ListCafes(w http.ResponseWriter, r *http.Request) {
	cafes, err := h.stats.ListCafes(r.Context())
	if err != nil {
		log.Printf("Error listing cafes: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, cafes)
}

// --- POST /cafes ---

func (h *CafeHandler) CreateCafe(w http.ResponseWriter, r *http.Request) {
	var req CreateCafeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Building == "" {
		writeError(w, http.StatusBadRequest, "Name and building are required")
		return
	}

	cafe := &models.Cafe{
		Name:     req.Name,
		Building: req.Building,
	}
	if err := h.cafes.Create(r.Context(), cafe); err != nil {
		if repository.IsDuplicateName(err) {
			writeError(w, http.StatusBadRequest, "Cafe with this name already exists")
			return
		}
		log.Printf("Error creating cafe: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, cafe)
}

// --- DELETE /cafes/{id} ---

// Cafe, embedded items, cafe-level and item-level reviews all go. The review
// cleanup runs after the cafe delete without a transaction, so a concurrent
// reader may briefly see reviews for a cafe that is already gone.
func (h *CafeHandler) DeleteCafe(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.cafes.Delete(r.Context(), id); err != nil {
		log.Printf("Error deleting cafe: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := h.reviews.DeleteForCafe(r.Context(), id); err != nil {
		log.Printf("Error deleting reviews for cafe %s: %v", id.Hex(), err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Cafe, items, and reviews deleted"})
}

// --- POST /cafes/{id}/items ---

func (h *CafeHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Item name is required")
		return
	}

	itemType := req.Type
	if itemType == "" {
		itemType = models.ItemTypeOther
	}
	if !models.ValidItemType(itemType) {
		writeError(w, http.StatusBadRequest, "invalid item type")
		return
	}

	price := 0.0
	if req.Price != nil {
		price = *req.Price
	}
	if price < 0 {
		writeError(w, http.StatusBadRequest, "price must be non-negative")
		return
	}

	item, err := h.cafes.AddItem(r.Context(), id, models.MenuItem{
		Name:  req.Name,
		Price: price,
		Type:  itemType,
	})
	if err != nil {
		log.Printf("Error adding item: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "Cafe not found")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// --- DELETE /items/{id} ---

func (h *CafeHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	removed, err := h.cafes.RemoveItem(r.Context(), id)
	if err != nil {
		log.Printf("Error removing item: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}

	if err := h.reviews.DeleteForItem(r.Context(), id); err != nil {
		log.Printf("Error deleting reviews for item %s: %v", id.Hex(), err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Item and its reviews deleted"})
}
