package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// ItemRequest is the body of create and update. Omitted description and
// status default to "" and "pending".
type ItemRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.ItemStatus `json:"status"`
}

type ItemsResponse struct {
	Items []*models.Item `json:"items"`
}

type ItemResponse struct {
	Message string       `json:"message,omitempty"`
	Item    *models.Item `json:"item"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (req ItemRequest) input() services.ItemInput {
	return services.ItemInput{Title: req.Title, Description: req.Description, Status: req.Status}
}

func (a *API) ListItems(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	list, err := a.items.List(r.Context(), userID)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Item{}
	}
	writeJSON(w, http.StatusOK, ItemsResponse{Items: list})
}

func (a *API) GetItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	item, err := a.items.Get(r.Context(), userID, chi.URLParam(r, "itemID"))
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{Item: item})
}

func (a *API) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	req, ok := decodeJSON[ItemRequest](w, r)
	if !ok {
		return
	}

	item, err := a.items.Create(r.Context(), userID, req.input())
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ItemResponse{Message: "Item created successfully", Item: item})
}

func (a *API) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	req, ok := decodeJSON[ItemRequest](w, r)
	if !ok {
		return
	}

	item, err := a.items.Update(r.Context(), userID, chi.URLParam(r, "itemID"), req.input())
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{Message: "Item updated successfully", Item: item})
}

func (a *API) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := a.items.Delete(r.Context(), userID, chi.URLParam(r, "itemID")); err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Item deleted successfully"})
}

var _ ItemService = (*services.ItemService)(nil)
