package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/poslabel/internal/models"
)

// listProducts returns products, optionally filtered by ?q= on name, SKU or barcode
func (r *Router) listProducts(w http.ResponseWriter, req *http.Request) {
	list, err := r.deps.Products.List(req.Context(), req.URL.Query().Get("q"), queryLimit(req))
	if err != nil {
		fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) getProduct(w http.ResponseWriter, req *http.Request) {
	p, err := r.deps.Products.Get(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (r *Router) createProduct(w http.ResponseWriter, req *http.Request) {
	var p models.Product
	if err := decodeJSON(w, req, &p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := r.deps.Products.Create(req.Context(), &p); err != nil {
		fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (r *Router) updateProduct(w http.ResponseWriter, req *http.Request) {
	var p models.Product
	if err := decodeJSON(w, req, &p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.ID = mux.Vars(req)["id"]
	if err := r.deps.Products.Update(req.Context(), &p); err != nil {
		fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (r *Router) deleteProduct(w http.ResponseWriter, req *http.Request) {
	if err := r.deps.Products.Delete(req.Context(), mux.Vars(req)["id"]); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
