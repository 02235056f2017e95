package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"storefront/internal/database"
	"storefront/internal/models"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

var (
	errCategoryNotFound = notFound("Category not found")
	errProductNotFound  = notFound("Product not found")
)

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (req *categoryRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return badRequest("Category name is required")
	}
	return nil
}

func categoryError(err error) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return errCategoryNotFound
	case errors.Is(err, database.ErrDuplicate):
		return badRequest("Category already exists")
	}
	return err
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) error {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	c := &models.Category{Name: req.Name, Description: req.Description}
	if err := s.categories.Create(r.Context(), c); err != nil {
		return categoryError(err)
	}
	writeJSON(w, http.StatusCreated, c)
	return nil
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) error {
	categories, err := s.categories.List(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, categories)
	return nil
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) error {
	c, err := s.categories.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return categoryError(err)
	}
	writeJSON(w, http.StatusOK, c)
	return nil
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) error {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	c, err := s.categories.Update(r.Context(), mux.Vars(r)["id"], req.Name, req.Description)
	if err != nil {
		return categoryError(err)
	}
	writeJSON(w, http.StatusOK, c)
	return nil
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) error {
	if err := s.categories.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		return categoryError(err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
	return nil
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Title string  `json:"title"`
		Price float64 `json:"price"`
		Image string  `json:"image"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return badRequest("Product title is required")
	}
	if req.Price < 0 || math.IsNaN(req.Price) {
		return badRequest("Price must be a non-negative number")
	}

	p := &models.Product{Title: req.Title, Price: req.Price, Image: req.Image}
	if err := s.products.Create(r.Context(), p); err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, p)
	return nil
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	page := positiveInt(q.Get("page"), defaultPage)
	limit := positiveInt(q.Get("limit"), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	// Keeps the skip of (page-1)*limit within int64.
	if page > math.MaxInt64/limit {
		page = math.MaxInt64 / limit
	}

	products, total, err := s.products.List(r.Context(), page, limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products":      products,
		"currentPage":   page,
		"totalPages":    (total + limit - 1) / limit,
		"totalProducts": total,
	})
	return nil
}

func (s *Server) searchProducts(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	f := database.ProductFilter{Query: strings.TrimSpace(q.Get("query"))}

	var err error
	if f.MinPrice, err = priceParam(q.Get("minPrice"), "minPrice"); err != nil {
		return err
	}
	if f.MaxPrice, err = priceParam(q.Get("maxPrice"), "maxPrice"); err != nil {
		return err
	}

	products, err := s.products.Search(r.Context(), f)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, products)
	return nil
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) error {
	err := s.products.Delete(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, database.ErrNotFound) {
		return errProductNotFound
	}
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
	return nil
}

// positiveInt parses v, falling back to def for anything that is not a positive integer.
func positiveInt(v string, def int64) int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func priceParam(v, name string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, badRequest(name + " must be a number")
	}
	return &f, nil
}
