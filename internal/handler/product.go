package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modahub/storefront-api/internal/domain/auth"
	"github.com/modahub/storefront-api/internal/domain/product"
)

// maxUploadSize bounds product image uploads.
const maxUploadSize = 10 << 20

type productResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Description  string     `json:"description"`
	Image        string     `json:"image"`
	RegularPrice float64    `json:"regularPrice"`
	OfferPrice   *float64   `json:"offerPrice,omitempty"`
	Stock        int        `json:"stock"`
	Timer        *time.Time `json:"timer,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (h *Handler) toProductResponse(p *product.Product) productResponse {
	resp := productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		Description:  p.Description,
		Image:        h.imageURL(p.Image),
		RegularPrice: p.RegularPrice.InexactFloat64(),
		Stock:        p.Stock,
		Timer:        p.Timer,
		CreatedAt:    p.CreatedAt,
	}
	if p.OfferPrice != nil {
		offer := p.OfferPrice.InexactFloat64()
		resp.OfferPrice = &offer
	}
	return resp
}

// imageURL prepends the configured base URL to relative image paths.
func (h *Handler) imageURL(path string) string {
	if h.imageBaseURL == "" || path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return strings.TrimSuffix(h.imageBaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i := range products {
		resp[i] = h.toProductResponse(&products[i])
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.toProductResponse(p))
}

// createProduct handles the admin multipart form: product fields plus an
// image file, stored under the upload directory and referenced by path.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request, _ auth.Actor) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	regularPrice, err := decimal.NewFromString(r.FormValue("regularPrice"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid regular price")
		return
	}

	p := &product.Product{
		ID:           uuid.New().String(),
		Name:         r.FormValue("name"),
		Category:     r.FormValue("category"),
		Description:  r.FormValue("description"),
		RegularPrice: regularPrice,
		CreatedAt:    time.Now(),
	}
	if p.Name == "" || p.Category == "" {
		writeError(w, r, http.StatusBadRequest, "name and category are required")
		return
	}

	if raw := r.FormValue("offerPrice"); raw != "" {
		offer, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid offer price")
			return
		}
		p.OfferPrice = &offer
	}
	if raw := r.FormValue("stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil || stock < 0 {
			writeError(w, r, http.StatusBadRequest, "invalid stock")
			return
		}
		p.Stock = stock
	}
	if raw := r.FormValue("timer"); raw != "" {
		timer, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid timer, expected RFC3339")
			return
		}
		p.Timer = &timer
	}

	imagePath, err := h.saveImage(file, header)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	p.Image = imagePath

	if err := h.products.Create(r.Context(), p); err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, h.toProductResponse(p))
}

// saveImage writes the uploaded file under the upload directory with a
// generated name and returns its public path.
func (h *Handler) saveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create upload dir")
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", errors.Wrap(err, "create image file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, maxUploadSize)); err != nil {
		return "", errors.Wrap(err, "write image file")
	}
	return "/uploads/" + name, nil
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request, _ auth.Actor) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "product removed"})
}
