package product

import (
	"mime/multipart"
	"net/http"

	"go-tienda-api/internal/pkg/apperror"
	"go-tienda-api/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

// 1. LIST PRODUCTS (catalog query)
func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "Invalid query parameters", err.Error())
		return
	}

	result, err := h.service.List(c.Request.Context(), ListRequest{
		Page:      q.Page,
		Limit:     q.Limit,
		Category:  q.Category,
		Available: q.Available,
		Search:    q.Search,
		MinPrice:  q.MinPrice,
		MaxPrice:  q.MaxPrice,
		Sort:      q.Sort,
	})
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Products fetched", result.Items, response.Pagination{
		Page:            q.Page,
		PageSize:        q.Limit,
		TotalItems:      result.Total,
		TotalPages:      result.TotalPages,
		HasNextPage:     result.HasNext,
		HasPreviousPage: result.HasPrev,
		NextLink:        result.NextLink,
		PrevLink:        result.PrevLink,
	})
}

// 2. GET BY ID
func (h *Handler) GetByID(c *gin.Context) {
	res, err := h.service.GetByID(c.Request.Context(), c.Param("pid"))
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, "Product fetched", res)
}

// 3. CREATE PRODUCT
// Creating a product whose title already exists bumps that product's stock
// instead, and answers 200 with the merged record rather than 201.
func (h *Handler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", err.Error())
		return
	}

	res, created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	status := http.StatusOK
	message := "Product stock increased"
	if created {
		status = http.StatusCreated
		message = "Product created"
	}
	response.Success(c, status, message, res)
}

// 4. UPDATE PRODUCT (partial)
func (h *Handler) Update(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", err.Error())
		return
	}

	res, err := h.service.Update(c.Request.Context(), c.Param("pid"), req)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, "Product updated", res)
}

// 5. DELETE PRODUCT
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("pid")); err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	c.Status(http.StatusNoContent)
}

// 6. UPLOAD THUMBNAIL
func (h *Handler) AddThumbnail(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form", err.Error())
		return
	}

	var (
		file     multipart.File
		filename string
	)
	fileHeader, err := c.FormFile("thumbnail")
	if err == nil && fileHeader != nil {
		opened, err := fileHeader.Open()
		if err != nil {
			response.Error(c, http.StatusBadRequest, "FILE_ERROR", "Failed to open file", err.Error())
			return
		}
		defer opened.Close()
		file = opened
		filename = fileHeader.Filename
	}

	res, err := h.service.AddThumbnail(c.Request.Context(), c.Param("pid"), file, filename)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, "Thumbnail added", res)
}
