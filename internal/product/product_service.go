package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const listBasePath = "/api/products"

// Notifier receives the fresh catalog snapshot after a successful mutation.
// Delivery is best effort and must never fail the mutation itself.
type Notifier interface {
	CatalogChanged(ctx context.Context, snapshot []ProductResponse)
}

// MediaService uploads thumbnail files and returns their public URL.
type MediaService interface {
	UploadImage(ctx context.Context, file multipart.File, filename string) (string, error)
}

//go:generate mockgen -source=product_service.go -destination=../mock/product/product_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, req ListRequest) (ListResult, error)
	GetByID(ctx context.Context, id string) (ProductResponse, error)
	Create(ctx context.Context, req CreateProductRequest) (ProductResponse, bool, error)
	Update(ctx context.Context, id string, req UpdateProductRequest) (ProductResponse, error)
	Delete(ctx context.Context, id string) error
	AddThumbnail(ctx context.Context, id string, file multipart.File, filename string) (ProductResponse, error)
}

type service struct {
	repo     Repository
	cache    Cache
	notifier Notifier
	media    MediaService
	validate *validator.Validate
	logger   *zap.Logger
}

type Deps struct {
	Repo     Repository
	Cache    Cache
	Notifier Notifier
	Media    MediaService
	Logger   *zap.Logger
}

func NewService(deps Deps) Service {
	if deps.Repo == nil {
		panic("repo cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &service{
		repo:     deps.Repo,
		cache:    deps.Cache,
		notifier: deps.Notifier,
		media:    deps.Media,
		validate: validator.New(),
		logger:   deps.Logger,
	}
}

// ========================
// helpers
// ========================

func (s *service) parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrInvalidProductID
	}
	return uid, nil
}

func toResponse(p Product) ProductResponse {
	thumbnails := p.Thumbnails
	if thumbnails == nil {
		thumbnails = []string{}
	}

	return ProductResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Thumbnails:  thumbnails,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func toResponses(products []Product) []ProductResponse {
	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toResponse(p))
	}
	return res
}

// notifyCatalog re-reads the whole catalog and hands the snapshot to the
// sink. Failures are logged and ignored; the mutation already committed.
func (s *service) notifyCatalog(ctx context.Context) {
	if s.notifier == nil {
		return
	}

	products, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Warn("catalog snapshot read failed", zap.Error(err))
		return
	}

	s.notifier.CatalogChanged(ctx, toResponses(products))
}

func (s *service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id.String())
	}
}

// pageLink rebuilds the list query string with the given page number.
func pageLink(req ListRequest, page int) *string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(req.Limit))

	if req.Category != "" {
		v.Set("category", req.Category)
	}
	if req.Available != nil {
		v.Set("available", strconv.FormatBool(*req.Available))
	}
	if req.Search != "" {
		v.Set("query", req.Search)
	}
	if req.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*req.MinPrice, 'f', -1, 64))
	}
	if req.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*req.MaxPrice, 'f', -1, 64))
	}
	if req.Sort != "" {
		v.Set("sort", req.Sort)
	}

	link := fmt.Sprintf("%s?%s", listBasePath, v.Encode())
	return &link
}

// ========================
// catalog query engine
// ========================

func (s *service) List(ctx context.Context, req ListRequest) (ListResult, error) {
	if req.Page <= 0 || req.Limit <= 0 {
		return ListResult{}, ErrInvalidPagination
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		return ListResult{}, ErrInvalidPriceRange
	}

	// anything other than asc/desc falls back to insertion order
	sort := req.Sort
	if sort != "asc" && sort != "desc" {
		sort = ""
	}

	filter := ListFilter{
		Category: req.Category,
		Search:   req.Search,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		Sort:     sort,
		Limit:    int32(req.Limit),
		Offset:   int32((req.Page - 1) * req.Limit),
	}
	if req.Available != nil && *req.Available {
		filter.Available = true
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}

	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	if totalPages < 1 {
		totalPages = 1
	}

	result := ListResult{
		Items:      toResponses(products),
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    req.Page > 1,
		HasNext:    req.Page < totalPages,
	}
	if result.HasPrev {
		result.PrevLink = pageLink(req, req.Page-1)
	}
	if result.HasNext {
		result.NextLink = pageLink(req, req.Page+1)
	}

	return result, nil
}

func (s *service) GetByID(ctx context.Context, id string) (ProductResponse, error) {
	uid, err := s.parseID(id)
	if err != nil {
		return ProductResponse{}, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, uid.String()); ok {
			return cached, nil
		}
	}

	p, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProductResponse{}, ErrProductNotFound
		}
		return ProductResponse{}, err
	}

	res := toResponse(p)
	if s.cache != nil {
		s.cache.Set(ctx, uid.String(), res)
	}
	return res, nil
}

// Create inserts a new product, or, when one with the same title already
// exists, bumps that product's stock by one instead of duplicating it. The
// boolean result reports whether a new record was created.
func (s *service) Create(ctx context.Context, req CreateProductRequest) (ProductResponse, bool, error) {
	if err := s.validate.Struct(req); err != nil {
		return ProductResponse{}, false, MapValidationError(err)
	}

	p, created, err := s.repo.Upsert(ctx, CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       *req.Stock,
		Category:    req.Category,
		Thumbnails:  req.Thumbnails,
	})
	if err != nil {
		return ProductResponse{}, false, err
	}

	if !created {
		s.invalidate(ctx, p.ID)
	}
	s.notifyCatalog(ctx)
	return toResponse(p), created, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateProductRequest) (ProductResponse, error) {
	uid, err := s.parseID(id)
	if err != nil {
		return ProductResponse{}, err
	}

	if err := s.validate.Struct(req); err != nil {
		return ProductResponse{}, MapValidationError(err)
	}

	existing, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProductResponse{}, ErrProductNotFound
		}
		return ProductResponse{}, err
	}

	params := UpdateParams{
		ID:          existing.ID,
		Title:       existing.Title,
		Description: existing.Description,
		Price:       existing.Price,
		Stock:       existing.Stock,
		Category:    existing.Category,
		Thumbnails:  existing.Thumbnails,
	}

	// patch: only supplied fields overwrite the stored record
	if req.Title != nil {
		params.Title = *req.Title
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Price != nil {
		params.Price = *req.Price
	}
	if req.Stock != nil {
		params.Stock = *req.Stock
	}
	if req.Category != nil {
		params.Category = *req.Category
	}
	if req.Thumbnails != nil {
		params.Thumbnails = req.Thumbnails
	}

	updated, err := s.repo.Update(ctx, params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProductResponse{}, ErrProductNotFound
		}
		return ProductResponse{}, err
	}

	s.invalidate(ctx, uid)
	s.notifyCatalog(ctx)
	return toResponse(updated), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	uid, err := s.parseID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}

	s.invalidate(ctx, uid)
	s.notifyCatalog(ctx)
	return nil
}

func (s *service) AddThumbnail(ctx context.Context, id string, file multipart.File, filename string) (ProductResponse, error) {
	uid, err := s.parseID(id)
	if err != nil {
		return ProductResponse{}, err
	}
	if file == nil {
		return ProductResponse{}, ErrThumbnailRequired
	}

	existing, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProductResponse{}, ErrProductNotFound
		}
		return ProductResponse{}, err
	}

	thumbURL, err := s.media.UploadImage(ctx, file, filename)
	if err != nil {
		return ProductResponse{}, err
	}

	updated, err := s.repo.Update(ctx, UpdateParams{
		ID:          existing.ID,
		Title:       existing.Title,
		Description: existing.Description,
		Price:       existing.Price,
		Stock:       existing.Stock,
		Category:    existing.Category,
		Thumbnails:  append(existing.Thumbnails, thumbURL),
	})
	if err != nil {
		return ProductResponse{}, err
	}

	s.invalidate(ctx, uid)
	s.notifyCatalog(ctx)
	return toResponse(updated), nil
}
