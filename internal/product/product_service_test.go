package product_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-tienda-api/internal/product"

	productMock "go-tienda-api/internal/mock/product"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

//
// ======================= HELPERS =======================
//

type serviceDeps struct {
	service  product.Service
	repo     *productMock.MockRepository
	cache    *productMock.MockCache
	notifier *productMock.MockNotifier
	media    *productMock.MockMediaService
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	ctrl := gomock.NewController(t)

	repo := productMock.NewMockRepository(ctrl)
	cache := productMock.NewMockCache(ctrl)
	notifier := productMock.NewMockNotifier(ctrl)
	media := productMock.NewMockMediaService(ctrl)

	svc := product.NewService(product.Deps{
		Repo:     repo,
		Cache:    cache,
		Notifier: notifier,
		Media:    media,
	})

	return &serviceDeps{
		service:  svc,
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		media:    media,
	}
}

func makeProducts(n int) []product.Product {
	products := make([]product.Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, product.Product{
			ID:        uuid.New(),
			Title:     "Producto",
			Price:     float64(i + 1),
			Stock:     10,
			Category:  "general",
			CreatedAt: time.Now(),
		})
	}
	return products
}

func floatPtr(f float64) *float64 { return &f }
func int32Ptr(i int32) *int32     { return &i }
func strPtr(s string) *string     { return &s }

// expectSnapshot covers the catalog re-read plus sink emit that follows
// every successful mutation.
func expectSnapshot(deps *serviceDeps) {
	deps.repo.EXPECT().ListAll(gomock.Any()).Return([]product.Product{}, nil)
	deps.notifier.EXPECT().CatalogChanged(gomock.Any(), gomock.Any())
}

//
// ======================= LIST =======================
//

func TestProductService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("empty catalog still reports one page", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.EXPECT().Count(ctx, gomock.Any()).Return(int64(0), nil)
		deps.repo.EXPECT().List(ctx, gomock.Any()).Return([]product.Product{}, nil)

		res, err := deps.service.List(ctx, product.ListRequest{Page: 1, Limit: 10})

		assert.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.Equal(t, int64(0), res.Total)
		assert.Equal(t, 1, res.TotalPages)
		assert.False(t, res.HasPrev)
		assert.False(t, res.HasNext)
		assert.Nil(t, res.PrevLink)
		assert.Nil(t, res.NextLink)
	})

	t.Run("last page of 25 products", func(t *testing.T) {
		deps := setupServiceTest(t)

		var captured product.ListFilter
		deps.repo.EXPECT().Count(ctx, gomock.Any()).Return(int64(25), nil)
		deps.repo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, f product.ListFilter) ([]product.Product, error) {
				captured = f
				return makeProducts(5), nil
			})

		res, err := deps.service.List(ctx, product.ListRequest{Page: 3, Limit: 10})

		assert.NoError(t, err)
		assert.Len(t, res.Items, 5)
		assert.Equal(t, int64(25), res.Total)
		assert.Equal(t, 3, res.TotalPages)
		assert.True(t, res.HasPrev)
		assert.False(t, res.HasNext)
		assert.Nil(t, res.NextLink)
		assert.NotNil(t, res.PrevLink)
		assert.Equal(t, int32(20), captured.Offset)
		assert.Equal(t, int32(10), captured.Limit)
	})

	t.Run("middle page links keep the filters", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.EXPECT().Count(ctx, gomock.Any()).Return(int64(25), nil)
		deps.repo.EXPECT().List(ctx, gomock.Any()).Return(makeProducts(10), nil)

		res, err := deps.service.List(ctx, product.ListRequest{
			Page:     2,
			Limit:    10,
			Category: "vasos",
			Sort:     "asc",
		})

		assert.NoError(t, err)
		assert.True(t, res.HasPrev)
		assert.True(t, res.HasNext)
		assert.Equal(t, "/api/products?category=vasos&limit=10&page=1&sort=asc", *res.PrevLink)
		assert.Equal(t, "/api/products?category=vasos&limit=10&page=3&sort=asc", *res.NextLink)
	})

	t.Run("unknown sort falls back to insertion order", func(t *testing.T) {
		deps := setupServiceTest(t)

		var captured product.ListFilter
		deps.repo.EXPECT().Count(ctx, gomock.Any()).Return(int64(1), nil)
		deps.repo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, f product.ListFilter) ([]product.Product, error) {
				captured = f
				return makeProducts(1), nil
			})

		_, err := deps.service.List(ctx, product.ListRequest{Page: 1, Limit: 10, Sort: "price"})

		assert.NoError(t, err)
		assert.Equal(t, "", captured.Sort)
	})

	t.Run("error_non_positive_page", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.List(ctx, product.ListRequest{Page: 0, Limit: 10})
		assert.ErrorIs(t, err, product.ErrInvalidPagination)
	})

	t.Run("error_non_positive_limit", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.List(ctx, product.ListRequest{Page: 1, Limit: -1})
		assert.ErrorIs(t, err, product.ErrInvalidPagination)
	})

	t.Run("error_inverted_price_range", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.List(ctx, product.ListRequest{
			Page:     1,
			Limit:    10,
			MinPrice: floatPtr(100),
			MaxPrice: floatPtr(10),
		})
		assert.ErrorIs(t, err, product.ErrInvalidPriceRange)
	})
}

//
// ======================= GET BY ID =======================
//

func TestProductService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the store", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()

		deps.cache.EXPECT().Get(ctx, id.String()).
			Return(product.ProductResponse{ID: id.String(), Title: "Mate"}, true)

		res, err := deps.service.GetByID(ctx, id.String())

		assert.NoError(t, err)
		assert.Equal(t, "Mate", res.Title)
	})

	t.Run("cache miss reads and fills", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()

		deps.cache.EXPECT().Get(ctx, id.String()).Return(product.ProductResponse{}, false)
		deps.repo.EXPECT().GetByID(ctx, id).Return(product.Product{ID: id, Title: "Mate"}, nil)
		deps.cache.EXPECT().Set(ctx, id.String(), gomock.Any())

		res, err := deps.service.GetByID(ctx, id.String())

		assert.NoError(t, err)
		assert.Equal(t, "Mate", res.Title)
	})

	t.Run("error_not_found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()

		deps.cache.EXPECT().Get(ctx, id.String()).Return(product.ProductResponse{}, false)
		deps.repo.EXPECT().GetByID(ctx, id).Return(product.Product{}, sql.ErrNoRows)

		_, err := deps.service.GetByID(ctx, id.String())
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})

	t.Run("error_invalid_id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, product.ErrInvalidProductID)
	})
}

//
// ======================= CREATE =======================
//

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	req := product.CreateProductRequest{
		Title:       "Mate Imperial",
		Description: "Mate de calabaza",
		Price:       floatPtr(2500),
		Stock:       int32Ptr(4),
		Category:    "mates",
	}

	t.Run("success_new_product", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()

		deps.repo.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, arg product.CreateParams) (product.Product, bool, error) {
				assert.Equal(t, req.Title, arg.Title)
				assert.Equal(t, float64(2500), arg.Price)
				assert.Equal(t, int32(4), arg.Stock)
				return product.Product{ID: id, Title: arg.Title, Stock: arg.Stock}, true, nil
			})
		expectSnapshot(deps)

		res, created, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, id.String(), res.ID)
	})

	t.Run("existing title bumps stock instead of duplicating", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()

		deps.repo.EXPECT().Upsert(ctx, gomock.Any()).
			Return(product.Product{ID: id, Title: req.Title, Stock: 5}, false, nil)
		deps.cache.EXPECT().Invalidate(ctx, id.String())
		expectSnapshot(deps)

		res, created, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int32(5), res.Stock)
	})

	t.Run("error_missing_required_fields", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, _, err := deps.service.Create(ctx, product.CreateProductRequest{Title: "Solo titulo"})
		assert.ErrorIs(t, err, product.ErrMissingFields)
	})

	t.Run("error_negative_price", func(t *testing.T) {
		deps := setupServiceTest(t)

		bad := req
		bad.Price = floatPtr(-1)
		_, _, err := deps.service.Create(ctx, bad)
		assert.ErrorIs(t, err, product.ErrInvalidPrice)
	})

	t.Run("error_store_failure", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.EXPECT().Upsert(ctx, gomock.Any()).
			Return(product.Product{}, false, errors.New("db down"))

		_, _, err := deps.service.Create(ctx, req)
		assert.Error(t, err)
	})
}

//
// ======================= UPDATE =======================
//

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("patch keeps unspecified fields", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()

		existing := product.Product{
			ID:          id,
			Title:       "Mate Imperial",
			Description: "Mate de calabaza",
			Price:       2500,
			Stock:       4,
			Category:    "mates",
			Thumbnails:  []string{"a.jpg"},
		}

		deps.repo.EXPECT().GetByID(ctx, id).Return(existing, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, arg product.UpdateParams) (product.Product, error) {
				assert.Equal(t, float64(3000), arg.Price)
				// untouched fields carry over
				assert.Equal(t, existing.Title, arg.Title)
				assert.Equal(t, existing.Stock, arg.Stock)
				assert.Equal(t, existing.Thumbnails, arg.Thumbnails)
				existing.Price = arg.Price
				return existing, nil
			})
		deps.cache.EXPECT().Invalidate(ctx, id.String())
		expectSnapshot(deps)

		res, err := deps.service.Update(ctx, id.String(), product.UpdateProductRequest{
			Price: floatPtr(3000),
		})

		assert.NoError(t, err)
		assert.Equal(t, float64(3000), res.Price)
	})

	t.Run("zero values are still applied when supplied", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()

		deps.repo.EXPECT().GetByID(ctx, id).Return(product.Product{ID: id, Stock: 9}, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, arg product.UpdateParams) (product.Product, error) {
				assert.Equal(t, int32(0), arg.Stock)
				return product.Product{ID: id, Stock: 0}, nil
			})
		deps.cache.EXPECT().Invalidate(ctx, id.String())
		expectSnapshot(deps)

		res, err := deps.service.Update(ctx, id.String(), product.UpdateProductRequest{
			Stock: int32Ptr(0),
		})

		assert.NoError(t, err)
		assert.Equal(t, int32(0), res.Stock)
	})

	t.Run("error_not_found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()

		deps.repo.EXPECT().GetByID(ctx, id).Return(product.Product{}, sql.ErrNoRows)

		_, err := deps.service.Update(ctx, id.String(), product.UpdateProductRequest{
			Title: strPtr("Nuevo"),
		})
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})
}

//
// ======================= DELETE =======================
//

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()

		deps.repo.EXPECT().Delete(ctx, id).Return(nil)
		deps.cache.EXPECT().Invalidate(ctx, id.String())
		expectSnapshot(deps)

		assert.NoError(t, deps.service.Delete(ctx, id.String()))
	})

	t.Run("error_not_found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()

		deps.repo.EXPECT().Delete(ctx, id).Return(sql.ErrNoRows)

		err := deps.service.Delete(ctx, id.String())
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})
}

//
// ======================= THUMBNAILS =======================
//

func TestProductService_AddThumbnail(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()

		existing := product.Product{ID: id, Title: "Mate", Thumbnails: []string{"a.jpg"}}

		deps.repo.EXPECT().GetByID(ctx, id).Return(existing, nil)
		deps.media.EXPECT().UploadImage(ctx, gomock.Any(), "b.jpg").
			Return("https://cdn.example.com/b.jpg", nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, arg product.UpdateParams) (product.Product, error) {
				assert.Equal(t, []string{"a.jpg", "https://cdn.example.com/b.jpg"}, arg.Thumbnails)
				existing.Thumbnails = arg.Thumbnails
				return existing, nil
			})
		deps.cache.EXPECT().Invalidate(ctx, id.String())
		expectSnapshot(deps)

		res, err := deps.service.AddThumbnail(ctx, id.String(), &fakeFile{}, "b.jpg")

		assert.NoError(t, err)
		assert.Len(t, res.Thumbnails, 2)
	})

	t.Run("error_missing_file", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()

		_, err := deps.service.AddThumbnail(ctx, id.String(), nil, "")
		assert.ErrorIs(t, err, product.ErrThumbnailRequired)
	})
}

type fakeFile struct{}

func (f *fakeFile) Read(p []byte) (int, error)                   { return 0, nil }
func (f *fakeFile) ReadAt(p []byte, off int64) (int, error)      { return 0, nil }
func (f *fakeFile) Seek(offset int64, whence int) (int64, error) { return 0, nil }
func (f *fakeFile) Close() error                                 { return nil }
