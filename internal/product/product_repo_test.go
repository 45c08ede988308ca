package product_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"go-tienda-api/internal/product"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func setupRepoTest(t *testing.T) (product.Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return product.NewRepository(db), mock
}

func productRows(ids ...uuid.UUID) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "price", "stock", "category",
		"thumbnails", "created_at", "updated_at",
	})
	for _, id := range ids {
		rows.AddRow(id, "Mate Imperial", "Mate de calabaza", 2500.0, int32(4),
			"mates", "{a.jpg,b.jpg}", time.Now(), time.Now())
	}
	return rows
}

func TestProductRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("no filters keeps insertion order", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectQuery(`SELECT (.+) FROM products WHERE 1=1 ORDER BY created_at, id LIMIT \$1 OFFSET \$2`).
			WithArgs(int32(10), int32(0)).
			WillReturnRows(productRows(uuid.New(), uuid.New()))

		products, err := repo.List(ctx, product.ListFilter{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Len(t, products, 2)
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, products[0].Thumbnails)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("all filters land in the query", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		minPrice, maxPrice := 100.0, 5000.0

		mock.ExpectQuery(regexp.QuoteMeta(
			`AND category = $1 AND stock > 0 AND title ILIKE $2 AND price >= $3 AND price <= $4`)+
			` ORDER BY price DESC LIMIT \$5 OFFSET \$6`).
			WithArgs("mates", "%imperial%", minPrice, maxPrice, int32(10), int32(10)).
			WillReturnRows(productRows(uuid.New()))

		products, err := repo.List(ctx, product.ListFilter{
			Category:  "mates",
			Available: true,
			Search:    "imperial",
			MinPrice:  &minPrice,
			MaxPrice:  &maxPrice,
			Sort:      "desc",
			Limit:     10,
			Offset:    10,
		})

		assert.NoError(t, err)
		assert.Len(t, products, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_Count(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products WHERE 1=1 AND category = $1`)).
			WithArgs("mates").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(25)))

		total, err := repo.Count(ctx, product.ListFilter{Category: "mates"})

		assert.NoError(t, err)
		assert.Equal(t, int64(25), total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_Upsert(t *testing.T) {
	ctx := context.Background()

	upsertRow := func(id uuid.UUID, stock int32, inserted bool) *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "title", "description", "price", "stock", "category",
			"thumbnails", "created_at", "updated_at", "inserted",
		}).AddRow(id, "Mate Imperial", "Mate de calabaza", 2500.0, stock,
			"mates", "{}", time.Now(), time.Now(), inserted)
	}

	t.Run("new title inserts a row", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(
			`ON CONFLICT (title) DO UPDATE SET stock = products.stock + 1`)).
			WithArgs("Mate Imperial", "Mate de calabaza", 2500.0, int32(4), "mates",
				pq.Array([]string{})).
			WillReturnRows(upsertRow(id, 4, true))

		p, created, err := repo.Upsert(ctx, product.CreateParams{
			Title:       "Mate Imperial",
			Description: "Mate de calabaza",
			Price:       2500,
			Stock:       4,
			Category:    "mates",
		})

		assert.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, id, p.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflicting title bumps the existing stock", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(
			`ON CONFLICT (title) DO UPDATE SET stock = products.stock + 1`)).
			WithArgs("Mate Imperial", "Mate de calabaza", 2500.0, int32(4), "mates",
				pq.Array([]string{})).
			WillReturnRows(upsertRow(id, 5, false))

		p, created, err := repo.Upsert(ctx, product.CreateParams{
			Title:       "Mate Imperial",
			Description: "Mate de calabaza",
			Price:       2500,
			Stock:       4,
			Category:    "mates",
		})

		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int32(5), p.Stock)
	})
}

func TestProductRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, id))
	})

	t.Run("error_missing_row", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, id), sql.ErrNoRows)
	})
}

func TestProductRepository_Exists(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.Exists(ctx, id)

		assert.NoError(t, err)
		assert.True(t, exists)
	})
}
