package product

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ListFilter mirrors the catalog query parameters after validation. All
// predicates are combined with AND; zero values mean "no filter".
type ListFilter struct {
	Category  string
	Available bool
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	Sort      string // "asc" | "desc" by price, "" keeps insertion order
	Limit     int32
	Offset    int32
}

type CreateParams struct {
	Title       string
	Description string
	Price       float64
	Stock       int32
	Category    string
	Thumbnails  []string
}

type UpdateParams struct {
	ID          uuid.UUID
	Title       string
	Description string
	Price       float64
	Stock       int32
	Category    string
	Thumbnails  []string
}

//go:generate mockgen -source=product_repo.go -destination=../mock/product/product_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx DBTX) Repository

	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	ListAll(ctx context.Context) ([]Product, error)

	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	Upsert(ctx context.Context, arg CreateParams) (Product, bool, error)
	Update(ctx context.Context, arg UpdateParams) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db DBTX
}

func NewRepository(db DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx DBTX) Repository {
	return &repository{db: tx}
}

const productColumns = `id, title, description, price, stock, category, thumbnails, created_at, updated_at`

func scanProduct(scan func(...any) error) (Product, error) {
	var p Product
	err := scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Stock,
		&p.Category, pq.Array(&p.Thumbnails), &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// buildFilter appends WHERE clauses for every supplied predicate. Argument
// numbering starts after any args already in the slice.
func buildFilter(f ListFilter, args []any) (string, []any) {
	var b strings.Builder

	if f.Category != "" {
		args = append(args, f.Category)
		fmt.Fprintf(&b, " AND category = $%d", len(args))
	}
	if f.Available {
		b.WriteString(" AND stock > 0")
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		fmt.Fprintf(&b, " AND title ILIKE $%d", len(args))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		fmt.Fprintf(&b, " AND price >= $%d", len(args))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		fmt.Fprintf(&b, " AND price <= $%d", len(args))
	}

	return b.String(), args
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`

	where, args := buildFilter(f, nil)
	query += where

	switch f.Sort {
	case "asc":
		query += ` ORDER BY price ASC`
	case "desc":
		query += ` ORDER BY price DESC`
	default:
		// insertion order is the store default
		query += ` ORDER BY created_at, id`
	}

	args = append(args, f.Limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	args = append(args, f.Offset)
	query += fmt.Sprintf(` OFFSET $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) Count(ctx context.Context, f ListFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM products WHERE 1=1`

	where, args := buildFilter(f, nil)
	query += where

	var total int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}

func (r *repository) ListAll(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row.Scan)
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Upsert merges on title in one statement: inserting an existing title bumps
// that product's stock by one instead of adding a row, so two concurrent
// creates cannot duplicate a title. The boolean reports whether a new row was
// inserted; xmax is zero only for rows the current transaction inserted.
func (r *repository) Upsert(ctx context.Context, arg CreateParams) (Product, bool, error) {
	thumbnails := arg.Thumbnails
	if thumbnails == nil {
		thumbnails = []string{}
	}

	var (
		p        Product
		inserted bool
	)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (title, description, price, stock, category, thumbnails)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (title)
		DO UPDATE SET stock = products.stock + 1, updated_at = NOW()
		RETURNING `+productColumns+`, (xmax = 0) AS inserted`,
		arg.Title, arg.Description, arg.Price, arg.Stock, arg.Category, pq.Array(thumbnails),
	).Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Stock,
		&p.Category, pq.Array(&p.Thumbnails), &p.CreatedAt, &p.UpdatedAt,
		&inserted,
	)
	return p, inserted, err
}

func (r *repository) Update(ctx context.Context, arg UpdateParams) (Product, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET title = $1, description = $2, price = $3, stock = $4,
		    category = $5, thumbnails = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING `+productColumns,
		arg.Title, arg.Description, arg.Price, arg.Stock,
		arg.Category, pq.Array(arg.Thumbnails), arg.ID)
	return scanProduct(row.Scan)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
