package cart

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ItemRow is a line item joined with its product. The product columns are
// null when the referenced product has been deleted from the catalog.
type ItemRow struct {
	ProductID uuid.UUID
	Quantity  int32
	Title     sql.NullString
	Price     sql.NullFloat64
	Category  sql.NullString
	Stock     sql.NullInt32
}

//go:generate mockgen -source=cart_repo.go -destination=../mock/cart/cart_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx DBTX) Repository

	CreateCart(ctx context.Context) (Cart, error)
	GetCart(ctx context.Context, id uuid.UUID) (Cart, error)
	GetItems(ctx context.Context, cartID uuid.UUID) ([]ItemRow, error)

	UpsertItemAdd(ctx context.Context, cartID, productID uuid.UUID, qty int32) (CartItem, error)
	UpdateItemQty(ctx context.Context, cartID, productID uuid.UUID, qty int32) (CartItem, error)
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error
	InsertItem(ctx context.Context, item CartItem) error

	DeleteAllItems(ctx context.Context, cartID uuid.UUID) error
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
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

func (r *repository) CreateCart(ctx context.Context) (Cart, error) {
	var c Cart
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO carts DEFAULT VALUES RETURNING id, created_at`,
	).Scan(&c.ID, &c.CreatedAt)
	return c, err
}

func (r *repository) GetCart(ctx context.Context, id uuid.UUID) (Cart, error) {
	var c Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM carts WHERE id = $1`, id,
	).Scan(&c.ID, &c.CreatedAt)
	return c, err
}

func (r *repository) GetItems(ctx context.Context, cartID uuid.UUID) ([]ItemRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ci.product_id, ci.quantity, p.title, p.price, p.category, p.stock
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.product_id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ItemRow, 0)
	for rows.Next() {
		var it ItemRow
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.Title, &it.Price, &it.Category, &it.Stock); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpsertItemAdd merges additively in one statement, so two concurrent adds
// for the same product both land instead of one overwriting the other.
func (r *repository) UpsertItemAdd(ctx context.Context, cartID, productID uuid.UUID, qty int32) (CartItem, error) {
	var it CartItem
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING cart_id, product_id, quantity`,
		cartID, productID, qty,
	).Scan(&it.CartID, &it.ProductID, &it.Quantity)
	return it, err
}

func (r *repository) UpdateItemQty(ctx context.Context, cartID, productID uuid.UUID, qty int32) (CartItem, error) {
	var it CartItem
	err := r.db.QueryRowContext(ctx, `
		UPDATE cart_items
		SET quantity = $3
		WHERE cart_id = $1 AND product_id = $2
		RETURNING cart_id, product_id, quantity`,
		cartID, productID, qty,
	).Scan(&it.CartID, &it.ProductID, &it.Quantity)
	return it, err
}

func (r *repository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID)
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

func (r *repository) InsertItem(ctx context.Context, item CartItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)`,
		item.CartID, item.ProductID, item.Quantity)
	return err
}

func (r *repository) DeleteAllItems(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

func (r *repository) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM carts WHERE id = $1`, cartID)
	return err
}
