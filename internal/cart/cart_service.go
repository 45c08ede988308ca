package cart

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductChecker is the slice of the catalog the reconciler needs: adding a
// line requires the product to exist at that moment.
type ProductChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Notifier receives the fresh cart snapshot after a successful mutation.
// Delivery is best effort and must never fail the mutation itself.
type Notifier interface {
	CartChanged(ctx context.Context, snapshot CartResponse)
}

//go:generate mockgen -source=cart_service.go -destination=../mock/cart/cart_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context) (CartResponse, error)
	Detail(ctx context.Context, cartID string) (CartResponse, error)

	AddItem(ctx context.Context, cartID, productID string, req AddItemRequest) (CartResponse, error)
	UpdateQty(ctx context.Context, cartID, productID string, req UpdateQtyRequest) (CartResponse, error)
	DeleteItem(ctx context.Context, cartID, productID string) (CartResponse, error)

	ReplaceItems(ctx context.Context, cartID string, req ReplaceItemsRequest) (CartResponse, error)
	Clear(ctx context.Context, cartID string) error
	Delete(ctx context.Context, cartID string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	products ProductChecker
	notifier Notifier
	validate *validator.Validate
	logger   *zap.Logger
}

type Deps struct {
	DB       *sql.DB
	Repo     Repository
	Products ProductChecker
	Notifier Notifier
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
		db:       deps.DB,
		repo:     deps.Repo,
		products: deps.Products,
		notifier: deps.Notifier,
		validate: validator.New(),
		logger:   deps.Logger,
	}
}

// ========================
// helpers
// ========================

func (s *service) parseCartID(cartID string) (uuid.UUID, error) {
	id, err := uuid.Parse(cartID)
	if err != nil {
		return uuid.Nil, ErrInvalidCartID
	}
	return id, nil
}

func (s *service) parseProductID(productID string) (uuid.UUID, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return uuid.Nil, ErrInvalidProductID
	}
	return id, nil
}

// getCart resolves the cart or reports not-found.
func (s *service) getCart(ctx context.Context, id uuid.UUID) (Cart, error) {
	c, err := s.repo.GetCart(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrCartNotFound
		}
		return Cart{}, err
	}
	return c, nil
}

func (s *service) snapshot(ctx context.Context, cartID uuid.UUID) (CartResponse, error) {
	rows, err := s.repo.GetItems(ctx, cartID)
	if err != nil {
		return CartResponse{}, err
	}

	items := make([]CartItemResponse, 0, len(rows))
	for _, r := range rows {
		item := CartItemResponse{
			ProductID: r.ProductID.String(),
			Quantity:  r.Quantity,
		}
		// a dangling product reference leaves the detail nil
		if r.Title.Valid {
			item.Product = &ProductSummary{
				Title:    r.Title.String,
				Price:    r.Price.Float64,
				Category: r.Category.String,
				Stock:    r.Stock.Int32,
			}
		}
		items = append(items, item)
	}

	return CartResponse{ID: cartID.String(), Items: items}, nil
}

func (s *service) notifyCart(ctx context.Context, snapshot CartResponse) {
	if s.notifier != nil {
		s.notifier.CartChanged(ctx, snapshot)
	}
}

// ========================
// operations
// ========================

func (s *service) Create(ctx context.Context) (CartResponse, error) {
	c, err := s.repo.CreateCart(ctx)
	if err != nil {
		return CartResponse{}, err
	}
	return CartResponse{ID: c.ID.String(), Items: []CartItemResponse{}}, nil
}

func (s *service) Detail(ctx context.Context, cartID string) (CartResponse, error) {
	cid, err := s.parseCartID(cartID)
	if err != nil {
		return CartResponse{}, err
	}

	if _, err := s.getCart(ctx, cid); err != nil {
		return CartResponse{}, err
	}

	return s.snapshot(ctx, cid)
}

// AddItem merges additively: a product already in the cart gets its quantity
// increased, never a second line.
func (s *service) AddItem(ctx context.Context, cartID, productID string, req AddItemRequest) (CartResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return CartResponse{}, MapValidationError(err)
	}
	if req.Quantity <= 0 {
		return CartResponse{}, ErrInvalidQty
	}

	cid, err := s.parseCartID(cartID)
	if err != nil {
		return CartResponse{}, err
	}
	pid, err := s.parseProductID(productID)
	if err != nil {
		return CartResponse{}, err
	}

	if _, err := s.getCart(ctx, cid); err != nil {
		return CartResponse{}, err
	}

	exists, err := s.products.Exists(ctx, pid)
	if err != nil {
		return CartResponse{}, err
	}
	if !exists {
		return CartResponse{}, ErrProductNotFound
	}

	if _, err := s.repo.UpsertItemAdd(ctx, cid, pid, req.Quantity); err != nil {
		return CartResponse{}, err
	}

	res, err := s.snapshot(ctx, cid)
	if err != nil {
		return CartResponse{}, err
	}

	s.notifyCart(ctx, res)
	return res, nil
}

// UpdateQty overwrites (does not add to) the line's quantity.
func (s *service) UpdateQty(ctx context.Context, cartID, productID string, req UpdateQtyRequest) (CartResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return CartResponse{}, MapValidationError(err)
	}

	cid, err := s.parseCartID(cartID)
	if err != nil {
		return CartResponse{}, err
	}
	pid, err := s.parseProductID(productID)
	if err != nil {
		return CartResponse{}, err
	}

	if _, err := s.getCart(ctx, cid); err != nil {
		return CartResponse{}, err
	}

	if _, err := s.repo.UpdateItemQty(ctx, cid, pid, req.Quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CartResponse{}, ErrCartItemNotFound
		}
		return CartResponse{}, err
	}

	res, err := s.snapshot(ctx, cid)
	if err != nil {
		return CartResponse{}, err
	}

	s.notifyCart(ctx, res)
	return res, nil
}

// DeleteItem removes the line for the product. Removing a line that does not
// exist fails with not-found; the silent no-op variant was dropped.
func (s *service) DeleteItem(ctx context.Context, cartID, productID string) (CartResponse, error) {
	cid, err := s.parseCartID(cartID)
	if err != nil {
		return CartResponse{}, err
	}
	pid, err := s.parseProductID(productID)
	if err != nil {
		return CartResponse{}, err
	}

	if _, err := s.getCart(ctx, cid); err != nil {
		return CartResponse{}, err
	}

	if err := s.repo.DeleteItem(ctx, cid, pid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CartResponse{}, ErrCartItemNotFound
		}
		return CartResponse{}, err
	}

	res, err := s.snapshot(ctx, cid)
	if err != nil {
		return CartResponse{}, err
	}

	s.notifyCart(ctx, res)
	return res, nil
}

// ReplaceItems swaps the whole line-item list in one transaction. Product
// references are taken as given; only AddItem checks the catalog.
func (s *service) ReplaceItems(ctx context.Context, cartID string, req ReplaceItemsRequest) (CartResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return CartResponse{}, MapValidationError(err)
	}

	cid, err := s.parseCartID(cartID)
	if err != nil {
		return CartResponse{}, err
	}

	items := make([]CartItem, 0, len(req.Products))
	for _, p := range req.Products {
		pid, err := s.parseProductID(p.Product)
		if err != nil {
			return CartResponse{}, err
		}
		items = append(items, CartItem{CartID: cid, ProductID: pid, Quantity: p.Quantity})
	}

	if _, err := s.getCart(ctx, cid); err != nil {
		return CartResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CartResponse{}, err
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)

	if err := repo.DeleteAllItems(ctx, cid); err != nil {
		return CartResponse{}, err
	}
	for _, item := range items {
		if err := repo.InsertItem(ctx, item); err != nil {
			return CartResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return CartResponse{}, err
	}

	res, err := s.snapshot(ctx, cid)
	if err != nil {
		return CartResponse{}, err
	}

	s.notifyCart(ctx, res)
	return res, nil
}

func (s *service) Clear(ctx context.Context, cartID string) error {
	cid, err := s.parseCartID(cartID)
	if err != nil {
		return err
	}

	if _, err := s.getCart(ctx, cid); err != nil {
		return err
	}

	if err := s.repo.DeleteAllItems(ctx, cid); err != nil {
		return err
	}

	s.notifyCart(ctx, CartResponse{ID: cid.String(), Items: []CartItemResponse{}})
	return nil
}

func (s *service) Delete(ctx context.Context, cartID string) error {
	cid, err := s.parseCartID(cartID)
	if err != nil {
		return err
	}

	if _, err := s.getCart(ctx, cid); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)

	if err := repo.DeleteAllItems(ctx, cid); err != nil {
		return err
	}
	if err := repo.DeleteCart(ctx, cid); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.notifyCart(ctx, CartResponse{ID: cid.String(), Items: []CartItemResponse{}})
	return nil
}
