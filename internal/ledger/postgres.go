package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-shop-cart.git/internal/shop"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements shop.Ledger with exactly one statement per call and no
// transactions. The atomicity the engines need comes from statement-level
// guarantees only: the partial unique index on pending carts and the
// conditional stock decrement.
type Postgres struct{ DB *pgxpool.Pool }

func NewPostgres(db *pgxpool.Pool) *Postgres { return &Postgres{DB: db} }

const pgUniqueViolation = "23505"

func storeErr(op string, err error) error {
	return &shop.StoreError{Op: op, Err: err}
}

// ---- users ----

func (s *Postgres) InsertUser(ctx context.Context, u *shop.User) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO users(id, f_name, l_name, username, address, phone, email, password, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		u.ID, u.FirstName, u.LastName, u.Username, u.Address, u.Phone, u.Email, u.Password, u.Role, u.CreatedAt)
	if err != nil {
		return storeErr("insert user", err)
	}
	return nil
}

func (s *Postgres) UserByEmail(ctx context.Context, email string) (*shop.User, error) {
	return s.scanUser(ctx, `SELECT id, f_name, l_name, username, address, phone, email, password, role, created_at
		FROM users WHERE email=$1`, email)
}

func (s *Postgres) UserByID(ctx context.Context, id string) (*shop.User, error) {
	return s.scanUser(ctx, `SELECT id, f_name, l_name, username, address, phone, email, password, role, created_at
		FROM users WHERE id=$1`, id)
}

func (s *Postgres) scanUser(ctx context.Context, query string, arg any) (*shop.User, error) {
	var u shop.User
	err := s.DB.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Address, &u.Phone,
		&u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shop.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("select user", err)
	}
	return &u, nil
}

// ---- products ----

const productCols = `id, name, category, description, image_url, stock, original_price, discounted_price, created_at, updated_at`

func (s *Postgres) InsertProduct(ctx context.Context, p *shop.Product) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO products(`+productCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.Name, p.Category, p.Description, p.ImageURL, p.Stock,
		p.OriginalPrice, p.DiscountedPrice, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return storeErr("insert product", err)
	}
	return nil
}

func (s *Postgres) UpdateProduct(ctx context.Context, p *shop.Product) error {
	_, err := s.DB.Exec(ctx, `
		UPDATE products SET name=$2, category=$3, description=$4, image_url=$5,
			stock=$6, original_price=$7, discounted_price=$8, updated_at=$9
		WHERE id=$1`,
		p.ID, p.Name, p.Category, p.Description, p.ImageURL, p.Stock,
		p.OriginalPrice, p.DiscountedPrice, p.UpdatedAt)
	if err != nil {
		return storeErr("update product", err)
	}
	return nil
}

func (s *Postgres) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id); err != nil {
		return storeErr("delete product", err)
	}
	return nil
}

func (s *Postgres) ProductByID(ctx context.Context, id string) (*shop.Product, error) {
	var p shop.Product
	err := s.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id).Scan(
		&p.ID, &p.Name, &p.Category, &p.Description, &p.ImageURL, &p.Stock,
		&p.OriginalPrice, &p.DiscountedPrice, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shop.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("select product", err)
	}
	return &p, nil
}

func (s *Postgres) Products(ctx context.Context, f shop.ProductFilter) ([]shop.Product, error) {
	query := `SELECT ` + productCols + ` FROM products`
	var conds []string
	var args []any

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.MaxPrice.Valid {
		args = append(args, f.MaxPrice.Decimal)
		conds = append(conds, fmt.Sprintf("COALESCE(discounted_price, original_price) <= $%d", len(args)))
	}
	if f.InStock != nil {
		if *f.InStock {
			conds = append(conds, "stock > 0")
		} else {
			conds = append(conds, "stock = 0")
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("select products", err)
	}
	defer rows.Close()

	var out []shop.Product
	for rows.Next() {
		var p shop.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.ImageURL, &p.Stock,
			&p.OriginalPrice, &p.DiscountedPrice, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, storeErr("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("select products", err)
	}
	return out, nil
}

func (s *Postgres) ProductStock(ctx context.Context, id string) (int, error) {
	var stock int
	err := s.DB.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1`, id).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, shop.ErrNotFound
	}
	if err != nil {
		return 0, storeErr("select stock", err)
	}
	return stock, nil
}

func (s *Postgres) DecrementStock(ctx context.Context, productID string, qty int) (bool, error) {
	ct, err := s.DB.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`, productID, qty)
	if err != nil {
		return false, storeErr("decrement stock", err)
	}
	return ct.RowsAffected() == 1, nil
}

// ---- carts ----

func (s *Postgres) InsertCart(ctx context.Context, c *shop.Cart) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO carts(id, user_id, status, created_at)
		VALUES ($1,$2,$3,$4)`, c.ID, c.UserID, c.Status, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation &&
			pgErr.ConstraintName == "carts_one_pending_per_user" {
			return shop.ErrPendingCartExists
		}
		return storeErr("insert cart", err)
	}
	return nil
}

func (s *Postgres) PendingCartByUser(ctx context.Context, userID string) (*shop.Cart, error) {
	var c shop.Cart
	err := s.DB.QueryRow(ctx, `
		SELECT id, user_id, status, created_at FROM carts
		WHERE user_id=$1 AND status=$2`, userID, shop.CartPending).Scan(
		&c.ID, &c.UserID, &c.Status, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shop.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("select pending cart", err)
	}
	return &c, nil
}

func (s *Postgres) UpdateCartStatus(ctx context.Context, cartID string, status shop.CartStatus) error {
	if _, err := s.DB.Exec(ctx, `UPDATE carts SET status=$2 WHERE id=$1`, cartID, status); err != nil {
		return storeErr("update cart status", err)
	}
	return nil
}

// ---- cart items ----

func (s *Postgres) InsertCartItem(ctx context.Context, it *shop.CartItem) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO cart_items(id, cart_id, product_id, quantity, price, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		it.ID, it.CartID, it.ProductID, it.Quantity, it.Price, it.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation &&
			pgErr.ConstraintName == "cart_items_cart_product_key" {
			return shop.ErrCartItemExists
		}
		return storeErr("insert cart item", err)
	}
	return nil
}

func (s *Postgres) AddCartItemQuantity(ctx context.Context, cartID, productID string, delta int) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE cart_items SET quantity = quantity + $3 WHERE cart_id=$1 AND product_id=$2`,
		cartID, productID, delta)
	if err != nil {
		return storeErr("increment cart item", err)
	}
	if ct.RowsAffected() == 0 {
		return shop.ErrNotFound
	}
	return nil
}

func (s *Postgres) CartItem(ctx context.Context, cartID, productID string) (*shop.CartItem, error) {
	var it shop.CartItem
	err := s.DB.QueryRow(ctx, `
		SELECT id, cart_id, product_id, quantity, price, created_at
		FROM cart_items WHERE cart_id=$1 AND product_id=$2`, cartID, productID).Scan(
		&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.Price, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shop.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("select cart item", err)
	}
	return &it, nil
}

func (s *Postgres) CartItems(ctx context.Context, cartID string) ([]shop.CartItem, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, cart_id, product_id, quantity, price, created_at
		FROM cart_items WHERE cart_id=$1 ORDER BY created_at, id`, cartID)
	if err != nil {
		return nil, storeErr("select cart items", err)
	}
	defer rows.Close()

	var out []shop.CartItem
	for rows.Next() {
		var it shop.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.Price, &it.CreatedAt); err != nil {
			return nil, storeErr("scan cart item", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("select cart items", err)
	}
	return out, nil
}

func (s *Postgres) UpdateCartItemQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE cart_items SET quantity=$3 WHERE cart_id=$1 AND product_id=$2`,
		cartID, productID, quantity)
	if err != nil {
		return storeErr("update cart item", err)
	}
	if ct.RowsAffected() == 0 {
		return shop.ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteCartItem(ctx context.Context, cartID, productID string) error {
	if _, err := s.DB.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id=$1 AND product_id=$2`, cartID, productID); err != nil {
		return storeErr("delete cart item", err)
	}
	return nil
}

func (s *Postgres) DeleteCartItems(ctx context.Context, cartID string) error {
	if _, err := s.DB.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, cartID); err != nil {
		return storeErr("delete cart items", err)
	}
	return nil
}

// ---- orders ----

func (s *Postgres) InsertOrder(ctx context.Context, o *shop.Order) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO orders(id, user_id, total_price, status, created_at)
		VALUES ($1,$2,$3,$4,$5)`, o.ID, o.UserID, o.TotalPrice, o.Status, o.CreatedAt)
	if err != nil {
		return storeErr("insert order", err)
	}
	return nil
}

func (s *Postgres) OrderByID(ctx context.Context, id string) (*shop.Order, error) {
	var o shop.Order
	err := s.DB.QueryRow(ctx, `
		SELECT id, user_id, total_price, status, created_at FROM orders WHERE id=$1`, id).Scan(
		&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shop.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("select order", err)
	}
	return &o, nil
}

func (s *Postgres) OrdersByUser(ctx context.Context, userID string) ([]shop.Order, error) {
	return s.selectOrders(ctx, `
		SELECT id, user_id, total_price, status, created_at FROM orders
		WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (s *Postgres) Orders(ctx context.Context) ([]shop.Order, error) {
	return s.selectOrders(ctx, `
		SELECT id, user_id, total_price, status, created_at FROM orders
		ORDER BY created_at DESC`)
}

func (s *Postgres) selectOrders(ctx context.Context, query string, args ...any) ([]shop.Order, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("select orders", err)
	}
	defer rows.Close()

	var out []shop.Order
	for rows.Next() {
		var o shop.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt); err != nil {
			return nil, storeErr("scan order", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("select orders", err)
	}
	return out, nil
}

func (s *Postgres) UpdateOrderStatus(ctx context.Context, orderID string, status shop.OrderStatus) error {
	if _, err := s.DB.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, status); err != nil {
		return storeErr("update order status", err)
	}
	return nil
}

func (s *Postgres) InsertOrderItem(ctx context.Context, it *shop.OrderItem) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO order_items(id, order_id, product_id, quantity, price)
		VALUES ($1,$2,$3,$4,$5)`, it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price)
	if err != nil {
		return storeErr("insert order item", err)
	}
	return nil
}

func (s *Postgres) OrderItems(ctx context.Context, orderID string) ([]shop.OrderItem, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, storeErr("select order items", err)
	}
	defer rows.Close()

	var out []shop.OrderItem
	for rows.Next() {
		var it shop.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, storeErr("scan order item", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("select order items", err)
	}
	return out, nil
}

var _ shop.Ledger = (*Postgres)(nil)
