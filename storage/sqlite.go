package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"paydash.app/cloud/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type SQLiteStorage struct {
	db   *sql.DB
	path string
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStorage{
		db:   db,
		path: path,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStorage) migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func (s *SQLiteStorage) SaveOrder(ctx context.Context, order *models.Order) error {
	query := `INSERT OR REPLACE INTO orders
		(id, stripe_session_id, customer_email, customer_name, country, product_name, amount_total, currency, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		order.ID,
		order.StripeSessionID,
		order.CustomerEmail,
		order.CustomerName,
		order.Country,
		order.ProductName,
		order.AmountTotal,
		order.Currency,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

const orderColumns = `id, stripe_session_id, customer_email, customer_name, country, product_name, amount_total, currency, status, created_at, updated_at`

func (s *SQLiteStorage) scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.StripeSessionID,
		&order.CustomerEmail,
		&order.CustomerName,
		&order.Country,
		&order.ProductName,
		&order.AmountTotal,
		&order.Currency,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *SQLiteStorage) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)

	order, err := s.scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *SQLiteStorage) FindOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE stripe_session_id = ?`, sessionID)

	order, err := s.scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *SQLiteStorage) ListOrders(ctx context.Context) ([]*models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := s.scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func (s *SQLiteStorage) SavePayment(ctx context.Context, payment *models.Payment) error {
	query := `INSERT OR REPLACE INTO payments
		(stripe_payment_id, id, amount, currency, description, customer_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		payment.StripePaymentID,
		payment.ID,
		payment.Amount,
		payment.Currency,
		payment.Description,
		payment.CustomerID,
		payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) ListPaymentsSince(ctx context.Context, since time.Time) ([]models.Payment, error) {
	query := `SELECT stripe_payment_id, id, amount, currency, description, customer_id, created_at
		FROM payments WHERE created_at >= ? ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var payment models.Payment
		err := rows.Scan(
			&payment.StripePaymentID,
			&payment.ID,
			&payment.Amount,
			&payment.Currency,
			&payment.Description,
			&payment.CustomerID,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

func (s *SQLiteStorage) MarkEventProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO webhook_events (id, event_type, received_at) VALUES (?, ?, ?)`,
		eventID, eventType, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	// Zero rows inserted means the id was already there.
	return affected == 0, nil
}

func (s *SQLiteStorage) ForgetEvent(ctx context.Context, eventID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM webhook_events WHERE id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("failed to forget webhook event: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ReplaceCatalog(ctx context.Context, items []models.CatalogItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_items`); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}

	query := `INSERT INTO catalog_items
		(price_id, product_id, product_name, description, image_url, unit_amount, currency, recurring, interval, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, item := range items {
		recurring := 0
		if item.Recurring {
			recurring = 1
		}
		_, err := tx.ExecContext(ctx, query,
			item.PriceID,
			item.ProductID,
			item.ProductName,
			item.Description,
			item.ImageURL,
			item.UnitAmount,
			item.Currency,
			recurring,
			item.Interval,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert catalog item %s: %w", item.PriceID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStorage) ListCatalog(ctx context.Context) ([]models.CatalogItem, error) {
	query := `SELECT price_id, product_id, product_name, description, image_url, unit_amount, currency, recurring, interval, created_at
		FROM catalog_items ORDER BY created_at DESC, price_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var items []models.CatalogItem
	for rows.Next() {
		var item models.CatalogItem
		var recurring int
		err := rows.Scan(
			&item.PriceID,
			&item.ProductID,
			&item.ProductName,
			&item.Description,
			&item.ImageURL,
			&item.UnitAmount,
			&item.Currency,
			&recurring,
			&item.Interval,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		item.Recurring = recurring == 1
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog: %w", err)
	}

	return items, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
