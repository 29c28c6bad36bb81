package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benpsk/items-service/internal/item"
	"github.com/jackc/pgx/v5/pgconn"
)

const healthCheckTimeout = 2 * time.Second

const createItemsTable = `
	create table if not exists items (
		id serial primary key,
		name varchar(100) not null,
		description varchar(500),
		created_at timestamptz not null default now()
	)
`

type ItemStore struct {
	db DBTX
}

func NewItemStore(db DBTX) *ItemStore {
	return &ItemStore{db: db}
}

func (s *ItemStore) conn(ctx context.Context) DBTX {
	return DBFromContext(ctx, s.db)
}

// Initialize creates the items table if it is missing.
func (s *ItemStore) Initialize(ctx context.Context) error {
	if _, err := s.conn(ctx).Exec(ctx, createItemsTable); err != nil {
		return fmt.Errorf("%w: create items table: %w", item.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *ItemStore) List(ctx context.Context) ([]item.Item, error) {
	rows, err := s.conn(ctx).Query(ctx, `
		select id, name, description, created_at
		from items
		order by created_at desc, id desc
	`)
	if err != nil {
		return nil, storageError("list items", err)
	}
	defer rows.Close()

	items := make([]item.Item, 0)
	for rows.Next() {
		var it item.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.CreatedAt); err != nil {
			return nil, storageError("scan item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate items", err)
	}

	return items, nil
}

func (s *ItemStore) Create(ctx context.Context, name string, description *string) (item.Item, error) {
	var it item.Item
	err := s.conn(ctx).QueryRow(ctx, `
		insert into items (name, description)
		values ($1, $2)
		returning id, name, description, created_at
	`, name, description).Scan(&it.ID, &it.Name, &it.Description, &it.CreatedAt)
	if err != nil {
		return item.Item{}, storageError("create item", err)
	}
	return it, nil
}

// Delete reports whether a row was removed. A missing id is not an error.
func (s *ItemStore) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.conn(ctx).Exec(ctx, `delete from items where id = $1`, id)
	if err != nil {
		return false, storageError("delete item", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *ItemStore) CheckHealth(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	db := s.conn(ctx)
	if db == nil {
		return false
	}
	var one int
	if err := db.QueryRow(ctx, `select 1`).Scan(&one); err != nil {
		return false
	}
	return one == 1
}

func storageError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s: sqlstate %s: %w", item.ErrStorage, op, pgErr.Code, err)
	}
	return fmt.Errorf("%w: %s: %w", item.ErrStorage, op, err)
}
