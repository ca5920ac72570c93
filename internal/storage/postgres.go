package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/models"
)

// код ошибки PostgreSQL unique_violation
const uniqueViolationCode = "23505"

// PostgresStorage реализует ResourceStorage с использованием PostgreSQL
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStorage подключается к базе данных и создает таблицу ресурсов
func NewPostgresStorage(dsn string, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close DB connection after ping error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("database connection check error: %w", err)
	}

	createTableSQL := `CREATE TABLE IF NOT EXISTS resources (` +
		`owner VARCHAR(255) NOT NULL,` +
		`collection VARCHAR(64) NOT NULL,` +
		`id VARCHAR(255) NOT NULL,` +
		`fields JSONB NOT NULL DEFAULT '{}'::jsonb,` +
		`PRIMARY KEY (owner, collection, id)` +
		`)`
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close DB connection after table creation error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("table creation error: %w", err)
	}

	return &PostgresStorage{
		db:     db,
		logger: logger,
	}, nil
}

// Create сохраняет ресурс
func (ps *PostgresStorage) Create(ctx context.Context, resource models.Resource) error {
	fields, err := marshalFields(resource.Fields)
	if err != nil {
		return err
	}

	_, err = ps.db.ExecContext(ctx,
		"INSERT INTO resources (owner, collection, id, fields) VALUES ($1, $2, $3, $4)",
		resource.Owner, resource.Collection, resource.ID, fields)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return ErrResourceConflict
		}
		return fmt.Errorf("save resource error: %w", err)
	}
	return nil
}

// Get получает ресурс
func (ps *PostgresStorage) Get(ctx context.Context, owner, collection, id string) (models.Resource, error) {
	var raw []byte
	err := ps.db.QueryRowContext(ctx,
		"SELECT fields FROM resources WHERE owner = $1 AND collection = $2 AND id = $3",
		owner, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Resource{}, ErrResourceNotFound
		}
		return models.Resource{}, fmt.Errorf("get resource error: %w", err)
	}

	fields, err := unmarshalFields(raw)
	if err != nil {
		return models.Resource{}, err
	}
	return models.Resource{ID: id, Owner: owner, Collection: collection, Fields: fields}, nil
}

// List возвращает ресурсы коллекции пользователя
func (ps *PostgresStorage) List(ctx context.Context, owner, collection string) ([]models.Resource, error) {
	rows, err := ps.db.QueryContext(ctx,
		"SELECT id, fields FROM resources WHERE owner = $1 AND collection = $2 ORDER BY id",
		owner, collection)
	if err != nil {
		return nil, fmt.Errorf("list resources error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Resource, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan resource error: %w", err)
		}
		fields, err := unmarshalFields(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, models.Resource{ID: id, Owner: owner, Collection: collection, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources error: %w", err)
	}

	// порядок сортировки в БД зависит от collation
	sortByID(result)
	return result, nil
}

// Update заменяет поля ресурса
func (ps *PostgresStorage) Update(ctx context.Context, resource models.Resource) error {
	fields, err := marshalFields(resource.Fields)
	if err != nil {
		return err
	}

	res, err := ps.db.ExecContext(ctx,
		"UPDATE resources SET fields = $4 WHERE owner = $1 AND collection = $2 AND id = $3",
		resource.Owner, resource.Collection, resource.ID, fields)
	if err != nil {
		return fmt.Errorf("update resource error: %w", err)
	}
	return expectAffected(res)
}

// Delete удаляет ресурс
func (ps *PostgresStorage) Delete(ctx context.Context, owner, collection, id string) error {
	res, err := ps.db.ExecContext(ctx,
		"DELETE FROM resources WHERE owner = $1 AND collection = $2 AND id = $3",
		owner, collection, id)
	if err != nil {
		return fmt.Errorf("delete resource error: %w", err)
	}
	return expectAffected(res)
}

// CheckConnection проверяет соединение с базой данных
func (ps *PostgresStorage) CheckConnection(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}

// Close закрывает соединение с базой данных
func (ps *PostgresStorage) Close() error {
	return ps.db.Close()
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if affected == 0 {
		return ErrResourceNotFound
	}
	return nil
}

func marshalFields(fields map[string]any) ([]byte, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("error marshaling resource fields: %w", err)
	}
	return data, nil
}

func unmarshalFields(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("error unmarshaling resource fields: %w", err)
	}
	return fields, nil
}
