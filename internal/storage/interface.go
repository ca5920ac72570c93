package storage

import (
	"context"

	"github.com/InQaaaaGit/graph_batch.git/internal/models"
)

// ResourceStorage интерфейс для хранилища ресурсов пользователей
type ResourceStorage interface {
	// Create сохраняет новый ресурс; ErrResourceConflict, если id уже занят
	Create(ctx context.Context, resource models.Resource) error

	// Get получает ресурс по владельцу, коллекции и id
	Get(ctx context.Context, owner, collection, id string) (models.Resource, error)

	// List возвращает ресурсы коллекции пользователя, упорядоченные по id
	List(ctx context.Context, owner, collection string) ([]models.Resource, error)

	// Update заменяет поля существующего ресурса
	Update(ctx context.Context, resource models.Resource) error

	// Delete удаляет ресурс
	Delete(ctx context.Context, owner, collection, id string) error

	// Close освобождает ресурсы хранилища
	Close() error
}

// DatabaseChecker интерфейс для проверки соединения с базой данных
type DatabaseChecker interface {
	// CheckConnection проверяет соединение с базой данных
	CheckConnection(ctx context.Context) error
}
