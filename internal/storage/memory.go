package storage

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/models"
)

// MemoryStorage реализует ResourceStorage с использованием памяти
type MemoryStorage struct {
	mu        sync.RWMutex
	resources map[resourceKey]models.Resource
	logger    *zap.Logger
}

// NewMemoryStorage создает новый экземпляр MemoryStorage
func NewMemoryStorage(logger *zap.Logger) *MemoryStorage {
	return &MemoryStorage{
		resources: make(map[resourceKey]models.Resource),
		logger:    logger,
	}
}

// Create сохраняет ресурс в памяти.
// Изменения не применяются, если ctx уже отменен: подзапрос с истекшим
// временем не должен менять данные после того, как ему ответили ошибкой.
func (ms *MemoryStorage) Create(ctx context.Context, resource models.Resource) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	key := keyOf(resource)
	if _, exists := ms.resources[key]; exists {
		return ErrResourceConflict
	}
	resource.Fields = copyFields(resource.Fields)
	ms.resources[key] = resource
	return nil
}

// Get получает ресурс из памяти
func (ms *MemoryStorage) Get(ctx context.Context, owner, collection, id string) (models.Resource, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	resource, exists := ms.resources[resourceKey{owner: owner, collection: collection, id: id}]
	if !exists {
		return models.Resource{}, ErrResourceNotFound
	}
	resource.Fields = copyFields(resource.Fields)
	return resource, nil
}

// List возвращает ресурсы коллекции пользователя
func (ms *MemoryStorage) List(ctx context.Context, owner, collection string) ([]models.Resource, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]models.Resource, 0)
	for key, resource := range ms.resources {
		if key.owner == owner && key.collection == collection {
			resource.Fields = copyFields(resource.Fields)
			result = append(result, resource)
		}
	}
	sortByID(result)
	return result, nil
}

// Update заменяет поля ресурса
func (ms *MemoryStorage) Update(ctx context.Context, resource models.Resource) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	key := keyOf(resource)
	if _, exists := ms.resources[key]; !exists {
		return ErrResourceNotFound
	}
	resource.Fields = copyFields(resource.Fields)
	ms.resources[key] = resource
	return nil
}

// Delete удаляет ресурс из памяти
func (ms *MemoryStorage) Delete(ctx context.Context, owner, collection, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	key := resourceKey{owner: owner, collection: collection, id: id}
	if _, exists := ms.resources[key]; !exists {
		return ErrResourceNotFound
	}
	delete(ms.resources, key)
	return nil
}

// CheckConnection для хранилища в памяти всегда успешен
func (ms *MemoryStorage) CheckConnection(ctx context.Context) error {
	return nil
}

// Close ничего не делает для хранилища в памяти
func (ms *MemoryStorage) Close() error {
	return nil
}
