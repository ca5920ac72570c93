// Package storage предоставляет хранилища ресурсов пользователей:
// в памяти, в файле и в PostgreSQL.
package storage

import (
	"sort"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/config"
	"github.com/InQaaaaGit/graph_batch.git/internal/models"
)

// Storage объединяет хранилище ресурсов и проверку соединения
type Storage interface {
	ResourceStorage
	DatabaseChecker
}

// NewStorage выбирает хранилище по конфигурации:
// DatabaseDSN имеет приоритет над FileStoragePath, иначе используется память
func NewStorage(cfg *config.Config, logger *zap.Logger) (Storage, error) {
	if cfg.DatabaseDSN != "" {
		logger.Info("Using PostgreSQL storage")
		pg, err := NewPostgresStorage(cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	if cfg.FileStoragePath != "" {
		logger.Info("Using file storage", zap.String("path", cfg.FileStoragePath))
		fs, err := NewFileStorage(cfg.FileStoragePath, logger)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
	logger.Info("Using in-memory storage")
	return NewMemoryStorage(logger), nil
}

type resourceKey struct {
	owner      string
	collection string
	id         string
}

func keyOf(r models.Resource) resourceKey {
	return resourceKey{owner: r.Owner, collection: r.Collection, id: r.ID}
}

// copyFields защищает сохранённые поля от изменений вызывающей стороной
func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func sortByID(resources []models.Resource) {
	sort.Slice(resources, func(i, j int) bool {
		return resources[i].ID < resources[j].ID
	})
}
