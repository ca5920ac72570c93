package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/models"
)

var errFileClosed = errors.New("file storage is closed")

// ResourceRecord представляет строку файла хранилища
type ResourceRecord struct {
	ID         string         `json:"id"`
	Owner      string         `json:"owner"`
	Collection string         `json:"collection"`
	Fields     map[string]any `json:"fields"`
}

func (r ResourceRecord) resource() models.Resource {
	return models.Resource{ID: r.ID, Owner: r.Owner, Collection: r.Collection, Fields: r.Fields}
}

func recordOf(resource models.Resource) ResourceRecord {
	return ResourceRecord{
		ID:         resource.ID,
		Owner:      resource.Owner,
		Collection: resource.Collection,
		Fields:     resource.Fields,
	}
}

// FileStorage реализует ResourceStorage поверх файла JSON-строк.
// Новые ресурсы дописываются в конец, изменения и удаления перезаписывают файл.
type FileStorage struct {
	filePath  string
	resources map[resourceKey]models.Resource
	mutex     sync.RWMutex
	file      *os.File
	logger    *zap.Logger
}

// NewFileStorage создает новый экземпляр FileStorage и загружает данные из файла
func NewFileStorage(filePath string, logger *zap.Logger) (*FileStorage, error) {
	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	fs := &FileStorage{
		filePath:  filePath,
		file:      file,
		resources: make(map[resourceKey]models.Resource),
		logger:    logger,
	}

	if err := fs.loadFromFile(); err != nil {
		if closeErr := file.Close(); closeErr != nil {
			logger.Error("Error closing file after load failure", zap.Error(closeErr))
		}
		return nil, err
	}

	logger.Info("File storage loaded",
		zap.String("path", filePath),
		zap.Int("resources", len(fs.resources)))
	return fs, nil
}

// loadFromFile загружает записи из файла; более поздняя запись с тем же ключом побеждает
func (fs *FileStorage) loadFromFile() error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if _, err := fs.file.Seek(0, 0); err != nil {
		return fmt.Errorf("error seeking to file start: %w", err)
	}

	decoder := json.NewDecoder(fs.file)
	for decoder.More() {
		var record ResourceRecord
		if err := decoder.Decode(&record); err != nil {
			return fmt.Errorf("error decoding record: %w", err)
		}
		resource := record.resource()
		fs.resources[keyOf(resource)] = resource
	}

	return nil
}

// Create дописывает ресурс в файл
func (fs *FileStorage) Create(ctx context.Context, resource models.Resource) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	if err := fs.writable(ctx); err != nil {
		return err
	}

	key := keyOf(resource)
	if _, exists := fs.resources[key]; exists {
		return ErrResourceConflict
	}

	resource.Fields = copyFields(resource.Fields)
	data, err := json.Marshal(recordOf(resource))
	if err != nil {
		return fmt.Errorf("error marshaling resource record: %w", err)
	}
	if _, err := fs.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	fs.resources[key] = resource
	return nil
}

// Get получает ресурс
func (fs *FileStorage) Get(ctx context.Context, owner, collection, id string) (models.Resource, error) {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()

	resource, exists := fs.resources[resourceKey{owner: owner, collection: collection, id: id}]
	if !exists {
		return models.Resource{}, ErrResourceNotFound
	}
	resource.Fields = copyFields(resource.Fields)
	return resource, nil
}

// List возвращает ресурсы коллекции пользователя
func (fs *FileStorage) List(ctx context.Context, owner, collection string) ([]models.Resource, error) {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()

	result := make([]models.Resource, 0)
	for key, resource := range fs.resources {
		if key.owner == owner && key.collection == collection {
			resource.Fields = copyFields(resource.Fields)
			result = append(result, resource)
		}
	}
	sortByID(result)
	return result, nil
}

// Update заменяет поля ресурса и перезаписывает файл
func (fs *FileStorage) Update(ctx context.Context, resource models.Resource) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	if err := fs.writable(ctx); err != nil {
		return err
	}

	key := keyOf(resource)
	previous, exists := fs.resources[key]
	if !exists {
		return ErrResourceNotFound
	}

	resource.Fields = copyFields(resource.Fields)
	fs.resources[key] = resource
	if err := fs.rewriteFile(); err != nil {
		fs.resources[key] = previous
		return fmt.Errorf("error rewriting file after update: %w", err)
	}
	return nil
}

// Delete удаляет ресурс и перезаписывает файл
func (fs *FileStorage) Delete(ctx context.Context, owner, collection, id string) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	if err := fs.writable(ctx); err != nil {
		return err
	}

	key := resourceKey{owner: owner, collection: collection, id: id}
	previous, exists := fs.resources[key]
	if !exists {
		return ErrResourceNotFound
	}

	delete(fs.resources, key)
	if err := fs.rewriteFile(); err != nil {
		fs.resources[key] = previous
		return fmt.Errorf("error rewriting file after delete: %w", err)
	}
	return nil
}

// writable проверяет, можно ли менять данные: файл открыт и ctx не отменен
func (fs *FileStorage) writable(ctx context.Context) error {
	if fs.file == nil {
		return errFileClosed
	}
	return ctx.Err()
}

// rewriteFile записывает текущие данные во временный файл и атомарно
// подменяет им основной. При ошибке записи файл на диске не меняется.
func (fs *FileStorage) rewriteFile() error {
	tmp, err := os.CreateTemp(filepath.Dir(fs.filePath), filepath.Base(fs.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	if err := writeRecords(tmp, fs.resources); err != nil {
		fs.discardTemp(tmp)
		return err
	}
	if err := tmp.Sync(); err != nil {
		fs.discardTemp(tmp)
		return fmt.Errorf("error syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		fs.removeTemp(tmp.Name())
		return fmt.Errorf("error closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.filePath); err != nil {
		fs.removeTemp(tmp.Name())
		return fmt.Errorf("error replacing file: %w", err)
	}

	// старый дескриптор указывает на замененный файл
	if err := fs.file.Close(); err != nil {
		fs.logger.Warn("Error closing replaced file", zap.Error(err))
	}
	fs.file, err = os.OpenFile(fs.filePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		fs.file = nil
		return fmt.Errorf("error reopening file: %w", err)
	}
	return nil
}

func writeRecords(w io.Writer, resources map[resourceKey]models.Resource) error {
	records := make([]models.Resource, 0, len(resources))
	for _, resource := range resources {
		records = append(records, resource)
	}
	sortByID(records)

	for _, resource := range records {
		data, err := json.Marshal(recordOf(resource))
		if err != nil {
			return fmt.Errorf("error marshaling record: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("error writing record: %w", err)
		}
	}
	return nil
}

func (fs *FileStorage) discardTemp(tmp *os.File) {
	if err := tmp.Close(); err != nil {
		fs.logger.Warn("Error closing temp file", zap.Error(err))
	}
	fs.removeTemp(tmp.Name())
}

func (fs *FileStorage) removeTemp(name string) {
	if err := os.Remove(name); err != nil {
		fs.logger.Warn("Error removing temp file", zap.String("path", name), zap.Error(err))
	}
}

// CheckConnection проверяет, что файл открыт
func (fs *FileStorage) CheckConnection(ctx context.Context) error {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()

	if fs.file == nil {
		return errFileClosed
	}
	return nil
}

// Close синхронизирует и закрывает файл
func (fs *FileStorage) Close() error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if fs.file != nil {
		if err := fs.file.Sync(); err != nil {
			fs.logger.Error("Error syncing file before close", zap.Error(err))
		}
		if err := fs.file.Close(); err != nil {
			return fmt.Errorf("error closing file: %w", err)
		}
		fs.file = nil
	}
	return nil
}
