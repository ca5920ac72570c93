// Package service реализует API ресурсов пользователя поверх хранилища:
// проверку коллекций, выдачу идентификаторов и семантику PATCH/PUT.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/config"
	"github.com/InQaaaaGit/graph_batch.git/internal/models"
	"github.com/InQaaaaGit/graph_batch.git/internal/storage"
)

// поле документа, отдаваемое через /$value
const contentField = "content"

// коллекции, доступные под /me
var collections = map[string]bool{
	"contacts": true,
	"events":   true,
	"messages": true,
}

var resourceIDPattern = regexp.MustCompile(`^[A-Za-z0-9._~-]{1,128}$`)

var (
	// ErrUnknownCollection возвращается для коллекций вне contacts, events, messages
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrInvalidResourceID возвращается для id недопустимого вида или типа
	ErrInvalidResourceID = errors.New("invalid resource id")
	// ErrNoContent возвращается, когда у ресурса нет поля content
	ErrNoContent = errors.New("resource has no content")
)

// ResourceService определяет операции над ресурсами пользователя
type ResourceService interface {
	Profile(userID string) models.Profile
	List(ctx context.Context, userID, collection string) ([]models.Resource, error)
	Create(ctx context.Context, userID, collection string, fields map[string]any) (models.Resource, error)
	Get(ctx context.Context, userID, collection, id string) (models.Resource, error)
	Merge(ctx context.Context, userID, collection, id string, fields map[string]any) (models.Resource, error)
	Replace(ctx context.Context, userID, collection, id string, fields map[string]any) (models.Resource, error)
	Delete(ctx context.Context, userID, collection, id string) error
	Content(ctx context.Context, userID, collection, id string) (string, error)
	CheckConnection(ctx context.Context) error
}

// ResourceServiceImpl реализует ResourceService
type ResourceServiceImpl struct {
	storage storage.Storage
	logger  *zap.Logger
}

// NewResourceService создает сервис с хранилищем, выбранным по конфигурации
func NewResourceService(cfg *config.Config, logger *zap.Logger) (*ResourceServiceImpl, error) {
	s, err := storage.NewStorage(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating storage: %w", err)
	}
	return NewResourceServiceWithStorage(s, logger), nil
}

// NewResourceServiceWithStorage создает сервис поверх готового хранилища
func NewResourceServiceWithStorage(s storage.Storage, logger *zap.Logger) *ResourceServiceImpl {
	return &ResourceServiceImpl{
		storage: s,
		logger:  logger,
	}
}

// Profile возвращает описание текущего пользователя
func (s *ResourceServiceImpl) Profile(userID string) models.Profile {
	return models.Profile{ID: userID, UserPrincipalName: userID}
}

// List возвращает ресурсы коллекции
func (s *ResourceServiceImpl) List(ctx context.Context, userID, collection string) ([]models.Resource, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	return s.storage.List(ctx, userID, collection)
}

// Create создает ресурс. Поле id из тела используется как идентификатор,
// иначе генерируется UUID.
func (s *ResourceServiceImpl) Create(ctx context.Context, userID, collection string, fields map[string]any) (models.Resource, error) {
	if err := checkCollection(collection); err != nil {
		return models.Resource{}, err
	}

	fields = cloneFields(fields)
	id := uuid.New().String()
	if raw, ok := rawID(fields); ok {
		clientID, ok := raw.(string)
		if !ok || !resourceIDPattern.MatchString(clientID) {
			return models.Resource{}, ErrInvalidResourceID
		}
		id = clientID
	}
	delete(fields, "id")

	resource := models.Resource{ID: id, Owner: userID, Collection: collection, Fields: fields}
	if err := s.storage.Create(ctx, resource); err != nil {
		return models.Resource{}, err
	}

	s.logger.Debug("Resource created",
		zap.String("user_id", userID),
		zap.String("collection", collection),
		zap.String("id", id))
	return resource, nil
}

// Get получает ресурс
func (s *ResourceServiceImpl) Get(ctx context.Context, userID, collection, id string) (models.Resource, error) {
	if err := checkCollection(collection); err != nil {
		return models.Resource{}, err
	}
	return s.storage.Get(ctx, userID, collection, id)
}

// Merge применяет частичное обновление: null удаляет поле, остальные значения заменяются
func (s *ResourceServiceImpl) Merge(ctx context.Context, userID, collection, id string, fields map[string]any) (models.Resource, error) {
	resource, err := s.Get(ctx, userID, collection, id)
	if err != nil {
		return models.Resource{}, err
	}
	if err := checkBodyID(fields, id); err != nil {
		return models.Resource{}, err
	}

	for k, v := range fields {
		if k == "id" {
			continue
		}
		if v == nil {
			delete(resource.Fields, k)
			continue
		}
		resource.Fields[k] = v
	}

	if err := s.storage.Update(ctx, resource); err != nil {
		return models.Resource{}, err
	}
	return resource, nil
}

// Replace заменяет все поля ресурса
func (s *ResourceServiceImpl) Replace(ctx context.Context, userID, collection, id string, fields map[string]any) (models.Resource, error) {
	if err := checkCollection(collection); err != nil {
		return models.Resource{}, err
	}
	if err := checkBodyID(fields, id); err != nil {
		return models.Resource{}, err
	}

	fields = cloneFields(fields)
	delete(fields, "id")
	resource := models.Resource{ID: id, Owner: userID, Collection: collection, Fields: fields}
	if err := s.storage.Update(ctx, resource); err != nil {
		return models.Resource{}, err
	}
	return resource, nil
}

// Delete удаляет ресурс
func (s *ResourceServiceImpl) Delete(ctx context.Context, userID, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	return s.storage.Delete(ctx, userID, collection, id)
}

// Content возвращает поле content ресурса в текстовом виде
func (s *ResourceServiceImpl) Content(ctx context.Context, userID, collection, id string) (string, error) {
	resource, err := s.Get(ctx, userID, collection, id)
	if err != nil {
		return "", err
	}

	value, ok := resource.Fields[contentField]
	if !ok || value == nil {
		return "", ErrNoContent
	}
	if text, ok := value.(string); ok {
		return text, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("error encoding content: %w", err)
	}
	return string(data), nil
}

// CheckConnection проверяет хранилище
func (s *ResourceServiceImpl) CheckConnection(ctx context.Context) error {
	return s.storage.CheckConnection(ctx)
}

// Close закрывает хранилище
func (s *ResourceServiceImpl) Close() error {
	return s.storage.Close()
}

func checkCollection(collection string) error {
	if !collections[collection] {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return nil
}

// checkBodyID запрещает менять id через тело запроса
func checkBodyID(fields map[string]any, id string) error {
	raw, ok := rawID(fields)
	if !ok {
		return nil
	}
	if bodyID, isString := raw.(string); !isString || bodyID != id {
		return ErrInvalidResourceID
	}
	return nil
}

func rawID(fields map[string]any) (any, bool) {
	raw, ok := fields["id"]
	return raw, ok
}

// cloneFields копирует поля, чтобы не менять карту вызывающей стороны
func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
