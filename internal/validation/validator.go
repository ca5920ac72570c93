// Package validation проверяет тело запроса $batch по схеме пакета
// с помощью go-playground/validator.
//
// Кроме стандартных тегов регистрируются:
//   - batchid: идентификатор подзапроса вида ^[1-9][0-9]*$
//   - jsonobject: необязательное тело подзапроса должно быть JSON-объектом
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/InQaaaaGit/graph_batch.git/internal/models"
)

// ErrInvalidPayload возвращается, если тело пакета не соответствует схеме
var ErrInvalidPayload = errors.New("invalid batch payload")

var batchIDPattern = regexp.MustCompile(`^[1-9][0-9]*$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// ошибки регистрации возможны только при пустом имени тега
		_ = validate.RegisterValidation("batchid", func(fl validator.FieldLevel) bool {
			return batchIDPattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("jsonobject", func(fl validator.FieldLevel) bool {
			raw := fl.Field().Bytes()
			trimmed := strings.TrimSpace(string(raw))
			return strings.HasPrefix(trimmed, "{") && json.Valid(raw)
		})
	})
	return validate
}

// ValidateBatch проверяет пакет: схему каждого подзапроса, ограничение
// на количество подзапросов и префикс API в url.
func ValidateBatch(req *models.BatchRequest, apiPrefix string, maxRequests int) error {
	if err := get().Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, describe(err))
	}

	if maxRequests > 0 && len(req.Requests) > maxRequests {
		return fmt.Errorf("%w: batch contains %d requests, at most %d are allowed",
			ErrInvalidPayload, len(req.Requests), maxRequests)
	}

	prefix := strings.TrimSuffix(apiPrefix, "/") + "/"
	for i, entry := range req.Requests {
		if !strings.HasPrefix(entry.URL, prefix) {
			return fmt.Errorf("%w: requests[%d].url must start with %s", ErrInvalidPayload, i, prefix)
		}
	}

	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	return strings.Join(messages, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	// namespace начинается с имени корневой структуры
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "batchid":
		return fmt.Sprintf("%s must match %s", field, batchIDPattern.String())
	case "jsonobject":
		return field + " must be a JSON object"
	case "unique":
		return field + " must not contain duplicates"
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}
