package batch

import (
	"github.com/goccy/go-json"

	"github.com/InQaaaaGit/graph_batch.git/internal/models"
)

// Assemble сериализует элементы ответа в порядке выполнения
// в JSON-массив с отступами
func Assemble(items []models.BatchResponseItem) ([]byte, error) {
	if items == nil {
		items = []models.BatchResponseItem{}
	}
	return json.MarshalIndent(items, "", "  ")
}
