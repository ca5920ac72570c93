package models

// Resource представляет JSON-документ пользователя в одной из коллекций
// (contacts, events, messages). Поля документа не интерпретируются.
type Resource struct {
	ID         string
	Owner      string
	Collection string
	Fields     map[string]any
}

// Document возвращает представление ресурса для ответа API
func (r Resource) Document() map[string]any {
	doc := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		doc[k] = v
	}
	doc["id"] = r.ID
	return doc
}

// ResourceList повторяет формат коллекции Microsoft Graph
type ResourceList struct {
	Value []map[string]any `json:"value"`
}
