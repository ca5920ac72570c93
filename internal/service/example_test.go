package service_test

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/config"
	"github.com/InQaaaaGit/graph_batch.git/internal/service"
)

// ExampleResourceServiceImpl_Create демонстрирует создание контакта с собственным id.
func ExampleResourceServiceImpl_Create() {
	// Без FILE_STORAGE_PATH и DATABASE_DSN используется хранилище в памяти
	svc, err := service.NewResourceService(config.Default(), zap.NewNop())
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	contact, err := svc.Create(context.Background(), "alice", "contacts", map[string]any{
		"id":          "bob",
		"displayName": "Bob",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(contact.ID, contact.Fields["displayName"])

	// Output:
	// bob Bob
}

// ExampleResourceServiceImpl_Merge демонстрирует частичное обновление.
func ExampleResourceServiceImpl_Merge() {
	svc, err := service.NewResourceService(config.Default(), zap.NewNop())
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	ctx := context.Background()
	if _, err := svc.Create(ctx, "alice", "events", map[string]any{"id": "e1", "subject": "Draft", "location": "Room 1"}); err != nil {
		log.Fatal(err)
	}

	// null удаляет поле
	event, err := svc.Merge(ctx, "alice", "events", "e1", map[string]any{"subject": "Review", "location": nil})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(event.Fields["subject"], len(event.Fields))

	// Output:
	// Review 1
}
