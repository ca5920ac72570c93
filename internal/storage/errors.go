package storage

import "errors"

// ErrResourceNotFound возвращается, когда ресурс не найден в хранилище
var ErrResourceNotFound = errors.New("resource not found")

// ErrResourceConflict возвращается, когда ресурс с таким id уже существует
var ErrResourceConflict = errors.New("resource already exists")
