package usecase

import "fmt"

// ErrPersistence indicates an infrastructure/repository failure inside a use case
var ErrPersistence = fmt.Errorf("translation use case persistence error")

// ErrQueue indicates the background queue rejected a dispatch
var ErrQueue = fmt.Errorf("translation use case queue error")
