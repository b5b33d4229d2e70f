package main

import (
	handlers "github.com/CodeAndHammer/gamescope/internal/handlers"
)

// server wraps the handler App with the process-level state the root
// middleware needs.
type server struct {
	*handlers.App

	limits *limiterRegistry
}
