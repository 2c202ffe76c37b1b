package middleware

import "github.com/fermata-io/purgatory/pkg/ports"

// Middleware allows wrapping a Backend to add behavior.
type Middleware func(ports.Backend) ports.Backend
