package modkit

import "merchantfeed/internal/modkit/module"

// Module is the surface API modules implement; it lives in modkit/module to avoid import knots
type Module = module.Module
