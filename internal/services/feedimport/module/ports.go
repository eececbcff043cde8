package module

import (
	dom "merchantfeed/internal/services/feedimport/domain"
	"merchantfeed/internal/services/feedimport/service"
)

// Ports holds the ports exposed by the feed import module
type Ports struct {
	Worker   dom.WorkerPort
	Enqueuer dom.EnqueuePort
	Importer dom.ImporterPort
	Service  service.Service
}
