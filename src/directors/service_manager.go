package directors

import (
	"go.uber.org/zap"
)

// ServiceManager bundles the services the command surfaces work through.
// One is built during startup and handed to the console or the server;
// there is no process-wide instance.
type ServiceManager struct {
	DatabaseService *DatabaseService
	DocumentService *DocumentService
	logger          *zap.SugaredLogger
}

func NewServiceManager(databaseService *DatabaseService, documentService *DocumentService, logger *zap.SugaredLogger) *ServiceManager {
	return &ServiceManager{
		DatabaseService: databaseService,
		DocumentService: documentService,
		logger:          logger,
	}
}
