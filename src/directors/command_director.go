package directors

import (
	"strings"

	"chunkdb/src/engine"

	"go.uber.org/zap"
)

// CommandDirector routes one console line through the parser and the
// services and hands back the response. Trailing semicolons are
// tolerated.
func CommandDirector(serviceManager *ServiceManager, command string, logger *zap.SugaredLogger) (*engine.CommandResponse, error) {
	command = strings.TrimSpace(command)
	command = strings.TrimSuffix(command, ";")

	cmd, err := ParseCommand(command)
	if err != nil {
		return nil, err
	}

	coll, err := serviceManager.DatabaseService.GetCollection(cmd.Database, cmd.Collection)
	if err != nil {
		return nil, err
	}

	logger.Debugw("Dispatching command",
		"database", cmd.Database,
		"collection", cmd.Collection,
		"method", cmd.Method,
		"args", len(cmd.Args))

	return serviceManager.DocumentService.Execute(coll, cmd)
}
