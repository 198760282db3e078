package directors

import (
	"fmt"

	"chunkdb/src/engine"

	"go.uber.org/zap"
)

// DocumentService runs the document methods of the command surface
// against a collection and shapes the results into command responses.
type DocumentService struct {
	logger *zap.SugaredLogger
}

func NewDocumentService(logger *zap.SugaredLogger) *DocumentService {
	return &DocumentService{logger: logger}
}

// Execute dispatches one parsed command to the collection operation it
// names. Unrecognized methods fail with ErrUnknownMethod.
func (s *DocumentService) Execute(coll *engine.Collection, cmd *Command) (*engine.CommandResponse, error) {
	switch cmd.Method {
	case "find":
		query, err := cmd.DocumentArg(0)
		if err != nil {
			return nil, err
		}
		docs, err := coll.Find(query, cmd.ProjectionArg())
		if err != nil {
			return nil, err
		}
		return &engine.CommandResponse{ResultCount: len(docs), Result: docs}, nil

	case "find_one":
		query, err := cmd.DocumentArg(0)
		if err != nil {
			return nil, err
		}
		doc, err := coll.FindOne(query, cmd.ProjectionArg())
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return &engine.CommandResponse{ResultCount: 0, Result: nil}, nil
		}
		return &engine.CommandResponse{ResultCount: 1, Result: doc}, nil

	case "insert", "insert_one":
		if len(cmd.Args) == 0 {
			return nil, fmt.Errorf("%s: %w: expected a document", cmd.Method, engine.ErrArgumentShape)
		}
		doc, err := coll.InsertOne(cmd.Args[0])
		if err != nil {
			return nil, err
		}
		return &engine.CommandResponse{ResultCount: 1, Result: doc}, nil

	case "insert_many":
		if len(cmd.Args) == 0 {
			return nil, fmt.Errorf("insert_many: %w: expected an array of documents", engine.ErrArgumentShape)
		}
		docs, err := coll.InsertMany(cmd.Args[0])
		if err != nil {
			s.logger.Warnw("insert_many finished with errors", "collection", coll.Name, "error", err)
		}
		if len(docs) == 0 && err != nil {
			return nil, err
		}
		return &engine.CommandResponse{ResultCount: len(docs), Result: docs}, nil

	case "update":
		return s.update(coll, cmd, cmd.MultiArg(false))
	case "update_one":
		return s.update(coll, cmd, false)
	case "update_many":
		return s.update(coll, cmd, true)

	case "delete", "remove":
		return s.remove(coll, cmd, cmd.MultiArg(false))
	case "delete_one":
		return s.remove(coll, cmd, false)
	case "delete_many":
		return s.remove(coll, cmd, true)

	default:
		return nil, fmt.Errorf("%w: %s", engine.ErrUnknownMethod, cmd.Method)
	}
}

func (s *DocumentService) update(coll *engine.Collection, cmd *Command, multi bool) (*engine.CommandResponse, error) {
	query, err := cmd.DocumentArg(0)
	if err != nil {
		return nil, err
	}
	ops, err := cmd.DocumentArg(1)
	if err != nil {
		return nil, err
	}

	updated, err := coll.Update(query, ops, multi)
	if err != nil {
		s.logger.Warnw("Update finished with errors", "collection", coll.Name, "error", err)
	}
	if updated == 0 && err != nil {
		return nil, err
	}
	return &engine.CommandResponse{ResultCount: updated, Result: fmt.Sprintf("Updated %d document(s)", updated)}, nil
}

func (s *DocumentService) remove(coll *engine.Collection, cmd *Command, multi bool) (*engine.CommandResponse, error) {
	query, err := cmd.DocumentArg(0)
	if err != nil {
		return nil, err
	}

	removed, err := coll.Remove(query, multi)
	if err != nil {
		s.logger.Warnw("Remove finished with errors", "collection", coll.Name, "error", err)
	}
	if removed == 0 && err != nil {
		return nil, err
	}
	return &engine.CommandResponse{ResultCount: removed, Result: fmt.Sprintf("Removed %d document(s)", removed)}, nil
}
