package engine

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Collection binds a schema to a chunk store and carries the document
// operations. All reads walk the chunks in ascending order, so results
// come back in insertion order.
type Collection struct {
	Name   string
	Schema Schema
	store  ChunkStore
	logger *zap.SugaredLogger
}

func NewCollection(name string, schema Schema, store ChunkStore, logger *zap.SugaredLogger) *Collection {
	return &Collection{
		Name:   name,
		Schema: schema,
		store:  store,
		logger: logger,
	}
}

// Insert validates and stores a single document. A string _id already on
// the document is kept; anything else is replaced with a generated one.
// The stored document is returned with its _id first.
func (c *Collection) Insert(doc bson.D) (bson.D, error) {
	if !ValidateDocument(doc, c.Schema) {
		return nil, fmt.Errorf("collection %s: %w", c.Name, ErrSchemaMismatch)
	}

	stored := CloneDocument(doc)
	var id string
	if raw, has := DocGet(stored, "_id"); has {
		if s, isStr := raw.(string); isStr && s != "" {
			id = s
		} else {
			id = NewDocumentID()
			c.logger.Warnw("Replacing non-string _id", "collection", c.Name)
		}
	} else {
		id = NewDocumentID()
	}
	stored = DocDelete(stored, "_id")
	stored = append(bson.D{{Key: "_id", Value: id}}, stored...)

	if err := c.store.AppendDocument(id, stored); err != nil {
		return nil, fmt.Errorf("collection %s: %w", c.Name, err)
	}
	return stored, nil
}

// InsertOne stores exactly one document. An array argument is rejected.
func (c *Collection) InsertOne(arg interface{}) (bson.D, error) {
	if _, isArr := AsArray(arg); isArr {
		return nil, fmt.Errorf("insert_one: %w: expected a single document", ErrArgumentShape)
	}
	doc, isDoc := AsDocument(arg)
	if !isDoc {
		return nil, fmt.Errorf("insert_one: %w: expected a document", ErrArgumentShape)
	}
	return c.Insert(doc)
}

// InsertMany stores each document of an array, continuing past individual
// failures. The stored documents are returned alongside the aggregate of
// per-document errors.
func (c *Collection) InsertMany(arg interface{}) ([]bson.D, error) {
	arr, isArr := AsArray(arg)
	if !isArr {
		return nil, fmt.Errorf("insert_many: %w: expected an array of documents", ErrArgumentShape)
	}

	var inserted []bson.D
	var errs error
	for i, item := range arr {
		doc, isDoc := AsDocument(item)
		if !isDoc {
			errs = multierr.Append(errs, fmt.Errorf("insert_many: document %d: %w: not a document", i, ErrArgumentShape))
			continue
		}
		stored, err := c.Insert(doc)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("insert_many: document %d: %w", i, err))
			continue
		}
		inserted = append(inserted, stored)
	}
	return inserted, errs
}

// Find returns every matching document in insertion order, shaped by the
// projection. Chunks that fail to parse are skipped.
func (c *Collection) Find(query bson.D, projection interface{}) ([]bson.D, error) {
	var results []bson.D
	for _, index := range c.store.ChunkIndexes() {
		chunk, err := c.store.LoadChunk(index)
		if err != nil {
			c.logger.Warnw("Skipping unreadable chunk", "collection", c.Name, "chunk", index, "error", err)
			continue
		}
		for _, elem := range chunk {
			doc, isDoc := AsDocument(elem.Value)
			if !isDoc {
				continue
			}
			if MatchDocument(doc, query) {
				results = append(results, ApplyProjection(doc, projection))
			}
		}
	}
	return results, nil
}

// FindOne returns the first matching document, or nil when nothing
// matches.
func (c *Collection) FindOne(query bson.D, projection interface{}) (bson.D, error) {
	for _, index := range c.store.ChunkIndexes() {
		chunk, err := c.store.LoadChunk(index)
		if err != nil {
			c.logger.Warnw("Skipping unreadable chunk", "collection", c.Name, "chunk", index, "error", err)
			continue
		}
		for _, elem := range chunk {
			doc, isDoc := AsDocument(elem.Value)
			if !isDoc {
				continue
			}
			if MatchDocument(doc, query) {
				return ApplyProjection(doc, projection), nil
			}
		}
	}
	return nil, nil
}

// Update applies the operators to matching documents and reports how many
// changed. With multi false the scan stops after the first match whether
// or not the operators changed it. Each chunk is rewritten at most once.
func (c *Collection) Update(query bson.D, ops bson.D, multi bool) (int, error) {
	updated := 0
	matched := false
	var errs error

	for _, index := range c.store.ChunkIndexes() {
		chunk, err := c.store.LoadChunk(index)
		if err != nil {
			c.logger.Warnw("Skipping unreadable chunk", "collection", c.Name, "chunk", index, "error", err)
			continue
		}

		dirty := false
		for i, elem := range chunk {
			doc, isDoc := AsDocument(elem.Value)
			if !isDoc || !MatchDocument(doc, query) {
				continue
			}
			matched = true

			next, changed, err := ApplyUpdate(doc, ops, c.Schema, c.logger)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("update %s: %w", elem.Key, err))
			}
			if changed {
				chunk[i].Value = next
				dirty = true
				updated++
			}
			if !multi {
				break
			}
		}

		if dirty {
			if err := c.store.SaveChunk(index, chunk); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if matched && !multi {
			break
		}
	}
	return updated, errs
}

// UpdateOne applies the operators to the first matching document.
func (c *Collection) UpdateOne(query bson.D, ops bson.D) (int, error) {
	return c.Update(query, ops, false)
}

// UpdateMany applies the operators to every matching document.
func (c *Collection) UpdateMany(query bson.D, ops bson.D) (int, error) {
	return c.Update(query, ops, true)
}

// Remove deletes matching documents and reports how many went away. With
// multi false only the first match is deleted. Chunks are not compacted
// or renumbered; later inserts refill the tail chunk.
func (c *Collection) Remove(query bson.D, multi bool) (int, error) {
	removed := 0
	var errs error

	for _, index := range c.store.ChunkIndexes() {
		chunk, err := c.store.LoadChunk(index)
		if err != nil {
			c.logger.Warnw("Skipping unreadable chunk", "collection", c.Name, "chunk", index, "error", err)
			continue
		}

		var keep bson.D
		dirty := false
		for _, elem := range chunk {
			doc, isDoc := AsDocument(elem.Value)
			if isDoc && MatchDocument(doc, query) && (multi || removed == 0) {
				removed++
				dirty = true
				continue
			}
			keep = append(keep, elem)
		}

		if dirty {
			if keep == nil {
				keep = bson.D{}
			}
			if err := c.store.SaveChunk(index, keep); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if removed > 0 && !multi {
			break
		}
	}
	return removed, errs
}

// DeleteOne removes the first matching document.
func (c *Collection) DeleteOne(query bson.D) (int, error) {
	return c.Remove(query, false)
}

// DeleteMany removes every matching document.
func (c *Collection) DeleteMany(query bson.D) (int, error) {
	return c.Remove(query, true)
}

// ApplyProjection shapes a document for output. A nil or empty projection
// returns the full document. An array projection keeps the listed fields
// in the order the projection lists them; an object projection keeps the
// fields whose values are truthy. _id is returned only when the
// projection names it.
func ApplyProjection(doc bson.D, projection interface{}) bson.D {
	if projection == nil {
		return doc
	}

	if arr, isArr := AsArray(projection); isArr {
		if len(arr) == 0 {
			return doc
		}
		out := bson.D{}
		for _, item := range arr {
			field, isStr := item.(string)
			if !isStr {
				continue
			}
			if value, ok := DocGet(doc, field); ok {
				out = append(out, bson.E{Key: field, Value: value})
			}
		}
		return out
	}

	if fields, isDoc := AsDocument(projection); isDoc {
		if len(fields) == 0 {
			return doc
		}
		out := bson.D{}
		for _, elem := range fields {
			if !truthy(elem.Value) {
				continue
			}
			if value, ok := DocGet(doc, elem.Key); ok {
				out = append(out, bson.E{Key: elem.Key, Value: value})
			}
		}
		return out
	}

	return doc
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	case string:
		return t != ""
	default:
		if n, ok := asFloat(v); ok {
			return n != 0
		}
		return true
	}
}
