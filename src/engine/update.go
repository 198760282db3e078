package engine

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ApplyUpdate applies the update operators to a document copy and returns
// the new document. Operators run in a fixed order: $set, $inc, $push.
// A failing operator is skipped and reported; the remaining operators
// still run. The _id field is immutable: operators naming it are skipped
// with a logged warning and no error.
func ApplyUpdate(doc bson.D, ops bson.D, schema Schema, logger *zap.SugaredLogger) (bson.D, bool, error) {
	updated := CloneDocument(doc)
	changed := false
	var errs error

	if fields, ok := DocGet(ops, "$set"); ok {
		set, isDoc := AsDocument(fields)
		if !isDoc {
			errs = multierr.Append(errs, fmt.Errorf("$set: %w: expected a document", ErrArgumentShape))
		} else {
			for _, elem := range set {
				if elem.Key == "_id" {
					logger.Warnw("Skipping field", "operator", "$set", "error", ErrImmutableID)
					continue
				}
				updated = DocSet(updated, elem.Key, CloneValue(elem.Value))
				changed = true
			}
		}
	}

	if fields, ok := DocGet(ops, "$inc"); ok {
		inc, isDoc := AsDocument(fields)
		if !isDoc {
			errs = multierr.Append(errs, fmt.Errorf("$inc: %w: expected a document", ErrArgumentShape))
		} else {
			for _, elem := range inc {
				if elem.Key == "_id" {
					logger.Warnw("Skipping field", "operator", "$inc", "error", ErrImmutableID)
					continue
				}
				next, err := incrementField(updated, elem.Key, elem.Value, schema)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				updated = next
				changed = true
			}
		}
	}

	if fields, ok := DocGet(ops, "$push"); ok {
		push, isDoc := AsDocument(fields)
		if !isDoc {
			errs = multierr.Append(errs, fmt.Errorf("$push: %w: expected a document", ErrArgumentShape))
		} else {
			for _, elem := range push {
				if elem.Key == "_id" {
					logger.Warnw("Skipping field", "operator", "$push", "error", ErrImmutableID)
					continue
				}
				next, err := pushField(updated, elem.Key, elem.Value)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				updated = next
				changed = true
			}
		}
	}

	return updated, changed, errs
}

// incrementField adds a signed delta to a field. Fields the schema types
// as timestamp get second-arithmetic on the stored canonical string; every
// other field must hold an integer. Missing fields are not created.
func incrementField(doc bson.D, key string, delta interface{}, schema Schema) (bson.D, error) {
	n, ok := asInt(delta)
	if !ok {
		return doc, fmt.Errorf("$inc %q: %w: delta must be an integer", key, ErrUpdateTypeMismatch)
	}

	current, exists := DocGet(doc, key)
	if !exists {
		return doc, fmt.Errorf("$inc %q: %w: field is missing", key, ErrUpdateTypeMismatch)
	}

	if schema.FieldType(key) == "timestamp" {
		str, isStr := current.(string)
		if !isStr {
			return doc, fmt.Errorf("$inc %q: %w: timestamp field is not a string", key, ErrUpdateTypeMismatch)
		}
		ts, err := ParseTimestamp(str)
		if err != nil {
			return doc, fmt.Errorf("$inc %q: %w", key, err)
		}
		ts.AddSeconds(int(n))
		return DocSet(doc, key, ts.String()), nil
	}

	base, isInt := asInt(current)
	if !isInt {
		return doc, fmt.Errorf("$inc %q: %w: field is not an integer", key, ErrUpdateTypeMismatch)
	}
	return DocSet(doc, key, base+n), nil
}

// pushField appends a value to an array field, creating the array when the
// field is missing.
func pushField(doc bson.D, key string, value interface{}) (bson.D, error) {
	current, exists := DocGet(doc, key)
	if !exists {
		return DocSet(doc, key, bson.A{CloneValue(value)}), nil
	}
	arr, isArr := AsArray(current)
	if !isArr {
		return doc, fmt.Errorf("$push %q: %w: field is not an array", key, ErrUpdateTypeMismatch)
	}
	return DocSet(doc, key, append(arr, CloneValue(value))), nil
}
