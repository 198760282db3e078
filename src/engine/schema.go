package engine

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Schema describes the expected shape of documents in one collection.
// Each entry maps a field name to either a type tag ("int", "str",
// "string", "timestamp") or a nested Schema for embedded documents.
//
// The schema is open: fields absent from it are permitted, and fields it
// lists are optional. Listed fields must match their type when present.
type Schema map[string]interface{}

// schemaNode normalizes the decoded forms a nested schema can arrive in.
func schemaNode(v interface{}) (Schema, bool) {
	switch t := v.(type) {
	case Schema:
		return t, true
	case map[string]interface{}:
		return Schema(t), true
	case bson.D:
		nested := make(Schema, len(t))
		for _, elem := range t {
			nested[elem.Key] = elem.Value
		}
		return nested, true
	}
	return nil, false
}

// FieldType returns the type tag for a top-level field, or "" when the
// field is untyped or described by a nested schema.
func (s Schema) FieldType(field string) string {
	if tag, ok := s[field].(string); ok {
		return tag
	}
	return ""
}

// ValidateDocument checks doc against the schema. Only fields present in
// both the document and the schema are examined.
func ValidateDocument(doc bson.D, schema Schema) bool {
	for key, node := range schema {
		value, ok := DocGet(doc, key)
		if !ok {
			continue
		}

		if nested, isNested := schemaNode(node); isNested {
			sub, isDoc := AsDocument(value)
			if !isDoc {
				return false
			}
			if !ValidateDocument(sub, nested) {
				return false
			}
			continue
		}

		tag, isTag := node.(string)
		if !isTag {
			continue
		}
		switch tag {
		case "int":
			if _, isInt := asInt(value); !isInt {
				return false
			}
		case "str", "string":
			if _, isStr := value.(string); !isStr {
				return false
			}
		case "timestamp":
			str, isStr := value.(string)
			if !isStr || !IsValidTimestamp(str) {
				return false
			}
		}
	}
	return true
}
