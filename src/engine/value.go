package engine

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Documents are bson.D values so that key order survives the trip through
// the chunk files. Nested objects decode as bson.D, arrays as bson.A.

// DocGet returns the value stored under key, or (nil, false) if the key
// is not present.
func DocGet(doc bson.D, key string) (interface{}, bool) {
	for _, elem := range doc {
		if elem.Key == key {
			return elem.Value, true
		}
	}
	return nil, false
}

// DocHas reports whether the document contains the given key.
func DocHas(doc bson.D, key string) bool {
	_, ok := DocGet(doc, key)
	return ok
}

// DocSet overwrites the value under key, or appends the key at the end
// when it is not present yet.
func DocSet(doc bson.D, key string, value interface{}) bson.D {
	for i, elem := range doc {
		if elem.Key == key {
			doc[i].Value = value
			return doc
		}
	}
	return append(doc, bson.E{Key: key, Value: value})
}

// DocDelete removes the key from the document if present.
func DocDelete(doc bson.D, key string) bson.D {
	for i, elem := range doc {
		if elem.Key == key {
			return append(doc[:i], doc[i+1:]...)
		}
	}
	return doc
}

// CloneValue makes a deep copy of a document value.
func CloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.D:
		out := make(bson.D, 0, len(t))
		for _, elem := range t {
			out = append(out, bson.E{Key: elem.Key, Value: CloneValue(elem.Value)})
		}
		return out
	case bson.A:
		out := make(bson.A, 0, len(t))
		for _, item := range t {
			out = append(out, CloneValue(item))
		}
		return out
	default:
		return v
	}
}

// CloneDocument is CloneValue specialized to documents.
func CloneDocument(doc bson.D) bson.D {
	return CloneValue(doc).(bson.D)
}

// Kind ranks used by CompareValues. The ordering over kinds follows the
// structural order of the value model: null < bool < number < object <
// array < string.
const (
	kindNull = iota
	kindBool
	kindNumber
	kindObject
	kindArray
	kindString
	kindOther
)

func valueKind(v interface{}) int {
	switch v.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBool
	case int, int32, int64, float64:
		return kindNumber
	case bson.D:
		return kindObject
	case bson.A:
		return kindArray
	case string:
		return kindString
	default:
		return kindOther
	}
}

// asFloat widens any numeric value to float64.
func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

// asInt narrows an integer value to int64. Floats and bools do not qualify.
func asInt(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}

// ValueEqual reports structural equality. Numbers compare numerically
// across the integer and floating kinds, documents compare key by key in
// order, arrays element by element.
func ValueEqual(a, b interface{}) bool {
	ka, kb := valueKind(a), valueKind(b)
	if ka != kb {
		return false
	}
	switch ka {
	case kindNull:
		return true
	case kindBool:
		return a.(bool) == b.(bool)
	case kindNumber:
		fa, _ := asFloat(a)
		fb, _ := asFloat(b)
		return fa == fb
	case kindString:
		return a.(string) == b.(string)
	case kindArray:
		aa, ba := a.(bson.A), b.(bson.A)
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !ValueEqual(aa[i], ba[i]) {
				return false
			}
		}
		return true
	case kindObject:
		da, db := a.(bson.D), b.(bson.D)
		if len(da) != len(db) {
			return false
		}
		for i := range da {
			if da[i].Key != db[i].Key || !ValueEqual(da[i].Value, db[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// CompareValues imposes a total order consistent with ValueEqual: numbers
// numerically, strings lexicographically, arrays and documents element by
// element, values of different kinds by kind rank.
func CompareValues(a, b interface{}) int {
	ka, kb := valueKind(a), valueKind(b)
	if ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	switch ka {
	case kindNull:
		return 0
	case kindBool:
		ba, bb := a.(bool), b.(bool)
		if ba == bb {
			return 0
		}
		if !ba {
			return -1
		}
		return 1
	case kindNumber:
		fa, _ := asFloat(a)
		fb, _ := asFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case kindString:
		sa, sb := a.(string), b.(string)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	case kindArray:
		aa, ba := a.(bson.A), b.(bson.A)
		for i := 0; i < len(aa) && i < len(ba); i++ {
			if c := CompareValues(aa[i], ba[i]); c != 0 {
				return c
			}
		}
		return len(aa) - len(ba)
	case kindObject:
		da, db := a.(bson.D), b.(bson.D)
		for i := 0; i < len(da) && i < len(db); i++ {
			if da[i].Key != db[i].Key {
				if da[i].Key < db[i].Key {
					return -1
				}
				return 1
			}
			if c := CompareValues(da[i].Value, db[i].Value); c != 0 {
				return c
			}
		}
		return len(da) - len(db)
	}
	return 0
}

// AsDocument unwraps a document value.
func AsDocument(v interface{}) (bson.D, bool) {
	d, ok := v.(bson.D)
	return d, ok
}

// AsArray unwraps an array value.
func AsArray(v interface{}) (bson.A, bool) {
	a, ok := v.(bson.A)
	return a, ok
}
