package engine

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// MatchDocument evaluates a query object against a document. A query is a
// conjunction of field clauses; $and and $or are recognized at the root of
// the query object only. The empty query matches everything.
//
// Matching is pure: neither the document nor the query is mutated.
func MatchDocument(doc bson.D, query bson.D) bool {
	if len(query) == 0 {
		return true
	}

	if sub, ok := DocGet(query, "$and"); ok {
		arr, isArr := AsArray(sub)
		if !isArr {
			return false
		}
		for _, item := range arr {
			subQuery, isDoc := AsDocument(item)
			if !isDoc || !MatchDocument(doc, subQuery) {
				return false
			}
		}
	}
	if sub, ok := DocGet(query, "$or"); ok {
		arr, isArr := AsArray(sub)
		if !isArr {
			return false
		}
		anyMatch := false
		for _, item := range arr {
			if subQuery, isDoc := AsDocument(item); isDoc && MatchDocument(doc, subQuery) {
				anyMatch = true
				break
			}
		}
		if !anyMatch {
			return false
		}
	}

	for _, clause := range query {
		if strings.HasPrefix(clause.Key, "$") {
			continue
		}
		value, _ := DocGet(doc, clause.Key) // missing fields read as null
		if !checkCondition(value, clause.Value) {
			return false
		}
	}
	return true
}

// checkCondition evaluates one field condition. A non-object condition is
// a structural equality test. An object without $-keys queries a nested
// document; an object with $-keys is a conjunction of operators.
func checkCondition(value interface{}, condition interface{}) bool {
	cond, isDoc := AsDocument(condition)
	if !isDoc {
		return ValueEqual(value, condition)
	}

	operator := false
	for _, elem := range cond {
		if strings.HasPrefix(elem.Key, "$") {
			operator = true
			break
		}
	}

	if !operator {
		if nested, ok := AsDocument(value); ok {
			return MatchDocument(nested, cond)
		}
		return ValueEqual(value, condition)
	}

	for _, elem := range cond {
		if !applyOperator(value, elem.Key, elem.Value) {
			return false
		}
	}
	return true
}

func applyOperator(value interface{}, op string, arg interface{}) bool {
	switch op {
	case "$eq":
		return ValueEqual(value, arg)
	case "$ne":
		return !ValueEqual(value, arg)
	case "$gt":
		return value != nil && CompareValues(value, arg) > 0
	case "$lt":
		return value != nil && CompareValues(value, arg) < 0
	case "$gte":
		return value != nil && CompareValues(value, arg) >= 0
	case "$lte":
		return value != nil && CompareValues(value, arg) <= 0
	case "$in":
		arr, ok := AsArray(arg)
		if !ok {
			return false
		}
		for _, item := range arr {
			if ValueEqual(item, value) {
				return true
			}
		}
		return false
	case "$not":
		return !checkCondition(value, arg)
	default:
		// Unrecognized operators are accepted as matching.
		return true
	}
}
