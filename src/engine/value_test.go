package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDocSetPreservesOrder(t *testing.T) {
	doc := bson.D{{Key: "a", Value: 1}, {Key: "b", Value: 2}}

	doc = DocSet(doc, "a", 10)
	doc = DocSet(doc, "c", 3)

	assert.Equal(t, bson.D{{Key: "a", Value: 10}, {Key: "b", Value: 2}, {Key: "c", Value: 3}}, doc)
}

func TestDocDelete(t *testing.T) {
	doc := bson.D{{Key: "a", Value: 1}, {Key: "b", Value: 2}, {Key: "c", Value: 3}}

	doc = DocDelete(doc, "b")
	assert.Equal(t, bson.D{{Key: "a", Value: 1}, {Key: "c", Value: 3}}, doc)

	doc = DocDelete(doc, "missing")
	assert.Len(t, doc, 2)
}

func TestCloneDocumentIsDeep(t *testing.T) {
	doc := bson.D{
		{Key: "nested", Value: bson.D{{Key: "x", Value: 1}}},
		{Key: "list", Value: bson.A{1, 2}},
	}

	clone := CloneDocument(doc)
	nested, _ := DocGet(clone, "nested")
	DocSet(nested.(bson.D), "x", 99)
	list, _ := DocGet(clone, "list")
	list.(bson.A)[0] = 99

	original, _ := DocGet(doc, "nested")
	x, _ := DocGet(original.(bson.D), "x")
	assert.Equal(t, 1, x)
	originalList, _ := DocGet(doc, "list")
	assert.Equal(t, 1, originalList.(bson.A)[0])
}

func TestValueEqualAcrossNumericKinds(t *testing.T) {
	assert.True(t, ValueEqual(int32(5), int64(5)))
	assert.True(t, ValueEqual(5, 5.0))
	assert.False(t, ValueEqual(5, 6))
	assert.False(t, ValueEqual(5, "5"))
	assert.False(t, ValueEqual(0, false))
	assert.True(t, ValueEqual(nil, nil))
}

func TestValueEqualStructural(t *testing.T) {
	a := bson.D{{Key: "x", Value: 1}, {Key: "y", Value: bson.A{1, "two"}}}
	b := bson.D{{Key: "x", Value: int64(1)}, {Key: "y", Value: bson.A{1.0, "two"}}}
	assert.True(t, ValueEqual(a, b))

	// Key order is significant.
	c := bson.D{{Key: "y", Value: bson.A{1, "two"}}, {Key: "x", Value: 1}}
	assert.False(t, ValueEqual(a, c))
}

func TestCompareValuesWithinKind(t *testing.T) {
	assert.Negative(t, CompareValues(1, 2))
	assert.Positive(t, CompareValues(2.5, 2))
	assert.Zero(t, CompareValues(int32(7), 7.0))
	assert.Negative(t, CompareValues("abc", "abd"))
	assert.Negative(t, CompareValues(bson.A{1, 2}, bson.A{1, 3}))
	assert.Negative(t, CompareValues(bson.A{1}, bson.A{1, 0}))
}

func TestCompareValuesAcrossKinds(t *testing.T) {
	// null < bool < number < object < array < string
	assert.Negative(t, CompareValues(nil, false))
	assert.Negative(t, CompareValues(true, 0))
	assert.Negative(t, CompareValues(1, bson.D{}))
	assert.Negative(t, CompareValues(bson.D{}, bson.A{}))
	assert.Negative(t, CompareValues(bson.A{}, ""))
}
