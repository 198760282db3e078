package engine

import (
	"go.mongodb.org/mongo-driver/bson"
)

const responseIndent = "    "

// CommandResponse is the envelope every executed command renders to. The
// result payload is whatever the operation produced: a document, a list
// of documents, or a summary message such as "Updated 2 document(s)".
type CommandResponse struct {
	ResultCount int         `bson:"result_count"`
	Result      interface{} `bson:"result"`
}

// Render encodes the response as indented relaxed JSON for the console
// and wire surfaces.
func (r CommandResponse) Render() (string, error) {
	data, err := bson.MarshalExtJSONIndent(r, false, false, "", responseIndent)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
