package directors

import (
	"fmt"
	"regexp"
	"strings"

	"chunkdb/src/engine"

	"go.mongodb.org/mongo-driver/bson"
)

// commandPattern is the whole console grammar: db.collection.method(args).
var commandPattern = regexp.MustCompile(`^(\w+)\.(\w+)\.(\w+)\((.*)\)$`)

// Command is one parsed console line.
type Command struct {
	Database   string
	Collection string
	Method     string

	// Args holds the positional JSON arguments in order.
	Args []interface{}

	// Projection is the projection= named argument, nil when absent.
	Projection interface{}

	// Multi is the multi= named argument, nil when absent.
	Multi *bool
}

// ParseCommand parses a console line into its command parts. The
// argument list is split on top-level commas only, so JSON objects and
// arrays pass through intact.
func ParseCommand(line string) (*Command, error) {
	line = strings.TrimSpace(line)
	m := commandPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("%w: expected db.collection.method(args)", ErrSyntax)
	}

	cmd := &Command{
		Database:   m[1],
		Collection: m[2],
		Method:     m[3],
	}

	for i, raw := range splitArguments(m[4]) {
		if strings.HasPrefix(raw, "projection=") {
			value, err := decodeJSONValue(strings.TrimPrefix(raw, "projection="))
			if err != nil {
				return nil, fmt.Errorf("projection: %w", err)
			}
			cmd.Projection = value
			continue
		}
		if strings.HasPrefix(raw, "multi=") {
			multi := strings.Contains(raw, "True") || strings.Contains(raw, "true")
			cmd.Multi = &multi
			continue
		}

		value, err := decodeJSONValue(raw)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		cmd.Args = append(cmd.Args, value)
	}

	return cmd, nil
}

// splitArguments cuts the raw argument string on commas that sit outside
// every brace and bracket pair.
func splitArguments(raw string) []string {
	var args []string
	var buffer strings.Builder
	braces, brackets := 0, 0

	flush := func() {
		if arg := strings.TrimSpace(buffer.String()); arg != "" {
			args = append(args, arg)
		}
		buffer.Reset()
	}

	for _, c := range raw {
		switch c {
		case '{':
			braces++
		case '}':
			braces--
		case '[':
			brackets++
		case ']':
			brackets--
		case ',':
			if braces == 0 && brackets == 0 {
				flush()
				continue
			}
		}
		buffer.WriteRune(c)
	}
	flush()

	return args
}

// decodeJSONValue parses one JSON value of any kind. The decoder only
// accepts top-level documents, so the value is wrapped first.
func decodeJSONValue(raw string) (interface{}, error) {
	var wrapper bson.D
	if err := bson.UnmarshalExtJSON([]byte("{\"v\": "+raw+"}"), false, &wrapper); err != nil {
		return nil, fmt.Errorf("invalid JSON %q: %v", raw, err)
	}
	value, _ := engine.DocGet(wrapper, "v")
	return value, nil
}

// DocumentArg reads positional argument i as a document, returning an
// empty document when the argument is absent.
func (c *Command) DocumentArg(i int) (bson.D, error) {
	if i >= len(c.Args) {
		return bson.D{}, nil
	}
	doc, isDoc := engine.AsDocument(c.Args[i])
	if !isDoc {
		return nil, fmt.Errorf("%w: argument %d must be a document", engine.ErrArgumentShape, i+1)
	}
	return doc, nil
}

// ProjectionArg resolves the projection for find-style methods: the
// named argument wins, then the second positional argument.
func (c *Command) ProjectionArg() interface{} {
	if c.Projection != nil {
		return c.Projection
	}
	if len(c.Args) > 1 {
		return c.Args[1]
	}
	return nil
}

// MultiArg resolves the multi flag with the given default.
func (c *Command) MultiArg(fallback bool) bool {
	if c.Multi != nil {
		return *c.Multi
	}
	return fallback
}
