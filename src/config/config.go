package config

import (
	"fmt"
	"os"
	"path/filepath"

	"chunkdb/src/engine"
	"chunkdb/src/helpers"

	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Config is the parsed schema configuration file. Name doubles as the
// database directory; Structure maps collection names to their schema
// subtrees.
type Config struct {
	Name        string
	TuplesLimit int
	Structure   map[string]engine.Schema
}

// defaultConfig is written verbatim when no configuration file exists.
const defaultConfig = `{
    "name": "MyDatabase",
    "tuples_limit": 5,
    "structure": {
        "users": {
            "name": "str",
            "age": "int",
            "status": "str",
            "score": "int",
            "hunted": "timestamp"
        },
        "products": {
            "name": "str",
            "specs": {
                "cpu": "str",
                "ram": "int",
                "screen": {
                    "size": "int",
                    "type": "str"
                }
            }
        }
    }
}
`

// Load reads the configuration file, writing the default one first when
// the file does not exist. Scalar options go through viper; the structure
// subtree is decoded separately because viper folds keys to lower case
// and collection schemas are case sensitive.
func Load(path string, logger *zap.SugaredLogger) (*Config, error) {
	if !helpers.FileExists(path, logger) {
		logger.Infof("Config file %s not found, writing default configuration", path)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("could not create config directory: %w", err)
			}
		}
		if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
			return nil, fmt.Errorf("could not write default config %s: %w", path, err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("tuples_limit", 5)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}

	cfg := &Config{
		Name:        v.GetString("name"),
		TuplesLimit: v.GetInt("tuples_limit"),
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("config %s: database name must not be empty", path)
	}
	if cfg.TuplesLimit < 1 {
		return nil, fmt.Errorf("config %s: tuples_limit must be positive, got %d", path, cfg.TuplesLimit)
	}

	structure, err := loadStructure(path)
	if err != nil {
		return nil, err
	}
	cfg.Structure = structure

	return cfg, nil
}

// loadStructure re-parses the raw file for the structure subtree with an
// order- and case-preserving decoder.
func loadStructure(path string) (map[string]engine.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}

	var root bson.D
	if err := bson.UnmarshalExtJSON(data, false, &root); err != nil {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}

	structure := make(map[string]engine.Schema)
	raw, ok := engine.DocGet(root, "structure")
	if !ok {
		return structure, nil
	}
	collections, isDoc := engine.AsDocument(raw)
	if !isDoc {
		return nil, fmt.Errorf("config %s: structure must be an object", path)
	}

	for _, elem := range collections {
		schema, err := schemaFromValue(elem.Value)
		if err != nil {
			return nil, fmt.Errorf("config %s: collection %s: %w", path, elem.Key, err)
		}
		structure[elem.Key] = schema
	}
	return structure, nil
}

func schemaFromValue(v interface{}) (engine.Schema, error) {
	doc, isDoc := engine.AsDocument(v)
	if !isDoc {
		return nil, fmt.Errorf("schema subtree must be an object")
	}

	schema := make(engine.Schema, len(doc))
	for _, elem := range doc {
		switch t := elem.Value.(type) {
		case string:
			schema[elem.Key] = t
		default:
			nested, err := schemaFromValue(elem.Value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", elem.Key, err)
			}
			schema[elem.Key] = nested
		}
	}
	return schema, nil
}
