package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// chunkFilePattern matches the numbered chunk files of a collection
// directory. Anything else in the directory is ignored.
var chunkFilePattern = regexp.MustCompile(`^(\d+)\.json$`)

const chunkIndent = "    "

// ChunkStore is the persistence surface a Collection works against.
type ChunkStore interface {
	ChunkIndexes() []int
	LoadChunk(index int) (bson.D, error)
	SaveChunk(index int, chunk bson.D) error
	AppendDocument(id string, doc bson.D) error
	EnsureDirectory() error
}

// ChunkStorageEngine stores one collection as a directory of numbered
// JSON files. Each file is a top-level object keyed by document ID, with
// at most TuplesLimit entries in every chunk except the highest-numbered
// one. The engine keeps no cache; the directory is the source of truth.
type ChunkStorageEngine struct {
	Directory   string
	TuplesLimit int
	logger      *zap.SugaredLogger
}

func NewChunkStore(directory string, tuplesLimit int, logger *zap.SugaredLogger) (*ChunkStorageEngine, error) {
	if tuplesLimit < 1 {
		return nil, fmt.Errorf("tuples limit must be positive, got %d", tuplesLimit)
	}
	return &ChunkStorageEngine{
		Directory:   directory,
		TuplesLimit: tuplesLimit,
		logger:      logger,
	}, nil
}

// EnsureDirectory materializes the collection directory with an empty
// first chunk. Existing directories are left untouched.
func (e *ChunkStorageEngine) EnsureDirectory() error {
	if _, err := os.Stat(e.Directory); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error accessing collection directory %s: %w", e.Directory, err)
	}

	if err := os.MkdirAll(e.Directory, 0755); err != nil {
		return fmt.Errorf("failed to create collection directory %s: %w", e.Directory, err)
	}
	first := e.chunkPath(1)
	if err := os.WriteFile(first, []byte("{}"), 0644); err != nil {
		return fmt.Errorf("failed to initialize %s: %w", first, err)
	}
	return nil
}

func (e *ChunkStorageEngine) chunkPath(index int) string {
	return filepath.Join(e.Directory, strconv.Itoa(index)+".json")
}

// ChunkIndexes lists the chunk numbers present on disk in ascending
// order. A missing or empty directory reads as a single chunk 1; the
// directory is not created here.
func (e *ChunkStorageEngine) ChunkIndexes() []int {
	entries, err := os.ReadDir(e.Directory)
	if err != nil {
		return []int{1}
	}

	var indexes []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := chunkFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			e.logger.Warnf("Ignoring non-chunk file %s in %s", entry.Name(), e.Directory)
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			e.logger.Warnf("Ignoring chunk file with unusable index %s", entry.Name())
			continue
		}
		indexes = append(indexes, n)
	}

	if len(indexes) == 0 {
		return []int{1}
	}
	sort.Ints(indexes)
	return indexes
}

// LoadChunk reads one chunk file into an ordered id -> document map.
// Missing and empty files read as an empty chunk. A file that exists but
// does not parse also reads as empty, with the parse failure returned so
// write paths can refuse to clobber it.
func (e *ChunkStorageEngine) LoadChunk(index int) (bson.D, error) {
	path := e.chunkPath(index)

	data, err := e.readChunkFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return bson.D{}, nil
		}
		return bson.D{}, fmt.Errorf("error reading chunk file %s: %w", path, err)
	}
	if len(data) == 0 {
		return bson.D{}, nil
	}

	var chunk bson.D
	if err := bson.UnmarshalExtJSON(data, false, &chunk); err != nil {
		e.logger.Warnf("Couldn't read chunk data from %s, treating as empty: %v", path, err)
		return bson.D{}, fmt.Errorf("%w: %s: %v", ErrChunkParse, path, err)
	}
	return chunk, nil
}

// readChunkFile memory-maps the chunk for the duration of the read and
// hands back a private copy of the bytes. Empty files yield no bytes
// without being mapped; files that cannot be mapped fall back to a plain
// read.
func (e *ChunkStorageEngine) readChunkFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	size := int(stat.Size())
	if size == 0 {
		return nil, nil
	}

	mapped, err := unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return os.ReadFile(path)
	}
	defer unix.Munmap(mapped)

	data := make([]byte, size)
	copy(data, mapped)
	return data, nil
}

// SaveChunk writes the chunk as pretty-printed JSON, replacing the file
// contents. The file is closed before returning; no fsync is attempted.
func (e *ChunkStorageEngine) SaveChunk(index int, chunk bson.D) error {
	data, err := bson.MarshalExtJSONIndent(chunk, false, false, "", chunkIndent)
	if err != nil {
		return fmt.Errorf("error encoding chunk %d: %w", index, err)
	}
	path := e.chunkPath(index)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing chunk file %s: %w", path, err)
	}
	return nil
}

// AppendDocument places a document into the tail chunk, rolling over to a
// fresh chunk when the tail is full. A tail that exists but cannot be
// parsed aborts the append rather than overwriting it.
func (e *ChunkStorageEngine) AppendDocument(id string, doc bson.D) error {
	indexes := e.ChunkIndexes()
	tail := indexes[len(indexes)-1]

	chunk, err := e.LoadChunk(tail)
	if err != nil {
		return fmt.Errorf("refusing to append to chunk %d: %w", tail, err)
	}

	if len(chunk) >= e.TuplesLimit {
		tail++
		chunk = bson.D{}
	}

	chunk = append(chunk, bson.E{Key: id, Value: doc})
	return e.SaveChunk(tail, chunk)
}
