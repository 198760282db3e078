package directors

import (
	"strings"
	"testing"

	"chunkdb/src/config"
	"chunkdb/src/engine"
	"chunkdb/src/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServiceManager(t *testing.T) *ServiceManager {
	t.Helper()
	logger := zap.NewNop().Sugar()

	cfg := &config.Config{
		Name:        "testdb",
		TuplesLimit: 2,
		Structure: map[string]engine.Schema{
			"users": {"name": "str", "age": "int"},
		},
	}
	args := &settings.Arguments{DataDir: t.TempDir()}

	databaseService, err := NewDatabaseService(cfg, args, logger)
	require.NoError(t, err)

	return NewServiceManager(databaseService, NewDocumentService(logger), logger)
}

func run(t *testing.T, sm *ServiceManager, command string) *engine.CommandResponse {
	t.Helper()
	response, err := CommandDirector(sm, command, zap.NewNop().Sugar())
	require.NoError(t, err, command)
	require.NotNil(t, response)
	return response
}

func TestDirectorInsertAndFind(t *testing.T) {
	sm := newTestServiceManager(t)

	response := run(t, sm, `testdb.users.insert_one({"name": "Ada", "age": 36})`)
	assert.Equal(t, 1, response.ResultCount)

	response = run(t, sm, `testdb.users.find({"name": "Ada"})`)
	assert.Equal(t, 1, response.ResultCount)

	response = run(t, sm, `testdb.users.find_one({"name": "Nobody"})`)
	assert.Equal(t, 0, response.ResultCount)
	assert.Nil(t, response.Result)
}

func TestDirectorInsertMany(t *testing.T) {
	sm := newTestServiceManager(t)

	response := run(t, sm, `testdb.users.insert_many([{"age": 20}, {"age": 30}, {"age": 40}])`)
	assert.Equal(t, 3, response.ResultCount)

	response = run(t, sm, `testdb.users.find({"age": {"$gt": 20, "$lte": 40}})`)
	assert.Equal(t, 2, response.ResultCount)
}

func TestDirectorUpdateAndDelete(t *testing.T) {
	sm := newTestServiceManager(t)

	run(t, sm, `testdb.users.insert_many([{"age": 1}, {"age": 1}])`)

	response := run(t, sm, `testdb.users.update({"age": 1}, {"$inc": {"age": 10}}, multi=True)`)
	assert.Equal(t, 2, response.ResultCount)

	response = run(t, sm, `testdb.users.update_one({"age": 11}, {"$set": {"name": "x"}})`)
	assert.Equal(t, 1, response.ResultCount)

	response = run(t, sm, `testdb.users.delete_many({"age": 11})`)
	assert.Equal(t, 2, response.ResultCount)

	response = run(t, sm, `testdb.users.find({})`)
	assert.Equal(t, 0, response.ResultCount)
}

func TestDirectorProjection(t *testing.T) {
	sm := newTestServiceManager(t)

	run(t, sm, `testdb.users.insert_one({"name": "Ada", "age": 36})`)

	response := run(t, sm, `testdb.users.find_one({}, projection=["name"])`)
	doc, isDoc := engine.AsDocument(response.Result)
	require.True(t, isDoc)
	require.Len(t, doc, 1)
	assert.Equal(t, "name", doc[0].Key)
}

func TestDirectorUnknownTargets(t *testing.T) {
	sm := newTestServiceManager(t)

	_, err := CommandDirector(sm, "otherdb.users.find({})", zap.NewNop().Sugar())
	assert.ErrorIs(t, err, engine.ErrUnknownDatabase)

	_, err = CommandDirector(sm, "testdb.ghosts.find({})", zap.NewNop().Sugar())
	assert.ErrorIs(t, err, engine.ErrUnknownCollection)

	_, err = CommandDirector(sm, "testdb.users.levitate({})", zap.NewNop().Sugar())
	assert.ErrorIs(t, err, engine.ErrUnknownMethod)
}

func TestDirectorSchemaMismatchSurfaces(t *testing.T) {
	sm := newTestServiceManager(t)

	_, err := CommandDirector(sm, `testdb.users.insert_one({"age": "old"})`, zap.NewNop().Sugar())
	assert.ErrorIs(t, err, engine.ErrSchemaMismatch)
}

func TestDirectorTrailingSemicolon(t *testing.T) {
	sm := newTestServiceManager(t)

	response := run(t, sm, `testdb.users.find({});`)
	assert.Equal(t, 0, response.ResultCount)
}

func TestDirectorResponseRenders(t *testing.T) {
	sm := newTestServiceManager(t)

	run(t, sm, `testdb.users.insert_one({"name": "Ada", "age": 36})`)
	response := run(t, sm, `testdb.users.find({})`)

	rendered, err := response.Render()
	require.NoError(t, err)
	assert.True(t, strings.Contains(rendered, "result_count"))
	assert.True(t, strings.Contains(rendered, "Ada"))
}
