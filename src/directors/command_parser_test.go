package directors

import (
	"testing"

	"chunkdb/src/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseCommandBasic(t *testing.T) {
	cmd, err := ParseCommand(`MyDatabase.users.find({"age": {"$gt": 20}})`)
	require.NoError(t, err)

	assert.Equal(t, "MyDatabase", cmd.Database)
	assert.Equal(t, "users", cmd.Collection)
	assert.Equal(t, "find", cmd.Method)
	require.Len(t, cmd.Args, 1)

	query, isDoc := engine.AsDocument(cmd.Args[0])
	require.True(t, isDoc)
	age, ok := engine.DocGet(query, "age")
	require.True(t, ok)
	cond, isDoc := engine.AsDocument(age)
	require.True(t, isDoc)
	assert.True(t, engine.DocHas(cond, "$gt"))
}

func TestParseCommandEmptyArgs(t *testing.T) {
	cmd, err := ParseCommand("db.users.find()")
	require.NoError(t, err)
	assert.Empty(t, cmd.Args)
	assert.Nil(t, cmd.Projection)
	assert.Nil(t, cmd.Multi)
}

func TestParseCommandSplitsTopLevelCommasOnly(t *testing.T) {
	cmd, err := ParseCommand(`db.users.update({"a": 1, "b": [1, 2]}, {"$set": {"c": 2}})`)
	require.NoError(t, err)
	require.Len(t, cmd.Args, 2)

	first, _ := engine.AsDocument(cmd.Args[0])
	assert.Len(t, first, 2)
	second, _ := engine.AsDocument(cmd.Args[1])
	assert.True(t, engine.DocHas(second, "$set"))
}

func TestParseCommandNamedArguments(t *testing.T) {
	cmd, err := ParseCommand(`db.users.find({}, projection=["name", "age"], multi=True)`)
	require.NoError(t, err)

	require.Len(t, cmd.Args, 1)
	projection, isArr := cmd.Projection.(bson.A)
	require.True(t, isArr)
	assert.Equal(t, bson.A{"name", "age"}, projection)

	require.NotNil(t, cmd.Multi)
	assert.True(t, *cmd.Multi)
}

func TestParseCommandMultiVariants(t *testing.T) {
	for _, variant := range []string{"True", "true"} {
		cmd, err := ParseCommand("db.users.update({}, {}, multi=" + variant + ")")
		require.NoError(t, err)
		require.NotNil(t, cmd.Multi)
		assert.True(t, *cmd.Multi)
	}
	for _, variant := range []string{"False", "false"} {
		cmd, err := ParseCommand("db.users.update({}, {}, multi=" + variant + ")")
		require.NoError(t, err)
		require.NotNil(t, cmd.Multi)
		assert.False(t, *cmd.Multi)
	}
}

func TestParseCommandSyntaxErrors(t *testing.T) {
	inputs := []string{
		"",
		"find",
		"db.users.find",
		"db.users.find(",
		"users.find({})",
		"db..find({})",
	}
	for _, input := range inputs {
		_, err := ParseCommand(input)
		assert.ErrorIs(t, err, ErrSyntax, input)
	}
}

func TestParseCommandInvalidJSONArgument(t *testing.T) {
	_, err := ParseCommand("db.users.find({broken)")
	assert.Error(t, err)
}

func TestProjectionArgPrefersNamed(t *testing.T) {
	cmd, err := ParseCommand(`db.users.find({}, ["positional"], projection=["named"])`)
	require.NoError(t, err)
	assert.Equal(t, bson.A{"named"}, cmd.ProjectionArg())

	cmd, err = ParseCommand(`db.users.find({}, ["positional"])`)
	require.NoError(t, err)
	assert.Equal(t, bson.A{"positional"}, cmd.ProjectionArg())

	cmd, err = ParseCommand("db.users.find({})")
	require.NoError(t, err)
	assert.Nil(t, cmd.ProjectionArg())
}

func TestSplitArguments(t *testing.T) {
	args := splitArguments(`{"a": [1, {"b": 2}]}, "text", multi=True`)
	require.Len(t, args, 3)
	assert.Equal(t, `{"a": [1, {"b": 2}]}`, args[0])
	assert.Equal(t, `"text"`, args[1])
	assert.Equal(t, "multi=True", args[2])

	assert.Empty(t, splitArguments("   "))
}
