package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "users", QuoteIdentifier("users"))
	assert.Equal(t, "`order`", QuoteIdentifier("order"))
	assert.Equal(t, "`Key`", QuoteIdentifier("Key"))
	assert.Equal(t, "app.`group`", QuoteIdentifier("app.group"))
	assert.Equal(t, "T", QuoteIdentifier("T"))
}

func TestReservedWordsAreQuotedInEveryBuilder(t *testing.T) {
	stmt, _, err := Insert("items").Record(map[string]any{"order": 1, "name": "x"}).Build()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO items (name, `order`) VALUES (?, ?)", stmt)

	stmt, _, err = Select("items").Columns("key", "name").OrderBy("desc", true).Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT `key`, name FROM items ORDER BY `desc` DESC", stmt)

	stmt, _, err = Update("group").SetValues(map[string]any{"order": 2}).Where("id = ?", 1).Build()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `group` SET `order` = ? WHERE id = ?", stmt)

	stmt, _, err = Delete("table").Where("id = ?", 1).Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `table` WHERE id = ?", stmt)

	stmt, _, err = Select("order").Count().Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) AS total FROM `order`", stmt)
}

func TestRenderSkipsQuotedIdentifiers(t *testing.T) {
	stmt, err := Insert("items").Record(map[string]any{"order": 7}).Render()

	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO items (`order`) VALUES (7)", stmt)
}
