package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrependEntry(t *testing.T) {
	list := []Activity{{ID: "a1"}, {ID: "a2"}}

	got := prependEntry(list, Activity{ID: "a0"})

	assert.Equal(t, []string{"a0", "a1", "a2"}, activityIDs(got))
	assert.Equal(t, []string{"a1", "a2"}, activityIDs(list))
}

func TestAppendEntry(t *testing.T) {
	got := appendEntry([]Document{{ID: "d1"}}, Document{ID: "d2"})

	require.Len(t, got, 2)
	assert.Equal(t, "d2", got[1].ID)
}

func TestRemoveByID(t *testing.T) {
	list := []Document{{ID: "d1"}, {ID: "d2"}, {ID: "d3"}}

	got, err := removeByID(list, EntityDocument, "d2")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d1", got[0].ID)
	assert.Equal(t, "d3", got[1].ID)

	_, err = removeByID(got, EntityDocument, "d2")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, EntityDocument, nf.Entity)
	assert.Equal(t, "d2", nf.ID)
	assert.Equal(t, "document with ID d2 not found", err.Error())
}

func TestRemoveByID_Empty(t *testing.T) {
	_, err := removeByID([]Activity{}, EntityActivity, "a1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMutateByID(t *testing.T) {
	list := []Activity{{ID: "a1"}, {ID: "a2", Likes: 1}}

	err := mutateByID(list, EntityActivity, "a2", func(a *Activity) { a.Likes++ })
	require.NoError(t, err)
	assert.Equal(t, 2, list[1].Likes)
	assert.Equal(t, 0, list[0].Likes)

	err = mutateByID(list, EntityActivity, "missing", func(a *Activity) { a.Likes++ })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClone(t *testing.T) {
	orig := &Transaction{
		Activities: []Activity{{ID: "a1", Mentions: []string{"bob"}}},
	}

	c := orig.Clone()
	c.Activities[0].Mentions[0] = "eve"
	c.Activities[0].Likes = 5

	assert.Equal(t, "bob", orig.Activities[0].Mentions[0])
	assert.Zero(t, orig.Activities[0].Likes)
	assert.NotNil(t, c.Documents)
}

func activityIDs(list []Activity) []string {
	ids := make([]string, len(list))
	for i, a := range list {
		ids[i] = a.ID
	}

	return ids
}
