package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evgkirov/bboard/models"
)

func seedTree(t *testing.T, s *Store) (home, electronics models.Rubric) {
	t.Helper()
	home = models.Rubric{Name: "For home", Order: 1}
	require.NoError(t, s.db.Create(&home).Error)
	electronics = models.Rubric{Name: "Electronics", Order: 0}
	require.NoError(t, s.db.Create(&electronics).Error)

	for _, sub := range []models.Rubric{
		{Name: "Lighting", Order: 1, ParentID: &home.ID},
		{Name: "Furniture", Order: 0, ParentID: &home.ID},
		{Name: "Audio", Order: 0, ParentID: &electronics.ID},
	} {
		sub := sub
		require.NoError(t, s.db.Create(&sub).Error)
	}
	return home, electronics
}

func TestSuperRubricsOrdered(t *testing.T) {
	s := newTestStore(t)
	seedTree(t, s)

	supers, err := s.Rubrics.SuperRubrics()
	require.NoError(t, err)
	require.Len(t, supers, 2)
	assert.Equal(t, "Electronics", supers[0].Name, "ordered by (order, name)")
	assert.Equal(t, "For home", supers[1].Name)
}

func TestSubRubricsOrdered(t *testing.T) {
	s := newTestStore(t)
	home, _ := seedTree(t, s)

	subs, err := s.Rubrics.SubRubrics(home.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Furniture", subs[0].Name)
	assert.Equal(t, "Lighting", subs[1].Name)
}

func TestAllSubRubrics(t *testing.T) {
	s := newTestStore(t)
	seedTree(t, s)

	subs, err := s.Rubrics.AllSubRubrics()
	require.NoError(t, err)
	require.Len(t, subs, 3)
	for _, sub := range subs {
		require.NotNil(t, sub.Parent)
	}
	assert.Equal(t, "Audio", subs[0].Name, "parent order comes first")
}

func TestSubRubricNotFound(t *testing.T) {
	s := newTestStore(t)
	home, _ := seedTree(t, s)

	_, err := s.Rubrics.SubRubric(9999)
	assert.ErrorIs(t, err, ErrNotFound)

	// a super-rubric id is not a valid sub-rubric
	_, err = s.Rubrics.SubRubric(home.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	subs, err := s.Rubrics.SubRubrics(home.ID)
	require.NoError(t, err)
	sub, err := s.Rubrics.SubRubric(subs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "For home", sub.Parent.Name)
}
