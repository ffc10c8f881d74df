package services

import (
	"testing"

	"picks-backend/models"

	"github.com/stretchr/testify/assert"
)

func pick(id, sport string) models.Pick {
	return models.Pick{ID: id, Sport: sport, Status: models.PickStatusPublished}
}

func pickIDs(picks []models.Pick) []string {
	ids := make([]string, len(picks))
	for i, p := range picks {
		ids[i] = p.ID
	}
	return ids
}

func TestFillPickSlotsPreferredFirst(t *testing.T) {
	preferred := []models.Pick{pick("a", "nba"), pick("b", "nba")}
	others := []models.Pick{pick("c", "nfl"), pick("d", "mlb"), pick("e", "nhl")}

	got := fillPickSlots(preferred, others, 4)
	assert.Equal(t, []string{"a", "b", "c", "d"}, pickIDs(got))
}

func TestFillPickSlotsCapsAtLimit(t *testing.T) {
	preferred := []models.Pick{pick("a", "nba"), pick("b", "nba"), pick("c", "nba")}
	others := []models.Pick{pick("d", "nfl")}

	got := fillPickSlots(preferred, others, 2)
	assert.Equal(t, []string{"a", "b"}, pickIDs(got))
}

func TestFillPickSlotsNoDuplicates(t *testing.T) {
	// The same pick appearing in both lists must only be selected once.
	preferred := []models.Pick{pick("a", "nba"), pick("b", "nba")}
	others := []models.Pick{pick("b", "nba"), pick("c", "nfl")}

	got := fillPickSlots(preferred, others, 5)
	assert.Equal(t, []string{"a", "b", "c"}, pickIDs(got))
}

func TestFillPickSlotsBackfillOnly(t *testing.T) {
	got := fillPickSlots(nil, []models.Pick{pick("x", "nfl"), pick("y", "mlb")}, 5)
	assert.Equal(t, []string{"x", "y"}, pickIDs(got))
}

func TestFillPickSlotsZeroLimit(t *testing.T) {
	got := fillPickSlots([]models.Pick{pick("a", "nba")}, nil, 0)
	assert.Empty(t, got)
}

func TestPartitionBySport(t *testing.T) {
	picks := []models.Pick{
		pick("a", "nba"),
		pick("b", "nfl"),
		pick("c", "nba"),
		pick("d", "mlb"),
	}

	preferred, others := partitionBySport(picks, []string{"nba"})
	assert.Equal(t, []string{"a", "c"}, pickIDs(preferred))
	assert.Equal(t, []string{"b", "d"}, pickIDs(others))

	preferred, others = partitionBySport(picks, nil)
	assert.Empty(t, preferred)
	assert.Len(t, others, 4)
}
