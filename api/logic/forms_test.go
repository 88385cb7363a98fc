/* forms_test.go
 * Contains unit tests for scoretable.go, valorant.go, password.go and matching.go
 * Authors: Gamers Bot contributors
 */

package logic

import (
	"errors"
	"testing"
	"time"

	"gamers-bot/api/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// region score table tests

func TestScoreTableForm_Defaults(t *testing.T) {
	table, err := DefaultScoreTableForm().Validate()

	require.NoError(t, err)
	assert.Len(t, table, 25)
	assert.Equal(t, 1, table["iron_1"])
	assert.Equal(t, 25, table["radiant"])
}

func TestScoreTableForm_StripsNonDigits(t *testing.T) {
	form := DefaultScoreTableForm()
	require.NoError(t, form.Set("Gold_1", " 1,200pts"))
	require.NoError(t, form.Set("iron_2", "-7"))

	table, err := form.Validate()
	require.NoError(t, err)
	assert.Equal(t, 1200, table["gold_1"])
	assert.Equal(t, 7, table["iron_2"])
}

func TestScoreTableForm_MissingFields(t *testing.T) {
	form := DefaultScoreTableForm()
	delete(form.Values, "radiant")
	form.Values["diamond_2"] = "abc"

	table, err := form.Validate()

	assert.Nil(t, table)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{"radiant": "required", "diamond_2": "required"}, verr.Fields)
	assert.Equal(t, "invalid fields: diamond_2, radiant", verr.Error())
}

func TestScoreTableForm_Empty(t *testing.T) {
	_, err := ScoreTableForm{}.Validate()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 25)
}

func TestParseScoreTableArgs(t *testing.T) {
	form, err := ParseScoreTableArgs([]string{"radiant=100", "IRON_1=0"})
	require.NoError(t, err)

	table, err := form.Validate()
	require.NoError(t, err)
	assert.Equal(t, 100, table["radiant"])
	assert.Equal(t, 0, table["iron_1"])

	_, err = ParseScoreTableArgs([]string{"radiant"})
	assert.Error(t, err)
	_, err = ParseScoreTableArgs([]string{"mythic=3"})
	assert.Error(t, err)
}

// endregion

// region valorant tests

func TestCanRefresh_Boundary(t *testing.T) {
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, CanRefresh(updated, true, updated.Add(23*time.Hour+59*time.Minute)))
	assert.True(t, CanRefresh(updated, true, updated.Add(24*time.Hour)))
	assert.True(t, CanRefresh(updated, true, updated.Add(72*time.Hour)))
	assert.True(t, CanRefresh(time.Time{}, false, updated))
}

func TestCanRefreshInfo(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	assert.False(t, CanRefreshInfo(shared.ValorantInfo{UpdatedAt: "2026-03-02T00:00:00Z"}, now))
	assert.True(t, CanRefreshInfo(shared.ValorantInfo{UpdatedAt: "2026-03-01T12:00:00Z"}, now))
	assert.True(t, CanRefreshInfo(shared.ValorantInfo{}, now))
}

func TestValidateRegistration(t *testing.T) {
	req, err := ValidateRegistration(shared.RegisterValorantRequest{Region: "KR", RiotName: " Hide on bush ", RiotTag: "#KR1"})
	require.NoError(t, err)
	assert.Equal(t, "kr", req.Region)
	assert.Equal(t, "Hide on bush", req.RiotName)
	assert.Equal(t, "KR1", req.RiotTag)

	req, err = ValidateRegistration(shared.RegisterValorantRequest{Region: "lat", RiotName: "a", RiotTag: "b"})
	require.NoError(t, err)
	assert.Equal(t, "latam", req.Region)

	_, err = ValidateRegistration(shared.RegisterValorantRequest{Region: "mars"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "region")
	assert.Contains(t, verr.Fields, "riot_name")
	assert.Contains(t, verr.Fields, "riot_tag")
}

// endregion

// region password tests

func TestValidatePasswordChange(t *testing.T) {
	assert.NoError(t, ValidatePasswordChange("hunter22", "hunter22"))

	var verr *ValidationError
	require.True(t, errors.As(ValidatePasswordChange("a", "b"), &verr))
	assert.Equal(t, "passwords do not match", verr.Fields["confirm"])

	require.True(t, errors.As(ValidatePasswordChange("", ""), &verr))
	assert.Len(t, verr.Fields, 2)
}

// endregion

// region matching tests

func TestMatchName(t *testing.T) {
	names := []string{"Alice", "alicia", "Bob"}

	got, ok := MatchName("ALICE", names)
	assert.True(t, ok)
	assert.Equal(t, "Alice", got)

	got, ok = MatchName("bo", names)
	assert.True(t, ok)
	assert.Equal(t, "Bob", got)

	_, ok = MatchName("zzz", names)
	assert.False(t, ok)

	_, ok = MatchName("  ", names)
	assert.False(t, ok)
}

func TestMatchName_TieIsNoMatch(t *testing.T) {
	names := []string{"alpha", "alphb", "al"}

	_, ok := MatchName("alp", names)
	assert.False(t, ok)

	got, ok := MatchName("alph", []string{"alpha", "alphabet"})
	assert.True(t, ok)
	assert.Equal(t, "alpha", got)
}

func TestRankNames(t *testing.T) {
	ranked := RankNames("a", []string{"Maximilian", "Alex", "ALEX", "bob"})

	require.Len(t, ranked, 2)
	assert.Equal(t, NameRank{Name: "Alex", Distance: 3}, ranked[0])
	assert.Equal(t, "Maximilian", ranked[1].Name)
	assert.Empty(t, RankNames(" ", []string{"Alex"}))
}

// endregion
