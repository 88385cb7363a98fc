/* scoretable.go
 * Contains the score table form and its validation. A table needs a non negative integer for every one of the
 * 25 rank tiers before it is sent
 * Authors: Gamers Bot contributors
 */

package logic

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gamers-bot/api/shared"
)

// Tiers lists the rank tiers in ascending order
var Tiers = []string{
	"iron_1", "iron_2", "iron_3",
	"bronze_1", "bronze_2", "bronze_3",
	"silver_1", "silver_2", "silver_3",
	"gold_1", "gold_2", "gold_3",
	"platinum_1", "platinum_2", "platinum_3",
	"diamond_1", "diamond_2", "diamond_3",
	"ascendant_1", "ascendant_2", "ascendant_3",
	"immortal_1", "immortal_2", "immortal_3",
	"radiant",
}

// ValidationError lists the fields that failed validation with a message per field
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid fields: %s", strings.Join(names, ", "))
}

// ScoreTableSubmitter is what a multi step flow calls to obtain a score table id. It either returns the id of a
// created table or fails without the caller having to send anything else
type ScoreTableSubmitter interface {
	Submit(ctx context.Context) (int64, error)
}

// ScoreTableForm holds the raw tier inputs as typed by the user
type ScoreTableForm struct {
	Values map[string]string
}

// DefaultScoreTableForm is prefilled with 1 for iron_1 up to 25 for radiant
func DefaultScoreTableForm() ScoreTableForm {
	form := ScoreTableForm{Values: make(map[string]string, len(Tiers))}
	for i, tier := range Tiers {
		form.Values[tier] = strconv.Itoa(i + 1)
	}
	return form
}

// Set stores a raw value for a tier. Tier names are case insensitive
func (f *ScoreTableForm) Set(tier string, raw string) error {
	tier = strings.ToLower(strings.TrimSpace(tier))
	if !isTier(tier) {
		return fmt.Errorf("unknown tier %q", tier)
	}
	if f.Values == nil {
		f.Values = make(map[string]string, len(Tiers))
	}
	f.Values[tier] = raw
	return nil
}

// Validate coerces every tier and returns the table.
// Preconditions: None
// Postconditions: Returns a table with all 25 tiers, or *ValidationError marking every missing or non numeric tier
func (f ScoreTableForm) Validate() (shared.ScoreTable, error) {
	table := make(shared.ScoreTable, len(Tiers))
	invalid := make(map[string]string)

	for _, tier := range Tiers {
		digits := stripNonDigits(f.Values[tier])
		if digits == "" {
			invalid[tier] = "required"
			continue
		}
		value, err := strconv.Atoi(digits)
		if err != nil {
			invalid[tier] = "required"
			continue
		}
		table[tier] = value
	}

	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}
	return table, nil
}

// ParseScoreTableArgs builds a form from `tier=value` arguments on top of the defaults
func ParseScoreTableArgs(args []string) (ScoreTableForm, error) {
	form := DefaultScoreTableForm()
	for _, arg := range args {
		tier, value, ok := strings.Cut(arg, "=")
		if !ok {
			return form, fmt.Errorf("expected tier=value, got %q", arg)
		}
		if err := form.Set(tier, value); err != nil {
			return form, err
		}
	}
	return form, nil
}

func stripNonDigits(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}

func isTier(name string) bool {
	for _, tier := range Tiers {
		if tier == name {
			return true
		}
	}
	return false
}
