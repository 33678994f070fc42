package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func botKeys() Keys[bot] {
	return Keys[bot]{
		"name":    ByString(func(b bot) string { return b.Name }),
		"trades":  ByNumber(func(b bot) int { return b.Trades }),
		"created": ByTime(func(b bot) time.Time { return b.Created }),
	}
}

func names(bots []bot) []string {
	out := make([]string, 0, len(bots))
	for _, b := range bots {
		out = append(out, b.Name)
	}
	return out
}

func TestSortByNameIgnoresCase(t *testing.T) {
	out := Sort(sampleBots(), "name", Asc, botKeys())
	assert.Equal(t, []string{"Alpha Scalper", "Beta Swing", "delta trend", "Epsilon", "Gamma Grid"}, names(out))
}

func TestSortIsStable(t *testing.T) {
	out := Sort(sampleBots(), "trades", Asc, botKeys())
	// Beta Swing and Gamma Grid tie on 12 trades and keep input order.
	assert.Equal(t, []string{"delta trend", "Beta Swing", "Gamma Grid", "Alpha Scalper", "Epsilon"}, names(out))
}

func TestSortDescending(t *testing.T) {
	out := Sort(sampleBots(), "created", ParseDirection("DESC"), botKeys())
	assert.Equal(t, []string{"Epsilon", "Alpha Scalper", "Gamma Grid", "Beta Swing", "delta trend"}, names(out))
}

func TestSortUnknownFieldKeepsOrder(t *testing.T) {
	bots := sampleBots()
	out := Sort(bots, "color", Asc, botKeys())
	assert.Equal(t, names(bots), names(out))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	bots := sampleBots()
	_ = Sort(bots, "name", Desc, botKeys())
	assert.Equal(t, "Alpha Scalper", bots[0].Name)
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Desc, ParseDirection("desc"))
	assert.Equal(t, Asc, ParseDirection("asc"))
	assert.Equal(t, Asc, ParseDirection(""))
}
