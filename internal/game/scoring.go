package game

import (
	"cmp"
	"fmt"
	"slices"
)

var clueRewards = [...]int{5, 3, 2, 1}

// Points awarded for a correct guess after cluesGiven extra clues.
func Points(cluesGiven int) int {
	if cluesGiven >= 0 && cluesGiven < len(clueRewards) {
		return clueRewards[cluesGiven]
	}
	return 1
}

type Standing struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Title string `json:"title"`
}

// Rank drops players without points and orders the rest by score, keeping
// input order between ties.
func Rank(players []Player) []Standing {
	scored := make([]Player, 0, len(players))
	for _, p := range players {
		if p.Score > 0 {
			scored = append(scored, p)
		}
	}
	slices.SortStableFunc(scored, func(a, b Player) int {
		return cmp.Compare(b.Score, a.Score)
	})

	standings := make([]Standing, 0, len(scored))
	for i, p := range scored {
		standings = append(standings, Standing{Name: p.Name, Score: p.Score, Title: Title(i)})
	}
	return standings
}

func Title(rank int) string {
	switch rank {
	case 0:
		return "#1 Master Guesser"
	case 1:
		return "#2 Doodle Nerd"
	default:
		return fmt.Sprintf("#%d Bottom Feeder", rank+1)
	}
}
