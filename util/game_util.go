package util

import (
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/aiwolfdial/werewolf-room-server/model"
	"golang.org/x/exp/constraints"
)

func CountAliveSpecies(alive []model.Role) (int, int) {
	var humans, werewolves int
	for _, role := range alive {
		switch role.Species {
		case model.S_HUMAN:
			humans++
		case model.S_WEREWOLF:
			werewolves++
		}
	}
	return humans, werewolves
}

// CalcWinSideTeam applies the parity rule: wolves win once they are at least
// as many as the humans, villagers win once no wolf is left.
func CalcWinSideTeam(alive []model.Role) model.Team {
	humans, werewolves := CountAliveSpecies(alive)
	if werewolves == 0 {
		return model.T_VILLAGER
	}
	if humans <= werewolves {
		return model.T_WEREWOLF
	}
	return model.T_NONE
}

// CountCandidates tallies keys and returns those with the highest count in
// ascending order.
func CountCandidates[K constraints.Ordered](keys []K) []K {
	counter := make(map[K]int)
	for _, key := range keys {
		counter[key]++
	}
	return getMaxCountCandidates(counter)
}

func getMaxCountCandidates[K constraints.Ordered](counter map[K]int) []K {
	var max int
	for _, count := range counter {
		if count > max {
			max = count
		}
	}
	candidates := make([]K, 0)
	if max == 0 {
		return candidates
	}
	for key, count := range counter {
		if count == max {
			candidates = append(candidates, key)
		}
	}
	slices.Sort(candidates)
	return candidates
}

// ExpandRoleTable turns a name -> count table into a shuffled list of names.
func ExpandRoleTable(roles map[string]int) []string {
	names := make([]string, 0)
	for _, name := range slices.Sorted(maps.Keys(roles)) {
		for range roles[name] {
			names = append(names, name)
		}
	}
	rand.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	return names
}
