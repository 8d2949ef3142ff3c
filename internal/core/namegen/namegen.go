// Package namegen compose des usernames bilingues "adjectif_nom".
// Les tables sont des paires français/anglais ; exactement une des deux
// moitiés du username est française.
package namegen

import "math/rand"

type pair struct {
	French  string
	English string
}

var adjectives = []pair{
	{"Aventureux", "Adventurous"},
	{"Courageux", "Brave"},
	{"Ruse", "Clever"},
	{"Curieux", "Curious"},
	{"Farouche", "Fierce"},
	{"Joyeux", "Joyful"},
	{"Paisible", "Peaceful"},
	{"Rapide", "Swift"},
	{"Sauvage", "Wild"},
	{"Discret", "Quiet"},
	{"Vaillant", "Valiant"},
	{"Espiegle", "Playful"},
	{"Lumineux", "Bright"},
	{"Nocturne", "Nocturnal"},
	{"Fidele", "Loyal"},
	{"Agile", "Nimble"},
}

var nouns = []pair{
	{"Renard", "Fox"},
	{"Loup", "Wolf"},
	{"Hibou", "Owl"},
	{"Ours", "Bear"},
	{"Cerf", "Stag"},
	{"Lievre", "Hare"},
	{"Faucon", "Falcon"},
	{"Blaireau", "Badger"},
	{"Herisson", "Hedgehog"},
	{"Castor", "Beaver"},
	{"Lynx", "Lynx"},
	{"Corbeau", "Raven"},
	{"Loutre", "Otter"},
	{"Sanglier", "Boar"},
	{"Ecureuil", "Squirrel"},
	{"Marmotte", "Marmot"},
}

// Username tire un adjectif et un nom, puis décide à pile ou face quelle
// moitié sera française. La source d'aléa est injectée : pas d'état
// global, un rnd seedé donne une sortie reproductible.
func Username(rnd *rand.Rand) string {
	adj := adjectives[rnd.Intn(len(adjectives))]
	noun := nouns[rnd.Intn(len(nouns))]

	if rnd.Intn(2) == 0 {
		return adj.French + "_" + noun.English
	}
	return adj.English + "_" + noun.French
}
