package content

// Card is a single flashcard embedded in an essay. It is pure content: the
// scheduler never owns or mutates it.
type Card struct {
	ID       string
	Question string
	Answer   string
}

// Set groups the cards belonging to one essay.
type Set struct {
	Title string
	Slug  string
	Cards []Card
}

// CardIDs returns the ids of all cards in the set, in order.
func (s Set) CardIDs() []string {
	ids := make([]string, len(s.Cards))
	for i, card := range s.Cards {
		ids[i] = card.ID
	}
	return ids
}

// AllCards flattens the sets into a single ordered card list.
func AllCards(sets []Set) []Card {
	var cards []Card
	for _, set := range sets {
		cards = append(cards, set.Cards...)
	}
	return cards
}
