// words/words.go
package words

import (
	"math/rand"
	"sync"
)

// Corpus 词库. 70 simple nouns plus 30 trendy ones.
var Corpus = []string{
	"Apple", "House", "Tree", "Sun", "Car", "Cat", "Dog", "Fish", "Bird", "Cloud",
	"Flower", "Banana", "Ball", "Chair", "Table", "Bed", "Book", "Lamp", "Clock", "Key",
	"Hat", "Shoe", "Phone", "Pizza", "Cup", "Bread", "Boat", "Train", "Plane", "Bus",
	"Bike", "Bag", "Door", "Window", "Moon", "Star", "Heart", "Rain", "Snow",
	"Leaf", "Grass", "Mountain", "River", "Snake", "Lion", "Tiger", "Bear", "Elephant", "Monkey",
	"Spider", "Butterfly", "Ant", "Bee", "Cake", "Egg", "Milk", "Cheese", "Water", "Box",
	"Pen", "Paper", "Shirt", "Pants", "Socks", "Rocket", "Robot", "Alien", "Sword", "Shield",

	"Skibidi Toilet", "NPC", "Meme", "Influencer", "Crypto Coin", "Bitcoin", "Diamond Hands", "Sus Imposter", "No Cap", "Gigachad",
	"Doge", "Pepe", "Vibe", "Energy Drink", "Gaming Chair", "Twitch Streamer", "Selfie Stick", "VR Headset", "Bubble Tea", "TikTok",
	"Pizza Rat", "Emotional Damage", "Rizz", "Main Character", "Golden Retriever Energy", "Cringe", "Slap", "Bussin", "Quiet Quitting", "Loot Box",
}

// Picker draws words at random from a corpus. Safe for concurrent use.
type Picker struct {
	corpus []string
	rng    *rand.Rand
	mutex  sync.Mutex
}

// NewPicker creates a picker over the default corpus.
func NewPicker(seed int64) *Picker {
	return NewPickerFrom(Corpus, seed)
}

// NewPickerFrom creates a picker over a custom corpus.
func NewPickerFrom(corpus []string, seed int64) *Picker {
	return &Picker{
		corpus: corpus,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Pick returns n distinct words drawn without replacement. n is capped at
// the corpus size.
func (p *Picker) Pick(n int) []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if n > len(p.corpus) {
		n = len(p.corpus)
	}

	picked := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for len(picked) < n {
		w := p.corpus[p.rng.Intn(len(p.corpus))]
		if seen[w] {
			continue
		}
		seen[w] = true
		picked = append(picked, w)
	}
	return picked
}

// Reroll returns a single word different from exclude. If the corpus holds
// no alternative, exclude comes back unchanged.
func (p *Picker) Reroll(exclude string) string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	hasOther := false
	for _, w := range p.corpus {
		if w != exclude {
			hasOther = true
			break
		}
	}
	if !hasOther {
		return exclude
	}

	w := p.corpus[p.rng.Intn(len(p.corpus))]
	for w == exclude {
		w = p.corpus[p.rng.Intn(len(p.corpus))]
	}
	return w
}
