package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"citrine/internal/db"
)

const seedIndexKey = "__cli_seed_index__"

func loadSeedIndex(engine db.DB) int {
	if val, ok, err := engine.Get([]byte(seedIndexKey)); err == nil && ok {
		if idx, err := strconv.Atoi(string(val)); err == nil {
			fmt.Printf("resumed seed index from %d\n", idx)
			return idx
		}
	}
	return 0
}

var kvPairs = [][2]string{
	{"agate", "amber"},
	{"beryl", "blue"},
	{"citrine", "copper"},
	{"diamond", "dusk"},
	{"emerald", "evergreen"},
	{"fluorite", "fuchsia"},
	{"garnet", "gold"},
	{"howlite", "hazel"},
	{"iolite", "indigo"},
	{"jasper", "jade"},
	{"kunzite", "khaki"},
	{"lapis", "lavender"},
	{"moonstone", "mauve"},
	{"nephrite", "navy"},
	{"opal", "ochre"},
	{"peridot", "pistachio"},
	{"quartz", "quicksilver"},
	{"ruby", "rose"},
	{"sapphire", "scarlet"},
	{"topaz", "tangerine"},
	{"unakite", "umber"},
	{"vesuvianite", "verdigris"},
	{"wulfenite", "wheat"},
	{"xenotime", "xanadu"},
	{"yttrium", "yellow"},
	{"zircon", "zaffre"},
}

func runSeed(engine db.DB, x int, seedIndex *int) {
	start := time.Now()
	count := 0
	startIndex := *seedIndex

	// Shuffle so blocks are not filled strictly alphabetically.
	shuffled := make([][2]string, len(kvPairs))
	copy(shuffled, kvPairs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	for i := 0; i < x; i++ {
		for _, pair := range shuffled {
			key := fmt.Sprintf("%s%d", pair[0], *seedIndex)
			value := fmt.Sprintf("%s%d", pair[1], *seedIndex)
			if err := engine.Put([]byte(key), []byte(value)); err != nil {
				fmt.Printf("seed error: %v\n", err)
				continue
			}
			count++
		}
		*seedIndex++
	}

	if err := engine.Put([]byte(seedIndexKey), []byte(fmt.Sprint(*seedIndex))); err != nil {
		fmt.Printf("warning: failed to persist seed index: %v\n", err)
	}

	elapsed := time.Since(start)
	fmt.Printf("seeded %d entries (26 * %d, index %d-%d) in %v - %v/entry\n",
		count, x, startIndex, *seedIndex-1, elapsed, elapsed/time.Duration(count))
}
