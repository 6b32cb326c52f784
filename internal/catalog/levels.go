package catalog

// LevelThresholds maps lifetime coins to a level index: the level is the
// largest index whose threshold the total has reached.
var LevelThresholds = []int64{
	0, 1000, 5000, 20000, 100000, 500000, 2000000, 10000000, 50000000, 200000000,
}

// LevelNames has one display name per threshold.
var LevelNames = []string{
	"Beginner", "Apprentice", "Miner", "Trader", "Merchant",
	"Tycoon", "Mogul", "Whale", "Legend", "Satoshi",
}

// LevelFor returns the level index for a lifetime total, saturating at the
// top level.
func LevelFor(totalCoins int64) int {
	for i := len(LevelThresholds) - 1; i >= 0; i-- {
		if totalCoins >= LevelThresholds[i] {
			return i
		}
	}
	return 0
}

// LevelName returns the display name for a level index.
func LevelName(level int) string {
	if level < 0 {
		level = 0
	}
	if level >= len(LevelNames) {
		level = len(LevelNames) - 1
	}
	return LevelNames[level]
}

// LevelProgress is the fraction of the way from the current threshold to the
// next one, 1.0 at the top level.
func LevelProgress(totalCoins int64) float64 {
	level := LevelFor(totalCoins)
	if level >= len(LevelThresholds)-1 {
		return 1
	}
	current := totalCoins - LevelThresholds[level]
	needed := LevelThresholds[level+1] - LevelThresholds[level]
	return float64(current) / float64(needed)
}
