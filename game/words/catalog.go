package words

import "doodleserver/models"

// DefaultEntries is the built-in catalog used when no database is configured
// and as the seed for the words table.
var DefaultEntries = []Entry{
	{"cat", "animals", models.DifficultyEasy},
	{"dog", "animals", models.DifficultyEasy},
	{"fish", "animals", models.DifficultyEasy},
	{"duck", "animals", models.DifficultyEasy},
	{"giraffe", "animals", models.DifficultyMedium},
	{"penguin", "animals", models.DifficultyMedium},
	{"kangaroo", "animals", models.DifficultyMedium},
	{"octopus", "animals", models.DifficultyMedium},
	{"chameleon", "animals", models.DifficultyHard},
	{"platypus", "animals", models.DifficultyHard},
	{"apple", "food", models.DifficultyEasy},
	{"pizza", "food", models.DifficultyEasy},
	{"banana", "food", models.DifficultyEasy},
	{"cake", "food", models.DifficultyEasy},
	{"hamburger", "food", models.DifficultyMedium},
	{"hot dog", "food", models.DifficultyMedium},
	{"spaghetti", "food", models.DifficultyMedium},
	{"sushi", "food", models.DifficultyMedium},
	{"crème brûlée", "food", models.DifficultyHard},
	{"croissant", "food", models.DifficultyHard},
	{"house", "objects", models.DifficultyEasy},
	{"chair", "objects", models.DifficultyEasy},
	{"ball", "objects", models.DifficultyEasy},
	{"book", "objects", models.DifficultyEasy},
	{"umbrella", "objects", models.DifficultyMedium},
	{"scissors", "objects", models.DifficultyMedium},
	{"telescope", "objects", models.DifficultyMedium},
	{"lighthouse", "objects", models.DifficultyHard},
	{"hourglass", "objects", models.DifficultyHard},
	{"chandelier", "objects", models.DifficultyHard},
	{"sun", "nature", models.DifficultyEasy},
	{"tree", "nature", models.DifficultyEasy},
	{"flower", "nature", models.DifficultyEasy},
	{"rainbow", "nature", models.DifficultyMedium},
	{"volcano", "nature", models.DifficultyMedium},
	{"waterfall", "nature", models.DifficultyMedium},
	{"avalanche", "nature", models.DifficultyHard},
	{"eclipse", "nature", models.DifficultyHard},
	{"guitar", "music", models.DifficultyMedium},
	{"drum", "music", models.DifficultyEasy},
	{"piano", "music", models.DifficultyMedium},
	{"saxophone", "music", models.DifficultyHard},
	{"soccer", "sports", models.DifficultyEasy},
	{"tennis", "sports", models.DifficultyMedium},
	{"skateboard", "sports", models.DifficultyMedium},
	{"surfing", "sports", models.DifficultyMedium},
	{"fencing", "sports", models.DifficultyHard},
	{"bowling", "sports", models.DifficultyHard},
}
