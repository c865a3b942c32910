package service

import "github.com/user/cinerag/internal/model"

// DefaultMovies 首次启动时写入的默认目录
func DefaultMovies() []model.Movie {
	return []model.Movie{
		{Title: "Spider-Man: No Way Home", Year: "2021", Genre: "Action/Adventure", Rating: 8.3,
			Description: "Peter Parker's identity is revealed and he asks Doctor Strange for help. Multiverse chaos ensues with villains from previous Spider-Man movies returning."},
		{Title: "The Batman", Year: "2022", Genre: "Action/Crime", Rating: 7.9,
			Description: "Young Bruce Wayne investigates corruption in Gotham City while facing the Riddler, a serial killer targeting elite citizens with deadly puzzles."},
		{Title: "Encanto", Year: "2021", Genre: "Animation/Family", Rating: 7.3,
			Description: "A magical family lives in a house in Colombia where each family member has special powers, except for Mirabel who must save her family's magic."},
		{Title: "Dune", Year: "2021", Genre: "Sci-Fi/Adventure", Rating: 8.0,
			Description: "Paul Atreides leads nomadic tribes in a battle to control the desert planet Arrakis and its valuable spice resource in this epic space opera."},
		{Title: "No Time to Die", Year: "2021", Genre: "Action/Thriller", Rating: 7.3,
			Description: "James Bond comes out of retirement to rescue a kidnapped scientist, leading to a dangerous mission involving lethal new technology."},
		{Title: "Top Gun: Maverick", Year: "2022", Genre: "Action/Drama", Rating: 8.3,
			Description: "Pete 'Maverick' Mitchell returns as a flight instructor to train a new generation of pilots for a dangerous mission nobody has survived."},
		{Title: "Turning Red", Year: "2022", Genre: "Animation/Comedy", Rating: 7.0,
			Description: "A 13-year-old girl in Toronto balances her relationship with her mother while dealing with transforming into a giant red panda when excited."},
		{Title: "The Matrix Resurrections", Year: "2021", Genre: "Sci-Fi/Action", Rating: 5.7,
			Description: "Neo lives a seemingly ordinary life as a video game developer until strange occurrences lead him to discover the truth about his reality."},
		{Title: "Fast & Furious 9", Year: "2021", Genre: "Action/Adventure", Rating: 5.2,
			Description: "Dom Toretto faces his past when his estranged brother Jakob emerges as a deadly assassin working with an old enemy."},
		{Title: "A Quiet Place Part II", Year: "2021", Genre: "Horror/Thriller", Rating: 7.2,
			Description: "The Abbott family continues to face terrifying creatures that hunt by sound while discovering other survivors in their post-apocalyptic world."},
		{Title: "Shang-Chi and the Legend of the Ten Rings", Year: "2021", Genre: "Action/Adventure", Rating: 7.4,
			Description: "Shang-Chi confronts his past when drawn into the web of the mysterious Ten Rings organization and faces his father, the legendary Mandarin."},
		{Title: "Eternals", Year: "2021", Genre: "Action/Sci-Fi", Rating: 6.3,
			Description: "Immortal aliens have secretly lived on Earth for thousands of years and reunite to protect humanity from their evil counterparts, the Deviants."},
		{Title: "Cruella", Year: "2021", Genre: "Crime/Comedy", Rating: 7.3,
			Description: "Young grifter Estella transforms into the raucous, fashionable Cruella de Vil in 1970s London during the punk rock revolution."},
		{Title: "Black Widow", Year: "2021", Genre: "Action/Adventure", Rating: 6.7,
			Description: "Natasha Romanoff confronts her past as a spy and the broken relationships left in her wake long before she became an Avenger."},
		{Title: "Jungle Cruise", Year: "2021", Genre: "Action/Adventure", Rating: 6.6,
			Description: "Dr. Lily Houghton enlists the aid of wisecracking skipper Frank Wolff to take her down the Amazon in his ramshackle boat to find an ancient tree."},
	}
}

// DemoQueries 演示模式使用的查询
var DemoQueries = []string{
	"action movies with superheroes",
	"funny animated movies for families",
	"sci-fi movies with great ratings",
	"thriller movies with mystery",
}
