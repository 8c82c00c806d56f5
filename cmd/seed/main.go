// Command seed populates the configured database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"dishswap/internal/bootstrap"
	"dishswap/internal/config"
	"dishswap/internal/middleware"
	"dishswap/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of generated users")
	numRecipes := flag.Int("recipes", defaults.NumRecipes, "Number of generated recipes")
	comments := flag.Int("comments", defaults.CommentsPerRecipe, "Comments per recipe")
	reactions := flag.Int("reactions", defaults.ReactionsPerRecipe, "Reactions per recipe")
	favorites := flag.Int("favorites", defaults.FavoritesPerUser, "Favorite attempts per user")
	fixturesPath := flag.String("fixtures", "", "YAML fixture file with hand-written users and recipes")
	shouldClean := flag.Bool("clean", false, "Delete all SQL rows before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = clock)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitLogger(cfg.Env, cfg.LogLevel)

	var fixtures *seed.Fixtures
	if *fixturesPath != "" {
		fixtures, err = seed.LoadFixtures(*fixturesPath)
		if err != nil {
			log.Fatalf("Failed to load fixtures: %v", err)
		}
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	if *shouldClean {
		if rt.SQL == nil {
			middleware.Logger.Warn("-clean only applies to SQL backends, skipping", "driver", cfg.DBDriver)
		} else if err := seed.Clean(rt.SQL); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	s := seed.NewSeeder(cfg, rt.Repos, seed.Options{
		NumUsers:           *numUsers,
		NumRecipes:         *numRecipes,
		CommentsPerRecipe:  *comments,
		ReactionsPerRecipe: *reactions,
		FavoritesPerUser:   *favorites,
		RandSeed:           *randSeed,
	})
	res, err := s.Seed(ctx, fixtures)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d recipes, %d comments, %d reactions, %d favorites",
		res.Users, res.Recipes, res.Comments, res.Reactions, res.Favorites)
	log.Printf("Generated users have the password: %s", seed.DefaultPassword)
}
