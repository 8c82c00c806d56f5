// Package seed fills a database with demo users, recipes and activity.
// It is intended for development and testing only.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dishswap/internal/config"
	"dishswap/internal/events"
	"dishswap/internal/middleware"
	"dishswap/internal/models"
	"dishswap/internal/repository"
	"dishswap/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "password123"

var cuisines = []string{
	"Italian", "Mexican", "Japanese", "Indian", "French", "Thai", "Greek",
	"Korean", "Ethiopian", "Lebanese", "Vietnamese", "Spanish", "American",
}

var difficulties = []string{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}

// Options controls how much generated data Seed adds on top of the fixtures.
type Options struct {
	NumUsers           int
	NumRecipes         int
	CommentsPerRecipe  int
	ReactionsPerRecipe int
	FavoritesPerUser   int
	// RandSeed makes generated data reproducible. Zero seeds from the clock.
	RandSeed int64
}

// DefaultOptions is what cmd/seed uses unless overridden by flags.
func DefaultOptions() Options {
	return Options{
		NumUsers:           20,
		NumRecipes:         60,
		CommentsPerRecipe:  3,
		ReactionsPerRecipe: 8,
		FavoritesPerUser:   5,
	}
}

// Result counts what Seed created.
type Result struct {
	Users     int
	Recipes   int
	Comments  int
	Reactions int
	Favorites int
}

// Seeder writes demo data through the services, so seeded records obey the
// same validation and side effects as API writes.
type Seeder struct {
	users     *service.UserService
	recipes   *service.RecipeService
	comments  *service.CommentService
	favorites *service.FavoriteService
	faker     *gofakeit.Faker
	opts      Options
}

// NewSeeder builds the services on top of repos. Events are not published.
func NewSeeder(cfg *config.Config, repos repository.Set, opts Options) *Seeder {
	publisher := events.NopPublisher{}
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		users:     service.NewUserService(repos.Users, repos.Recipes, repos.Favorites, publisher, cfg.BcryptCost),
		recipes:   service.NewRecipeService(repos.Recipes, service.NewImageService(cfg, nil), publisher),
		comments:  service.NewCommentService(repos.Comments, repos.Recipes, repos.Users, publisher),
		favorites: service.NewFavoriteService(repos.Favorites, repos.Recipes, publisher),
		faker:     gofakeit.New(seed),
		opts:      opts,
	}
}

// Seed creates the fixture records, then the generated ones, then random
// comments, reactions and favorites across everything.
func (s *Seeder) Seed(ctx context.Context, fixtures *Fixtures) (Result, error) {
	var res Result
	var users []*models.User
	byEmail := map[string]*models.User{}

	if fixtures != nil {
		for _, f := range fixtures.Users {
			password := f.Password
			if password == "" {
				password = DefaultPassword
			}
			u, err := s.register(ctx, f.Name, f.Email, password)
			if err != nil {
				return res, fmt.Errorf("fixture user %s: %w", f.Email, err)
			}
			users = append(users, u)
			byEmail[u.Email] = u
		}
	}

	for i := 0; i < s.opts.NumUsers; i++ {
		email := fmt.Sprintf("%s.%d@dishswap.dev", strings.ToLower(s.faker.Username()), i)
		u, err := s.register(ctx, s.faker.Name(), email, DefaultPassword)
		if err != nil {
			return res, fmt.Errorf("generated user %d: %w", i, err)
		}
		users = append(users, u)
	}
	res.Users = len(users)
	if len(users) == 0 {
		return res, errors.New("nothing to seed: no users")
	}

	var recipes []*models.Recipe
	if fixtures != nil {
		for _, f := range fixtures.Recipes {
			author := byEmail[models.NormalizeEmail(f.Author)]
			if author == nil {
				if f.Author != "" {
					return res, fmt.Errorf("fixture recipe %q: unknown author %s", f.Title, f.Author)
				}
				author = s.pickUser(users)
			}
			r, err := s.recipes.CreateRecipe(ctx, service.CreateRecipeInput{
				UserID:      author.ID,
				Title:       f.Title,
				Description: f.Description,
				Ingredients: strings.Join(f.Ingredients, ", "),
				Cuisine:     f.Cuisine,
				Difficulty:  f.Difficulty,
				CookingTime: f.CookingTime,
				ImageURL:    f.ImageURL,
			})
			if err != nil {
				return res, fmt.Errorf("fixture recipe %q: %w", f.Title, err)
			}
			recipes = append(recipes, r)

			for _, text := range f.Comments {
				if _, err := s.comments.CreateComment(ctx, service.CreateCommentInput{
					UserID:   s.pickUser(users).ID,
					RecipeID: r.ID,
					Text:     text,
				}); err != nil {
					return res, fmt.Errorf("fixture comment on %q: %w", f.Title, err)
				}
				res.Comments++
			}
		}
	}

	for i := 0; i < s.opts.NumRecipes; i++ {
		r, err := s.recipes.CreateRecipe(ctx, s.fakeRecipe(s.pickUser(users).ID))
		if err != nil {
			return res, fmt.Errorf("generated recipe %d: %w", i, err)
		}
		recipes = append(recipes, r)
	}
	res.Recipes = len(recipes)
	if len(recipes) == 0 {
		return res, nil
	}

	for _, r := range recipes {
		for i := 0; i < s.opts.CommentsPerRecipe; i++ {
			if _, err := s.comments.CreateComment(ctx, service.CreateCommentInput{
				UserID:   s.pickUser(users).ID,
				RecipeID: r.ID,
				Text:     s.faker.Sentence(s.faker.Number(4, 14)),
			}); err != nil {
				return res, fmt.Errorf("comment on %s: %w", r.ID, err)
			}
			res.Comments++
		}
		for i := 0; i < s.opts.ReactionsPerRecipe; i++ {
			rt := models.ReactionTypes[s.faker.Number(0, len(models.ReactionTypes)-1)]
			if _, err := s.recipes.React(ctx, s.pickUser(users).ID, r.ID, string(rt)); err != nil {
				return res, fmt.Errorf("reaction on %s: %w", r.ID, err)
			}
			res.Reactions++
		}
	}

	for _, u := range users {
		for i := 0; i < s.opts.FavoritesPerUser; i++ {
			r := recipes[s.faker.Number(0, len(recipes)-1)]
			added, err := s.favorites.AddFavorite(ctx, u.ID, r.ID)
			if err != nil {
				return res, fmt.Errorf("favorite for %s: %w", u.ID, err)
			}
			if added {
				res.Favorites++
			}
		}
	}

	middleware.Logger.Info("seed complete",
		"users", res.Users, "recipes", res.Recipes, "comments", res.Comments,
		"reactions", res.Reactions, "favorites", res.Favorites)
	return res, nil
}

func (s *Seeder) register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.users.Register(ctx, service.RegisterInput{Name: name, Email: email, Password: password})
}

func (s *Seeder) pickUser(users []*models.User) *models.User {
	return users[s.faker.Number(0, len(users)-1)]
}

func (s *Seeder) fakeRecipe(userID string) service.CreateRecipeInput {
	f := s.faker
	var title string
	switch f.Number(0, 3) {
	case 0:
		title = f.Breakfast()
	case 1:
		title = f.Lunch()
	case 2:
		title = f.Dinner()
	default:
		title = f.Dessert()
	}
	if len([]rune(title)) > 200 {
		title = string([]rune(title)[:200])
	}

	n := f.Number(3, 6)
	ingredients := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			ingredients = append(ingredients, strings.ToLower(f.Vegetable()))
		} else {
			ingredients = append(ingredients, strings.ToLower(f.Fruit()))
		}
	}

	return service.CreateRecipeInput{
		UserID:      userID,
		Title:       title,
		Description: f.Paragraph(1, 3, 12, " "),
		Ingredients: strings.Join(ingredients, ", "),
		Cuisine:     cuisines[f.Number(0, len(cuisines)-1)],
		Difficulty:  difficulties[f.Number(0, len(difficulties)-1)],
		CookingTime: f.Number(5, 180),
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.UUID()),
	}
}

// Clean deletes every row of the SQL tables, children first.
func Clean(db *gorm.DB) error {
	tx := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, m := range []any{&models.Favorite{}, &models.Comment{}, &models.Recipe{}, &models.User{}} {
		if err := tx.Delete(m).Error; err != nil {
			return fmt.Errorf("clean %T: %w", m, err)
		}
	}
	return nil
}
