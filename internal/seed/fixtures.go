package seed

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixtures are hand-written demo records loaded from YAML.
//
//	users:
//	  - name: Julia
//	    email: julia@example.com
//	recipes:
//	  - title: Coq au vin
//	    author: julia@example.com
//	    cuisine: French
type Fixtures struct {
	Users   []UserFixture   `yaml:"users"`
	Recipes []RecipeFixture `yaml:"recipes"`
}

// UserFixture is one demo account. Password falls back to the seeder default.
type UserFixture struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// RecipeFixture is one demo recipe. Author is the email of a fixture user;
// when empty a generated user is picked.
type RecipeFixture struct {
	Title       string   `yaml:"title"`
	Author      string   `yaml:"author"`
	Description string   `yaml:"description"`
	Ingredients []string `yaml:"ingredients"`
	Cuisine     string   `yaml:"cuisine"`
	Difficulty  string   `yaml:"difficulty"`
	CookingTime int      `yaml:"cookingTime"`
	ImageURL    string   `yaml:"imageUrl"`
	Comments    []string `yaml:"comments"`
}

// LoadFixtures reads a YAML fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(raw)
}

// ParseFixtures decodes YAML fixtures, rejecting unknown keys.
func ParseFixtures(raw []byte) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, r := range f.Recipes {
		if r.Title == "" {
			return nil, fmt.Errorf("parse fixtures: recipe %d has no title", i)
		}
	}
	return &f, nil
}
