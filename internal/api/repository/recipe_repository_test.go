package repository

import (
	"context"
	"testing"

	"foodgram/internal/api/models"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// RecipeRepositorySuite runs the recipe write path against a real postgres
// instance: the replace transaction depends on FOR UPDATE row locks and
// unique indexes that mocks cannot exercise.
type RecipeRepositorySuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	repo      RecipeRepository

	author    models.User
	flour     models.Ingredient
	egg       models.Ingredient
	sugar     models.Ingredient
	breakfast models.Tag
	dinner    models.Tag
}

func TestRecipeRepositorySuite(t *testing.T) {
	suite.Run(t, new(RecipeRepositorySuite))
}

func (s *RecipeRepositorySuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping container-backed repository tests in short mode")
	}
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("foodgram_test"),
		tcpostgres.WithUsername("foodgram"),
		tcpostgres.WithPassword("foodgram"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		s.T().Skipf("could not start postgres container: %v", err)
	}
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	s.Require().NoError(err)
	s.db = db

	s.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favourite{},
		&models.ShoppingCart{},
		&models.Follow{},
	))
	s.repo = NewRecipeRepository(db)

	s.author = models.User{
		Username:  "cook",
		Email:     "cook@example.com",
		FirstName: "Ann",
		LastName:  "Cook",
		Password:  "irrelevant",
	}
	s.Require().NoError(db.Create(&s.author).Error)

	s.flour = models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	s.egg = models.Ingredient{Name: "egg", MeasurementUnit: "pcs"}
	s.sugar = models.Ingredient{Name: "sugar", MeasurementUnit: "g"}
	s.Require().NoError(db.Create(&s.flour).Error)
	s.Require().NoError(db.Create(&s.egg).Error)
	s.Require().NoError(db.Create(&s.sugar).Error)

	s.breakfast = models.Tag{Name: "breakfast", Colour: "#FFAA00", Slug: "breakfast"}
	s.dinner = models.Tag{Name: "dinner", Colour: "#0055FF", Slug: "dinner"}
	s.Require().NoError(db.Create(&s.breakfast).Error)
	s.Require().NoError(db.Create(&s.dinner).Error)
}

func (s *RecipeRepositorySuite) TearDownSuite() {
	if s.container != nil {
		_ = testcontainers.TerminateContainer(s.container)
	}
}

func (s *RecipeRepositorySuite) SetupTest() {
	for _, table := range []string{"recipe_ingredients", "recipe_tags", "recipes"} {
		s.Require().NoError(s.db.Exec("DELETE FROM " + table).Error)
	}
}

func (s *RecipeRepositorySuite) createRecipe(lines []models.RecipeIngredient, tags []models.Tag) *models.Recipe {
	recipe := &models.Recipe{
		AuthorID:    s.author.ID,
		Name:        "pancakes",
		Image:       "img.png",
		Text:        "mix and fry",
		CookingTime: 20,
	}
	s.Require().NoError(s.repo.Create(s.ctx, recipe, lines, tags))
	return recipe
}

// currentLines reads the stored lines straight from the table, in insertion
// order, bypassing the repository under test.
func (s *RecipeRepositorySuite) currentLines(recipeID int64) []models.RecipeIngredient {
	var lines []models.RecipeIngredient
	s.Require().NoError(s.db.
		Where("recipe_id = ?", recipeID).
		Order("id").
		Find(&lines).Error)
	return lines
}

func linePairs(lines []models.RecipeIngredient) [][2]int64 {
	pairs := make([][2]int64, 0, len(lines))
	for _, line := range lines {
		pairs = append(pairs, [2]int64{line.IngredientID, int64(line.Amount)})
	}
	return pairs
}

func (s *RecipeRepositorySuite) TestUpdateReplacesIngredientLines() {
	recipe := s.createRecipe(
		[]models.RecipeIngredient{{IngredientID: s.flour.ID, Amount: 100}},
		[]models.Tag{s.breakfast},
	)

	err := s.repo.Update(s.ctx, recipe, []models.RecipeIngredient{
		{IngredientID: s.flour.ID, Amount: 100},
		{IngredientID: s.egg.ID, Amount: 3},
	}, nil)
	s.Require().NoError(err)

	// the old flour row is gone, not joined by a second one
	lines := s.currentLines(recipe.ID)
	s.Equal([][2]int64{
		{s.flour.ID, 100},
		{s.egg.ID, 3},
	}, linePairs(lines))
}

func (s *RecipeRepositorySuite) TestUpdateSameLinesTwiceIsIdempotent() {
	recipe := s.createRecipe(
		[]models.RecipeIngredient{{IngredientID: s.sugar.ID, Amount: 50}},
		[]models.Tag{s.breakfast},
	)

	normalized := []models.RecipeIngredient{
		{IngredientID: s.flour.ID, Amount: 100},
		{IngredientID: s.egg.ID, Amount: 3},
	}
	s.Require().NoError(s.repo.Update(s.ctx, recipe, normalized, nil))
	first := s.currentLines(recipe.ID)

	s.Require().NoError(s.repo.Update(s.ctx, recipe, normalized, nil))
	second := s.currentLines(recipe.ID)

	s.Require().Len(second, 2)
	s.Equal(linePairs(first), linePairs(second))
}

func (s *RecipeRepositorySuite) TestUpdateNilAssociationsKeepExisting() {
	recipe := s.createRecipe(
		[]models.RecipeIngredient{
			{IngredientID: s.flour.ID, Amount: 100},
			{IngredientID: s.egg.ID, Amount: 3},
		},
		[]models.Tag{s.breakfast},
	)

	recipe.Name = "renamed"
	s.Require().NoError(s.repo.Update(s.ctx, recipe, nil, nil))

	got, err := s.repo.GetByID(s.ctx, recipe.ID)
	s.Require().NoError(err)
	s.Equal("renamed", got.Name)
	s.Len(got.Ingredients, 2)
	s.Require().Len(got.Tags, 1)
	s.Equal(s.breakfast.ID, got.Tags[0].ID)
}

func (s *RecipeRepositorySuite) TestUpdateReplacesTagSet() {
	recipe := s.createRecipe(
		[]models.RecipeIngredient{{IngredientID: s.flour.ID, Amount: 100}},
		[]models.Tag{s.breakfast},
	)

	s.Require().NoError(s.repo.Update(s.ctx, recipe, nil, []models.Tag{s.dinner}))

	got, err := s.repo.GetByID(s.ctx, recipe.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Tags, 1)
	s.Equal(s.dinner.ID, got.Tags[0].ID)
}

func (s *RecipeRepositorySuite) TestCreateRollsBackOnDuplicateLines() {
	recipe := &models.Recipe{
		AuthorID:    s.author.ID,
		Name:        "broken",
		Image:       "img.png",
		Text:        "never lands",
		CookingTime: 5,
	}
	// two lines for the same ingredient violate the composite unique index
	err := s.repo.Create(s.ctx, recipe, []models.RecipeIngredient{
		{IngredientID: s.flour.ID, Amount: 100},
		{IngredientID: s.flour.ID, Amount: 200},
	}, []models.Tag{s.breakfast})
	s.Require().Error(err)

	var count int64
	s.Require().NoError(s.db.Model(&models.Recipe{}).Count(&count).Error)
	s.Equal(int64(0), count)
}
