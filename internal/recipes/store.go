package recipes

import (
	"errors"
	"strings"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/inventory"
	"gastro-backend/internal/models"

	"gorm.io/gorm"
)

type Store struct {
	db        *gorm.DB
	inventory *inventory.Store
}

func NewStore(db *gorm.DB, inv *inventory.Store) *Store {
	return &Store{db: db, inventory: inv}
}

type Filter struct {
	Category      string
	LocationID    *uint
	Search        string
	AvailableOnly bool
}

func (s *Store) List(f Filter) ([]models.Recipe, error) {
	q := s.db.Model(&models.Recipe{}).Preload("Ingredients")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.LocationID != nil {
		q = q.Where("location_id = ? OR location_id IS NULL", *f.LocationID)
	}
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}
	var recipes []models.Recipe
	err := q.Order("name").Find(&recipes).Error
	return recipes, err
}

func (s *Store) Get(id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.Preload("Ingredients").First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// ByIDs loads recipes with their ingredients keyed by id.
func (s *Store) ByIDs(ids []uint) (map[uint]models.Recipe, error) {
	out := make(map[uint]models.Recipe, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var recipes []models.Recipe
	if err := s.db.Preload("Ingredients").Where("id IN ?", ids).Find(&recipes).Error; err != nil {
		return nil, err
	}
	for _, r := range recipes {
		out[r.ID] = r
	}
	return out, nil
}

// Cost rebuilds the ingredient rows of recipe from inputs against the current
// inventory.
func (s *Store) Cost(recipe *models.Recipe, inputs []IngredientInput) error {
	items, err := s.inventory.ItemsByIDs(ingredientItemIDs(inputs))
	if err != nil {
		return err
	}
	draft, err := BuildDraft(recipe.Price, inputs, items)
	if err != nil {
		return err
	}
	ApplyDraft(recipe, draft)
	return nil
}

func (s *Store) Create(recipe *models.Recipe, actor audit.Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		return actor.Record(tx, audit.EntityRecipe, recipe.ID, models.AuditActionCreate,
			"Created recipe "+recipe.Name, nil, recipe)
	})
}

// Update saves recipe and replaces its ingredient rows.
func (s *Store) Update(recipe *models.Recipe, before models.Recipe, actor audit.Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		for i := range recipe.Ingredients {
			recipe.Ingredients[i].ID = 0
			recipe.Ingredients[i].RecipeID = recipe.ID
		}
		if err := tx.Omit("Ingredients").Save(recipe).Error; err != nil {
			return err
		}
		if len(recipe.Ingredients) > 0 {
			if err := tx.Create(&recipe.Ingredients).Error; err != nil {
				return err
			}
		}
		return actor.Record(tx, audit.EntityRecipe, recipe.ID, models.AuditActionUpdate,
			"Updated recipe "+recipe.Name, before, recipe)
	})
}

func (s *Store) Delete(id uint, actor audit.Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Preload("Ingredients").First(&recipe, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&recipe).Error; err != nil {
			return err
		}
		return actor.Record(tx, audit.EntityRecipe, recipe.ID, models.AuditActionDelete,
			"Deleted recipe "+recipe.Name, recipe, nil)
	})
}

func (s *Store) CheckAvailability(recipe models.Recipe, quantity int) (Availability, error) {
	required := Requirements(recipe, quantity)
	ids := make([]uint, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	stock, err := s.inventory.ItemsByIDs(ids)
	if err != nil {
		return Availability{}, err
	}
	missing := CheckAvailability(required, stock)
	return Availability{
		RecipeID:  recipe.ID,
		Quantity:  quantity,
		Available: len(missing) == 0,
		Missing:   missing,
	}, nil
}
