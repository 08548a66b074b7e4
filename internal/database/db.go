package database

import (
	"log"

	"gastro-backend/internal/config"
	"gastro-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	if err := SeedRoles(DB); err != nil {
		log.Fatalf("could not seed roles: %v", err)
	}

	log.Println("Database connected, migration complete.")
}

// openSessionIndex allows one open cash session per user and location.
const openSessionIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_sessions_one_open
	ON cash_sessions (user_id, location_id) WHERE status = 'OPEN'`

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.BusinessLocation{},
		&models.Role{},
		&models.User{},
		&models.Supplier{},
		&models.InventoryItem{},
		&models.InventoryMovement{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Promotion{},
		&models.Sale{},
		&models.SaleItem{},
		&models.SaleDiscount{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderItem{},
		&models.CashSession{},
		&models.AuditLog{},
	)
	if err != nil {
		return err
	}
	return db.Exec(openSessionIndex).Error
}

// DefaultRoles are created on first start and never overwritten afterwards.
var DefaultRoles = []models.Role{
	{Name: models.RoleAdmin, Description: "Full access", Permissions: models.AllPermissions, IsSystem: true},
	{Name: models.RoleManager, Description: "Runs a location", IsSystem: true, Permissions: []string{
		models.PermInventoryManage, models.PermRecipesManage, models.PermSalesCreate, models.PermSalesVoid,
		models.PermPromotionsManage, models.PermSuppliersManage, models.PermPurchasingManage, models.PermReportsView,
	}},
	{Name: models.RoleCashier, Description: "Point of sale", IsSystem: true, Permissions: []string{
		models.PermSalesCreate,
	}},
	{Name: models.RoleChef, Description: "Kitchen", IsSystem: true, Permissions: []string{
		models.PermInventoryManage, models.PermRecipesManage,
	}},
}

func SeedRoles(db *gorm.DB) error {
	for _, r := range DefaultRoles {
		role := r
		if err := db.Where("name = ?", role.Name).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}
	return nil
}
