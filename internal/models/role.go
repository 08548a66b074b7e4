package models

import "time"

// Permission codes checked by auth.RequirePermission.
const (
	PermInventoryManage  = "inventory.manage"
	PermRecipesManage    = "recipes.manage"
	PermSalesCreate      = "sales.create"
	PermSalesVoid        = "sales.void"
	PermPromotionsManage = "promotions.manage"
	PermSuppliersManage  = "suppliers.manage"
	PermPurchasingManage = "purchasing.manage"
	PermReportsView      = "reports.view"
	PermUsersManage      = "users.manage"
	PermSettingsManage   = "settings.manage"
)

// AllPermissions is the permission catalogue exposed by GET /api/roles/permissions.
var AllPermissions = []string{
	PermInventoryManage,
	PermRecipesManage,
	PermSalesCreate,
	PermSalesVoid,
	PermPromotionsManage,
	PermSuppliersManage,
	PermPurchasingManage,
	PermReportsView,
	PermUsersManage,
	PermSettingsManage,
}

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Permissions []string  `gorm:"serializer:json;type:jsonb" json:"permissions"`
	IsSystem    bool      `gorm:"not null;default:false" json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r Role) Has(permission string) bool {
	if r.Name == RoleAdmin {
		return true
	}
	for _, p := range r.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
