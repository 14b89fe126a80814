package permission

import "time"

type Page struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	PageKey     string    `gorm:"column:page_key;uniqueIndex;not null" json:"pageKey"`
	DisplayName string    `gorm:"column:display_name;not null" json:"displayName"`
	Path        string    `gorm:"column:path" json:"path"`
	Description string    `gorm:"column:description" json:"description"`
	IsActive    bool      `gorm:"column:is_active" json:"isActive"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Page) TableName() string { return "pages" }

// RolePermission is one cell row of the (role x page) matrix.
type RolePermission struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Role      string    `gorm:"column:role;not null;uniqueIndex:idx_role_page" json:"role"`
	PageID    int64     `gorm:"column:page_id;not null;uniqueIndex:idx_role_page" json:"pageId"`
	CanView   bool      `gorm:"column:can_view" json:"canView"`
	CanEdit   bool      `gorm:"column:can_edit" json:"canEdit"`
	CanDelete bool      `gorm:"column:can_delete" json:"canDelete"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (RolePermission) TableName() string { return "role_permissions" }

type UserMenuPermission struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	UserID    int64  `gorm:"column:user_id;not null;uniqueIndex:idx_user_menu" json:"userId"`
	MenuKey   string `gorm:"column:menu_key;not null;uniqueIndex:idx_user_menu" json:"menuKey"`
	CanAccess bool   `gorm:"column:can_access" json:"canAccess"`
}

func (UserMenuPermission) TableName() string { return "user_menu_permissions" }
