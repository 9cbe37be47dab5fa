package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryItem tracks consumable stock for a workspace. "Low stock" is
// computed on read, never stored.
type InventoryItem struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID            uuid.UUID `gorm:"type:uuid;column:workspace_id;not null;index" json:"workspace_id"`
	Name                   string    `gorm:"column:name;not null" json:"name"`
	QuantityAvailable      int       `gorm:"column:quantity_available;not null;default:0" json:"quantity_available"`
	QuantityUsedPerBooking int       `gorm:"column:quantity_used_per_booking;not null;default:1" json:"quantity_used_per_booking"`
	LowStockThreshold      int       `gorm:"column:low_stock_threshold;not null;default:5" json:"low_stock_threshold"`
	Unit                   string    `gorm:"column:unit;not null;default:'unit'" json:"unit"`
	CreatedAt              time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt              time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the InventoryItem model
func (InventoryItem) TableName() string {
	return "inventory_items"
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IsLowStock reports whether the item is at or below its threshold.
func (i *InventoryItem) IsLowStock() bool {
	return i.QuantityAvailable <= i.LowStockThreshold
}

// InventoryManager provides persistence operations for InventoryItem
type InventoryManager struct {
	db *gorm.DB
}

// NewInventoryManager creates a new InventoryManager instance
func NewInventoryManager(db *gorm.DB) *InventoryManager {
	return &InventoryManager{db: db}
}

// Create creates a new inventory item
func (m *InventoryManager) Create(item *InventoryItem) error {
	return m.db.Create(item).Error
}

// Get retrieves an item within a workspace
func (m *InventoryManager) Get(workspaceID, id uuid.UUID) (*InventoryItem, error) {
	var item InventoryItem
	err := m.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List retrieves all items of a workspace ordered by name
func (m *InventoryManager) List(workspaceID uuid.UUID) ([]InventoryItem, error) {
	var items []InventoryItem
	err := m.db.Where("workspace_id = ?", workspaceID).Order("name").Find(&items).Error
	return items, err
}

// UpdateQuantities applies a partial update of quantity and threshold.
func (m *InventoryManager) UpdateQuantities(workspaceID, id uuid.UUID, quantityAvailable, lowStockThreshold *int) (*InventoryItem, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if quantityAvailable != nil {
		updates["quantity_available"] = *quantityAvailable
	}
	if lowStockThreshold != nil {
		updates["low_stock_threshold"] = *lowStockThreshold
	}
	result := m.db.Model(&InventoryItem{}).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return m.Get(workspaceID, id)
}

// LowStock retrieves the items at or below their threshold, emptiest
// first.
func (m *InventoryManager) LowStock(workspaceID uuid.UUID) ([]InventoryItem, error) {
	var items []InventoryItem
	err := m.db.
		Where("workspace_id = ? AND quantity_available <= low_stock_threshold", workspaceID).
		Order("quantity_available ASC").
		Find(&items).Error
	return items, err
}

// Exists reports whether the workspace has any inventory item.
func (m *InventoryManager) Exists(workspaceID uuid.UUID) (bool, error) {
	var count int64
	err := m.db.Model(&InventoryItem{}).Where("workspace_id = ?", workspaceID).Count(&count).Error
	return count > 0, err
}
