package services

import (
	"github.com/google/uuid"

	"opsdeck/internal/apperror"
	"opsdeck/internal/models"
)

// CreateInventoryItemRequest defines a new stock item. Per-booking
// usage, threshold and unit default sensibly when omitted.
type CreateInventoryItemRequest struct {
	Name                   string `json:"name" binding:"required"`
	QuantityAvailable      int    `json:"quantity_available"`
	QuantityUsedPerBooking *int   `json:"quantity_used_per_booking"`
	LowStockThreshold      *int   `json:"low_stock_threshold"`
	Unit                   string `json:"unit"`
}

// UpdateInventoryItemRequest is a partial stock adjustment.
type UpdateInventoryItemRequest struct {
	QuantityAvailable *int `json:"quantity_available"`
	LowStockThreshold *int `json:"low_stock_threshold"`
}

// InventoryService tracks consumable stock per workspace.
type InventoryService struct {
	db *models.DB
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(db *models.DB) *InventoryService {
	return &InventoryService{db: db}
}

// List retrieves a workspace's inventory.
func (s *InventoryService) List(workspaceID uuid.UUID) ([]models.InventoryItem, error) {
	return s.db.Inventory.List(workspaceID)
}

// Create adds a stock item.
func (s *InventoryService) Create(workspaceID uuid.UUID, req CreateInventoryItemRequest) (*models.InventoryItem, error) {
	if req.QuantityAvailable < 0 {
		return nil, apperror.InvalidInput("quantity_available cannot be negative")
	}
	item := &models.InventoryItem{
		WorkspaceID:            workspaceID,
		Name:                   req.Name,
		QuantityAvailable:      req.QuantityAvailable,
		QuantityUsedPerBooking: 1,
		LowStockThreshold:      5,
		Unit:                   "unit",
	}
	if req.QuantityUsedPerBooking != nil {
		item.QuantityUsedPerBooking = *req.QuantityUsedPerBooking
	}
	if req.LowStockThreshold != nil {
		item.LowStockThreshold = *req.LowStockThreshold
	}
	if req.Unit != "" {
		item.Unit = req.Unit
	}
	if err := s.db.Inventory.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update adjusts quantity and threshold of one item.
func (s *InventoryService) Update(workspaceID, itemID uuid.UUID, req UpdateInventoryItemRequest) (*models.InventoryItem, error) {
	item, err := s.db.Inventory.UpdateQuantities(workspaceID, itemID, req.QuantityAvailable, req.LowStockThreshold)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Inventory item not found")
		}
		return nil, err
	}
	return item, nil
}

// LowStock retrieves the items at or below their threshold.
func (s *InventoryService) LowStock(workspaceID uuid.UUID) ([]models.InventoryItem, error) {
	return s.db.Inventory.LowStock(workspaceID)
}
