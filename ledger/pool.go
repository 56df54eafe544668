package ledger

import (
	"sync"
)

// Pools for commonly allocated objects to reduce GC pressure

var (
	// inventoryPool provides pooled inventories for residual calculations
	inventoryPool = sync.Pool{
		New: func() any {
			return NewInventory()
		},
	}
)

// getInventory retrieves a pooled, empty inventory
func getInventory() *Inventory {
	return inventoryPool.Get().(*Inventory)
}

// putInventory clears and returns an inventory to the pool
func putInventory(inv *Inventory) {
	// Clear the inventory before returning to pool
	inv.Reset()
	inventoryPool.Put(inv)
}
