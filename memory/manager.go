package memory

import (
	"fmt"
	"sync"
)

// BlockPool manages a pool of staging blocks of a specific size
type BlockPool struct {
	blocks    chan []byte  // Available blocks
	maxSize   int          // Pool size limit
	blockSize int          // Fixed block size for this pool
	allocated int          // Current number of allocated blocks
	mutex     sync.RWMutex // Protects allocated counter
}

// NewBlockPool creates a new block pool
func NewBlockPool(blockSize int, maxSize int) *BlockPool {
	return &BlockPool{
		blocks:    make(chan []byte, maxSize),
		maxSize:   maxSize,
		blockSize: blockSize,
	}
}

// Get retrieves a block from the pool or allocates a new one
func (bp *BlockPool) Get() ([]byte, error) {
	select {
	case block := <-bp.blocks:
		return block, nil
	default:
		bp.mutex.Lock()
		canAllocate := bp.allocated < bp.maxSize
		if canAllocate {
			bp.allocated++
		}
		bp.mutex.Unlock()

		if !canAllocate {
			return nil, fmt.Errorf("block pool at capacity (%d)", bp.maxSize)
		}
		return make([]byte, bp.blockSize), nil
	}
}

// Return puts a block back into the pool
func (bp *BlockPool) Return(block []byte) {
	if block == nil || cap(block) < bp.blockSize {
		return
	}
	block = block[:bp.blockSize]
	clear(block)

	select {
	case bp.blocks <- block:
	default:
		// Pool is full, let the GC have it
		bp.mutex.Lock()
		bp.allocated--
		bp.mutex.Unlock()
	}
}

// Stats returns pool statistics
func (bp *BlockPool) Stats() (available int, allocated int, maxSize int) {
	bp.mutex.RLock()
	defer bp.mutex.RUnlock()
	return len(bp.blocks), bp.allocated, bp.maxSize
}

// StagingManager hands out call-scoped scratch memory for native calls.
// A block obtained with Acquire must be released once the native call that
// consumes it has returned; nothing here retains a block on a caller's behalf.
type StagingManager struct {
	pools      map[int]*BlockPool // Pools by tier size
	poolsMutex sync.RWMutex       // Protects pools map

	// Pool size tiers (in bytes)
	poolSizes []int
}

// Default tiers: 64B, 256B, 1KB, 4KB, 16KB, 64KB, 256KB, 1MB
var defaultPoolSizes = []int{
	64, 256, 1024, 4096, 16384, 65536, 262144, 1048576,
}

// NewStagingManager creates a new staging manager with the default tiers
func NewStagingManager() *StagingManager {
	return &StagingManager{
		pools:     make(map[int]*BlockPool),
		poolSizes: defaultPoolSizes,
	}
}

// Acquire returns a zeroed block of exactly size bytes. Requests larger than
// the largest tier are allocated directly and never pooled.
func (sm *StagingManager) Acquire(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid staging size %d", size)
	}
	tier := sm.findPoolSize(size)
	if tier < 0 {
		return make([]byte, size), nil
	}

	block, err := sm.getOrCreatePool(tier).Get()
	if err != nil {
		return nil, err
	}
	return block[:size], nil
}

// Release returns a block obtained from Acquire to its tier
func (sm *StagingManager) Release(block []byte) {
	if block == nil {
		return
	}
	tier := cap(block)

	sm.poolsMutex.RLock()
	pool, exists := sm.pools[tier]
	sm.poolsMutex.RUnlock()

	if exists {
		pool.Return(block[:tier])
	}
}

// findPoolSize finds the smallest tier that can accommodate the request,
// or -1 if none can
func (sm *StagingManager) findPoolSize(size int) int {
	for _, poolSize := range sm.poolSizes {
		if poolSize >= size {
			return poolSize
		}
	}
	return -1
}

// getOrCreatePool gets an existing pool or creates a new one
func (sm *StagingManager) getOrCreatePool(tier int) *BlockPool {
	sm.poolsMutex.RLock()
	pool, exists := sm.pools[tier]
	sm.poolsMutex.RUnlock()

	if exists {
		return pool
	}

	sm.poolsMutex.Lock()
	defer sm.poolsMutex.Unlock()

	// Double-check after acquiring write lock
	if pool, exists := sm.pools[tier]; exists {
		return pool
	}

	pool = NewBlockPool(tier, calculateMaxPoolSize(tier))
	sm.pools[tier] = pool
	return pool
}

// calculateMaxPoolSize determines the maximum number of blocks for a tier
func calculateMaxPoolSize(blockSize int) int {
	// Smaller blocks get larger pools
	switch {
	case blockSize <= 1024:
		return 64
	case blockSize <= 65536:
		return 16
	default:
		return 4
	}
}

// Stats returns staging manager statistics keyed by tier size
func (sm *StagingManager) Stats() map[int]string {
	sm.poolsMutex.RLock()
	defer sm.poolsMutex.RUnlock()

	stats := make(map[int]string)
	for tier, pool := range sm.pools {
		available, allocated, maxSize := pool.Stats()
		stats[tier] = fmt.Sprintf("available=%d, allocated=%d, max=%d",
			available, allocated, maxSize)
	}
	return stats
}

// Global staging manager instance
var globalStagingManager *StagingManager
var globalStagingManagerOnce sync.Once

// GetGlobalStagingManager returns the process-wide staging manager
func GetGlobalStagingManager() *StagingManager {
	globalStagingManagerOnce.Do(func() {
		globalStagingManager = NewStagingManager()
	})
	return globalStagingManager
}
