// Package memory provides pooled object storage addressed by compact
// slot handles. Arena is fixed capacity, SlabArena grows in slabs;
// both share a lock-free free list and are safe for concurrent
// allocation.
package memory
