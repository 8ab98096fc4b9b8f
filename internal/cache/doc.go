// Package cache provides a bounded LRU map for GPU objects.
//
// Entries that fall out of the cache are handed to an eviction callback
// instead of being dropped, so the owner can defer destroying them until
// no submitted work references them.
//
//	c := cache.New[key, hal.RenderPipeline](64, func(k key, p hal.RenderPipeline) {
//		retired = append(retired, p)
//	})
//	p, err := c.GetOrCreate(k, build)
package cache
