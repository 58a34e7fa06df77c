// Package cache memoizes content-addressed work in a bounded LRU.
//
// Keys are SHA-256 digests of the input, so callers that see the same bytes
// twice (an effect cloned, or an effect reflected and then compiled) share
// one result:
//
//	c := cache.New[[]uint32](64)
//	words, err := c.GetOrCreate(cache.KeyOf(src), compile)
//
// A Cache is safe for concurrent use and must not be copied after creation.
package cache
