// Package cache provides a small generic LRU cache.
//
// The program cache uses it to keep generated shader source for recently
// evicted programs, so a program that returns soon after eviction is
// recompiled without regenerating its text.
//
//	c := cache.New[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
