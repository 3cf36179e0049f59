package models

import "gorm.io/datatypes"

// CacheEntry is a stored response inside a named offline cache.
type CacheEntry struct {
	Base
	CacheName  string         `gorm:"not null;size:191;uniqueIndex:idx_cache_entries_name_url" json:"cache_name"`
	URL        string         `gorm:"not null;size:1024;uniqueIndex:idx_cache_entries_name_url" json:"url"`
	StatusCode int            `gorm:"not null" json:"status_code"`
	Header     datatypes.JSON `json:"header"`
	Body       []byte         `json:"-"`
}
