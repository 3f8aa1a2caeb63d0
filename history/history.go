// Package history persists which provider resolved each media item.
package history

import (
	"github.com/metafates/gache"
	"github.com/samber/mo"
	"github.com/streamscout-cli/streamscout/filesystem"
	"github.com/streamscout-cli/streamscout/provider"
	"github.com/streamscout-cli/streamscout/where"
)

// cacher provides an abstracted, disk-backed registry of resolution records.
var cacher = gache.New[map[string]*Record](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of resolution records from the persistent store.
func Get() (map[string]*Record, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Record), nil
	}
	return cached, nil
}

// Save records that the given source (optionally via an embed) produced a
// playable stream for the media item. The latest resolution wins.
func Save(media *provider.Media, sourceID, embedID, streamType string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newRecord(media, sourceID, embedID, streamType)
	saved[record.MediaKey] = record

	return cacher.Set(saved)
}

// Lookup returns the record for the media item, if one exists.
func Lookup(media *provider.Media) mo.Option[*Record] {
	saved, err := Get()
	if err != nil {
		return mo.None[*Record]()
	}

	record, exists := saved[media.Key()]
	if !exists {
		return mo.None[*Record]()
	}
	return mo.Some(record)
}

// Remove deletes the record for the media item.
func Remove(media *provider.Media) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, media.Key())
	return cacher.Set(saved)
}

// Clear drops every record.
func Clear() error {
	return cacher.Set(make(map[string]*Record))
}
