/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package cache

import (
	"os"
	"strings"
	"sync"

	"github.com/ComposableFi/composable-sub002/configs"
	"github.com/ComposableFi/composable-sub002/pkg/primitives"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	// minCache is the minimum amount of memory in megabytes
	// to allocate to leveldb.
	minCache = 16

	// minHandles is the minimum number of files handles to
	// allocate to the open database files.
	minHandles = 32
)

type LevelDB struct {
	fn string
	db *leveldb.DB
	l  *sync.RWMutex
}

var (
	NotFound = leveldb.ErrNotFound
)

var _ Pruner = (*LevelDB)(nil)

// NewCache opens or creates the store under fpath. memory is the block
// cache budget in MiB.
func NewCache(fpath string, memory int, handles int) (*LevelDB, error) {
	_, err := os.Stat(fpath)
	if err != nil {
		err = os.MkdirAll(fpath, configs.DirMode)
		if err != nil {
			return nil, err
		}
	}
	options := configureOptions(memory, handles)
	db, err := leveldb.OpenFile(fpath, options)
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(fpath, nil)
	}
	if err != nil {
		return nil, err
	}
	return &LevelDB{
		fn: fpath,
		db: db,
		l:  new(sync.RWMutex),
	}, nil
}

func configureOptions(cache int, handles int) *opt.Options {
	options := &opt.Options{
		Filter:                 filter.NewBloomFilter(10),
		DisableSeeksCompaction: true,
	}
	if cache < minCache {
		cache = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	options.OpenFilesCacheCapacity = handles
	options.BlockCacheCapacity = cache / 2 * opt.MiB
	options.WriteBuffer = cache / 4 * opt.MiB
	return options
}

func (db *LevelDB) Path() string {
	return db.fn
}

func (db *LevelDB) Close() error {
	db.l.Lock()
	defer db.l.Unlock()
	return db.db.Close()
}

func (db *LevelDB) Has(key []byte) (bool, error) {
	db.l.RLock()
	defer db.l.RUnlock()
	return db.db.Has(key, nil)
}

func (db *LevelDB) Get(key []byte) ([]byte, error) {
	db.l.RLock()
	defer db.l.RUnlock()
	return db.db.Get(key, nil)
}

func (db *LevelDB) Put(key []byte, value []byte) error {
	db.l.Lock()
	defer db.l.Unlock()
	return db.db.Put(key, value, nil)
}

func (db *LevelDB) Delete(key []byte) error {
	db.l.Lock()
	defer db.l.Unlock()
	return db.db.Delete(key, nil)
}

func (db *LevelDB) QueryPrefixKeyList(prefix string) ([]string, error) {
	var result = make([]string, 0)
	db.l.RLock()
	defer db.l.RUnlock()
	iter := db.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	for iter.Next() {
		result = append(result, strings.TrimPrefix(string(iter.Key()), prefix))
	}
	iter.Release()
	return result, iter.Error()
}

// PrunePinned drops every read cached at block at and compacts the
// freed range. It returns the number of entries removed.
func (db *LevelDB) PrunePinned(at primitives.Hash) (int, error) {
	db.l.Lock()
	defer db.l.Unlock()
	batch := new(leveldb.Batch)
	for _, prefix := range [][]byte{PinnedKey(at, nil), AbsentKey(at, nil)} {
		iter := db.db.NewIterator(util.BytesPrefix(prefix), nil)
		for iter.Next() {
			batch.Delete(append([]byte(nil), iter.Key()...))
		}
		iter.Release()
		if err := iter.Error(); err != nil {
			return 0, err
		}
	}
	n := batch.Len()
	if err := db.db.Write(batch, nil); err != nil {
		return 0, err
	}
	return n, db.db.CompactRange(*util.BytesPrefix(PinnedKey(at, nil)))
}
