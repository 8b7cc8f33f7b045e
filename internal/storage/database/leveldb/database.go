package leveldb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/LeJamon/goEscrowd/internal/storage/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type DB struct {
	db *leveldb.DB
}

// Open opens or creates the LevelDB directory name under dir. cacheSize is
// the block cache capacity in bytes, 0 for the default.
func Open(dir, name string, cacheSize int) (*DB, error) {
	o := &opt.Options{}
	if cacheSize > 0 {
		o.BlockCacheCapacity = cacheSize
	}

	db, err := leveldb.OpenFile(filepath.Join(dir, name+".ldb"), o)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}
	return &DB{db: db}, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return database.ErrKeyNotFound
	case errors.Is(err, leveldb.ErrClosed):
		return database.ErrDBClosed
	default:
		return err
	}
}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err != nil {
		return nil, mapErr(err)
	}
	return value, nil
}

func (l *DB) Write(ctx context.Context, key, value []byte) error {
	return mapErr(l.db.Put(key, value, &opt.WriteOptions{Sync: true}))
}

func (l *DB) Delete(ctx context.Context, key []byte) error {
	return mapErr(l.db.Delete(key, &opt.WriteOptions{Sync: true}))
}

func (l *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			batch.Put(op.Key, op.Value)
		case database.BatchDelete:
			batch.Delete(op.Key)
		default:
			return fmt.Errorf("%w: %d", database.ErrUnknownBatchOp, op.Type)
		}
	}
	return mapErr(l.db.Write(batch, &opt.WriteOptions{Sync: true}))
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	iter := l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	if err := iter.Error(); err != nil {
		iter.Release()
		return nil, mapErr(err)
	}
	return &Iterator{iter: iter}, nil
}

func (l *DB) Close() error {
	return mapErr(l.db.Close())
}

type Iterator struct {
	iter iterator.Iterator
}

func (it *Iterator) Next() bool { return it.iter.Next() }

// Key and Value copy out of the iterator's reused buffers.
func (it *Iterator) Key() []byte   { return append([]byte(nil), it.iter.Key()...) }
func (it *Iterator) Value() []byte { return append([]byte(nil), it.iter.Value()...) }

func (it *Iterator) Error() error { return mapErr(it.iter.Error()) }

func (it *Iterator) Close() error {
	it.iter.Release()
	return nil
}
