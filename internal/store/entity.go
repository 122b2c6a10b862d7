package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides typed CRUD over documents stored under a key prefix.
//
// Each index maps a derived value to the document id under
// prefix+"idx:"+name+":"+value. Unique indexes reject a second document
// producing the same value. Ordered indexes embed the id in the value so
// several documents can share a sort position, and are read with Scan.
type Entity[T any] struct {
	store   *Store
	prefix  string
	indexes []index[T]
}

type index[T any] struct {
	name   string
	unique bool
	keyGen func(*T) []string
}

// Hit is one document reached through an index scan.
type Hit[T any] struct {
	Key   string // index value, usable as a scan cursor
	Value *T
}

// Range selects a slice of an ordered index.
type Range struct {
	Prefix  string // only values starting with Prefix
	From    string // inclusive lower bound
	To      string // exclusive upper bound
	After   string // exclusive cursor in scan direction
	Reverse bool
	Limit   int // 0 means unbounded
}

// NewEntity creates an entity stored under prefix.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{store: s, prefix: prefix}
}

// WithUniqueIndex adds an index whose values may belong to one document only.
func (e *Entity[T]) WithUniqueIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, unique: true, keyGen: keyGen})
	return e
}

// WithOrderedIndex adds a non-unique index meant for Scan. keyGen must make
// values distinct per document, normally by ending them with the id.
func (e *Entity[T]) WithOrderedIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, keyGen: keyGen})
	return e
}

func (e *Entity[T]) key(id string) []byte { return []byte(e.prefix + id) }

func (e *Entity[T]) indexKey(name, value string) []byte {
	return []byte(indexPrefix(e.prefix, name) + value)
}

// Create stores entity under id. It fails with ErrAlreadyExists when the id
// is taken, and with an *IndexConflictError when a unique index value is.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal entity: %w", err)
	}

	return e.store.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(e.key(id)); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check existing key: %w", err)
		}
		if err := e.checkUnique(txn, entity, nil); err != nil {
			return err
		}
		if err := txn.Set(e.key(id), data); err != nil {
			return fmt.Errorf("set key: %w", err)
		}
		return e.setIndexes(txn, id, entity)
	})
}

// Get loads the document with id, or ErrNotFound.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		v, err := e.load(txn, id)
		out = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether a document with id is stored.
func (e *Entity[T]) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := e.store.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(e.key(id))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

// GetByIndex resolves a unique index value to its document.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.indexKey(indexName, value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		out, err = e.load(txn, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the document with id, moving its index keys.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal entity: %w", err)
	}

	return e.store.update(func(txn *badger.Txn) error {
		old, err := e.load(txn, id)
		if err != nil {
			return err
		}
		if err := e.checkUnique(txn, entity, old); err != nil {
			return err
		}
		if err := e.deleteIndexes(txn, old); err != nil {
			return err
		}
		if err := txn.Set(e.key(id), data); err != nil {
			return fmt.Errorf("set key: %w", err)
		}
		return e.setIndexes(txn, id, entity)
	})
}

// Delete removes the document with id and its index keys. Deleting a
// missing document is ErrNotFound.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.update(func(txn *badger.Txn) error {
		old, err := e.load(txn, id)
		if err != nil {
			return err
		}
		if err := e.deleteIndexes(txn, old); err != nil {
			return err
		}
		if err := txn.Delete(e.key(id)); err != nil {
			return fmt.Errorf("delete key: %w", err)
		}
		return nil
	})
}

// List iterates every document in key order.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return err
				}
				if strings.HasPrefix(string(it.Item().Key()[len(e.prefix):]), "idx:") {
					continue
				}
				var v T
				if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &v) }); err != nil {
					yield(nil, fmt.Errorf("unmarshal entity: %w", err))
					return err
				}
				if !yield(&v, nil) {
					return nil
				}
			}
			return nil
		})
	}
}

// Scan walks an ordered index within r and yields the documents it points
// at. Index entries whose document has vanished are skipped.
func (e *Entity[T]) Scan(ctx context.Context, indexName string, r Range) iter.Seq2[Hit[T], error] {
	return func(yield func(Hit[T], error) bool) {
		base := indexPrefix(e.prefix, indexName)
		scanPrefix := []byte(base + r.Prefix)

		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = scanPrefix
			opts.Reverse = r.Reverse
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()

			n := 0
			for it.Seek([]byte(base + r.seek())); it.ValidForPrefix(scanPrefix); it.Next() {
				if err := ctx.Err(); err != nil {
					yield(Hit[T]{}, err)
					return err
				}
				value := string(it.Item().Key()[len(base):])
				skip, stop := r.bounds(value)
				if stop {
					return nil
				}
				if skip {
					continue
				}

				id, err := it.Item().ValueCopy(nil)
				if err != nil {
					yield(Hit[T]{}, err)
					return err
				}
				doc, err := e.load(txn, string(id))
				if errors.Is(err, ErrNotFound) {
					e.store.logWarn(ctx, "dangling index entry", "index", indexName, "id", string(id))
					continue
				}
				if err != nil {
					yield(Hit[T]{}, err)
					return err
				}
				if !yield(Hit[T]{Key: value, Value: doc}, nil) {
					return nil
				}
				n++
				if r.Limit > 0 && n >= r.Limit {
					return nil
				}
			}
			return nil
		})
	}
}

// Count returns how many index entries start with prefix.
func (e *Entity[T]) Count(ctx context.Context, indexName, prefix string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p := []byte(indexPrefix(e.prefix, indexName) + prefix)
	n := 0
	err := e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// seek is the index value iteration starts from.
func (r Range) seek() string {
	if r.Reverse {
		start := r.Prefix + "\xff"
		if r.To != "" && r.To < start {
			start = r.To
		}
		if r.After != "" && r.After < start {
			start = r.After
		}
		return start
	}
	start := r.Prefix
	if r.From > start {
		start = r.From
	}
	if r.After > start {
		start = r.After
	}
	return start
}

// bounds classifies value: skip it, or stop the scan altogether.
func (r Range) bounds(value string) (skip, stop bool) {
	if r.Reverse {
		if r.From != "" && value < r.From {
			return false, true
		}
		return (r.After != "" && value >= r.After) || (r.To != "" && value >= r.To), false
	}
	if r.To != "" && value >= r.To {
		return false, true
	}
	return r.After != "" && value <= r.After, false
}

func (e *Entity[T]) load(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(e.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get key: %w", err)
	}
	var v T
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &v) }); err != nil {
		return nil, fmt.Errorf("unmarshal entity: %w", err)
	}
	return &v, nil
}

// checkUnique rejects unique index values owned by another document. Values
// old already holds are the document's own and pass.
func (e *Entity[T]) checkUnique(txn *badger.Txn, entity, old *T) error {
	for _, idx := range e.indexes {
		if !idx.unique {
			continue
		}
		own := map[string]bool{}
		if old != nil {
			for _, v := range idx.keyGen(old) {
				own[v] = true
			}
		}
		for _, v := range idx.keyGen(entity) {
			if own[v] {
				continue
			}
			_, err := txn.Get(e.indexKey(idx.name, v))
			if err == nil {
				return &IndexConflictError{Index: idx.name, Value: v}
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) setIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Set(e.indexKey(idx.name, v), []byte(id)); err != nil {
				return fmt.Errorf("set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexes(txn *badger.Txn, entity *T) error {
	for _, idx := range e.indexes {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Delete(e.indexKey(idx.name, v)); err != nil {
				return fmt.Errorf("delete index key: %w", err)
			}
		}
	}
	return nil
}
