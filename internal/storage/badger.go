package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/totpvault/internal/common"
)

// OpenBadger opens an embedded badger store in dir. badger's own logger is
// disabled; errors surface through return values.
func OpenBadger(dir string) (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

// BadgerBlob stores a blob under a single key. Each operation runs in its own
// transaction.
type BadgerBlob struct {
	db  *badger.DB
	dir string
	key []byte
}

func NewBadgerBlob(db *badger.DB, dir, name string) *BadgerBlob {
	return &BadgerBlob{db: db, dir: dir, key: []byte("blob/" + name)}
}

func (b *BadgerBlob) Location() string { return "badger:" + b.dir + "#" + string(b.key) }

func (b *BadgerBlob) Exists(ctx context.Context) (bool, error) {
	var found bool
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(b.key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("badger get %s: %w", b.key, err)
	}
	return found, nil
}

func (b *BadgerBlob) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger read %s: %w", b.key, err)
	}
	return data, nil
}

func (b *BadgerBlob) Write(ctx context.Context, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key, data)
	})
	if err != nil {
		return fmt.Errorf("badger write %s: %w", b.key, err)
	}
	return nil
}

func (b *BadgerBlob) Create(ctx context.Context, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(b.key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(b.key, data)
	})
	if errors.Is(err, ErrAlreadyExists) {
		return ErrAlreadyExists
	}
	// A concurrent transaction wrote the key first.
	if errors.Is(err, badger.ErrConflict) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("badger create %s: %w", b.key, err)
	}
	return nil
}
