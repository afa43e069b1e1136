package app

import (
	"encoding/json"

	badger "github.com/dgraph-io/badger/v4"
)

const cacheKeyPrefix = "tasks_user_"

// LocalCache is the embedded fallback tier for profile records. It plays
// the role browser localStorage plays for the dapp: every successful remote
// read is mirrored here, every save lands here first, and a remote outage
// degrades reads to whatever snapshot this cache holds. The cache is
// advisory, not authoritative: the remote store's value wins on reconnect.
type LocalCache struct {
	db *badger.DB
}

func NewLocalCache(dir string) (*LocalCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &LocalCache{db}, nil
}

func cacheKey(userAddress string) []byte {
	return []byte(cacheKeyPrefix + userAddress)
}

// GetProfile returns the cached snapshot for the address, or (nil, nil) if
// none is stored.
func (c *LocalCache) GetProfile(userAddress string) (*UserProfile, error) {
	var profile *UserProfile

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(userAddress))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			p := UserProfile{}
			if err := json.Unmarshal(val, &p); err != nil {
				return err
			}
			profile = &p
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return profile, nil
}

func (c *LocalCache) PutProfile(p *UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(p.UserAddress), data)
	})
}

func (c *LocalCache) Close() error {
	return c.db.Close()
}
