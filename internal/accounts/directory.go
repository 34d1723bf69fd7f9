package accounts

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Directory owns the mapping from Discord user ID to linked account.
// It is loaded once from a JSON file and every mutation is flushed back to that
// file before the call returns. It is safe for concurrent use.
type Directory struct {
	path string

	mu      sync.RWMutex
	records map[string]record
	order   []string // insertion order of owner IDs
}

// Open loads the directory stored at path. A missing file yields an empty directory.
func Open(path string) (*Directory, error) {
	records, err := readStore(path)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0, len(records))
	for id := range records {
		order = append(order, id)
	}
	sort.Strings(order)

	return &Directory{
		path:    path,
		records: records,
		order:   order,
	}, nil
}

// Path returns the backing file path
func (d *Directory) Path() string {
	return d.path
}

// Link creates or overwrites the linked account for ownerID
func (d *Directory) Link(ownerID, platform, username string) (LinkedAccount, error) {
	p, err := ParsePlatform(platform)
	if err != nil {
		return LinkedAccount{}, fmt.Errorf("%w: %q", err, platform)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return LinkedAccount{}, ErrInvalidUsername
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	prev, existed := d.records[ownerID]
	d.records[ownerID] = record{Platform: string(p), Username: username, extra: prev.extra}
	if !existed {
		d.order = append(d.order, ownerID)
	}

	if err := d.flushLocked(); err != nil {
		if existed {
			d.records[ownerID] = prev
		} else {
			delete(d.records, ownerID)
			d.order = d.order[:len(d.order)-1]
		}
		return LinkedAccount{}, err
	}

	return LinkedAccount{OwnerID: ownerID, Platform: p, Username: username}, nil
}

// Unlink removes the linked account for ownerID and reports whether one existed
func (d *Directory) Unlink(ownerID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev, ok := d.records[ownerID]
	if !ok {
		return false, nil
	}

	delete(d.records, ownerID)
	if err := d.flushLocked(); err != nil {
		d.records[ownerID] = prev
		return false, err
	}
	d.removeFromOrder(ownerID)

	return true, nil
}

// ChangePlatform switches the platform of an existing linked account
func (d *Directory) ChangePlatform(ownerID, platform string) (LinkedAccount, error) {
	p, err := ParsePlatform(platform)
	if err != nil {
		return LinkedAccount{}, fmt.Errorf("%w: %q", err, platform)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	prev, ok := d.records[ownerID]
	if !ok {
		return LinkedAccount{}, ErrNotLinked
	}

	updated := prev
	updated.Platform = string(p)
	d.records[ownerID] = updated
	if err := d.flushLocked(); err != nil {
		d.records[ownerID] = prev
		return LinkedAccount{}, err
	}

	return LinkedAccount{OwnerID: ownerID, Platform: p, Username: updated.Username}, nil
}

// Get returns the linked account for ownerID, if any
func (d *Directory) Get(ownerID string) (LinkedAccount, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.records[ownerID]
	if !ok {
		return LinkedAccount{}, false
	}
	return toAccount(ownerID, r), true
}

// All returns a snapshot of every linked account in insertion order
func (d *Directory) All() []LinkedAccount {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]LinkedAccount, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, toAccount(id, d.records[id]))
	}
	return out
}

// Len returns the number of linked accounts
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// flushLocked writes the full mapping to disk. Callers must hold the write lock.
func (d *Directory) flushLocked() error {
	return writeStore(d.path, d.records)
}

func (d *Directory) removeFromOrder(ownerID string) {
	for i, id := range d.order {
		if id == ownerID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			return
		}
	}
}

func toAccount(ownerID string, r record) LinkedAccount {
	return LinkedAccount{
		OwnerID:  ownerID,
		Platform: Platform(r.Platform),
		Username: r.Username,
	}
}
