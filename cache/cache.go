// Package cache persists device hardware addresses in a JSON file.
package cache

import (
	"io/ioutil"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigado/wimax"
)

// ErrNotFound is returned by Load for an unknown device.
var ErrNotFound = errors.New("identity not cached")

type identityCache struct {
	filename string
	lock     sync.RWMutex
}

// New returns an identity cache backed by filename. The file is created on
// the first Store.
func New(filename string) wimax.IdentityCache {
	return &identityCache{filename: filename}
}

func (c *identityCache) Store(name string, a wimax.HardwareAddr) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	m, err := c.loadExisting()
	if err != nil {
		return err
	}

	m[name] = a.String()
	return c.storeCache(m)
}

func (c *identityCache) Load(name string) (wimax.HardwareAddr, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	m, err := c.loadExisting()
	if err != nil {
		return wimax.HardwareAddr{}, err
	}

	s, ok := m[name]
	if !ok {
		return wimax.HardwareAddr{}, errors.Wrapf(ErrNotFound, "%s", name)
	}
	return wimax.ParseHardwareAddr(s)
}

func (c *identityCache) loadExisting() (map[string]string, error) {
	in, err := ioutil.ReadFile(c.filename)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "can't read identity cache")
	}

	m := map[string]string{}
	if err := jsoniter.Unmarshal(in, &m); err != nil {
		return nil, errors.Wrapf(err, "can't parse %s", c.filename)
	}
	return m, nil
}

func (c *identityCache) storeCache(m map[string]string) error {
	out, err := jsoniter.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(c.filename, out, 0644)
}
