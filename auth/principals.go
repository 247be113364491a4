package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/andrebq/yogastudio/internal/logutil"
	"github.com/andrebq/yogastudio/studio"
)

type (
	// UserFinder is the part of the studio store needed to resolve principals.
	UserFinder interface {
		LookupUserByEmail(ctx context.Context, email string) (studio.User, bool, error)
	}

	// PrincipalLoader resolves a username into a Principal, keeping
	// recently used principals in memory for a short while.
	PrincipalLoader struct {
		users UserFinder
		cache *bigcache.BigCache
		ttl   time.Duration
		now   func() time.Time
	}

	cachedPrincipal struct {
		Principal
		Hash     string `json:"hash"`
		LoadedAt int64  `json:"loadedAt"`
	}
)

// DefaultPrincipalTTL is how long a principal is served from memory
// before the store is asked again.
//
// bigcache only evicts on its cleanup sweep, so each entry carries the
// time it was loaded and stale entries are ignored on read.
const DefaultPrincipalTTL = time.Minute

func NewPrincipalLoader(users UserFinder, ttl time.Duration) (*PrincipalLoader, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.CleanWindow = ttl
	cfg.Shards = 64
	cfg.MaxEntriesInWindow = 1024
	cfg.MaxEntrySize = 512
	cfg.Verbose = false
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("auth: unable to create principal cache, cause %w", err)
	}
	return &PrincipalLoader{
		users: users,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

// LoadPrincipal returns the principal for username or UnknownUser
// if no account is registered under it.
func (p *PrincipalLoader) LoadPrincipal(ctx context.Context, username string) (Principal, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	log := logutil.GetOrDefault(ctx)
	if buf, err := p.cache.Get(username); err == nil {
		var cached cachedPrincipal
		err = json.Unmarshal(buf, &cached)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("username", username).Msg("Discarding unreadable cache entry")
		case p.now().Sub(time.UnixMilli(cached.LoadedAt)) < p.ttl:
			cached.PasswordHash = cached.Hash
			return cached.Principal, nil
		}
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		log.Warn().Err(err).Msg("Unable to read principal cache")
	}
	u, found, err := p.users.LookupUserByEmail(ctx, username)
	if err != nil {
		return Principal{}, err
	} else if !found {
		return Principal{}, UnknownUser{Username: username}
	}
	principal := PrincipalOf(u)
	if buf, err := json.Marshal(cachedPrincipal{Principal: principal, Hash: principal.PasswordHash, LoadedAt: p.now().UnixMilli()}); err == nil {
		if err := p.cache.Set(username, buf); err != nil {
			log.Warn().Err(err).Msg("Unable to cache principal")
		}
	}
	return principal, nil
}

// Forget drops username from the cache, the next load reaches the store.
func (p *PrincipalLoader) Forget(username string) {
	err := p.cache.Delete(strings.ToLower(strings.TrimSpace(username)))
	if err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		log := logutil.GetOrDefault(context.Background())
		log.Warn().Err(err).Msg("Unable to evict principal")
	}
}

func (p *PrincipalLoader) Close() error {
	return p.cache.Close()
}
