package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/phonebook/internal/domain"
)

const addressCachePrefix = "phonebook:address:"

type cachedAddressRepository struct {
	AddressRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedAddressRepository puts a read-through redis cache in front of
// address lookups. Cache failures fall back to the wrapped repository.
// A nil client or a non-positive ttl disables caching.
func NewCachedAddressRepository(inner AddressRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) AddressRepository {
	if cache == nil || ttl <= 0 {
		return inner
	}
	return &cachedAddressRepository{AddressRepository: inner, cache: cache, ttl: ttl, logger: logger}
}

func addressCacheKey(id int64) string {
	return addressCachePrefix + strconv.FormatInt(id, 10)
}

func (r *cachedAddressRepository) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	key := addressCacheKey(id)

	raw, err := r.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var address domain.Address
		if jsonErr := json.Unmarshal(raw, &address); jsonErr == nil {
			return &address, nil
		}
		r.logger.Warn("discarding undecodable cached address", zap.Int64("address_id", id))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("address cache read failed", zap.Int64("address_id", id), zap.Error(err))
	}

	address, err := r.AddressRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(address); err == nil {
		if err := r.cache.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("address cache write failed", zap.Int64("address_id", id), zap.Error(err))
		}
	}
	return address, nil
}

func (r *cachedAddressRepository) Update(ctx context.Context, address *domain.Address) error {
	if err := r.AddressRepository.Update(ctx, address); err != nil {
		return err
	}
	r.evict(ctx, address.ID)
	return nil
}

func (r *cachedAddressRepository) Delete(ctx context.Context, id int64) error {
	if err := r.AddressRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

func (r *cachedAddressRepository) evict(ctx context.Context, id int64) {
	if err := r.cache.Del(ctx, addressCacheKey(id)).Err(); err != nil {
		r.logger.Warn("address cache eviction failed", zap.Int64("address_id", id), zap.Error(err))
	}
}
