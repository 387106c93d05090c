package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/datamodels/address"
	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/validation"
)

// AddressService 地址簿：按全字段去重的幂等保存
type AddressService struct {
	repo address.Repository
	now  func() time.Time
}

func NewAddressService(repo address.Repository) *AddressService {
	return &AddressService{repo: repo, now: time.Now}
}

// Save 已存在完全相同的地址时直接返回，created 为 false
func (s *AddressService) Save(ctx context.Context, userID string, d address.Details) (a *address.Address, created bool, err error) {
	if userID != "" && !query.ValidID(userID) {
		return nil, false, errInvalidID
	}
	if err := validation.Address(d); err != nil {
		return nil, false, err
	}

	candidate := &address.Address{User: userID, Details: d}
	existing, err := s.repo.FindMatch(ctx, candidate.Key())
	switch {
	case err == nil:
		zap.L().Debug("address already exists, skipping", zap.String("id", existing.ID))
		return existing, false, nil
	case !errors.Is(err, query.ErrNotFound):
		return nil, false, storeErr("address.find_match", err)
	}

	now := s.now()
	candidate.ID = query.NewID()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, false, storeErr("address.create", err)
	}
	return candidate, true, nil
}

// RemoveDuplicates 每个去重键保留最早的一条，返回删除条数
func (s *AddressService) RemoveDuplicates(ctx context.Context) (int64, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, storeErr("address.list", err)
	}

	seen := make(map[address.Key]bool, len(all))
	var dups []string
	for _, a := range all {
		k := a.Key()
		if seen[k] {
			dups = append(dups, a.ID)
			continue
		}
		seen[k] = true
	}
	if len(dups) == 0 {
		return 0, nil
	}

	n, err := s.repo.DeleteMany(ctx, dups)
	if err != nil {
		return 0, storeErr("address.delete_many", err)
	}
	return n, nil
}
