package service

import (
	"errors"
	"fmt"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/datamodels/query"
)

var errInvalidID = apperr.Validation("Invalid ID format")

func checkID(id string) error {
	if !query.ValidID(id) {
		return errInvalidID
	}
	return nil
}

// storeErr 记录存储错误并带上操作名，交由上层按 500 处理
func storeErr(op string, err error) error {
	GetMonitor().RecordDBError(op)
	return fmt.Errorf("%s: %w", op, err)
}

// lookupErr 记录不存在时转成 NotFound，其余按存储错误处理
func lookupErr(op string, err error, notFoundMsg string) error {
	if errors.Is(err, query.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return storeErr(op, err)
}

// writeErr 唯一索引冲突转成 Conflict
func writeErr(op string, err error, conflictMsg string) error {
	if errors.Is(err, query.ErrDuplicate) {
		return apperr.Conflict(conflictMsg)
	}
	return storeErr(op, err)
}
