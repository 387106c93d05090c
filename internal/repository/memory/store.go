// Package memory 进程内存储，用于本地演示和接口测试，数据不落盘
package memory

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/storefront/internal/datamodels/query"
)

// table 单个集合，T 为实体类型
type table[T any] struct {
	mu      sync.RWMutex
	rows    map[string]*T
	id      func(*T) string
	created func(*T) time.Time
	// deepCopy 复制切片、指针等共享字段，行内外互不影响
	deepCopy func(*T)
}

func newTable[T any](id func(*T) string, created func(*T) time.Time) *table[T] {
	return &table[T]{rows: make(map[string]*T), id: id, created: created}
}

func (t *table[T]) clone(v *T) *T {
	cp := *v
	if t.deepCopy != nil {
		t.deepCopy(&cp)
	}
	return &cp
}

func (t *table[T]) get(id string) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		return nil, query.ErrNotFound
	}
	return t.clone(row), nil
}

func (t *table[T]) insert(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.id(v)
	if _, ok := t.rows[id]; ok {
		return query.ErrDuplicate
	}
	t.rows[id] = t.clone(v)
	return nil
}

func (t *table[T]) replace(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.id(v)
	if _, ok := t.rows[id]; !ok {
		return query.ErrNotFound
	}
	t.rows[id] = t.clone(v)
	return nil
}

func (t *table[T]) remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return query.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

// find 返回按创建时间升序排列的匹配记录
func (t *table[T]) find(match func(*T) bool) []*T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*T, 0, len(t.rows))
	for _, row := range t.rows {
		if match == nil || match(row) {
			out = append(out, t.clone(row))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := t.created(out[i]), t.created(out[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return t.id(out[i]) < t.id(out[j])
	})
	return out
}

// list 按 query.Options 排序并分页，未指定排序时按创建时间倒序
func (t *table[T]) list(match func(*T) bool, opts query.Options, sortable map[string]bool) []*T {
	rows := t.find(match)
	sorts := opts.SortFields(sortable)
	if len(sorts) == 0 {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	} else {
		sortRows(rows, sorts)
	}
	if opts.Limit <= 0 {
		return rows
	}
	start := opts.Skip()
	if start < 0 || start >= len(rows) {
		return []*T{}
	}
	end := start + opts.Limit
	if end > len(rows) || end < start {
		end = len(rows)
	}
	return rows[start:end]
}

// sortRows 借助 JSON 字段名取值比较
func sortRows[T any](rows []*T, sorts []query.SortField) {
	fields := make([]map[string]any, len(rows))
	for i, r := range rows {
		fields[i] = jsonFields(r)
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for _, s := range sorts {
			c := compare(fields[idx[a]][s.Field], fields[idx[b]][s.Field])
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	sorted := make([]*T, len(rows))
	for i, k := range idx {
		sorted[i] = rows[k]
	}
	copy(rows, sorted)
}

func jsonFields(v any) map[string]any {
	m := map[string]any{}
	b, err := json.Marshal(v)
	if err != nil {
		return m
	}
	_ = json.Unmarshal(b, &m)
	return m
}

func compare(a, b any) int {
	switch av := a.(type) {
	case float64:
		bv, _ := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case bool:
		bv, _ := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}
