// Package pillar renders per-minion pillar data from operator-configured
// SQL queries. Each query binds the minion id to every placeholder and
// folds its result rows into a nested document: the leading columns
// become nested keys, the trailing columns become the leaf value.
package pillar

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/minionops/minionbase/internal/config"
	"github.com/minionops/minionbase/internal/pkg/dbutil"
)

type QuerySpec struct {
	Query      string
	Depth      int
	AsList     bool
	IgnoreNull bool
	WithLists  []int
}

type Service struct {
	db    *sql.DB
	specs []QuerySpec
}

func New(db *sql.DB, cfg config.PillarConfig) *Service {
	specs := make([]QuerySpec, 0, len(cfg.Queries))
	for _, q := range cfg.Queries {
		specs = append(specs, QuerySpec{
			Query:      q.Query,
			Depth:      q.Depth,
			AsList:     q.AsList,
			IgnoreNull: q.IgnoreNull,
			WithLists:  q.WithLists,
		})
	}
	return &Service{db: db, specs: specs}
}

// Resolve runs every configured query for the minion and merges the
// folded results in configuration order, later queries winning.
func (s *Service) Resolve(ctx context.Context, minionID string) (map[string]interface{}, error) {
	result := map[string]interface{}{}
	for i, spec := range s.specs {
		cols, rows, err := s.runQuery(ctx, spec, minionID)
		if err != nil {
			return nil, fmt.Errorf("pillar query %d: %w", i, err)
		}
		if err := Merge(result, cols, rows, spec); err != nil {
			return nil, fmt.Errorf("pillar query %d: %w", i, err)
		}
		logutil.GetLogger(ctx).Debug("pillar query folded",
			zap.Int("query", i), zap.String("minion_id", minionID), zap.Int("rows", len(rows)))
	}
	return result, nil
}

func (s *Service) runQuery(ctx context.Context, spec QuerySpec, minionID string) ([]string, [][]interface{}, error) {
	// Queries come from operator config and are trusted input: a `?`
	// inside a string literal would miscount here and confuse the
	// postgres rebind, so keep literals placeholder-free.
	n := strings.Count(spec.Query, "?")
	args := make([]interface{}, n)
	for i := range args {
		args[i] = minionID
	}
	query, args := dbutil.Finalize(spec.Query, args)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]interface{}
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range raw {
			if b, ok := v.([]byte); ok {
				raw[i] = string(b)
			}
		}
		out = append(out, raw)
	}
	return cols, out, rows.Err()
}

// Merge folds rows into result according to the query spec. The first `depth`
// columns become nested keys (depth defaults to columns-1 and is clamped
// there); a single trailing column becomes a scalar leaf, several become
// a map keyed by column name.
func Merge(result map[string]interface{}, cols []string, rows [][]interface{}, spec QuerySpec) error {
	numFields := len(cols)
	if numFields < 2 {
		return fmt.Errorf("query must return at least two columns, got %d", numFields)
	}
	depth := spec.Depth
	if depth <= 0 || depth > numFields-1 {
		depth = numFields - 1
	}
	for _, row := range rows {
		if len(row) != numFields {
			return fmt.Errorf("row has %d fields, expected %d", len(row), numFields)
		}
		node := result
		for i := 0; i < depth-1; i++ {
			k := keyString(row[i])
			child, ok := node[k].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				node[k] = child
			}
			node = child
		}
		lastKey := keyString(row[depth-1])
		var leaf interface{}
		if numFields-depth == 1 {
			leaf = row[depth]
		} else {
			m := make(map[string]interface{}, numFields-depth)
			for i := depth; i < numFields; i++ {
				m[cols[i]] = row[i]
			}
			leaf = m
		}
		if spec.IgnoreNull && leaf == nil {
			continue
		}
		if spec.AsList {
			switch existing := node[lastKey].(type) {
			case nil:
				node[lastKey] = []interface{}{leaf}
			case []interface{}:
				node[lastKey] = append(existing, leaf)
			default:
				node[lastKey] = []interface{}{existing, leaf}
			}
			continue
		}
		node[lastKey] = leaf
	}
	if len(spec.WithLists) > 0 {
		levels := make(map[int]bool, len(spec.WithLists))
		for _, lvl := range spec.WithLists {
			levels[lvl] = true
		}
		// The root stays a map: pillar data is a document, not a list.
		for k, v := range result {
			result[k] = listify(v, 2, levels)
		}
	}
	return nil
}

// listify converts maps whose keys sit at a requested level into lists
// of their values, ordered by key for determinism.
func listify(node interface{}, level int, levels map[int]bool) interface{} {
	m, ok := node.(map[string]interface{})
	if !ok {
		return node
	}
	for k, v := range m {
		m[k] = listify(v, level+1, levels)
	}
	if !levels[level] {
		return m
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]interface{}, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func keyString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
