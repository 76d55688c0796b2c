package database

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Memory is an in-process Gateway used by the tests. It keeps documents
// as bson maps and interprets the filter and update operators the
// repositories actually issue; anything else panics so a test never
// passes on silently ignored semantics.
type Memory struct {
	mu          sync.Mutex
	collections map[string][]bson.M
}

// NewMemory returns an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]bson.M)}
}

func (m *Memory) FindMany(_ context.Context, collection string, filter bson.M, sortSpec bson.D, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []bson.M
	for _, doc := range m.collections[collection] {
		if matchFilter(doc, filter) {
			matched = append(matched, doc)
		}
	}
	sortDocs(matched, sortSpec)
	return decodeDocs(matched, out)
}

func (m *Memory) FindOne(_ context.Context, collection string, filter bson.M, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range m.collections[collection] {
		if matchFilter(doc, filter) {
			return decodeDoc(doc, out)
		}
	}
	return ErrNoDocument
}

func (m *Memory) InsertOne(_ context.Context, collection string, doc any) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := bson.M{}
	if err := decodeDoc(toDoc(doc), &stored); err != nil {
		return primitive.NilObjectID, err
	}

	id, ok := stored["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		stored["_id"] = id
	}
	m.collections[collection] = append(m.collections[collection], stored)
	return id, nil
}

func (m *Memory) UpdateOne(_ context.Context, collection string, filter bson.M, update any, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, doc := range m.collections[collection] {
		if !matchFilter(doc, filter) {
			continue
		}
		updated, err := applyUpdate(doc, update)
		if err != nil {
			return err
		}
		m.collections[collection][i] = updated
		return decodeDoc(updated, out)
	}
	return ErrNoDocument
}

func (m *Memory) DeleteOne(_ context.Context, collection string, filter bson.M) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collections[collection]
	for i, doc := range docs {
		if matchFilter(doc, filter) {
			m.collections[collection] = append(docs[:i], docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) DeleteMany(_ context.Context, collection string, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []bson.M
	var removed int64
	for _, doc := range m.collections[collection] {
		if matchFilter(doc, filter) {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	m.collections[collection] = kept
	return removed, nil
}

func (m *Memory) AggregateJoin(_ context.Context, collection string, join JoinSpec, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	foreign := m.collections[join.From]
	var joined []bson.M
	for _, doc := range m.collections[collection] {
		for _, fdoc := range foreign {
			if valuesEqual(fdoc[join.ForeignField], doc[join.LocalField]) {
				merged := bson.M{}
				for k, v := range doc {
					merged[k] = v
				}
				merged[join.As] = fdoc
				joined = append(joined, merged)
				break
			}
		}
	}
	sortDocs(joined, join.Sort)
	return decodeDocs(joined, out)
}

func (m *Memory) Close(context.Context) error { return nil }

// Count returns the number of stored documents in a collection. Test
// helper only.
func (m *Memory) Count(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.collections[collection])
}

// ── document plumbing ──

func toDoc(v any) bson.M {
	if d, ok := v.(bson.M); ok {
		return d
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("memory: marshal: %v", err))
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		panic(fmt.Sprintf("memory: unmarshal: %v", err))
	}
	return doc
}

func decodeDoc(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("memory: encoding document: %w", err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("memory: decoding document: %w", err)
	}
	return nil
}

func decodeDocs(docs []bson.M, out any) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("memory: out must be a pointer to slice, got %T", out)
	}
	slice := v.Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(docs))
	for _, doc := range docs {
		elem := reflect.New(slice.Type().Elem())
		if err := decodeDoc(doc, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	slice.Set(result)
	return nil
}

// ── filter matching ──

func matchFilter(doc bson.M, filter bson.M) bool {
	for field, cond := range filter {
		val := doc[field]
		if ops, ok := cond.(bson.M); ok && hasOperator(ops) {
			if !matchOperators(val, ops) {
				return false
			}
			continue
		}
		if !valuesEqual(val, cond) {
			return false
		}
	}
	return true
}

func hasOperator(m bson.M) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func matchOperators(val any, ops bson.M) bool {
	for op, arg := range ops {
		switch op {
		case "$regex":
			pattern, _ := arg.(string)
			if opts, _ := ops["$options"].(string); strings.Contains(opts, "i") {
				pattern = "(?i)" + pattern
			}
			s, ok := val.(string)
			if !ok || !regexp.MustCompile(pattern).MatchString(s) {
				return false
			}
		case "$options":
			// consumed with $regex
		case "$gt":
			if !numericLess(arg, val) {
				return false
			}
		case "$in":
			if !containsValue(arg, val) {
				return false
			}
		default:
			panic(fmt.Sprintf("memory: unsupported filter operator %q", op))
		}
	}
	return true
}

func containsValue(list any, val any) bool {
	lv := reflect.ValueOf(list)
	if lv.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < lv.Len(); i++ {
		if valuesEqual(val, lv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

// ── updates ──

func applyUpdate(doc bson.M, update any) (bson.M, error) {
	working := bson.M{}
	for k, v := range doc {
		working[k] = v
	}

	switch u := update.(type) {
	case bson.M:
		set, ok := u["$set"].(bson.M)
		if !ok || len(u) != 1 {
			return nil, fmt.Errorf("memory: unsupported update document %v", u)
		}
		for k, v := range set {
			working[k] = v
		}
	case mongo.Pipeline:
		for _, stage := range u {
			if len(stage) != 1 || stage[0].Key != "$set" {
				return nil, fmt.Errorf("memory: unsupported pipeline stage %v", stage)
			}
			fields, ok := stage[0].Value.(bson.M)
			if !ok {
				return nil, fmt.Errorf("memory: unsupported $set value %v", stage[0].Value)
			}
			// Evaluate every expression against the pre-stage document,
			// then assign, matching aggregation stage semantics.
			staged := make(map[string]any, len(fields))
			for k, expr := range fields {
				staged[k] = evalExpr(working, expr)
			}
			for k, v := range staged {
				working[k] = v
			}
		}
	default:
		return nil, fmt.Errorf("memory: unsupported update type %T", update)
	}

	normalized := bson.M{}
	if err := decodeDoc(working, &normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

func evalExpr(doc bson.M, expr any) any {
	switch e := expr.(type) {
	case string:
		if strings.HasPrefix(e, "$") {
			return doc[strings.TrimPrefix(e, "$")]
		}
		return e
	case bson.M:
		if len(e) != 1 {
			panic(fmt.Sprintf("memory: unsupported expression %v", e))
		}
		for op, arg := range e {
			args := evalArgs(doc, arg)
			switch op {
			case "$max":
				return maxNumeric(args)
			case "$subtract":
				return toFloat(args[0]) - toFloat(args[1])
			case "$cond":
				if cond, _ := args[0].(bool); cond {
					return args[1]
				}
				return args[2]
			case "$eq":
				return valuesEqual(args[0], args[1])
			default:
				panic(fmt.Sprintf("memory: unsupported expression operator %q", op))
			}
		}
		return nil
	default:
		return expr
	}
}

func evalArgs(doc bson.M, arg any) []any {
	list, ok := arg.(bson.A)
	if !ok {
		panic(fmt.Sprintf("memory: expression arguments must be bson.A, got %T", arg))
	}
	out := make([]any, len(list))
	for i, a := range list {
		out[i] = evalExpr(doc, a)
	}
	return out
}

func maxNumeric(args []any) float64 {
	m := toFloat(args[0])
	for _, a := range args[1:] {
		if f := toFloat(a); f > m {
			m = f
		}
	}
	return m
}

// ── value comparison ──

func valuesEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	if at, aok := asTime(a); aok {
		bt, bok := asTime(b)
		return bok && at.Equal(bt)
	}
	if aid, aok := a.(primitive.ObjectID); aok {
		bid, bok := b.(primitive.ObjectID)
		return bok && aid == bid
	}
	return reflect.DeepEqual(a, b)
}

func numericLess(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return aok && bok && af < bf
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toFloat(v any) float64 {
	f, ok := asFloat(v)
	if !ok {
		panic(fmt.Sprintf("memory: expected numeric value, got %T", v))
	}
	return f
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	}
	return time.Time{}, false
}

func sortDocs(docs []bson.M, spec bson.D) {
	if len(spec) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, s := range spec {
			dir, _ := asFloat(s.Value)
			c := compareValues(docs[i][s.Key], docs[j][s.Key])
			if c == 0 {
				continue
			}
			if dir < 0 {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareValues(a, b any) int {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if at, aok := asTime(a); aok {
		if bt, bok := asTime(b); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			}
			return 0
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs)
		}
	}
	return 0
}
