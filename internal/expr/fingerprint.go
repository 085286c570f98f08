package expr

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"time"
	"unicode/utf16"
)

// DomainExpression prefixes expression fingerprints. The version suffix
// leaves room for changing the encoding.
const DomainExpression = "exprql/expression/v2"

// Fingerprint returns a stable hex SHA-256 of e's canonical encoding.
// Two trees have the same fingerprint exactly when Equal reports them
// equal, so the result can key maps for tree deduplication.
//
// Format: SHA256(domain + 0x00 + canonical JSON)
func Fingerprint(e Expression) string {
	h := sha256.New()
	h.Write([]byte(DomainExpression))
	h.Write([]byte{0x00})
	h.Write(MarshalCanonical(e))
	return hex.EncodeToString(h.Sum(nil))
}

// MarshalCanonical encodes e as canonical JSON: object keys sorted by
// UTF-16 code units, no HTML escaping. Constant values are tagged with
// their Go type so that the encoding distinguishes exactly what Equal
// distinguishes.
func MarshalCanonical(e Expression) []byte {
	var buf bytes.Buffer
	writeCanonical(&buf, encodeNode(e))
	return buf.Bytes()
}

type object map[string]any

func encodeNode(e Expression) any {
	if e == nil {
		return nil
	}
	obj := object{"type": encodeType(e.ResultType())}
	switch n := e.(type) {
	case *Constant:
		obj["kind"] = "constant"
		obj["value"] = encodeValue(n.value)
	case *Path:
		obj["kind"] = "path"
		obj["path_type"] = n.meta.Type.String()
		obj["parent"] = encodeNode(n.meta.Parent)
		if n.meta.Type != PathDelegate {
			obj["element"] = encodeNode(n.meta.Element)
		}
	case *Operation:
		obj["kind"] = "operation"
		obj["op"] = n.op.String()
		obj["args"] = encodeNodes(n.args)
	case *TemplateExpr:
		obj["kind"] = "template"
		obj["pattern"] = n.tmpl.Pattern()
		obj["args"] = encodeNodes(n.args)
	case *Projection:
		obj["kind"] = "projection"
		obj["args"] = encodeNodes(n.args)
	case *ArrayConstructor:
		obj["kind"] = "array"
		obj["args"] = encodeNodes(n.args)
	case *SubQuery:
		obj["kind"] = "subquery"
		obj["meta"] = encodeMetadata(n.meta)
	}
	return obj
}

func encodeNodes(es []Expression) []any {
	out := make([]any, len(es))
	for i, e := range es {
		out[i] = encodeNode(e)
	}
	return out
}

func encodeType(t *Type) any {
	if t == nil {
		return nil
	}
	return object{"name": t.Name, "kind": t.Kind.String()}
}

func encodeMetadata(m *Metadata) any {
	sources := make([]Expression, len(m.Sources))
	for i, s := range m.Sources {
		sources[i] = s
	}
	order := make([]any, len(m.OrderBy))
	for i, o := range m.OrderBy {
		order[i] = object{"target": encodeNode(o.Target), "desc": o.Desc}
	}
	obj := object{
		"distinct":   m.Distinct,
		"projection": encodeNodes(m.Projection),
		"sources":    encodeNodes(sources),
		"where":      encodeNode(m.Where),
		"group_by":   encodeNodes(m.GroupBy),
		"having":     encodeNode(m.Having),
		"order_by":   order,
	}
	if m.Limit != nil {
		obj["limit"] = *m.Limit
	}
	if m.Offset != nil {
		obj["offset"] = *m.Offset
	}
	return obj
}

// encodeValue maps constant values onto canonical JSON values. Numbers
// and sequences carry their Go type, strings keep their exact bytes.
// Factories are opaque and encode by identity.
func encodeValue(v any) any {
	switch val := v.(type) {
	case nil, bool:
		return val
	case string:
		return rawString(val)
	case int, int8, int16, int32, int64:
		return object{goType(v): reflect.ValueOf(v).Int()}
	case uint, uint8, uint16, uint32, uint64, uintptr:
		return object{goType(v): rawString(strconv.FormatUint(reflect.ValueOf(v).Uint(), 10))}
	case float32:
		return object{"float32": float64(val)}
	case float64:
		return object{"float64": val}
	case *big.Float:
		if val == nil {
			return object{"decimal": nil}
		}
		return object{"decimal": rawString(val.Text('p', 0))}
	case time.Time:
		return object{"date": rawString(val.UTC().Format(time.RFC3339Nano)), "zone": rawString(val.Location().String())}
	case *Type:
		return object{"class": encodeType(val)}
	case Factory:
		return object{"factory": rawString(fmt.Sprintf("%p", val))}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return object{"nil": goType(v)}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = encodeValue(rv.Index(i).Interface())
		}
		return object{goType(v): out}
	}
	return object{"go": rawString(fmt.Sprintf("%T:%#v", v, v))}
}

// canonicalValue is the canonical encoding of a single constant value.
// Constants are equal exactly when these bytes are.
func canonicalValue(v any) []byte {
	var buf bytes.Buffer
	writeCanonical(&buf, encodeValue(v))
	return buf.Bytes()
}

func goType(v any) string { return fmt.Sprintf("%T", v) }

// rawString is a string written verbatim.
type rawString string

func writeCanonical(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			writeCanonicalString(buf, strconv.FormatFloat(val, 'g', -1, 64))
			return
		}
		buf.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case string:
		writeCanonicalString(buf, val)
	case rawString:
		writeCanonicalString(buf, string(val))
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, elem)
		}
		buf.WriteByte(']')
	case object:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return lessUTF16(keys[i], keys[j]) })
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			writeCanonical(buf, val[k])
		}
		buf.WriteByte('}')
	default:
		writeCanonicalString(buf, fmt.Sprint(val))
	}
}

// writeCanonicalString writes s as a JSON string without HTML escaping.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
}

func lessUTF16(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}
