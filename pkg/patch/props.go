package patch

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/vango-dev/graft/pkg/vdom"
)

// attrValue returns the serialized attribute value and whether the
// attribute is present at all. false, nil and function values are absent.
func attrValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return "", val
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case vdom.Style:
		return "", false
	}
	if reflect.ValueOf(v).Kind() == reflect.Func {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}

// propsEqual is a fast equality check for common attribute value types.
func propsEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		return false
	case int:
		if bv, ok := b.(int); ok {
			return av == bv
		}
		return false
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		return false
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

func sortedKeys(props ...vdom.Props) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, p := range props {
		for k := range p {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func sortedStyle(s vdom.Style) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// diffProps appends attribute and style operations turning prev's
// attributes into next's.
func (d *differ) diffProps(prev, next *vdom.VNode) {
	for _, key := range sortedKeys(prev.Props, next.Props) {
		pv, pok := prev.Props[key]
		nv, nok := next.Props[key]
		if pok && nok && propsEqual(pv, nv) {
			continue
		}

		if ns, isStyle := nv.(vdom.Style); isStyle {
			ps, wasStyle := pv.(vdom.Style)
			if !wasStyle {
				if _, present := attrValue(pv); present {
					d.emit(Op{Kind: OpRemoveAttr, Node: next, Key: key})
				}
			}
			d.diffStyle(next, ps, ns)
			continue
		}
		if ps, wasStyle := pv.(vdom.Style); wasStyle {
			// Style map replaced by a plain value: clear properties first.
			d.diffStyle(next, ps, nil)
		}

		oldVal, had := attrValue(pv)
		newVal, has := attrValue(nv)
		switch {
		case has && (!had || oldVal != newVal):
			d.emit(Op{Kind: OpSetAttr, Node: next, Key: key, Value: newVal})
		case !has && had:
			d.emit(Op{Kind: OpRemoveAttr, Node: next, Key: key})
		}
	}
}

func (d *differ) diffStyle(node *vdom.VNode, prev, next vdom.Style) {
	merged := make(vdom.Style, len(prev)+len(next))
	for k, v := range prev {
		merged[k] = v
	}
	for k, v := range next {
		merged[k] = v
	}
	for _, prop := range sortedStyle(merged) {
		pv, pok := prev[prop]
		nv, nok := next[prop]
		switch {
		case nok && nv != "" && (!pok || pv != nv):
			d.emit(Op{Kind: OpSetStyle, Node: node, Key: prop, Value: nv})
		case (!nok || nv == "") && pok && pv != "":
			d.emit(Op{Kind: OpSetStyle, Node: node, Key: prop})
		}
	}
}
