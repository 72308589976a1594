package vdom

import (
	gerrors "github.com/vango-dev/graft/internal/errors"
)

var (
	// ErrInvalidNode reports a structurally malformed tree.
	ErrInvalidNode = gerrors.New("E001")

	// ErrSlotName reports an insertion point whose name is not a string.
	ErrSlotName = gerrors.New("E002")
)

// Validate checks that v is a well formed tree. It stops at the first
// violation so callers can fail a render cycle before mutating anything.
func Validate(v *VNode) error {
	return validate(v, "root")
}

func validate(v *VNode, path string) error {
	if v == nil {
		return gerrors.New("E001").WithDetailf("%s is nil", path)
	}

	switch v.Kind {
	case KindElement:
		if v.Tag == "" {
			return gerrors.New("E001").WithDetailf("%s is an element without a tag", path)
		}
	case KindSlot:
		if name, ok := v.Props["name"]; ok {
			if _, isString := name.(string); !isString {
				return gerrors.New("E002").WithDetailf("%s declares name of type %T", path, name)
			}
		}
	case KindText:
		if len(v.Children) > 0 {
			return gerrors.New("E001").WithDetailf("%s is a text node with children", path)
		}
		return nil
	case KindProjected:
		if v.Ref == nil {
			return gerrors.New("E001").WithDetailf("%s is a projected node without a real node", path)
		}
		return nil
	case KindFragment:
	default:
		return gerrors.New("E001").WithDetailf("%s has no tag and is not text", path)
	}

	for i, child := range v.Children {
		if err := validate(child, childPath(path, v, i)); err != nil {
			return err
		}
	}
	return nil
}

func childPath(parent string, v *VNode, i int) string {
	label := v.Kind.String()
	if v.Tag != "" {
		label = "<" + v.Tag + ">"
	}
	return parent + "/" + label + "[" + itoa(i) + "]"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits [20]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}
