package vm

import (
	"fmt"
	"strings"
)

// Inspector provides debugging inspection of Values.
// It can recursively inspect objects, their slots and their own properties,
// providing a structured view of any value on a heap. Inspection never runs
// accessors and needs no mutation permit; collection is held off while it
// reads.
type Inspector struct {
	heap *Heap
}

// InspectionResult contains structured information about an inspected value.
type InspectionResult struct {
	Type       string // Undefined, Null, Boolean, SmallInt, Float, String, Object
	Value      string // String representation of the value
	ID         ObjectID
	Kind       string // For objects: script, function, native
	Proto      string // For objects: prototype ID, or empty
	ClassName  string // For native objects: the native class name
	Slots      []*InspectionResult
	Properties []PropertyInfo
}

// PropertyInfo describes one own property of an inspected object.
type PropertyInfo struct {
	Name  QName
	Kind  PropertyKind
	State AccessorState // Virtual properties only
	Value *InspectionResult
}

// DefaultMaxDepth is the default recursion depth for inspection.
const DefaultMaxDepth = 3

// NewInspector creates a new Inspector attached to the given heap.
func NewInspector(heap *Heap) *Inspector {
	return &Inspector{heap: heap}
}

// Inspect inspects a value with the default maximum depth.
func (i *Inspector) Inspect(v Value) *InspectionResult {
	return i.InspectDepth(v, DefaultMaxDepth)
}

// InspectDepth inspects a value with a specified maximum recursion depth.
// When depth reaches 0, nested objects are shown as summaries only. Depth
// also bounds cyclic object graphs.
func (i *Inspector) InspectDepth(v Value, depth int) *InspectionResult {
	var result *InspectionResult
	i.heap.View(func() { result = i.inspect(v, depth) })
	return result
}

func (i *Inspector) inspect(v Value, depth int) *InspectionResult {
	result := &InspectionResult{Type: v.TypeName()}

	switch {
	case v.IsString():
		if s, ok := i.heap.StringOf(v); ok {
			result.Value = fmt.Sprintf("%q", s)
		} else {
			result.Value = fmt.Sprintf("<string:%d>", v.StringID())
		}

	case v.IsObject():
		return i.inspectObject(v, depth)

	default:
		result.Value = v.String()
	}

	return result
}

// inspectObject handles inspection of heap-allocated objects.
func (i *Inspector) inspectObject(v Value, depth int) *InspectionResult {
	result := &InspectionResult{Type: "Object"}

	hd := v.Handle()
	if !i.heap.IsLive(hd) {
		result.Value = fmt.Sprintf("<stale object %s>", hd)
		return result
	}

	obj := i.heap.Object(hd)
	result.ID = obj.ID()
	result.Kind = obj.Kind().String()
	if p := obj.Proto(); p != nil {
		result.Proto = p.ID().String()
	}
	if n, ok := obj.(NativeObject); ok {
		result.ClassName = n.Class().Name
	}

	result.Value = fmt.Sprintf("a %s object #%s", result.Kind, result.ID)

	if depth <= 0 {
		return result
	}

	for idx := 0; idx < obj.NumSlots(); idx++ {
		slotVal, err := obj.GetSlot(uint32(idx))
		if err != nil {
			break
		}
		result.Slots = append(result.Slots, i.inspect(slotVal, depth-1))
	}

	reg := obj.Registry()
	for _, name := range reg.Names() {
		p, _ := reg.Lookup(name)
		info := PropertyInfo{Name: name, Kind: p.Kind(), State: p.State()}
		if p.Kind() == KindDynamic {
			info.Value = i.inspect(p.StoredValue(), depth-1)
		}
		result.Properties = append(result.Properties, info)
	}

	return result
}

// String returns a pretty-printed representation of the inspection result.
func (r *InspectionResult) String() string {
	return r.stringWithIndent(0)
}

// stringWithIndent creates a string representation with the given indentation level.
func (r *InspectionResult) stringWithIndent(indent int) string {
	var sb strings.Builder
	prefix := strings.Repeat("  ", indent)

	sb.WriteString(prefix)
	sb.WriteString(r.Type)
	sb.WriteString(": ")
	sb.WriteString(r.Value)
	sb.WriteString("\n")

	if r.ClassName != "" {
		sb.WriteString(prefix)
		sb.WriteString("  class: ")
		sb.WriteString(r.ClassName)
		sb.WriteString("\n")
	}
	if r.Proto != "" {
		sb.WriteString(prefix)
		sb.WriteString("  proto: #")
		sb.WriteString(r.Proto)
		sb.WriteString("\n")
	}

	if len(r.Slots) > 0 {
		sb.WriteString(prefix)
		sb.WriteString("  slots:\n")
		for idx, s := range r.Slots {
			sb.WriteString(prefix)
			sb.WriteString(fmt.Sprintf("    [%d]: %s\n", idx, s.Value))
		}
	}

	if len(r.Properties) > 0 {
		sb.WriteString(prefix)
		sb.WriteString("  properties:\n")
		for _, p := range r.Properties {
			sb.WriteString(prefix)
			sb.WriteString("    ")
			sb.WriteString(p.Name.String())
			sb.WriteString(": ")
			switch p.Kind {
			case KindDynamic:
				if p.Value != nil {
					sb.WriteString(p.Value.Value)
				}
			case KindMethod:
				sb.WriteString("<method>")
			case KindVirtual:
				sb.WriteString("<accessor ")
				sb.WriteString(p.State.String())
				sb.WriteString(">")
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
