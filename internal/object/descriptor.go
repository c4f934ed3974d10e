package object

import "github.com/vesper-lang/vesper/internal/value"

// DescFlag records which fields of a Descriptor are actually present:
// an open record of optional fields, plus a bitmask describing
// which fields are present").
type DescFlag uint8

const (
	HasValue DescFlag = 1 << iota
	HasWritable
	HasGet
	HasSet
	HasEnumerable
	HasConfigurable
)

// Descriptor is a property descriptor. The data/accessor distinction is
// derived from which of HasValue/HasWritable vs HasGet/HasSet is present,
// never stored as a separate tag.
type Descriptor struct {
	Flags        DescFlag
	Value        value.Value
	Get          value.Value
	Set          value.Value
	Writable     bool
	Enumerable   bool
	Configurable bool
}

func (d Descriptor) IsAccessor() bool { return d.Flags&(HasGet|HasSet) != 0 }
func (d Descriptor) IsData() bool     { return d.Flags&(HasValue|HasWritable) != 0 }
func (d Descriptor) IsGeneric() bool  { return !d.IsAccessor() && !d.IsData() }

// DataDescriptor is a convenience constructor for the common case.
func DataDescriptor(v value.Value, writable, enumerable, configurable bool) Descriptor {
	return Descriptor{
		Flags:        HasValue | HasWritable | HasEnumerable | HasConfigurable,
		Value:        v,
		Writable:     writable,
		Enumerable:   enumerable,
		Configurable: configurable,
	}
}

func AccessorDescriptor(get, set value.Value, enumerable, configurable bool) Descriptor {
	return Descriptor{
		Flags:        HasGet | HasSet | HasEnumerable | HasConfigurable,
		Get:          get,
		Set:          set,
		Enumerable:   enumerable,
		Configurable: configurable,
	}
}

// ValidateAndApplyPropertyDescriptor implements the standard
// validity-preserving descriptor merge (testable property 4):
// current may be refined by desc (e.g. configurable:true -> false) but
// desc must never contradict a non-configurable constraint on current.
// current == nil means the property does not yet exist. Returns the merged
// descriptor to store and whether the operation succeeds.
func ValidateAndApplyPropertyDescriptor(current *Descriptor, extensible bool, desc Descriptor) (Descriptor, bool) {
	if current == nil {
		if !extensible {
			return Descriptor{}, false
		}
		return completeDescriptor(desc), true
	}

	if desc.Flags == 0 {
		return *current, true // no fields present: always a no-op success
	}

	if !current.Configurable {
		if desc.Flags&HasConfigurable != 0 && desc.Configurable {
			return Descriptor{}, false
		}
		if desc.Flags&HasEnumerable != 0 && desc.Enumerable != current.Enumerable {
			return Descriptor{}, false
		}
		if !desc.IsGeneric() && desc.IsAccessor() != current.IsAccessor() {
			return Descriptor{}, false
		}
		if current.IsData() && !current.Writable {
			if desc.IsData() {
				if desc.Flags&HasWritable != 0 && desc.Writable {
					return Descriptor{}, false
				}
				if desc.Flags&HasValue != 0 && !value.SameValue(desc.Value, current.Value) {
					return Descriptor{}, false
				}
			}
		}
		if current.IsAccessor() {
			if desc.Flags&HasGet != 0 && desc.Get.Ref() != current.Get.Ref() {
				return Descriptor{}, false
			}
			if desc.Flags&HasSet != 0 && desc.Set.Ref() != current.Set.Ref() {
				return Descriptor{}, false
			}
		}
	}

	merged := *current
	if desc.IsAccessor() && current.IsData() {
		merged = Descriptor{Flags: HasGet | HasSet}
	} else if desc.IsData() && current.IsAccessor() {
		merged = Descriptor{Flags: HasValue | HasWritable}
	}
	if desc.Flags&HasValue != 0 {
		merged.Value = desc.Value
		merged.Flags |= HasValue
	}
	if desc.Flags&HasWritable != 0 {
		merged.Writable = desc.Writable
		merged.Flags |= HasWritable
	}
	if desc.Flags&HasGet != 0 {
		merged.Get = desc.Get
		merged.Flags |= HasGet
	}
	if desc.Flags&HasSet != 0 {
		merged.Set = desc.Set
		merged.Flags |= HasSet
	}
	if desc.Flags&HasEnumerable != 0 {
		merged.Enumerable = desc.Enumerable
		merged.Flags |= HasEnumerable
	}
	if desc.Flags&HasConfigurable != 0 {
		merged.Configurable = desc.Configurable
		merged.Flags |= HasConfigurable
	}
	return merged, true
}

func completeDescriptor(desc Descriptor) Descriptor {
	if desc.IsAccessor() {
		desc.Flags |= HasGet | HasSet
	} else {
		desc.Flags |= HasValue | HasWritable
	}
	desc.Flags |= HasEnumerable | HasConfigurable
	return desc
}
