package sstable

import (
	"fmt"
	"io"

	"citrine/internal/common"
	"citrine/internal/props"
)

// PropertyGroup holds one collector's output: the collector name and its
// (name, value) pairs in the order the collector emitted them.
type PropertyGroup struct {
	Collector  []byte
	Properties []props.Property
}

// The properties block lists one group per collector, in collector
// registration order:
//
//	[group count u32]
//	per group:
//	  collector name   (len-prefixed)
//	  [pair count u32]
//	  per pair:
//	    property name  (len-prefixed)
//	    property value (len-prefixed)

// WriteProperties appends the properties block.
func WriteProperties(w io.Writer, groups []PropertyGroup) (int, error) {
	total, err := common.WriteUint32(w, uint32(len(groups)))
	if err != nil {
		return total, fmt.Errorf("write properties group count: %w", err)
	}
	for _, g := range groups {
		n, err := common.WriteLenPrefixedBytes(w, g.Collector)
		total += n
		if err != nil {
			return total, fmt.Errorf("write collector name: %w", err)
		}
		n, err = common.WriteUint32(w, uint32(len(g.Properties)))
		total += n
		if err != nil {
			return total, fmt.Errorf("write property count: %w", err)
		}
		for _, p := range g.Properties {
			n, err = common.WriteLenPrefixedBytes(w, p.Name)
			total += n
			if err != nil {
				return total, fmt.Errorf("write property name: %w", err)
			}
			n, err = common.WriteLenPrefixedBytes(w, p.Value)
			total += n
			if err != nil {
				return total, fmt.Errorf("write property value: %w", err)
			}
		}
	}
	return total, nil
}

// ReadProperties parses a properties block, preserving group and pair
// order.
func ReadProperties(r io.Reader) ([]PropertyGroup, error) {
	groupCount, err := common.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read properties group count: %w", err)
	}
	groups := make([]PropertyGroup, 0, groupCount)
	for i := uint32(0); i < groupCount; i++ {
		collector, err := common.ReadLenPrefixedBytes(r)
		if err != nil {
			return nil, fmt.Errorf("read collector name %d: %w", i, err)
		}
		pairCount, err := common.ReadUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read property count %d: %w", i, err)
		}
		pairs := make([]props.Property, 0, pairCount)
		for j := uint32(0); j < pairCount; j++ {
			name, err := common.ReadLenPrefixedBytes(r)
			if err != nil {
				return nil, fmt.Errorf("read property name %d/%d: %w", i, j, err)
			}
			value, err := common.ReadLenPrefixedBytes(r)
			if err != nil {
				return nil, fmt.Errorf("read property value %d/%d: %w", i, j, err)
			}
			pairs = append(pairs, props.Property{Name: name, Value: value})
		}
		groups = append(groups, PropertyGroup{Collector: collector, Properties: pairs})
	}
	return groups, nil
}

// propertySink accumulates pairs pushed through a dispatch table's
// Finish. The pushed views are borrowed, so both sides are copied.
type propertySink struct {
	properties []props.Property
}

var _ props.PropertySink = (*propertySink)(nil)

func (s *propertySink) Add(name, value []byte) {
	s.properties = append(s.properties, props.Property{
		Name:  append([]byte(nil), name...),
		Value: append([]byte(nil), value...),
	})
}
