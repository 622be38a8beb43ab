package protobuf

import (
	"errors"
	"fmt"
	"os"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/resolver"
)

// ErrStaleCache is returned by ReadMappingFile when the cached digest does not
// match the wanted one.
var ErrStaleCache = errors.New("stale mapping cache")

// EncodeMapping encodes the mapping of the snapshot with the given digest as
// {digest, mapping: {path: addr}, ambiguous: {path: [addr...]}}.
func EncodeMapping(digest string, m *resolver.ThriftMapping) (*structpb.Struct, error) {
	mapping := make(map[string]interface{})
	for p, addr := range m.Mapping() {
		mapping[p] = encodeAddress(addr)
	}
	ambiguous := make(map[string]interface{})
	for p, addrs := range m.AmbiguousModules() {
		list := make([]interface{}, len(addrs))
		for i, addr := range addrs {
			list[i] = encodeAddress(addr)
		}
		ambiguous[p] = list
	}
	return structpb.NewStruct(map[string]interface{}{
		"digest":    digest,
		"mapping":   mapping,
		"ambiguous": ambiguous,
	})
}

// DecodeMapping is the inverse of EncodeMapping.
func DecodeMapping(s *structpb.Struct) (string, *resolver.ThriftMapping, error) {
	fields := s.GetFields()
	digest := fields["digest"].GetStringValue()
	if digest == "" {
		return "", nil, errors.New("mapping cache: missing digest")
	}

	mapping := make(map[string]address.Address)
	for p, v := range fields["mapping"].GetStructValue().GetFields() {
		addr, err := decodeAddress(v)
		if err != nil {
			return "", nil, fmt.Errorf("mapping cache: %s: %w", p, err)
		}
		mapping[p] = addr
	}
	ambiguous := make(map[string][]address.Address)
	for p, v := range fields["ambiguous"].GetStructValue().GetFields() {
		for _, item := range v.GetListValue().GetValues() {
			addr, err := decodeAddress(item)
			if err != nil {
				return "", nil, fmt.Errorf("mapping cache: %s: %w", p, err)
			}
			ambiguous[p] = append(ambiguous[p], addr)
		}
	}

	m := resolver.NewThriftMapping(mapping, ambiguous)
	if m == nil {
		return "", nil, errors.New("mapping cache: inconsistent partition")
	}
	return digest, m, nil
}

// ReadMappingFile reads a cached mapping.  It returns ErrStaleCache if the
// cached digest differs from digest and os.ErrNotExist if there is no cache.
func ReadMappingFile(filename, digest string) (*resolver.ThriftMapping, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, err
	}
	var s structpb.Struct
	if err := ReadFile(filename, &s); err != nil {
		return nil, err
	}
	got, m, err := DecodeMapping(&s)
	if err != nil {
		return nil, err
	}
	if got != digest {
		return nil, ErrStaleCache
	}
	return m, nil
}

// WriteMappingFile caches the mapping of the snapshot with the given digest.
func WriteMappingFile(filename, digest string, m *resolver.ThriftMapping) error {
	s, err := EncodeMapping(digest, m)
	if err != nil {
		return err
	}
	return WriteFile(filename, s)
}

func encodeAddress(addr address.Address) map[string]interface{} {
	return map[string]interface{}{
		"spec_path":          addr.SpecPath,
		"target_name":        addr.TargetName,
		"relative_file_path": addr.RelativeFilePath,
	}
}

func decodeAddress(v *structpb.Value) (address.Address, error) {
	s := v.GetStructValue()
	if s == nil {
		return address.NoAddress, errors.New("address must be an object")
	}
	f := s.GetFields()
	return address.New(
		f["spec_path"].GetStringValue(),
		f["target_name"].GetStringValue(),
		f["relative_file_path"].GetStringValue(),
	), nil
}
