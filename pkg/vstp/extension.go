// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vstp

import (
	"fmt"
	"reflect"
	"sync"
)

// Compressor is the pluggable compression hook associated with the COMP
// flag bit. The core never compresses or decompresses anything itself; a
// transport that negotiates compression supplies an implementation and
// applies it to payloads before Encode and after Decode.
type Compressor interface {
	// Name identifies the algorithm, e.g. for a content-encoding header.
	Name() string

	Compress(payload []byte) ([]byte, error)
	Decompress(payload []byte) ([]byte, error)
}

// ExtensionHeader is a typed view over one protocol-extension header. The
// frame-type taxonomy is closed; all protocol extensibility lives in
// headers, and an ExtensionHeader gives a registered key a typed
// marshal/unmarshal surface.
type ExtensionHeader interface {
	// HeaderKey must return a constant key, at most HeaderFieldMax bytes.
	HeaderKey() string

	MarshalValue() ([]byte, error)
	UnmarshalValue(value []byte) error
}

// ExtensionRegistry keeps a book on ExtensionHeader types that can be
// changed at runtime, so a typed header instance can be created from a
// received (key, value) pair.
//
// A singleton ExtensionRegistry can be fetched by GetExtensionRegistry.
type ExtensionRegistry struct {
	mu   sync.Mutex
	data map[string]reflect.Type
}

// NewExtensionRegistry creates an empty ExtensionRegistry. To use a
// singleton ExtensionRegistry one can use GetExtensionRegistry.
func NewExtensionRegistry() *ExtensionRegistry {
	return &ExtensionRegistry{data: make(map[string]reflect.Type)}
}

// Register a new ExtensionHeader type through an exemplary instance.
func (er *ExtensionRegistry) Register(eh ExtensionHeader) error {
	key := eh.HeaderKey()
	if len(key) > HeaderFieldMax {
		return fmt.Errorf("header key %q exceeds %d bytes", key, HeaderFieldMax)
	}
	extType := reflect.TypeOf(eh).Elem()

	er.mu.Lock()
	defer er.mu.Unlock()

	if otherType, exists := er.data[key]; exists {
		return fmt.Errorf("header key %q is already registered for %s",
			key, otherType.Name())
	}

	er.data[key] = extType
	return nil
}

// Unregister an ExtensionHeader type through an exemplary instance.
func (er *ExtensionRegistry) Unregister(eh ExtensionHeader) {
	er.mu.Lock()
	defer er.mu.Unlock()
	delete(er.data, eh.HeaderKey())
}

// CreateHeader returns a typed instance for the requested header key,
// populated from value. An unregistered key is an error; callers treat
// such headers as opaque bytes.
func (er *ExtensionRegistry) CreateHeader(key string, value []byte) (ExtensionHeader, error) {
	er.mu.Lock()
	extType, exists := er.data[key]
	er.mu.Unlock()
	if !exists {
		return nil, fmt.Errorf("no ExtensionHeader registered for key %q", key)
	}

	eh := reflect.New(extType).Interface().(ExtensionHeader)
	if err := eh.UnmarshalValue(value); err != nil {
		return nil, err
	}
	return eh, nil
}

var (
	extensionRegistry     *ExtensionRegistry
	extensionRegistryOnce sync.Once
)

// GetExtensionRegistry returns the singleton ExtensionRegistry. It starts
// empty: unlike the frame-type enum, no extension header is privileged by
// the protocol itself.
func GetExtensionRegistry() *ExtensionRegistry {
	extensionRegistryOnce.Do(func() {
		extensionRegistry = NewExtensionRegistry()
	})
	return extensionRegistry
}
