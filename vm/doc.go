// Package vm implements the object substrate of the script VM.
//
// This package contains:
//   - NaN-boxed value representation with arena handles
//   - Qualified property names and the per-object property registry
//   - Getter/setter accessor installation in either order
//   - Fixed-length slot storage
//   - Prototype links and object construction
//   - The heap arena, its mutation permit and the collector
//
// The interpreter loop, namespace resolution and class layout live
// elsewhere; they reach objects only through the Object interface.
package vm
