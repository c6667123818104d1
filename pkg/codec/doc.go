// Package codec packs and unpacks location descriptors for MuninDB.
//
// Every record slot in the store's index table holds one 64-bit packed
// location descriptor telling the store where that record's payload
// lives inside the arena.
//
// # Descriptor Format
//
// A packed descriptor has the following bit layout (most significant
// bits first):
//
//	[Kind(8)][Size(16)][PageOffset(40)]
//
// Fields:
//   - Kind: record state. 0 = unallocated, 1 = materialized record,
//     2 = preallocated placeholder.
//   - Size: payload length in bytes. At most one page.
//   - PageOffset: byte offset of the record's page inside the arena,
//     always a multiple of the page size. 40 bits address up to 1 TiB.
//
// A packed value of exactly 0 means the slot is unallocated; page
// offset 0 is never handed out, so a live descriptor can never collide
// with the unallocated marker.
//
// # Validation
//
// Pack and Unpack are pure bit operations. They do not validate the
// caller's invariants (size within one page, offset page-aligned);
// the store enforces those before a descriptor is ever built. This is
// the only package that interprets descriptor bits; everything else
// treats packed values as opaque zero/nonzero words.
package codec
