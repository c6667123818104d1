package store

import "github.com/munindb/munin/pkg/serde"

// Typed record operations. Go methods cannot take type parameters, so
// the serializer-aware half of the protocol lives in package-level
// functions over the raw byte methods.

// Put serializes record and stores it under a fresh recid.
func Put[R any](s *RecordStore, ser serde.Serializer[R], record R) (Recid, error) {
	payload, err := ser.Serialize(record)
	if err != nil {
		return 0, err
	}
	return s.PutRaw(payload)
}

// Get loads and deserializes the record stored under recid.
func Get[R any](s *RecordStore, ser serde.Serializer[R], recid Recid) (R, error) {
	payload, err := s.GetRaw(recid)
	if err != nil {
		var zero R
		return zero, err
	}
	return ser.Deserialize(payload)
}

// Update overwrites the record under recid in place.
func Update[R any](s *RecordStore, ser serde.Serializer[R], recid Recid, record R) error {
	payload, err := ser.Serialize(record)
	if err != nil {
		return err
	}
	return s.UpdateRaw(recid, payload)
}

// PreallocatePut materializes a recid returned by Preallocate.
func PreallocatePut[R any](s *RecordStore, ser serde.Serializer[R], recid Recid, record R) error {
	payload, err := ser.Serialize(record)
	if err != nil {
		return err
	}
	return s.PreallocatePutRaw(recid, payload)
}

// GetAndDelete reads the record and frees it as one logical step.
func GetAndDelete[R any](s *RecordStore, ser serde.Serializer[R], recid Recid) (R, error) {
	var zero R
	record, err := Get(s, ser, recid)
	if err != nil {
		return zero, err
	}
	if err := s.Delete(recid); err != nil {
		return zero, err
	}
	return record, nil
}

// UpdateAtomic reads the record, applies transform and writes the
// result back. Atomic only in the sense of being one logical
// read-modify-write; the store is single-threaded by contract and
// takes no locks.
func UpdateAtomic[R any](s *RecordStore, ser serde.Serializer[R], recid Recid, transform func(R) R) error {
	record, err := Get(s, ser, recid)
	if err != nil {
		return err
	}
	return Update(s, ser, recid, transform(record))
}

// CompareAndUpdate overwrites the record only if the stored value
// equals expected under the serializer's equality. Returns whether
// the update happened. Same single-threaded caveat as UpdateAtomic.
func CompareAndUpdate[R any](s *RecordStore, ser serde.Serializer[R], recid Recid, expected, updated R) (bool, error) {
	record, err := Get(s, ser, recid)
	if err != nil {
		return false, err
	}
	if !ser.Equals(record, expected) {
		return false, nil
	}
	if err := Update(s, ser, recid, updated); err != nil {
		return false, err
	}
	return true, nil
}

// CompareAndDelete frees the record only if the stored value equals
// expected under the serializer's equality. Returns whether the
// delete happened.
func CompareAndDelete[R any](s *RecordStore, ser serde.Serializer[R], recid Recid, expected R) (bool, error) {
	record, err := Get(s, ser, recid)
	if err != nil {
		return false, err
	}
	if !ser.Equals(record, expected) {
		return false, nil
	}
	if err := s.Delete(recid); err != nil {
		return false, err
	}
	return true, nil
}
