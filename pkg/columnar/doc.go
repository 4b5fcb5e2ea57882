// Package columnar accumulates the values of one result column into an Arrow
// buffer and exposes sealed buffers for reading.
//
// # Overview
//
// A Builder is created per column per batch. It owns an Arrow array builder
// of the type chosen by types.MapType and reserves the batch capacity up
// front. Values are appended one row at a time:
//
//   - nil sets the validity bit to false and writes a zero placeholder
//     (fixed-width) or a zero-length span (strings)
//   - a native value of the column's type is encoded per its width policy
//   - anything else is rejected with an ErrorTypeData error
//
// Seal freezes the contents into an immutable Buffer. Appending after Seal,
// or sealing twice, fails with ErrorTypeBuilderSealed.
//
// # Strings
//
// String columns keep N+1 int32 offsets starting at 0 plus a byte payload.
// An empty string and a null both produce a zero-length span; only the
// validity bit tells them apart, and Buffer.ToList reports "" and nil
// respectively.
//
// # Usage Example
//
//	b, err := columnar.NewBuilder(memory.DefaultAllocator, types.StringType, 4)
//	if err != nil {
//		return err
//	}
//	_ = b.Append("Alice")
//	_ = b.Append(nil)
//	_ = b.Append("")
//
//	buf, err := b.Seal()
//	defer buf.Release()
//	fmt.Println(buf.ToList()) // [Alice <nil> ]
//
// # Thread Safety
//
// Builders are owned by a single assembler and are not safe for concurrent
// use. Sealed Buffers are immutable and may be read concurrently.
package columnar
