// Package limits provides centralized frame and snapshot size limits for the
// stream player. This package ensures consistent size enforcement across the
// decode, ingest and export paths.
//
// # Size Hierarchy
//
//   - MaxFrameDimension (16384 pixels): the largest width or height a decoded
//     picture may have. Anything larger is rejected before storage is allocated.
//
//   - MaxFrameBytes (512MB): the absolute maximum size of one frame buffer's
//     pixel storage, including row padding.
//
//   - MaxSnapshotBytes: MaxFrameBytes plus the bitmap header. Exports larger
//     than the configured snapshot limit fail with an allocation error.
//
// # Validation Functions
//
//	err := limits.ValidateFrameDimensions(width, height)
//	if err != nil {
//	    // ErrInvalidDimensions or ErrFrameTooLarge
//	}
//
//	err = limits.ValidateSnapshotSize(size, limits.MaxSnapshotBytes)
//
// # Row Geometry
//
// Stored rows are 24-bit BGR triplets padded to a 4-byte boundary, the layout
// expected by bottom-up device independent bitmaps:
//
//	stride := limits.RowStride(width) // (width*3 + 3) &^ 3
package limits
