// Package recordlog reads and writes the zpipe record-log format.
//
// A record-log is a positional binary file holding a sequence of
// timestamped, variable-length payloads. Publishers replay it onto the
// wire; subscribers can capture received payloads into it.
//
// Format (all integers little-endian):
//
//	[active:1][seq_lock:4][data_offset:4]        header, 9 bytes
//	[data_len:4][payload:data_len][timestamp:8]  record, repeated
//
// Where:
//   - active is a reserved flag (1 while a writer holds the file open)
//   - seq_lock is reserved and always written as 0
//   - data_offset is the absolute offset at which records end
//   - timestamp is Unix milliseconds
//
// Records are read while the running offset, starting at 9, is below
// data_offset. The bound is checked before each record, so a final
// record may extend past data_offset.
//
// There is no magic number. Open sniffs the first 1024 bytes: if they
// are valid UTF-8 the whole file is treated as newline-delimited text,
// otherwise as a binary record-log.
package recordlog
