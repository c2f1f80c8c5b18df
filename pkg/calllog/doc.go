// Package calllog appends one row per finished conversation to a reporting
// sink. Writes are best effort: Logger reports failures through a Result and
// never returns them into the conversation that triggered the write.
//
// Two sinks ship with the package:
//
//   - SheetsSink appends to a Google Sheets spreadsheet through the Sheets v4 API.
//   - MemorySink keeps rows in process, for tests and local runs.
package calllog
