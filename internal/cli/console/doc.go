// Package console handles zpipe's interactive stdin/stdout exchanges:
// the topic prompt, the overwrite confirmation, the interactive message
// reader and its optional history file.
//
// All readers share one buffered stdin so bytes typed ahead of a prompt
// are not lost between phases.
package console
