// Package logger is the standardized event logging framework for the shell.
//
// Events are written as newline delimited JSON to the application log so
// they can be summarized later with ReadJSONLinesLog and Report.
package logger
