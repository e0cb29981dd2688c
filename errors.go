package hbrecord

import "github.com/zeebo/errs"

var (
	// ArgumentError is returned for malformed finder calls.
	ArgumentError = errs.Class("argument error")
	// RecordNotFound is returned when requested ids can not be resolved.
	RecordNotFound = errs.Class("record not found")
	// InvalidState is returned when a scanner is used outside Open/Close.
	InvalidState = errs.Class("invalid state")
	// NotImplemented is returned for operations the store can not serve.
	NotImplemented = errs.Class("not implemented")
	// DecodeError wraps a failure to deserialize a cell value.
	DecodeError = errs.Class("decode error")
)
