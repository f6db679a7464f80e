package easystack

import "errors"

var ErrUninitialized = errors.New("stack is not initialized")

var ErrRecordTooLarge = errors.New("record and header do not fit in an empty chunk")

var ErrAllocationFailed = errors.New("chunk allocation failed")

var ErrEmpty = errors.New("stack is empty")

var ErrInvalidLength = errors.New("length exceeds payload size")

var ErrInvalidOptions = errors.New("invalid stack options")

var ErrUnsupportedType = errors.New("type has no fixed binary size")
