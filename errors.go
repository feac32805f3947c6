package wabinary

import "errors"

var ErrEncodingTooLarge = errors.New("string too large to encode")
var ErrInvalidPackedCharacter = errors.New("invalid packed character")
var ErrPackedTooLong = errors.New("too many bytes to pack")
var ErrInvalidContent = errors.New("invalid children")
var ErrInvalidTables = errors.New("invalid encoding tables")
