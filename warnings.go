// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is a stable, colon-separated hierarchical warning/error tag.
// The "pdf:" prefix is implicit — callers match on the suffix that
// appears here.
type Code string

const (
	CodeNotPDFFilesize      Code = "parser:not_pdf:filesize"
	CodeNotPDFInvalidHeader Code = "parser:not_pdf:invalid_header"
	CodeUnsupportedVersion  Code = "parser:unsupported_version"
	CodeInvalidStreamParent Code = "parser:invalid_stream:parent"
	CodeStreamDecodeError   Code = "parser:error:stream:decode"
	CodeLengthMismatch      Code = "parser:length_mismatch"
	CodeExternalFile        Code = "parser:invalid_stream:external_file"
	CodeMissingRef          Code = "invalid:ref:identifier"

	CodeTokenizerEOFComment = Code("tokenizer:unexpected_eof:comment")
	CodeTokenizerEOFString  = Code("tokenizer:unexpected_eof:string")
	CodeTokenizerEOFHex     = Code("tokenizer:unexpected_eof:hexstring")
	CodeTokenizerEOFStream  = Code("tokenizer:unexpected_eof:stream")
	CodeTokenizerInvalidTok = Code("tokenizer:invalid_token")
	CodeTokenizerBadXrefLine = Code("tokenizer:invalid_token:xref_line")
	CodeTokenizerBadEOFLine  = Code("tokenizer:invalid_token:eof_line")

	CodeLexerInvalidKey      = Code("lexer:invalid_token:invalid_key")
	CodeLexerMultipleChild   = Code("lexer:invalid_token:multiple_children")
	CodeLexerMissingEnd      = Code("lexer:invalid_token:missing_end")
	CodeLexerMissingStart    = Code("lexer:invalid_token:missing_start")
	CodeLexerBadComposition  = Code("lexer:invalid_token:composition")
	CodeLexerInvalidParent   = Code("lexer:invalid_token:invalid_parent")

	CodeDecoderUnimplementedFilter = Code("decoder:not_implemented:stream_filter")
	CodeDecoderFilterError         = Code("decoder:error:stream_filter")
)

// Warning is a recoverable malformation. Warnings never halt parsing
// by themselves.
type Warning struct {
	Message string
	Code    Code
	Data    map[string]interface{}
	Cause   error
}

func (w *Warning) Error() string {
	if w.Cause != nil {
		return fmt.Sprintf("pdf:%s: %s: %v", w.Code, w.Message, w.Cause)
	}
	return fmt.Sprintf("pdf:%s: %s", w.Code, w.Message)
}

func newWarning(code Code, message string, data map[string]interface{}) *Warning {
	return &Warning{Message: message, Code: code, Data: data}
}

// wrapWarning attaches cause as the Warning's Cause chain, using
// github.com/pkg/errors so the resulting error supports Cause()/Unwrap
// for callers that want the original codec error.
func wrapWarning(code Code, message string, cause error, data map[string]interface{}) *Warning {
	return &Warning{Message: message, Code: code, Data: data, Cause: errors.Wrap(cause, message)}
}

// FatalError is returned from LoadDocument* when the input cannot be
// parsed at all; no partial store is ever returned alongside it.
type FatalError struct {
	Code    Code
	Message string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("pdf:%s: %s", e.Code, e.Message)
}

func fatalf(code Code, format string, args ...interface{}) error {
	return &FatalError{Code: code, Message: fmt.Sprintf(format, args...)}
}
