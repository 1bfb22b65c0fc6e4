// Copyright 2014-2015 The Coname Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package kv contains a generic interface for the ordered key-value
// databases that back the persistent key stores. All operations are safe
// for concurrent use, atomic and synchronously persistent.
package kv

import "errors"

// DB is an abstract ordered key-value store. All operations are assumed to
// be synchronous, atomic and linearizable: once Put(k, v) has returned,
// Get(k) returns v until the next Put(k, ?) or Delete(k), even across a
// restart of the process. Write applies a whole Batch atomically, which is
// how a set of long-term keys is registered in one step.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	NewBatch() Batch
	Write(Batch) error
	// NewPrefixIterator iterates over all keys starting with prefix, in
	// key order. A nil prefix covers the whole database.
	NewPrefixIterator(prefix []byte) Iterator
	Close() error

	// ErrNotFound returns the backend's error for a missing key.
	ErrNotFound() error
}

// A Batch contains a sequence of Put-s and Delete-s waiting to be
// Write-n to a DB.
type Batch interface {
	Reset()
	Put(key, value []byte)
	Delete(key []byte)
}

// Iterator is an abstract pointer to a DB entry. It must be valid to call
// Error() after release. The boolean return values indicate whether the
// requested entry exists.
type Iterator interface {
	Key() []byte
	Value() []byte
	First() bool
	Next() bool
	Last() bool
	Release()
	Error() error
}

// ErrBadValueLength is returned when a stored value does not have the
// length its reader expects.
var ErrBadValueLength = errors.New("[kv] Bad value length")
