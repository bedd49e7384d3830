// Copyright 2020 the Blobloom authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sift implements a family of approximate set-membership
// filters: a classic Bloom filter, a partitioned Bloom filter, a
// scalable Bloom filter that grows a sequence of partitioned filters,
// and a cuckoo filter that supports deletion.
//
// Unlike package blobloom, which this package is descended from, sift
// does not require the client to supply its own hash. Every filter owns
// a seedable, deterministic hashing service (see Hasher) that turns
// arbitrary keys into the indices and fingerprints its algorithm needs.
// This makes filters exportable: two filters built from the same seed
// and the same sequence of inserted keys compare equal, and a filter
// exported to JSON and re-imported compares equal to the original.
//
// False negatives are impossible for every filter in this package: if
// Has reports false, the key was never added (or was removed, for the
// cuckoo filter). False positives are possible and are the tuning knob
// exposed by each filter's false-positive-rate parameter.
package sift

// DefaultSeed is the seed used by filters constructed without an
// explicit seed. Its value has no special meaning; it only needs to be
// fixed so that two independently built libraries produce
// byte-identical filters from the same inputs.
const DefaultSeed uint64 = 0x9e3779b97f4a7c15
