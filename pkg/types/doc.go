// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the deep-research
// pipeline: evidence items and batches, research plans and guidance,
// gap tasks, and stage configuration.
package types
