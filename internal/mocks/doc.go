// Package mocks provides hand-written test doubles for the store and
// service interfaces. Each mock exposes function fields for per-test
// behavior overrides and a small default implementation backed by maps.
package mocks
