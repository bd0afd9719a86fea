//go:build !debug

package metrics

const debugAssertions = false
