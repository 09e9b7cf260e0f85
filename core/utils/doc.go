// Package utils provides common utility functions for the var-manager application.
// It includes loose type coercion helpers used when reading package manifests,
// whose fields are not reliably typed across producers.
package utils
