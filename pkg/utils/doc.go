// Package utils provides common utility functions for the linker project.
package utils
