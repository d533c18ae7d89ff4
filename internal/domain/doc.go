// Package domain contains the core entities of the question generation
// service: question records, generation results and the error kinds shared
// by every layer. It has no dependencies on infrastructure.
package domain
