// Package domain contains the core business types for pgxreport.
// It has no dependencies on adapters or external libraries; everything
// here is plain data plus the invariants the services rely on.
package domain
