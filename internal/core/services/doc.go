// Package services implements the core pipeline: recommendation
// extraction from scraped text, drug token matching, report-grid
// relocation, aggregate recording and the batch driver.
//
// Services depend only on domain types and port interfaces; all file and
// workbook access goes through internal/core/ports/driven.
package services
