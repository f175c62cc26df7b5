// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ContentStore: Locates and reads scraped content, reports and CSVs
//   - WorkbookFactory: Opens report, template and aggregate workbooks
//   - ReportWorkbook: Mutable per-sample report grid
//   - AggregateWorkbook: Cross-sample summary table
//   - TemplateWorkbook: Gene/phenotype template population
//   - RunJournal: At-most-once submission tracking
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
